package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/helloSanmi/e-vote/internal/entity"
	"github.com/helloSanmi/e-vote/internal/modules/user/dto"
	"github.com/helloSanmi/e-vote/internal/modules/user/repository"
	"github.com/helloSanmi/e-vote/pkg/apperror"
	"github.com/helloSanmi/e-vote/pkg/database"
	"github.com/helloSanmi/e-vote/pkg/ratelimit"
	"github.com/helloSanmi/e-vote/pkg/token"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) error
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.MeResponse, error)
}

type Options struct {
	Secret         []byte
	TokenTTL       time.Duration
	LoginRateLimit time.Duration
}

type authService struct {
	repo        repository.UserRepository
	policy      *AdminPolicy
	redisClient *redis.Client
	opts        Options
}

func NewAuthService(repo repository.UserRepository, policy *AdminPolicy, redisClient *redis.Client, opts Options) AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 8 * time.Hour
	}
	return &authService{
		repo:        repo,
		policy:      policy,
		redisClient: redisClient,
		opts:        opts,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) error {
	fullName := strings.TrimSpace(input.FullName)
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if fullName == "" || username == "" || email == "" || input.Password == "" {
		return apperror.Validation("fullName, username, email and password are required")
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return apperror.Internal("Error registering user", err)
	}
	if len(existing) > 0 {
		return conflictFor(existing[0], email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Internal("Error registering user", err)
	}

	user := &entity.User{
		FullName:     fullName,
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
	}

	role, err := s.repo.FindRoleByName(ctx, entity.RoleVoter)
	if err == nil {
		user.RoleID = &role.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Internal("Error registering user", err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			// Lost a race with a concurrent registration.
			return apperror.New(http.StatusConflict, "A user with that username or email already exists", apperror.ErrConflict)
		}
		return apperror.Internal("Error registering user", err)
	}

	return nil
}

func conflictFor(u *entity.User, email string) error {
	field := "username"
	if strings.EqualFold(u.Email, email) {
		field = "email"
	}
	return apperror.New(http.StatusConflict, fmt.Sprintf("A user with that %s already exists", field), apperror.ErrConflict)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	identifier := strings.TrimSpace(input.Email)
	if identifier == "" || input.Password == "" {
		return nil, apperror.Validation("Email (or username) and password are required")
	}

	allowed, err := ratelimit.CheckAndSet(ctx, s.redisClient, strings.ToLower(identifier), "login", s.opts.LoginRateLimit)
	if err != nil {
		log.Printf("login rate limit check failed: %v", err)
	} else if !allowed {
		wait, _ := ratelimit.TTL(ctx, s.redisClient, strings.ToLower(identifier), "login")
		if wait > 0 {
			return nil, apperror.RateLimited(fmt.Sprintf("Too many login attempts, try again in %s", wait.Round(time.Second)))
		}
		return nil, apperror.RateLimited("Too many login attempts, try again shortly")
	}

	user, err := s.repo.FindByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal("Error logging in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.Validation("Invalid credentials")
	}

	if err := ratelimit.Clear(ctx, s.redisClient, strings.ToLower(identifier), "login"); err != nil {
		log.Printf("login rate limit reset failed: %v", err)
	}

	isAdmin := s.isAdmin(user)
	signed, expiresAt, err := token.Generate(s.opts.Secret, user.ID.String(), user.Email, user.Username, isAdmin, s.opts.TokenTTL)
	if err != nil {
		return nil, apperror.Internal("Error logging in", err)
	}

	return &dto.AuthResponse{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.Unix(),
		IsAdmin:   isAdmin,
	}, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.MeResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal("Failed to load user", err)
	}

	return &dto.MeResponse{
		ID:       user.ID,
		FullName: user.FullName,
		Username: user.Username,
		Email:    user.Email,
		HasVoted: user.HasVoted,
		IsAdmin:  s.isAdmin(user),
	}, nil
}

func (s *authService) isAdmin(user *entity.User) bool {
	return user.IsAdminRole() || s.policy.Listed(user.Email, user.Username)
}
