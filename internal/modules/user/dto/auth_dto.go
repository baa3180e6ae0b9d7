package dto

import "github.com/google/uuid"

type RegisterInput struct {
	FullName string `json:"fullName" binding:"required,max=255"`
	Username string `json:"username" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginInput accepts an email or a username in Email.
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresAt int64  `json:"expiresAt"`
	IsAdmin   bool   `json:"isAdmin"`
}

type MeResponse struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	HasVoted bool      `json:"hasVoted"`
	IsAdmin  bool      `json:"isAdmin"`
}
