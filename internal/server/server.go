package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/helloSanmi/e-vote/internal/config"
	"github.com/helloSanmi/e-vote/internal/middleware"
	"github.com/helloSanmi/e-vote/internal/scheduler"
	"github.com/helloSanmi/e-vote/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	ballotHttp "github.com/helloSanmi/e-vote/internal/modules/ballot/delivery/http"
	ballotRepo "github.com/helloSanmi/e-vote/internal/modules/ballot/repository"
	ballotService "github.com/helloSanmi/e-vote/internal/modules/ballot/service"

	candidateHttp "github.com/helloSanmi/e-vote/internal/modules/candidate/delivery/http"
	candidateRepo "github.com/helloSanmi/e-vote/internal/modules/candidate/repository"
	candidateService "github.com/helloSanmi/e-vote/internal/modules/candidate/service"

	notiHttp "github.com/helloSanmi/e-vote/internal/modules/notification/delivery/http"
	notifService "github.com/helloSanmi/e-vote/internal/modules/notification/service"

	periodHttp "github.com/helloSanmi/e-vote/internal/modules/period/delivery/http"
	periodRepo "github.com/helloSanmi/e-vote/internal/modules/period/repository"
	periodService "github.com/helloSanmi/e-vote/internal/modules/period/service"

	resultHttp "github.com/helloSanmi/e-vote/internal/modules/result/delivery/http"
	resultRepo "github.com/helloSanmi/e-vote/internal/modules/result/repository"
	resultService "github.com/helloSanmi/e-vote/internal/modules/result/service"

	searchService "github.com/helloSanmi/e-vote/internal/modules/search/service"

	statHttp "github.com/helloSanmi/e-vote/internal/modules/stat/delivery/http"
	statService "github.com/helloSanmi/e-vote/internal/modules/stat/service"

	userHttp "github.com/helloSanmi/e-vote/internal/modules/user/delivery/http"
	userRepo "github.com/helloSanmi/e-vote/internal/modules/user/repository"
	userService "github.com/helloSanmi/e-vote/internal/modules/user/service"
)

type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	httpServer  *http.Server
	redisClient *redis.Client
	hub         *notifService.Hub
	scheduler   *scheduler.Scheduler
	cancel      context.CancelFunc
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	imageStorage, err := newImageStorage(cfg)
	if err != nil {
		return nil, err
	}
	candidateIndex := newCandidateIndex(cfg)

	hub := notifService.NewHub()
	publisher := notifService.NewPublisher(redisClient, hub)
	notificationHandler := notiHttp.NewNotificationHandler(hub, cfg.AllowedOrigins)

	adminPolicy := userService.NewAdminPolicy(cfg.AdminEmails, cfg.AdminUsernames)
	userRepository := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepository, adminPolicy, redisClient, userService.Options{
		Secret:         []byte(cfg.JWTSecret),
		TokenTTL:       cfg.JWTTTL,
		LoginRateLimit: cfg.RateLimitLogin,
	})
	authHandler := userHttp.NewAuthHandler(authSvc)

	periodRepository := periodRepo.NewPeriodRepository(db)
	periodSvc := periodService.NewPeriodService(periodRepository, publisher, imageStorage, candidateIndex)
	periodHandler := periodHttp.NewPeriodHandler(periodSvc)

	candidateRepository := candidateRepo.NewCandidateRepository(db)
	candidateSvc := candidateService.NewCandidateService(candidateRepository, imageStorage, candidateIndex, publisher)
	candidateHandler := candidateHttp.NewCandidateHandler(candidateSvc, cfg.PublicBaseURL)

	ballotRepository := ballotRepo.NewBallotRepository(db)
	ballotSvc := ballotService.NewBallotService(ballotRepository, publisher, redisClient, ballotService.Options{
		VoteRateLimit: cfg.RateLimitVote,
	})
	ballotHandler := ballotHttp.NewBallotHandler(ballotSvc)

	resultRepository := resultRepo.NewResultRepository(db)
	resultSvc := resultService.NewResultService(resultRepository)
	resultHandler := resultHttp.NewResultHandler(resultSvc, cfg.PublicBaseURL)

	statSvc := statService.NewStatService(userRepository, resultRepository)
	statHandler := statHttp.NewStatHandler(statSvc)

	jobs := scheduler.NewScheduler()
	watcher := scheduler.NewPeriodWatcher(periodRepository, publisher, redisClient, cfg.PeriodWatchSchedule)
	if err := jobs.Register(watcher); err != nil {
		return nil, err
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/ws"},
	}))

	router.Static(strings.TrimSuffix(storage.UploadsPrefix, "/"), cfg.UploadsDir)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret, adminPolicy)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
	}

	public := api.Group("/public")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/period", periodHandler.LatestPeriod)
		public.GET("/candidates", candidateHandler.PublishedCandidates)
		public.GET("/candidates/search", candidateHandler.SearchCandidates)
		public.GET("/results", resultHandler.PublicResults)
		public.GET("/uservote", ballotHandler.UserVote)
		public.GET("/periods", resultHandler.ParticipatedPeriods)
	}

	api.GET("/ws", notificationHandler.HandleWebSocket)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/vote", ballotHandler.CastVote)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/period/start", periodHandler.StartPeriod)
			adminGroup.POST("/period/end", periodHandler.EndEarly)
			adminGroup.POST("/period/publish", periodHandler.PublishResults)
			adminGroup.DELETE("/period/:id", periodHandler.DeletePeriod)
			adminGroup.GET("/period", periodHandler.LatestPeriod)
			adminGroup.GET("/periods", periodHandler.ListPeriods)

			adminGroup.POST("/candidates", candidateHandler.AddCandidate)
			adminGroup.DELETE("/candidates/:id", candidateHandler.RemoveCandidate)
			adminGroup.GET("/candidates", candidateHandler.AdminCandidates)
			adminGroup.GET("/candidates/period/:id", candidateHandler.PeriodCandidates)

			adminGroup.GET("/results", resultHandler.AdminResults)
			adminGroup.GET("/stats", statHandler.GetTurnout)
			adminGroup.GET("/users/count", statHandler.GetTotalUsers)
		}
	}

	return &Server{
		cfg:         cfg,
		engine:      router,
		redisClient: redisClient,
		hub:         hub,
		scheduler:   jobs,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP on addr until Shutdown is called.
func (s *Server) Run(addr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.hub.Run(ctx, s.redisClient)
	s.scheduler.Start()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Server listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	s.scheduler.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func newImageStorage(cfg *config.Config) (storage.ImageStorage, error) {
	local, err := storage.NewLocalStorage(cfg.UploadsDir)
	if err != nil {
		return nil, err
	}
	if cfg.CloudinaryURL == "" {
		return local, nil
	}

	cld, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName, cfg.CloudinaryUploadFolder)
	if err != nil {
		return nil, err
	}
	// New photos go to Cloudinary; older local ones can still be removed.
	return storage.Combine(cld, local), nil
}

func newCandidateIndex(cfg *config.Config) searchService.CandidateIndex {
	meiliHost := cfg.MeiliSearchHost
	if meiliHost == "" {
		log.Println("MEILISEARCH_HOST not set, candidate search disabled")
		return searchService.Disabled{}
	}
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}

	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return searchService.NewMeiliSearchService(meiliClient)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
