package app

import (
	"time"

	"impacto-backend/internal/articles"
	"impacto-backend/internal/auth"
	"impacto-backend/internal/beneficiarios"
	"impacto-backend/internal/chat"
	"impacto-backend/internal/config"
	"impacto-backend/internal/donations"
	"impacto-backend/internal/emails"
	"impacto-backend/internal/health"
	"impacto-backend/internal/metrics"
	"impacto-backend/internal/middleware"
	"impacto-backend/internal/orgs"
	"impacto-backend/internal/pkg/constants"
	"impacto-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// gormPinger adapts *gorm.DB to the health check interface.
type gormPinger struct {
	db *gorm.DB
}

func (p *gormPinger) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route
// registration. db and rdb may be nil in tests; routes that need them
// are only mounted when the database is present.
func CreateApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
		BodyLimit:             25 * 1024 * 1024,
	})

	app.Use(middleware.CORS(cfg.CORSOrigins))
	if rdb != nil {
		app.Use(middleware.HealthMarker(rdb))
	}
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var pinger health.DBPinger
	if db != nil {
		pinger = &gormPinger{db: db}
	}
	healthHandlers := &health.Handlers{Rdb: rdb, DB: pinger, StorageURL: cfg.SupabaseURL}
	app.Get("/health", healthHandlers.Live)
	app.Get("/health/json", healthHandlers.JSON)

	if db == nil {
		return app
	}

	tokens := &auth.TokenService{
		DB:        db,
		Secret:    []byte(cfg.JWTSecret),
		AccessTTL: time.Duration(cfg.JWTExpiresMin) * time.Minute,
	}
	app.Use(middleware.Authenticate(db, tokens))

	mailer := &emails.SMTPMailer{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}
	storageService := &storage.Service{
		Store: &storage.Client{
			BaseURL:   cfg.SupabaseURL,
			SecretKey: cfg.SupabaseServiceRoleKey,
			Bucket:    cfg.SupabaseBucket,
		},
		PublicBucketURL: cfg.SupabasePublicBucketURL,
	}

	api := app.Group("/api/v1")

	// Auth
	authService := &auth.Service{DB: db, Tokens: tokens}
	authHandlers := &auth.Handlers{Service: authService, Storage: storageService}
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandlers.Register)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Post("/refresh", authHandlers.Refresh)
	authGroup.Post("/anonymous-session", authHandlers.AnonymousSession)
	authGroup.Get("/me", middleware.RequireAuth(), authHandlers.Me)
	authGroup.Put("/me", middleware.RequireAuth(), authHandlers.UpdateMe)
	authGroup.Post("/upload-profile-image", middleware.RequireAuth(), authHandlers.UploadProfileImage)
	authGroup.Post("/logout", middleware.RequireAuth(), authHandlers.Logout)

	// Beneficiários
	benService := &beneficiarios.Service{DB: db}
	benHandlers := &beneficiarios.Handlers{Service: benService}
	benGroup := api.Group("/beneficiarios", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ManageBeneficiarios))
	benGroup.Get("/", benHandlers.List)
	benGroup.Post("/", benHandlers.Create)
	benGroup.Put("/:id", benHandlers.Update)
	benGroup.Post("/vincular", benHandlers.Vincular)

	// Orgs
	orgService := &orgs.Service{DB: db, Mailer: mailer}
	orgHandlers := &orgs.Handlers{Service: orgService}
	orgGroup := api.Group("/orgs")
	orgGroup.Get("/", orgHandlers.List)
	orgGroup.Post("/validate-invite", orgHandlers.ValidateInvite)
	orgGroup.Get("/:id", orgHandlers.Get)
	orgGroup.Post("/", middleware.RequireAuth(), orgHandlers.Create)
	orgGroup.Put("/:id", middleware.RequireAuth(), orgHandlers.Update)
	orgGroup.Post("/:id/regenerate-invite", middleware.RequireAuth(), orgHandlers.RegenerateInvite)
	orgGroup.Post("/:id/verify-email", middleware.RequireAuth(), orgHandlers.VerifyEmail)
	orgGroup.Post("/resend-invite", middleware.RequireAuth(), orgHandlers.ResendInvite)
	orgGroup.Post("/invite-by-email", middleware.RequireAuth(), orgHandlers.InviteByEmail)
	orgGroup.Post("/approve", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ApproveOrg), orgHandlers.Approve)

	// Articles
	articleService := &articles.Service{DB: db}
	articleHandlers := &articles.Handlers{Service: articleService, Storage: storageService}
	articleGroup := api.Group("/articles")
	articleGroup.Get("/", articleHandlers.List)
	articleGroup.Get("/:id", articleHandlers.Get)
	articleGroup.Post("/", middleware.RequireAuth(), articleHandlers.Create)
	articleGroup.Put("/:id", middleware.RequireAuth(), articleHandlers.Update)
	articleGroup.Post("/approve", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ApproveArticle), articleHandlers.Approve)

	// Donations
	donationService := &donations.Service{DB: db}
	donationHandlers := &donations.Handlers{Service: donationService}
	donationGroup := api.Group("/donations")
	donationGroup.Post("/", donationHandlers.Create)
	donationGroup.Get("/", donationHandlers.List)
	donationGroup.Get("/:id", donationHandlers.Get)
	donationGroup.Post("/:id/ledger", middleware.RequireAuth(), middleware.AuthorizePermission(constants.AppendLedger), donationHandlers.AppendLedger)

	// Chat
	chatService := &chat.Service{DB: db}
	chatHandlers := &chat.Handlers{Service: chatService}
	chatGroup := api.Group("/chats")
	chatGroup.Get("/stats/ratings", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewRatingStats), chatHandlers.Stats)
	chatGroup.Get("/user/ratings", middleware.RequireAuth(), chatHandlers.UserStats)
	chatGroup.Post("/", chatHandlers.Create)
	chatGroup.Get("/", chatHandlers.List)
	chatGroup.Get("/:id", chatHandlers.Get)
	chatGroup.Patch("/:id", chatHandlers.Update)
	chatGroup.Delete("/:id", chatHandlers.Delete)
	chatGroup.Post("/:id/messages", chatHandlers.AddMessage)
	chatGroup.Get("/:id/messages", chatHandlers.Messages)
	chatGroup.Post("/:id/rating", chatHandlers.Rate)

	// Metrics
	metricService := &metrics.Service{DB: db}
	metricHandlers := &metrics.Handlers{Service: metricService}
	metricGroup := api.Group("/metrics")
	metricGroup.Get("/landing", metricHandlers.Landing)
	metricGroup.Get("/orgs/:id", metricHandlers.Org)
	metricGroup.Get("/orgs/:id/overview", metricHandlers.Overview)

	// Storage
	storageHandlers := &storage.Handlers{Service: storageService}
	storageGroup := api.Group("/storage", middleware.RequireAuth())
	storageGroup.Post("/upload", storageHandlers.Upload)
	storageGroup.Post("/sign", storageHandlers.Sign)
	storageGroup.Delete("/", storageHandlers.Delete)

	return app
}
