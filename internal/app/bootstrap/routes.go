// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	adminfeature "github.com/meroket/meroket/internal/app/features/admin"
	dashboardfeature "github.com/meroket/meroket/internal/app/features/dashboard"
	editorfeature "github.com/meroket/meroket/internal/app/features/editor"
	errorsfeature "github.com/meroket/meroket/internal/app/features/errors"
	healthfeature "github.com/meroket/meroket/internal/app/features/health"
	homefeature "github.com/meroket/meroket/internal/app/features/home"
	loginfeature "github.com/meroket/meroket/internal/app/features/login"
	logoutfeature "github.com/meroket/meroket/internal/app/features/logout"
	profilefeature "github.com/meroket/meroket/internal/app/features/profile"
	sitesfeature "github.com/meroket/meroket/internal/app/features/sites"
	auditstore "github.com/meroket/meroket/internal/app/store/audit"
	portfoliostore "github.com/meroket/meroket/internal/app/store/portfolios"
	"github.com/meroket/meroket/internal/app/store/sessions"
	schedulestore "github.com/meroket/meroket/internal/app/store/tierschedules"
	userstore "github.com/meroket/meroket/internal/app/store/users"
	"github.com/meroket/meroket/internal/app/system/auditlog"
	"github.com/meroket/meroket/internal/app/system/auth"
	"github.com/meroket/meroket/internal/app/system/entitlement"
	"github.com/meroket/meroket/internal/app/system/workers"
	"github.com/meroket/meroket/internal/domain/models"
	"go.uber.org/zap"
)

// sessionCleanup is the background sweeper started by BuildHandler and
// stopped in Shutdown.
var sessionCleanup *workers.SessionCleanup

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// Meroket initializes the template engine, applies session and CSRF
// middleware, and mounts feature routers: home, login, dashboard, the
// portfolio editor, the admin area, and finally the public portfolio
// resolver that owns GET /{slug}.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on each request.
	// This ensures tier changes, disabled accounts, and profile updates take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Stores over the shared database.
	users := userstore.New(deps.MongoDatabase)
	portfolios := portfoliostore.New(deps.MongoDatabase)
	schedules := schedulestore.New(deps.MongoDatabase)
	sessStore := sessions.New(deps.MongoDatabase)
	auditEvents := auditstore.New(deps.MongoDatabase)

	// Cross-cutting services.
	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(auditEvents, logger, auditlog.Config{
		Auth:        appCfg.AuditLogAuth,
		Admin:       appCfg.AuditLogAdmin,
		Entitlement: appCfg.AuditLogEntitlement,
	})
	ent := entitlement.NewService(portfolios, logger)

	fileStore, err := buildStorage(appCfg, logger)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	// Background sweeper that closes idle activity sessions.
	sessionCleanup = workers.NewSessionCleanup(sessStore, logger,
		appCfg.SessionCleanupInterval, appCfg.SessionInactiveThreshold)
	sessionCleanup.Start()

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for every form post and editor fetch call.
	r.Use(csrf.Protect([]byte(appCfg.SessionKey),
		csrf.Secure(secure),
		csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Uploaded images when running on local storage
	if appCfg.StorageType == "local" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// Public landing page
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(users, sessionMgr, errLog, auditLog, sessStore, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, sessStore, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	// Signed-in area
	profileHandler := profilefeature.NewHandler(users, errLog, auditLog, logger)
	dashboardHandler := dashboardfeature.NewHandler(portfolios, ent, errLog, logger)
	editorHandler := editorfeature.NewHandler(portfolios, ent, fileStore, errLog, logger)

	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireSignedIn)
		r.Mount("/profile", profilefeature.Routes(profileHandler))
		r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))
		r.Mount("/portfolios", editorfeature.Routes(editorHandler))
	})

	// Admin area
	adminHandler := adminfeature.NewHandler(users, portfolios, schedules, sessStore, ent, errLog, auditLog, logger)
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireRole(models.RoleAdmin))
		r.Mount("/admin", adminfeature.Routes(adminHandler))
	})

	// Published portfolio resolver. Mounted last so every reserved
	// application path above wins before slug resolution runs.
	sitesHandler := sitesfeature.NewHandler(portfolios, errLog, logger)
	r.Get("/{slug}", sitesHandler.ServeSite)

	return r, nil
}

// buildStorage selects the file storage backend for portfolio images.
func buildStorage(appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	switch appCfg.StorageType {
	case "s3":
		logger.Info("using S3 storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("region", appCfg.StorageS3Region))
		s3, err := storage.NewS3(context.Background(), storage.S3Config{
			Region:  appCfg.StorageS3Region,
			Bucket:  appCfg.StorageS3Bucket,
			Prefix:  appCfg.StorageS3Prefix,
			BaseURL: appCfg.StorageCFURL,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		logger.Info("using local storage",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL))
		local, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return nil, err
		}
		return local, nil
	}
}
