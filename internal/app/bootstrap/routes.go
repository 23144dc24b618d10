// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	aboutfeature "github.com/hackmatehq/hackmate/internal/app/features/about"
	authgooglefeature "github.com/hackmatehq/hackmate/internal/app/features/authgoogle"
	contactfeature "github.com/hackmatehq/hackmate/internal/app/features/contact"
	errorsfeature "github.com/hackmatehq/hackmate/internal/app/features/errors"
	healthfeature "github.com/hackmatehq/hackmate/internal/app/features/health"
	homefeature "github.com/hackmatehq/hackmate/internal/app/features/home"
	loginfeature "github.com/hackmatehq/hackmate/internal/app/features/login"
	logoutfeature "github.com/hackmatehq/hackmate/internal/app/features/logout"
	profilefeature "github.com/hackmatehq/hackmate/internal/app/features/profile"
	projectsfeature "github.com/hackmatehq/hackmate/internal/app/features/projects"
	termsfeature "github.com/hackmatehq/hackmate/internal/app/features/terms"
	userinfofeature "github.com/hackmatehq/hackmate/internal/app/features/userinfo"
	"github.com/hackmatehq/hackmate/internal/app/store/oauthstate"
	projectstore "github.com/hackmatehq/hackmate/internal/app/store/projects"
	userstore "github.com/hackmatehq/hackmate/internal/app/store/users"
	"github.com/hackmatehq/hackmate/internal/app/system/auth"
	"github.com/hackmatehq/hackmate/internal/app/system/inputval"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. HackMate initializes the template
// engine, applies session and CSRF middleware, and mounts feature routers
// for the public pages, authentication, and the project listing board.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. Profile updates and removed accounts take effect
	// immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Project store configured from app config.
	rules := inputval.ProjectRules{DescriptionMinChars: appCfg.DescriptionMinChars}
	ttl := time.Duration(appCfg.ProjectTTLDays) * 24 * time.Hour
	projects := projectstore.NewWithConfig(deps.MongoDatabase, rules, ttl)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for all form posts. The token key is derived from
	// the session key so operators configure a single secret.
	csrfKey := sha256.Sum256([]byte(appCfg.SessionKey))
	r.Use(csrf.Protect(csrfKey[:], csrf.Secure(secure), csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	aboutHandler := aboutfeature.NewHandler(logger)
	r.Mount("/about", aboutfeature.Routes(aboutHandler))

	contactHandler := contactfeature.NewHandler(logger)
	r.Mount("/contact", contactfeature.Routes(contactHandler))

	termsHandler := termsfeature.NewHandler(logger)
	r.Mount("/terms", termsfeature.Routes(termsHandler))

	// Session info for client-side scripts
	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Authentication
	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, googleEnabled, logger)
	loginHandler.MountRoutes(r)

	googleHandler := authgooglefeature.NewHandler(
		deps.MongoDatabase,
		sessionMgr,
		oauthstate.New(deps.MongoDatabase),
		appCfg.GoogleClientID,
		appCfg.GoogleClientSecret,
		appCfg.BaseURL,
		logger,
	)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Project listings: browsing and managing both require a signed-in
	// session.
	projectsHandler := projectsfeature.NewHandler(deps.MongoDatabase, projects, sessionMgr, errLog, logger)
	r.Route("/projects", func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)
		projectsHandler.MountRoutes(pr)
	})

	// Account profile
	profileHandler := profilefeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Route("/profile", func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)
		pr.Mount("/", profilefeature.Routes(profileHandler))
	})

	return r, nil
}
