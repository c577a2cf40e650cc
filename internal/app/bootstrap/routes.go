// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/colabhub/colabhub/internal/app/features/authgoogle"
	catalogfeature "github.com/colabhub/colabhub/internal/app/features/catalog"
	chatfeature "github.com/colabhub/colabhub/internal/app/features/chat"
	collaborationsfeature "github.com/colabhub/colabhub/internal/app/features/collaborations"
	commentsfeature "github.com/colabhub/colabhub/internal/app/features/comments"
	healthfeature "github.com/colabhub/colabhub/internal/app/features/health"
	loginfeature "github.com/colabhub/colabhub/internal/app/features/login"
	logoutfeature "github.com/colabhub/colabhub/internal/app/features/logout"
	profilefeature "github.com/colabhub/colabhub/internal/app/features/profile"
	projectsfeature "github.com/colabhub/colabhub/internal/app/features/projects"
	registerfeature "github.com/colabhub/colabhub/internal/app/features/register"
	usersfeature "github.com/colabhub/colabhub/internal/app/features/users"
	auditstore "github.com/colabhub/colabhub/internal/app/store/audit"
	catalogstore "github.com/colabhub/colabhub/internal/app/store/catalog"
	chatstore "github.com/colabhub/colabhub/internal/app/store/chat"
	collabstore "github.com/colabhub/colabhub/internal/app/store/collaborations"
	commentstore "github.com/colabhub/colabhub/internal/app/store/comments"
	projectstore "github.com/colabhub/colabhub/internal/app/store/projects"
	userstore "github.com/colabhub/colabhub/internal/app/store/users"
	"github.com/colabhub/colabhub/internal/app/system/auditlog"
	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/colabhub/colabhub/internal/app/system/mailer"
	"github.com/colabhub/colabhub/internal/app/system/ratelimit"
	"github.com/colabhub/colabhub/internal/app/system/token"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Every request passes two principal
// loaders: the session cookie (browser clients) and the bearer token (API
// clients); whichever resolves first wins.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// The fetcher resolves session/token user IDs to fresh user documents
	// on each request, so role changes and disabled accounts take effect
	// immediately.
	fetcher := userstore.NewFetcher(deps.MongoDatabase)
	sessionMgr.SetUserFetcher(fetcher)

	tokens, err := token.NewIssuer(appCfg.JWTSecret, appCfg.SiteName, appCfg.JWTTTL)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}

	// Stores
	users := userstore.New(deps.MongoDatabase)
	projects := projectstore.New(deps.MongoDatabase)
	collabs := collabstore.New(deps.MongoDatabase)
	comments := commentstore.New(deps.MongoDatabase)
	chat := chatstore.New(deps.MongoDatabase)
	catalog := catalogstore.New(deps.MongoDatabase)

	audit := auditlog.New(auditstore.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	var mail mailer.Sender
	if appCfg.MailEnabled {
		from := appCfg.MailFrom
		if appCfg.MailFromName != "" {
			from = appCfg.MailFromName + " <" + appCfg.MailFrom + ">"
		}
		mail = mailer.New(appCfg.MailSMTPHost, appCfg.MailSMTPPort, appCfg.MailSMTPUser, appCfg.MailSMTPPass, from, logger)
	}

	loginLimiter := ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow)

	r := chi.NewRouter()

	// Principal loaders: session cookie first, bearer token second.
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(tokens.Middleware(fetcher, logger))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Uploaded project images
	r.Handle("/uploads/*", fileserver.Handler("/uploads", appCfg.UploadDir))

	// API surface
	r.Route("/api", func(api chi.Router) {
		registerHandler := registerfeature.NewHandler(users, sessionMgr, tokens, loginLimiter, audit, logger)
		api.Mount("/auth/register", registerfeature.Routes(registerHandler))

		loginHandler := loginfeature.NewHandler(users, sessionMgr, tokens, loginLimiter, audit, logger)
		api.Mount("/auth/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
		api.Mount("/auth/logout", logoutfeature.Routes(logoutHandler))

		if appCfg.GoogleClientID != "" {
			googleHandler := authgooglefeature.NewHandler(users, sessionMgr, audit,
				appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, appCfg.OAuthStateKey, logger)
			api.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
		}

		profileHandler := profilefeature.NewHandler(users, catalog, audit, logger)
		api.Mount("/profile", profilefeature.Routes(profileHandler))

		usersHandler := usersfeature.NewHandler(users, audit, logger)
		api.Mount("/usuarios", usersfeature.Routes(usersHandler))

		commentsHandler := commentsfeature.NewHandler(comments, projects, users, logger)
		chatHandler := chatfeature.NewHandler(chat, projects, collabs, logger)

		projectsHandler := projectsfeature.NewHandler(projects, collabs, comments, chat, users, catalog,
			mail, logger, appCfg.SiteName, appCfg.BaseURL, appCfg.UploadDir)
		api.Mount("/proyectos", projectsfeature.Routes(projectsHandler,
			commentsfeature.ProjectRoutes(commentsHandler),
			chatfeature.Routes(chatHandler)))

		collabsHandler := collaborationsfeature.NewHandler(collabs, projects, users, mail, logger,
			appCfg.SiteName, appCfg.BaseURL)
		api.Mount("/colaboraciones", collaborationsfeature.Routes(collabsHandler))

		api.Mount("/comentarios", commentsfeature.Routes(commentsHandler))

		catalogHandler := catalogfeature.NewHandler(catalog, logger)
		api.Mount("/disciplinas", catalogfeature.DisciplineRoutes(catalogHandler))
		api.Mount("/habilidades", catalogfeature.SkillRoutes(catalogHandler))
	})

	return r, nil
}
