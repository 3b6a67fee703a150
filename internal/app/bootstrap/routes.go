// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	announcementsfeature "github.com/meskelsoft/partyreg/internal/app/features/announcements"
	dashboardfeature "github.com/meskelsoft/partyreg/internal/app/features/dashboard"
	errorsfeature "github.com/meskelsoft/partyreg/internal/app/features/errors"
	healthfeature "github.com/meskelsoft/partyreg/internal/app/features/health"
	homefeature "github.com/meskelsoft/partyreg/internal/app/features/home"
	loginfeature "github.com/meskelsoft/partyreg/internal/app/features/login"
	logoutfeature "github.com/meskelsoft/partyreg/internal/app/features/logout"
	meetingsfeature "github.com/meskelsoft/partyreg/internal/app/features/meetings"
	membersfeature "github.com/meskelsoft/partyreg/internal/app/features/members"
	profilefeature "github.com/meskelsoft/partyreg/internal/app/features/profile"
	registerfeature "github.com/meskelsoft/partyreg/internal/app/features/register"
	"github.com/meskelsoft/partyreg/internal/app/idalloc"
	"github.com/meskelsoft/partyreg/internal/app/notify"
	"github.com/meskelsoft/partyreg/internal/app/registration"
	accountstore "github.com/meskelsoft/partyreg/internal/app/store/accounts"
	announcementstore "github.com/meskelsoft/partyreg/internal/app/store/announcements"
	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
	sequencestore "github.com/meskelsoft/partyreg/internal/app/store/sequences"
	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It wires the session manager, template
// engine, registration orchestrator and feature routers together.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	// Credential delivery: SMS when the gateway is configured, email as
	// the fallback channel.
	sender := &notify.Router{
		Email: notify.NewEmailSender(notify.SMTPConfig{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			User:     appCfg.MailSMTPUser,
			Pass:     appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
			SiteName: appCfg.SiteName,
		}, logger),
	}
	if appCfg.SMSAccountSID != "" {
		sender.SMS = notify.NewSMSSender(notify.SMSConfig{
			AccountSID: appCfg.SMSAccountSID,
			AuthToken:  appCfg.SMSAuthToken,
			From:       appCfg.SMSFrom,
		}, nil, logger)
	}

	orch := &registration.Orchestrator{
		Members:     memberstore.New(db),
		Accounts:    accountstore.New(db),
		IDs:         idalloc.New(sequencestore.New(db), logger),
		Sender:      sender,
		Atomic:      &registration.TxnAtomic{Client: deps.MongoClient},
		Log:         logger,
		RetryBudget: appCfg.AllocRetryBudget,
	}

	// The layout's banner strip shows the latest announcements on every
	// signed-in page.
	anns := announcementstore.New(db)
	viewdata.SetAnnouncementLoader(func(ctx context.Context) []viewdata.AnnouncementVM {
		latest, err := anns.List(ctx, 3)
		if err != nil {
			logger.Warn("announcement banner load failed", zap.Error(err))
			return nil
		}
		out := make([]viewdata.AnnouncementVM, 0, len(latest))
		for _, a := range latest {
			out = append(out, viewdata.AnnouncementVM{
				ID:      a.ID.Hex(),
				Title:   a.Title,
				Created: a.CreatedAt.Format("2006-01-02"),
			})
		}
		return out
	})

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Every browser-facing form posts with a CSRF token from BaseVM.
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
	))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/healthz", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(db, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	registerHandler := registerfeature.NewHandler(db, orch, sessionMgr, errLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Staff screens
	dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	membersHandler := membersfeature.NewHandler(db, orch, sessionMgr, errLog, logger)
	r.Mount("/members", membersfeature.Routes(membersHandler, sessionMgr))

	meetingsHandler := meetingsfeature.NewHandler(db, errLog, logger)
	r.Mount("/meetings", meetingsfeature.Routes(meetingsHandler, sessionMgr))

	// Member-facing screens
	announcementsHandler := announcementsfeature.NewHandler(db, errLog, logger)
	r.Mount("/announcements", announcementsfeature.Routes(announcementsHandler, sessionMgr))

	profileHandler := profilefeature.NewHandler(db, errLog, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	return r, nil
}
