package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-matchmaker/internal/application/auth"
	"github.com/go-matchmaker/internal/application/questionnaire"
	"github.com/go-matchmaker/internal/application/session"
	"github.com/go-matchmaker/internal/config"
	jwtinfra "github.com/go-matchmaker/internal/infrastructure/jwt"
	"github.com/go-matchmaker/internal/logger"
	"github.com/go-matchmaker/internal/transport/http/handler"
	appmiddleware "github.com/go-matchmaker/internal/transport/http/middleware"
	"github.com/go-matchmaker/internal/transport/http/view"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	Mailer      Mailer
	JWTProvider *jwtinfra.Provider
	Logger      *logger.Logger
	// CodeGenerator overrides the OTP source. Nil uses crypto/rand.
	CodeGenerator func() (string, error)
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, error) {
	views, err := view.New()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.TraceID(deps.Logger))
	r.Use(appmiddleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:      deps.UserRepo,
		Mailer:        deps.Mailer,
		CodeGenerator: deps.CodeGenerator,
	})
	questionnaireSvc := questionnaire.NewService(deps.UserRepo)
	sessionSvc := session.NewService(deps.UserRepo)

	healthH := handler.NewHealthHandler()
	onboardingH := handler.NewOnboardingHandler(authSvc, questionnaireSvc, sessionSvc, views)

	r.Get("/health-check/{action}", healthH.Ping)
	r.Handle("/static/*", view.Static())

	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Session(deps.JWTProvider, cfg.Session.CookieSecure))

		r.Get("/", onboardingH.Index)
		r.Post("/register", onboardingH.Register)
		r.Get("/login", onboardingH.LoginForm)
		r.Post("/login", onboardingH.Login)
		r.Post("/verify", onboardingH.Verify)
		r.Post("/submit_questionnaire", onboardingH.SubmitQuestionnaire)
		r.Get("/dashboard", onboardingH.Dashboard)
		r.Get("/logout", onboardingH.Logout)
	})

	return r, nil
}
