package api

import (
	"net/http"
	"time"

	"github.com/soaringjerry/mindscope/internal/analysis"
	"github.com/soaringjerry/mindscope/internal/logger"
	"github.com/soaringjerry/mindscope/internal/middleware"
	"github.com/soaringjerry/mindscope/internal/services"
	"github.com/soaringjerry/mindscope/internal/utils"
)

type Options struct {
	Analyzer   *analysis.Analyzer
	Membership *services.Membership
	Auth       *middleware.TokenAuth
	TokenTTL   time.Duration
	Logger     *logger.Logger
	Commit     string
	BuildTime  string
}

type Router struct {
	store       Store
	assessments *services.AssessmentService
	submissions *services.SubmissionService
	auth        *services.AuthService
	users       *services.UserService
	analytics   *services.AnalyticsService
	export      *services.ExportService
	membership  *services.Membership
	log         *logger.Logger
	commit      string
	buildTime   string
}

func NewRouter(store Store, opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Membership == nil {
		opts.Membership = services.DefaultMembership()
	}
	if opts.Auth == nil {
		opts.Auth = middleware.NewTokenAuth("mindscope-dev-secret")
	}
	return &Router{
		store:       store,
		assessments: services.NewAssessmentService(store, store),
		submissions: services.NewSubmissionService(store, store, store, opts.Analyzer),
		auth:        services.NewAuthService(store, opts.Auth.SignToken, opts.TokenTTL),
		users:       services.NewUserService(store, store),
		analytics:   services.NewAnalyticsService(store, opts.Analyzer),
		export:      services.NewExportService(store),
		membership:  opts.Membership,
		log:         opts.Logger,
		commit:      opts.Commit,
		buildTime:   opts.BuildTime,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("GET /api/assessments", rt.handleListAssessments)
	mux.Handle("POST /api/assessments", authed(rt.handleCreateAssessment))
	mux.HandleFunc("GET /api/assessments/{id}", rt.handleGetAssessment)
	mux.Handle("PUT /api/assessments/{id}", authed(rt.handleUpdateAssessment))
	mux.Handle("DELETE /api/assessments/{id}", authed(rt.handleDeleteAssessment))
	mux.Handle("GET /api/assessments/{id}/analytics", authed(rt.handleAnalytics))
	mux.Handle("GET /api/assessments/{id}/export", authed(rt.handleExport))

	mux.Handle("GET /api/submissions", authed(rt.handleListSubmissions))
	mux.HandleFunc("POST /api/submissions", rt.handleCreateSubmission)
	mux.HandleFunc("GET /api/submissions/{id}", rt.handleGetSubmission)

	mux.HandleFunc("POST /api/auth/register", rt.handleRegister)
	mux.HandleFunc("POST /api/auth/login", rt.handleLogin)
	mux.Handle("GET /api/users/{id}", authed(rt.handleGetUser))
	mux.Handle("PATCH /api/users/{id}", authed(rt.handleUpdateUser))
	mux.Handle("GET /api/users/{id}/history", authed(rt.handleUserHistory))
	mux.HandleFunc("GET /api/membership/plans", rt.handlePlans)

	mux.HandleFunc("GET /health", rt.handleHealth)
	mux.HandleFunc("GET /version", rt.handleVersion)
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"name":       "MindScope API",
		"locale":     locale,
		"msg":        utils.T(locale, "health.ok"),
		"commit":     rt.commit,
		"build_time": rt.buildTime,
	})
}

func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"commit":     rt.commit,
		"build_time": rt.buildTime,
	})
}

func (rt *Router) handlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"plans": rt.membership.Plans()})
}
