package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/aussiebroadwan/campus/internal/campus/store"
	"github.com/aussiebroadwan/campus/pkg/httpx"
	"github.com/aussiebroadwan/campus/pkg/jwtx"
	"github.com/aussiebroadwan/campus/pkg/slogx"

	_ "github.com/aussiebroadwan/campus/api/campus" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	AccountService      *service.AccountService
	TwoFactorService    *service.TwoFactorService
	VerificationService *service.VerificationService

	// ReadyChecks are probed by /readyz next to the database and signer.
	ReadyChecks map[string]ReadyCheck
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerTwoFactor()
	r.registerRoleRequests()
	r.registerVerification()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Campus Identity Service API
//	@version		0.1.0
//	@description	Account registration, two-factor authentication and role verification for the campus ERP.
//	@description
//	@description				Session tokens are EdDSA signed JWTs and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/campus
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// session guards h with a session token and a per user rate limit.
func (r *Router) session(h http.HandlerFunc, limit httpx.RateLimitConfig, roles ...string) http.Handler {
	mws := []httpx.Middleware{httpx.AuthnMiddleware(r.verifier)}
	if len(roles) > 0 {
		mws = append(mws, httpx.RequireAnyRole(roles...))
	}
	mws = append(mws, httpx.RateLimitByUser(limit))
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Accounts:  r.AccountService,
		TwoFactor: r.TwoFactorService,
	}

	// Public credential endpoints - strict rate limit by IP
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), httpx.RateLimitByIP(httpx.StrictLimit)))

	// The pending token travels in the body, not the Authorization header
	r.Mux.Handle("POST /v1/auth/2fa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyChallenge), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/auth/2fa/resend",
		httpx.Chain(http.HandlerFunc(h.HandleResendLoginCode), httpx.RateLimitByIP(httpx.StrictLimit)))
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{Accounts: r.AccountService}

	r.Mux.Handle("GET /v1/me", r.session(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/me", r.session(h.HandleUpdate, httpx.ModerateLimit))
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{TwoFactor: r.TwoFactorService}

	r.Mux.Handle("GET /v1/2fa", r.session(h.HandleStatus, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/2fa/setup", r.session(h.HandleSetup, httpx.ModerateLimit))

	// Code checks - strict rate limit by user (prevent brute force of codes)
	r.Mux.Handle("POST /v1/2fa/confirm", r.session(h.HandleConfirm, httpx.StrictLimit))
	r.Mux.Handle("POST /v1/2fa/disable", r.session(h.HandleDisable, httpx.StrictLimit))
	r.Mux.Handle("POST /v1/2fa/resend", r.session(h.HandleResend, httpx.StrictLimit))
}

func (r *Router) registerRoleRequests() {
	h := &RoleRequestHandler{
		Accounts:     r.AccountService,
		Verification: r.VerificationService,
	}

	r.Mux.Handle("POST /v1/role-requests", r.session(h.HandleSubmit, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/role-requests/mine", r.session(h.HandleMine, httpx.LenientLimit))

	// Pre-account applications are public
	r.Mux.Handle("POST /v1/role-requests/apply",
		httpx.Chain(http.HandlerFunc(h.HandleApply), httpx.RateLimitByIP(httpx.StrictLimit)))

	// Reviewer endpoints
	r.Mux.Handle("GET /v1/role-requests/pending",
		r.session(h.HandlePending, httpx.LenientLimit, "faculty", "admin"))
	r.Mux.Handle("POST /v1/role-requests/{id}/decision",
		r.session(h.HandleDecision, httpx.ModerateLimit, "faculty", "admin"))
	r.Mux.Handle("POST /v1/role-requests/decisions",
		r.session(h.HandleBatch, httpx.ModerateLimit, "faculty", "admin"))
}

func (r *Router) registerVerification() {
	h := &VerificationHandler{Verification: r.VerificationService}

	r.Mux.Handle("GET /v1/verification/status", r.session(h.HandleStatus, httpx.ModerateLimit, "admin"))
	r.Mux.Handle("GET /v1/verification/scan", r.session(h.HandleScan, httpx.ModerateLimit, "admin"))
	r.Mux.Handle("POST /v1/verification/repair", r.session(h.HandleRepair, httpx.StrictLimit, "admin"))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys, r.ReadyChecks),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
