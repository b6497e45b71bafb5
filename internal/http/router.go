// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, rate limiting, and session auth.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/config"
	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/http/handlers"
	"github.com/goyo-ia/legal-backend/internal/http/middleware"
	"github.com/goyo-ia/legal-backend/internal/repo"
	"github.com/goyo-ia/legal-backend/internal/services"
)

// Collaborators bundles the optional AI backends. Any of them may be nil;
// the corresponding features then degrade (lexical search, record-only
// predictions, no document generation).
type Collaborators struct {
	Embedder  services.Embedder
	Predictor services.Predictor
	Generator services.Generator
}

// caseRepoShim adapts the repository free functions to the services.CaseRepo
// interface expected by the CaseService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type caseRepoShim struct{}

// CreateCase proxies repo.CreateCase.
func (caseRepoShim) CreateCase(ctx context.Context, db *gorm.DB, numero, tribunal, materia, partes string) (*domain.Case, error) {
	return repo.CreateCase(ctx, db, numero, tribunal, materia, partes)
}

// GetCase proxies repo.GetCase.
func (caseRepoShim) GetCase(ctx context.Context, db *gorm.DB, id string) (*domain.Case, error) {
	return repo.GetCase(ctx, db, id)
}

// GetCaseByNumero proxies repo.GetCaseByNumero.
func (caseRepoShim) GetCaseByNumero(ctx context.Context, db *gorm.DB, numero string) (*domain.Case, error) {
	return repo.GetCaseByNumero(ctx, db, numero)
}

// UpdateCase proxies repo.UpdateCase.
func (caseRepoShim) UpdateCase(ctx context.Context, db *gorm.DB, id, numero, tribunal, materia, partes string) (*domain.Case, error) {
	return repo.UpdateCase(ctx, db, id, numero, tribunal, materia, partes)
}

// CountCases proxies repo.CountCases (pagination support).
func (caseRepoShim) CountCases(ctx context.Context, db *gorm.DB, f repo.CaseFilter) (int64, error) {
	return repo.CountCases(ctx, db, f)
}

// ListCasesPage proxies repo.ListCasesPage (pagination support).
func (caseRepoShim) ListCasesPage(ctx context.Context, db *gorm.DB, f repo.CaseFilter, offset, limit int) ([]domain.Case, error) {
	return repo.ListCasesPage(ctx, db, f, offset, limit)
}

// UpdateCaseStatus proxies repo.UpdateCaseStatus.
func (caseRepoShim) UpdateCaseStatus(ctx context.Context, db *gorm.DB, id string, estado domain.CaseStatus) error {
	return repo.UpdateCaseStatus(ctx, db, id, estado)
}

// DeleteCaseCascade proxies repo.DeleteCaseCascade.
func (caseRepoShim) DeleteCaseCascade(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteCaseCascade(ctx, db, id)
}

// CreateCaseDocument proxies repo.CreateCaseDocument.
func (caseRepoShim) CreateCaseDocument(ctx context.Context, db *gorm.DB, caseID, tipo, contenido string, fecha time.Time, embedding domain.Vector) (*domain.CaseDocument, error) {
	return repo.CreateCaseDocument(ctx, db, caseID, tipo, contenido, fecha, embedding)
}

// ListCaseDocuments proxies repo.ListCaseDocuments.
func (caseRepoShim) ListCaseDocuments(ctx context.Context, db *gorm.DB, caseID string) ([]domain.CaseDocument, error) {
	return repo.ListCaseDocuments(ctx, db, caseID)
}

// GetCaseDocument proxies repo.GetCaseDocument.
func (caseRepoShim) GetCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID string) (*domain.CaseDocument, error) {
	return repo.GetCaseDocument(ctx, db, caseID, docID)
}

// UpdateCaseDocument proxies repo.UpdateCaseDocument.
func (caseRepoShim) UpdateCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID, tipo, contenido string, fecha time.Time, embedding domain.Vector) (*domain.CaseDocument, error) {
	return repo.UpdateCaseDocument(ctx, db, caseID, docID, tipo, contenido, fecha, embedding)
}

// DeleteCaseDocument proxies repo.DeleteCaseDocument.
func (caseRepoShim) DeleteCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID string) error {
	return repo.DeleteCaseDocument(ctx, db, caseID, docID)
}

// CreatePrediction proxies repo.CreatePrediction.
func (caseRepoShim) CreatePrediction(ctx context.Context, db *gorm.DB, caseID string, grounds domain.UUIDList, probability float64, rationale string) (*domain.Prediction, error) {
	return repo.CreatePrediction(ctx, db, caseID, grounds, probability, rationale)
}

// ListPredictions proxies repo.ListPredictions.
func (caseRepoShim) ListPredictions(ctx context.Context, db *gorm.DB, caseID string) ([]domain.Prediction, error) {
	return repo.ListPredictions(ctx, db, caseID)
}

// GetPrediction proxies repo.GetPrediction.
func (caseRepoShim) GetPrediction(ctx context.Context, db *gorm.DB, id string) (*domain.Prediction, error) {
	return repo.GetPrediction(ctx, db, id)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned API under /api/v*. Everything except registration,
// login, health, metrics, and docs sits behind bearer-token auth.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter + gzip
//  6. Metrics
//  7. Idempotency-Key validation (replay resolution happens in the
//     prediction handler, after auth has established the identity)
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, collab Collaborators, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"Authorization",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency-Key header validation
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{
		MaxLen: 200,
	}))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/collaborators
	authSvc := services.NewAuthService(db, cfg.Auth.SessionTTL, cfg.Auth.BcryptCost)

	caseSvc := services.NewCaseService(db, caseRepoShim{})
	caseSvc.Embedder = collab.Embedder
	caseSvc.Predictor = collab.Predictor

	judgmentSvc := services.NewJudgmentService(db, collab.Embedder)
	judgmentSvc.MaxResults = cfg.SearchMaxResults

	templateSvc := services.NewTemplateService(db, collab.Generator)
	templateSvc.Embedder = collab.Embedder

	h := handlers.New(authSvc, authSvc, caseSvc, judgmentSvc, templateSvc)
	h.IdempotencyTTL = cfg.IdempotencyTTL

	// Session validation bridge for the auth middleware.
	validate := func(ctx context.Context, token string) (middleware.AuthIdentity, error) {
		u, _, err := authSvc.Validate(ctx, token)
		if err != nil {
			return middleware.AuthIdentity{}, err
		}
		return middleware.AuthIdentity{UserID: u.ID, Role: u.Role}, nil
	}

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)

	// Public: account bootstrap
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	// Everything else requires a live session token
	authed := api.Group("", middleware.RequireAuth(validate))
	{
		// Account
		authed.GET("/auth/me", h.Me)
		authed.PUT("/auth/me", h.UpdateMe)
		authed.DELETE("/auth/me", h.DeactivateMe)
		authed.POST("/auth/logout", h.Logout)

		// Cases
		authed.POST("/cases", h.CreateCase)
		authed.GET("/cases", h.ListCases)
		authed.GET("/cases/stats/summary", h.CaseStats)
		authed.GET("/cases/:id", h.GetCase)
		authed.PUT("/cases/:id", h.UpdateCase)
		authed.PATCH("/cases/:id/status", h.UpdateCaseStatus)
		authed.DELETE("/cases/:id", h.DeleteCase)

		// Case documents
		authed.POST("/cases/:id/documents", h.AddCaseDocument)
		authed.GET("/cases/:id/documents", h.ListCaseDocuments)
		authed.GET("/cases/:id/documents/:docID", h.GetCaseDocument)
		authed.PUT("/cases/:id/documents/:docID", h.UpdateCaseDocument)
		authed.DELETE("/cases/:id/documents/:docID", h.DeleteCaseDocument)

		// Predictions
		authed.POST("/cases/:id/predictions", h.CreatePrediction)
		authed.POST("/cases/:id/predict", h.PredictCase)
		authed.GET("/cases/:id/predictions", h.ListPredictions)

		// Judgments (jurisprudence corpus)
		authed.POST("/judgments", h.IngestJudgment)
		authed.GET("/judgments", h.ListJudgments)
		authed.GET("/judgments/search", h.SearchJudgments)
		authed.GET("/judgments/tribunals", h.ListTribunals)
		authed.GET("/judgments/materias", h.ListMaterias)
		authed.GET("/judgments/stats/summary", h.JudgmentStats)
		authed.GET("/judgments/:id", h.GetJudgment)
		authed.POST("/judgments/:id/link", h.LinkJudgment)
		authed.GET("/cases/:id/judgments", h.ListCaseJudgments)

		// Document templates
		authed.POST("/templates", h.CreateTemplate)
		authed.GET("/templates", h.ListTemplates)
		authed.GET("/templates/:id", h.GetTemplate)
		authed.POST("/templates/:id/render", h.RenderTemplate)

		// Administration
		admin := authed.Group("", middleware.RequireRole("admin"))
		admin.PATCH("/admin/users/:id/active", h.SetUserActive)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
