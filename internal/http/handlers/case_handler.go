// Case HTTP handlers.
//
// This file exposes REST endpoints for case (expediente) resources:
//   - POST   /cases                       (create)
//   - GET    /cases                       (list, paginated, ETag support;
//     ?numero= short-circuits to an exact lookup)
//   - GET    /cases/stats/summary         (corpus-wide aggregates)
//   - GET    /cases/{id}                  (fetch)
//   - PUT    /cases/{id}                  (rewrite descriptive fields)
//   - PATCH  /cases/{id}/status           (lifecycle transition)
//   - DELETE /cases/{id}                  (delete with owned rows)
//   - POST   /cases/{id}/documents        (file a document)
//   - GET    /cases/{id}/documents        (list documents)
//   - GET    /cases/{id}/documents/{docID}
//   - PUT    /cases/{id}/documents/{docID}
//   - DELETE /cases/{id}/documents/{docID}
//   - POST   /cases/{id}/predictions      (record, idempotent via Idempotency-Key)
//   - GET    /cases/{id}/predictions      (list)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/http/middleware"
	"github.com/goyo-ia/legal-backend/internal/repo"
	"github.com/goyo-ia/legal-backend/internal/services"
	"github.com/goyo-ia/legal-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// CaseService defines case lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CaseService interface {
	// Create registers a new case in the active state.
	Create(ctx context.Context, numero, tribunal, materia, partes string) (*domain.Case, error)
	// Get fetches a case by ID.
	Get(ctx context.Context, id string) (*domain.Case, error)
	// GetByNumero fetches a case by its unique number.
	GetByNumero(ctx context.Context, numero string) (*domain.Case, error)
	// Update rewrites the descriptive fields of a case.
	Update(ctx context.Context, id, numero, tribunal, materia, partes string) (*domain.Case, error)
	// ListPage returns a page of cases matching the filter and the total count.
	ListPage(ctx context.Context, f repo.CaseFilter, page, pageSize int) ([]domain.Case, int64, error)
	// ChangeStatus moves a case through its lifecycle.
	ChangeStatus(ctx context.Context, id string, estado domain.CaseStatus) (*domain.Case, error)
	// Delete removes a case and everything filed under it.
	Delete(ctx context.Context, id string) error
	// AddDocument files a document under a case.
	AddDocument(ctx context.Context, caseID, tipo, contenido string, fecha time.Time) (*domain.CaseDocument, error)
	// ListDocuments returns a case's documents.
	ListDocuments(ctx context.Context, caseID string) ([]domain.CaseDocument, error)
	// GetDocument fetches one document scoped to its case.
	GetDocument(ctx context.Context, caseID, docID string) (*domain.CaseDocument, error)
	// UpdateDocument rewrites a filed document in place.
	UpdateDocument(ctx context.Context, caseID, docID, tipo, contenido string, fecha time.Time) (*domain.CaseDocument, error)
	// DeleteDocument removes one filed document.
	DeleteDocument(ctx context.Context, caseID, docID string) error
	// RecordPrediction validates and stores an outcome prediction.
	RecordPrediction(ctx context.Context, caseID string, grounds []string, probability float64, rationale string) (*domain.Prediction, error)
	// Predict asks the configured predictor for a fresh estimate and stores it.
	Predict(ctx context.Context, caseID string) (*domain.Prediction, error)
	// ListPredictions returns a case's predictions.
	ListPredictions(ctx context.Context, caseID string) ([]domain.Prediction, error)
	// GetPrediction fetches a prediction by ID.
	GetPrediction(ctx context.Context, id string) (*domain.Prediction, error)
	// Summary returns corpus-wide case aggregates.
	Summary(ctx context.Context) (*repo.CaseSummary, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for auth, cases, judgments, and templates.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	authSvc     AuthService
	users       UserReader
	caseSvc     CaseService
	judgmentSvc JudgmentService
	templateSvc TemplateService

	// IdempotencyTTL bounds how long a recorded prediction POST can be
	// replayed. Zero disables recording.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(authSvc AuthService, users UserReader, caseSvc CaseService, judgmentSvc JudgmentService, templateSvc TemplateService) *Handlers {
	return &Handlers{
		authSvc:     authSvc,
		users:       users,
		caseSvc:     caseSvc,
		judgmentSvc: judgmentSvc,
		templateSvc: templateSvc,
	}
}

//
// DTOs
//

// CreateCaseRequest is the JSON payload for registering a case.
type CreateCaseRequest struct {
	// Numero is the unique case-file number.
	Numero string `json:"numero" binding:"required,min=1,max=100" example:"EXP-77/2026"`
	// Tribunal is the court handling the case.
	Tribunal string `json:"tribunal" binding:"required,min=1,max=500" example:"TSJ Madrid"`
	// Materia is the legal matter.
	Materia string `json:"materia" binding:"required,min=1,max=200" example:"laboral"`
	// Partes describes the parties involved.
	Partes string `json:"partes" example:"Pérez c. Acme SA"`
}

// UpdateCaseStatusRequest is the JSON payload for a lifecycle transition.
type UpdateCaseStatusRequest struct {
	// Estado is the target state: active, closed, or archived.
	Estado string `json:"estado" binding:"required" example:"closed"`
}

// AddDocumentRequest is the JSON payload for filing a document.
type AddDocumentRequest struct {
	// TipoDocumento classifies the filing (demanda, prueba, resolucion...).
	TipoDocumento string `json:"tipo_documento" example:"demanda"`
	// Contenido is the document text.
	Contenido string `json:"contenido" binding:"required" example:"AL JUZGADO DE LO SOCIAL..."`
	// FechaCreacion is the filing date (RFC 3339). Defaults to now.
	FechaCreacion *time.Time `json:"fecha_creacion,omitempty"`
}

// CreatePredictionRequest is the JSON payload for recording a prediction.
type CreatePredictionRequest struct {
	// Probability is the success estimate in [0, 1].
	Probability float64 `json:"probability" example:"0.7321"`
	// Grounds are the judgment IDs the estimate cites (at least one).
	Grounds []string `json:"grounds" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// Rationale is the textual justification.
	Rationale string `json:"rationale" example:"Doctrina consolidada del TS"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListCasesResponse wraps a page of cases and pagination information.
type ListCasesResponse struct {
	Cases      []domain.Case `json:"cases"`
	Pagination Pagination    `json:"pagination"`
}

// CaseStatsResponse carries corpus-wide case aggregates for dashboards.
type CaseStatsResponse struct {
	TotalExpedientes     int64            `json:"total_expedientes"`
	TotalDocumentos      int64            `json:"total_documentos"`
	EstadoDistribution   map[string]int64 `json:"estado_distribution"`
	TribunalDistribution map[string]int64 `json:"tribunal_distribution"`
	MateriaDistribution  map[string]int64 `json:"materia_distribution"`
	// AvgDocumentosPorExpediente is rounded to 2 fractional digits; 0 for an
	// empty corpus.
	AvgDocumentosPorExpediente float64 `json:"avg_documentos_per_expediente"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.BoundedInt(c.Query("page_size"), defaultPageSize, 1, maxPageSize)
	return
}

// paginationOf assembles the pagination block for list responses.
func paginationOf(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// caseFilterFromQuery builds the repository filter from query params.
func caseFilterFromQuery(c *gin.Context) repo.CaseFilter {
	return repo.CaseFilter{
		Tribunal: strings.TrimSpace(c.Query("tribunal")),
		Materia:  strings.TrimSpace(c.Query("materia")),
		Estado:   domain.CaseStatus(strings.TrimSpace(c.Query("estado"))),
	}
}

//
// Handlers
//

// CreateCase godoc
// @ID          createCase
// @Summary     Register a new case
// @Description Creates a case in the active state. The numero must be unique.
// @Tags        Cases
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateCaseRequest  true  "Create case payload"
//
// @Success     201  {object}  domain.Case
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Numero already exists"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cases [post]
func (h *Handlers) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	cs, err := h.caseSvc.Create(c.Request.Context(), req.Numero, req.Tribunal, req.Materia, req.Partes)
	switch {
	case err == nil:
	case isErr(err, services.ErrCaseNumberTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, "case number already exists")
		return
	case isErr(err, services.ErrInvalidCaseInput):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, cs)
}

// ListCases godoc
// @ID          listCases
// @Summary     List cases (paginated)
// @Description Returns a page of cases. Filterable by tribunal, materia, estado. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Cases
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       numero         query   string  false "Exact numero lookup (bypasses pagination)"
// @Param       tribunal       query   string  false "Substring match on tribunal"
// @Param       materia        query   string  false "Exact match on materia"
// @Param       estado         query   string  false "active | closed | archived"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCasesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     404  {object} handlers.ErrorResponse "No case with that numero"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases [get]
func (h *Handlers) ListCases(c *gin.Context) {
	ctx := c.Request.Context()

	// numero is unique, so an exact lookup bypasses paging entirely.
	if numero := strings.TrimSpace(c.Query("numero")); numero != "" {
		cs, err := h.caseSvc.GetByNumero(ctx, numero)
		if err != nil {
			h.caseError(c, err)
			return
		}
		ok(c, http.StatusOK, ListCasesResponse{
			Cases:      []domain.Case{*cs},
			Pagination: paginationOf(1, 1, 1),
		})
		return
	}

	page, pageSize := clampPagination(c)
	filter := caseFilterFromQuery(c)

	// ETag pre-check (best effort).
	if db := h.caseDB(); db != nil {
		count, maxTS, err := repo.CasesStats(ctx, db, filter)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"cases:%s:%s:%s:%d:%d"`, filter.Tribunal, filter.Materia, filter.Estado, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.caseSvc.ListPage(ctx, filter, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListCasesResponse{
		Cases:      items,
		Pagination: paginationOf(page, pageSize, total),
	})
}

// GetCase godoc
// @ID          getCase
// @Summary     Fetch a case
// @Tags        Cases
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Case ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Case
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id} [get]
func (h *Handlers) GetCase(c *gin.Context) {
	caseID := c.Param("id")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}

	cs, err := h.caseSvc.Get(c.Request.Context(), caseID)
	if err != nil {
		h.caseError(c, err)
		return
	}
	ok(c, http.StatusOK, cs)
}

// UpdateCase godoc
// @ID          updateCase
// @Summary     Update a case
// @Description Rewrites numero, tribunal, materia, and partes. Estado is untouched; use the status endpoint for lifecycle moves.
// @Tags        Cases
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Case ID (UUID)"  format(uuid)
// @Param       body  body  handlers.CreateCaseRequest  true  "New field values"
//
// @Success     200  {object} domain.Case
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     409  {object} handlers.ErrorResponse "Numero already exists"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id} [put]
func (h *Handlers) UpdateCase(c *gin.Context) {
	caseID := c.Param("id")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}

	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	cs, err := h.caseSvc.Update(c.Request.Context(), caseID, req.Numero, req.Tribunal, req.Materia, req.Partes)
	switch {
	case err == nil:
	case isErr(err, services.ErrCaseNumberTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, "case number already exists")
		return
	case isErr(err, services.ErrInvalidCaseInput):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	case isErr(err, services.ErrCaseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "case not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, cs)
}

// CaseStats godoc
// @ID          caseStats
// @Summary     Case corpus aggregates
// @Description Totals and per-estado/tribunal/materia distributions over all cases, plus document counts.
// @Tags        Cases
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} handlers.CaseStatsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/stats/summary [get]
func (h *Handlers) CaseStats(c *gin.Context) {
	s, err := h.caseSvc.Summary(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	var avg float64
	if s.TotalCases > 0 {
		avg = math.Round(float64(s.TotalDocuments)/float64(s.TotalCases)*100) / 100
	}
	ok(c, http.StatusOK, CaseStatsResponse{
		TotalExpedientes:           s.TotalCases,
		TotalDocumentos:            s.TotalDocuments,
		EstadoDistribution:         s.ByEstado,
		TribunalDistribution:       s.ByTribunal,
		MateriaDistribution:        s.ByMateria,
		AvgDocumentosPorExpediente: avg,
	})
}

// UpdateCaseStatus godoc
// @ID          updateCaseStatus
// @Summary     Transition a case's lifecycle state
// @Description Moves the case to a new estado. Legal moves: active→closed, active→archived, closed→archived. Archived is terminal.
// @Tags        Cases
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Case ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateCaseStatusRequest  true  "Target state"
//
// @Success     200  {object} domain.Case
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     422  {object} handlers.ErrorResponse "Transition not allowed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id}/status [patch]
func (h *Handlers) UpdateCaseStatus(c *gin.Context) {
	caseID := c.Param("id")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}

	var req UpdateCaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "estado required")
		return
	}

	cs, err := h.caseSvc.ChangeStatus(c.Request.Context(), caseID, domain.CaseStatus(req.Estado))
	switch {
	case err == nil:
	case isErr(err, services.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "estado must be active, closed or archived")
		return
	case isErr(err, services.ErrInvalidTransition):
		fail(c, http.StatusUnprocessableEntity, ErrCodeInvalidTransition, err.Error())
		return
	case isErr(err, services.ErrCaseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "case not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, cs)
}

// DeleteCase godoc
// @ID          deleteCase
// @Summary     Delete a case
// @Description Removes the case together with its documents and predictions. Linked judgments survive with the link severed.
// @Tags        Cases
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Case ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id} [delete]
func (h *Handlers) DeleteCase(c *gin.Context) {
	caseID := c.Param("id")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}

	if err := h.caseSvc.Delete(c.Request.Context(), caseID); err != nil {
		h.caseError(c, err)
		return
	}
	noContent(c)
}

// AddCaseDocument godoc
// @ID          addCaseDocument
// @Summary     File a document under a case
// @Tags        Documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Case ID (UUID)"  format(uuid)
// @Param       body  body  handlers.AddDocumentRequest  true  "Document payload"
//
// @Success     201  {object} domain.CaseDocument
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id}/documents [post]
func (h *Handlers) AddCaseDocument(c *gin.Context) {
	caseID := c.Param("id")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}

	var req AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	var fecha time.Time
	if req.FechaCreacion != nil {
		fecha = *req.FechaCreacion
	}

	doc, err := h.caseSvc.AddDocument(c.Request.Context(), caseID, req.TipoDocumento, req.Contenido, fecha)
	switch {
	case err == nil:
	case isErr(err, services.ErrEmptyContent):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "contenido required")
		return
	case isErr(err, services.ErrCaseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "case not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, doc)
}

// ListCaseDocuments godoc
// @ID          listCaseDocuments
// @Summary     List a case's documents
// @Tags        Documents
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Case ID (UUID)"  format(uuid)
//
// @Success     200  {array}  domain.CaseDocument
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id}/documents [get]
func (h *Handlers) ListCaseDocuments(c *gin.Context) {
	caseID := c.Param("id")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}

	docs, err := h.caseSvc.ListDocuments(c.Request.Context(), caseID)
	if err != nil {
		h.caseError(c, err)
		return
	}
	ok(c, http.StatusOK, docs)
}

// GetCaseDocument godoc
// @ID          getCaseDocument
// @Summary     Fetch one document
// @Tags        Documents
// @Produce     json
// @Security    BearerAuth
//
// @Param       id     path  string  true  "Case ID (UUID)"      format(uuid)
// @Param       docID  path  string  true  "Document ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.CaseDocument
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id}/documents/{docID} [get]
func (h *Handlers) GetCaseDocument(c *gin.Context) {
	caseID, docID := c.Param("id"), c.Param("docID")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}
	if _, err := uuid.Parse(docID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "document id must be a UUID")
		return
	}

	doc, err := h.caseSvc.GetDocument(c.Request.Context(), caseID, docID)
	switch {
	case err == nil:
	case isErr(err, services.ErrDocumentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "document not found")
		return
	case isErr(err, services.ErrCaseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "case not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, doc)
}

// UpdateCaseDocument godoc
// @ID          updateCaseDocument
// @Summary     Update a filed document
// @Description Rewrites the document's tipo, content, and filing date. Content changes are re-embedded when an embedder is configured.
// @Tags        Documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id     path  string  true  "Case ID (UUID)"      format(uuid)
// @Param       docID  path  string  true  "Document ID (UUID)"  format(uuid)
// @Param       body   body  handlers.AddDocumentRequest  true  "New document payload"
//
// @Success     200  {object} domain.CaseDocument
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id}/documents/{docID} [put]
func (h *Handlers) UpdateCaseDocument(c *gin.Context) {
	caseID, docID := c.Param("id"), c.Param("docID")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}
	if _, err := uuid.Parse(docID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "document id must be a UUID")
		return
	}

	var req AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	var fecha time.Time
	if req.FechaCreacion != nil {
		fecha = *req.FechaCreacion
	}

	doc, err := h.caseSvc.UpdateDocument(c.Request.Context(), caseID, docID, req.TipoDocumento, req.Contenido, fecha)
	switch {
	case err == nil:
	case isErr(err, services.ErrEmptyContent):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "contenido required")
		return
	case isErr(err, services.ErrDocumentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "document not found")
		return
	case isErr(err, services.ErrCaseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "case not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, doc)
}

// DeleteCaseDocument godoc
// @ID          deleteCaseDocument
// @Summary     Delete a filed document
// @Tags        Documents
// @Security    BearerAuth
//
// @Param       id     path  string  true  "Case ID (UUID)"      format(uuid)
// @Param       docID  path  string  true  "Document ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id}/documents/{docID} [delete]
func (h *Handlers) DeleteCaseDocument(c *gin.Context) {
	caseID, docID := c.Param("id"), c.Param("docID")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}
	if _, err := uuid.Parse(docID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "document id must be a UUID")
		return
	}

	err := h.caseSvc.DeleteDocument(c.Request.Context(), caseID, docID)
	switch {
	case err == nil:
	case isErr(err, services.ErrDocumentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "document not found")
		return
	case isErr(err, services.ErrCaseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "case not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// CreatePrediction godoc
// @ID          createPrediction
// @Summary     Record an outcome prediction
// @Description Stores a prediction for the case. Send an Idempotency-Key header to make retries replay-safe: a repeated key returns the original prediction.
// @Tags        Predictions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Client-chosen retry key"
// @Param       id    path  string  true  "Case ID (UUID)"  format(uuid)
// @Param       body  body  handlers.CreatePredictionRequest  true  "Prediction payload"
//
// @Success     200  {object} domain.Prediction "Replayed prior result"
// @Success     201  {object} domain.Prediction
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     422  {object} handlers.ErrorResponse "Validation failed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id}/predictions [post]
func (h *Handlers) CreatePrediction(c *gin.Context) {
	ctx := c.Request.Context()
	caseID := c.Param("id")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}

	// Replay path: a stored result exists for this (user, case, key) tuple.
	// Resolved here rather than in middleware because the authenticated
	// identity is only known after RequireAuth has run.
	if p := h.replayedPrediction(c, caseID); p != nil {
		ok(c, http.StatusOK, p)
		return
	}

	var req CreatePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.caseSvc.RecordPrediction(ctx, caseID, req.Grounds, req.Probability, req.Rationale)
	switch {
	case err == nil:
	case isErr(err, services.ErrInvalidProbability):
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed, "probability must be between 0 and 1")
		return
	case isErr(err, services.ErrEmptyGrounds):
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed, "at least one grounding judgment required")
		return
	case isErr(err, services.ErrCaseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "case not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	h.recordIdempotency(c, caseID, p.ID)
	ok(c, http.StatusCreated, p)
}

// PredictCase godoc
// @ID          predictCase
// @Summary     Compute a fresh outcome prediction
// @Description Runs the configured predictor over the case and its documents, validates the draft, and stores the resulting prediction.
// @Tags        Predictions
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Case ID (UUID)"  format(uuid)
//
// @Success     201  {object} domain.Prediction
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     422  {object} handlers.ErrorResponse "Draft failed validation"
// @Failure     503  {object} handlers.ErrorResponse "Predictor not configured"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id}/predict [post]
func (h *Handlers) PredictCase(c *gin.Context) {
	caseID := c.Param("id")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}

	p, err := h.caseSvc.Predict(c.Request.Context(), caseID)
	switch {
	case err == nil:
	case isErr(err, services.ErrPredictorUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeInternal, "prediction is not configured")
		return
	case isErr(err, services.ErrCaseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "case not found")
		return
	case isErr(err, services.ErrInvalidProbability), isErr(err, services.ErrEmptyGrounds):
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed, err.Error())
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, p)
}

// ListPredictions godoc
// @ID          listPredictions
// @Summary     List a case's predictions
// @Tags        Predictions
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Case ID (UUID)"  format(uuid)
//
// @Success     200  {array}  domain.Prediction
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id}/predictions [get]
func (h *Handlers) ListPredictions(c *gin.Context) {
	caseID := c.Param("id")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}

	preds, err := h.caseSvc.ListPredictions(c.Request.Context(), caseID)
	if err != nil {
		h.caseError(c, err)
		return
	}
	ok(c, http.StatusOK, preds)
}

//
// Internal helpers
//

// isErr is a tiny alias keeping the switch blocks readable.
func isErr(err, target error) bool { return errors.Is(err, target) }

// caseDB unwraps the concrete service to reach the DB handle for
// repo-level pre-checks (ETag, idempotency). Returns nil for fakes.
func (h *Handlers) caseDB() *gorm.DB {
	if svc, okAssert := h.caseSvc.(*services.CaseService); okAssert {
		return svc.DB
	}
	return nil
}

// caseError maps common case-service failures onto HTTP responses.
func (h *Handlers) caseError(c *gin.Context, err error) {
	if isErr(err, services.ErrCaseNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "case not found")
		return
	}
	fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
}

// replayedPrediction loads the prediction recorded for this request's
// idempotency tuple, or nil when unavailable.
func (h *Handlers) replayedPrediction(c *gin.Context, caseID string) *domain.Prediction {
	db := h.caseDB()
	key, okKey := middleware.GetIdempotencyKey(c)
	if db == nil || !okKey {
		return nil
	}
	rec, err := repo.GetIdempotency(c.Request.Context(), db, userID(c), caseID, key, time.Now().UTC())
	if err != nil || rec.PredictionID == "" {
		return nil
	}
	p, err := h.caseSvc.GetPrediction(c.Request.Context(), rec.PredictionID)
	if err != nil {
		return nil
	}
	return p
}

// recordIdempotency stores the idempotency tuple after a successful creation
// so later retries replay. Best effort: a race losing to a concurrent insert
// is fine, the other writer recorded the same operation.
func (h *Handlers) recordIdempotency(c *gin.Context, caseID, predictionID string) {
	db := h.caseDB()
	key, okKey := middleware.GetIdempotencyKey(c)
	if db == nil || !okKey || h.IdempotencyTTL <= 0 {
		return
	}
	_, _ = repo.CreateIdempotency(c.Request.Context(), db, userID(c), caseID, key, predictionID, http.StatusCreated, h.IdempotencyTTL)
}
