// Judgment HTTP handlers: the jurisprudence corpus API.
//
//   - POST /judgments               (ingest a judgment)
//   - GET  /judgments               (list, paginated, filterable)
//   - GET  /judgments/search        (semantic or lexical search)
//   - GET  /judgments/tribunals     (distinct facet)
//   - GET  /judgments/materias      (distinct facet)
//   - GET  /judgments/stats/summary (corpus-wide aggregates)
//   - GET  /judgments/{id}          (fetch)
//   - POST /judgments/{id}/link     (link to a case)
//   - GET  /cases/{id}/judgments    (judgments linked to a case)
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/repo"
	"github.com/goyo-ia/legal-backend/internal/services"
)

// JudgmentService defines jurisprudence corpus operations consumed by HTTP
// handlers.
type JudgmentService interface {
	// Ingest stores a judgment, embedding it when possible.
	Ingest(ctx context.Context, j *domain.Judgment) (*domain.Judgment, error)
	// Get fetches a judgment by ID.
	Get(ctx context.Context, id string) (*domain.Judgment, error)
	// ListPage returns a page of judgments plus the total count.
	ListPage(ctx context.Context, f repo.JudgmentFilter, page, pageSize int) ([]domain.Judgment, int64, error)
	// Search ranks the corpus against a free-text query.
	Search(ctx context.Context, query string, f repo.JudgmentFilter) ([]domain.Judgment, error)
	// Tribunals lists the distinct tribunal values.
	Tribunals(ctx context.Context) ([]string, error)
	// Materias lists the distinct materia values.
	Materias(ctx context.Context) ([]string, error)
	// LinkToCase attaches a judgment to a case.
	LinkToCase(ctx context.Context, judgmentID, caseID string) error
	// ForCase returns the judgments linked to a case.
	ForCase(ctx context.Context, caseID string) ([]domain.Judgment, error)
	// Summary returns corpus-wide judgment aggregates.
	Summary(ctx context.Context) (*repo.JudgmentSummary, error)
}

// IngestJudgmentRequest is the JSON payload for ingesting a judgment.
type IngestJudgmentRequest struct {
	Tribunal   string     `json:"tribunal" binding:"required,min=1,max=500" example:"Tribunal Supremo"`
	Fecha      *time.Time `json:"fecha,omitempty"`
	Materia    string     `json:"materia" binding:"required,min=1,max=200" example:"laboral"`
	Partes     string     `json:"partes" example:"García c. Beta SL"`
	Expediente string     `json:"expediente" example:"REC-100/2025"`
	FullText   string     `json:"full_text" binding:"required" example:"FUNDAMENTOS DE DERECHO..."`
	URL        *string    `json:"url,omitempty" example:"https://www.poderjudicial.es/..."`
}

// LinkJudgmentRequest is the JSON payload for linking a judgment to a case.
type LinkJudgmentRequest struct {
	CaseID string `json:"case_id" binding:"required" format:"uuid"`
}

// ListJudgmentsResponse wraps a page of judgments and pagination information.
type ListJudgmentsResponse struct {
	Judgments  []domain.Judgment `json:"judgments"`
	Pagination Pagination        `json:"pagination"`
}

// JudgmentStatsResponse carries corpus-wide judgment aggregates.
type JudgmentStatsResponse struct {
	TotalCount           int64            `json:"total_count"`
	WithEmbeddings       int64            `json:"with_embeddings"`
	WithoutEmbeddings    int64            `json:"without_embeddings"`
	TribunalDistribution map[string]int64 `json:"tribunal_distribution"`
	MateriaDistribution  map[string]int64 `json:"materia_distribution"`
	DateRange            DateRange        `json:"date_range"`
}

// DateRange bounds the fecha values in the corpus; both ends are null when
// the corpus is empty.
type DateRange struct {
	Earliest *time.Time `json:"earliest"`
	Latest   *time.Time `json:"latest"`
}

// judgmentFilterFromQuery builds the repository filter from query params.
// Date bounds use YYYY-MM-DD; malformed values are ignored.
func judgmentFilterFromQuery(c *gin.Context) repo.JudgmentFilter {
	f := repo.JudgmentFilter{
		Tribunal: strings.TrimSpace(c.Query("tribunal")),
		Materia:  strings.TrimSpace(c.Query("materia")),
	}
	if raw := c.Query("fecha_desde"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			f.FechaDesde = t
		}
	}
	if raw := c.Query("fecha_hasta"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			f.FechaHasta = t
		}
	}
	return f
}

// IngestJudgment godoc
// @ID          ingestJudgment
// @Summary     Ingest a judgment into the corpus
// @Tags        Judgments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.IngestJudgmentRequest  true  "Judgment payload"
//
// @Success     201  {object} domain.Judgment
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /judgments [post]
func (h *Handlers) IngestJudgment(c *gin.Context) {
	var req IngestJudgmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	j := &domain.Judgment{
		Tribunal:   req.Tribunal,
		Materia:    req.Materia,
		Partes:     req.Partes,
		Expediente: req.Expediente,
		FullText:   req.FullText,
		URL:        req.URL,
	}
	if req.Fecha != nil {
		j.Fecha = *req.Fecha
	}

	out, err := h.judgmentSvc.Ingest(c.Request.Context(), j)
	switch {
	case err == nil:
	case isErr(err, services.ErrInvalidJudgmentInput):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, out)
}

// ListJudgments godoc
// @ID          listJudgments
// @Summary     List judgments (paginated)
// @Description Returns a page of judgments ordered by fecha descending. Filterable by tribunal (substring), materia, and inclusive date bounds.
// @Tags        Judgments
// @Produce     json
// @Security    BearerAuth
//
// @Param       tribunal     query  string  false "Substring match on tribunal"
// @Param       materia      query  string  false "Exact match on materia"
// @Param       fecha_desde  query  string  false "Lower bound, YYYY-MM-DD"
// @Param       fecha_hasta  query  string  false "Upper bound, YYYY-MM-DD"
// @Param       page         query  int     false "Page number"    minimum(1) default(1)
// @Param       page_size    query  int     false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListJudgmentsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /judgments [get]
func (h *Handlers) ListJudgments(c *gin.Context) {
	page, pageSize := clampPagination(c)
	filter := judgmentFilterFromQuery(c)

	items, total, err := h.judgmentSvc.ListPage(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListJudgmentsResponse{
		Judgments:  items,
		Pagination: paginationOf(page, pageSize, total),
	})
}

// SearchJudgments godoc
// @ID          searchJudgments
// @Summary     Search the jurisprudence corpus
// @Description Ranks judgments against a free-text query. Uses vector similarity when embeddings are available, otherwise a diacritic-insensitive lexical match. Accepts the same filters as the list endpoint.
// @Tags        Judgments
// @Produce     json
// @Security    BearerAuth
//
// @Param       q            query  string  true  "Free-text query"
// @Param       tribunal     query  string  false "Substring match on tribunal"
// @Param       materia      query  string  false "Exact match on materia"
// @Param       fecha_desde  query  string  false "Lower bound, YYYY-MM-DD"
// @Param       fecha_hasta  query  string  false "Upper bound, YYYY-MM-DD"
//
// @Success     200  {array}  domain.Judgment
// @Failure     400  {object} handlers.ErrorResponse "Missing query"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /judgments/search [get]
func (h *Handlers) SearchJudgments(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	results, err := h.judgmentSvc.Search(c.Request.Context(), query, judgmentFilterFromQuery(c))
	switch {
	case err == nil:
	case isErr(err, services.ErrEmptyQuery):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "query parameter q required")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if results == nil {
		results = []domain.Judgment{}
	}
	ok(c, http.StatusOK, results)
}

// ListTribunals godoc
// @ID          listTribunals
// @Summary     Distinct tribunals in the corpus
// @Tags        Judgments
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}  string
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /judgments/tribunals [get]
func (h *Handlers) ListTribunals(c *gin.Context) {
	vals, err := h.judgmentSvc.Tribunals(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, vals)
}

// ListMaterias godoc
// @ID          listMaterias
// @Summary     Distinct materias in the corpus
// @Tags        Judgments
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}  string
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /judgments/materias [get]
func (h *Handlers) ListMaterias(c *gin.Context) {
	vals, err := h.judgmentSvc.Materias(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, vals)
}

// JudgmentStats godoc
// @ID          judgmentStats
// @Summary     Judgment corpus aggregates
// @Description Totals, embedding coverage, per-tribunal/materia distributions, and the fecha range over the whole corpus.
// @Tags        Judgments
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} handlers.JudgmentStatsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /judgments/stats/summary [get]
func (h *Handlers) JudgmentStats(c *gin.Context) {
	s, err := h.judgmentSvc.Summary(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, JudgmentStatsResponse{
		TotalCount:           s.Total,
		WithEmbeddings:       s.WithEmbeddings,
		WithoutEmbeddings:    s.Total - s.WithEmbeddings,
		TribunalDistribution: s.ByTribunal,
		MateriaDistribution:  s.ByMateria,
		DateRange:            DateRange{Earliest: s.Earliest, Latest: s.Latest},
	})
}

// GetJudgment godoc
// @ID          getJudgment
// @Summary     Fetch a judgment
// @Tags        Judgments
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Judgment ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Judgment
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Judgment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /judgments/{id} [get]
func (h *Handlers) GetJudgment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "judgment id must be a UUID")
		return
	}

	j, err := h.judgmentSvc.Get(c.Request.Context(), id)
	switch {
	case err == nil:
	case isErr(err, services.ErrJudgmentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "judgment not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, j)
}

// LinkJudgment godoc
// @ID          linkJudgment
// @Summary     Link a judgment to a case
// @Tags        Judgments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Judgment ID (UUID)"  format(uuid)
// @Param       body  body  handlers.LinkJudgmentRequest  true  "Target case"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Case or judgment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /judgments/{id}/link [post]
func (h *Handlers) LinkJudgment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "judgment id must be a UUID")
		return
	}
	var req LinkJudgmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case_id required")
		return
	}
	if _, err := uuid.Parse(req.CaseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case_id must be a UUID")
		return
	}

	err := h.judgmentSvc.LinkToCase(c.Request.Context(), id, req.CaseID)
	switch {
	case err == nil:
	case isErr(err, services.ErrJudgmentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "judgment not found")
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

// ListCaseJudgments godoc
// @ID          listCaseJudgments
// @Summary     Judgments linked to a case
// @Tags        Judgments
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Case ID (UUID)"  format(uuid)
//
// @Success     200  {array}  domain.Judgment
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id}/judgments [get]
func (h *Handlers) ListCaseJudgments(c *gin.Context) {
	caseID := c.Param("id")
	if _, err := uuid.Parse(caseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "case id must be a UUID")
		return
	}

	items, err := h.judgmentSvc.ForCase(c.Request.Context(), caseID)
	switch {
	case err == nil:
	case isErr(err, services.ErrCaseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "case not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}
