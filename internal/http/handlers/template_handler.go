// Document template HTTP handlers.
//
//   - POST /templates               (register a template)
//   - GET  /templates               (list, filterable by tipo)
//   - GET  /templates/{id}          (fetch)
//   - POST /templates/{id}/render   (generate a document from the template)
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/services"
)

// TemplateService defines document template operations consumed by HTTP
// handlers.
type TemplateService interface {
	// Create registers a reusable document template.
	Create(ctx context.Context, nombre, tipo, content string) (*domain.DocumentTemplate, error)
	// Get fetches a template by ID.
	Get(ctx context.Context, id string) (*domain.DocumentTemplate, error)
	// List returns templates, optionally filtered by tipo.
	List(ctx context.Context, tipo string) ([]domain.DocumentTemplate, error)
	// Render generates a document from the template and records where the
	// output landed.
	Render(ctx context.Context, id string, data map[string]string) (*domain.DocumentTemplate, error)
}

// CreateTemplateRequest is the JSON payload for registering a template.
type CreateTemplateRequest struct {
	Nombre          string `json:"nombre" binding:"required,min=1,max=200" example:"Demanda de despido"`
	Tipo            string `json:"tipo" binding:"required,min=1,max=100" example:"demanda"`
	TemplateContent string `json:"template_content" binding:"required" example:"AL JUZGADO DE LO SOCIAL DE {{ciudad}}..."`
}

// RenderTemplateRequest is the JSON payload for rendering a template.
type RenderTemplateRequest struct {
	// Data maps placeholder names to their substitution values.
	Data map[string]string `json:"data"`
}

// CreateTemplate godoc
// @ID          createTemplate
// @Summary     Register a document template
// @Tags        Templates
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateTemplateRequest  true  "Template payload"
//
// @Success     201  {object} domain.DocumentTemplate
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /templates [post]
func (h *Handlers) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	t, err := h.templateSvc.Create(c.Request.Context(), req.Nombre, req.Tipo, req.TemplateContent)
	switch {
	case err == nil:
	case isErr(err, services.ErrInvalidTemplateInput):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, t)
}

// ListTemplates godoc
// @ID          listTemplates
// @Summary     List document templates
// @Tags        Templates
// @Produce     json
// @Security    BearerAuth
//
// @Param       tipo  query  string  false "Exact match on tipo"
//
// @Success     200  {array}  domain.DocumentTemplate
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /templates [get]
func (h *Handlers) ListTemplates(c *gin.Context) {
	items, err := h.templateSvc.List(c.Request.Context(), strings.TrimSpace(c.Query("tipo")))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetTemplate godoc
// @ID          getTemplate
// @Summary     Fetch a document template
// @Tags        Templates
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Template ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.DocumentTemplate
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /templates/{id} [get]
func (h *Handlers) GetTemplate(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template id must be a UUID")
		return
	}

	t, err := h.templateSvc.Get(c.Request.Context(), id)
	switch {
	case err == nil:
	case isErr(err, services.ErrTemplateNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, t)
}

// RenderTemplate godoc
// @ID          renderTemplate
// @Summary     Generate a document from a template
// @Description Substitutes the supplied data into the template, produces the output document, and stores its location on the template record.
// @Tags        Templates
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Template ID (UUID)"  format(uuid)
// @Param       body  body  handlers.RenderTemplateRequest  true  "Substitution data"
//
// @Success     200  {object} domain.DocumentTemplate
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Failure     503  {object} handlers.ErrorResponse "Generation not configured"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /templates/{id}/render [post]
func (h *Handlers) RenderTemplate(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template id must be a UUID")
		return
	}

	var req RenderTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	t, err := h.templateSvc.Render(c.Request.Context(), id, req.Data)
	switch {
	case err == nil:
	case isErr(err, services.ErrTemplateNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
		return
	case isErr(err, services.ErrGeneratorUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeInternal, "document generation is not configured")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, t)
}
