package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/services"
)

// recordingGenerator captures what it was asked to render.
type recordingGenerator struct {
	lastData map[string]string
	fail     bool
}

func (g *recordingGenerator) Render(ctx context.Context, t *domain.DocumentTemplate, data map[string]string) (string, error) {
	if g.fail {
		return "", context.DeadlineExceeded
	}
	g.lastData = data
	return "/exports/" + t.ID + ".pdf", nil
}

func newTemplateHandlers(t *testing.T, gen services.Generator) (*Handlers, *gorm.DB) {
	t.Helper()
	db := newHandlerDB(t)
	tsvc := services.NewTemplateService(db, gen)
	h := New(stubAuthSvc{}, stubUserReader{}, stubCaseSvc{}, stubJudgmentSvc{}, tsvc)
	return h, db
}

func TestCreateTemplate_And_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newTemplateHandlers(t, nil)

	r := gin.New()
	r.POST("/templates", h.CreateTemplate)
	r.GET("/templates", h.ListTemplates)

	// binding failure -> 400
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/templates", bytes.NewBufferString(`{"nombre":"x"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing fields -> %d", w.Code)
	}

	// two templates of different tipos
	mk := func(nombre, tipo string) domain.DocumentTemplate {
		w := httptest.NewRecorder()
		body, _ := json.Marshal(CreateTemplateRequest{Nombre: nombre, Tipo: tipo, TemplateContent: "AL JUZGADO {{ciudad}}"})
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/templates", bytes.NewBuffer(body)))
		if w.Code != http.StatusCreated {
			t.Fatalf("create %s -> %d body=%s", nombre, w.Code, w.Body.String())
		}
		var out domain.DocumentTemplate
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		return out
	}
	mk("Demanda de despido", "demanda")
	mk("Recurso de apelación", "recurso")

	// unfiltered list has both, filter narrows to one
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/templates", nil))
	var all []domain.DocumentTemplate
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(all))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/templates?tipo=recurso", nil))
	var filtered []domain.DocumentTemplate
	if err := json.Unmarshal(w.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Tipo != "recurso" {
		t.Fatalf("filter mismatch: %#v", filtered)
	}
}

func TestGetTemplate_UUID_And_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newTemplateHandlers(t, nil)

	r := gin.New()
	r.GET("/templates/:id", h.GetTemplate)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/templates/nope", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("uuid 400 -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/templates/"+uuid.NewString(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing 404 -> %d", w.Code)
	}
}

func TestRenderTemplate_Success_NoGenerator_Failure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// with a generator: 200 and the stored output path comes back
	{
		gen := &recordingGenerator{}
		h, db := newTemplateHandlers(t, gen)
		tsvc := services.NewTemplateService(db, gen)

		tpl, err := tsvc.Create(context.Background(), "Demanda", "demanda", "AL JUZGADO {{ciudad}}")
		if err != nil {
			t.Fatalf("seed template: %v", err)
		}

		r := gin.New()
		r.POST("/templates/:id/render", h.RenderTemplate)

		w := httptest.NewRecorder()
		body := `{"data":{"ciudad":"Madrid"}}`
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/templates/"+tpl.ID+"/render", bytes.NewBufferString(body)))
		if w.Code != http.StatusOK {
			t.Fatalf("render -> %d body=%s", w.Code, w.Body.String())
		}
		var out domain.DocumentTemplate
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.PDFPath == nil || *out.PDFPath != "/exports/"+tpl.ID+".pdf" {
			t.Fatalf("pdf path not recorded: %#v", out.PDFPath)
		}
		if gen.lastData["ciudad"] != "Madrid" {
			t.Fatalf("data not forwarded: %#v", gen.lastData)
		}
	}

	// no generator wired -> 503
	{
		h, db := newTemplateHandlers(t, nil)
		tsvc := services.NewTemplateService(db, nil)
		tpl, err := tsvc.Create(context.Background(), "Demanda", "demanda", "X")
		if err != nil {
			t.Fatalf("seed template: %v", err)
		}

		r := gin.New()
		r.POST("/templates/:id/render", h.RenderTemplate)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/templates/"+tpl.ID+"/render", bytes.NewBufferString(`{"data":{}}`)))
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("no generator -> %d", w.Code)
		}
	}

	// unknown template -> 404
	{
		h, _ := newTemplateHandlers(t, &recordingGenerator{})
		r := gin.New()
		r.POST("/templates/:id/render", h.RenderTemplate)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/templates/"+uuid.NewString()+"/render", bytes.NewBufferString(`{"data":{}}`)))
		if w.Code != http.StatusNotFound {
			t.Fatalf("missing template -> %d", w.Code)
		}
	}
}
