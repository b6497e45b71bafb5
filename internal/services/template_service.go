// Package services – TemplateService
//
// This file implements the TemplateService, which manages reusable legal
// document templates (escritos legales) and their rendering into PDFs via an
// injected Generator collaborator.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/repo"
)

// TemplateService implements the use-cases around document templates. It
// persists through the repo package directly.
type TemplateService struct {
	// DB is the database handle used for all template operations.
	DB *gorm.DB

	// Generator renders templates to PDF. Nil disables rendering; templates
	// can still be created and listed.
	Generator Generator

	// Embedder, when present, vectorizes template bodies for retrieval.
	Embedder Embedder
}

// NewTemplateService constructs a TemplateService.
func NewTemplateService(db *gorm.DB, gen Generator) *TemplateService {
	return &TemplateService{DB: db, Generator: gen}
}

// Create stores a new template. Nombre, tipo, and body are required.
func (s *TemplateService) Create(ctx context.Context, nombre, tipo, content string) (*domain.DocumentTemplate, error) {
	nombre = strings.TrimSpace(nombre)
	tipo = strings.TrimSpace(tipo)
	if nombre == "" || tipo == "" || strings.TrimSpace(content) == "" {
		return nil, ErrInvalidTemplateInput
	}

	var emb domain.Vector
	if s.Embedder != nil {
		if v, err := s.Embedder.Embed(ctx, content); err == nil {
			emb = v
		}
	}
	return repo.CreateTemplate(ctx, s.DB, nombre, tipo, content, emb)
}

// Get fetches a template by ID, mapping missing rows to ErrTemplateNotFound.
func (s *TemplateService) Get(ctx context.Context, id string) (*domain.DocumentTemplate, error) {
	t, err := repo.GetTemplate(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns templates, optionally narrowed to one tipo.
func (s *TemplateService) List(ctx context.Context, tipo string) ([]domain.DocumentTemplate, error) {
	return repo.ListTemplates(ctx, s.DB, strings.TrimSpace(tipo))
}

// Render produces a PDF from the template with the given substitution data
// and records where the file landed. Requires a Generator; otherwise
// ErrGeneratorUnavailable.
func (s *TemplateService) Render(ctx context.Context, id string, data map[string]string) (*domain.DocumentTemplate, error) {
	if s.Generator == nil {
		return nil, ErrGeneratorUnavailable
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	path, err := s.Generator.Render(ctx, t, data)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateTemplatePDFPath(ctx, s.DB, id, path); err != nil {
		return nil, err
	}
	t.PDFPath = &path
	return t, nil
}
