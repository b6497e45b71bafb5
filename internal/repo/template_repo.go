// This file provides repository functions for DocumentTemplate (escrito
// legal) rows: the reusable legal-document templates users render into PDFs.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
)

// CreateTemplate inserts a template row and returns it.
func CreateTemplate(ctx context.Context, db *gorm.DB, nombre, tipo, content string, embedding domain.Vector) (*domain.DocumentTemplate, error) {
	t := &domain.DocumentTemplate{
		ID:              uuid.NewString(),
		Nombre:          nombre,
		Tipo:            tipo,
		TemplateContent: content,
		Embedding:       embedding,
		CreatedAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// GetTemplate fetches a template by primary key, or ErrNotFound.
func GetTemplate(ctx context.Context, db *gorm.DB, id string) (*domain.DocumentTemplate, error) {
	var t domain.DocumentTemplate
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTemplates returns templates, optionally filtered by tipo, alphabetical
// by name.
func ListTemplates(ctx context.Context, db *gorm.DB, tipo string) ([]domain.DocumentTemplate, error) {
	q := db.WithContext(ctx).Model(&domain.DocumentTemplate{})
	if tipo != "" {
		q = q.Where("tipo = ?", tipo)
	}
	var out []domain.DocumentTemplate
	err := q.Order("nombre asc").Find(&out).Error
	return out, err
}

// UpdateTemplatePDFPath records where the rendered PDF landed. Returns
// ErrNotFound when the template does not exist.
func UpdateTemplatePDFPath(ctx context.Context, db *gorm.DB, id, pdfPath string) error {
	res := db.WithContext(ctx).
		Model(&domain.DocumentTemplate{}).
		Where("id = ?", id).
		Update("pdf_path", pdfPath)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
