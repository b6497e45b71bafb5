// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Case
// (expediente) aggregate: the case row itself plus its owned documents and
// predictions.
//
// Error semantics:
//   - Missing rows surface as gorm.ErrRecordNotFound (alias ErrNotFound).
//   - Duplicate case numbers rely on the ux_cases_numero unique index and
//     surface as a raw unique-violation error; the service layer translates
//     that into its Conflict sentinel. The check-and-insert is therefore
//     atomic, never read-then-write.
//   - DeleteCaseCascade is transactional: the case, its documents, and its
//     predictions disappear together or not at all.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
)

// CaseFilter narrows case listings. Zero values mean "no filter".
type CaseFilter struct {
	Tribunal string            // substring match, case-insensitive
	Materia  string            // exact match
	Estado   domain.CaseStatus // exact match
}

func (f CaseFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Tribunal != "" {
		q = q.Where("LOWER(tribunal) LIKE LOWER(?)", "%"+f.Tribunal+"%")
	}
	if f.Materia != "" {
		q = q.Where("materia = ?", f.Materia)
	}
	if f.Estado != "" {
		q = q.Where("estado = ?", f.Estado)
	}
	return q
}

// CreateCase inserts a new case row in the active state. The unique index on
// numero makes the existence check and the insert a single atomic operation.
func CreateCase(ctx context.Context, db *gorm.DB, numero, tribunal, materia, partes string) (*domain.Case, error) {
	c := &domain.Case{
		ID:        uuid.NewString(),
		Numero:    numero,
		Tribunal:  tribunal,
		Materia:   materia,
		Partes:    partes,
		Estado:    domain.CaseStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetCase fetches a case by primary key, or ErrNotFound if missing.
func GetCase(ctx context.Context, db *gorm.DB, id string) (*domain.Case, error) {
	var c domain.Case
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCaseByNumero fetches a case by its unique case number.
func GetCaseByNumero(ctx context.Context, db *gorm.DB, numero string) (*domain.Case, error) {
	var c domain.Case
	if err := db.WithContext(ctx).Where("numero = ?", numero).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCase rewrites the descriptive fields of a case and returns the
// updated row. Estado is deliberately not touched here; transitions go
// through UpdateCaseStatus. A duplicate numero surfaces as a raw
// unique-violation error, same as CreateCase.
func UpdateCase(ctx context.Context, db *gorm.DB, id, numero, tribunal, materia, partes string) (*domain.Case, error) {
	var c domain.Case
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
			return err
		}
		c.Numero = numero
		c.Tribunal = tribunal
		c.Materia = materia
		c.Partes = partes
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountCases returns the number of cases matching the filter.
func CountCases(ctx context.Context, db *gorm.DB, f CaseFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Case{})).Count(&total).Error
	return total, err
}

// ListCasesPage returns a page of cases matching the filter, most recent
// first. Use CountCases for pagination metadata.
func ListCasesPage(ctx context.Context, db *gorm.DB, f CaseFilter, offset, limit int) ([]domain.Case, error) {
	var out []domain.Case
	err := f.apply(db.WithContext(ctx)).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateCaseStatus sets the estado column. Transition legality is the service
// layer's concern; this only persists. Returns ErrNotFound when the case does
// not exist.
func UpdateCaseStatus(ctx context.Context, db *gorm.DB, id string, estado domain.CaseStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Case{}).
		Where("id = ?", id).
		Update("estado", estado)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCaseCascade removes the case and everything it owns in one
// transaction, so a concurrent reader never observes a case without its
// documents mid-delete. Judgment links are severed rather than cascaded.
// Returns ErrNotFound when no case row exists.
func DeleteCaseCascade(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.Case{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// The FK constraints already cascade on engines that enforce them;
		// the explicit deletes keep the guarantee independent of PRAGMA or
		// dialect configuration.
		if err := tx.Where("case_id = ?", id).Delete(&domain.CaseDocument{}).Error; err != nil {
			return err
		}
		if err := tx.Where("case_id = ?", id).Delete(&domain.Prediction{}).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Judgment{}).
			Where("case_id = ?", id).
			Update("case_id", nil).Error
	})
}

// CreateCaseDocument inserts a document under caseID. Referential integrity
// (the case must exist) is checked by the service layer before calling.
func CreateCaseDocument(ctx context.Context, db *gorm.DB, caseID, tipo, contenido string, fecha time.Time, embedding domain.Vector) (*domain.CaseDocument, error) {
	d := &domain.CaseDocument{
		ID:            uuid.NewString(),
		CaseID:        caseID,
		TipoDocumento: tipo,
		Contenido:     contenido,
		FechaCreacion: fecha,
		Embedding:     embedding,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// ListCaseDocuments returns all documents filed under caseID, newest filing
// date first.
func ListCaseDocuments(ctx context.Context, db *gorm.DB, caseID string) ([]domain.CaseDocument, error) {
	var out []domain.CaseDocument
	err := db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("fecha_creacion desc").
		Find(&out).Error
	return out, err
}

// GetCaseDocument fetches a single document, scoped to its owning case so a
// document ID from another expediente is indistinguishable from a missing
// one.
func GetCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID string) (*domain.CaseDocument, error) {
	var d domain.CaseDocument
	err := db.WithContext(ctx).
		Where("id = ? AND case_id = ?", docID, caseID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateCaseDocument rewrites a filed document in place and returns the
// updated row. The lookup is case-scoped like GetCaseDocument, so a document
// ID belonging to another expediente yields ErrNotFound.
func UpdateCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID, tipo, contenido string, fecha time.Time, embedding domain.Vector) (*domain.CaseDocument, error) {
	var d domain.CaseDocument
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND case_id = ?", docID, caseID).First(&d).Error; err != nil {
			return err
		}
		d.TipoDocumento = tipo
		d.Contenido = contenido
		d.FechaCreacion = fecha
		d.Embedding = embedding
		return tx.Save(&d).Error
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteCaseDocument removes one document, scoped to its owning case.
// Returns ErrNotFound when no such document exists under caseID.
func DeleteCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND case_id = ?", docID, caseID).
		Delete(&domain.CaseDocument{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreatePrediction inserts a prediction row for caseID. Probability range and
// grounds validation happen at the service layer.
func CreatePrediction(ctx context.Context, db *gorm.DB, caseID string, grounds domain.UUIDList, probability float64, rationale string) (*domain.Prediction, error) {
	p := &domain.Prediction{
		ID:          uuid.NewString(),
		CaseID:      caseID,
		Grounds:     grounds,
		Probability: probability,
		Rationale:   rationale,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPrediction fetches a prediction by primary key, or ErrNotFound.
func GetPrediction(ctx context.Context, db *gorm.DB, id string) (*domain.Prediction, error) {
	var p domain.Prediction
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPredictions returns all predictions recorded for caseID, newest first.
func ListPredictions(ctx context.Context, db *gorm.DB, caseID string) ([]domain.Prediction, error) {
	var out []domain.Prediction
	err := db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
