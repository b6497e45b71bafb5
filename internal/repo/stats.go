// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
)

// CasesStats returns aggregate metadata for the cases matching the filter:
// the total number of rows and the maximum UpdatedAt timestamp among them.
//
// It executes two lightweight queries against the cases table. When nothing
// matches, the returned count is 0 and maxUpdatedAt is nil.
//
// Return values:
//   - count:        total matching cases
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func CasesStats(ctx context.Context, db *gorm.DB, f CaseFilter) (count int64, maxUpdatedAt *time.Time, err error) {
	q := f.apply(db.WithContext(ctx).Model(&domain.Case{}))

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// CaseSummary aggregates corpus-wide counts over the cases table, plus the
// total number of filed documents. Distribution maps key on the raw column
// value.
type CaseSummary struct {
	TotalCases     int64
	TotalDocuments int64
	ByEstado       map[string]int64
	ByTribunal     map[string]int64
	ByMateria      map[string]int64
}

// CasesSummary computes the dashboard aggregates for cases: totals and
// per-estado/tribunal/materia distributions.
func CasesSummary(ctx context.Context, db *gorm.DB) (*CaseSummary, error) {
	s := &CaseSummary{}
	if err := db.WithContext(ctx).Model(&domain.Case{}).Count(&s.TotalCases).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&domain.CaseDocument{}).Count(&s.TotalDocuments).Error; err != nil {
		return nil, err
	}
	var err error
	if s.ByEstado, err = countBy(ctx, db, &domain.Case{}, "estado"); err != nil {
		return nil, err
	}
	if s.ByTribunal, err = countBy(ctx, db, &domain.Case{}, "tribunal"); err != nil {
		return nil, err
	}
	if s.ByMateria, err = countBy(ctx, db, &domain.Case{}, "materia"); err != nil {
		return nil, err
	}
	return s, nil
}

// JudgmentSummary aggregates corpus-wide counts over the judgments table.
// Earliest and Latest bound the fecha range and are nil for an empty corpus.
type JudgmentSummary struct {
	Total          int64
	WithEmbeddings int64
	ByTribunal     map[string]int64
	ByMateria      map[string]int64
	Earliest       *time.Time
	Latest         *time.Time
}

// JudgmentsSummary computes the dashboard aggregates for the ruling corpus.
// A judgment counts as embedded when its embedding column is non-NULL (empty
// vectors are stored as NULL, never as empty text).
func JudgmentsSummary(ctx context.Context, db *gorm.DB) (*JudgmentSummary, error) {
	s := &JudgmentSummary{}
	if err := db.WithContext(ctx).Model(&domain.Judgment{}).Count(&s.Total).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).
		Model(&domain.Judgment{}).
		Where("embedding IS NOT NULL").
		Count(&s.WithEmbeddings).Error; err != nil {
		return nil, err
	}
	var err error
	if s.ByTribunal, err = countBy(ctx, db, &domain.Judgment{}, "tribunal"); err != nil {
		return nil, err
	}
	if s.ByMateria, err = countBy(ctx, db, &domain.Judgment{}, "materia"); err != nil {
		return nil, err
	}
	if s.Total > 0 {
		// ORDER+LIMIT rather than MIN()/MAX() (avoid MIN() -> TEXT in SQLite)
		var row struct {
			Fecha time.Time
		}
		if err := db.WithContext(ctx).Model(&domain.Judgment{}).
			Select("fecha").Order("fecha ASC").Limit(1).Scan(&row).Error; err != nil {
			return nil, err
		}
		earliest := row.Fecha
		s.Earliest = &earliest
		if err := db.WithContext(ctx).Model(&domain.Judgment{}).
			Select("fecha").Order("fecha DESC").Limit(1).Scan(&row).Error; err != nil {
			return nil, err
		}
		latest := row.Fecha
		s.Latest = &latest
	}
	return s, nil
}

// countBy groups the model's rows by one column and returns value -> count.
func countBy(ctx context.Context, db *gorm.DB, model any, column string) (map[string]int64, error) {
	var rows []struct {
		K string
		N int64
	}
	err := db.WithContext(ctx).
		Model(model).
		Select(column + " AS k, COUNT(*) AS n").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.K] = r.N
	}
	return out, nil
}

// CaseDocumentsStats returns aggregate metadata for the documents filed under
// a case: the total number of rows and the latest filing timestamp among
// them. When the case has no documents, the returned count is 0 and
// maxCreatedAt is nil.
func CaseDocumentsStats(ctx context.Context, db *gorm.DB, caseID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.CaseDocument{}).Where("case_id = ?", caseID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
