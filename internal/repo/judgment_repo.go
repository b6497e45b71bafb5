// This file provides repository functions for Judgment (sentencia) rows:
// ingestion, filtered listing, distinct facet values, case linking, and
// embedding-based similarity search.
//
// Similarity search runs as raw SQL against the pgvector cosine operator and
// is therefore Postgres-only; callers on other dialects fall back to lexical
// ranking at the service layer.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/goyo-ia/legal-backend/internal/domain"
)

// JudgmentFilter narrows judgment listings. Zero values mean "no filter".
type JudgmentFilter struct {
	Tribunal   string    // substring match, case-insensitive
	Materia    string    // exact match
	FechaDesde time.Time // inclusive lower bound on ruling date
	FechaHasta time.Time // inclusive upper bound on ruling date
}

func (f JudgmentFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Tribunal != "" {
		q = q.Where("LOWER(tribunal) LIKE LOWER(?)", "%"+f.Tribunal+"%")
	}
	if f.Materia != "" {
		q = q.Where("materia = ?", f.Materia)
	}
	if !f.FechaDesde.IsZero() {
		q = q.Where("fecha >= ?", f.FechaDesde)
	}
	if !f.FechaHasta.IsZero() {
		q = q.Where("fecha <= ?", f.FechaHasta)
	}
	return q
}

// CreateJudgment inserts a judgment row and returns it.
func CreateJudgment(ctx context.Context, db *gorm.DB, j *domain.Judgment) (*domain.Judgment, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(j).Error; err != nil {
		return nil, err
	}
	return j, nil
}

// GetJudgment fetches a judgment by primary key, or ErrNotFound.
func GetJudgment(ctx context.Context, db *gorm.DB, id string) (*domain.Judgment, error) {
	var j domain.Judgment
	if err := db.WithContext(ctx).Where("id = ?", id).First(&j).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

// CountJudgments returns the number of judgments matching the filter.
func CountJudgments(ctx context.Context, db *gorm.DB, f JudgmentFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Judgment{})).Count(&total).Error
	return total, err
}

// ListJudgmentsPage returns a page of judgments matching the filter, most
// recent ruling date first.
func ListJudgmentsPage(ctx context.Context, db *gorm.DB, f JudgmentFilter, offset, limit int) ([]domain.Judgment, error) {
	var out []domain.Judgment
	err := f.apply(db.WithContext(ctx)).
		Order("fecha desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListJudgmentsByFilter returns every judgment matching the filter, unpaged.
// Used by the lexical search fallback, which ranks in memory.
func ListJudgmentsByFilter(ctx context.Context, db *gorm.DB, f JudgmentFilter) ([]domain.Judgment, error) {
	var out []domain.Judgment
	err := f.apply(db.WithContext(ctx)).Order("fecha desc").Find(&out).Error
	return out, err
}

// SearchJudgmentsByEmbedding ranks judgments by cosine distance to the query
// embedding, closest first, applying the same metadata filters as listings.
// Requires the pgvector extension; only called when the dialect is postgres.
func SearchJudgmentsByEmbedding(ctx context.Context, db *gorm.DB, query domain.Vector, f JudgmentFilter, limit int) ([]domain.Judgment, error) {
	lit, err := query.Value()
	if err != nil {
		return nil, err
	}
	q := db.WithContext(ctx).
		Model(&domain.Judgment{}).
		Where("embedding IS NOT NULL")
	q = f.apply(q)
	var out []domain.Judgment
	err = q.Clauses(clause.OrderBy{
		Expression: clause.Expr{
			SQL:                "embedding <=> ?::vector",
			Vars:               []interface{}{lit},
			WithoutParentheses: true,
		},
	}).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListTribunals returns the distinct tribunal names present in the corpus,
// alphabetically.
func ListTribunals(ctx context.Context, db *gorm.DB) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Judgment{}).
		Distinct("tribunal").
		Order("tribunal asc").
		Pluck("tribunal", &out).Error
	return out, err
}

// ListMaterias returns the distinct legal matters present in the corpus,
// alphabetically.
func ListMaterias(ctx context.Context, db *gorm.DB) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Judgment{}).
		Distinct("materia").
		Order("materia asc").
		Pluck("materia", &out).Error
	return out, err
}

// LinkJudgmentToCase sets the relational link from a judgment to a tracked
// case. Returns ErrNotFound when the judgment does not exist.
func LinkJudgmentToCase(ctx context.Context, db *gorm.DB, judgmentID, caseID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Judgment{}).
		Where("id = ?", judgmentID).
		Update("case_id", caseID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListJudgmentsForCase returns judgments relationally linked to caseID,
// newest ruling first. The free-text expediente field is never consulted
// here; callers wanting the fallback correlation match on it explicitly.
func ListJudgmentsForCase(ctx context.Context, db *gorm.DB, caseID string) ([]domain.Judgment, error) {
	var out []domain.Judgment
	err := db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("fecha desc").
		Find(&out).Error
	return out, err
}
