// Package services – JudgmentService
//
// This file implements the JudgmentService, which manages the historical
// ruling corpus (sentencias): ingestion, filtered listing, facet values for
// the search UI, case linking, and text search. Search prefers vector
// similarity when both an Embedder and a pgvector-backed database are
// available, and otherwise falls back to deterministic lexical ranking over
// the filtered candidates.
package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/repo"
	"github.com/goyo-ia/legal-backend/internal/search"
)

// JudgmentService implements the use-cases around the ruling corpus. It
// persists through the repo package directly.
type JudgmentService struct {
	// DB is the database handle used for all judgment operations.
	DB *gorm.DB

	// Embedder, when present, vectorizes rulings at ingestion and queries at
	// search time. Nil disables the semantic path entirely.
	Embedder Embedder

	// MaxResults caps search result sets. Zero means a default of 20.
	MaxResults int
}

// NewJudgmentService constructs a JudgmentService.
func NewJudgmentService(db *gorm.DB, emb Embedder) *JudgmentService {
	return &JudgmentService{DB: db, Embedder: emb}
}

func (s *JudgmentService) maxResults() int {
	if s.MaxResults > 0 {
		return s.MaxResults
	}
	return 20
}

// Ingest stores a new ruling. Tribunal, materia, and full text are required.
// When an Embedder is configured the full text is vectorized; embedding
// failures are non-fatal because the text itself is the source of truth and
// lexical search still covers the row.
func (s *JudgmentService) Ingest(ctx context.Context, j *domain.Judgment) (*domain.Judgment, error) {
	j.Tribunal = strings.TrimSpace(j.Tribunal)
	j.Materia = strings.TrimSpace(j.Materia)
	if j.Tribunal == "" || j.Materia == "" || strings.TrimSpace(j.FullText) == "" {
		return nil, ErrInvalidJudgmentInput
	}
	if j.Fecha.IsZero() {
		j.Fecha = time.Now().UTC()
	}

	if s.Embedder != nil && len(j.Embedding) == 0 {
		if v, err := s.Embedder.Embed(ctx, j.FullText); err == nil {
			j.Embedding = v
		}
	}
	return repo.CreateJudgment(ctx, s.DB, j)
}

// Get fetches a ruling by ID, mapping missing rows to ErrJudgmentNotFound.
func (s *JudgmentService) Get(ctx context.Context, id string) (*domain.Judgment, error) {
	j, err := repo.GetJudgment(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrJudgmentNotFound
		}
		return nil, err
	}
	return j, nil
}

// ListPage returns a page of rulings matching the filter (paginated), with
// the total count for pagination metadata.
func (s *JudgmentService) ListPage(ctx context.Context, f repo.JudgmentFilter, page, pageSize int) ([]domain.Judgment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountJudgments(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Judgment{}, 0, nil
	}

	items, err := repo.ListJudgmentsPage(ctx, s.DB, f, offset, pageSize)
	return items, total, err
}

// Search ranks rulings against free-text query, constrained by the filter.
//
// Two strategies, chosen at call time:
//   - Semantic: when an Embedder is configured and the database speaks
//     pgvector, the query is embedded and ranked by cosine distance in SQL.
//   - Lexical: otherwise candidates matching the filter are ranked in memory
//     by folded-token Jaccard similarity, which is diacritic-insensitive.
//
// An empty query yields ErrEmptyQuery. Results never exceed MaxResults.
func (s *JudgmentService) Search(ctx context.Context, query string, f repo.JudgmentFilter) ([]domain.Judgment, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	if s.Embedder != nil && s.DB.Dialector.Name() == "postgres" {
		if qv, err := s.Embedder.Embed(ctx, query); err == nil && len(qv) > 0 {
			return repo.SearchJudgmentsByEmbedding(ctx, s.DB, qv, f, s.maxResults())
		}
		// Embedding failed; fall through to lexical rather than erroring out.
	}

	candidates, err := repo.ListJudgmentsByFilter(ctx, s.DB, f)
	if err != nil {
		return nil, err
	}
	docs := make([]string, len(candidates))
	for i, j := range candidates {
		docs[i] = j.FullText + " " + j.Partes + " " + j.Expediente
	}
	ranked := search.TopK(query, docs, s.maxResults())
	out := make([]domain.Judgment, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, candidates[r.Index])
	}
	return out, nil
}

// Tribunals returns the distinct tribunal names in the corpus, for search
// facets.
func (s *JudgmentService) Tribunals(ctx context.Context) ([]string, error) {
	return repo.ListTribunals(ctx, s.DB)
}

// Materias returns the distinct legal matters in the corpus, for search
// facets.
func (s *JudgmentService) Materias(ctx context.Context) ([]string, error) {
	return repo.ListMaterias(ctx, s.DB)
}

// Summary returns corpus-wide aggregates: totals, embedding coverage,
// distributions, and the fecha range.
func (s *JudgmentService) Summary(ctx context.Context) (*repo.JudgmentSummary, error) {
	return repo.JudgmentsSummary(ctx, s.DB)
}

// LinkToCase attaches a ruling to a tracked case. Both sides must exist.
func (s *JudgmentService) LinkToCase(ctx context.Context, judgmentID, caseID string) error {
	if _, err := repo.GetCase(ctx, s.DB, caseID); err != nil {
		if isNotFound(err) {
			return ErrCaseNotFound
		}
		return err
	}
	if err := repo.LinkJudgmentToCase(ctx, s.DB, judgmentID, caseID); err != nil {
		if isNotFound(err) {
			return ErrJudgmentNotFound
		}
		return err
	}
	return nil
}

// ForCase returns the rulings relationally linked to a case, newest first.
func (s *JudgmentService) ForCase(ctx context.Context, caseID string) ([]domain.Judgment, error) {
	if _, err := repo.GetCase(ctx, s.DB, caseID); err != nil {
		if isNotFound(err) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return repo.ListJudgmentsForCase(ctx, s.DB, caseID)
}
