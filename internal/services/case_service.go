// Package services – CaseService
//
// This file implements the CaseService, which manages the lifecycle of legal
// cases (expedientes): creation, updates, filtered listing with pagination,
// status transitions, deletion, filed documents, outcome predictions, and
// summary aggregates. It
// validates inputs and state transitions, and coordinates repository
// operations; handlers translate its sentinel errors into HTTP results.
package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/repo"
)

// CaseRepo defines the repository contract required by CaseService.
// Implementations are responsible for persistence of the case aggregate. All
// methods accept the DB handle explicitly so transactional handles can be
// threaded through.
type CaseRepo interface {
	// CreateCase inserts a new case row in the active state.
	CreateCase(ctx context.Context, db *gorm.DB, numero, tribunal, materia, partes string) (*domain.Case, error)

	// GetCase fetches a case by ID.
	GetCase(ctx context.Context, db *gorm.DB, id string) (*domain.Case, error)

	// GetCaseByNumero fetches a case by its unique case number.
	GetCaseByNumero(ctx context.Context, db *gorm.DB, numero string) (*domain.Case, error)

	// UpdateCase rewrites the descriptive fields of a case.
	UpdateCase(ctx context.Context, db *gorm.DB, id, numero, tribunal, materia, partes string) (*domain.Case, error)

	// CountCases returns the total matching the filter, for pagination.
	CountCases(ctx context.Context, db *gorm.DB, f repo.CaseFilter) (int64, error)

	// ListCasesPage returns a page of cases matching the filter.
	ListCasesPage(ctx context.Context, db *gorm.DB, f repo.CaseFilter, offset, limit int) ([]domain.Case, error)

	// UpdateCaseStatus persists a status change.
	UpdateCaseStatus(ctx context.Context, db *gorm.DB, id string, estado domain.CaseStatus) error

	// DeleteCaseCascade removes the case together with its documents and
	// predictions.
	DeleteCaseCascade(ctx context.Context, db *gorm.DB, id string) error

	// CreateCaseDocument files a document under a case.
	CreateCaseDocument(ctx context.Context, db *gorm.DB, caseID, tipo, contenido string, fecha time.Time, embedding domain.Vector) (*domain.CaseDocument, error)

	// ListCaseDocuments returns a case's documents.
	ListCaseDocuments(ctx context.Context, db *gorm.DB, caseID string) ([]domain.CaseDocument, error)

	// GetCaseDocument fetches a document scoped to its case.
	GetCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID string) (*domain.CaseDocument, error)

	// UpdateCaseDocument rewrites a filed document in place.
	UpdateCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID, tipo, contenido string, fecha time.Time, embedding domain.Vector) (*domain.CaseDocument, error)

	// DeleteCaseDocument removes one document scoped to its case.
	DeleteCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID string) error

	// CreatePrediction stores a validated prediction.
	CreatePrediction(ctx context.Context, db *gorm.DB, caseID string, grounds domain.UUIDList, probability float64, rationale string) (*domain.Prediction, error)

	// ListPredictions returns a case's predictions.
	ListPredictions(ctx context.Context, db *gorm.DB, caseID string) ([]domain.Prediction, error)

	// GetPrediction fetches a prediction by ID.
	GetPrediction(ctx context.Context, db *gorm.DB, id string) (*domain.Prediction, error)
}

// CaseService provides case-level operations. It enforces the status
// transition rules and prediction validity, and owns the transactional
// boundaries for multi-row operations.
type CaseService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the case repository used by this service.
	Repo CaseRepo

	// Embedder, when present, vectorizes filed documents for semantic
	// retrieval. Nil disables embedding; documents are still stored.
	Embedder Embedder

	// Predictor, when present, backs the Predict use-case. Nil means
	// predictions can only be recorded, not generated.
	Predictor Predictor
}

// NewCaseService constructs a CaseService.
func NewCaseService(db *gorm.DB, r CaseRepo) *CaseService {
	return &CaseService{DB: db, Repo: r}
}

// Create registers a new case. Numero, tribunal, and materia are required;
// whitespace is trimmed. A duplicate numero yields ErrCaseNumberTaken.
func (s *CaseService) Create(ctx context.Context, numero, tribunal, materia, partes string) (*domain.Case, error) {
	numero = strings.TrimSpace(numero)
	tribunal = strings.TrimSpace(tribunal)
	materia = strings.TrimSpace(materia)
	if numero == "" || tribunal == "" || materia == "" {
		return nil, ErrInvalidCaseInput
	}

	c, err := s.Repo.CreateCase(ctx, s.DB, numero, tribunal, materia, strings.TrimSpace(partes))
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			return nil, ErrCaseNumberTaken
		}
		return nil, err
	}
	return c, nil
}

// Get fetches a case by ID, mapping missing rows to ErrCaseNotFound.
func (s *CaseService) Get(ctx context.Context, id string) (*domain.Case, error) {
	c, err := s.Repo.GetCase(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetByNumero fetches a case by its unique number, mapping missing rows to
// ErrCaseNotFound.
func (s *CaseService) GetByNumero(ctx context.Context, numero string) (*domain.Case, error) {
	c, err := s.Repo.GetCaseByNumero(ctx, s.DB, strings.TrimSpace(numero))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return c, nil
}

// Update rewrites the descriptive fields of a case. Same validation as
// Create: numero, tribunal, and materia are required, and a numero already
// used by another case yields ErrCaseNumberTaken. Estado is never touched
// here; lifecycle moves go through ChangeStatus.
func (s *CaseService) Update(ctx context.Context, id, numero, tribunal, materia, partes string) (*domain.Case, error) {
	numero = strings.TrimSpace(numero)
	tribunal = strings.TrimSpace(tribunal)
	materia = strings.TrimSpace(materia)
	if numero == "" || tribunal == "" || materia == "" {
		return nil, ErrInvalidCaseInput
	}

	c, err := s.Repo.UpdateCase(ctx, s.DB, id, numero, tribunal, materia, strings.TrimSpace(partes))
	if err != nil {
		switch {
		case isNotFound(err):
			return nil, ErrCaseNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err):
			return nil, ErrCaseNumberTaken
		}
		return nil, err
	}
	return c, nil
}

// ListPage returns a page of cases matching the filter (paginated).
// It applies defaults for invalid page/pageSize and returns total count.
func (s *CaseService) ListPage(ctx context.Context, f repo.CaseFilter, page, pageSize int) ([]domain.Case, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountCases(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Case{}, 0, nil
	}

	items, err := s.Repo.ListCasesPage(ctx, s.DB, f, offset, pageSize)
	return items, total, err
}

// ChangeStatus moves a case to a new lifecycle state.
//
// Semantics and validation:
//   - estado must be one of active, closed, archived; otherwise ErrInvalidStatus.
//   - The move must be legal from the current state (active→closed,
//     active→archived, closed→archived); otherwise ErrInvalidTransition.
//     Archived is terminal and nothing ever reopens.
//   - Setting the current state again is a no-op success, so retries are safe.
func (s *CaseService) ChangeStatus(ctx context.Context, id string, estado domain.CaseStatus) (*domain.Case, error) {
	if !estado.Valid() {
		return nil, ErrInvalidStatus
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Estado == estado {
		return c, nil
	}
	if !c.Estado.CanTransitionTo(estado) {
		return nil, ErrInvalidTransition
	}

	if err := s.Repo.UpdateCaseStatus(ctx, s.DB, id, estado); err != nil {
		if isNotFound(err) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	c.Estado = estado
	return c, nil
}

// Delete removes a case and everything filed under it.
func (s *CaseService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.DeleteCaseCascade(ctx, s.DB, id); err != nil {
		if isNotFound(err) {
			return ErrCaseNotFound
		}
		return err
	}
	return nil
}

// AddDocument files a document under a case. The case must exist and the
// content must be non-empty. When an Embedder is configured the content is
// vectorized before storage; embedding failures are non-fatal because the
// document text is the source of truth.
func (s *CaseService) AddDocument(ctx context.Context, caseID, tipo, contenido string, fecha time.Time) (*domain.CaseDocument, error) {
	tipo = strings.TrimSpace(tipo)
	if tipo == "" {
		tipo = "otros"
	}
	if strings.TrimSpace(contenido) == "" {
		return nil, ErrEmptyContent
	}
	if _, err := s.Get(ctx, caseID); err != nil {
		return nil, err
	}
	if fecha.IsZero() {
		fecha = time.Now().UTC()
	}

	var emb domain.Vector
	if s.Embedder != nil {
		if v, err := s.Embedder.Embed(ctx, contenido); err == nil {
			emb = v
		}
	}

	return s.Repo.CreateCaseDocument(ctx, s.DB, caseID, tipo, contenido, fecha, emb)
}

// ListDocuments returns all documents filed under a case, newest filing
// first. A missing case yields ErrCaseNotFound rather than an empty list.
func (s *CaseService) ListDocuments(ctx context.Context, caseID string) ([]domain.CaseDocument, error) {
	if _, err := s.Get(ctx, caseID); err != nil {
		return nil, err
	}
	return s.Repo.ListCaseDocuments(ctx, s.DB, caseID)
}

// GetDocument fetches one document scoped to its case. A document belonging
// to another case is reported as ErrDocumentNotFound.
func (s *CaseService) GetDocument(ctx context.Context, caseID, docID string) (*domain.CaseDocument, error) {
	if _, err := s.Get(ctx, caseID); err != nil {
		return nil, err
	}
	d, err := s.Repo.GetCaseDocument(ctx, s.DB, caseID, docID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

// UpdateDocument rewrites a filed document. Validation mirrors AddDocument:
// the case must exist, content is required, and a blank tipo falls back to
// "otros". The content is re-embedded only when it actually changed; an
// unchanged text keeps the stored vector so updates to metadata stay cheap.
func (s *CaseService) UpdateDocument(ctx context.Context, caseID, docID, tipo, contenido string, fecha time.Time) (*domain.CaseDocument, error) {
	tipo = strings.TrimSpace(tipo)
	if tipo == "" {
		tipo = "otros"
	}
	if strings.TrimSpace(contenido) == "" {
		return nil, ErrEmptyContent
	}
	if _, err := s.Get(ctx, caseID); err != nil {
		return nil, err
	}

	existing, err := s.Repo.GetCaseDocument(ctx, s.DB, caseID, docID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if fecha.IsZero() {
		fecha = existing.FechaCreacion
	}

	emb := existing.Embedding
	if s.Embedder != nil && contenido != existing.Contenido {
		if v, err := s.Embedder.Embed(ctx, contenido); err == nil {
			emb = v
		}
	}

	d, err := s.Repo.UpdateCaseDocument(ctx, s.DB, caseID, docID, tipo, contenido, fecha, emb)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

// DeleteDocument removes one filed document. A document belonging to another
// case is reported as ErrDocumentNotFound, like GetDocument.
func (s *CaseService) DeleteDocument(ctx context.Context, caseID, docID string) error {
	if _, err := s.Get(ctx, caseID); err != nil {
		return err
	}
	if err := s.Repo.DeleteCaseDocument(ctx, s.DB, caseID, docID); err != nil {
		if isNotFound(err) {
			return ErrDocumentNotFound
		}
		return err
	}
	return nil
}

// Summary returns the corpus-wide case aggregates. It reads through the
// stats queries directly with the service's handle, same as the conditional
// response path in the HTTP layer.
func (s *CaseService) Summary(ctx context.Context) (*repo.CaseSummary, error) {
	return repo.CasesSummary(ctx, s.DB)
}

// RecordPrediction validates and stores an outcome prediction for a case.
//
// Semantics and validation:
//   - The case must exist; otherwise ErrCaseNotFound.
//   - probability must lie in [0, 1] inclusive; otherwise ErrInvalidProbability.
//     Both bounds are legal values: certainty is a valid estimate.
//   - grounds must cite at least one judgment; otherwise ErrEmptyGrounds.
//   - The stored probability is rounded to 4 fractional digits to match the
//     column precision, so reads return exactly what validation accepted.
func (s *CaseService) RecordPrediction(ctx context.Context, caseID string, grounds []string, probability float64, rationale string) (*domain.Prediction, error) {
	if probability < 0 || probability > 1 || math.IsNaN(probability) {
		return nil, ErrInvalidProbability
	}
	if len(grounds) == 0 {
		return nil, ErrEmptyGrounds
	}
	if _, err := s.Get(ctx, caseID); err != nil {
		return nil, err
	}

	probability = math.Round(probability*10000) / 10000
	return s.Repo.CreatePrediction(ctx, s.DB, caseID, domain.UUIDList(grounds), probability, strings.TrimSpace(rationale))
}

// Predict runs the configured inference backend over the case and its
// documents, then records the draft through the same validation as
// RecordPrediction. Requires a Predictor; otherwise ErrPredictorUnavailable.
func (s *CaseService) Predict(ctx context.Context, caseID string) (*domain.Prediction, error) {
	if s.Predictor == nil {
		return nil, ErrPredictorUnavailable
	}
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	docs, err := s.Repo.ListCaseDocuments(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}
	draft, err := s.Predictor.Predict(ctx, c, docs)
	if err != nil {
		return nil, err
	}
	return s.RecordPrediction(ctx, caseID, draft.Grounds, draft.Probability, draft.Rationale)
}

// ListPredictions returns all predictions for a case, newest first.
func (s *CaseService) ListPredictions(ctx context.Context, caseID string) ([]domain.Prediction, error) {
	if _, err := s.Get(ctx, caseID); err != nil {
		return nil, err
	}
	return s.Repo.ListPredictions(ctx, s.DB, caseID)
}

// GetPrediction fetches a prediction by ID, mapping missing rows to
// ErrPredictionNotFound.
func (s *CaseService) GetPrediction(ctx context.Context, id string) (*domain.Prediction, error) {
	p, err := s.Repo.GetPrediction(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}
	return p, nil
}
