package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/goyo-ia/legal-backend/internal/domain"
	"github.com/goyo-ia/legal-backend/internal/repo"
)

// ----- Fake repo -----

type fakeCaseRepo struct {
	// capture args
	createNumero string

	getID   string
	getCase *domain.Case
	getErr  error

	updateID     string
	updateEstado domain.CaseStatus
	updateErr    error

	deleteID  string
	deleteErr error

	countTotal int64
	countErr   error

	pageOffset int
	pageLimit  int
	pageItems  []domain.Case
	pageErr    error

	createDocErr error
	docs         []domain.CaseDocument

	createdPred *domain.Prediction
	createPErr  error
	preds       []domain.Prediction

	getPred    *domain.Prediction
	getPredErr error

	getNumero   string
	byNumeroErr error

	updCaseErr error

	updDocErr  error
	deletedDoc string
	delDocErr  error
}

func (r *fakeCaseRepo) CreateCase(ctx context.Context, db *gorm.DB, numero, tribunal, materia, partes string) (*domain.Case, error) {
	r.createNumero = numero
	return &domain.Case{ID: "c1", Numero: numero, Tribunal: tribunal, Materia: materia, Partes: partes, Estado: domain.CaseStatusActive}, nil
}

func (r *fakeCaseRepo) GetCase(ctx context.Context, db *gorm.DB, id string) (*domain.Case, error) {
	r.getID = id
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.getCase != nil {
		return r.getCase, nil
	}
	return &domain.Case{ID: id, Numero: "EXP-1/2026", Estado: domain.CaseStatusActive}, nil
}

func (r *fakeCaseRepo) GetCaseByNumero(ctx context.Context, db *gorm.DB, numero string) (*domain.Case, error) {
	r.getNumero = numero
	if r.byNumeroErr != nil {
		return nil, r.byNumeroErr
	}
	return &domain.Case{ID: "c1", Numero: numero, Estado: domain.CaseStatusActive}, nil
}

func (r *fakeCaseRepo) UpdateCase(ctx context.Context, db *gorm.DB, id, numero, tribunal, materia, partes string) (*domain.Case, error) {
	if r.updCaseErr != nil {
		return nil, r.updCaseErr
	}
	return &domain.Case{ID: id, Numero: numero, Tribunal: tribunal, Materia: materia, Partes: partes, Estado: domain.CaseStatusActive}, nil
}

func (r *fakeCaseRepo) CountCases(ctx context.Context, db *gorm.DB, f repo.CaseFilter) (int64, error) {
	return r.countTotal, r.countErr
}

func (r *fakeCaseRepo) ListCasesPage(ctx context.Context, db *gorm.DB, f repo.CaseFilter, offset, limit int) ([]domain.Case, error) {
	r.pageOffset, r.pageLimit = offset, limit
	return r.pageItems, r.pageErr
}

func (r *fakeCaseRepo) UpdateCaseStatus(ctx context.Context, db *gorm.DB, id string, estado domain.CaseStatus) error {
	r.updateID, r.updateEstado = id, estado
	return r.updateErr
}

func (r *fakeCaseRepo) DeleteCaseCascade(ctx context.Context, db *gorm.DB, id string) error {
	r.deleteID = id
	return r.deleteErr
}

func (r *fakeCaseRepo) CreateCaseDocument(ctx context.Context, db *gorm.DB, caseID, tipo, contenido string, fecha time.Time, embedding domain.Vector) (*domain.CaseDocument, error) {
	if r.createDocErr != nil {
		return nil, r.createDocErr
	}
	d := domain.CaseDocument{ID: "d1", CaseID: caseID, TipoDocumento: tipo, Contenido: contenido, FechaCreacion: fecha, Embedding: embedding}
	r.docs = append(r.docs, d)
	return &d, nil
}

func (r *fakeCaseRepo) ListCaseDocuments(ctx context.Context, db *gorm.DB, caseID string) ([]domain.CaseDocument, error) {
	return r.docs, nil
}

func (r *fakeCaseRepo) GetCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID string) (*domain.CaseDocument, error) {
	for i := range r.docs {
		if r.docs[i].ID == docID {
			return &r.docs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCaseRepo) UpdateCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID, tipo, contenido string, fecha time.Time, embedding domain.Vector) (*domain.CaseDocument, error) {
	if r.updDocErr != nil {
		return nil, r.updDocErr
	}
	for i := range r.docs {
		if r.docs[i].ID == docID {
			r.docs[i].TipoDocumento = tipo
			r.docs[i].Contenido = contenido
			r.docs[i].FechaCreacion = fecha
			r.docs[i].Embedding = embedding
			return &r.docs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCaseRepo) DeleteCaseDocument(ctx context.Context, db *gorm.DB, caseID, docID string) error {
	if r.delDocErr != nil {
		return r.delDocErr
	}
	for i := range r.docs {
		if r.docs[i].ID == docID {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			r.deletedDoc = docID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCaseRepo) CreatePrediction(ctx context.Context, db *gorm.DB, caseID string, grounds domain.UUIDList, probability float64, rationale string) (*domain.Prediction, error) {
	if r.createPErr != nil {
		return nil, r.createPErr
	}
	p := domain.Prediction{ID: "p1", CaseID: caseID, Grounds: grounds, Probability: probability, Rationale: rationale}
	r.createdPred = &p
	r.preds = append(r.preds, p)
	return &p, nil
}

func (r *fakeCaseRepo) ListPredictions(ctx context.Context, db *gorm.DB, caseID string) ([]domain.Prediction, error) {
	return r.preds, nil
}

func (r *fakeCaseRepo) GetPrediction(ctx context.Context, db *gorm.DB, id string) (*domain.Prediction, error) {
	if r.getPredErr != nil {
		return nil, r.getPredErr
	}
	return r.getPred, nil
}

// ----- Fake collaborators -----

type fakeEmbedder struct {
	vec  domain.Vector
	err  error
	seen string
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	e.seen = text
	return e.vec, e.err
}

type fakePredictor struct {
	draft PredictionDraft
	err   error
}

func (p *fakePredictor) Predict(ctx context.Context, c *domain.Case, docs []domain.CaseDocument) (PredictionDraft, error) {
	return p.draft, p.err
}

// ----- Tests -----

func TestCaseCreate_TrimsAndValidates(t *testing.T) {
	r := &fakeCaseRepo{}
	svc := NewCaseService(nil, r)
	ctx := context.Background()

	c, err := svc.Create(ctx, "  EXP-1/2026  ", " TSJ Madrid ", " civil ", " A c. B ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Numero != "EXP-1/2026" || c.Tribunal != "TSJ Madrid" || c.Estado != domain.CaseStatusActive {
		t.Fatalf("unexpected case: %+v", c)
	}

	for _, bad := range [][4]string{
		{"", "TSJ", "civil", ""},
		{"EXP-2", "  ", "civil", ""},
		{"EXP-2", "TSJ", "", ""},
	} {
		if _, err := svc.Create(ctx, bad[0], bad[1], bad[2], bad[3]); !errors.Is(err, ErrInvalidCaseInput) {
			t.Fatalf("Create(%v): expected ErrInvalidCaseInput, got %v", bad, err)
		}
	}
}

func TestCaseCreate_DuplicateNumero(t *testing.T) {
	svc := NewCaseService(nil, &dupCaseRepo{})
	if _, err := svc.Create(context.Background(), "EXP-1/2026", "TSJ", "civil", ""); !errors.Is(err, ErrCaseNumberTaken) {
		t.Fatalf("expected ErrCaseNumberTaken, got %v", err)
	}
}

// dupCaseRepo fails creation with a driver-style unique violation.
type dupCaseRepo struct{ fakeCaseRepo }

func (r *dupCaseRepo) CreateCase(ctx context.Context, db *gorm.DB, numero, tribunal, materia, partes string) (*domain.Case, error) {
	return nil, errors.New("UNIQUE constraint failed: cases.numero")
}

func TestCaseGet_NotFound(t *testing.T) {
	r := &fakeCaseRepo{getErr: gorm.ErrRecordNotFound}
	svc := NewCaseService(nil, r)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestCaseListPage_DefaultsAndOffset(t *testing.T) {
	r := &fakeCaseRepo{countTotal: 45, pageItems: []domain.Case{{ID: "c1"}}}
	svc := NewCaseService(nil, r)
	ctx := context.Background()

	items, total, err := svc.ListPage(ctx, repo.CaseFilter{}, 3, 10)
	if err != nil || total != 45 || len(items) != 1 {
		t.Fatalf("ListPage: items=%v total=%d err=%v", items, total, err)
	}
	if r.pageOffset != 20 || r.pageLimit != 10 {
		t.Fatalf("expected offset=20 limit=10, got %d/%d", r.pageOffset, r.pageLimit)
	}

	// Invalid paging falls back to page 1 / size 20.
	if _, _, err := svc.ListPage(ctx, repo.CaseFilter{}, 0, -5); err != nil {
		t.Fatalf("ListPage defaults: %v", err)
	}
	if r.pageOffset != 0 || r.pageLimit != 20 {
		t.Fatalf("expected default offset=0 limit=20, got %d/%d", r.pageOffset, r.pageLimit)
	}

	// Empty result short-circuits without a page query.
	r2 := &fakeCaseRepo{countTotal: 0, pageErr: errors.New("must not be called")}
	svc2 := NewCaseService(nil, r2)
	items, total, err = svc2.ListPage(ctx, repo.CaseFilter{}, 1, 10)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("empty ListPage: items=%v total=%d err=%v", items, total, err)
	}
}

func TestChangeStatus_TransitionTable(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		from    domain.CaseStatus
		to      domain.CaseStatus
		wantErr error
	}{
		{domain.CaseStatusActive, domain.CaseStatusClosed, nil},
		{domain.CaseStatusActive, domain.CaseStatusArchived, nil},
		{domain.CaseStatusClosed, domain.CaseStatusArchived, nil},
		{domain.CaseStatusClosed, domain.CaseStatusActive, ErrInvalidTransition},
		{domain.CaseStatusArchived, domain.CaseStatusActive, ErrInvalidTransition},
		{domain.CaseStatusArchived, domain.CaseStatusClosed, ErrInvalidTransition},
	}
	for _, tc := range cases {
		r := &fakeCaseRepo{getCase: &domain.Case{ID: "c1", Estado: tc.from}}
		svc := NewCaseService(nil, r)
		_, err := svc.ChangeStatus(ctx, "c1", tc.to)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s->%s: got %v, want %v", tc.from, tc.to, err, tc.wantErr)
		}
		if tc.wantErr == nil && r.updateEstado != tc.to {
			t.Errorf("%s->%s: repo not called with target state", tc.from, tc.to)
		}
	}

	// Self-transition is a quiet no-op.
	r := &fakeCaseRepo{getCase: &domain.Case{ID: "c1", Estado: domain.CaseStatusClosed}}
	svc := NewCaseService(nil, r)
	c, err := svc.ChangeStatus(ctx, "c1", domain.CaseStatusClosed)
	if err != nil || c.Estado != domain.CaseStatusClosed {
		t.Fatalf("self transition: case=%+v err=%v", c, err)
	}
	if r.updateID != "" {
		t.Fatalf("self transition must not touch the repo")
	}

	// Garbage status is rejected before any lookup.
	if _, err := svc.ChangeStatus(ctx, "c1", "pendiente"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCaseDelete_MapsNotFound(t *testing.T) {
	r := &fakeCaseRepo{deleteErr: gorm.ErrRecordNotFound}
	svc := NewCaseService(nil, r)
	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}

	r2 := &fakeCaseRepo{}
	svc2 := NewCaseService(nil, r2)
	if err := svc2.Delete(context.Background(), "c1"); err != nil || r2.deleteID != "c1" {
		t.Fatalf("Delete: err=%v deleteID=%q", err, r2.deleteID)
	}
}

func TestCaseGetByNumero(t *testing.T) {
	ctx := context.Background()

	r := &fakeCaseRepo{}
	svc := NewCaseService(nil, r)
	c, err := svc.GetByNumero(ctx, "  EXP-1/2026  ")
	if err != nil || c.Numero != "EXP-1/2026" {
		t.Fatalf("GetByNumero: case=%+v err=%v", c, err)
	}
	if r.getNumero != "EXP-1/2026" {
		t.Fatalf("numero must be trimmed before lookup, got %q", r.getNumero)
	}

	r2 := &fakeCaseRepo{byNumeroErr: gorm.ErrRecordNotFound}
	svc2 := NewCaseService(nil, r2)
	if _, err := svc2.GetByNumero(ctx, "EXP-404/2026"); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestCaseUpdate_ValidationAndErrorMapping(t *testing.T) {
	ctx := context.Background()

	r := &fakeCaseRepo{}
	svc := NewCaseService(nil, r)
	c, err := svc.Update(ctx, "c1", " EXP-9/2026 ", " AP Sevilla ", " laboral ", " X c. Y ")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if c.Numero != "EXP-9/2026" || c.Tribunal != "AP Sevilla" || c.Partes != "X c. Y" {
		t.Fatalf("unexpected case after update: %+v", c)
	}

	for _, bad := range [][4]string{
		{"", "TSJ", "civil", ""},
		{"EXP-2", "", "civil", ""},
		{"EXP-2", "TSJ", "  ", ""},
	} {
		if _, err := svc.Update(ctx, "c1", bad[0], bad[1], bad[2], bad[3]); !errors.Is(err, ErrInvalidCaseInput) {
			t.Fatalf("Update(%v): expected ErrInvalidCaseInput, got %v", bad, err)
		}
	}

	r2 := &fakeCaseRepo{updCaseErr: gorm.ErrRecordNotFound}
	if _, err := NewCaseService(nil, r2).Update(ctx, "missing", "EXP-9/2026", "TSJ", "civil", ""); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}

	r3 := &fakeCaseRepo{updCaseErr: errors.New("UNIQUE constraint failed: cases.numero")}
	if _, err := NewCaseService(nil, r3).Update(ctx, "c1", "EXP-1/2026", "TSJ", "civil", ""); !errors.Is(err, ErrCaseNumberTaken) {
		t.Fatalf("expected ErrCaseNumberTaken, got %v", err)
	}
}

func TestUpdateDocument_EmbeddingOnlyOnChangedContent(t *testing.T) {
	ctx := context.Background()

	filed := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	r := &fakeCaseRepo{docs: []domain.CaseDocument{{
		ID: "d1", CaseID: "c1", TipoDocumento: "demanda",
		Contenido: "texto original", FechaCreacion: filed,
		Embedding: domain.Vector{0.9, 0.9},
	}}}
	emb := &fakeEmbedder{vec: domain.Vector{0.1, 0.2, 0.3}}
	svc := NewCaseService(nil, r)
	svc.Embedder = emb

	// Unchanged content keeps the stored vector and never calls the model.
	d, err := svc.UpdateDocument(ctx, "c1", "d1", "escrito", "texto original", time.Time{})
	if err != nil {
		t.Fatalf("UpdateDocument(unchanged): %v", err)
	}
	if d.TipoDocumento != "escrito" || len(d.Embedding) != 2 || emb.seen != "" {
		t.Fatalf("unchanged content must keep embedding: doc=%+v seen=%q", d, emb.seen)
	}
	if !d.FechaCreacion.Equal(filed) {
		t.Fatalf("zero fecha must keep the original filing date, got %v", d.FechaCreacion)
	}

	// New content is re-embedded.
	d, err = svc.UpdateDocument(ctx, "c1", "d1", "escrito", "texto corregido", time.Time{})
	if err != nil {
		t.Fatalf("UpdateDocument(changed): %v", err)
	}
	if len(d.Embedding) != 3 || emb.seen != "texto corregido" {
		t.Fatalf("changed content must re-embed: doc=%+v seen=%q", d, emb.seen)
	}

	// Empty content and missing rows.
	if _, err := svc.UpdateDocument(ctx, "c1", "d1", "escrito", "   ", time.Time{}); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if _, err := svc.UpdateDocument(ctx, "c1", "nope", "escrito", "texto", time.Time{}); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	r2 := &fakeCaseRepo{getErr: gorm.ErrRecordNotFound}
	if _, err := NewCaseService(nil, r2).UpdateDocument(ctx, "missing", "d1", "escrito", "texto", time.Time{}); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestDeleteDocument_RemovesAndMapsNotFound(t *testing.T) {
	ctx := context.Background()

	r := &fakeCaseRepo{docs: []domain.CaseDocument{{ID: "d1", CaseID: "c1"}}}
	svc := NewCaseService(nil, r)
	if err := svc.DeleteDocument(ctx, "c1", "d1"); err != nil || r.deletedDoc != "d1" {
		t.Fatalf("DeleteDocument: err=%v deleted=%q", err, r.deletedDoc)
	}
	if err := svc.DeleteDocument(ctx, "c1", "d1"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("second delete: expected ErrDocumentNotFound, got %v", err)
	}

	r2 := &fakeCaseRepo{getErr: gorm.ErrRecordNotFound}
	if err := NewCaseService(nil, r2).DeleteDocument(ctx, "missing", "d1"); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestAddDocument_ValidationAndEmbedding(t *testing.T) {
	ctx := context.Background()

	r := &fakeCaseRepo{}
	emb := &fakeEmbedder{vec: domain.Vector{0.1, 0.2}}
	svc := NewCaseService(nil, r)
	svc.Embedder = emb

	d, err := svc.AddDocument(ctx, "c1", "  demanda ", "texto íntegro", time.Time{})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if d.TipoDocumento != "demanda" || d.FechaCreacion.IsZero() {
		t.Fatalf("unexpected document: %+v", d)
	}
	if len(d.Embedding) != 2 || emb.seen != "texto íntegro" {
		t.Fatalf("embedder not applied: %+v", d)
	}

	// Blank tipo falls back to the catch-all bucket.
	d, err = svc.AddDocument(ctx, "c1", "  ", "más texto", time.Time{})
	if err != nil || d.TipoDocumento != "otros" {
		t.Fatalf("blank tipo: doc=%+v err=%v", d, err)
	}

	// Empty content is rejected.
	if _, err := svc.AddDocument(ctx, "c1", "demanda", "   ", time.Time{}); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}

	// Embedding failure does not block the filing.
	r2 := &fakeCaseRepo{}
	svc2 := NewCaseService(nil, r2)
	svc2.Embedder = &fakeEmbedder{err: errors.New("model down")}
	d, err = svc2.AddDocument(ctx, "c1", "demanda", "texto", time.Time{})
	if err != nil || len(d.Embedding) != 0 {
		t.Fatalf("embedding failure must be non-fatal: doc=%+v err=%v", d, err)
	}

	// Missing case surfaces before anything is stored.
	r3 := &fakeCaseRepo{getErr: gorm.ErrRecordNotFound}
	svc3 := NewCaseService(nil, r3)
	if _, err := svc3.AddDocument(ctx, "missing", "demanda", "texto", time.Time{}); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestRecordPrediction_Validation(t *testing.T) {
	ctx := context.Background()

	// Probability bounds: both endpoints legal, outside rejected.
	for _, p := range []float64{0.0, 1.0, 0.5} {
		r := &fakeCaseRepo{}
		svc := NewCaseService(nil, r)
		if _, err := svc.RecordPrediction(ctx, "c1", []string{"j1"}, p, "ok"); err != nil {
			t.Errorf("probability %v must be accepted: %v", p, err)
		}
	}
	for _, p := range []float64{-0.01, 1.01, 1.5} {
		svc := NewCaseService(nil, &fakeCaseRepo{})
		if _, err := svc.RecordPrediction(ctx, "c1", []string{"j1"}, p, "x"); !errors.Is(err, ErrInvalidProbability) {
			t.Errorf("probability %v must be rejected, got %v", p, err)
		}
	}

	// Empty grounds rejected.
	svc := NewCaseService(nil, &fakeCaseRepo{})
	if _, err := svc.RecordPrediction(ctx, "c1", nil, 0.5, "x"); !errors.Is(err, ErrEmptyGrounds) {
		t.Fatalf("expected ErrEmptyGrounds, got %v", err)
	}

	// Stored probability is rounded to 4 fractional digits.
	r := &fakeCaseRepo{}
	svc = NewCaseService(nil, r)
	got, err := svc.RecordPrediction(ctx, "c1", []string{"j1"}, 0.123456789, "x")
	if err != nil {
		t.Fatalf("RecordPrediction: %v", err)
	}
	if got.Probability != 0.1235 {
		t.Fatalf("expected rounded 0.1235, got %v", got.Probability)
	}
}

func TestPredict_UsesCollaborator(t *testing.T) {
	ctx := context.Background()

	r := &fakeCaseRepo{}
	svc := NewCaseService(nil, r)
	svc.Predictor = &fakePredictor{draft: PredictionDraft{
		Probability: 0.87654, Grounds: []string{"j1", "j2"}, Rationale: "precedente favorable",
	}}

	p, err := svc.Predict(ctx, "c1")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if p.Probability != 0.8765 || len(p.Grounds) != 2 {
		t.Fatalf("unexpected prediction: %+v", p)
	}

	// Without a backend the operation is unavailable.
	svc2 := NewCaseService(nil, &fakeCaseRepo{})
	if _, err := svc2.Predict(ctx, "c1"); !errors.Is(err, ErrPredictorUnavailable) {
		t.Fatalf("expected ErrPredictorUnavailable, got %v", err)
	}

	// A draft violating the rules is rejected, not stored.
	svc3 := NewCaseService(nil, &fakeCaseRepo{})
	svc3.Predictor = &fakePredictor{draft: PredictionDraft{Probability: 0.9}}
	if _, err := svc3.Predict(ctx, "c1"); !errors.Is(err, ErrEmptyGrounds) {
		t.Fatalf("expected ErrEmptyGrounds from draft, got %v", err)
	}
}

func TestGetDocumentAndPrediction_NotFound(t *testing.T) {
	ctx := context.Background()

	svc := NewCaseService(nil, &fakeCaseRepo{})
	if _, err := svc.GetDocument(ctx, "c1", "nope"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}

	r := &fakeCaseRepo{getPredErr: gorm.ErrRecordNotFound}
	svc2 := NewCaseService(nil, r)
	if _, err := svc2.GetPrediction(ctx, "nope"); !errors.Is(err, ErrPredictionNotFound) {
		t.Fatalf("expected ErrPredictionNotFound, got %v", err)
	}
}
