// This file declares the contracts for external AI collaborators. The
// services only depend on these small interfaces; the concrete clients
// (embedding model, inference backend, PDF renderer) are injected at wiring
// time and may be absent, in which case the dependent features degrade
// gracefully.
package services

import (
	"context"

	"github.com/goyo-ia/legal-backend/internal/domain"
)

// Embedder converts text into a fixed-dimension vector for similarity
// search. Implementations must return vectors of domain.EmbeddingDim.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.Vector, error)
}

// PredictionDraft is the raw output of an inference backend before the
// service validates and persists it.
type PredictionDraft struct {
	// Probability is the estimated success likelihood in [0, 1].
	Probability float64
	// Grounds are the IDs of the judgments the estimate is based on.
	Grounds []string
	// Rationale is the model's textual justification.
	Rationale string
}

// Predictor estimates the outcome of a case from its documents.
type Predictor interface {
	Predict(ctx context.Context, c *domain.Case, docs []domain.CaseDocument) (PredictionDraft, error)
}

// Generator renders a document template into a PDF and returns the path
// where the file landed.
type Generator interface {
	Render(ctx context.Context, tpl *domain.DocumentTemplate, data map[string]string) (string, error)
}
