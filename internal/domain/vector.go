// Package domain – value types shared by the persistence models.
//
// This file defines Vector, the fixed-width embedding column type, and
// UUIDList, the ordered identifier list used for prediction grounds. Both
// implement driver.Valuer and sql.Scanner so they round-trip through GORM on
// every supported dialect: on Postgres a Vector maps to the pgvector
// "vector(768)" column (enabling the <=> cosine-distance operator and an
// IVFFlat index), while on SQLite it degrades to the same bracketed text
// representation, which keeps the pure-Go test databases working.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// EmbeddingDim is the fixed dimensionality of all embedding vectors.
// Vectors are produced by an external collaborator; this package only
// validates width and handles storage.
const EmbeddingDim = 768

// Vector is a fixed-width numeric embedding. A nil or empty Vector is stored
// as SQL NULL (embeddings are optional on every table that carries one).
type Vector []float32

// Dims returns the number of dimensions.
func (v Vector) Dims() int { return len(v) }

// Value implements driver.Valuer using the pgvector text format
// "[0.012,-0.45,...]". Empty vectors are stored as NULL.
func (v Vector) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String(), nil
}

// Scan implements sql.Scanner for the pgvector text format. NULL scans to a
// nil Vector.
func (v *Vector) Scan(value any) error {
	if value == nil {
		*v = nil
		return nil
	}
	var s string
	switch raw := value.(type) {
	case []byte:
		s = string(raw)
	case string:
		s = raw
	default:
		return fmt.Errorf("vector: cannot scan %T", value)
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		*v = nil
		return nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return fmt.Errorf("vector: malformed literal %q", truncateForErr(s))
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	out := make(Vector, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return fmt.Errorf("vector: bad component %q: %w", strings.TrimSpace(p), err)
		}
		out = append(out, float32(f))
	}
	*v = out
	return nil
}

// GormDataType gives the schema parser a concrete type; without it GORM
// cannot infer one from the slice and field parsing fails before the
// dialect-specific mapping below is ever consulted.
func (Vector) GormDataType() string { return "text" }

// GormDBDataType maps the Vector column per dialect: pgvector on Postgres,
// plain text elsewhere.
func (Vector) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("vector(%d)", EmbeddingDim)
	}
	return "text"
}

// truncateForErr keeps malformed-literal errors readable.
func truncateForErr(s string) string {
	const max = 32
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// UUIDList is an ordered list of entity identifiers persisted as a JSON
// array. Order is preserved; it carries the grounds cited by a prediction.
type UUIDList []string

// Value implements driver.Valuer (JSON encoding).
func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		l = UUIDList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. NULL and empty payloads scan to an empty list.
func (l *UUIDList) Scan(value any) error {
	if value == nil {
		*l = UUIDList{}
		return nil
	}
	var b []byte
	switch raw := value.(type) {
	case []byte:
		b = raw
	case string:
		b = []byte(raw)
	default:
		return fmt.Errorf("uuidlist: cannot scan %T", value)
	}
	if len(b) == 0 {
		*l = UUIDList{}
		return nil
	}
	return json.Unmarshal(b, (*[]string)(l))
}

// GormDataType gives the schema parser a concrete type for the slice field.
func (UUIDList) GormDataType() string { return "text" }

// GormDBDataType stores the list as text on every dialect.
func (UUIDList) GormDBDataType(_ *gorm.DB, _ *schema.Field) string { return "text" }
