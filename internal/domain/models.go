// Package domain defines the persistence models for users, sessions, legal
// cases (expedientes), jurisprudence, and document templates. These types are
// mapped with GORM and form the core data layer of the legal backend.
package domain

import (
	"time"
)

// User represents an account held by a legal professional. Users are never
// hard-deleted; deactivation is expressed through IsActive.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: login identifier, globally unique.
//   - Name: display name.
//   - PasswordHash: bcrypt hash; never serialized to JSON.
//   - Role: coarse authorization role ("user" by default, "admin" for the seed).
//   - IsActive: soft-deactivation flag; inactive users cannot authenticate.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	Name         string    `json:"name"       gorm:"type:varchar(200);not null"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(255);not null"`
	Role         string    `json:"role"       gorm:"type:varchar(50);not null;default:'user'"`
	IsActive     bool      `json:"is_active"  gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Session represents an opaque bearer credential authorizing API access as a
// given user. A session is valid iff the current time is before ExpiresAt and
// the owning user is active; expired rows are inert until the reaper sweeps
// them.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: foreign key to the owning user (indexed, cascade delete).
//   - Token: opaque random bearer token, unique for point lookups.
//   - ExpiresAt: hard validity cutoff (indexed for the reaper sweep).
//   - CreatedAt: timestamp managed by GORM.
type Session struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;index:idx_session_user"`
	Token     string    `json:"-"          gorm:"type:varchar(500);not null;uniqueIndex:ux_sessions_token"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index:idx_session_expiry"`
	CreatedAt time.Time `json:"created_at"`

	// User is the session owner. Sessions are cascade-deleted when the
	// owning user row is removed.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// CaseStatus is the closed set of lifecycle states for a Case. The upstream
// schema stored an unconstrained string; it is narrowed here with an explicit
// transition table (see CanTransitionTo).
type CaseStatus string

const (
	CaseStatusActive   CaseStatus = "active"
	CaseStatusClosed   CaseStatus = "closed"
	CaseStatusArchived CaseStatus = "archived"
)

// Valid reports whether s is one of the sanctioned case states.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusActive, CaseStatusClosed, CaseStatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is sanctioned.
// Allowed: active→closed, active→archived, closed→archived. Archived is
// terminal.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	switch s {
	case CaseStatusActive:
		return next == CaseStatusClosed || next == CaseStatusArchived
	case CaseStatusClosed:
		return next == CaseStatusArchived
	}
	return false
}

// Case represents a legal matter (expediente) tracked by a globally unique
// case number. A case owns zero or more documents and predictions, both of
// which are cascade-deleted with it.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Numero: court-assigned case number, globally unique.
//   - Tribunal / Materia / Partes: court, subject matter, and parties (free text).
//   - Estado: lifecycle state from the closed CaseStatus set.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Case struct {
	ID        string     `json:"id"       gorm:"type:char(36);primaryKey"`
	Numero    string     `json:"numero"   gorm:"type:varchar(100);not null;uniqueIndex:ux_cases_numero"`
	Tribunal  string     `json:"tribunal" gorm:"type:varchar(500);not null"`
	Materia   string     `json:"materia"  gorm:"type:varchar(200);not null;index:idx_cases_materia"`
	Partes    string     `json:"partes"   gorm:"type:text;not null"`
	Estado    CaseStatus `json:"estado"   gorm:"type:varchar(20);not null;default:'active';check:estado IN ('active','closed','archived')"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Case.
func (Case) TableName() string { return "cases" }

// CaseDocument is a document filed under a case: a brief, a piece of
// evidence, a court resolution. The optional embedding supports semantic
// retrieval; it is produced by an external collaborator and stored opaquely.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - CaseID: foreign key to the owning case (indexed, cascade delete).
//   - TipoDocumento: document kind ("demanda", "contestacion", "prueba", ...).
//   - Contenido: full document text.
//   - FechaCreacion: legal filing date (distinct from the row timestamp).
//   - Embedding: optional 768-dim vector for similarity search.
//   - CreatedAt: timestamp managed by GORM.
type CaseDocument struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	CaseID        string    `json:"case_id"        gorm:"type:char(36);not null;index:idx_case_docs"`
	TipoDocumento string    `json:"tipo_documento" gorm:"type:varchar(100);not null"`
	Contenido     string    `json:"contenido"      gorm:"type:text;not null"`
	FechaCreacion time.Time `json:"fecha_creacion" gorm:"type:date"`
	Embedding     Vector    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`

	// Case is the owning expediente. Documents are cascade-deleted when
	// their case is removed.
	Case Case `json:"-" gorm:"foreignKey:CaseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CaseDocument.
func (CaseDocument) TableName() string { return "case_documents" }

// Prediction is a stored outcome-probability estimate for a case, produced by
// an external inference collaborator. A prediction must cite at least one
// grounding judgment; the probability is fixed-point with 4 fractional digits
// and lies in [0.0000, 1.0000].
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - CaseID: foreign key to the owning case (indexed, cascade delete).
//   - Grounds: ordered judgment IDs cited as grounds (JSON-encoded in storage).
//   - Probability: estimated favorable-outcome probability, decimal(5,4).
//   - Rationale: free-text explanation from the inference collaborator.
//   - CreatedAt: timestamp managed by GORM.
type Prediction struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	CaseID      string    `json:"case_id"     gorm:"type:char(36);not null;index:idx_case_preds"`
	Grounds     UUIDList  `json:"grounds"     gorm:"type:text;not null"`
	Probability float64   `json:"probability" gorm:"type:decimal(5,4);not null"`
	Rationale   string    `json:"rationale"   gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`

	// Case is the owning expediente. Predictions are cascade-deleted when
	// their case is removed.
	Case Case `json:"-" gorm:"foreignKey:CaseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Prediction.
func (Prediction) TableName() string { return "predictions" }

// Judgment is a historical court ruling (sentencia) stored independently of
// any case. CaseID is an optional relational link to a tracked case; the
// free-text Expediente field remains as a best-effort fallback correlation
// only, never the primary link.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - CaseID: optional foreign key to a tracked case (nullable; severed on
//     case deletion rather than cascaded).
//   - Tribunal / Fecha / Materia / Partes: ruling metadata.
//   - Expediente: case-file number as printed on the ruling (free text).
//   - FullText: complete ruling text.
//   - URL: optional source link.
//   - Embedding: optional 768-dim vector for similarity search.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Judgment struct {
	ID         string    `json:"id"         gorm:"type:char(36);primaryKey"`
	CaseID     *string   `json:"case_id,omitempty" gorm:"type:char(36);index:idx_judgment_case"`
	Tribunal   string    `json:"tribunal"   gorm:"type:varchar(500);not null;index:idx_judgment_tribunal"`
	Fecha      time.Time `json:"fecha"      gorm:"type:date;not null"`
	Materia    string    `json:"materia"    gorm:"type:varchar(200);not null;index:idx_judgment_materia"`
	Partes     string    `json:"partes"     gorm:"type:text;not null"`
	Expediente string    `json:"expediente" gorm:"type:varchar(100);not null;index:idx_judgment_expediente"`
	FullText   string    `json:"full_text"  gorm:"type:text;not null"`
	URL        *string   `json:"url,omitempty" gorm:"type:text"`
	Embedding  Vector    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// LinkedCase, when set, is the tracked expediente this ruling belongs
	// to. The link is severed, not cascaded, when the case is deleted.
	LinkedCase *Case `json:"-" gorm:"foreignKey:CaseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Judgment.
func (Judgment) TableName() string { return "judgments" }

// DocumentTemplate is a reusable legal-document template (escrito legal).
// Rendering to PDF is delegated to an external generation collaborator; only
// the resulting path is stored here.
type DocumentTemplate struct {
	ID              string    `json:"id"       gorm:"type:char(36);primaryKey"`
	Nombre          string    `json:"nombre"   gorm:"type:varchar(200);not null"`
	Tipo            string    `json:"tipo"     gorm:"type:varchar(100);not null;index:idx_template_tipo"`
	TemplateContent string    `json:"template_content" gorm:"type:text;not null"`
	PDFPath         *string   `json:"pdf_path,omitempty" gorm:"type:text"`
	Embedding       Vector    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for DocumentTemplate.
func (DocumentTemplate) TableName() string { return "document_templates" }
