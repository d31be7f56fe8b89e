package store

// InsertResult is the outcome of InsertEntity. A failed insert is reported
// here rather than as an error.
type InsertResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`

	// Duplicate is set when the row was rejected because of an existing
	// natural key or a unique constraint. ID then refers to the existing
	// row when it is known.
	Duplicate bool `json:"duplicate,omitempty"`

	Err error `json:"-"`
}

// CredentialReason distinguishes credential failures for diagnostics.
type CredentialReason string

const (
	ReasonOK          CredentialReason = "ok"
	ReasonNotFound    CredentialReason = "not_found"
	ReasonNoHash      CredentialReason = "no_hash"
	ReasonBadPassword CredentialReason = "bad_password"
	ReasonError       CredentialReason = "error"
)

// CredentialResult is the outcome of VerifyCredentials.
type CredentialResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Reason  CredentialReason `json:"-"`
	User    *PublicUser      `json:"user,omitempty"`
}

// PublicUser is the view of a researcher returned after a successful login.
type PublicUser struct {
	ID          int64  `json:"id"`
	Name        string `json:"nombre"`
	Email       string `json:"email"`
	ExternalID  string `json:"clerk_user_id,omitempty"`
	Institution string `json:"institucion,omitempty"`
	Area        string `json:"area,omitempty"`
	Level       string `json:"nivel,omitempty"`
	Admin       bool   `json:"es_admin"`
}

// PublicEntity is a search hit. It never carries credentials.
type PublicEntity struct {
	ID           int64  `json:"id"`
	Name         string `json:"nombre_completo"`
	Email        string `json:"correo,omitempty"`
	Institution  string `json:"institucion,omitempty"`
	Area         string `json:"area,omitempty"`
	ResearchLine string `json:"linea_investigacion,omitempty"`
	Slug         string `json:"slug,omitempty"`
	PhotoURL     string `json:"fotografia_url,omitempty"`
}
