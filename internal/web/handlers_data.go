package web

import (
	"net/http"
	"strings"

	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// handleCreatePublication stores a publication record.
func (s *Server) handleCreatePublication(w http.ResponseWriter, r *http.Request) {
	var rec store.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		respondError(w, r, err, 0)
		return
	}

	for _, col := range []string{"titulo", "autor"} {
		if strings.TrimSpace(rec.Text(col)) == "" {
			respondError(w, r, badRequest(col+" is required"), 0)
			return
		}
	}

	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer release()

	res := st.InsertEntity(r.Context(), schema.Publications, rec)
	writeJSON(w, insertStatus(res), res)
}

// handleListPublications returns every publication, optionally filtered by
// the owning account (?clerk_user_id=).
func (s *Server) handleListPublications(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get(schema.ColExternalID)

	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer release()

	rows, err := st.FetchAll(r.Context(), schema.Publications)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	out := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		if owner != "" && row.Text(schema.ColExternalID) != owner {
			continue
		}
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, map[string]any{"publicaciones": out, "total": len(out)})
}

type loginRequest struct {
	Email      string `json:"email"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// handleLogin verifies an email or external account id with a password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, 0)
		return
	}

	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || req.Password == "" {
		respondError(w, r, badRequest("email and password are required"), 0)
		return
	}

	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer release()

	// The reason stays in the log; clients see one message for every
	// credential failure.
	res := st.VerifyCredentials(r.Context(), identifier, req.Password)
	switch {
	case res.Success:
		writeJSON(w, http.StatusOK, res)
	case res.Reason == store.ReasonError:
		logging.FromContext(r.Context()).Error("login lookup failed", "error", res.Message)
		respondMessage(w, msgUnavailable, http.StatusServiceUnavailable)
	default:
		logging.FromContext(r.Context()).Info("login rejected", "reason", res.Reason)
		respondMessage(w, msgInvalidCredentials, http.StatusUnauthorized)
	}
}

// handleSearch runs the free-text researcher search (?q=&limit=).
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := parseIntParam(r, "limit", 0)

	if term == "" {
		writeJSON(w, http.StatusOK, map[string]any{"results": []store.PublicEntity{}, "query": term, "total": 0})
		return
	}

	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer release()

	hits, err := st.SearchEntities(r.Context(), term, limit)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": hits, "query": term, "total": len(hits)})
}
