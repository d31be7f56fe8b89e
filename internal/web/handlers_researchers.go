package web

import (
	"net/http"
	"strings"

	"github.com/I2Cprogramacion/SEI-sub000/internal/auth"
	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// researcherListColumns is the public listing projection.
var researcherListColumns = []string{"id", schema.ColFullName, schema.ColEmail, "nivel", "area", "institucion"}

// handleRegisterResearcher creates a researcher from a JSON object of
// column values. nombre_completo is derived from nombres and apellidos when
// absent, fecha_registro defaults to now, and the password is stored as a
// bcrypt hash.
func (s *Server) handleRegisterResearcher(w http.ResponseWriter, r *http.Request) {
	var rec store.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		respondError(w, r, err, 0)
		return
	}

	if strings.TrimSpace(rec.Text(schema.ColEmail)) == "" {
		respondError(w, r, badRequest("correo is required"), 0)
		return
	}

	if strings.TrimSpace(rec.Text(schema.ColFullName)) == "" {
		given := strings.TrimSpace(rec.Text(schema.ColGivenNames))
		family := strings.TrimSpace(rec.Text(schema.ColFamilyNames))
		if given != "" && family != "" {
			rec.Set(schema.ColFullName, given+" "+family)
		}
	}
	if strings.TrimSpace(rec.Text(schema.ColFullName)) == "" {
		respondError(w, r, badRequest("nombre_completo is required"), 0)
		return
	}

	if _, ok := rec.Get(schema.ColRegisteredAt); !ok {
		rec.Set(schema.ColRegisteredAt, s.now().UTC())
	}

	if pw := rec.Text(schema.ColPassword); pw != "" {
		hash, err := auth.HashPassword(pw)
		if err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		rec.Set(schema.ColPassword, hash)
	} else {
		rec.Set(schema.ColPassword, nil)
	}

	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer release()

	res := st.InsertEntity(r.Context(), schema.Researchers, rec)
	logger := logging.WithFields(r.Context(), "table", schema.Researchers)
	if res.Success {
		logger.Info("researcher registered", "id", res.ID)
	} else {
		logger.Warn("researcher registration rejected", "message", res.Message, "duplicate", res.Duplicate, "existing_id", res.ID)
	}
	writeJSON(w, insertStatus(res), res)
}

// handleListResearchers returns every researcher with public fields only,
// ordered by id.
func (s *Server) handleListResearchers(w http.ResponseWriter, r *http.Request) {
	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer release()

	rows, err := st.FetchAll(r.Context(), schema.Researchers)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	out := make([]store.Record, len(rows))
	for i, row := range rows {
		out[i] = project(row, researcherListColumns...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"investigadores": out, "total": len(out)})
}

// handleGetResearcher returns one researcher without credential columns.
func (s *Server) handleGetResearcher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer release()

	row, err := st.FetchByID(r.Context(), schema.Researchers, id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if row == nil {
		respondMessage(w, UserMessage{Message: "researcher not found", Code: "TBL002"}, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, withoutSecrets(row))
}

// handleIncomplete lists researchers with a missing or placeholder CURP.
func (s *Server) handleIncomplete(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		table = schema.Researchers
	}

	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer release()

	rows, err := st.ListIncomplete(r.Context(), table)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	out := make([]store.Record, len(rows))
	for i, row := range rows {
		out[i] = withoutSecrets(row)
	}
	writeJSON(w, http.StatusOK, out)
}
