package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/I2Cprogramacion/SEI-sub000/internal/export"
	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
)

// handleInitSchema creates or upgrades the schema.
func (s *Server) handleInitSchema(w http.ResponseWriter, r *http.Request) {
	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer release()

	if err := st.InitializeSchema(r.Context()); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "schema initialized"})
}

type migrateRequest struct {
	SQL string `json:"sql"`
}

// handleMigrate runs one administrator supplied statement.
func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	var req migrateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, 0)
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		respondError(w, r, badRequest("sql is required"), 0)
		return
	}

	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer release()

	if err := st.RunMigration(r.Context(), req.SQL); err != nil {
		respondError(w, r, err, 0)
		return
	}
	logging.FromContext(r.Context()).Info("migration applied")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "migration applied"})
}

// handleExport renders a catalog export (?type=&format=&fields=). csv and
// excel are sent as attachments; pdf returns the structured envelope.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	job := export.Job{
		Dataset: q.Get("type"),
		Fields:  export.ParseFields(q.Get("fields")),
		Format:  format,
	}

	// Validate before taking a store so bad requests never touch the
	// database.
	if _, err := export.Plan(job); err != nil {
		respondError(w, r, err, 0)
		return
	}

	if err := s.exports.Acquire(r.Context()); err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer s.exports.Release()

	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer release()

	engine := export.NewEngine(st, s.cfg.Export.MaxRows)
	engine.Metrics = s.metrics
	engine.Now = s.now

	res, err := engine.Run(r.Context(), job)
	if err != nil {
		if export.IsValidation(err) {
			respondError(w, r, err, 0)
			return
		}
		respondError(w, r, fmt.Errorf("%s: %w", msgExportFailed.Message, err), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(r.Context(), &buf, res); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", res.Format.ContentType())
	w.Header().Set("X-Export-ID", res.ID)
	if res.Format != export.FormatPDF {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, export.Filename(res.Dataset, res.Format, res.GeneratedAt)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
