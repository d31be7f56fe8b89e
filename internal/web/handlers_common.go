package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

// decodeJSON reads a JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return badRequest("request body too large")
		}
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, badRequest(fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

// project keeps only columns, in that order. Absent columns are skipped.
func project(row store.Record, columns ...string) store.Record {
	out := make(store.Record, 0, len(columns))
	for _, c := range columns {
		if v, ok := row.Get(c); ok {
			out = append(out, store.Field{Column: c, Value: v})
		}
	}
	return out
}

// withoutSecrets drops credential columns from a row.
func withoutSecrets(row store.Record) store.Record {
	return row.Without(schema.ColPassword)
}

// insertStatus maps a failed insert to an HTTP status.
func insertStatus(res store.InsertResult) int {
	switch {
	case res.Success:
		return http.StatusCreated
	case res.Duplicate:
		return http.StatusConflict
	case res.Err != nil && store.IsConnection(res.Err):
		return http.StatusServiceUnavailable
	case res.Err != nil && errors.Is(res.Err, store.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusBadRequest
	}
}
