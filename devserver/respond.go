package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// errorBody is {"error": msg}, used by the marketplace views.
func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// detail is {"detail": msg}, used by the framework's auth and 404 responses.
func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

// fieldErrors is the per-field validation shape: {"field": ["msg"]}.
func fieldErrors(field, msg string) map[string][]string {
	return map[string][]string{field: {msg}}
}

func decodeBody(r *http.Request, out any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(out)
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
