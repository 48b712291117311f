package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"dentixpro/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"msg": msg})
}

func parseJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// pageQuery reads page and page_size, defaulting to 1 and 10. Oversized
// values are clamped to store.MaxPage and store.MaxPageSize.
func pageQuery(r *http.Request) (page, size int) {
	return store.ClampPage(intQuery(r, "page", 1), intQuery(r, "page_size", 10))
}
