package api

import (
	"encoding/json/v2"
	"io"
	"net/http"
	"strconv"
)

// decodeJSON reads a JSON request body into dst. An empty or malformed
// body is the caller's error, reported as 400 by the handler.
func decodeJSON(r *http.Request, dst any) error {
	return json.UnmarshalRead(io.LimitReader(r.Body, 1<<20), dst)
}

// queryInt parses an integer query parameter, returning fallback when
// the parameter is absent or not a number.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
