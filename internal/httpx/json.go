// Package httpx holds the JSON envelope shared by every action endpoint:
// an "errorMessage" field that is null on success, plus payload fields.
package httpx

import (
	"encoding/json"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{"errorMessage": msg})
}

// OK writes a 200 envelope with a null errorMessage and the given payload.
func OK(w http.ResponseWriter, payload map[string]any) {
	body := map[string]any{"errorMessage": nil}
	for k, v := range payload {
		body[k] = v
	}
	WriteJSON(w, http.StatusOK, body)
}
