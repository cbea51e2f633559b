package handlers

import (
	"encoding/json"
	"net/http"
)

// apiError mirrors the error shape the editor already understands:
// {"code": "...", "message": "...", "data": {"status": 500}}.
type apiError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Data    apiErrorData `json:"data"`
}

type apiErrorData struct {
	Status int `json:"status"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{
		Code:    code,
		Message: message,
		Data:    apiErrorData{Status: status},
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(data)
}

func writeHTML(w http.ResponseWriter, status int, markup string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(markup))
}
