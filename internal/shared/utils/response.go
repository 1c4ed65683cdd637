package utils

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform body every API response is wrapped in.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes payload as JSON with the given status code
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteSuccess wraps data in a successful envelope
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteError wraps message and the optional underlying error in a failed envelope
func WriteError(w http.ResponseWriter, status int, message string, err error) {
	body := Envelope{Success: false, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	WriteJSON(w, status, body)
}
