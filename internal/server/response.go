package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// StoryResponse は /generate と /compose の成功レスポンスなのだ。
type StoryResponse struct {
	Success   bool   `json:"success"`
	Caption   string `json:"caption"`
	Story     string `json:"story"`
	Style     string `json:"style"`
	ImageData string `json:"image_data,omitempty"`
	Timestamp string `json:"timestamp"`
	SeedUsed  int64  `json:"seed_used"`
	RequestID string `json:"request_id"`
}

// ErrorResponse は失敗時のレスポンスです。
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HealthResponse は /health のレスポンスです。
type HealthResponse struct {
	Status       string `json:"status"`
	ModelsLoaded bool   `json:"models_loaded"`
	Device       string `json:"device"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("レスポンスの書き込みに失敗したのだ", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: msg})
}
