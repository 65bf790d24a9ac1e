package api

import (
	"net/http"

	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/timeline"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
	Session string `json:"session"`
	Seq     int64  `json:"seq"`
}

// CommandRequest runs one op. Times in Args are seconds.
type CommandRequest struct {
	Op      string         `json:"op"`
	Args    map[string]any `json:"args"`
	Session string         `json:"session,omitempty"`
}

type TracksResponse struct {
	Tracks []timeline.Track `json:"tracks"`
}

type ClipsResponse struct {
	Clips []timeline.Clip `json:"clips"`
}

type DurationResponse struct {
	Duration float64 `json:"duration"`
}

// Message is the websocket envelope.
type Message struct {
	Type string `json:"type"`
	From string `json:"from,omitempty"`
	Data any    `json:"data,omitempty"`
}

// Websocket message types.
const (
	MessageWelcome  = "welcome"
	MessageOutcome  = "outcome"
	MessagePlayhead = "playhead"
	MessagePresence = "presence"
)

// statusFor maps an outcome case to its HTTP status.
func statusFor(outCase string) int {
	switch outCase {
	case ir.CaseOk:
		return http.StatusOK
	case string(timeline.KindInvalidReference):
		return http.StatusNotFound
	case string(timeline.KindConflict):
		return http.StatusConflict
	case string(timeline.KindInvalidRange), string(timeline.KindMergeNotAdjacent):
		return http.StatusUnprocessableEntity
	case string(timeline.KindLocked):
		return http.StatusLocked
	default:
		return http.StatusBadRequest
	}
}
