package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/roach88/cutroom/internal/engine"
	"github.com/roach88/cutroom/internal/geometry"
	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/timeline"
)

const maxCommandBody = 1 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API listens on loopback by default.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewRouter(cfg ServerConfig, hub *Hub) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/commands", commandHandler(cfg))
		r.Get("/tracks", listTracksHandler(cfg))
		r.Get("/tracks/{id}", getTrackHandler(cfg))
		r.Get("/tracks/{id}/clips", clipsInRangeHandler(cfg))
		r.Get("/clips/{id}", getClipHandler(cfg))
		r.Get("/duration", durationHandler(cfg))
		r.Get("/ws", wsHandler(hub))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: ir.EngineVersion,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
			Session: cfg.Engine.Session(),
			Seq:     cfg.Engine.Clock().Current(),
		})
	}
}

// commandHandler runs one op through the engine queue and answers with the
// outcome. The status code follows the outcome case.
func commandHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CommandRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBody))
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid JSON body", string(engine.CodeInvalidArgument))
			return
		}
		if req.Op == "" {
			WriteError(w, http.StatusBadRequest, "op is required", string(engine.CodeInvalidArgument))
			return
		}

		op := ir.OpName(req.Op)
		args, err := engine.EncodeArgs(op, req.Args)
		if err != nil {
			var ce *engine.CommandError
			if errors.As(err, &ce) {
				WriteError(w, http.StatusBadRequest, ce.Message, string(ce.Code))
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error(), string(engine.CodeInvalidArgument))
			return
		}

		out, err := cfg.Engine.Submit(r.Context(), req.Session, op, args)
		if err != nil {
			cfg.Logger.Error("command failed", "op", op, "error", err)
			WriteError(w, http.StatusServiceUnavailable, err.Error(), "UNAVAILABLE")
			return
		}
		WriteJSON(w, statusFor(out.Case), out)
	}
}

func listTracksHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tracks []timeline.Track
		cfg.Engine.View(func(tl *timeline.Timeline, _ *geometry.Mapper) {
			tracks = tl.ListTracks()
		})
		if tracks == nil {
			tracks = []timeline.Track{}
		}
		WriteJSON(w, http.StatusOK, TracksResponse{Tracks: tracks})
	}
}

func getTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var track timeline.Track
		var err error
		cfg.Engine.View(func(tl *timeline.Timeline, _ *geometry.Mapper) {
			track, err = tl.GetTrack(chi.URLParam(r, "id"))
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, track)
	}
}

func clipsInRangeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := rangeParams(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), string(engine.CodeInvalidArgument))
			return
		}

		var clips []timeline.Clip
		cfg.Engine.View(func(tl *timeline.Timeline, _ *geometry.Mapper) {
			if from == nil {
				clips, err = tl.TrackClips(chi.URLParam(r, "id"))
				return
			}
			clips, err = tl.ClipsInRange(chi.URLParam(r, "id"), *from, *to)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if clips == nil {
			clips = []timeline.Clip{}
		}
		WriteJSON(w, http.StatusOK, ClipsResponse{Clips: clips})
	}
}

// rangeParams reads ?from&to in seconds. Both or neither must be given.
func rangeParams(r *http.Request) (*float64, *float64, error) {
	q := r.URL.Query()
	fromStr, toStr := q.Get("from"), q.Get("to")
	if fromStr == "" && toStr == "" {
		return nil, nil, nil
	}
	if fromStr == "" || toStr == "" {
		return nil, nil, errors.New("from and to must be given together")
	}
	from, err := strconv.ParseFloat(fromStr, 64)
	if err != nil {
		return nil, nil, errors.New("from must be a number")
	}
	to, err := strconv.ParseFloat(toStr, 64)
	if err != nil {
		return nil, nil, errors.New("to must be a number")
	}
	return &from, &to, nil
}

func getClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var clip timeline.Clip
		var err error
		cfg.Engine.View(func(tl *timeline.Timeline, _ *geometry.Mapper) {
			clip, err = tl.GetClip(chi.URLParam(r, "id"))
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, clip)
	}
}

func durationHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d float64
		cfg.Engine.View(func(tl *timeline.Timeline, _ *geometry.Mapper) {
			d = tl.TotalDuration()
		})
		WriteJSON(w, http.StatusOK, DurationResponse{Duration: d})
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	var de *timeline.Error
	if errors.As(err, &de) {
		WriteError(w, statusFor(string(de.Kind)), de.Message, string(de.Kind))
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
}

func wsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Warn("websocket upgrade", "error", err)
			return
		}

		client := &Client{
			id:   uuid.Must(uuid.NewV7()).String(),
			hub:  hub,
			conn: conn,
			send: make(chan []byte, sendBuffer),
		}

		var welcome bytes.Buffer
		_ = json.NewEncoder(&welcome).Encode(Message{Type: MessageWelcome, Data: map[string]any{
			"client": client.id,
			"now":    time.Now().UTC().Format(time.RFC3339Nano),
		}})
		client.send <- bytes.TrimSpace(welcome.Bytes())

		if !hub.add(client) {
			_ = conn.Close()
			return
		}
		go client.writePump()
		go client.readPump()
	}
}
