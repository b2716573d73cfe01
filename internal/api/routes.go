package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/reeldeck/reeldeck-agent/internal/session"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/", dashboardHandler(cfg))

	r.Post("/submit", submitHandler(cfg))
	r.Post("/upload", uploadHandler(cfg))

	r.Get("/session", getSessionHandler(cfg))
	r.Post("/session/reset", resetHandler(cfg))
	r.Post("/session/clip", selectClipHandler(cfg))
	r.Post("/session/translate", translateHandler(cfg))

	r.Get("/settings", getSettingsHandler(cfg))
	r.Post("/settings", updateSettingsHandler(cfg))

	r.Post("/player/event", playerEventHandler(cfg))
	r.Get("/player/caption", playerCaptionHandler(cfg))

	r.Get("/media/{id}", mediaHandler(cfg))
	r.Get("/ws", wsHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func submitHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.Sessions.Submit(session.Input{URL: req.URL}); err != nil {
			writeSessionError(w, err)
			return
		}

		snap := cfg.Sessions.Snapshot()
		WriteJSON(w, http.StatusAccepted, SubmitResponse{
			SessionID: snap.SessionID,
			Status:    string(snap.Status),
		})
	}
}

func uploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "file field is required", "BAD_REQUEST")
			return
		}
		defer file.Close()

		mediaID, err := cfg.Media.Save(header.Filename, file)
		if err != nil {
			cfg.Logger.Error("failed to store upload", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to store upload", "INTERNAL_ERROR")
			return
		}

		path, _ := cfg.Media.Lookup(mediaID)
		if err := cfg.Sessions.Submit(session.Input{FilePath: path, Filename: header.Filename}); err != nil {
			writeSessionError(w, err)
			return
		}

		snap := cfg.Sessions.Snapshot()
		WriteJSON(w, http.StatusAccepted, UploadResponse{
			SessionID: snap.SessionID,
			MediaID:   mediaID,
			Status:    string(snap.Status),
		})
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, SnapshotToResponse(cfg.Sessions.Snapshot()))
	}
}

func resetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Sessions.Reset(); err != nil {
			writeSessionError(w, err)
			return
		}
		cfg.Player.Clear()
		w.WriteHeader(http.StatusNoContent)
	}
}

func selectClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.Sessions.SelectClip(req.Index); err != nil {
			writeSessionError(w, err)
			return
		}

		snap := cfg.Sessions.Snapshot()
		cfg.Player.SetClip(snap.Clips[snap.ActiveClip])
		WriteJSON(w, http.StatusOK, SnapshotToResponse(snap))
	}
}

func translateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TranslateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Language == "" {
			WriteError(w, http.StatusBadRequest, "language is required", "BAD_REQUEST")
			return
		}

		if err := cfg.Sessions.Translate(req.Language); err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SnapshotToResponse(cfg.Sessions.Snapshot()))
	}
}

func getSettingsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := cfg.Sessions.Snapshot()
		WriteJSON(w, http.StatusOK, SettingsResponse{
			BackendURL: snap.BackendURL,
			DemoMode:   snap.DemoMode,
		})
	}
}

func updateSettingsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.BackendURL != "" {
			cfg.Sessions.SetBackendURL(req.BackendURL)
		}
		if req.DemoMode != nil {
			cfg.Sessions.SetDemoMode(*req.DemoMode)
		}

		snap := cfg.Sessions.Snapshot()
		WriteJSON(w, http.StatusOK, SettingsResponse{
			BackendURL: snap.BackendURL,
			DemoMode:   snap.DemoMode,
		})
	}
}

func playerEventHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlayerEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		resp := PlayerResponse{}
		switch req.Type {
		case "toggle":
			resp.Intent = cfg.Player.Toggle()
		case "started":
			cfg.Player.HandleStarted()
		case "stopped", "paused", "ended":
			cfg.Player.HandleStopped()
		case "timeupdate":
			seekTo, loop := cfg.Player.HandleTimeUpdate(req.Time)
			resp.SeekTo = seekTo
			resp.Loop = loop
		default:
			WriteError(w, http.StatusBadRequest, "unknown event type", "BAD_REQUEST")
			return
		}

		resp.Intent = cfg.Player.Intent()
		resp.Playing = cfg.Player.Playing()
		if seg, ok := cfg.Player.CurrentCaption(); ok {
			caption := CaptionToResponse(seg)
			resp.Caption = &caption
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func playerCaptionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seg, ok := cfg.Player.CurrentCaption()
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		WriteJSON(w, http.StatusOK, CaptionToResponse(seg))
	}
}

func mediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		path, ok := cfg.Media.Lookup(id)
		if !ok {
			WriteError(w, http.StatusNotFound, "media not found", "NOT_FOUND")
			return
		}
		if err := cfg.Media.ServeFile(w, r, path); err != nil {
			cfg.Logger.Error("media serve error", "error", err, "media_id", id)
		}
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoInput):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, session.ErrBusy):
		WriteError(w, http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, session.ErrNotCompleted):
		WriteError(w, http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, session.ErrClipIndex):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}
