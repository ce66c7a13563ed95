package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"deckcontrol/internal/platform/metrics"
	"deckcontrol/internal/production"
	"deckcontrol/internal/renderer"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the coordinator's command surface over HTTP using
// go-chi. Every command returns the uniform envelope
// {"success": bool, ...payload | "error": message}; no internal failure
// crosses this boundary unwrapped.
type Handler struct {
	coord    *Coordinator
	store    ProgramStore
	log      *slog.Logger
	metrics  *metrics.Metrics
	recorder *RecordingSink
}

// NewHandler returns a Handler over the given Coordinator and store.
// Metrics may be nil to disable metric recording (e.g. in tests); recorder
// may be nil when the event inspection endpoint is not served.
func NewHandler(coord *Coordinator, store ProgramStore, log *slog.Logger, m *metrics.Metrics, recorder *RecordingSink) *Handler {
	return &Handler{coord: coord, store: store, log: log, metrics: m, recorder: recorder}
}

// envelope is the uniform outward response shape.
type envelope map[string]any

func (h *Handler) writeOK(w http.ResponseWriter, payload envelope) {
	if payload == nil {
		payload = envelope{}
	}
	payload["success"] = true
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeErr(w http.ResponseWriter, command string, err error) {
	if h.metrics != nil {
		h.metrics.IncCommandErrors()
	}
	h.log.Info("command failed",
		slog.String("command", command),
		slog.String("error", err.Error()),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	_ = json.NewEncoder(w).Encode(envelope{"success": false, "error": err.Error()})
}

// statusFor maps the error taxonomy onto HTTP status families. The body
// shape is identical either way; the status is a courtesy for shells that
// care.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrProgramNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotLoaded), errors.Is(err, renderer.ErrNotRunning):
		return http.StatusConflict
	case errors.Is(err, ErrNotConnected), errors.Is(err, production.ErrNotConnected),
		errors.Is(err, renderer.ErrUnavailable), errors.Is(err, production.ErrAuth):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrSetup):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// command wraps a coordinator call in the envelope contract and metrics.
func (h *Handler) command(w http.ResponseWriter, name string, fn func() (envelope, error)) {
	payload, err := fn()
	if err != nil {
		h.writeErr(w, name, err)
		return
	}
	if h.metrics != nil {
		h.metrics.IncCommand(name)
	}
	h.writeOK(w, payload)
}

// connectRequest is the body of POST /session/connect.
type connectRequest struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

// Connect handles POST /session/connect.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErr(w, "connect", fmt.Errorf("%w: %v", ErrInvalidArgument, err))
		return
	}
	h.command(w, "connect", func() (envelope, error) {
		return nil, h.coord.Connect(r.Context(), req.Address, req.Password)
	})
}

// Disconnect handles POST /session/disconnect.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.command(w, "disconnect", func() (envelope, error) {
		return nil, h.coord.Disconnect(r.Context())
	})
}

// programRequest is the body of POST /programs: the import pipeline's
// hand-over of one imported deck's metadata.
type programRequest struct {
	Name       string `json:"name"`
	SourcePath string `json:"source_path"`
	Mode       Mode   `json:"mode"`
	SlideCount int    `json:"slide_count"`
	Acts       []Act  `json:"acts"`
}

// RegisterProgram handles POST /programs.
func (h *Handler) RegisterProgram(w http.ResponseWriter, r *http.Request) {
	var req programRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErr(w, "register-program", fmt.Errorf("%w: %v", ErrInvalidArgument, err))
		return
	}
	h.command(w, "register-program", func() (envelope, error) {
		if req.SourcePath == "" {
			return nil, fmt.Errorf("%w: source_path is required", ErrInvalidArgument)
		}
		// Act indexes must match sequence position regardless of what the
		// pipeline sent.
		for i := range req.Acts {
			req.Acts[i].Index = i
		}
		p := &Program{
			ID:         ProgramIDFromFilename(req.SourcePath),
			Name:       req.Name,
			SourcePath: req.SourcePath,
			Mode:       req.Mode,
			SlideCount: req.SlideCount,
			Acts:       req.Acts,
			CreatedAt:  time.Now().UTC(),
		}
		if err := h.store.Put(p); err != nil {
			return nil, err
		}
		return envelope{"program": p}, nil
	})
}

// ListPrograms handles GET /programs.
func (h *Handler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	h.writeOK(w, envelope{"programs": h.store.List()})
}

// Load handles POST /control/load/{program_id}.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	id := ProgramID(chi.URLParam(r, "program_id"))
	h.command(w, "load", func() (envelope, error) {
		if id == "" {
			return nil, fmt.Errorf("%w: program id is required", ErrInvalidArgument)
		}
		return envelope{"program_id": id}, h.coord.Load(r.Context(), id)
	})
}

// Start handles POST /control/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.command(w, "start", func() (envelope, error) {
		if err := h.coord.Start(r.Context()); err != nil {
			return nil, err
		}
		if h.metrics != nil && h.coord.Status().Mode == ModeLiveRender {
			h.metrics.IncRendererLaunches()
		}
		return nil, nil
	})
}

// Stop handles POST /control/stop.
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	h.command(w, "stop", func() (envelope, error) {
		return nil, h.coord.Stop(r.Context())
	})
}

// Next handles POST /control/next.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.command(w, "next", func() (envelope, error) {
		return nil, h.coord.Next(r.Context())
	})
}

// Prev handles POST /control/prev.
func (h *Handler) Prev(w http.ResponseWriter, r *http.Request) {
	h.command(w, "prev", func() (envelope, error) {
		return nil, h.coord.Prev(r.Context())
	})
}

// First handles POST /control/first.
func (h *Handler) First(w http.ResponseWriter, r *http.Request) {
	h.command(w, "first", func() (envelope, error) {
		return nil, h.coord.First(r.Context())
	})
}

// Last handles POST /control/last.
func (h *Handler) Last(w http.ResponseWriter, r *http.Request) {
	h.command(w, "last", func() (envelope, error) {
		return nil, h.coord.Last(r.Context())
	})
}

// Jump handles POST /control/jump/{index}.
func (h *Handler) Jump(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "index")
	h.command(w, "jump", func() (envelope, error) {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		rec, err := h.coord.Jump(r.Context(), index)
		if err != nil {
			return nil, err
		}
		if h.metrics != nil {
			h.metrics.IncSceneSwitches()
		}
		return envelope{"scene": rec}, nil
	})
}

// Blackout handles POST /control/blackout.
func (h *Handler) Blackout(w http.ResponseWriter, r *http.Request) {
	h.command(w, "blackout", func() (envelope, error) {
		return nil, h.coord.Blackout(r.Context())
	})
}

// SetDisplay handles POST /control/display/{index}.
func (h *Handler) SetDisplay(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "index")
	h.command(w, "set-display", func() (envelope, error) {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		return envelope{"display": index}, h.coord.SetDisplay(index)
	})
}

// Status handles GET /control/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.writeOK(w, envelope{"status": h.coord.Status()})
}

// Events handles GET /events: the retained tail of emitted lifecycle and
// navigation events, oldest first.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	events := []Event{}
	if h.recorder != nil {
		events = h.recorder.Events()
	}
	h.writeOK(w, envelope{"events": events})
}

// RendererAvailability handles GET /control/renderer.
func (h *Handler) RendererAvailability(w http.ResponseWriter, r *http.Request) {
	h.writeOK(w, envelope{"available": h.coord.RendererAvailable(r.Context())})
}
