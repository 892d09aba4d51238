// Package api serves the HTTP surface. The public endpoints expose only what
// an observer standing in the world could see: positions and apparent state.
// Ground truth lives behind /debug, and control-plane endpoints require the
// admin token.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/engine"
)

// Server exposes a simulation over HTTP.
type Server struct {
	sim      *engine.Simulation
	loop     *engine.Loop
	log      *zap.Logger
	adminKey string
	start    time.Time
}

// NewServer wires the handlers around a running simulation.
func NewServer(sim *engine.Simulation, loop *engine.Loop, adminKey string, log *zap.Logger) *Server {
	return &Server{sim: sim, loop: loop, log: log, adminKey: adminKey, start: time.Now()}
}

// Router builds the chi handler tree.
func (s *Server) Router(rps float64) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogging(s.log))
	r.Use(rateLimit(rps, int(rps)*2))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/stats", s.handleStats)
		r.Get("/events", s.handleEvents)
		r.Get("/agents", s.handleAgents)
		r.Get("/agents/{id}", s.handleAgent)
		r.Get("/agents/{id}/beliefs", s.handleBeliefs)
		r.Get("/agents/{id}/relations", s.handleRelations)

		r.Route("/debug", func(r chi.Router) {
			r.Get("/agents/{id}", s.handleDebugAgent)
			r.Post("/agents/{id}", s.handleDebugSet)
			r.Post("/stimulus", s.handleStimulus)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin(s.adminKey))
			r.Post("/speed", s.handleSpeed)
			r.Delete("/agents/{id}", s.handleDespawn)
		})
	})
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tick":    s.sim.CurrentTick(),
		"speed":   s.loop.Speed(),
		"uptime":  time.Since(s.start).String(),
		"agents":  s.sim.Store.Len(),
		"healthy": true,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Stats())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, s.sim.RecentEvents(limit))
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Summaries())
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	sum, ok := s.sim.Summary(id)
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleBeliefs(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.sim.BeliefsOf(id))
}

func (s *Server) handleRelations(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.sim.RelationsOf(id))
}

func (s *Server) handleDebugAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	detail, ok := s.sim.Detail(id)
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDebugSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req struct {
		Field string  `json:"field"`
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.sim.SetAttribute(id, req.Field, req.Value); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	detail, _ := s.sim.Detail(id)
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleStimulus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target    uint64  `json:"target"`
		Kind      string  `json:"kind"`
		Intensity float64 `json:"intensity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	var kind agent.StimulusKind
	switch req.Kind {
	case "threat":
		kind = agent.StimulusThreat
	case "resource":
		kind = agent.StimulusResource
	case "comfort":
		kind = agent.StimulusComfort
	default:
		writeError(w, http.StatusBadRequest, "unknown stimulus kind")
		return
	}
	s.sim.Inject(agent.Stimulus{
		Kind:      kind,
		Target:    agent.ID(req.Target),
		Intensity: req.Intensity,
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.loop.SetSpeed(req.Speed)
	writeJSON(w, http.StatusOK, map[string]float64{"speed": s.loop.Speed()})
}

func (s *Server) handleDespawn(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if !s.sim.Despawn(id) {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "despawned"})
}

func parseID(w http.ResponseWriter, r *http.Request) (agent.ID, bool) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return 0, false
	}
	return agent.ID(n), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
