package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glitchplay/chance-engine-go/internal/economy"
	"github.com/glitchplay/chance-engine-go/internal/engine"
	"github.com/glitchplay/chance-engine-go/internal/games"
	"github.com/glitchplay/chance-engine-go/internal/sim"
	"github.com/glitchplay/chance-engine-go/internal/store"
)

// simulateSpinCap bounds a single API-triggered simulation.
const simulateSpinCap = 10_000_000

// Server exposes the outcome engine over HTTP. The database may be nil, in
// which case simulation runs are returned but not persisted.
type Server struct {
	db        store.DB
	logger    *log.Logger
	rounds    *roundTable
	startTime time.Time
}

// NewServer creates an API server.
func NewServer(db store.DB) *Server {
	return &Server{
		db:        db,
		logger:    log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile),
		rounds:    newRoundTable(),
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/models", s.handleModels)
		r.Post("/simulations", s.handleSimulate)
		r.Get("/simulations/{id}", s.handleGetSimulation)
		r.Get("/simulations", s.handleListSimulations)
		r.Post("/spins", s.handleSpin)
		r.Post("/rounds", s.handleStartRound)
		r.Post("/rounds/{id}/step", s.handleRoundStep)
		r.Post("/rounds/{id}/cashout", s.handleRoundCashOut)
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("write response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": EngineVersion,
		"uptime":  time.Since(s.startTime).String(),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	resp := ModelsResponse{}
	for _, id := range games.List() {
		if m, ok := games.Get(id); ok {
			resp.Models = append(resp.Models, m.Spec())
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "invalid JSON body")
		return
	}
	if req.Spins <= 0 || req.Spins > simulateSpinCap {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "spins must be in [1, 10000000]")
		return
	}
	if _, ok := games.Get(req.Model); !ok {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "unknown model: "+req.Model)
		return
	}

	report, err := sim.Run(r.Context(), sim.Options{
		Model:  req.Model,
		Seed:   req.Seed,
		Spins:  req.Spins,
		Wager:  req.Wager,
		StopAt: req.StopAt,
		Script: req.Script,
	})
	if err != nil {
		var mismatch *sim.MismatchError
		if errors.As(err, &mismatch) {
			// Engine defect, not a bad request.
			s.writeError(w, r, http.StatusInternalServerError, errTypeInternal, mismatch.Error())
			return
		}
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, err.Error())
		return
	}

	resp := SimulateResponse{Report: report}
	if s.db != nil {
		reportJSON, err := json.Marshal(report)
		if err == nil {
			run := &store.Run{
				ID:            uuid.NewString(),
				Model:         report.Model,
				Seed:          report.Seed,
				Spins:         report.Spins,
				Strategy:      req.Script,
				RealizedRTP:   report.RealizedRTP,
				HitRate:       report.HitRate,
				MaxMultiplier: report.MaxMultiplier,
				TotalWagered:  report.TotalWagered,
				TotalReturned: report.TotalReturned,
				ReportJSON:    string(reportJSON),
				EngineVersion: EngineVersion,
			}
			if err := s.db.SaveRun(run); err != nil {
				s.logger.Printf("persist run: %v", err)
			} else {
				resp.RunID = run.ID
			}
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, http.StatusNotFound, errTypeNotFound, "persistence disabled")
		return
	}
	run, err := s.db.GetRun(chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrRunNotFound) {
		s.writeError(w, r, http.StatusNotFound, errTypeNotFound, "run not found")
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errTypeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeJSON(w, http.StatusOK, []store.Run{})
		return
	}
	runs, err := s.db.ListRuns(50, 0)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errTypeInternal, err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	var req SpinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "invalid JSON body")
		return
	}
	model, _ := games.Get("reels")
	reels, ok := model.(*games.ReelsModel)
	if !ok {
		s.writeError(w, r, http.StatusInternalServerError, errTypeInternal, "reels model not registered")
		return
	}

	wager := req.Wager
	if wager <= 0 {
		wager = 1
	}

	spin, err := reels.Spin(engine.NewRand(req.Seed))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errTypeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, SpinResponse{
		Outcome:    string(spin.Outcome.Kind),
		Symbol:     spin.Outcome.Symbol,
		Multiplier: spin.Outcome.Multiplier,
		Payout:     wager * spin.Outcome.Multiplier,
		Grid:       spin.Grid,
	})
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	var req StartRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "invalid JSON body")
		return
	}
	model, ok := games.Get(req.Model)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "unknown model: "+req.Model)
		return
	}
	switch model.(type) {
	case *games.SwipeModel, *games.LadderModel:
	default:
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "model does not support live rounds: "+req.Model)
		return
	}
	if req.Wager <= 0 {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "wager must be positive")
		return
	}

	sess, err := s.rounds.start(model, req.Seed, decimal.NewFromFloat(req.Wager))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errTypeInternal, err.Error())
		return
	}
	sess.mu.Lock()
	resp := sess.response()
	sess.mu.Unlock()
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) roundFromRequest(w http.ResponseWriter, r *http.Request) (*roundSession, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "invalid round id")
		return nil, false
	}
	sess, ok := s.rounds.get(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, errTypeNotFound, "round not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleRoundStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.roundFromRequest(w, r)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		s.writeError(w, r, http.StatusConflict, errTypeConflict, "round already settled")
		return
	}

	kind, err := sess.advance()
	if err != nil {
		if errors.Is(err, errLadderTopReached) {
			s.writeError(w, r, http.StatusConflict, errTypeConflict, err.Error())
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, errTypeInternal, err.Error())
		return
	}
	sess.last = kind

	resp := sess.response()
	if sess.done {
		s.rounds.remove(sess.id)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRoundCashOut(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.roundFromRequest(w, r)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		s.writeError(w, r, http.StatusConflict, errTypeConflict, "round already settled")
		return
	}

	payout, err := sess.ledger.CashOut(sess.wallet)
	if err != nil {
		if errors.Is(err, economy.ErrNoActiveRound) {
			s.writeError(w, r, http.StatusConflict, errTypeConflict, "no active round to cash out")
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, errTypeInternal, err.Error())
		return
	}
	sess.done = true

	resp := sess.response()
	resp.Payout = payout.String()
	s.rounds.remove(sess.id)
	s.writeJSON(w, http.StatusOK, resp)
}
