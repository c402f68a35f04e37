package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"doorsim/domain/core"
	"doorsim/domain/game"
	"doorsim/domain/simulation"
	"doorsim/internal/errors"
	"doorsim/internal/export"
	"doorsim/internal/runner"
	"doorsim/ports"
)

// startRequest is the body of POST /api/simulations
type startRequest struct {
	TotalGames int      `json:"total_games"`
	Strategies []string `json:"strategies"`
	ChunkSize  int      `json:"chunk_size"`
	Seed       int64    `json:"seed"`
}

type startResponse struct {
	RunID string `json:"run_id"`
	State string `json:"state"`
}

func (s *Server) handleStartSimulation(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.WithCode(errors.CodeInvalidArgument, err))
		return
	}
	if req.ChunkSize == 0 {
		req.ChunkSize = runner.DefaultChunkSize
	}

	strategies := make([]game.Strategy, 0, len(req.Strategies))
	for _, token := range req.Strategies {
		strategy, err := game.ParseStrategy(token)
		if err != nil {
			s.respondError(w, errors.WithCode(errors.CodeInvalidArgument, err))
			return
		}
		strategies = append(strategies, strategy)
	}

	if s.service.State() == simulation.StateRunning {
		s.respondError(w, errors.WithCode(errors.CodeAlreadyRunning, core.ErrAlreadyRunning))
		return
	}

	runID := core.RunID(core.NewID())
	runReq := runner.RunRequest{
		RunID:      runID,
		TotalGames: req.TotalGames,
		Strategies: strategies,
		ChunkSize:  req.ChunkSize,
		Seed:       req.Seed,
		OnProgress: ports.ProgressFunc(func(p simulation.Progress) {
			s.hub.Broadcast(SimulationEvent{
				RunID:     runID.String(),
				EventType: "progress",
				Progress:  &p,
				Timestamp: time.Now(),
			})
		}),
	}
	if err := validateStartRequest(runReq); err != nil {
		s.respondError(w, err)
		return
	}

	s.setActive(runID.String())
	go func() {
		// The server's context, not the request's: the run outlives the
		// HTTP exchange and is cancelled through the stop endpoint.
		result, err := s.service.Run(context.Background(), runReq)
		if err != nil {
			s.log.Error("run %s failed: %v", runID, err)
			s.setActive("")
			return
		}
		s.storeResult(runID.String(), result)
		s.hub.Broadcast(SimulationEvent{
			RunID:     runID.String(),
			EventType: "complete",
			State:     result.State.String(),
			Timestamp: time.Now(),
		})
	}()

	s.respondJSON(w, http.StatusAccepted, startResponse{
		RunID: runID.String(),
		State: simulation.StateRunning.String(),
	})
}

// validateStartRequest front-runs the runner's own validation so a bad
// request is rejected before the goroutine starts
func validateStartRequest(req runner.RunRequest) error {
	if req.TotalGames <= 0 {
		return errors.WithCode(errors.CodeInvalidArgument,
			core.NewValidationError("total_games", "must be positive"))
	}
	if len(req.Strategies) == 0 {
		return errors.WithCode(errors.CodeInvalidArgument,
			core.NewValidationError("strategies", "must not be empty"))
	}
	return nil
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	result, isActive := s.lookup(runID)

	if isActive {
		s.respondJSON(w, http.StatusOK, startResponse{RunID: runID, State: s.service.State().String()})
		return
	}
	if result == nil {
		s.respondError(w, errors.WithCode(errors.CodeNotFound, core.NewNotFoundError("run", runID)))
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStopSimulation(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if _, isActive := s.lookup(runID); !isActive {
		s.respondError(w, errors.WithCode(errors.CodeNotFound, core.NewNotFoundError("run", runID)))
		return
	}
	s.service.Stop()
	s.respondJSON(w, http.StatusAccepted, map[string]string{"run_id": runID, "state": "stopping"})
}

func (s *Server) handleExportSimulation(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	result, isActive := s.lookup(runID)
	if isActive {
		s.respondError(w, errors.WithCode(errors.CodeNoData, core.ErrNoData))
		return
	}
	if result == nil {
		s.respondError(w, errors.WithCode(errors.CodeNotFound, core.NewNotFoundError("run", runID)))
		return
	}

	formatToken := r.URL.Query().Get("format")
	if formatToken == "" {
		formatToken = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(formatToken)
	if err != nil {
		s.respondError(w, err)
		return
	}

	payload, err := export.NewExporter().Export(result, format)
	if err != nil {
		s.respondError(w, err)
		return
	}

	switch format {
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	case export.FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=simulation-%s.%s", runID, format))
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func (s *Server) handleSimulationEvents(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, errors.New(errors.CodeInternalError, "streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := SSEClient{RunID: runID, Channel: make(chan SimulationEvent, 16)}
	s.hub.Register(client)
	defer s.hub.Unregister(client)

	for {
		select {
		case event, open := <-client.Channel:
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.EventType, data)
			flusher.Flush()
			if event.EventType == "complete" {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleLifetimeTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.service.LifetimeTotals(r.Context())
	if err != nil {
		s.respondError(w, errors.WithCode(errors.CodeDatabaseError, err))
		return
	}
	if totals == nil {
		totals = map[game.Strategy]simulation.LifetimeTotals{}
	}
	s.respondJSON(w, http.StatusOK, totals)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"state":  s.service.State().String(),
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidArgument, errors.CodeInvalidDoor, errors.CodeUnsupportedFormat:
		status = http.StatusBadRequest
	case errors.CodeAlreadyRunning:
		status = http.StatusConflict
	case errors.CodeNotFound, errors.CodeNoData:
		status = http.StatusNotFound
	case errors.CodeInsufficientSample:
		status = http.StatusUnprocessableEntity
	}
	s.respondJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}
