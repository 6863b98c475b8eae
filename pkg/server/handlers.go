package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"dealcoach/pkg/flow"
	"dealcoach/pkg/money"
	"dealcoach/pkg/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// session resolves the path's session ID, restoring from the store when the
// session is not live in memory.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*flow.Session, bool) {
	id := r.PathValue("id")
	if sess, ok := s.manager.Get(id); ok {
		return sess, true
	}
	if s.sessions != nil {
		if snap, err := s.sessions.LoadSession(id); err == nil {
			sess := s.manager.Restore(snap)
			return sess, true
		} else if !errors.Is(err, store.ErrNotFound) {
			s.logger.LogError(err)
		}
	}
	writeError(w, http.StatusNotFound, errors.New("unknown session"))
	return nil, false
}

type sessionResponse struct {
	ID    string `json:"id"`
	Step  int    `json:"step"`
	Label string `json:"stepLabel"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.manager.Create()
	s.persist(sess)
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID: sess.ID(), Step: int(sess.Step()), Label: sess.Step().String(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type numbersRequest struct {
	VehiclePrice money.Amount `json:"vehiclePrice"`
	TargetOTD    money.Amount `json:"targetOTD"`
	WalkAwayOTD  money.Amount `json:"walkAwayOTD"`
	AskOTD       money.Amount `json:"askOTD"`
	StateCode    string       `json:"stateCode"`
	LockLadder   bool         `json:"lockLadder"`
	AIEnabled    bool         `json:"aiEnabled"`
}

func (s *Server) handleSetNumbers(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req numbersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	warnings := sess.SetNumbers(flow.NumbersInput{
		VehiclePrice: req.VehiclePrice,
		TargetOTD:    req.TargetOTD,
		WalkAwayOTD:  req.WalkAwayOTD,
		AskOTD:       req.AskOTD,
		StateCode:    req.StateCode,
		LockLadder:   req.LockLadder,
		AIEnabled:    req.AIEnabled,
	})
	s.persist(sess)
	s.broadcast(sess.ID(), "numbers", sess.Snapshot())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"step":     int(sess.Step()),
		"warnings": warnings,
	})
}

type quoteRequest struct {
	Text   string       `json:"text,omitempty"`
	Amount money.Amount `json:"amount,omitempty"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := map[string]interface{}{}
	if req.Text != "" {
		po, err := sess.RecordDealerQuote(req.Text)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		resp["parsed"] = po
	} else {
		if err := sess.RecordDealerAmount(req.Amount); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
	}
	resp["step"] = int(sess.Step())
	s.persist(sess)
	s.broadcast(sess.ID(), "quote", sess.Snapshot())
	writeJSON(w, http.StatusOK, resp)
}

type tacticRequest struct {
	Situation  string `json:"situation,omitempty"`
	DealerText string `json:"dealerText,omitempty"`
	Narration  string `json:"narration,omitempty"`
}

func (s *Server) handleTactic(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req tacticRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := sess.HandleTactic(r.Context(), s.caps(), req.Situation, req.DealerText, req.Narration)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.persist(sess)
	s.broadcast(sess.ID(), "guidance", result)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAdvise(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	rec, err := sess.Advise(r.Context(), s.caps())
	if err != nil {
		if errors.Is(err, flow.ErrDealerOTDRequired) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.persist(sess)
	s.broadcast(sess.ID(), "recommendation", rec)
	writeJSON(w, http.StatusOK, rec)
}

type updateRequest struct {
	Amount money.Amount `json:"amount"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	trend, report, err := sess.UpdateOTD(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.persist(sess)
	payload := map[string]interface{}{
		"trend":      trend,
		"confidence": report,
		"step":       int(sess.Step()),
	}
	s.broadcast(sess.ID(), "update", payload)
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Reset()
	if s.sessions != nil {
		if err := s.sessions.DeleteSession(sess.ID()); err != nil {
			s.logger.LogError(err)
		}
	}
	s.broadcast(sess.ID(), "reset", nil)
	writeJSON(w, http.StatusOK, map[string]int{"step": int(sess.Step())})
}
