package handler

import (
	"net/http"

	"github.com/Lutefd/tasas-board/internal/commons"
)

const (
	refresherDisabled = "disabled"
	refresherIdle     = "idle"
	refresherRunning  = "running"
)

type readinessResponse struct {
	Status    string `json:"status"`
	Refresher string `json:"refresher"`
}

// Readiness reports liveness plus what the in-process refresher is doing,
// so a stuck cycle shows up as a refresher that never returns to idle.
func (h *DashboardHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	state := refresherDisabled
	if h.refresher != nil {
		state = refresherIdle
		if h.refresher.IsRunning() {
			state = refresherRunning
		}
	}
	commons.RespondWithJSON(w, http.StatusOK, readinessResponse{Status: "ok", Refresher: state})
}
