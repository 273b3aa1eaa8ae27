package api

import (
	"context"
	"net/http"

	"ticketly/internal/analytics"
	"ticketly/internal/utils"
)

type DashboardService interface {
	GetDashboard(ctx context.Context) (*analytics.Dashboard, error)
}

type Handler struct {
	Analytics DashboardService
}

func NewHandler(service DashboardService) *Handler {
	return &Handler{Analytics: service}
}

// GetDashboard serves the admin overview. Mounted behind RequireAdmin.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Analytics.GetDashboard(r.Context())
	if err != nil {
		utils.RenderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("dashboard", dashboard))
}
