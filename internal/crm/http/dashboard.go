package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
)

type DashboardHandler struct {
	DashboardService *service.DashboardService
}

// HandleGet handles GET /v1/dashboard
//
//	@Summary		Dashboard metrics
//	@Description	Lead totals, won and negotiation values, conversion rate, funnel per stage and lead sources.
//	@Tags			Dashboard
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	domain.Dashboard
//	@Router			/v1/dashboard [get].
func (h *DashboardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.DashboardService.Get(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}
