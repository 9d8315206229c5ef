package admin

import (
	"net/http"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
)

func (h *AdminHandler) GetDashboardData(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboard.Dashboard(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, dashboard)
}

// GetDashboard renders the same figures as GetDashboardData as a page.
func (h *AdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboard.Dashboard(r.Context())
	if err != nil {
		h.log.Errorf("GetDashboard: failed to build dashboard: %v", err)
		h.render.HTML(w, apperr.KindOf(err).Status(), "error", helpers.GetBaseData(r, "Dashboard", map[string]interface{}{
			"Message": apperr.PublicMessage(err),
		}))
		return
	}

	h.render.HTML(w, http.StatusOK, "admin/dashboard", helpers.GetBaseData(r, "Admin Dashboard", map[string]interface{}{
		"Dashboard": dashboard,
	}))
}
