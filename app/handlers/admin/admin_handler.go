package admin

import (
	"github.com/Rakhulsr/kidstore/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

// AdminHandler serves the ADMIN-only content and reporting endpoints. Route
// registration puts every method behind RequireAdmin.
type AdminHandler struct {
	render    *render.Render
	admin     *services.AdminService
	dashboard *services.DashboardService
	validate  *validator.Validate
	log       *logrus.Entry
}

func NewAdminHandler(
	render *render.Render,
	admin *services.AdminService,
	dashboard *services.DashboardService,
	validate *validator.Validate,
	log *logrus.Entry,
) *AdminHandler {
	return &AdminHandler{
		render:    render,
		admin:     admin,
		dashboard: dashboard,
		validate:  validate,
		log:       log,
	}
}
