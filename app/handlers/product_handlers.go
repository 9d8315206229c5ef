package handlers

import (
	"net/http"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/services"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

const productsPerPage = 12

type ProductHandler struct {
	render  *render.Render
	catalog *services.CatalogService
	log     *logrus.Entry
}

func NewProductHandler(render *render.Render, catalog *services.CatalogService, log *logrus.Entry) *ProductHandler {
	return &ProductHandler{render: render, catalog: catalog, log: log}
}

// Products lists active products, optionally filtered by ?q= and ?category=.
func (h *ProductHandler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.catalog.ListProducts(r.Context(), services.ProductQuery{
		Query:        q.Get("q"),
		CategorySlug: q.Get("category"),
		Page: repositories.Page{
			Page:  helpers.QueryInt(r, "page", 1),
			Limit: helpers.QueryInt(r, "limit", productsPerPage),
		},
	})
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, page)
}

func (h *ProductHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	tree, err := h.catalog.CategoryTree(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, tree)
}

func (h *ProductHandler) HomeSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.catalog.HomeSections(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, sections)
}

// Home renders the storefront landing page from the active home sections.
func (h *ProductHandler) Home(w http.ResponseWriter, r *http.Request) {
	sections, err := h.catalog.HomeSections(r.Context())
	if err != nil {
		h.log.Errorf("Home: failed to load sections: %v", err)
		sections = nil
	}
	categories, err := h.catalog.CategoryTree(r.Context())
	if err != nil {
		h.log.Errorf("Home: failed to load categories: %v", err)
	}

	_ = h.render.HTML(w, http.StatusOK, "home", helpers.GetBaseData(r, "Kidstore", map[string]interface{}{
		"Sections":   sections,
		"Categories": categories,
	}))
}
