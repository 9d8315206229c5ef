package services

import (
	"context"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

type ProductQuery struct {
	Query        string
	CategorySlug string
	Page         repositories.Page
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// CatalogService serves the storefront's read-only view of the catalog.
type CatalogService struct {
	repos Repositories
	log   *logrus.Entry
}

func NewCatalogService(repos Repositories, log *logrus.Entry) *CatalogService {
	return &CatalogService{repos: repos, log: log}
}

// BuildCategoryTree nests categories under their parents. Categories whose
// parent is not in the list are dropped, so an inactive parent hides its
// subtree.
func BuildCategoryTree(categories []models.Category) []models.Category {
	byParent := lo.GroupBy(categories, func(c models.Category) string {
		if c.ParentID == nil {
			return ""
		}
		return *c.ParentID
	})

	var build func(parentID string, seen map[string]bool) []models.Category
	build = func(parentID string, seen map[string]bool) []models.Category {
		children := byParent[parentID]
		out := make([]models.Category, 0, len(children))
		for _, c := range children {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			c.Children = build(c.ID, seen)
			out = append(out, c)
		}
		return out
	}
	return build("", map[string]bool{})
}

// DescendantIDs returns rootID and the ids of every category below it.
func DescendantIDs(categories []models.Category, rootID string) []string {
	byParent := lo.GroupBy(lo.Filter(categories, func(c models.Category, _ int) bool { return c.ParentID != nil }),
		func(c models.Category) string { return *c.ParentID })

	ids := []string{rootID}
	seen := map[string]bool{rootID: true}
	for i := 0; i < len(ids); i++ {
		for _, child := range byParent[ids[i]] {
			if !seen[child.ID] {
				seen[child.ID] = true
				ids = append(ids, child.ID)
			}
		}
	}
	return ids
}

func (s *CatalogService) CategoryTree(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repos.Categories.GetAll(ctx, true)
	if err != nil {
		return nil, persistence(err)
	}
	return BuildCategoryTree(categories), nil
}

// ListProducts lists active products. A category filter includes products of
// every subcategory.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	filter := repositories.ProductFilter{Query: q.Query, ActiveOnly: true, Page: q.Page}

	if q.CategorySlug != "" {
		category, err := s.repos.Categories.GetBySlug(ctx, q.CategorySlug)
		if err != nil {
			return nil, persistence(err)
		}
		if category == nil || !category.IsActive {
			return nil, apperr.NotFound("category not found")
		}
		all, err := s.repos.Categories.GetAll(ctx, true)
		if err != nil {
			return nil, persistence(err)
		}
		filter.CategoryIDs = DescendantIDs(all, category.ID)
	}

	products, total, err := s.repos.Products.List(ctx, filter)
	if err != nil {
		return nil, persistence(err)
	}
	if products == nil {
		products = []models.Product{}
	}

	page := q.Page.Normalize()
	return &ProductPage{Products: products, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repos.Products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, persistence(err)
	}
	if product == nil || !product.IsActive {
		return nil, apperr.NotFound("product not found")
	}
	product.Variants = lo.Filter(product.Variants, func(v models.ProductVariant, _ int) bool { return v.IsActive })
	return product, nil
}

func (s *CatalogService) HomeSections(ctx context.Context) ([]models.HomeSection, error) {
	sections, err := s.repos.HomeSections.List(ctx, true)
	if err != nil {
		return nil, persistence(err)
	}
	return sections, nil
}
