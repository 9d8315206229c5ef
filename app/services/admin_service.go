package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/gosimple/slug"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Slug         string  `json:"slug" validate:"omitempty,max=100"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"imageUrl" validate:"omitempty,url"`
	ParentID     *string `json:"parentId"`
	IsActive     *bool   `json:"isActive"`
	DisplayOrder int     `json:"displayOrder" validate:"min=0"`
}

type ImageInput struct {
	URL      string `json:"url" validate:"required,url"`
	AltText  string `json:"altText"`
	Position int    `json:"position" validate:"min=0"`
}

type VariantInput struct {
	ID            string           `json:"id"`
	Name          string           `json:"name" validate:"required,max=100"`
	Sku           string           `json:"sku"`
	PriceOverride *decimal.Decimal `json:"priceOverride"`
	Quantity      int              `json:"quantity" validate:"min=0"`
	IsActive      *bool            `json:"isActive"`
}

type ProductInput struct {
	Name           string           `json:"name" validate:"required,max=255"`
	Slug           string           `json:"slug" validate:"omitempty,max=255"`
	Description    string           `json:"description"`
	Sku            string           `json:"sku" validate:"max=100"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	Quantity       int              `json:"quantity" validate:"min=0"`
	IsActive       *bool            `json:"isActive"`
	Images         []ImageInput     `json:"images" validate:"dive"`
	Variants       []VariantInput   `json:"variants" validate:"dive"`
	CategoryIDs    []string         `json:"categoryIds"`
}

type HomeSectionItemInput struct {
	ImageURL     string `json:"imageUrl" validate:"required"`
	Title        string `json:"title" validate:"max=150"`
	Badge        string `json:"badge" validate:"max=50"`
	DiscountText string `json:"discountText" validate:"max=50"`
	Link         string `json:"link"`
	DisplayOrder int    `json:"displayOrder" validate:"min=0"`
}

type HomeSectionInput struct {
	Title        string                 `json:"title" validate:"required,max=150"`
	Subtitle     string                 `json:"subtitle" validate:"max=255"`
	Layout       models.SectionLayout   `json:"layout" validate:"required"`
	DisplayOrder int                    `json:"displayOrder" validate:"min=0"`
	IsActive     *bool                  `json:"isActive"`
	Items        []HomeSectionItemInput `json:"items" validate:"dive"`
}

// AdminService backs the ADMIN-only content endpoints.
type AdminService struct {
	repos Repositories
	log   *logrus.Entry
}

func NewAdminService(repos Repositories, log *logrus.Entry) *AdminService {
	return &AdminService{repos: repos, log: log}
}

func slugFor(explicit, name string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return slug.Make(s)
	}
	return slug.Make(name)
}

func adminError(err error, what string) error {
	if errors.Is(err, repositories.ErrUnknownCategory) {
		return apperr.Validation("categoryIds contains an unknown category")
	}
	if repositories.IsDuplicateKey(err) {
		return apperr.Validation(fmt.Sprintf("%s slug already exists", what))
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(fmt.Sprintf("%s not found", what))
	}
	return persistence(err)
}

func (s *AdminService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repos.Categories.GetAll(ctx, false)
	if err != nil {
		return nil, persistence(err)
	}
	return categories, nil
}

// checkParent rejects a parent that is missing or that sits below id.
func (s *AdminService) checkParent(ctx context.Context, id string, parentID *string) error {
	if parentID == nil || *parentID == "" {
		return nil
	}
	if *parentID == id {
		return apperr.Validation("a category cannot be its own parent")
	}

	all, err := s.repos.Categories.GetAll(ctx, false)
	if err != nil {
		return persistence(err)
	}
	if !lo.ContainsBy(all, func(c models.Category) bool { return c.ID == *parentID }) {
		return apperr.NotFound("parent category not found")
	}
	if id != "" && lo.Contains(DescendantIDs(all, id), *parentID) {
		return apperr.Validation("parent would create a category cycle")
	}
	return nil
}

func (s *AdminService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := s.checkParent(ctx, "", in.ParentID); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:         strings.TrimSpace(in.Name),
		Slug:         slugFor(in.Slug, in.Name),
		Description:  in.Description,
		ImageURL:     in.ImageURL,
		ParentID:     emptyAsNil(in.ParentID),
		IsActive:     lo.FromPtrOr(in.IsActive, true),
		DisplayOrder: in.DisplayOrder,
	}
	if err := s.repos.Categories.Create(ctx, category); err != nil {
		return nil, adminError(err, "category")
	}
	s.log.Infof("category %s created", category.Slug)
	return category, nil
}

func (s *AdminService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	existing, err := s.repos.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, persistence(err)
	}
	if existing == nil {
		return nil, apperr.NotFound("category not found")
	}
	if err := s.checkParent(ctx, id, in.ParentID); err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(in.Name)
	existing.Slug = slugFor(in.Slug, in.Name)
	existing.Description = in.Description
	existing.ImageURL = in.ImageURL
	existing.ParentID = emptyAsNil(in.ParentID)
	existing.IsActive = lo.FromPtrOr(in.IsActive, existing.IsActive)
	existing.DisplayOrder = in.DisplayOrder

	if err := s.repos.Categories.Update(ctx, existing); err != nil {
		return nil, adminError(err, "category")
	}
	return existing, nil
}

func (s *AdminService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repos.Categories.Delete(ctx, id); err != nil {
		return adminError(err, "category")
	}
	s.log.Infof("category %s deleted", id)
	return nil
}

func emptyAsNil(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func productFromInput(in ProductInput) (*models.Product, error) {
	if in.Price.IsNegative() {
		return nil, apperr.Validation("price must not be negative")
	}
	if in.CompareAtPrice != nil && in.CompareAtPrice.IsNegative() {
		return nil, apperr.Validation("compareAtPrice must not be negative")
	}

	product := &models.Product{
		Name:           strings.TrimSpace(in.Name),
		Slug:           slugFor(in.Slug, in.Name),
		Description:    in.Description,
		Sku:            in.Sku,
		Price:          in.Price.Round(2),
		CompareAtPrice: nullDecimal(in.CompareAtPrice),
		Quantity:       in.Quantity,
		IsActive:       lo.FromPtrOr(in.IsActive, true),
	}
	product.Images = lo.Map(in.Images, func(img ImageInput, _ int) models.ProductImage {
		return models.ProductImage{URL: img.URL, AltText: img.AltText, Position: img.Position}
	})
	for _, v := range in.Variants {
		if v.PriceOverride != nil && v.PriceOverride.IsNegative() {
			return nil, apperr.Validation("variant priceOverride must not be negative")
		}
		product.Variants = append(product.Variants, models.ProductVariant{
			ID:            v.ID,
			Name:          v.Name,
			Sku:           v.Sku,
			PriceOverride: nullDecimal(v.PriceOverride),
			Quantity:      v.Quantity,
			IsActive:      lo.FromPtrOr(v.IsActive, true),
		})
	}
	return product, nil
}

func (s *AdminService) ListProducts(ctx context.Context, query string, page repositories.Page) (*ProductPage, error) {
	products, total, err := s.repos.Products.List(ctx, repositories.ProductFilter{Query: query, Page: page})
	if err != nil {
		return nil, persistence(err)
	}
	n := page.Normalize()
	return &ProductPage{Products: products, Total: total, Page: n.Page, Limit: n.Limit}, nil
}

func (s *AdminService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repos.Products.GetByID(ctx, nil, id)
	if err != nil {
		return nil, persistence(err)
	}
	if product == nil {
		return nil, apperr.NotFound("product not found")
	}
	return product, nil
}

func (s *AdminService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	for i := range product.Variants {
		product.Variants[i].ID = ""
	}
	if err := s.repos.Products.Create(ctx, product, in.CategoryIDs); err != nil {
		return nil, adminError(err, "product")
	}
	s.log.Infof("product %s created", product.Slug)
	return s.GetProduct(ctx, product.ID)
}

func (s *AdminService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	product, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	product.ID = id
	if err := s.repos.Products.Update(ctx, product, in.CategoryIDs); err != nil {
		return nil, adminError(err, "product")
	}
	s.log.Infof("product %s updated", product.Slug)
	return s.GetProduct(ctx, id)
}

func (s *AdminService) SetProductActive(ctx context.Context, id string, active bool) error {
	if err := s.repos.Products.SetActive(ctx, id, active); err != nil {
		return adminError(err, "product")
	}
	return nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repos.Products.Delete(ctx, id); err != nil {
		return adminError(err, "product")
	}
	s.log.Infof("product %s deleted", id)
	return nil
}

func sectionFromInput(in HomeSectionInput) (*models.HomeSection, error) {
	if !in.Layout.Valid() {
		return nil, apperr.Validation("layout must be one of GRID, CAROUSEL, TWO_COLUMN, FULL_WIDTH")
	}
	section := &models.HomeSection{
		Title:        strings.TrimSpace(in.Title),
		Subtitle:     in.Subtitle,
		Layout:       in.Layout,
		DisplayOrder: in.DisplayOrder,
		IsActive:     lo.FromPtrOr(in.IsActive, true),
	}
	section.Items = lo.Map(in.Items, func(item HomeSectionItemInput, _ int) models.HomeSectionItem {
		return models.HomeSectionItem{
			ImageURL:     item.ImageURL,
			Title:        item.Title,
			Badge:        item.Badge,
			DiscountText: item.DiscountText,
			Link:         item.Link,
			DisplayOrder: item.DisplayOrder,
		}
	})
	return section, nil
}

func (s *AdminService) ListHomeSections(ctx context.Context) ([]models.HomeSection, error) {
	sections, err := s.repos.HomeSections.List(ctx, false)
	if err != nil {
		return nil, persistence(err)
	}
	return sections, nil
}

func (s *AdminService) CreateHomeSection(ctx context.Context, in HomeSectionInput) (*models.HomeSection, error) {
	section, err := sectionFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.repos.HomeSections.Create(ctx, section); err != nil {
		return nil, persistence(err)
	}
	return section, nil
}

func (s *AdminService) UpdateHomeSection(ctx context.Context, id string, in HomeSectionInput) (*models.HomeSection, error) {
	existing, err := s.repos.HomeSections.GetByID(ctx, id)
	if err != nil {
		return nil, persistence(err)
	}
	if existing == nil {
		return nil, apperr.NotFound("home section not found")
	}

	section, err := sectionFromInput(in)
	if err != nil {
		return nil, err
	}
	section.ID = id
	if err := s.repos.HomeSections.Update(ctx, section); err != nil {
		return nil, persistence(err)
	}
	return s.repos.HomeSections.GetByID(ctx, id)
}

func (s *AdminService) DeleteHomeSection(ctx context.Context, id string) error {
	if err := s.repos.HomeSections.Delete(ctx, id); err != nil {
		return adminError(err, "home section")
	}
	return nil
}
