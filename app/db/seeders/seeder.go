package seeders

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Rakhulsr/kidstore/app/db/fakers"
	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Options struct {
	AdminEmail    string
	AdminPassword string
	Products      int
	Customers     int
	Seed          int64
}

type categorySeed struct {
	name     string
	children []string
}

var demoCategories = []categorySeed{
	{name: "Toys", children: []string{"Soft Toys", "Building Blocks", "Puzzles"}},
	{name: "Clothing", children: []string{"Baby Girl", "Baby Boy", "Nightwear"}},
	{name: "Feeding", children: []string{"Bottles", "Bibs"}},
	{name: "Books"},
}

type Seeder struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewSeeder(db *gorm.DB, log *logrus.Entry) *Seeder {
	return &Seeder{db: db, log: log}
}

// DBSeed creates the admin account and, on an empty catalog, demo
// categories, products, customers and home sections. Running it again only
// makes sure the admin exists.
func (s *Seeder) DBSeed(ctx context.Context, opts Options) error {
	if err := s.seedAdmin(ctx, opts.AdminEmail, opts.AdminPassword); err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.log.Infof("catalog already has %d products, skipping demo data", count)
		return nil
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	leafIDs, err := s.seedCategories(ctx)
	if err != nil {
		return err
	}
	products, err := s.seedProducts(ctx, rng, leafIDs, opts.Products)
	if err != nil {
		return err
	}
	if err := s.seedCustomers(ctx, opts.Customers); err != nil {
		return err
	}
	return s.seedHomeSections(ctx, products)
}

func (s *Seeder) seedAdmin(ctx context.Context, email, password string) error {
	users := repositories.NewUserRepository(s.db)
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Role != models.RoleAdmin {
			return s.db.WithContext(ctx).Model(existing).Update("role", models.RoleAdmin).Error
		}
		return nil
	}

	admin := &models.User{Name: "Store Admin", Email: email, Role: models.RoleAdmin}
	if err := users.Create(ctx, admin, password); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.Infof("admin %s created", email)
	return nil
}

func (s *Seeder) seedCategories(ctx context.Context) ([]string, error) {
	categories := repositories.NewCategoryRepository(s.db)
	var leafIDs []string

	for i, seed := range demoCategories {
		parent := &models.Category{
			Name:         seed.name,
			Slug:         slug.Make(seed.name),
			IsActive:     true,
			DisplayOrder: i,
		}
		if err := categories.Create(ctx, parent); err != nil {
			return nil, fmt.Errorf("create category %s: %w", seed.name, err)
		}
		if len(seed.children) == 0 {
			leafIDs = append(leafIDs, parent.ID)
			continue
		}
		for j, name := range seed.children {
			child := &models.Category{
				Name:         name,
				Slug:         slug.Make(name),
				ParentID:     &parent.ID,
				IsActive:     true,
				DisplayOrder: j,
			}
			if err := categories.Create(ctx, child); err != nil {
				return nil, fmt.Errorf("create category %s: %w", name, err)
			}
			leafIDs = append(leafIDs, child.ID)
		}
	}
	return leafIDs, nil
}

func (s *Seeder) seedProducts(ctx context.Context, rng *rand.Rand, categoryIDs []string, n int) ([]*models.Product, error) {
	products := repositories.NewProductRepository(s.db)
	created := make([]*models.Product, 0, n)

	for i := 0; i < n; i++ {
		product := fakers.ProductFaker(rng)
		categoryID := categoryIDs[rng.Intn(len(categoryIDs))]
		if err := products.Create(ctx, product, []string{categoryID}); err != nil {
			return nil, fmt.Errorf("create product %s: %w", product.Name, err)
		}
		created = append(created, product)
	}
	s.log.Infof("%d demo products created", len(created))
	return created, nil
}

func (s *Seeder) seedCustomers(ctx context.Context, n int) error {
	users := repositories.NewUserRepository(s.db)
	for i := 0; i < n; i++ {
		user, password := fakers.UserFaker()
		if err := users.Create(ctx, user, password); err != nil {
			if repositories.IsDuplicateKey(err) {
				continue
			}
			return fmt.Errorf("create customer: %w", err)
		}
	}
	return nil
}

func (s *Seeder) seedHomeSections(ctx context.Context, products []*models.Product) error {
	sections := repositories.NewHomeSectionRepository(s.db)

	banner := &models.HomeSection{
		Title:    "Festive Sale",
		Subtitle: "Up to 40% off on toys",
		Layout:   models.LayoutFullWidth,
		IsActive: true,
		Items: []models.HomeSectionItem{
			{ImageURL: "/static/images/banners/festive.jpg", Title: "Festive Sale", DiscountText: "Up to 40% off", Link: "/products?category=toys"},
		},
	}
	if err := sections.Create(ctx, banner); err != nil {
		return fmt.Errorf("create home section: %w", err)
	}

	featured := &models.HomeSection{
		Title:        "New Arrivals",
		Layout:       models.LayoutCarousel,
		DisplayOrder: 1,
		IsActive:     true,
	}
	for i, p := range products {
		if i == 8 {
			break
		}
		featured.Items = append(featured.Items, models.HomeSectionItem{
			ImageURL:     p.PrimaryImage(),
			Title:        p.Name,
			Badge:        "NEW",
			Link:         "/products/" + p.Slug,
			DisplayOrder: i,
		})
	}
	if err := sections.Create(ctx, featured); err != nil {
		return fmt.Errorf("create home section: %w", err)
	}
	return nil
}
