package services

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/Rakhulsr/kidstore/app/utils/calc"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CartLine struct {
	ItemID         string              `json:"itemId"`
	ProductID      string              `json:"productId"`
	VariantID      string              `json:"variantId,omitempty"`
	Name           string              `json:"name"`
	Slug           string              `json:"slug"`
	Image          string              `json:"image"`
	VariantName    string              `json:"variantName,omitempty"`
	UnitPrice      decimal.Decimal     `json:"unitPrice"`
	CompareAtPrice decimal.NullDecimal `json:"compareAtPrice"`
	DiscountPct    decimal.Decimal     `json:"discountPercent"`
	Quantity       int                 `json:"quantity"`
	LineTotal      decimal.Decimal     `json:"lineTotal"`
	Available      bool                `json:"available"`
	Stock          int                 `json:"stock"`
}

type CartView struct {
	CartID           string          `json:"cartId"`
	Lines            []CartLine      `json:"lines"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ItemCount        int             `json:"itemCount"`
	UnavailableCount int             `json:"unavailableCount"`
}

// Orderable returns the lines that count towards the subtotal.
func (v *CartView) Orderable() []CartLine {
	return lo.Filter(v.Lines, func(l CartLine, _ int) bool { return l.Available })
}

// resolveLine prices item against product as it is now. A missing or
// inactive variant makes the line unavailable.
func resolveLine(item models.CartItem, product *models.Product) CartLine {
	line := CartLine{
		ItemID:    item.ID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
	}
	if product == nil {
		return line
	}

	line.Name = product.Name
	line.Slug = product.Slug
	line.Image = product.PrimaryImage()
	line.UnitPrice = product.Price
	line.CompareAtPrice = product.CompareAtPrice
	line.Stock = product.Quantity
	line.Available = product.IsActive

	if item.VariantID != "" {
		variant, ok := lo.Find(product.Variants, func(v models.ProductVariant) bool { return v.ID == item.VariantID })
		if !ok {
			line.Available = false
		} else {
			line.VariantName = variant.Name
			line.UnitPrice = variant.UnitPrice(product.Price)
			line.Stock = variant.Quantity
			line.Available = line.Available && variant.IsActive
		}
	}

	if line.CompareAtPrice.Valid {
		line.DiscountPct = calc.DiscountPercent(line.UnitPrice, line.CompareAtPrice.Decimal)
	}
	line.LineTotal = calc.LineTotal(line.UnitPrice, line.Quantity)
	return line
}

func buildCartView(cartID string, items []models.CartItem) *CartView {
	lines := lo.Map(items, func(item models.CartItem, _ int) CartLine {
		return resolveLine(item, item.Product)
	})

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Available {
			subtotal = subtotal.Add(line.LineTotal)
		}
	}

	return &CartView{
		CartID:           cartID,
		Lines:            lines,
		Subtotal:         subtotal,
		ItemCount:        lo.SumBy(lines, func(l CartLine) int { return l.Quantity }),
		UnavailableCount: lo.CountBy(lines, func(l CartLine) bool { return !l.Available }),
	}
}

type CartService struct {
	repos Repositories
	log   *logrus.Entry
}

func NewCartService(repos Repositories, log *logrus.Entry) *CartService {
	return &CartService{repos: repos, log: log}
}

func (s *CartService) GetUserCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.repos.Carts.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, persistence(err)
	}

	items, err := s.repos.CartItems.ListByCartID(ctx, nil, cart.ID)
	if err != nil {
		return nil, persistence(err)
	}
	return buildCartView(cart.ID, items), nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID, variantID string, qty int) (*CartView, error) {
	if qty < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}

	product, err := s.repos.Products.GetByID(ctx, nil, productID)
	if err != nil {
		return nil, persistence(err)
	}
	if product == nil {
		return nil, apperr.NotFound("product not found")
	}
	if !product.IsActive {
		return nil, apperr.Validation("product is not available")
	}

	if variantID != "" {
		variant, ok := lo.Find(product.Variants, func(v models.ProductVariant) bool { return v.ID == variantID })
		if !ok {
			return nil, apperr.NotFound("variant not found")
		}
		if !variant.IsActive {
			return nil, apperr.Validation("variant is not available")
		}
	}

	cart, err := s.repos.Carts.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, persistence(err)
	}

	if err := s.repos.CartItems.Increment(ctx, cart.ID, productID, variantID, qty); err != nil {
		return nil, persistence(err)
	}

	s.log.Debugf("user %s added %d x %s to cart %s", userID, qty, productID, cart.ID)
	return s.GetUserCart(ctx, userID)
}

// ownedItem loads itemID and checks that it sits in userID's cart.
func (s *CartService) ownedItem(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	item, err := s.repos.CartItems.GetByID(ctx, itemID)
	if err != nil {
		return nil, persistence(err)
	}
	if item == nil {
		return nil, apperr.NotFound("cart item not found")
	}

	cart, err := s.repos.Carts.FindByUserID(ctx, nil, userID)
	if err != nil {
		return nil, persistence(err)
	}
	if cart == nil || cart.ID != item.CartID {
		return nil, apperr.Forbidden("cart item belongs to another user")
	}
	return item, nil
}

func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, qty int) (*CartView, error) {
	if qty < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.CartItems.UpdateQuantity(ctx, item.ID, qty); err != nil {
		return nil, persistence(fmt.Errorf("failed to update cart item %s: %w", item.ID, err))
	}
	return s.GetUserCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*CartView, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.CartItems.Delete(ctx, item.ID); err != nil {
		return nil, persistence(fmt.Errorf("failed to remove cart item %s: %w", item.ID, err))
	}
	return s.GetUserCart(ctx, userID)
}

func (s *CartService) ItemCount(ctx context.Context, userID string) (int, error) {
	cart, err := s.repos.Carts.FindByUserID(ctx, nil, userID)
	if err != nil || cart == nil {
		return 0, persistence(err)
	}
	return s.repos.Carts.GetCartItemCount(ctx, cart.ID)
}
