package services

import (
	"context"
	"strings"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type AddressInput struct {
	Name      string `json:"name" validate:"required,max=150"`
	Phone     string `json:"phone" validate:"required,max=20"`
	Line1     string `json:"line1" validate:"required,max=255"`
	Line2     string `json:"line2" validate:"max=255"`
	City      string `json:"city" validate:"required,max=100"`
	State     string `json:"state" validate:"required,max=100"`
	Pincode   string `json:"pincode" validate:"required,numeric,len=6"`
	Country   string `json:"country" validate:"max=60"`
	IsDefault bool   `json:"isDefault"`
}

// AccountService covers a customer's own data: identity, addresses and the
// wishlist.
type AccountService struct {
	repos Repositories
	log   *logrus.Entry
}

func NewAccountService(repos Repositories, log *logrus.Entry) *AccountService {
	return &AccountService{repos: repos, log: log}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	existing, err := s.repos.Users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, persistence(err)
	}
	if existing != nil {
		return nil, apperr.Validation("email is already registered")
	}

	user := &models.User{
		Name:  strings.TrimSpace(in.Name),
		Email: in.Email,
		Phone: in.Phone,
		Role:  models.RoleCustomer,
	}
	if err := s.repos.Users.Create(ctx, user, in.Password); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, apperr.Validation("email is already registered")
		}
		return nil, persistence(err)
	}
	s.log.Infof("user %s registered", user.ID)
	return user, nil
}

// Authenticate checks the password against the stored bcrypt hash. Unknown
// emails and wrong passwords give the same error.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, persistence(err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.New(apperr.KindAuthenticationRequired, "invalid email or password")
	}
	return user, nil
}

func (s *AccountService) User(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, persistence(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

func (s *AccountService) Addresses(ctx context.Context, userID string) ([]models.Address, error) {
	addresses, err := s.repos.Addresses.FindAddressesByUserID(ctx, userID)
	if err != nil {
		return nil, persistence(err)
	}
	return addresses, nil
}

func addressFromInput(userID string, in AddressInput) *models.Address {
	return &models.Address{
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Phone:     in.Phone,
		Line1:     in.Line1,
		Line2:     in.Line2,
		City:      in.City,
		State:     in.State,
		Pincode:   in.Pincode,
		Country:   in.Country,
		IsDefault: in.IsDefault,
	}
}

func (s *AccountService) ownedAddress(ctx context.Context, userID, id string) (*models.Address, error) {
	address, err := s.repos.Addresses.FindAddressByID(ctx, nil, id)
	if err != nil {
		return nil, persistence(err)
	}
	if address == nil || address.UserID != userID {
		return nil, apperr.NotFound("address not found")
	}
	return address, nil
}

func (s *AccountService) AddAddress(ctx context.Context, userID string, in AddressInput) (*models.Address, error) {
	address := addressFromInput(userID, in)
	if err := s.repos.Addresses.CreateAddress(ctx, address); err != nil {
		return nil, persistence(err)
	}
	return address, nil
}

func (s *AccountService) UpdateAddress(ctx context.Context, userID, id string, in AddressInput) (*models.Address, error) {
	existing, err := s.ownedAddress(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	address := addressFromInput(userID, in)
	address.ID = existing.ID
	if address.Country == "" {
		address.Country = existing.Country
	}
	if err := s.repos.Addresses.UpdateAddress(ctx, address); err != nil {
		return nil, persistence(err)
	}
	return s.ownedAddress(ctx, userID, id)
}

func (s *AccountService) DeleteAddress(ctx context.Context, userID, id string) error {
	if _, err := s.ownedAddress(ctx, userID, id); err != nil {
		return err
	}
	return persistence(s.repos.Addresses.DeleteAddress(ctx, userID, id))
}

func (s *AccountService) SetDefaultAddress(ctx context.Context, userID, id string) error {
	if _, err := s.ownedAddress(ctx, userID, id); err != nil {
		return err
	}
	return persistence(s.repos.Addresses.SetDefaultAddress(ctx, userID, id))
}

func (s *AccountService) Wishlist(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	items, err := s.repos.Wishlist.List(ctx, userID)
	if err != nil {
		return nil, persistence(err)
	}
	return items, nil
}

func (s *AccountService) AddToWishlist(ctx context.Context, userID, productID string) error {
	product, err := s.repos.Products.GetByID(ctx, nil, productID)
	if err != nil {
		return persistence(err)
	}
	if product == nil || !product.IsActive {
		return apperr.NotFound("product not found")
	}
	return persistence(s.repos.Wishlist.Add(ctx, userID, productID))
}

func (s *AccountService) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	return persistence(s.repos.Wishlist.Remove(ctx, userID, productID))
}
