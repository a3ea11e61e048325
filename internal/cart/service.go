package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
)

// ProductGetter is satisfied by the catalog repository.
type ProductGetter interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
}

type Service struct {
	Repo     *GormRepo
	Products ProductGetter
}

type ItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  uint `json:"quantity"`
}

// Get never fails on a missing cart: a user without one sees the empty shape.
func (s *Service) Get(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.Repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// UpsertItem replaces the quantity when the product is already in the cart.
func (s *Service) UpsertItem(ctx context.Context, userID uint, in ItemInput) (*models.Cart, error) {
	return s.upsert(ctx, userID, []ItemInput{in})
}

// BatchUpsert applies several line changes in one persist instead of a
// request per line.
func (s *Service) BatchUpsert(ctx context.Context, userID uint, items []ItemInput) (*models.Cart, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}
	return s.upsert(ctx, userID, items)
}

func (s *Service) upsert(ctx context.Context, userID uint, items []ItemInput) (*models.Cart, error) {
	products := make(map[uint]*models.Product, len(items))
	for _, in := range items {
		if in.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
		}
		prod, err := s.Products.GetProduct(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrNotFound, in.ProductID)
			}
			return nil, err
		}
		products[in.ProductID] = prod
	}

	cart, err := s.Repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, in := range items {
		prod := products[in.ProductID]
		found := false
		for idx := range cart.Items {
			if cart.Items[idx].ProductID == in.ProductID {
				cart.Items[idx].Quantity = in.Quantity
				found = true
				break
			}
		}
		if !found {
			cart.Items = append(cart.Items, models.CartItem{
				CartID:    cart.ID,
				ProductID: prod.ID,
				Name:      prod.Name,
				UnitPrice: prod.Price,
				Quantity:  in.Quantity,
				ImageURL:  prod.ImageURL,
			})
		}
	}

	if err := s.Repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops a line from the cart. Removing a product that is not in
// the cart is a no-op; a missing cart or unknown product is not found.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uint) (*models.Cart, error) {
	if _, err := s.Products.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}

	cart, err := s.Repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart", ErrNotFound)
		}
		return nil, err
	}

	remaining := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			remaining = append(remaining, item)
		}
	}
	if len(remaining) == len(cart.Items) {
		return cart, nil
	}

	if err := s.Repo.DeleteItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}
	cart.Items = remaining
	if err := s.Repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) Clear(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.Repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}
		return nil, err
	}

	if err := s.Repo.ClearItems(ctx, cart.ID); err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	cart.Total = 0
	return cart, nil
}
