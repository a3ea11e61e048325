package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/storage"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
)

type Service struct {
	Repo  *GormRepo
	Store storage.ObjectStore
	Index search.ProductIndex
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       uint
}

type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type PatchProductInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *uint    `json:"stock"`
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *Service) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, offset, limit)
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput, img *Image) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	if in.Name == "" || in.Description == "" || in.Category == "" {
		return nil, fmt.Errorf("%w: name, description and category required", ErrValidation)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: product image required", ErrValidation)
	}

	key := fmt.Sprintf("products/%s%s", uuid.NewString(), filepath.Ext(img.Filename))
	url, err := s.Store.Upload(ctx, key, img.ContentType, img.Body)
	if err != nil {
		l.Error("create_product_error", "reason", "image upload failed", "error", err)
		return nil, err
	}

	prod := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
		ImageURL:    url,
		ImageKey:    key,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.reindex(ctx, prod)
	return prod, nil
}

func (s *Service) PatchProduct(ctx context.Context, in PatchProductInput, id uint) (*models.Product, error) {
	if in.Price != nil && *in.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}

	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		prod.Name = *in.Name
	}
	if in.Description != nil {
		prod.Description = *in.Description
	}
	if in.Price != nil {
		prod.Price = *in.Price
	}
	if in.Category != nil {
		prod.Category = *in.Category
	}
	if in.Stock != nil {
		prod.Stock = *in.Stock
	}

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.reindex(ctx, prod)
	return prod, nil
}

// DeleteProduct removes the record; losing the stored image or the search
// document is tolerated and only logged.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product")

	prod, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}

	if prod.ImageKey != "" {
		if err := s.Store.Delete(ctx, prod.ImageKey); err != nil {
			l.Warn("image delete failed", "product_id", id, "key", prod.ImageKey, "error", err)
		}
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			l.Warn("index delete failed", "product_id", id, "error", err)
		}
	}
	return nil
}

func (s *Service) SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	if s.Index == nil {
		return 0, nil, errors.New("search index not configured")
	}
	return s.Index.Search(ctx, query, from, size)
}

func (s *Service) reindex(ctx context.Context, prod *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, prod); err != nil {
		logging.FromContext(ctx).Warn("product index failed", "product_id", prod.ID, "error", err)
	}
}
