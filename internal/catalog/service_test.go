package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type fakeStore struct {
	uploads map[string]string
	deleted []string
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: map[string]string{}}
}

func (f *fakeStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if f.failAll {
		return "", errors.New("store unavailable")
	}
	f.uploads[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.failAll {
		return errors.New("store unavailable")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeIndex struct {
	indexed []uint
	removed []uint
	failAll bool
}

func (f *fakeIndex) IndexProduct(ctx context.Context, p *models.Product) error {
	if f.failAll {
		return errors.New("index unavailable")
	}
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) DeleteProduct(ctx context.Context, id uint) error {
	if f.failAll {
		return errors.New("index unavailable")
	}
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	return 0, nil, nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeIndex) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	store := newFakeStore()
	index := &fakeIndex{}
	svc := &Service{Repo: &GormRepo{DB: db}, Store: store, Index: index}
	return svc, store, index
}

func testImage() *Image {
	return &Image{
		Filename:    "mug.png",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	}
}

func TestCreateProduct(t *testing.T) {
	svc, store, index := newTestService(t)

	prod, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:        "mug",
		Description: "a mug",
		Category:    "kitchen",
		Price:       9.99,
		Stock:       5,
	}, testImage())
	require.NoError(t, err)
	require.NotZero(t, prod.ID)
	require.Contains(t, prod.ImageURL, "https://cdn.example.com/products/")
	require.Len(t, store.uploads, 1)
	require.Equal(t, []uint{prod.ID}, index.indexed)
}

func TestCreateProductRequiresImage(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:        "mug",
		Description: "a mug",
		Category:    "kitchen",
		Price:       9.99,
	}, nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "mug",
		Price: 9.99,
	}, testImage())
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		Name:        "mug",
		Description: "a mug",
		Category:    "kitchen",
		Price:       -1,
	}, testImage())
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateProductUploadFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.failAll = true

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:        "mug",
		Description: "a mug",
		Category:    "kitchen",
		Price:       9.99,
	}, testImage())
	require.Error(t, err)

	total, _, listErr := svc.GetProducts(context.Background(), 0, 10)
	require.NoError(t, listErr)
	require.Zero(t, total)
}

func TestPatchProduct(t *testing.T) {
	svc, _, index := newTestService(t)

	prod, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:        "mug",
		Description: "a mug",
		Category:    "kitchen",
		Price:       9.99,
	}, testImage())
	require.NoError(t, err)

	newPrice := 12.5
	newName := "big mug"
	patched, err := svc.PatchProduct(context.Background(), PatchProductInput{
		Name:  &newName,
		Price: &newPrice,
	}, prod.ID)
	require.NoError(t, err)
	require.Equal(t, "big mug", patched.Name)
	require.Equal(t, 12.5, patched.Price)
	require.Equal(t, "a mug", patched.Description)
	require.Len(t, index.indexed, 2)
}

func TestPatchProductNegativePrice(t *testing.T) {
	svc, _, _ := newTestService(t)

	bad := -3.0
	_, err := svc.PatchProduct(context.Background(), PatchProductInput{Price: &bad}, 1)
	require.ErrorIs(t, err, ErrValidation)
}

func TestPatchProductNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	name := "ghost"
	_, err := svc.PatchProduct(context.Background(), PatchProductInput{Name: &name}, 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteProduct(t *testing.T) {
	svc, store, index := newTestService(t)

	prod, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:        "mug",
		Description: "a mug",
		Category:    "kitchen",
		Price:       9.99,
	}, testImage())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), prod.ID))
	require.Equal(t, []string{prod.ImageKey}, store.deleted)
	require.Equal(t, []uint{prod.ID}, index.removed)

	_, err = svc.GetProduct(context.Background(), prod.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteProductNotFound(t *testing.T) {
	svc, store, _ := newTestService(t)

	err := svc.DeleteProduct(context.Background(), 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.Empty(t, store.deleted)
}

func TestDeleteProductToleratesCleanupFailures(t *testing.T) {
	svc, store, index := newTestService(t)

	prod, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:        "mug",
		Description: "a mug",
		Category:    "kitchen",
		Price:       9.99,
	}, testImage())
	require.NoError(t, err)

	store.failAll = true
	index.failAll = true
	require.NoError(t, svc.DeleteProduct(context.Background(), prod.ID))
}

func TestGetProductsNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.CreateProduct(context.Background(), CreateProductInput{
			Name:        name,
			Description: "d",
			Category:    "c",
			Price:       1,
		}, testImage())
		require.NoError(t, err)
	}

	total, products, err := svc.GetProducts(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, products, 2)
}
