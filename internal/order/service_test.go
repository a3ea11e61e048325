package order

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Cart{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{}))
	return &Service{Repo: &GormRepo{DB: db}}
}

func validInput() CreateInput {
	return CreateInput{
		Items: []ItemInput{
			{ProductID: 1, Name: "mug", UnitPrice: 10, Quantity: 1},
			{ProductID: 2, Name: "pen", UnitPrice: 2.5, Quantity: 4},
		},
		Shipping: ShippingInput{
			FirstName: "Alice",
			LastName:  "Smith",
			Email:     "alice@example.com",
			Address:   "1 Main St",
			City:      "Springfield",
			Country:   "US",
		},
		PaymentMethod: "stripe",
	}
}

func TestCreateOrder(t *testing.T) {
	svc := newTestService(t)

	order, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)
	require.Equal(t, uint(7), order.UserID)
	require.Equal(t, float64(20), order.TotalAmount)
	require.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	require.Equal(t, models.OrderStatusNew, order.Status)
	require.Len(t, order.Items, 2)
}

func TestCreateOrderClearsCart(t *testing.T) {
	svc := newTestService(t)
	db := svc.Repo.DB

	cart := &models.Cart{
		UserID: 7,
		Items: []models.CartItem{
			{ProductID: 1, Name: "mug", UnitPrice: 10, Quantity: 2},
		},
	}
	require.NoError(t, db.Save(cart).Error)
	require.NotZero(t, cart.Total)

	_, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)

	var stored models.Cart
	require.NoError(t, db.Preload("Items").First(&stored, cart.ID).Error)
	require.Empty(t, stored.Items)
	require.Zero(t, stored.Total)
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newTestService(t)

	cases := map[string]func(*CreateInput){
		"no items":            func(in *CreateInput) { in.Items = nil },
		"no payment method":   func(in *CreateInput) { in.PaymentMethod = "" },
		"missing address":     func(in *CreateInput) { in.Shipping.Address = "" },
		"zero quantity":       func(in *CreateInput) { in.Items[0].Quantity = 0 },
		"negative unit price": func(in *CreateInput) { in.Items[0].UnitPrice = -1 },
		"zero product id":     func(in *CreateInput) { in.Items[0].ProductID = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(context.Background(), 7, in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestMarkPaid(t *testing.T) {
	svc := newTestService(t)

	order, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), order.ID, "tx_123")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	require.Equal(t, "tx_123", paid.TransactionID)
}

func TestMarkPaidIsTerminal(t *testing.T) {
	svc := newTestService(t)

	order, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)

	_, err = svc.MarkPaid(context.Background(), order.ID, "tx_123")
	require.NoError(t, err)

	_, err = svc.MarkPaid(context.Background(), order.ID, "tx_456")
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.MarkFailed(context.Background(), order.ID, "tx_456")
	require.ErrorIs(t, err, ErrConflict)

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	require.Equal(t, "tx_123", stored.TransactionID)
}

func TestMarkFailed(t *testing.T) {
	svc := newTestService(t)

	order, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)

	failed, err := svc.MarkFailed(context.Background(), order.ID, "tx_bad")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusFailed, failed.PaymentStatus)

	_, err = svc.MarkPaid(context.Background(), order.ID, "tx_retry")
	require.ErrorIs(t, err, ErrConflict)
}

func TestMarkPaidUnknownOrder(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.MarkPaid(context.Background(), 999, "tx_123")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAttachTransaction(t *testing.T) {
	svc := newTestService(t)

	order, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.AttachTransaction(context.Background(), order.ID, "cs_test_1", "stripe"))

	found, err := svc.GetByTransaction(context.Background(), "cs_test_1")
	require.NoError(t, err)
	require.Equal(t, order.ID, found.ID)
	require.Equal(t, "stripe", found.PaymentMethod)
}

func TestAttachTransactionAfterSettlement(t *testing.T) {
	svc := newTestService(t)

	order, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)

	_, err = svc.MarkPaid(context.Background(), order.ID, "tx_123")
	require.NoError(t, err)

	err = svc.AttachTransaction(context.Background(), order.ID, "cs_test_2", "stripe")
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateStatus(t *testing.T) {
	svc := newTestService(t)

	order, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusShipped))

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusShipped, stored.Status)
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	svc := newTestService(t)

	order, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)

	err = svc.UpdateStatus(context.Background(), order.ID, "teleported")
	require.ErrorIs(t, err, ErrValidation)
}

func TestListMine(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 8, validInput())
	require.NoError(t, err)

	total, orders, err := svc.ListMine(context.Background(), 7, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, orders, 2)
	for _, o := range orders {
		require.Equal(t, uint(7), o.UserID)
	}
}

func TestDeleteOrder(t *testing.T) {
	svc := newTestService(t)

	order, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), order.ID))
	_, err = svc.Get(context.Background(), order.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUnknownOrder(t *testing.T) {
	svc := newTestService(t)

	err := svc.Delete(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}
