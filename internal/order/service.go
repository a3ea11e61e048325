package order

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrValidation = errors.New("validation")        // 400
	ErrNotFound   = errors.New("not found")         // 404
	ErrConflict   = errors.New("already processed") // 409
)

type Service struct {
	Repo *GormRepo
}

type ItemInput struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  uint    `json:"quantity"`
}

type ShippingInput struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type CreateInput struct {
	Items         []ItemInput   `json:"items"`
	Shipping      ShippingInput `json:"shipping"`
	PaymentMethod string        `json:"payment_method"`
}

// Create snapshots the supplied line items into an immutable order. Unit
// prices come from the caller and are not re-fetched from the catalog; the
// total is computed once here and stored.
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}
	if in.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment_method required", ErrValidation)
	}
	sh := in.Shipping
	if sh.FirstName == "" || sh.LastName == "" || sh.Email == "" || sh.Address == "" || sh.City == "" || sh.Country == "" {
		return nil, fmt.Errorf("%w: incomplete shipping address", ErrValidation)
	}

	var total float64
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID == 0 {
			return nil, fmt.Errorf("%w: product_id required", ErrValidation)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
		}
		if it.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: unit price must be >= 0", ErrValidation)
		}
		total += float64(it.Quantity) * it.UnitPrice
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	order := &models.Order{
		UserID:        userID,
		Items:         items,
		FirstName:     sh.FirstName,
		LastName:      sh.LastName,
		Email:         sh.Email,
		Phone:         sh.Phone,
		Address:       sh.Address,
		City:          sh.City,
		PostalCode:    sh.PostalCode,
		Country:       sh.Country,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.OrderStatusNew,
		TotalAmount:   total,
	}

	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}
	return order, nil
}

func (s *Service) GetByTransaction(ctx context.Context, txID string) (*models.Order, error) {
	order, err := s.Repo.GetByTransactionID(ctx, txID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, txID)
		}
		return nil, err
	}
	return order, nil
}

func (s *Service) ListMine(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListByUser(ctx, userID, offset, limit)
}

func (s *Service) ListAll(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListAll(ctx, offset, limit)
}

// MarkPaid transitions pending -> paid. A paid or failed order is terminal
// and reports a conflict; the record stays untouched.
func (s *Service) MarkPaid(ctx context.Context, id uint, txID string) (*models.Order, error) {
	return s.markPayment(ctx, id, models.PaymentStatusPaid, txID)
}

// MarkFailed transitions pending -> failed on processor rejection.
func (s *Service) MarkFailed(ctx context.Context, id uint, txID string) (*models.Order, error) {
	return s.markPayment(ctx, id, models.PaymentStatusFailed, txID)
}

func (s *Service) markPayment(ctx context.Context, id uint, status, txID string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.mark_payment", "order_id", id)

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, fmt.Errorf("%w: payment status is %s", ErrConflict, order.PaymentStatus)
	}

	affected, err := s.Repo.MarkPayment(ctx, id, status, txID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// lost the race against another transition
		return nil, fmt.Errorf("%w: payment already settled", ErrConflict)
	}

	l.Info("payment status changed", "from", models.PaymentStatusPending, "to", status, "transaction_id", txID)
	return s.Get(ctx, id)
}

// AttachTransaction records the processor reference on a pending order so a
// later callback can find it.
func (s *Service) AttachTransaction(ctx context.Context, id uint, txID, method string) error {
	affected, err := s.Repo.SetTransaction(ctx, id, txID, method)
	if err != nil {
		return err
	}
	if affected == 0 {
		order, getErr := s.Get(ctx, id)
		if getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: payment status is %s", ErrConflict, order.PaymentStatus)
	}
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uint, status string) error {
	switch status {
	case models.OrderStatusNew, models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	affected, err := s.Repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	affected, err := s.Repo.DeleteOrder(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return nil
}
