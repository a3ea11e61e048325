package contact

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
	require.NoError(t, db.AutoMigrate(&models.ContactMessage{}))
	return &Service{Repo: &GormRepo{DB: db}}
}

func TestSubmit(t *testing.T) {
	svc := newTestService(t)

	m, err := svc.Submit(context.Background(), Input{
		Name:    "alice",
		Email:   "alice@example.com",
		Subject: "hello",
		Message: "where is my order?",
	})
	require.NoError(t, err)
	require.NotZero(t, m.ID)
	require.Equal(t, "where is my order?", m.Body)
}

func TestSubmitTrimsWhitespace(t *testing.T) {
	svc := newTestService(t)

	m, err := svc.Submit(context.Background(), Input{
		Name:    "  alice ",
		Email:   " alice@example.com ",
		Message: "  hi  ",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", m.Name)
	require.Equal(t, "alice@example.com", m.Email)
	require.Equal(t, "hi", m.Body)
}

func TestSubmitValidation(t *testing.T) {
	svc := newTestService(t)

	cases := map[string]Input{
		"missing name":    {Email: "a@b.com", Message: "hi"},
		"missing email":   {Name: "alice", Message: "hi"},
		"bad email":       {Name: "alice", Email: "not-an-email", Message: "hi"},
		"missing message": {Name: "alice", Email: "a@b.com"},
		"blank message":   {Name: "alice", Email: "a@b.com", Message: "   "},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestListAndDelete(t *testing.T) {
	svc := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), Input{
			Name:    "alice",
			Email:   "alice@example.com",
			Message: "hi",
		})
		require.NoError(t, err)
	}

	total, messages, err := svc.List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, messages, 3)

	require.NoError(t, svc.Delete(context.Background(), messages[0].ID))

	total, _, err = svc.List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
}

func TestDeleteUnknownMessage(t *testing.T) {
	svc := newTestService(t)

	err := svc.Delete(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}
