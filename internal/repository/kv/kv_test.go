package kv

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/kvstore"
	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_PrependsAndUpdatesStatusOnly(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	repo := NewOrderRepository(store)
	now := time.Now().UTC()

	first := &domain.Order{ID: "0001", UserID: "u1", Total: 3000, Status: domain.StatusPending, CreatedAt: now}
	second := &domain.Order{ID: "0002", Total: 5000, Status: domain.StatusPending, CreatedAt: now.Add(time.Second)}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "0002", all[0].ID)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	update := *first
	update.Status = domain.StatusProcessing
	update.Total = 1
	require.NoError(t, repo.UpdateStatus(ctx, &update))

	got, err := repo.FindByID(ctx, "0001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got.Status)
	assert.Equal(t, int64(3000), got.Total)

	mine, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	missing, err := repo.FindByID(ctx, "0404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderRepository_RejectsTakenID(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(kvstore.NewMemory())

	require.NoError(t, repo.Create(ctx, &domain.Order{ID: "0007", Total: 1000}))
	err := repo.Create(ctx, &domain.Order{ID: "0007", Total: 2000})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := repo.FindByID(ctx, "0007")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Total)
}

func TestOrderRepository_CorruptValueSurfacesDecodeError(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(ctx, OrdersKey, []byte("{not json")))

	_, err := NewOrderRepository(store).List(ctx, 0)
	var decodeErr *kvstore.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestUserRepository_KeepsPasswordHash(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	repo := NewUserRepository(store)

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Email: "a@b.c", PasswordHash: "$2a$hash"}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{ID: "u2", Email: "a@b.c"}), repository.ErrDuplicate)

	got, err := repo.FindByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "$2a$hash", got.PasswordHash)

	got.Phone = "0102030405"
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "0102030405", again.Phone)
	assert.Equal(t, "$2a$hash", again.PasswordHash)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestProductRepository_SaveReplacesAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(kvstore.NewMemory())

	require.NoError(t, repo.Save(ctx, &domain.Product{ID: "p1", Name: "A", Brand: "X", Price: 100}))
	require.NoError(t, repo.Save(ctx, &domain.Product{ID: "p2", Name: "B", Brand: "Y", Price: 200}))
	require.NoError(t, repo.Save(ctx, &domain.Product{ID: "p1", Name: "A2", Brand: "X", Price: 150}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A2", list[0].Name)

	ok, err := repo.Delete(ctx, "p2")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, ok)
}
