package services

import (
	"context"
	"testing"
	"time"

	"cafe-storefront/models"
	"cafe-storefront/storage"
)

const testPassword = "Hello Love"

var testStart = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	ctx   context.Context
	store *storage.Store
	clock *ManualClock
	cafe  *Cafe
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := storage.NewStore(storage.NewMemoryBackend(), nil)
	clock := NewManualClock(testStart)
	cafe := NewCafe(ctx, store, Options{AdminPassword: testPassword, Clock: clock}, nil)
	return &testEnv{ctx: ctx, store: store, clock: clock, cafe: cafe}
}

func item(id, name string, price float64) models.MenuItem {
	return models.MenuItem{ID: id, Name: name, Price: models.SimplePrice(price)}
}

func floatPtr(v float64) *float64 { return &v }
