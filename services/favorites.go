package services

import (
	"context"
	"sync"

	"cafe-storefront/storage"
)

// Favorites is a per-session set of item names, kept in insertion order.
type Favorites struct {
	store *storage.Store
	mu    sync.Mutex
}

func NewFavorites(store *storage.Store) *Favorites {
	return &Favorites{store: store}
}

func (f *Favorites) List(ctx context.Context, session string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(ctx, session)
}

func (f *Favorites) list(ctx context.Context, session string) []string {
	var names []string
	f.store.Get(ctx, storage.FavoritesKey(session), &names)
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func (f *Favorites) Add(ctx context.Context, session, name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := f.list(ctx, session)
	for _, n := range names {
		if n == name {
			return names
		}
	}
	names = append(names, name)
	f.store.Set(ctx, storage.FavoritesKey(session), names)
	return names
}

func (f *Favorites) Remove(ctx context.Context, session, name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := f.list(ctx, session)
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			kept = append(kept, n)
		}
	}
	f.store.Set(ctx, storage.FavoritesKey(session), kept)
	return kept
}

// Toggle flips membership and reports whether name is now a favorite.
func (f *Favorites) Toggle(ctx context.Context, session, name string) bool {
	for _, n := range f.List(ctx, session) {
		if n == name {
			f.Remove(ctx, session, name)
			return false
		}
	}
	f.Add(ctx, session, name)
	return true
}

func (f *Favorites) Contains(ctx context.Context, session, name string) bool {
	for _, n := range f.List(ctx, session) {
		if n == name {
			return true
		}
	}
	return false
}
