package storage

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"

	"go.uber.org/zap"
)

// Store wraps a Backend with JSON encoding. None of its methods return
// errors: backend and decode failures are logged and reads report the
// key as absent, so callers fall back to their defaults.
type Store struct {
	backend Backend
	log     *zap.Logger
}

func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, log: logger.Named("storage")}
}

// Raw returns the stored bytes for key, or false if absent or unreadable.
func (s *Store) Raw(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.log.Warn("read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return b, true
}

// Get decodes the document under key into dst, which must be a non-nil
// pointer. It reports false, leaving dst untouched, when the key is absent
// or the document does not decode into dst's type.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	b, ok := s.Raw(ctx, key)
	if !ok {
		return false
	}
	out := reflect.ValueOf(dst)
	if out.Kind() != reflect.Pointer || out.IsNil() {
		s.log.Error("decode target is not a pointer", zap.String("key", key))
		return false
	}
	// json.Unmarshal fills what it can before reporting a type mismatch,
	// so decode into a fresh value.
	fresh := reflect.New(out.Elem().Type())
	if err := json.Unmarshal(b, fresh.Interface()); err != nil {
		s.log.Warn("corrupt document", zap.String("key", key), zap.Error(err))
		return false
	}
	out.Elem().Set(fresh.Elem())
	return true
}

func (s *Store) Set(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.backend.Set(ctx, key, b); err != nil {
		s.log.Warn("write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) Remove(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.log.Warn("remove failed", zap.String("key", key), zap.Error(err))
	}
}
