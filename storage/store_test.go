package storage

import (
	"context"
	"errors"
	"testing"
)

type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("access denied")
}
func (brokenBackend) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }
func (brokenBackend) Delete(context.Context, string) error   { return errors.New("access denied") }

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryBackend(), nil)

	s.Set(ctx, KeyQueueCounter, 7)
	var n int
	if !s.Get(ctx, KeyQueueCounter, &n) || n != 7 {
		t.Fatalf("Get(queue counter) = %d, want 7", n)
	}

	s.Remove(ctx, KeyQueueCounter)
	if s.Get(ctx, KeyQueueCounter, &n) {
		t.Error("expected key to be absent after Remove")
	}
}

func TestStoreMissingKey(t *testing.T) {
	s := NewStore(NewMemoryBackend(), nil)
	var v []string
	if s.Get(context.Background(), "nope", &v) {
		t.Error("Get on missing key reported found")
	}
	if v != nil {
		t.Errorf("dst modified on miss: %v", v)
	}
}

func TestStoreCorruptDocument(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	_ = b.Set(ctx, KeyExpenses, []byte("{not json"))
	s := NewStore(b, nil)

	var v []map[string]any
	if s.Get(ctx, KeyExpenses, &v) {
		t.Error("corrupt document should read as absent")
	}
	raw, ok := s.Raw(ctx, KeyExpenses)
	if !ok || string(raw) != "{not json" {
		t.Errorf("Raw() = %q, %v", raw, ok)
	}
}

func TestStoreTypeMismatchLeavesDstUntouched(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	_ = b.Set(ctx, KeyOrderHistory, []byte(`[{"id":"ghost","queueNumber":"seven","totalPrice":"x"}]`))
	s := NewStore(b, nil)

	type order struct {
		ID          string  `json:"id"`
		QueueNumber int     `json:"queueNumber"`
		TotalPrice  float64 `json:"totalPrice"`
	}
	var orders []order
	if s.Get(ctx, KeyOrderHistory, &orders) {
		t.Error("type-mismatched document should read as absent")
	}
	if orders != nil {
		t.Errorf("dst partially filled: %+v", orders)
	}

	prev := []order{{ID: "kept"}}
	if s.Get(ctx, KeyOrderHistory, &prev) || len(prev) != 1 || prev[0].ID != "kept" {
		t.Errorf("dst changed on corrupt read: %+v", prev)
	}
}

func TestStoreGetReplacesDst(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryBackend(), nil)
	s.Set(ctx, KeyExpenses, []string{"a"})

	v := []string{"x", "y"}
	if !s.Get(ctx, KeyExpenses, &v) || len(v) != 1 || v[0] != "a" {
		t.Errorf("Get() = %v, want [a]", v)
	}
}

func TestStoreSwallowsBackendFailures(t *testing.T) {
	ctx := context.Background()
	s := NewStore(brokenBackend{}, nil)

	s.Set(ctx, KeyAdminAuthed, true)
	s.Remove(ctx, KeyAdminAuthed)
	var authed bool
	if s.Get(ctx, KeyAdminAuthed, &authed) {
		t.Error("read through failing backend reported found")
	}
}

func TestMemoryBackendCopies(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	in := []byte(`"a"`)
	_ = b.Set(ctx, "k", in)
	in[1] = 'z'
	out, err := b.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"a"` {
		t.Errorf("stored value aliased caller slice: %s", out)
	}
}

func TestSessionKeys(t *testing.T) {
	if CartKey("s1") == CartKey("s2") {
		t.Error("cart keys must differ per session")
	}
	if CartKey("s1") == FavoritesKey("s1") {
		t.Error("cart and favorites keys collide")
	}
}
