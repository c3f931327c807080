package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestSQLite(t *testing.T) *SQLiteDurable {
	t.Helper()

	s, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return s
}

func TestSQLiteDurable_SetGetDelete(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	data, found, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !found || string(data) != `{"a":1}` {
		t.Errorf("got %q (found: %v)", data, found)
	}

	existed, err := s.Delete(ctx, "k")
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !existed {
		t.Errorf("Delete reported missing for an existing key")
	}

	if _, found, _ := s.Get(ctx, "k"); found {
		t.Errorf("key survived delete")
	}
}

func TestSQLiteDurable_GetMissingKey(t *testing.T) {
	s := openTestSQLite(t)

	data, found, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found || data != nil {
		t.Errorf("missing key reported as found: %q", data)
	}
}

func TestSQLiteDurable_SetOverwrites(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte(`"v1"`)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := s.Set(ctx, "k", []byte(`"v2"`)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	data, _, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(data) != `"v2"` {
		t.Errorf("got %q, want %q", data, `"v2"`)
	}
}

func TestSQLiteDurable_DeleteMissingKey(t *testing.T) {
	s := openTestSQLite(t)

	existed, err := s.Delete(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if existed {
		t.Errorf("Delete reported existence for a missing key")
	}
}

// The full stack against a real durable tier: KV semantics must be the same
// as with mocks.
func TestKV_OverSQLite(t *testing.T) {
	kv := New(openTestSQLite(t), NewMemoryCache(), nil)
	ctx := context.Background()

	want := settings{Theme: "light", PageSize: 50}
	if err := kv.Store(ctx, "user:2:settings", want); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	var got settings
	if err := kv.LoadInto(ctx, "user:2:settings", &got, WithRefresh()); err != nil {
		t.Fatalf("LoadInto returned error: %v", err)
	}
	if got != want {
		t.Errorf("loaded %+v, want %+v", got, want)
	}

	if err := kv.Delete(ctx, "user:2:settings"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := kv.LoadInto(ctx, "user:2:settings", &got); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("err = %v, want ErrKeyNotFound", err)
	}
}
