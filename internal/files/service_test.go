package files

import (
	"context"
	"io"
	"testing"

	"github.com/loquihq/loqui/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	provider, err := storage.NewFSProvider(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewService(nil, provider)
}

func TestStoreAndOpenRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	data := []byte("attachment body")

	address, err := svc.Store(ctx, 1, "notes.txt", data)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	rc, err := svc.Open(ctx, 1, address.Path())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(data) {
		t.Errorf("read back %q, want %q", got, data)
	}
}

func TestStoreDeduplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	data := []byte("the same bytes")

	first, err := svc.Store(ctx, 1, "one.dat", data)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Store(ctx, 1, "two.dat", data)
	if err != nil {
		t.Fatal(err)
	}
	if first.Hash != second.Hash {
		t.Error("identical bytes must share one address")
	}
	if first.URL(1) != second.URL(1) {
		t.Error("identical bytes must share one URL")
	}
}

func TestWorkspaceIsolation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	address, err := svc.Store(ctx, 1, "secret.txt", []byte("ws1 only"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Open(ctx, 2, address.Path()); err == nil {
		t.Error("content stored for workspace 1 must not open under workspace 2")
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Open(context.Background(), 1, "../../etc/passwd"); err == nil {
		t.Error("traversal path must be rejected")
	}
}

func TestExists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	address, err := svc.Store(ctx, 3, "a.bin", []byte("abc"))
	if err != nil {
		t.Fatal(err)
	}
	ok, err := svc.Exists(ctx, 3, address.Path())
	if err != nil || !ok {
		t.Errorf("Exists = (%v, %v), want (true, nil)", ok, err)
	}
	missing := New("b.bin", []byte("different")).Path()
	ok, err = svc.Exists(ctx, 3, missing)
	if err != nil || ok {
		t.Errorf("Exists for missing = (%v, %v), want (false, nil)", ok, err)
	}
}
