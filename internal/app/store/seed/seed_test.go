package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	flagstore "github.com/dalemusser/folio/internal/app/store/flags"
	"github.com/dalemusser/folio/internal/app/store/kv"
	linkstore "github.com/dalemusser/folio/internal/app/store/links"
	"github.com/dalemusser/folio/internal/app/store/seed"
)

func TestReadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	body := `{"links":{"gh":"https://github.com/example"},"flags":{"open_to_work":"false"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := seed.Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	store := kv.NewMemory()
	links := linkstore.New(store)
	flags := flagstore.New(store)
	ctx := context.Background()

	if err := seed.Apply(ctx, f, links, flags); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	target, err := links.Resolve(ctx, "gh")
	if err != nil || target != "https://github.com/example" {
		t.Errorf("Resolve(gh): got (%q, %v)", target, err)
	}
	v, ok, err := flags.Get(ctx, "open_to_work")
	if err != nil || !ok || v != "false" {
		t.Errorf("flags.Get: got (%q, %v, %v)", v, ok, err)
	}
}

func TestApply_RejectsRelativeTarget(t *testing.T) {
	store := kv.NewMemory()
	f := seed.File{Links: map[string]string{"bad": "/local/path"}}

	err := seed.Apply(context.Background(), f, linkstore.New(store), flagstore.New(store))
	if err == nil {
		t.Fatal("expected error for relative target")
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := seed.Read(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
