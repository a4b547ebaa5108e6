// Package seed loads shortlinks and feature flags from a JSON file into
// the key-value store at startup.
//
// File shape:
//
//	{
//	  "links": { "gh": "https://github.com/someone" },
//	  "flags": { "open_to_work": "true" }
//	}
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	flagstore "github.com/dalemusser/folio/internal/app/store/flags"
	linkstore "github.com/dalemusser/folio/internal/app/store/links"
)

// File is the decoded seed document.
type File struct {
	Links map[string]string `json:"links"`
	Flags map[string]string `json:"flags"`
}

// Read decodes the seed file at path.
func Read(path string) (File, error) {
	var f File
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("seed %s: %w", path, err)
	}
	return f, nil
}

// Apply writes every link and flag. Links must be absolute http(s) URLs.
func Apply(ctx context.Context, f File, links *linkstore.Store, flags *flagstore.Store) error {
	for key, target := range f.Links {
		u, err := url.Parse(target)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("seed link %q: target %q is not an absolute http(s) URL", key, target)
		}
		if err := links.Put(ctx, key, target); err != nil {
			return fmt.Errorf("seed link %q: %w", key, err)
		}
	}
	for name, value := range f.Flags {
		if err := flags.Set(ctx, name, value); err != nil {
			return fmt.Errorf("seed flag %q: %w", name, err)
		}
	}
	return nil
}
