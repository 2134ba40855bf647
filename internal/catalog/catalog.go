// Package catalog holds the immutable table of game definitions loaded once
// at startup.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"

	"carnival/internal/types"
)

// ErrGameNotFound is returned when an id is not present in the catalog.
var ErrGameNotFound = errors.New("game not found")

// Catalog is read-only after LoadCatalog returns and safe to share.
type Catalog struct {
	games []types.GameDefinition
	byID  map[string]types.GameDefinition
}

// LoadCatalog parses a YAML catalog document and indexes it by game id.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc types.Catalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(doc.Games)
}

// LoadCatalogFile opens path and calls LoadCatalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// New builds a catalog from already-parsed definitions.
func New(games []types.GameDefinition) (*Catalog, error) {
	for i, g := range games {
		if strings.TrimSpace(g.ID) == "" {
			return nil, fmt.Errorf("game at index %d: id is required", i)
		}
		if strings.TrimSpace(g.Name) == "" {
			return nil, fmt.Errorf("game %q: name is required", g.ID)
		}
	}
	if dups := lo.FindDuplicatesBy(games, func(g types.GameDefinition) string { return g.ID }); len(dups) > 0 {
		return nil, fmt.Errorf("duplicate game id %q", dups[0].ID)
	}

	return &Catalog{
		games: append([]types.GameDefinition(nil), games...),
		byID: lo.Associate(games, func(g types.GameDefinition) (string, types.GameDefinition) {
			return g.ID, g
		}),
	}, nil
}

// Lookup returns the definition for id or ErrGameNotFound.
func (c *Catalog) Lookup(id string) (types.GameDefinition, error) {
	g, ok := c.byID[id]
	if !ok {
		return types.GameDefinition{}, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return g, nil
}

// List returns the definitions in source order.
func (c *Catalog) List() []types.GameDefinition {
	return append([]types.GameDefinition(nil), c.games...)
}

func (c *Catalog) Len() int {
	return len(c.games)
}
