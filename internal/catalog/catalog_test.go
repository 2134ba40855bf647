package catalog

import (
	"errors"
	"strings"
	"testing"

	"carnival/internal/types"
)

const testCatalogYAML = `
games:
  - id: ducks
    name: Duck Pond
    theme: water
    prizes:
      small: [sticker]
      medium: [plush]
      large: [bear]
      grand: [bike]
  - id: ringtoss
    name: Ring Toss
    theme: bottles
    prizes:
      small: [pencil]
`

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(strings.NewReader(testCatalogYAML))
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	g, err := c.Lookup("ducks")
	if err != nil {
		t.Fatalf("Lookup(ducks) failed: %v", err)
	}
	if g.Name != "Duck Pond" || g.Theme != "water" {
		t.Errorf("Lookup(ducks) = %+v", g)
	}
	if len(g.Prizes.Grand) != 1 || g.Prizes.Grand[0] != "bike" {
		t.Errorf("grand prizes = %v, want [bike]", g.Prizes.Grand)
	}

	rt, _ := c.Lookup("ringtoss")
	if len(rt.Prizes.Medium) != 0 {
		t.Errorf("missing medium tier should be empty, got %v", rt.Prizes.Medium)
	}

	ids := []string{}
	for _, g := range c.List() {
		ids = append(ids, g.ID)
	}
	if strings.Join(ids, ",") != "ducks,ringtoss" {
		t.Errorf("List() order = %v, want source order", ids)
	}
}

func TestLookupMissing(t *testing.T) {
	c, err := LoadCatalog(strings.NewReader(testCatalogYAML))
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	_, err = c.Lookup("whack-a-mole")
	if !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Lookup of missing id returned %v, want ErrGameNotFound", err)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		games   []types.GameDefinition
		wantErr string
	}{
		{
			name:    "empty id",
			games:   []types.GameDefinition{{ID: " ", Name: "x"}},
			wantErr: "id is required",
		},
		{
			name:    "empty name",
			games:   []types.GameDefinition{{ID: "x"}},
			wantErr: "name is required",
		},
		{
			name:    "duplicate id",
			games:   []types.GameDefinition{{ID: "x", Name: "a"}, {ID: "x", Name: "b"}},
			wantErr: "duplicate game id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.games)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("New() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadCatalogMalformed(t *testing.T) {
	if _, err := LoadCatalog(strings.NewReader("games: [ {id: ")); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestListIsCopy(t *testing.T) {
	c, _ := New([]types.GameDefinition{{ID: "a", Name: "A"}})
	list := c.List()
	list[0].Name = "changed"
	if g, _ := c.Lookup("a"); g.Name != "A" {
		t.Error("mutating List() result changed the catalog")
	}
	if c.List()[0].Name != "A" {
		t.Error("mutating List() result changed subsequent List()")
	}
}
