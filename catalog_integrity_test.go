package main

import (
	"regexp"
	"strings"
	"testing"

	"carnival/internal/catalog"
	"carnival/internal/types"
)

var gameIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func loadShippedCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.LoadCatalogFile("data/games.yml")
	if err != nil {
		t.Fatalf("failed to load games.yml: %v", err)
	}
	if cat.Len() == 0 {
		t.Fatal("games.yml has no games")
	}
	return cat
}

func TestGameIDsAreURLSafe(t *testing.T) {
	for _, def := range loadShippedCatalog(t).List() {
		if !gameIDPattern.MatchString(def.ID) {
			t.Errorf("game id %q is not a lowercase slug", def.ID)
		}
	}
}

func TestGameNamesUnique(t *testing.T) {
	seen := make(map[string]string)
	for _, def := range loadShippedCatalog(t).List() {
		name := strings.ToLower(strings.TrimSpace(def.Name))
		if other, ok := seen[name]; ok {
			t.Errorf("games %q and %q share the name %q", other, def.ID, def.Name)
		}
		seen[name] = def.ID
	}
}

func TestEveryTierHasRewards(t *testing.T) {
	for _, def := range loadShippedCatalog(t).List() {
		for level := 1; level <= types.MaxLevel; level++ {
			tier := def.Prizes.Tier(level)
			if len(tier) == 0 {
				t.Errorf("game %s has no %s prizes", def.ID, types.PrizeLevelFor(level))
			}
			seen := make(map[string]struct{})
			for _, reward := range tier {
				if strings.TrimSpace(reward) == "" {
					t.Errorf("game %s has a blank %s prize", def.ID, types.PrizeLevelFor(level))
				}
				if _, ok := seen[reward]; ok {
					t.Errorf("duplicate %s prize in game %s: %s", types.PrizeLevelFor(level), def.ID, reward)
				}
				seen[reward] = struct{}{}
			}
		}
	}
}

func TestEveryGameHasTheme(t *testing.T) {
	for _, def := range loadShippedCatalog(t).List() {
		if strings.TrimSpace(def.Theme) == "" {
			t.Errorf("game %s has no theme", def.ID)
		}
	}
}
