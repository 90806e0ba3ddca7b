package geo

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

//go:embed cities.json
var defaultCities []byte

// Gazetteer resolves a city name to a known city.
type Gazetteer interface {
	Lookup(ctx context.Context, name string) (models.City, bool, error)
}

// DefaultCities returns the built-in seed list.
func DefaultCities() ([]models.City, error) {
	var cities []models.City
	if err := json.Unmarshal(defaultCities, &cities); err != nil {
		return nil, fmt.Errorf("decode built-in cities: %w", err)
	}
	return cities, nil
}

// LoadCities reads a JSON array of cities from path.
func LoadCities(path string) ([]models.City, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cities file: %w", err)
	}
	defer file.Close()

	var cities []models.City
	if err := json.NewDecoder(file).Decode(&cities); err != nil {
		return nil, fmt.Errorf("decode cities file: %w", err)
	}
	return cities, nil
}

// Normalize lower-cases and trims a city name and collapses inner whitespace.
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// candidates lists the keys tried for a free-text query: the whole text, then its first comma-separated part.
// "Milano, Italia" tries "milano, italia" then "milano".
func candidates(query string) []string {
	full := Normalize(query)
	if full == "" {
		return nil
	}
	out := []string{full}
	if i := strings.IndexByte(full, ','); i > 0 {
		if head := strings.TrimSpace(full[:i]); head != "" {
			out = append(out, head)
		}
	}
	return out
}

// keysOf returns every normalized name a city answers to.
func keysOf(c models.City) []string {
	keys := []string{Normalize(c.Name)}
	if c.Country != "" {
		keys = append(keys, Normalize(c.Name+", "+c.Country))
	}
	for _, a := range c.Aliases {
		keys = append(keys, Normalize(a))
		if c.Country != "" {
			keys = append(keys, Normalize(a+", "+c.Country))
		}
	}
	return keys
}

// MemoryGazetteer is an in-process gazetteer used when Redis is not configured.
type MemoryGazetteer struct {
	index map[string]models.City
}

func NewMemoryGazetteer(cities []models.City) *MemoryGazetteer {
	g := &MemoryGazetteer{index: make(map[string]models.City, len(cities)*3)}
	for _, c := range cities {
		for _, k := range keysOf(c) {
			g.index[k] = c
		}
	}
	return g
}

func (g *MemoryGazetteer) Lookup(_ context.Context, name string) (models.City, bool, error) {
	for _, k := range candidates(name) {
		if c, ok := g.index[k]; ok {
			return c, true, nil
		}
	}
	return models.City{}, false, nil
}
