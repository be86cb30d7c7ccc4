package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Nazarious-ucu/travel-planner-api/internal/models"
)

var (
	ErrDataFileMissing   = errors.New("city data file does not exist")
	ErrDataFileMalformed = errors.New("city data file is malformed")
)

// Catalog is the read-only table of cities loaded at startup.
// It is safe for concurrent use because nothing mutates it after Load.
type Catalog struct {
	cities []models.CityRecord
}

// readingFields are the weather keys of a city object. Keys are matched exactly.
var readingFields = []string{"temperature", "humidity", "wind_speed"}

// Load reads the city data file at path. Cities and package tiers keep their document order.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDataFileMissing, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrDataFileMalformed, err)
	}

	return Parse(data)
}

// Parse builds a catalog from the raw JSON document.
func Parse(data []byte) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, malformed("top level must be an object: %v", err)
	}

	c := &Catalog{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed("read city name: %v", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, malformed("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, malformed("read city %q: %v", name, err)
		}

		city, err := parseCity(name, raw)
		if err != nil {
			return nil, err
		}

		// a repeated key keeps its first position and its last value
		if i, dup := index[name]; dup {
			c.cities[i] = city
			continue
		}
		index[name] = len(c.cities)
		c.cities = append(c.cities, city)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, malformed("unterminated top level object: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed("trailing data after top level object")
	}

	return c, nil
}

// Cities returns a copy of every city in document order.
func (c *Catalog) Cities() []models.CityRecord {
	out := make([]models.CityRecord, len(c.cities))
	for i, city := range c.cities {
		out[i] = cloneCity(city)
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.cities)
}

func parseCity(name string, raw json.RawMessage) (models.CityRecord, error) {
	if !isObject(raw) {
		return models.CityRecord{}, malformed("city %q is not an object", name)
	}

	// a map keeps key case as written, so "Packages" is not "packages"
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.CityRecord{}, malformed("city %q: %v", name, err)
	}

	for _, field := range readingFields {
		if reading := fields[field]; isObject(reading) || isArray(reading) {
			return models.CityRecord{}, malformed("city %q: %s must be a scalar", name, field)
		}
	}

	packages, err := parsePackages(fields["packages"])
	if err != nil {
		return models.CityRecord{}, malformed("city %q packages: %v", name, err)
	}

	return models.CityRecord{
		Name:        name,
		Temperature: models.NewReading(fields["temperature"]),
		Humidity:    models.NewReading(fields["humidity"]),
		WindSpeed:   models.NewReading(fields["wind_speed"]),
		Packages:    packages,
	}, nil
}

func parsePackages(raw json.RawMessage) (models.Packages, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return models.Packages{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, errors.New("must be an object")
	}

	packages := models.Packages{}
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		tier, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var price *float64
		if err := dec.Decode(&price); err != nil {
			return nil, fmt.Errorf("tier %q: price must be a number or null", tier)
		}

		if i, dup := seen[tier]; dup {
			packages[i].Price = price
			continue
		}
		seen[tier] = len(packages)
		packages = append(packages, models.PackagePrice{Tier: tier, Price: price})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return packages, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDataFileMalformed, fmt.Sprintf(format, args...))
}

func cloneCity(city models.CityRecord) models.CityRecord {
	packages := make(models.Packages, len(city.Packages))
	for i, pkg := range city.Packages {
		packages[i] = pkg
		if pkg.Price != nil {
			price := *pkg.Price
			packages[i].Price = &price
		}
	}
	city.Packages = packages
	return city
}
