package models

import (
	"bytes"
	"encoding/json"
	"math/big"
)

// NotAvailable is rendered in place of a weather reading the data file does not carry.
const NotAvailable = "N/A"

// Reading is an optional weather value kept exactly as it appeared in the data file.
type Reading struct {
	raw json.RawMessage
}

func NewReading(raw json.RawMessage) Reading {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Reading{}
	}
	return Reading{raw: append(json.RawMessage(nil), trimmed...)}
}

func (r Reading) Present() bool {
	return len(r.raw) > 0
}

func (r Reading) String() string {
	if !r.Present() {
		return NotAvailable
	}
	var s string
	if err := json.Unmarshal(r.raw, &s); err == nil {
		return s
	}
	return string(r.raw)
}

func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Present() {
		return json.Marshal(NotAvailable)
	}
	return r.raw, nil
}

// PackagePrice is a single package tier. A nil Price marks the tier as unavailable.
type PackagePrice struct {
	Tier  string
	Price *float64
}

// Affordable compares exactly; float64(budget) would round budgets above 2^53.
// Integer prices above 2^53 are already rounded when the data file is parsed.
func (p PackagePrice) Affordable(budget int) bool {
	if p.Price == nil {
		return false
	}
	return new(big.Float).SetInt64(int64(budget)).Cmp(big.NewFloat(*p.Price)) >= 0
}

// Packages keeps tiers in data file order and serialises as a JSON object in that order.
type Packages []PackagePrice

func (p Packages) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pkg := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(pkg.Tier)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(pkg.Price)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type CityRecord struct {
	Name        string
	Temperature Reading
	Humidity    Reading
	WindSpeed   Reading
	Packages    Packages
}

// Recommendation is a city with only the package tiers that fit the budget.
type Recommendation struct {
	City        string   `json:"city"`
	Temperature Reading  `json:"temperature"`
	Humidity    Reading  `json:"humidity"`
	WindSpeed   Reading  `json:"wind_speed"`
	Packages    Packages `json:"packages"`
}
