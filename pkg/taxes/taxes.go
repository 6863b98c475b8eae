// Package taxes supplies per-state estimated vehicle tax rates and doc fees,
// used only to propose an estimated target OTD when the user has not set one.
// The numbers are approximations and are always labeled as such downstream.
package taxes

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"dealcoach/pkg/money"
)

//go:embed rates.yaml
var embeddedRates []byte

// StateRates is one jurisdiction's entry.
type StateRates struct {
	Rate   float64      `yaml:"rate"`
	DocFee money.Amount `yaml:"doc_fee"`
}

// Table is the full rate table. Unknown states fall back to the defaults.
type Table struct {
	DefaultRate   float64               `yaml:"default_rate"`
	DefaultDocFee money.Amount          `yaml:"default_doc_fee"`
	States        map[string]StateRates `yaml:"states"`
}

// Default returns the embedded table. The embedded YAML is part of the binary;
// a parse failure is a build defect, so it panics rather than returning an error.
func Default() *Table {
	t, err := parse(embeddedRates)
	if err != nil {
		panic(fmt.Sprintf("embedded rates.yaml is invalid: %v", err))
	}
	return t
}

// Load reads a rate table from a YAML file, for users who want to override the
// embedded approximations.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse rate table: %w", err)
	}
	if t.DefaultRate <= 0 || t.DefaultRate >= 1 {
		return nil, fmt.Errorf("default_rate %v out of range (0,1)", t.DefaultRate)
	}
	return &t, nil
}

// Rate returns the estimated combined tax rate for a two-letter state code.
func (t *Table) Rate(stateCode string) float64 {
	if s, ok := t.States[strings.ToUpper(stateCode)]; ok {
		return s.Rate
	}
	return t.DefaultRate
}

// DocFee returns the typical dealer documentation fee for a state.
func (t *Table) DocFee(stateCode string) money.Amount {
	if s, ok := t.States[strings.ToUpper(stateCode)]; ok && s.DocFee > 0 {
		return s.DocFee
	}
	return t.DefaultDocFee
}

// EstimateOTD projects a rough out-the-door price for a vehicle price in a
// state: price plus estimated tax plus the typical doc fee, rounded to the
// nearest dollar.
func (t *Table) EstimateOTD(price money.Amount, stateCode string) money.Amount {
	taxed := float64(price) * (1 + t.Rate(stateCode))
	return money.Amount(math.Round(taxed)) + t.DocFee(stateCode)
}
