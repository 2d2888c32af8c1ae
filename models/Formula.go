package models

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// PercentTolerance is the allowed deviation of a formula's component total from 100%.
const PercentTolerance = 0.1

type Formula struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Category        string             `json:"category"`
	Components      []FormulaComponent `json:"components"`
	CostPerLiter    float64            `json:"cost_usd_per_liter"`
	RetailPerLiter  float64            `json:"retail_price_usd_per_liter"`
	ProfitMargin    float64            `json:"profit_margin"`
	ShelfLifeMonths float64            `json:"shelf_life_months,omitempty"`
	Application     string             `json:"application,omitempty"`
	IFRACategory    Label              `json:"ifra_category,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	CreatedAt       *time.Time         `json:"created_at,omitempty"`
}

// FormulaComponent references a molecule by id. Older datasets name the reference "mol".
type FormulaComponent struct {
	MoleculeID string  `json:"id"`
	Name       string  `json:"name,omitempty"`
	CAS        string  `json:"cas,omitempty"`
	Percent    float64 `json:"percent"`
}

func (c *FormulaComponent) UnmarshalJSON(data []byte) error {
	type plain FormulaComponent
	var raw struct {
		plain
		Mol string `json:"mol"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = FormulaComponent(raw.plain)
	if strings.TrimSpace(c.MoleculeID) == "" {
		c.MoleculeID = raw.Mol
	}
	return nil
}

// UnmarshalJSON also understands the short field names written by the browser
// formula builder ("cost", "retail", "createdAt").
func (f *Formula) UnmarshalJSON(data []byte) error {
	type plain Formula
	var raw struct {
		plain
		CreatedAt       json.RawMessage `json:"created_at"`
		LegacyCost      *float64        `json:"cost"`
		LegacyRetail    *float64        `json:"retail"`
		LegacyCreatedAt json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = Formula(raw.plain)
	if f.CostPerLiter == 0 && raw.LegacyCost != nil {
		f.CostPerLiter = *raw.LegacyCost
	}
	if f.RetailPerLiter == 0 && raw.LegacyRetail != nil {
		f.RetailPerLiter = *raw.LegacyRetail
	}
	f.CreatedAt = parseTimestamp(raw.CreatedAt)
	if f.CreatedAt == nil {
		f.CreatedAt = parseTimestamp(raw.LegacyCreatedAt)
	}
	return nil
}

func parseTimestamp(raw json.RawMessage) *time.Time {
	if len(raw) == 0 {
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02", "1/2/2006"} {
		if parsed, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	return nil
}

// PercentTotal sums the component percentages.
func (f Formula) PercentTotal() float64 {
	total := 0.0
	for _, component := range f.Components {
		total += component.Percent
	}
	return total
}

// Balanced reports whether the components sum to 100% within PercentTolerance.
func (f Formula) Balanced() bool {
	return WithinTolerance(f.PercentTotal())
}

// WithinTolerance reports whether total is 100 within PercentTolerance.
func WithinTolerance(total float64) bool {
	// round away float noise such as 33.3+33.3+33.4 = 99.99999999999999
	diff := math.Round(math.Abs(total-100)*1e9) / 1e9
	return diff <= PercentTolerance
}
