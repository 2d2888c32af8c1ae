package filter

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"flaromlab/models"
)

// Field names shared by query parameters and filter option lists.
const (
	FieldName                 = "name"
	FieldID                   = "id"
	FieldCAS                  = "cas"
	FieldCategory             = "category"
	FieldLatinName            = "latin_name"
	FieldFamily               = "family"
	FieldOrigin               = "origin"
	FieldPriceRange           = "price_range"
	FieldSynthesisOpportunity = "synthesis_opportunity"
	FieldCostPerLiter         = "cost_usd_per_liter"
	FieldPricePerKg           = "price_usd_per_kg"
)

// Option lists offered to users. Oil price and synthesis labels are matched
// as substrings, so "High" also selects "Very High" and "Moderate-High".
var (
	PriceBands      = []string{All, "0-35", "35-50", "50-75", "75+"}
	OilPriceLevels  = []string{All, "Very Low", "Low", "Low-Moderate", "Moderate", "Moderate-High", "High", "Very High"}
	SynthesisLevels = []string{All, "Very High", "High", "Medium-High", "Medium", "Low-Medium", "Low"}
)

var OilFields = Fields[models.Oil]{
	Text: []string{FieldName, FieldLatinName, FieldOrigin, FieldFamily},
	Strings: map[string]func(models.Oil) string{
		FieldName:                 func(o models.Oil) string { return o.Name },
		FieldLatinName:            func(o models.Oil) string { return o.LatinName },
		FieldFamily:               func(o models.Oil) string { return o.Family },
		FieldOrigin:               func(o models.Oil) string { return o.Origin },
		FieldPriceRange:           func(o models.Oil) string { return o.PriceRange },
		FieldSynthesisOpportunity: func(o models.Oil) string { return o.SynthesisOpportunity },
	},
}

var MoleculeFields = Fields[models.Molecule]{
	Text: []string{FieldName, FieldCAS, FieldCategory},
	Strings: map[string]func(models.Molecule) string{
		FieldID:       func(m models.Molecule) string { return m.ID },
		FieldName:     func(m models.Molecule) string { return m.Name },
		FieldCAS:      func(m models.Molecule) string { return m.CAS },
		FieldCategory: func(m models.Molecule) string { return m.Category },
	},
	Numbers: map[string]func(models.Molecule) (float64, bool){
		FieldPricePerKg: func(m models.Molecule) (float64, bool) {
			if m.PriceUSDPerKg == nil {
				return 0, false
			}
			return *m.PriceUSDPerKg, true
		},
	},
}

var FormulaFields = Fields[models.Formula]{
	Text: []string{FieldName, FieldID, FieldCategory},
	Strings: map[string]func(models.Formula) string{
		FieldID:       func(f models.Formula) string { return f.ID },
		FieldName:     func(f models.Formula) string { return f.Name },
		FieldCategory: func(f models.Formula) string { return f.Category },
	},
	Numbers: map[string]func(models.Formula) (float64, bool){
		FieldCostPerLiter: func(f models.Formula) (float64, bool) { return f.CostPerLiter, true },
	},
}

var SynthesisFields = Fields[models.SynthesisEntry]{
	Text: []string{FieldName, FieldCAS, FieldCategory},
	Strings: map[string]func(models.SynthesisEntry) string{
		FieldID:       func(s models.SynthesisEntry) string { return s.ID },
		FieldName:     func(s models.SynthesisEntry) string { return s.Name },
		FieldCAS:      func(s models.SynthesisEntry) string { return s.CAS },
		FieldCategory: func(s models.SynthesisEntry) string { return s.Category },
	},
}

// ParsePriceBand turns a band label such as "35-50" or "75+" into a cost
// range. "ALL" and blank report ok=false with no error.
func ParsePriceBand(band string) (r Range, ok bool, err error) {
	band = strings.TrimSpace(band)
	if inactive(band) {
		return Range{}, false, nil
	}
	r.Field = FieldCostPerLiter
	if lower, found := strings.CutSuffix(band, "+"); found {
		lo, perr := strconv.ParseFloat(lower, 64)
		if perr != nil {
			return Range{}, false, fmt.Errorf("invalid price band %q", band)
		}
		r.Min, r.Max = lo, math.Inf(1)
		return r, true, nil
	}
	lower, upper, found := strings.Cut(band, "-")
	if !found {
		return Range{}, false, fmt.Errorf("invalid price band %q", band)
	}
	lo, errLo := strconv.ParseFloat(lower, 64)
	hi, errHi := strconv.ParseFloat(upper, 64)
	if errLo != nil || errHi != nil || lo > hi {
		return Range{}, false, fmt.Errorf("invalid price band %q", band)
	}
	r.Min, r.Max = lo, hi
	return r, true, nil
}

// FromQuery builds Criteria for entity from request query parameters:
// q for text search, family/price/synthesis for oils, category for the
// others and band for formula cost bands.
func FromQuery(values url.Values, entity models.Entity) (Criteria, error) {
	c := Criteria{Text: strings.TrimSpace(values.Get("q"))}
	switch entity {
	case models.EntityOils:
		c.Equals = append(c.Equals, Equals{Field: FieldFamily, Value: values.Get("family")})
		c.Contains = append(c.Contains,
			Contains{Field: FieldPriceRange, Token: values.Get("price")},
			Contains{Field: FieldSynthesisOpportunity, Token: values.Get("synthesis")},
		)
	case models.EntityFormulas:
		c.Equals = append(c.Equals, Equals{Field: FieldCategory, Value: values.Get("category")})
		r, ok, err := ParsePriceBand(values.Get("band"))
		if err != nil {
			return Criteria{}, err
		}
		if ok {
			c.Ranges = append(c.Ranges, r)
		}
	case models.EntityMolecules, models.EntitySynthesis:
		c.Equals = append(c.Equals, Equals{Field: FieldCategory, Value: values.Get("category")})
	default:
		return Criteria{}, fmt.Errorf("unknown entity %q", entity)
	}
	return c, nil
}
