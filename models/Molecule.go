package models

// Molecule is an aroma molecule available for formula composition.
type Molecule struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	CAS           string      `json:"cas"`
	Category      string      `json:"category"`
	PriceUSDPerKg *float64    `json:"price_usd_per_kg,omitempty"`
	Description   string      `json:"description,omitempty"`
	Organoleptic  string      `json:"organoleptic,omitempty"`
	Odor          string      `json:"odor,omitempty"`
	ShelfLife     Label       `json:"shelf_life,omitempty"`
	Regulatory    *Regulatory `json:"regulatory,omitempty"`
	Compatibility []string    `json:"compatibility,omitempty"`
	Suppliers     []string    `json:"suppliers,omitempty"`
}

// Regulatory carries the compliance flags published for a molecule.
type Regulatory struct {
	FEMAGRAS   Label `json:"fema_gras,omitempty"`
	EUApproved Label `json:"eu_approved,omitempty"`
	Prop65     Label `json:"prop_65,omitempty"`
}

// Price returns the per-kilogram price, treating an unpublished price as zero.
func (m Molecule) Price() float64 {
	if m.PriceUSDPerKg == nil {
		return 0
	}
	return *m.PriceUSDPerKg
}
