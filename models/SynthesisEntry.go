package models

// SynthesisEntry describes the known production routes for a molecule.
type SynthesisEntry struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	CAS      string            `json:"cas"`
	Category string            `json:"category"`
	Methods  []SynthesisMethod `json:"methods,omitempty"`
}

type SynthesisMethod struct {
	Name      string   `json:"name"`
	Yield     Label    `json:"yield,omitempty"`
	Time      Label    `json:"time,omitempty"`
	Temp      Label    `json:"temp,omitempty"`
	Pressure  Label    `json:"pressure,omitempty"`
	CostPerKg Label    `json:"cost_per_kg,omitempty"`
	Reagents  []string `json:"reagents,omitempty"`
}
