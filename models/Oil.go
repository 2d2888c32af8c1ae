package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Oil is an essential oil entry. Oils are keyed by name in the source dataset.
type Oil struct {
	Name                 string             `json:"name"`
	LatinName            string             `json:"latin_name,omitempty"`
	Family               string             `json:"family,omitempty"`
	Origin               string             `json:"origin,omitempty"`
	PriceRange           string             `json:"price_range,omitempty"`
	SynthesisOpportunity string             `json:"synthesis_opportunity,omitempty"`
	Components           map[string]float64 `json:"components,omitempty"`
	IFRACategory         Label              `json:"ifra_category,omitempty"`
	Properties           any                `json:"properties,omitempty"`

	// ComponentOrder holds the Components keys in dataset document order.
	ComponentOrder []string `json:"-"`
}

// UnmarshalJSON decodes an oil and records the document order of its
// components.
func (o *Oil) UnmarshalJSON(data []byte) error {
	type plain Oil
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw struct {
		Components json.RawMessage `json:"components"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	order, err := objectKeys(raw.Components)
	if err != nil {
		return fmt.Errorf("components: %w", err)
	}
	*o = Oil(p)
	o.ComponentOrder = order
	return nil
}

// ComponentNames lists constituent names in document order. Oils without a
// recorded order list them largest share first.
func (o Oil) ComponentNames() []string {
	if len(o.ComponentOrder) > 0 {
		return o.ComponentOrder
	}
	shares := o.TopComponents(-1)
	names := make([]string, len(shares))
	for i, share := range shares {
		names[i] = share.Name
	}
	return names
}

func objectKeys(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// ComponentShare is a single constituent of an oil and its percentage.
type ComponentShare struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// TopComponents returns the n largest constituents, highest first. Ties are ordered by name.
func (o Oil) TopComponents(n int) []ComponentShare {
	shares := make([]ComponentShare, 0, len(o.Components))
	for name, percent := range o.Components {
		shares = append(shares, ComponentShare{Name: name, Percent: percent})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Percent == shares[j].Percent {
			return shares[i].Name < shares[j].Name
		}
		return shares[i].Percent > shares[j].Percent
	})
	if n >= 0 && len(shares) > n {
		shares = shares[:n]
	}
	return shares
}
