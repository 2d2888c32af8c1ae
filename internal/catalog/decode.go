package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"flaromlab/models"
)

// DecodeOils decodes an oils shard. Oils are published as an object keyed by
// name; the key becomes the oil's Name and document order is kept. A plain
// list is accepted as well.
func DecodeOils(data []byte) ([]models.Oil, error) {
	var envelope struct {
		Oils json.RawMessage `json:"oils"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	raw := bytes.TrimSpace(envelope.Oils)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("missing top-level key %q", "oils")
	}

	if raw[0] == '[' {
		oils := []models.Oil{}
		if err := json.Unmarshal(raw, &oils); err != nil {
			return nil, err
		}
		return oils, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil {
		return nil, err
	} else if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("oils must be an object or a list")
	}

	oils := []models.Oil{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)
		var oil models.Oil
		if err := dec.Decode(&oil); err != nil {
			return nil, fmt.Errorf("oil %q: %w", name, err)
		}
		oil.Name = name
		oils = append(oils, oil)
	}
	return oils, nil
}

// DecodeMolecules decodes a molecules shard.
func DecodeMolecules(data []byte) ([]models.Molecule, error) {
	return decodeList[models.Molecule](data, "molecules")
}

// DecodeFormulas decodes a formulas shard.
func DecodeFormulas(data []byte) ([]models.Formula, error) {
	return decodeList[models.Formula](data, "formulas")
}

// DecodeSynthesis decodes a synthesis shard. Published shards list their
// entries under "molecules".
func DecodeSynthesis(data []byte) ([]models.SynthesisEntry, error) {
	return decodeList[models.SynthesisEntry](data, "molecules", "synthesis")
}

func decodeList[T any](data []byte, keys ...string) ([]T, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	for _, key := range keys {
		raw, ok := envelope[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		items := []T{}
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		return items, nil
	}
	return nil, fmt.Errorf("missing top-level key %q", keys[0])
}
