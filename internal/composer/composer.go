// Package composer builds new formulas from catalog molecules and hands them
// to the saved formula store once they balance to 100%.
package composer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"flaromlab/models"
)

const (
	// DefaultMarkup converts ingredient cost into retail price.
	DefaultMarkup = 6.5
	// DefaultCategory is assigned to drafts that have not chosen one.
	DefaultCategory = "Custom"
	// IDPrefix marks formulas authored through the composer.
	IDPrefix = "CUSTOM-"
)

var (
	ErrNameMissing  = errors.New("formula name is missing")
	ErrPercentTotal = errors.New("percentages do not sum to 100")
)

// ValidationError explains why a draft cannot be saved.
type ValidationError struct {
	Err   error
	Total float64
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrPercentTotal) {
		return fmt.Sprintf("%v (total %.2f%%)", e.Err, e.Total)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// State is the composer's position in its lifecycle.
type State int

const (
	StateEmpty State = iota
	StateComposing
	StateValid
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateComposing:
		return "composing"
	case StateValid:
		return "valid"
	case StateSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Line is one component of a draft. Name, CAS and price are copied from the
// catalog when the line is added.
type Line struct {
	MoleculeID string  `json:"molecule_id"`
	Name       string  `json:"name"`
	CAS        string  `json:"cas,omitempty"`
	PricePerKg float64 `json:"price_per_kg"`
	Percent    float64 `json:"percent"`
}

// Draft is the formula under construction.
type Draft struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Components []Line `json:"components"`
}

// Totals are the figures derived from the current draft.
type Totals struct {
	Cost         float64 `json:"cost"`
	Retail       float64 `json:"retail"`
	Margin       float64 `json:"margin"`
	PercentTotal float64 `json:"percent_total"`
	Components   int     `json:"components"`
}

// Molecules resolves the molecules a draft may use.
type Molecules interface {
	Lookup(id string) (models.Molecule, bool)
	Molecules() []models.Molecule
}

// Saver persists a finished formula.
type Saver interface {
	AppendSaved(ctx context.Context, f models.Formula) ([]models.Formula, error)
}

// Composer edits a single draft. It is not safe for concurrent use; callers
// keep one per session.
type Composer struct {
	draft     Draft
	molecules Molecules
	saver     Saver
	markup    float64
	saved     bool
	now       func() time.Time
	newID     func() string
}

// Option customises a Composer.
type Option func(*Composer)

// WithMarkup sets the retail markup factor. Non-positive values are ignored.
func WithMarkup(markup float64) Option {
	return func(c *Composer) {
		if markup > 0 {
			c.markup = markup
		}
	}
}

// WithClock replaces the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// WithIDGenerator replaces the generator for the part of the id after IDPrefix.
func WithIDGenerator(newID func() string) Option {
	return func(c *Composer) { c.newID = newID }
}

// New returns an empty Composer.
func New(molecules Molecules, saver Saver, opts ...Option) *Composer {
	c := &Composer{
		draft:     Draft{Category: DefaultCategory},
		molecules: molecules,
		saver:     saver,
		markup:    DefaultMarkup,
		now:       time.Now,
		newID:     newUUID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// State reports where the draft is in its lifecycle. StateSaved is reported
// from a successful Save until the next edit.
func (c *Composer) State() State {
	switch {
	case len(c.draft.Components) == 0 && c.saved:
		return StateSaved
	case len(c.draft.Components) == 0:
		return StateEmpty
	case models.WithinTolerance(c.percentTotal()):
		return StateValid
	default:
		return StateComposing
	}
}

// SetName names the draft.
func (c *Composer) SetName(name string) {
	c.saved = false
	c.draft.Name = strings.TrimSpace(name)
}

// SetCategory sets the draft category. Blank selects DefaultCategory.
func (c *Composer) SetCategory(category string) {
	c.saved = false
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}
	c.draft.Category = category
}

// Add appends a component. It does nothing and returns false when the id is
// blank, the percent is not a positive number, the molecule is unknown or the
// molecule is already in the draft.
func (c *Composer) Add(moleculeID string, percent float64) bool {
	moleculeID = strings.TrimSpace(moleculeID)
	if moleculeID == "" || math.IsNaN(percent) || math.IsInf(percent, 0) || percent <= 0 {
		return false
	}
	if c.has(moleculeID) || c.molecules == nil {
		return false
	}
	molecule, ok := c.molecules.Lookup(moleculeID)
	if !ok {
		return false
	}
	c.saved = false
	c.draft.Components = append(c.draft.Components, Line{
		MoleculeID: molecule.ID,
		Name:       molecule.Name,
		CAS:        molecule.CAS,
		PricePerKg: molecule.Price(),
		Percent:    percent,
	})
	return true
}

// AddText is Add for form input, where the percent arrives as text.
func (c *Composer) AddText(moleculeID, percentText string) bool {
	percentText = strings.TrimSpace(percentText)
	if percentText == "" {
		return false
	}
	percent, err := strconv.ParseFloat(percentText, 64)
	if err != nil {
		return false
	}
	return c.Add(moleculeID, percent)
}

// Remove drops the component at index. Out-of-range indexes are ignored.
func (c *Composer) Remove(index int) bool {
	if index < 0 || index >= len(c.draft.Components) {
		return false
	}
	c.saved = false
	c.draft.Components = slices.Delete(slices.Clone(c.draft.Components), index, index+1)
	return true
}

// Available lists catalog molecules not yet in the draft whose name or CAS
// contains search, ignoring case.
func (c *Composer) Available(search string) []models.Molecule {
	if c.molecules == nil {
		return []models.Molecule{}
	}
	term := strings.ToLower(strings.TrimSpace(search))
	out := []models.Molecule{}
	seen := map[string]bool{}
	for _, molecule := range c.molecules.Molecules() {
		if seen[molecule.ID] || c.has(molecule.ID) {
			continue
		}
		seen[molecule.ID] = true
		if term == "" ||
			strings.Contains(strings.ToLower(molecule.Name), term) ||
			strings.Contains(strings.ToLower(molecule.CAS), term) {
			out = append(out, molecule)
		}
	}
	return out
}

// Totals derives cost, retail and margin from the draft. Margin is 0 when the
// draft has no cost.
func (c *Composer) Totals() Totals {
	t := Totals{PercentTotal: c.percentTotal(), Components: len(c.draft.Components)}
	for _, line := range c.draft.Components {
		t.Cost += line.PricePerKg * line.Percent / 100
	}
	t.Retail = t.Cost * c.markup
	if t.Cost > 0 {
		t.Margin = t.Retail / t.Cost
	}
	return t
}

// MarginLabel formats the margin for display: one decimal, or "0" without cost.
func (c *Composer) MarginLabel() string {
	t := c.Totals()
	if t.Cost <= 0 {
		return "0"
	}
	return strconv.FormatFloat(t.Margin, 'f', 1, 64)
}

// Validate reports why the draft cannot be saved, or nil.
func (c *Composer) Validate() error {
	if strings.TrimSpace(c.draft.Name) == "" {
		return &ValidationError{Err: ErrNameMissing}
	}
	if total := c.percentTotal(); !models.WithinTolerance(total) {
		return &ValidationError{Err: ErrPercentTotal, Total: total}
	}
	return nil
}

// Save validates the draft, stores it as a new formula and resets the
// composer. When storing fails the draft is left as it was.
func (c *Composer) Save(ctx context.Context) (models.Formula, error) {
	if err := c.Validate(); err != nil {
		return models.Formula{}, err
	}
	if c.saver == nil {
		return models.Formula{}, fmt.Errorf("composer has no formula store")
	}

	totals := c.Totals()
	created := c.now().UTC()
	formula := models.Formula{
		ID:             IDPrefix + c.newID(),
		Name:           c.draft.Name,
		Category:       c.draft.Category,
		Components:     make([]models.FormulaComponent, len(c.draft.Components)),
		CostPerLiter:   totals.Cost,
		RetailPerLiter: totals.Retail,
		ProfitMargin:   totals.Margin,
		CreatedAt:      &created,
	}
	for i, line := range c.draft.Components {
		formula.Components[i] = models.FormulaComponent{
			MoleculeID: line.MoleculeID,
			Name:       line.Name,
			CAS:        line.CAS,
			Percent:    line.Percent,
		}
	}

	if _, err := c.saver.AppendSaved(ctx, formula); err != nil {
		return models.Formula{}, fmt.Errorf("save formula: %w", err)
	}

	c.Reset()
	c.saved = true
	return formula, nil
}

// Reset discards the draft.
func (c *Composer) Reset() {
	c.saved = false
	c.draft = Draft{Category: DefaultCategory}
}

// Draft returns a copy of the draft.
func (c *Composer) Draft() Draft {
	d := c.draft
	d.Components = slices.Clone(c.draft.Components)
	if d.Components == nil {
		d.Components = []Line{}
	}
	return d
}

// Restore replaces the draft with d, typically read back from session
// storage. Lines without a molecule id or with a non-positive percent are
// dropped, as are repeated molecules.
func (c *Composer) Restore(d Draft) {
	c.Reset()
	c.SetName(d.Name)
	c.SetCategory(d.Category)
	for _, line := range d.Components {
		if strings.TrimSpace(line.MoleculeID) == "" || line.Percent <= 0 || c.has(line.MoleculeID) {
			continue
		}
		c.draft.Components = append(c.draft.Components, line)
	}
}

func (c *Composer) has(moleculeID string) bool {
	return slices.ContainsFunc(c.draft.Components, func(l Line) bool { return l.MoleculeID == moleculeID })
}

func (c *Composer) percentTotal() float64 {
	total := 0.0
	for _, line := range c.draft.Components {
		total += line.Percent
	}
	return total
}
