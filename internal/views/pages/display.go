package pages

import (
	"fmt"
	"strings"
	"time"

	"flaromlab/models"
)

// DefaultDash returns an em dash when the provided value is empty or whitespace.
func DefaultDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

// Currency renders a dollar amount with two decimals.
func Currency(value float64) string {
	return fmt.Sprintf("$%.2f", value)
}

// MarginLabel renders a markup multiple. Zero-cost formulas have no margin.
func MarginLabel(margin float64) string {
	if margin <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.1fx", margin)
}

// ComponentSummary lists the n largest constituents of an oil, e.g.
// "Linalool 30%, Geraniol 20%".
func ComponentSummary(oil models.Oil, n int) string {
	top := oil.TopComponents(n)
	if len(top) == 0 {
		return DefaultDash("")
	}
	parts := make([]string, len(top))
	for i, share := range top {
		parts[i] = fmt.Sprintf("%s %g%%", share.Name, share.Percent)
	}
	return strings.Join(parts, ", ")
}

// FormatLoadedAt renders the catalog load time, or "never" for a zero time.
func FormatLoadedAt(value time.Time) string {
	if value.IsZero() {
		return "never"
	}
	return value.UTC().Format("02 Jan 2006 15:04 MST")
}
