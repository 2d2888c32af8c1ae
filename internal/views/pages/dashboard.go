package pages

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"flaromlab/internal/analytics"
	"flaromlab/internal/catalog"
	"flaromlab/internal/views/theme"
	"flaromlab/models"
)

// DashboardView is everything the landing page renders.
type DashboardView struct {
	Palette   theme.Palette
	Available bool
	Dashboard analytics.Dashboard
	Status    map[models.Entity]catalog.Status
	Saved     []models.Formula
	LoadedAt  time.Time
}

// Dashboard renders the landing page. An unavailable catalog renders an
// explicit no-data panel instead of zero-valued statistics.
func Dashboard(view DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Flaromlab</title>`)
		p.raw(`<script src="https://unpkg.com/htmx.org@1.9.12"></script></head>`)
		p.raw(`<body class="` + templ.EscapeString(view.Palette.BodyClass) + `" hx-get="/" hx-trigger="formula-saved from:body" hx-select="main" hx-target="main" hx-swap="outerHTML">`)
		p.raw(`<main class="mx-auto max-w-5xl space-y-6 p-8">`)
		p.raw(`<header><h1 class="text-3xl font-semibold">Flaromlab</h1>`)
		p.raw(`<p class="` + templ.EscapeString(view.Palette.MutedClass) + `">Catalog loaded ` + templ.EscapeString(FormatLoadedAt(view.LoadedAt)) + `</p></header>`)

		if !view.Available {
			p.raw(`<section data-state="no-data" class="` + panelClass(view.Palette) + `">`)
			p.raw(`<h2 class="text-xl">No catalog data</h2>`)
			p.raw(`<p>The molecule and formula datasets could not be loaded. Check the data sources and reload.</p>`)
			p.statusList(view)
			p.raw(`</section></main></body></html>`)
			return p.err
		}

		stats := view.Dashboard.Stats
		p.raw(`<section data-state="stats" class="grid grid-cols-2 gap-4 md:grid-cols-4">`)
		p.statCard(view.Palette, "Formulas", strconv.Itoa(stats.TotalFormulas))
		p.statCard(view.Palette, "Molecules", strconv.Itoa(stats.TotalMolecules))
		p.statCard(view.Palette, "Average cost / L", Currency(stats.AverageCost))
		p.statCard(view.Palette, "Average margin", MarginLabel(stats.AverageMargin))
		p.raw(`</section>`)

		p.raw(`<section class="` + panelClass(view.Palette) + `"><h2 class="text-xl">Insights</h2><ul>`)
		for _, insight := range view.Dashboard.Insights {
			p.raw(`<li>` + templ.EscapeString(insight) + `</li>`)
		}
		p.raw(`</ul></section>`)

		p.raw(`<section class="` + panelClass(view.Palette) + `"><h2 class="text-xl">Categories</h2><table><tbody>`)
		for _, row := range view.Dashboard.Breakdown {
			p.raw(fmt.Sprintf(`<tr><td>%s</td><td>%d</td><td>%.1f%%</td></tr>`, templ.EscapeString(row.Category), row.Count, row.Percent))
		}
		p.raw(`</tbody></table></section>`)

		p.raw(`<section class="` + panelClass(view.Palette) + `"><h2 class="text-xl">Most used molecules</h2><ol>`)
		for _, usage := range view.Dashboard.TopUsage {
			p.raw(fmt.Sprintf(`<li>%s <span class="%s">%d formulas</span></li>`, templ.EscapeString(usage.Name), templ.EscapeString(view.Palette.MutedClass), usage.Count))
		}
		p.raw(`</ol></section>`)

		p.raw(`<section class="` + panelClass(view.Palette) + `"><h2 class="text-xl">My formulas</h2>`)
		if len(view.Saved) == 0 {
			p.raw(`<p class="` + templ.EscapeString(view.Palette.MutedClass) + `">No saved formulas yet.</p>`)
		} else {
			p.raw(`<ul>`)
			for _, formula := range view.Saved {
				p.raw(fmt.Sprintf(`<li data-formula-id="%s">%s <span class="%s">%s · %s / L</span></li>`,
					templ.EscapeString(formula.ID),
					templ.EscapeString(DefaultDash(formula.Name)),
					templ.EscapeString(view.Palette.MutedClass),
					templ.EscapeString(DefaultDash(formula.Category)),
					Currency(formula.CostPerLiter)))
			}
			p.raw(`</ul>`)
		}
		p.raw(`</section>`)

		p.statusList(view)
		p.raw(`</main></body></html>`)
		return p.err
	})
}

func panelClass(palette theme.Palette) string {
	return templ.EscapeString(palette.PanelClass + " " + palette.BorderClass)
}

// printer stops writing after the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) statCard(palette theme.Palette, label, value string) {
	p.raw(`<div class="` + panelClass(palette) + `"><p class="` + templ.EscapeString(palette.MutedClass) + `">` + templ.EscapeString(label) + `</p>`)
	p.raw(`<p class="text-2xl ` + templ.EscapeString(palette.AccentClass) + `">` + templ.EscapeString(value) + `</p></div>`)
}

func (p *printer) statusList(view DashboardView) {
	p.raw(`<section class="` + panelClass(view.Palette) + `"><h2 class="text-xl">Sources</h2><ul>`)
	for _, entity := range models.Entities() {
		status, ok := view.Status[entity]
		state := "not loaded"
		switch {
		case !ok:
		case status.Unavailable:
			state = "unavailable: " + status.Reason
		default:
			state = fmt.Sprintf("%d records from %d of %d sources", status.Records, status.Loaded, status.Sources)
		}
		p.raw(fmt.Sprintf(`<li data-entity="%s">%s: %s</li>`, templ.EscapeString(string(entity)), templ.EscapeString(string(entity)), templ.EscapeString(state)))
	}
	p.raw(`</ul></section>`)
}
