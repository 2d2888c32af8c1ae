package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"flaromlab/internal/catalog"
	"flaromlab/internal/composer"
	applog "flaromlab/internal/log"
	"flaromlab/models"
)

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

// Column headers understood by import-formulas.
const (
	columnFormula  = "Formula Name"
	columnCategory = "Category"
	columnID       = "Molecule ID"
	columnMolecule = "Molecule"
	columnPercent  = "Percent"
)

// importedFormula is one formula's rows from the CSV, in file order.
type importedFormula struct {
	name     string
	category string
	lines    []importedLine
}

type importedLine struct {
	row        int
	moleculeID string
	percent    string
}

func newImportFormulasCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import-formulas <csv>",
		Short: "Compose formulas from a CSV and append them to the saved formula list",
		Long: `Rows are grouped by "Formula Name". Each group is priced against the
molecule catalog and saved only when its percentages sum to 100 (±0.1).
Columns: Formula Name, Category, Molecule ID or Molecule, Percent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			csvPath := args[0]
			if strings.TrimSpace(csvPath) == "" {
				return fmt.Errorf("csv path must not be empty")
			}
			records, err := readCSV(csvPath)
			if err != nil {
				return fmt.Errorf("read csv: %w", err)
			}
			groups, err := groupFormulas(records)
			if err != nil {
				return err
			}

			snap, err := opts.loadCatalog(ctx)
			if err != nil {
				return err
			}
			if err := snap.StatusOf(models.EntityMolecules).Err(); err != nil {
				return fmt.Errorf("molecules are required to price formulas: %w", err)
			}
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}

			index := snap.MoleculeIndex()
			byName := moleculesByName(index)
			c := composer.New(index, store, composer.WithMarkup(opts.cfg.Composer.Markup))

			imported, skipped := 0, 0
			for _, group := range groups {
				c.Reset()
				c.SetName(group.name)
				c.SetCategory(group.category)
				for _, line := range group.lines {
					id := line.moleculeID
					if _, known := index.Lookup(id); !known {
						if resolved, ok := byName[strings.ToLower(id)]; ok {
							id = resolved
						}
					}
					if !c.AddText(id, strconv.FormatFloat(parseFirstNumber(line.percent), 'f', -1, 64)) {
						applog.Warn(ctx, "import row ignored", "row", line.row, "formula", group.name, "molecule", line.moleculeID, "percent", line.percent)
					}
				}

				formula, err := c.Save(ctx)
				if err != nil {
					var invalid *composer.ValidationError
					if errors.As(err, &invalid) {
						skipped++
						fmt.Fprintf(cmd.ErrOrStderr(), "skipped %q: %v\n", group.name, invalid)
						continue
					}
					return fmt.Errorf("save %q: %w", group.name, err)
				}
				imported++
				applog.Info(ctx, "formula imported", "id", formula.ID, "name", formula.Name, "cost", formula.CostPerLiter)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d formulas from %s (%d skipped)\n", imported, filepath.Base(csvPath), skipped)
			return nil
		},
	}
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[strings.TrimSpace(key)] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

// groupFormulas collects rows per formula name, keeping first-seen order.
// The first non-empty category of a group wins.
func groupFormulas(records []map[string]string) ([]*importedFormula, error) {
	var groups []*importedFormula
	byName := map[string]*importedFormula{}
	for i, record := range records {
		name := normalizeText(record[columnFormula])
		if name == "" {
			return nil, fmt.Errorf("row %d: %q is required", i+2, columnFormula)
		}
		group, ok := byName[strings.ToLower(name)]
		if !ok {
			group = &importedFormula{name: name}
			byName[strings.ToLower(name)] = group
			groups = append(groups, group)
		}
		if group.category == "" {
			group.category = normalizeValue(record[columnCategory])
		}
		molecule := normalizeValue(record[columnID])
		if molecule == "" {
			molecule = normalizeValue(record[columnMolecule])
		}
		group.lines = append(group.lines, importedLine{row: i + 2, moleculeID: molecule, percent: record[columnPercent]})
	}
	return groups, nil
}

func moleculesByName(index *catalog.MoleculeIndex) map[string]string {
	names := map[string]string{}
	for _, molecule := range index.Molecules() {
		key := strings.ToLower(strings.TrimSpace(molecule.Name))
		if _, taken := names[key]; key != "" && !taken {
			names[key] = molecule.ID
		}
	}
	return names
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func normalizeText(value string) string {
	value = normalizeValue(value)
	if value == "" {
		return value
	}
	value = cleanWhitespace.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func parseFirstNumber(value string) float64 {
	value = normalizeValue(value)
	if value == "" {
		return 0
	}

	matches := numberPattern.FindString(value)
	if matches == "" {
		return 0
	}

	parsed, err := strconv.ParseFloat(matches, 64)
	if err != nil {
		return 0
	}
	return parsed
}
