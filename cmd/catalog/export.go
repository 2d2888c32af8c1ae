package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"flaromlab/internal/catalog"
	"flaromlab/internal/filter"
	"flaromlab/models"
)

const (
	formatJSON    = "json"
	formatMsgpack = "msgpack"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		entityName string
		format     string
		outPath    string
		filters    []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one collection, optionally filtered, as JSON or msgpack",
		Example: `  catalog export --entity oils --filter family=ROSACEAE
  catalog export --entity formulas --filter band=75+ --format msgpack --out formulas.msgpack`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, ok := models.ParseEntity(entityName)
			if !ok {
				return fmt.Errorf("unknown entity %q", entityName)
			}
			format = strings.ToLower(strings.TrimSpace(format))
			if format != formatJSON && format != formatMsgpack {
				return fmt.Errorf("unsupported format %q", format)
			}
			values, err := parseFilters(filters)
			if err != nil {
				return err
			}

			snap, err := opts.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			if err := snap.StatusOf(entity).Err(); err != nil {
				return err
			}
			items, err := selectItems(snap, entity, values)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				file, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}
			return encode(out, format, items)
		},
	}
	cmd.Flags().StringVar(&entityName, "entity", string(models.EntityOils), "collection to export (oils, molecules, formulas, synthesis)")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format (json, msgpack)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file; stdout when empty")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter as key=value, e.g. q=rose, family=ROSACEAE, band=35-75 (repeatable)")
	return cmd
}

func parseFilters(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("filter %q must be key=value", pair)
		}
		values.Set(key, strings.TrimSpace(value))
	}
	return values, nil
}

func selectItems(snap *catalog.Snapshot, entity models.Entity, values url.Values) (any, error) {
	criteria, err := filter.FromQuery(values, entity)
	if err != nil {
		return nil, err
	}
	switch entity {
	case models.EntityOils:
		return filter.Apply(snap.Oils, filter.OilFields, criteria), nil
	case models.EntityMolecules:
		return filter.Apply(snap.Molecules, filter.MoleculeFields, criteria), nil
	case models.EntityFormulas:
		return filter.Apply(snap.Formulas, filter.FormulaFields, criteria), nil
	case models.EntitySynthesis:
		return filter.Apply(snap.Synthesis, filter.SynthesisFields, criteria), nil
	}
	return nil, fmt.Errorf("unknown entity %q", entity)
}

func encode(w io.Writer, format string, items any) error {
	if format == formatMsgpack {
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(items)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
