package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	seriesCmd := &cobra.Command{
		Use:   "series <mangaId>",
		Short: "Fetch and print every configured field for a series",
		Args:  cobra.ExactArgs(1),
		RunE:  runSeries,
	}
	fieldCmd := &cobra.Command{
		Use:   "field <mangaId> <field>",
		Short: "Fetch and print a single field for a series",
		Args:  cobra.ExactArgs(2),
		RunE:  runField,
	}
	fieldsCmd := &cobra.Command{
		Use:   "fields",
		Short: "List the configured field rules",
		Args:  cobra.NoArgs,
		RunE:  runFields,
	}
	rootCmd.AddCommand(seriesCmd, fieldCmd, fieldsCmd)
}

func runSeries(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.svc.SeriesInfo(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(rec)
}

func runField(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	field := args[1]
	v, err := a.svc.FieldInfo(cmd.Context(), args[0], field)
	if err != nil {
		return err
	}
	if cfg.WrapFieldResponse {
		return printJSON(map[string]any{field: v})
	}
	return printJSON(v)
}

func runFields(_ *cobra.Command, _ []string) error {
	rules, err := loadRules(cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTRANSFORM\tSELECTOR\tATTR\tPATTERN")
	for _, spec := range rules.Specs() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", spec.Name, spec.Transform, spec.Selector, spec.Attr, spec.Pattern)
	}
	return w.Flush()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
