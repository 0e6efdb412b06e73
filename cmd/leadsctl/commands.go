package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lead-assistant/internal/contact"
	"lead-assistant/internal/storage"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

type options struct {
	jsonPath string
	csvPath  string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "leadsctl",
		Short:         "Inspect and export captured leads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.jsonPath, "contacts", envOr("CONTACTS_JSON_PATH", "data/contacts.json"), "path to the contacts JSON file")
	root.PersistentFlags().StringVar(&opts.csvPath, "contacts-csv", envOr("CONTACTS_CSV_PATH", "data/contacts.csv"), "path to the contacts CSV file")

	root.AddCommand(newCountCmd(opts), newListCmd(opts), newExportCmd(opts))
	return root
}

func (o *options) store() (*storage.ContactStore, error) {
	return storage.NewContactStore(o.jsonPath, o.csvPath, nil)
}

func newCountCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored leads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.store()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s.Count())
			return err
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print stored leads, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.store()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range s.LoadAll() {
				if _, err := fmt.Fprintln(out, formatLine(r)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func formatLine(r contact.Record) string {
	fields := []string{r.Timestamp.Format("2006-01-02 15:04"), string(r.Source), r.FullName()}
	for _, v := range []string{r.PhoneNumber, r.Email} {
		if v != "" {
			fields = append(fields, v)
		}
	}
	if r.Username != "" {
		fields = append(fields, "@"+r.Username)
	}
	return strings.Join(fields, "\t")
}

func newExportCmd(opts *options) *cobra.Command {
	var format, outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored leads as JSON or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatCSV {
				return fmt.Errorf("unsupported format %q: use %s or %s", format, formatJSON, formatCSV)
			}
			s, err := opts.store()
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}
			return export(w, format, s.LoadAll())
		},
	}
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or csv")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

func export(w io.Writer, format string, recs []contact.Record) error {
	if format == formatCSV {
		return storage.WriteCSV(w, recs)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}
