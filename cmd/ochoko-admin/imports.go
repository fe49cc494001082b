package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ochoko/admin/pkg/catalog"
	"github.com/ochoko/admin/pkg/sakeapi"
)

func (c *cli) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import sakes from a CSV file",
		Long: "The CSV file has the columns prefecture, brewery, location, brand and\n" +
			"brand_kana. brewery and brand are required.",
	}
	cmd.AddCommand(c.importPreviewCmd(), c.importCommitCmd())
	return cmd
}

func encodingFlag(cmd *cobra.Command, enc *string) {
	cmd.Flags().StringVar(enc, "encoding", string(sakeapi.EncodingUTF8SIG), "file encoding: utf-8-sig or cp932")
}

func readUpload(path, enc string) (sakeapi.Upload, error) {
	e := sakeapi.Encoding(enc)
	if !e.Valid() {
		return sakeapi.Upload{}, fmt.Errorf("unknown encoding %q", enc)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return sakeapi.Upload{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return sakeapi.Upload{}, catalog.ErrNoFile
	}
	return sakeapi.Upload{Filename: filepath.Base(path), Encoding: e, Content: data}, nil
}

func (c *cli) importPreviewCmd() *cobra.Command {
	var enc string
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Check a CSV file without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := readUpload(args[0], enc)
			if err != nil {
				return err
			}
			api, err := c.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			p, err := api.PreviewImport(cmd.Context(), up)
			if err != nil {
				return err
			}
			c.printPreview(p)
			if !p.Success {
				return errors.New("the file could not be read")
			}
			return nil
		},
	}
	encodingFlag(cmd, &enc)
	return cmd
}

func (c *cli) importCommitCmd() *cobra.Command {
	var (
		enc string
		yes bool
	)
	cmd := &cobra.Command{
		Use:   "commit FILE",
		Short: "Preview a CSV file, then import it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := readUpload(args[0], enc)
			if err != nil {
				return err
			}
			api, err := c.signedIn(cmd.Context())
			if err != nil {
				return err
			}

			p, err := api.PreviewImport(cmd.Context(), up)
			if err != nil {
				return err
			}
			c.printPreview(p)
			if !p.Success {
				return errors.New("the file could not be read, nothing was imported")
			}
			if !yes {
				ok, err := c.confirm("Import the CSV data? This cannot be undone.")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(c.out, "Aborted")
					return nil
				}
			}

			res, err := api.CommitImport(cmd.Context(), up)
			if err != nil {
				return err
			}
			c.printResult(res)
			if !res.Success {
				return errors.New("the import failed")
			}
			return nil
		},
	}
	encodingFlag(cmd, &enc)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (c *cli) printPreview(p sakeapi.ImportPreview) {
	fmt.Fprintf(c.out, "Rows: %d (encoding %s)\n", p.TotalRows, p.EncodingUsed)
	w := table(c.out)
	fmt.Fprintf(w, "  to process\t%d\n", p.Stats.RowsToProcess)
	fmt.Fprintf(w, "  to skip\t%d\n", p.Stats.RowsToSkip)
	fmt.Fprintf(w, "  new breweries\t%d\n", p.Stats.BreweriesToCreate)
	fmt.Fprintf(w, "  new sakes\t%d\n", p.Stats.SakesToCreate)
	fmt.Fprintf(w, "  existing sakes\t%d\n", p.Stats.SakesExisting)
	_ = w.Flush()

	if len(p.Preview) > 0 {
		fmt.Fprintf(c.out, "Sample (first %d rows):\n", len(p.Preview))
		w = table(c.out)
		for _, r := range p.Preview {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", r.BreweryName, r.BreweryPrefecture, r.SakeName, r.SakeKana)
		}
		_ = w.Flush()
	}
	c.printErrors(p.Errors)
}

func (c *cli) printResult(res sakeapi.ImportResult) {
	fmt.Fprintln(c.out, "Import finished")
	w := table(c.out)
	fmt.Fprintf(w, "  rows processed\t%d\n", res.Stats.RowsProcessed)
	fmt.Fprintf(w, "  rows skipped\t%d\n", res.Stats.RowsSkipped)
	fmt.Fprintf(w, "  new sakes\t%d\n", res.Stats.SakesCreated)
	fmt.Fprintf(w, "  existing sakes\t%d\n", res.Stats.SakesExisting)
	fmt.Fprintf(w, "  new breweries\t%d\n", res.Stats.BreweriesCreated)
	fmt.Fprintf(w, "  updated breweries\t%d\n", res.Stats.BreweriesUpdated)
	fmt.Fprintf(w, "  existing breweries\t%d\n", res.Stats.BreweriesExisting)
	_ = w.Flush()
	c.printErrors(res.Stats.Errors)
}

func (c *cli) printErrors(errs []string) {
	if len(errs) == 0 {
		return
	}
	shown, more := catalog.SummarizeErrors(errs, catalog.MaxShownErrors)
	fmt.Fprintf(c.out, "Warnings (%d):\n", len(errs))
	for _, e := range shown {
		fmt.Fprintf(c.out, "  %s\n", e)
	}
	if more > 0 {
		fmt.Fprintf(c.out, "  ...and %d more\n", more)
	}
}
