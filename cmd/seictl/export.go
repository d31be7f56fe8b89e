package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/I2Cprogramacion/SEI-sub000/internal/export"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

var exportFlags struct {
	dataset string
	format  string
	fields  string
	output  string
	maxRows int
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a catalog dataset",
	Long: `Export the selected fields of a dataset as csv, an excel-compatible
workbook, or the structured JSON payload (pdf).

Datasets: investigadores, proyectos, instituciones, publicaciones.

Examples:
  seictl export --type investigadores --fields nombre,correo
  seictl export --type proyectos --fields titulo,estado --format excel --out proyectos.xls`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.dataset, "type", "", "dataset key")
	exportCmd.Flags().StringVar(&exportFlags.format, "format", "csv", "output format: csv, excel, pdf")
	exportCmd.Flags().StringVar(&exportFlags.fields, "fields", "", "comma separated field keys")
	exportCmd.Flags().StringVarP(&exportFlags.output, "out", "o", "", "output file (default: stdout)")
	exportCmd.Flags().IntVar(&exportFlags.maxRows, "max-rows", 0, "row cap, 0 means no cap (default: EXPORT_MAX_ROWS)")
	_ = exportCmd.MarkFlagRequired("type")
	_ = exportCmd.MarkFlagRequired("fields")
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(exportFlags.format)
	if err != nil {
		return err
	}
	job := export.Job{
		Dataset: exportFlags.dataset,
		Fields:  export.ParseFields(exportFlags.fields),
		Format:  format,
	}
	if _, err := export.Plan(job); err != nil {
		return err
	}

	maxRows := appConfig.Export.MaxRows
	if cmd.Flags().Changed("max-rows") {
		maxRows = exportFlags.maxRows
	}

	return withStore(cmd.Context(), func(st store.Store) error {
		res, err := export.NewEngine(st, maxRows).Run(cmd.Context(), job)
		if err != nil {
			return err
		}

		if exportFlags.output == "" {
			return writeExport(cmd, cmd.OutOrStdout(), res)
		}
		if err := writeFile(cmd, exportFlags.output, res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(res.Rows), exportFlags.output)
		return nil
	})
}

// writeFile renders res to path. A failed close is reported, since it can
// mean the file is truncated.
func writeFile(cmd *cobra.Command, path string, res *export.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return writeExport(cmd, f, res)
}

func writeExport(cmd *cobra.Command, w io.Writer, res *export.Result) error {
	if err := export.Write(cmd.Context(), w, res); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
