package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harborworks/slipway/app"
	"github.com/harborworks/slipway/config"
	"github.com/harborworks/slipway/core/progress"
	"github.com/harborworks/slipway/pkg/export"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Planning board commands",
}

var boardSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print per-unit status and progress",
	RunE:  runBoardSummary,
}

var exportFormat string

var boardExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the production plan as JSON or CSV",
	RunE:  runBoardExport,
}

func init() {
	boardExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format: json or csv")
	boardCmd.AddCommand(boardSummaryCmd)
	boardCmd.AddCommand(boardExportCmd)
	rootCmd.AddCommand(boardCmd)
}

func runBoardSummary(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// The summary never publishes anything, so keep the shop floor quiet.
	cfg.Notifier.Enabled = false
	cfg.Metrics.Prometheus.Enabled = false
	cfg.Metrics.Influx.Enabled = false

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "service close: %v\n", err)
		}
	}()

	units, err := svc.Registry.ListUnits()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSTATUS\tPROGRESS")
	for _, u := range units {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\n",
			u.ID, u.Name, u.Category, u.DeriveStatus(), progress.PercentComplete(u))
	}
	return w.Flush()
}

func runBoardExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Notifier.Enabled = false
	cfg.Metrics.Prometheus.Enabled = false
	cfg.Metrics.Influx.Enabled = false

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "service close: %v\n", err)
		}
	}()

	units, err := svc.Registry.ListUnits()
	if err != nil {
		return err
	}
	entries := export.Flatten(units)
	switch exportFormat {
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), entries)
	case "csv":
		return export.WriteCSV(cmd.OutOrStdout(), entries)
	default:
		return fmt.Errorf("unknown format %s", exportFormat)
	}
}
