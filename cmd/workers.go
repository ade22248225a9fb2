package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harborworks/slipway/app"
	"github.com/harborworks/slipway/config"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Worker roster commands",
}

var workersLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the worker roster",
	RunE:  runWorkersLs,
}

func init() {
	workersCmd.AddCommand(workersLsCmd)
	rootCmd.AddCommand(workersCmd)
}

func runWorkersLs(cmd *cobra.Command, args []string) error {
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

	workers, err := svc.Registry.ListWorkers()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSKILLS\tAVAILABILITY")
	for _, wk := range workers {
		skills := make([]string, len(wk.Skills))
		for i, s := range wk.Skills {
			skills[i] = string(s)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			wk.ID, wk.Name, strings.Join(skills, ","), wk.Availability)
	}
	return w.Flush()
}
