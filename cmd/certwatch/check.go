package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/aleister1102/certwatch/internal/models"
	"github.com/aleister1102/certwatch/internal/monitor"

	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single scan cycle and print its summary",
		Long: "Run a single scan cycle. Notification state starts empty, so every target " +
			"currently in an alarm state is reported.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.buildMonitor(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			defer rt.cleanup.run()

			summary, err := rt.service.RunCycle(cmd.Context())
			if summary != nil {
				printSummary(cmd.OutOrStdout(), summary)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log messages instead of delivering them")
	return cmd
}

func printSummary(w io.Writer, s *monitor.CycleSummary) {
	fmt.Fprintf(w, "Cycle %s finished in %s\n", s.CycleID, s.Duration().Round(time.Millisecond))
	fmt.Fprintf(w, "  owners: %d, targets: %d, checked: %d, skipped: %d\n", s.Owners, s.Targets, s.Checked, s.Skipped)
	fmt.Fprintf(w, "  fetch errors: %d, alerts sent: %d, recovered: %d, delivery failures: %d\n",
		s.FetchErrors, s.AlertsSent, s.Recovered, s.DeliveryFailures)

	classes := make([]models.Classification, 0, len(s.Classifications))
	for c := range s.Classifications {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	for _, c := range classes {
		fmt.Fprintf(w, "  %s: %d\n", c, s.Classifications[c])
	}
	if !s.ReferenceAvailable {
		fmt.Fprintln(w, "  reference document unavailable, certificate matching skipped")
	}
}
