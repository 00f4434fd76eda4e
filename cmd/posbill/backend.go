package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"lounge-pos-billing/internal/accrual"
	"lounge-pos-billing/internal/jobs"
	"lounge-pos-billing/internal/logger"
)

var refreshSessionsFlag time.Duration

var refreshRateCmd = &cobra.Command{
	Use:   "refresh-rate",
	Short: "Pull the current exchange rate from the backend once",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cfg, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := jobs.NewJobRunner(app.Rates, cfg).RunJob(jobs.JobRefreshExchangeRate); err != nil {
			return err
		}
		rate, err := app.Rates.Current(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, rate)
	},
}

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Print the running cost of every active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		readings, err := app.Billing.ListActiveCosts(cmd.Context())
		if err != nil {
			return err
		}
		printReadings(cmd, readings)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of active session costs until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cfg, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		monitor := accrual.NewMonitor(func(readings []accrual.Reading) {
			printReadings(cmd, readings)
		}, accrual.WithInterval(cfg.GetTickInterval()))

		load := func() {
			sessions, err := app.Store.SessionRepository.ListActive(ctx)
			if err != nil {
				logger.Error("Failed to list active sessions", "error", err)
				return
			}
			monitor.SetSessions(sessions)
		}
		load()
		monitor.Start(ctx)
		defer monitor.Stop()

		ticker := time.NewTicker(refreshSessionsFlag)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				load()
			}
		}
	},
}

func printReadings(cmd *cobra.Command, readings []accrual.Reading) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tPC\tMINUTES\tUSD\tLBP")
	for _, r := range readings {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.SessionID, r.PCID, r.ElapsedMinutes, r.Cost.USD.StringFixed(2), r.Cost.LBP.StringFixed(0))
	}
	tw.Flush()
}

func init() {
	watchCmd.Flags().DurationVar(&refreshSessionsFlag, "reload", 30*time.Second, "How often the active session list is reloaded")

	rootCmd.AddCommand(refreshRateCmd, activeCmd, watchCmd)
}
