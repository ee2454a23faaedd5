package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"FinScreen/internal/di"
	"FinScreen/internal/domain/models"
	"FinScreen/pkg/config"
)

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "finscreen",
		Short:         "Download annual reports from EDINET and screen them for value stocks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config/config.yaml", "config file path")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "download",
			Short: "Fetch the XBRL instance of every annual report in the date range",
			RunE:  runDownload,
		},
		&cobra.Command{
			Use:   "screen",
			Short: "Screen stored reports and print the companies that pass",
			RunE:  runScreen,
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Serve screening results and run triggers over HTTP",
			RunE:  runServe,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}
	from, to, err := cfg.DateRange(time.Now())
	if err != nil {
		return err
	}

	collector, cleanup, err := di.InitializeDownloader(cfg)
	if err != nil {
		return fmt.Errorf("downloader initialization failed: %w", err)
	}
	defer cleanup()

	sum, err := collector.Collect(cmd.Context(), from, to)
	fmt.Fprintln(cmd.OutOrStdout(), sum.String())
	return err
}

func runScreen(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	from, to, err := cfg.DateRange(time.Now())
	if err != nil {
		return err
	}

	run, cleanup, err := di.InitializeScreening(cfg)
	if err != nil {
		return fmt.Errorf("screening initialization failed: %w", err)
	}
	defer cleanup()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	writeHeader(tw)
	sum, err := run.Run(cmd.Context(), from, to, func(r models.ScreeningResult) error {
		writeRow(tw, r)
		return tw.Flush()
	})
	if ferr := tw.Flush(); err == nil {
		err = ferr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nrun %s: %d artifacts, %d candidates, %d unreadable, %d passed\n",
		sum.RunID, sum.Artifacts, sum.Candidates, sum.Unreadable, sum.Results)
	return err
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer cleanup()

	return app.Run(cmd.Context())
}

func writeHeader(w io.Writer) {
	fmt.Fprintln(w, "COMPANY\tCODE\tSCORE RATIO\tPER\tCRITICAL\tPRICE\tINDUSTRY\tANALYST\tPICK")
}

func writeRow(w io.Writer, r models.ScreeningResult) {
	fmt.Fprintf(w, "%s\t%s\t%.3f\t%.2f\t%.3f\t%.0f\t%s\t%s\t%s\n",
		r.CompanyName, r.CompanyCode, r.ScoreRatio, r.PriceEarningsRatio, r.CriticalRatio,
		r.StockPrice, r.IndustryName, r.AnalystNote, r.PickNote)
}
