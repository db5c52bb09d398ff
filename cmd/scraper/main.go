// Command scraper runs one scraper from the command line and prints the run
// as indented JSON on stdout. Logs go to stderr.
//
// Usage:
//
//	scraper champions --url https://gol.gg/champion/list/season-S14/split-ALL/tournament-ALL/ --season S14
//	scraper teams --file rawhtml/teams.html --save
//	scraper tournaments --seasons S13,S14 --save
//	scraper matches --tournament "LCK Summer 2024" --save
//	scraper kinds
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	sonic "github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/esports-stats/internal/app"
	"github.com/riskibarqy/esports-stats/internal/config"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/scrape/scraper"
	"github.com/riskibarqy/esports-stats/internal/usecase"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "scraper",
		Short:        "Scrape esports statistics pages",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	for _, kind := range scraper.Kinds() {
		root.AddCommand(scrapeCmd(kind, stdout, stderr))
	}
	root.AddCommand(kindsCmd(stdout))
	return root
}

type scrapeFlags struct {
	url         string
	file        string
	season      string
	seasons     []string
	tournaments []string
	save        bool
}

func scrapeCmd(kind scraper.Kind, stdout, stderr io.Writer) *cobra.Command {
	var flags scrapeFlags
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("Scrape %s", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd.Context(), kind, flags, stdout, stderr)
		},
	}
	cmd.Flags().StringVar(&flags.url, "url", "", "Page URL to fetch")
	cmd.Flags().StringVar(&flags.file, "file", "", "Saved HTML file (or tournament list directory) to read instead of the URL")
	cmd.Flags().StringVar(&flags.season, "season", "", "Season label attached to the records, e.g. S14")
	cmd.Flags().StringSliceVar(&flags.seasons, "seasons", nil, "Season files to read (tournaments)")
	cmd.Flags().StringSliceVar(&flags.tournaments, "tournament", nil, "Tournament names to scrape (matches)")
	cmd.Flags().BoolVar(&flags.save, "save", false, "Persist the scraped records")
	return cmd
}

func kindsCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List available scrapers",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, kind := range scraper.Kinds() {
				if _, err := fmt.Fprintln(stdout, kind); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func runScrape(ctx context.Context, kind scraper.Kind, flags scrapeFlags, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewConsole(stderr, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	services, err := app.NewServices(cfg, logger)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer func() {
		if err := services.Close(); err != nil {
			logger.Warn("close store failed", "error", err)
		}
	}()

	run, err := services.Scrape.Run(ctx, usecase.ScrapeCommand{
		Kind:        string(kind),
		SourceURL:   flags.url,
		FilePath:    flags.file,
		Season:      flags.season,
		Seasons:     flags.seasons,
		Tournaments: flags.tournaments,
		Save:        flags.save,
	})
	if err != nil {
		return err
	}

	out, err := sonic.ConfigStd.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}
