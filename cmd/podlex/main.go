package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/podlex/internal"
	"github.com/starford/podlex/internal/articleservice"
	"github.com/starford/podlex/internal/corpus"
	"github.com/starford/podlex/internal/exercise"
	"github.com/starford/podlex/internal/report"
	"github.com/starford/podlex/internal/tokenizer"
	pkgconfig "github.com/starford/podlex/pkg/config"
)

var version = "dev"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("PODLEX_CONFIG"),
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Usage: "Output format: " + strings.Join(report.Formats, ", "),
		Value: report.FormatAuto,
	}
}

// loadConfig reads the config file named by --config. A missing file leaves
// the defaults in place.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	path := cmd.String("config")
	cfg := internal.NewDefaultConfig()
	loaded, err := pkgconfig.LoadOptional(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	logger := internal.NewLogger(cfg.App.LogLevel)
	slog.SetDefault(logger)
	if !loaded {
		logger.Debug("config file not found, using defaults", slog.String("path", path))
	}
	return cfg, nil
}

func articleService(cfg *internal.Config, fetching bool) (*articleservice.Service, error) {
	store, err := internal.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	if !fetching {
		return internal.NewArticleService(cfg, store, nil, slog.Default()), nil
	}
	loader, err := internal.NewLoader(cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	return internal.NewArticleService(cfg, store, loader, slog.Default()), nil
}

func printSyncResult(cmd *cli.Command, res articleservice.SyncResult) {
	w := cmd.Root().Writer
	fmt.Fprintf(w, "written %d, skipped %d, failed %d\n", res.Written, res.Skipped, len(res.Failures))
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  %s: %s\n", f.Identifier, f.Error)
	}
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		if ids, err = articleservice.ReadIdentifiers(cfg.Data.URLsPath()); err != nil {
			return err
		}
	}
	svc, err := articleService(cfg, true)
	if err != nil {
		return err
	}
	res, err := svc.Sync(ctx, ids, cmd.Bool("reload"))
	printSyncResult(cmd, res)
	return err
}

func runReload(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := articleService(cfg, false)
	if err != nil {
		return err
	}
	res, err := svc.Reload(ctx)
	printSyncResult(cmd, res)
	return err
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := articleService(cfg, false)
	if err != nil {
		return err
	}
	analysis, err := svc.Analyze(ctx)
	if err != nil {
		return err
	}
	slog.Info("report written", slog.String("path", svc.ReportPath()), slog.Int("words", report.Total(analysis)))
	return report.Render(cmd.Root().Writer, analysis, cmd.String("format"))
}

func runReport(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	analysis, err := report.ReadJSON(cfg.Data.ReportPath())
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no report at %s, run analyze first", cfg.Data.ReportPath())
	}
	if err != nil {
		return err
	}
	return report.Render(cmd.Root().Writer, analysis, cmd.String("format"))
}

func runInspect(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Args().Len() != 1 {
		return errors.New("inspect takes exactly one page file")
	}
	raw, err := os.ReadFile(cmd.Args().First())
	if err != nil {
		return err
	}
	counts := tokenizer.GroupWordsInList(internal.NewExtractor(cfg).Paragraphs(string(raw)))
	freqs := corpus.TopWords(counts, int(cmd.Int("limit")))

	w := cmd.Root().Writer
	if cmd.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(freqs)
	}
	fmt.Fprintln(w, report.FrequencyTable(freqs))
	fmt.Fprintf(w, "%d distinct words\n", len(counts))
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithLogger(slog.Default()), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithLogger(slog.Default()), internal.WithVersion(version))
}

func runQuiz(ctx context.Context, cmd *cli.Command) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}
	if cmd.Args().Len() != 1 {
		return errors.New("quiz takes exactly one exercise file")
	}
	f, err := os.Open(cmd.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()
	cards, err := exercise.Load(f)
	if err != nil {
		return err
	}
	_, err = exercise.Run(ctx, cards, cmd.Root().Reader, cmd.Root().Writer)
	return err
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "podlex",
		Usage:   "Track the vocabulary each podcast episode introduces, from transcript pages to reports",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "sync",
				Usage:     "Fetch episode pages and store their word counts",
				ArgsUsage: "[identifier...]",
				Action:    runSync,
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "reload", Usage: "Refetch episodes that are already stored"},
				},
			},
			{
				Name:   "reload",
				Usage:  "Re-derive every stored article from its saved page text",
				Action: runReload,
				Flags:  []cli.Flag{configFlag()},
			},
			{
				Name:   "analyze",
				Usage:  "Compute the first-occurrence report and write it to the data directory",
				Action: runAnalyze,
				Flags:  []cli.Flag{configFlag(), formatFlag()},
			},
			{
				Name:   "report",
				Usage:  "Print the last written report",
				Action: runReport,
				Flags:  []cli.Flag{configFlag(), formatFlag()},
			},
			{
				Name:      "inspect",
				Usage:     "Run the transcript pipeline on a local page file and print word counts",
				ArgsUsage: "<page.html>",
				Action:    runInspect,
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{Name: "limit", Usage: "Number of words to show, 0 for all", Value: 30},
					&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, index watcher and scheduled sync",
				Action: runServe,
				Flags:  []cli.Flag{configFlag()},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag()},
			},
			{
				Name:      "quiz",
				Usage:     "Ask the questions of a vocabulary exercise table",
				ArgsUsage: "<exercise.md>",
				Action:    runQuiz,
				Flags:     []cli.Flag{configFlag()},
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
