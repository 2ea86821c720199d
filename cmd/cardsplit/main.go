// Command cardsplit splits flashcards with long answers into several short
// cards using an LLM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/teilomillet/cardsplit/config"
	"github.com/teilomillet/cardsplit/internal/app"
	"github.com/teilomillet/cardsplit/llm"
	"github.com/teilomillet/cardsplit/notes"
	"github.com/teilomillet/cardsplit/splitter"
	"github.com/teilomillet/cardsplit/utils"
)

// cmdFlags holds all command-line flags
type cmdFlags struct {
	configPath  string
	notesPath   string
	query       string
	provider    string
	model       string
	debugLevel  string
	timeout     time.Duration
	dryRun      bool
	initConfig  bool
	printSchema bool
}

// parseFlags parses command-line flags. Defaults come from cfg, so flags
// override CARDSPLIT_* variables.
func parseFlags(cfg *config.Config) *cmdFlags {
	flags := &cmdFlags{}
	flag.StringVar(&flags.configPath, "config", cfg.ConfigPath, "Settings file (JSON)")
	flag.StringVar(&flags.notesPath, "notes", cfg.NotesPath, "Notes collection file (JSON)")
	flag.StringVar(&flags.query, "query", cfg.Query, "Search query, e.g. \"deck:Internal tag:med\"")
	flag.StringVar(&flags.provider, "provider", cfg.Provider, "Override the provider (openai, gemini)")
	flag.StringVar(&flags.model, "model", cfg.Model, "Override the model")
	flag.StringVar(&flags.debugLevel, "debug-level", cfg.LogLevel.String(), "Log level (off, error, warn, info, debug)")
	flag.DurationVar(&flags.timeout, "timeout", cfg.Timeout, "Timeout of one provider request")
	flag.BoolVar(&flags.dryRun, "dry-run", cfg.DryRun, "List the notes that would be split and exit")
	flag.BoolVar(&flags.initConfig, "init-config", false, "Write the settings file with numbered keys and exit")
	flag.BoolVar(&flags.printSchema, "print-schema", false, "Print the JSON schema of the expected model output and exit")
	flag.Parse()
	return flags
}

func main() {
	// A missing .env is normal; credentials may already be in the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		exitWithError("Error loading configuration: %v\n", err)
	}
	flags := parseFlags(cfg)

	var level utils.LogLevel
	if err := level.UnmarshalText([]byte(flags.debugLevel)); err != nil {
		exitWithError("Error: %v\n", err)
	}
	config.ApplyOptions(cfg,
		config.SetConfigPath(flags.configPath),
		config.SetNotesPath(flags.notesPath),
		config.SetQuery(flags.query),
		config.SetProvider(flags.provider),
		config.SetModel(flags.model),
		config.SetTimeout(flags.timeout),
		config.SetLogLevel(level),
		config.SetDryRun(flags.dryRun),
	)

	switch {
	case flags.printSchema:
		if err := printSchema(os.Stdout); err != nil {
			exitWithError("Error generating schema: %v\n", err)
		}
		return
	case flags.initConfig:
		if err := initConfig(cfg.ConfigPath); err != nil {
			exitWithError("Error writing settings: %v\n", err)
		}
		fmt.Printf("Settings written to %s\n", cfg.ConfigPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		exitWithError("Error: %v\n", err)
	}
}

// exitWithError prints an error message and exits
func exitWithError(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func printSchema(w io.Writer) error {
	data, err := llm.CardListSchemaJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// initConfig writes the defaults to a new settings file, or rewrites an
// existing one with numbered keys only.
func initConfig(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.SaveFile(path, nil, config.DefaultNumbered())
	}
	settings, raw, err := config.LoadSettings(path)
	if err != nil {
		return err
	}
	return config.SaveFile(path, raw, settings.Numbered(raw))
}

// run builds the application and processes one batch. Per-note failures are
// part of the report, not errors.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	var (
		settings *config.Settings
		runner   *splitter.Runner
		store    *notes.Store
		logger   utils.Logger
	)
	fxApp := fx.New(app.Options(cfg), fx.Populate(&settings, &runner, &store, &logger))
	if err := fxApp.Err(); err != nil {
		return err
	}
	if err := fxApp.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fxApp.Stop(stopCtx); err != nil {
			logger.Warn("Shutdown failed", "error", err)
		}
	}()

	ids, err := store.FindNotes(ctx, cfg.Query)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No notes matched the given search query.")
		return nil
	}

	selected, err := runner.Select(ctx, ids, settings)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		fmt.Fprintf(out, "No notes had an answer longer than %d characters in field '%s'.\n",
			settings.MaxAnswerChars, settings.AnswerField)
		return nil
	}

	if cfg.DryRun {
		return listSelected(ctx, out, store, selected, settings)
	}

	fmt.Fprintf(out, "Found %d notes with long answers. Splitting with %s (%s)...\n",
		len(selected), settings.Provider, settings.Model)

	report, err := runner.Run(ctx, selected, settings)
	if report != nil {
		for _, f := range report.Failures {
			fmt.Fprintf(out, "\n%s\n", f.Message)
		}
		fmt.Fprintf(out, "\n%s\n", report.Summary())
	}
	return err
}

func listSelected(ctx context.Context, out io.Writer, store *notes.Store, ids []int64, settings *config.Settings) error {
	fmt.Fprintf(out, "%d notes would be split:\n", len(ids))
	for _, id := range ids {
		note, err := store.GetNote(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %d  %4d chars  %s\n", id,
			utils.RuneLen(note.Field(settings.AnswerField)),
			utils.Truncate(note.Field(settings.QuestionField), 60))
	}
	return nil
}
