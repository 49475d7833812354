package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/eventsync/internal/entities"
	"github.com/mrlokans/eventsync/internal/orchestrator"
	"github.com/mrlokans/eventsync/internal/runner"
)

// FeedImportCommand imports one feed source.
type FeedImportCommand struct {
	Name   string
	Source string

	URL               string
	DatabasePath      string
	DryRun            bool
	PopulateMissing   bool
	UpdateMatching    bool
	UpdateAllMatching bool
	Verbose           bool

	Mode orchestrator.Mode
	out  io.Writer
}

// NewFeedImportCommand imports the primary feed.
func NewFeedImportCommand() *FeedImportCommand {
	return &FeedImportCommand{Name: "feed-import", Source: entities.SourceGlobal, out: os.Stdout}
}

// NewSplitImportCommand imports the secondary article feed.
func NewSplitImportCommand() *FeedImportCommand {
	return &FeedImportCommand{Name: "split-import", Source: entities.SourceSplit, out: os.Stdout}
}

// ParseFlags parses command line flags. At most one mode flag may be set.
func (cmd *FeedImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)

	fs.StringVar(&cmd.URL, "url", "", "Feed URL (overrides the configured URL and the enabled toggle)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to a sqlite database (overrides DATABASE_* settings)")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Report what would change without writing")
	fs.BoolVar(&cmd.PopulateMissing, "populate-missing", false, "Only fill empty fields of existing entries")
	fs.BoolVar(&cmd.UpdateMatching, "update-matching", false, "Update non-key fields of entries matched by title and dates")
	fs.BoolVar(&cmd.UpdateAllMatching, "update-all-matching", false, "Update all fields of matched entries and replace their cover image")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable debug logging and list item errors")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s %s [options]\n\n", os.Args[0], cmd.Name)
		fmt.Fprintf(fs.Output(), "Import the %s feed into the entries table.\n\n", cmd.Source)
		fmt.Fprintf(fs.Output(), "Without -url the feed URL and enabled toggle come from the settings table\n")
		fmt.Fprintf(fs.Output(), "or the %s environment variable.\n\n", strings.ToUpper(entities.FeedSettingKey(cmd.Source, entities.SettingSuffixURL)))
		fmt.Fprintf(fs.Output(), "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nExamples:\n")
		fmt.Fprintf(fs.Output(), "  %s %s -dry-run -verbose\n", os.Args[0], cmd.Name)
		fmt.Fprintf(fs.Output(), "  %s %s -populate-missing\n", os.Args[0], cmd.Name)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, err := cmd.selectMode()
	if err != nil {
		return err
	}
	cmd.Mode = mode
	return nil
}

func (cmd *FeedImportCommand) selectMode() (orchestrator.Mode, error) {
	flags := []struct {
		set  bool
		mode orchestrator.Mode
	}{
		{cmd.DryRun, orchestrator.ModeDryRun},
		{cmd.PopulateMissing, orchestrator.ModePopulateMissing},
		{cmd.UpdateMatching, orchestrator.ModeUpdateMatching},
		{cmd.UpdateAllMatching, orchestrator.ModeUpdateAllMatching},
	}

	mode := orchestrator.ModeImport
	var selected []string
	for _, f := range flags {
		if f.set {
			mode = f.mode
			selected = append(selected, "-"+string(f.mode))
		}
	}
	if len(selected) > 1 {
		return "", fmt.Errorf("flags %s are mutually exclusive", strings.Join(selected, ", "))
	}
	return mode, nil
}

// Run executes the import. A disabled feed is reported and is not an error.
func (cmd *FeedImportCommand) Run(ctx context.Context) error {
	cfg, err := loadConfig(cmd.DatabasePath, cmd.Verbose)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	r, err := runner.NewFromConfig(ctx, cfg, db)
	if err != nil {
		return err
	}

	return cmd.execute(ctx, r)
}

func (cmd *FeedImportCommand) execute(ctx context.Context, r feedRunner) error {
	fmt.Fprintf(cmd.out, "Import %s (%s)\n", cmd.Source, cmd.Mode)

	stats, err := r.Run(ctx, runner.Request{Source: cmd.Source, Mode: cmd.Mode, URL: cmd.URL})
	if errors.Is(err, runner.ErrFeedDisabled) {
		fmt.Fprintf(cmd.out, "Feed %s is disabled, nothing to do.\n", cmd.Source)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.out, stats.Summary())
	if cmd.Verbose && len(stats.ItemErrors) > 0 {
		fmt.Fprintf(cmd.out, "\n%d items failed:\n", len(stats.ItemErrors))
		for _, itemErr := range stats.ItemErrors {
			fmt.Fprintf(cmd.out, "  [ERROR] %v\n", itemErr)
		}
	}
	return nil
}

// feedRunner is the part of runner.Runner a command needs.
type feedRunner interface {
	Run(ctx context.Context, req runner.Request) (*orchestrator.Stats, error)
}
