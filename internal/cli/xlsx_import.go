package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mrlokans/eventsync/internal/database/categories"
	"github.com/mrlokans/eventsync/internal/database/countries"
	"github.com/mrlokans/eventsync/internal/database/entries"
	"github.com/mrlokans/eventsync/internal/importers"
	"github.com/mrlokans/eventsync/internal/spreadsheet"
	"github.com/mrlokans/eventsync/internal/textnorm"
)

// XLSXImportCommand imports entries from an Excel workbook.
type XLSXImportCommand struct {
	FilePath     string
	Sheet        string
	Categories   string
	Country      string
	DatabasePath string
	Verbose      bool

	CategoryIDs []uint
	out         io.Writer
}

func NewXLSXImportCommand() *XLSXImportCommand {
	return &XLSXImportCommand{out: os.Stdout}
}

func (cmd *XLSXImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("xlsx-import", flag.ContinueOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the .xlsx workbook (required)")
	fs.StringVar(&cmd.Sheet, "sheet", "", "Worksheet name (default: first sheet with a title column)")
	fs.StringVar(&cmd.Categories, "categories", "", "Comma-separated category IDs attached to every imported entry")
	fs.StringVar(&cmd.Country, "country", "", "Country ID or name applied to every imported entry")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to a sqlite database (overrides DATABASE_* settings)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable debug logging and list row errors")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s xlsx-import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(fs.Output(), "Import entries from a workbook. Row 1 holds the column headers.\n\n")
		fmt.Fprintf(fs.Output(), "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nExamples:\n")
		fmt.Fprintf(fs.Output(), "  %s xlsx-import -file events.xlsx -categories 3,7 -country Germany\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	ids, err := parseIDList(cmd.Categories)
	if err != nil {
		return fmt.Errorf("invalid -categories: %w", err)
	}
	cmd.CategoryIDs = ids
	return nil
}

func (cmd *XLSXImportCommand) Run(ctx context.Context) error {
	if _, err := os.Stat(cmd.FilePath); err != nil {
		return fmt.Errorf("workbook not found: %s", cmd.FilePath)
	}

	cfg, err := loadConfig(cmd.DatabasePath, cmd.Verbose)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	countryID, err := resolveCountry(ctx, importers.NewCountryResolver(countries.NewRepository(db.DB)), cmd.Country)
	if err != nil {
		return err
	}

	importer := spreadsheet.New(
		entries.NewRepository(db.DB),
		categories.NewRepository(db.DB),
		textnorm.New(),
		cfg.Import.BatchSize,
	)

	fmt.Fprintln(cmd.out, "Spreadsheet Import")
	fmt.Fprintln(cmd.out, "==================")
	fmt.Fprintf(cmd.out, "File: %s\n", cmd.FilePath)

	result, err := importer.ImportFile(ctx, cmd.FilePath, spreadsheet.Options{
		Sheet:       cmd.Sheet,
		CategoryIDs: cmd.CategoryIDs,
		CountryID:   countryID,
	})
	if err != nil {
		return err
	}

	cmd.printResult(result)
	return nil
}

func (cmd *XLSXImportCommand) printResult(result *spreadsheet.Result) {
	fmt.Fprintf(cmd.out, "Sheet: %s\n", result.Sheet)
	fmt.Fprintf(cmd.out, "success=%d failed=%d skipped=%d\n", result.Success, result.Failed, result.Skipped)

	if len(result.Errors) == 0 {
		return
	}
	if !cmd.Verbose {
		fmt.Fprintf(cmd.out, "%d rows failed, use -verbose to list them\n", len(result.Errors))
		return
	}
	fmt.Fprintf(cmd.out, "\n%d rows failed:\n", len(result.Errors))
	for _, rowErr := range result.Errors {
		fmt.Fprintf(cmd.out, "  [ERROR] %s\n", rowErr.Error())
	}
}

// countryResolver resolves a country name to its ID.
type countryResolver interface {
	Resolve(ctx context.Context, name string) (*uint, error)
}

// resolveCountry accepts a numeric ID or a country name.
func resolveCountry(ctx context.Context, resolver countryResolver, value string) (*uint, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if id, err := strconv.ParseUint(value, 10, 32); err == nil {
		v := uint(id)
		return &v, nil
	}

	id, err := resolver.Resolve(ctx, value)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("unknown country %q", value)
	}
	return id, nil
}

func parseIDList(s string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%q is not a valid id", part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
