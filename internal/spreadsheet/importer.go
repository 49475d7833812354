// Package spreadsheet imports events from Excel workbooks.
//
// Row 1 holds the headers; every following row is one event. Rows are
// mapped independently and a broken row never stops the import.
package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/eventsync/internal/entities"
	"github.com/mrlokans/eventsync/internal/importers"
	"github.com/mrlokans/eventsync/internal/textnorm"
)

const defaultBatchSize = 100

// EntryStore is the subset of the entry table the importer needs.
type EntryStore interface {
	FindMatch(ctx context.Context, title string, start, end *time.Time) (*entities.Entry, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, entry *entities.Entry) error
	CreateBatch(ctx context.Context, batch []*entities.Entry, batchSize int) error
}

// CategoryAttacher links imported entries to categories.
type CategoryAttacher interface {
	Attach(ctx context.Context, entryID, categoryID uint) (bool, error)
}

// Options select the worksheet and the values applied to every row.
type Options struct {
	// Sheet names the worksheet. Empty picks the first sheet with a title
	// column.
	Sheet       string
	CategoryIDs []uint
	CountryID   *uint
}

// Result summarizes an import.
type Result struct {
	Sheet   string     `json:"sheet"`
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors,omitempty"`
}

func (r *Result) fail(row int, format string, args ...any) {
	r.Failed++
	r.Errors = append(r.Errors, RowError{Row: row, Message: fmt.Sprintf(format, args...)})
}

// Importer maps worksheet rows onto entries.
type Importer struct {
	entries    EntryStore
	categories CategoryAttacher
	normalizer *textnorm.Normalizer
	batchSize  int
}

func New(entries EntryStore, categories CategoryAttacher, normalizer *textnorm.Normalizer, batchSize int) *Importer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Importer{
		entries:    entries,
		categories: categories,
		normalizer: normalizer,
		batchSize:  batchSize,
	}
}

// ImportFile imports the workbook at path.
func (i *Importer) ImportFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return i.Import(ctx, f, opts)
}

// ImportReader imports a workbook read from r.
func (i *Importer) ImportReader(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return i.Import(ctx, f, opts)
}

// row is a mapped data row waiting to be written.
type row struct {
	number int
	entry  *entities.Entry
}

// Import imports one worksheet of f.
func (i *Importer) Import(ctx context.Context, f *excelize.File, opts Options) (*Result, error) {
	sheet, rows, err := selectSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	result := &Result{Sheet: sheet}
	if len(rows) == 0 {
		return result, nil
	}

	columns := mapHeader(rows[0])
	if _, ok := columns[FieldTitle]; !ok {
		return nil, fmt.Errorf("sheet %q has no title column", sheet)
	}

	slog.InfoContext(ctx, "importing worksheet", "sheet", sheet, "rows", len(rows)-1, "columns", len(columns))

	run := &importRun{
		Importer: i,
		opts:     opts,
		result:   result,
		slugs:    make(map[string]bool),
		keys:     make(map[string]bool),
	}

	for idx, cells := range rows[1:] {
		number := idx + 2
		run.processRow(ctx, number, record{cells: cells, columns: columns})
		if len(run.pending) >= i.batchSize {
			run.flush(ctx)
		}
	}
	run.flush(ctx)

	slog.InfoContext(ctx, "worksheet imported",
		"sheet", sheet,
		"success", result.Success,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
	return result, nil
}

// selectSheet returns the named sheet or the first sheet with a title
// column, falling back to the first sheet.
func selectSheet(f *excelize.File, name string) (string, [][]string, error) {
	if name != "" {
		if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
			return "", nil, fmt.Errorf("worksheet %q not found", name)
		}
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return "", nil, fmt.Errorf("read worksheet %q: %w", name, err)
		}
		return name, rows, nil
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, errors.New("workbook has no worksheets")
	}
	var firstRows [][]string
	for n, sheet := range sheets {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return "", nil, fmt.Errorf("read worksheet %q: %w", sheet, err)
		}
		if n == 0 {
			firstRows = rows
		}
		if len(rows) > 0 {
			if _, ok := mapHeader(rows[0])[FieldTitle]; ok {
				return sheet, rows, nil
			}
		}
	}
	return sheets[0], firstRows, nil
}

type importRun struct {
	*Importer
	opts    Options
	result  *Result
	pending []row
	slugs   map[string]bool
	keys    map[string]bool
}

func (r *importRun) processRow(ctx context.Context, number int, rec record) {
	defer func() {
		if p := recover(); p != nil {
			r.result.fail(number, "unexpected error: %v", p)
			slog.ErrorContext(ctx, "spreadsheet row panicked", "row", number, "error", p)
		}
	}()

	entry, err := r.mapRow(rec)
	if err != nil {
		r.result.fail(number, "%v", err)
		slog.WarnContext(ctx, "spreadsheet row rejected", "row", number, "error", err)
		return
	}
	if entry == nil {
		r.result.Skipped++
		return
	}

	key := matchKey(entry)
	if r.keys[key] {
		r.result.Skipped++
		return
	}
	_, err = r.entries.FindMatch(ctx, entry.Title, entry.Start, entry.End)
	switch {
	case err == nil:
		slog.DebugContext(ctx, "spreadsheet row already imported", "row", number, "title", entry.Title)
		r.result.Skipped++
		return
	case !errors.Is(err, entities.ErrNotFound):
		r.result.fail(number, "duplicate check: %v", err)
		return
	}

	entry.Slug, err = r.uniqueSlug(ctx, entry.Title)
	if err != nil {
		r.result.fail(number, "slug: %v", err)
		return
	}

	r.keys[key] = true
	r.pending = append(r.pending, row{number: number, entry: entry})
}

// mapRow builds the entry of one row. It returns nil for rows with neither
// a title nor a start date.
func (r *importRun) mapRow(rec record) (*entities.Entry, error) {
	title := rec.get(FieldTitle)
	startDay, startCarried, hasStart := parseDate(rec.get(FieldDate))
	if raw := rec.get(FieldDate); raw != "" && !hasStart {
		return nil, fmt.Errorf("unreadable date %q", raw)
	}
	if title == "" && !hasStart {
		return nil, nil
	}
	if title == "" {
		return nil, errors.New("missing title")
	}

	var startClock, endClock *time.Duration
	if raw := rec.get(FieldStartTime); raw != "" {
		clock, ok := parseClock(raw)
		if !ok {
			return nil, fmt.Errorf("unreadable start time %q", raw)
		}
		startClock = clock
	}
	if raw := rec.get(FieldEndTime); raw != "" {
		clock, ok := parseClock(raw)
		if !ok {
			return nil, fmt.Errorf("unreadable end time %q", raw)
		}
		endClock = clock
	}

	endDay, endCarried, hasEnd := parseDate(rec.get(FieldEndDate))
	if raw := rec.get(FieldEndDate); raw != "" && !hasEnd {
		return nil, fmt.Errorf("unreadable end date %q", raw)
	}
	if !hasEnd && hasStart {
		endDay, hasEnd = startDay, true
	}

	var start, end *time.Time
	if hasStart {
		t := combine(startDay, startClock, startCarried, 0)
		start = &t
	}
	if hasEnd {
		t := combine(endDay, endClock, endCarried, endOfDayOffset)
		end = &t
	}

	description := rec.get(FieldDescription)
	rich, plain := "", description
	if strings.Contains(description, "<") {
		rich, plain = description, ""
	}
	body := r.normalizer.Description(rich, plain)

	fields := importers.EntryFields{
		Source:          entities.SourceXLSX,
		Title:           title,
		Start:           start,
		End:             end,
		AllDay:          importers.IsAllDay(start, end),
		Description:     body,
		Place:           rec.get(FieldAddress),
		URL:             firstURL(rec.get(FieldLinks)),
		CountryID:       r.opts.CountryID,
		Institution:     rec.get(FieldInstitution),
		Contact:         rec.get(FieldContact),
		Email:           firstEmail(rec.get(FieldEmail)),
		Theme:           rec.get(FieldTheme),
		Target:          joinValues(rec.get(FieldTarget1), rec.get(FieldTarget2), rec.get(FieldTarget3)),
		Format:          rec.get(FieldFormat),
		Tags:            rec.get(FieldTags),
		Fee:             rec.get(FieldFee),
		MetaTitle:       title,
		MetaDescription: textnorm.Teaser("", body),
	}
	fields.Bound()

	entry := fields.Entry()
	entry.IsPublic = parsePublic(rec.get(FieldPublic))
	entry.Remarks = textnorm.Clean(rec.get(FieldRemarks), entities.StringFieldLimit)
	return entry, nil
}

// uniqueSlug appends -2, -3, ... to the slugified title until no stored
// or pending entry uses it.
func (r *importRun) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := importers.SlugBase(title)
	if base == "" {
		base = "event"
	}
	candidate := base
	for n := 2; ; n++ {
		if !r.slugs[candidate] {
			exists, err := r.entries.SlugExists(ctx, candidate)
			if err != nil {
				return "", err
			}
			if !exists {
				r.slugs[candidate] = true
				return candidate, nil
			}
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// flush writes pending rows in one batch. When the batch fails every row
// is retried alone so one bad row only fails itself.
func (r *importRun) flush(ctx context.Context) {
	if len(r.pending) == 0 {
		return
	}
	pending := r.pending
	r.pending = nil

	batch := make([]*entities.Entry, len(pending))
	for i, p := range pending {
		batch[i] = p.entry
	}

	err := r.entries.CreateBatch(ctx, batch, r.batchSize)
	if err == nil {
		for _, p := range pending {
			r.created(ctx, p)
		}
		return
	}
	slog.WarnContext(ctx, "batch insert failed, retrying rows one by one", "rows", len(pending), "error", err)

	for _, p := range pending {
		p.entry.ID = 0
		if err := r.entries.Create(ctx, p.entry); err != nil {
			r.result.fail(p.number, "insert: %v", err)
			continue
		}
		r.created(ctx, p)
	}
}

func (r *importRun) created(ctx context.Context, p row) {
	r.result.Success++
	if r.categories == nil {
		return
	}
	for _, categoryID := range r.opts.CategoryIDs {
		if _, err := r.categories.Attach(ctx, p.entry.ID, categoryID); err != nil {
			slog.WarnContext(ctx, "failed to attach category", "row", p.number, "entry_id", p.entry.ID, "category_id", categoryID, "error", err)
		}
	}
}

func matchKey(e *entities.Entry) string {
	day := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format(time.DateOnly)
	}
	return e.Title + "|" + day(e.Start) + "|" + day(e.End)
}

// record is one data row with its header mapping.
type record struct {
	cells   []string
	columns map[Field]int
}

func (r record) get(f Field) string {
	idx, ok := r.columns[f]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}
