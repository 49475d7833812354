package importers

import (
	"time"

	"github.com/mrlokans/eventsync/internal/entities"
	"github.com/mrlokans/eventsync/internal/textnorm"
)

// Column names written by importers.
const (
	ColTitle           = "title"
	ColSlug            = "slug"
	ColStart           = "starts_at"
	ColEnd             = "ends_at"
	ColAllDay          = "all_day"
	ColDescription     = "description"
	ColPlace           = "place"
	ColURL             = "url"
	ColCountryID       = "country_id"
	ColInstitution     = "institution"
	ColContact         = "contact"
	ColEmail           = "email"
	ColTheme           = "theme"
	ColTarget          = "target"
	ColFormat          = "format"
	ColTags            = "tags"
	ColFee             = "fee"
	ColMetaTitle       = "meta_title"
	ColMetaDescription = "meta_description"
	ColMetaKeywords    = "meta_keywords"
	ColSource          = "source"
	ColIdentifier      = "identifier"
	ColDeletedAt       = "deleted_at"
)

// KeyColumns are the columns that form the match key plus the slug derived
// from the title. They are only rewritten when the whole record is replaced.
var KeyColumns = []string{ColTitle, ColStart, ColEnd, ColSlug}

// EntryFields is the canonical shape produced by a transformer.
type EntryFields struct {
	Identifier      string
	Source          string
	Title           string
	Slug            string
	Start           *time.Time
	End             *time.Time
	AllDay          bool
	Description     string
	Place           string
	URL             string
	CountryID       *uint
	Institution     string
	Contact         string
	Email           string
	Theme           string
	Target          string
	Format          string
	Tags            string
	Fee             string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string

	// ImageURL is the remote cover image, if the record carries one.
	ImageURL  string
	ImageName string
}

// Bound truncates every bounded string field to the column limit.
// Single-line fields are also whitespace-collapsed. The identifier and the
// meta description keep their inner whitespace, and Description is left
// untouched.
func (f *EntryFields) Bound() {
	for _, s := range []*string{
		&f.Title, &f.Slug, &f.Place, &f.URL, &f.Institution,
		&f.Contact, &f.Email, &f.Theme, &f.Target, &f.Format, &f.Tags, &f.Fee,
		&f.MetaTitle, &f.MetaKeywords,
	} {
		*s = textnorm.Clean(*s, entities.StringFieldLimit)
	}
	f.Identifier = textnorm.Truncate(f.Identifier, entities.StringFieldLimit)
	f.MetaDescription = textnorm.Truncate(f.MetaDescription, entities.StringFieldLimit)
}

// Columns returns the update set for an existing row.
func (f EntryFields) Columns() map[string]any {
	return map[string]any{
		ColTitle:           f.Title,
		ColSlug:            f.Slug,
		ColStart:           f.Start,
		ColEnd:             f.End,
		ColAllDay:          f.AllDay,
		ColDescription:     f.Description,
		ColPlace:           f.Place,
		ColURL:             f.URL,
		ColCountryID:       f.CountryID,
		ColInstitution:     f.Institution,
		ColContact:         f.Contact,
		ColEmail:           f.Email,
		ColTheme:           f.Theme,
		ColTarget:          f.Target,
		ColFormat:          f.Format,
		ColTags:            f.Tags,
		ColFee:             f.Fee,
		ColMetaTitle:       f.MetaTitle,
		ColMetaDescription: f.MetaDescription,
		ColMetaKeywords:    f.MetaKeywords,
		ColSource:          f.Source,
	}
}

// Entry builds a new row from the fields.
func (f EntryFields) Entry() *entities.Entry {
	entry := &entities.Entry{
		Title:           f.Title,
		Slug:            f.Slug,
		Start:           entities.WallClockPtr(f.Start),
		End:             entities.WallClockPtr(f.End),
		AllDay:          f.AllDay,
		Description:     f.Description,
		Place:           f.Place,
		URL:             f.URL,
		CountryID:       f.CountryID,
		Institution:     f.Institution,
		Contact:         f.Contact,
		Email:           f.Email,
		Theme:           f.Theme,
		Target:          f.Target,
		Format:          f.Format,
		Tags:            f.Tags,
		Fee:             f.Fee,
		MetaTitle:       f.MetaTitle,
		MetaDescription: f.MetaDescription,
		MetaKeywords:    f.MetaKeywords,
		IsPublic:        true,
		ShowOnTimeline:  true,
		Source:          f.Source,
	}
	if f.Identifier != "" {
		id := f.Identifier
		entry.Identifier = &id
	}
	return entry
}

// IsAllDay reports whether start and end span whole days: start at
// exactly 00:00:00 and end at exactly 23:59:59.
func IsAllDay(start, end *time.Time) bool {
	if start == nil || end == nil {
		return false
	}
	return start.Format(time.TimeOnly) == "00:00:00" && end.Format(time.TimeOnly) == "23:59:59"
}
