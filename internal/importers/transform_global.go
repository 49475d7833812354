package importers

import (
	"context"
	"path"
	"strings"

	"github.com/mrlokans/eventsync/internal/entities"
	"github.com/mrlokans/eventsync/internal/feeds"
	"github.com/mrlokans/eventsync/internal/taxonomy"
	"github.com/mrlokans/eventsync/internal/textnorm"
)

const addressRelOrganizer = "organizer"

// GlobalDates returns the date pairs of a primary feed record: the explicit
// interval attributes plus every time interval.
func GlobalDates(item feeds.GlobalItem) []DatePair {
	var pairs []DatePair
	start, end := item.Attribute(feeds.AttrIntervalStart), item.Attribute(feeds.AttrIntervalEnd)
	if start != "" || end != "" {
		pairs = append(pairs, DatePair{Start: start, End: end})
	}
	for _, ti := range item.TimeIntervals {
		pairs = append(pairs, DatePair{Start: ti.Start, End: ti.End, Zone: ti.TZ})
	}
	return pairs
}

// NewGlobalGrouper groups primary feed records by global_id.
func NewGlobalGrouper(parser TimeParser) Grouper[feeds.GlobalItem] {
	return Grouper[feeds.GlobalItem]{
		ID:     feeds.GlobalItem.ID,
		Dates:  GlobalDates,
		Parser: parser,
	}
}

// GlobalTransformer maps primary feed records onto entry fields.
type GlobalTransformer struct {
	normalizer *textnorm.Normalizer
	countries  *CountryResolver
	parser     TimeParser
}

func NewGlobalTransformer(normalizer *textnorm.Normalizer, countries *CountryResolver, parser TimeParser) *GlobalTransformer {
	return &GlobalTransformer{normalizer: normalizer, countries: countries, parser: parser}
}

func (t *GlobalTransformer) Source() string {
	return entities.SourceGlobal
}

// Identifier is the global_id as is; the primary feed is not namespaced.
func (t *GlobalTransformer) Identifier(g *Grouped[feeds.GlobalItem]) string {
	return g.ID
}

func (t *GlobalTransformer) Title(item feeds.GlobalItem) string {
	return strings.TrimSpace(item.Title)
}

func (t *GlobalTransformer) BareID(identifier string) string {
	return identifier
}

func (t *GlobalTransformer) Transform(ctx context.Context, g *Grouped[feeds.GlobalItem]) (EntryFields, error) {
	item := g.Item
	identifier := t.Identifier(g)

	start, end := g.ComputedStart, g.ComputedEnd
	if pairs := GlobalDates(item); len(pairs) > 0 {
		first := pairs[0]
		if start == nil {
			if ts, ok := t.parser.ParseInZone(first.Start, first.Zone); ok {
				start = &ts
			}
		}
		if end == nil {
			if ts, ok := t.parser.ParseInZone(first.End, first.Zone); ok {
				end = &ts
			}
		}
	}

	description := t.normalizer.Description(
		item.Text(feeds.TextRelDetails, feeds.ContentTypeHTML),
		item.Text(feeds.TextRelDetails, feeds.ContentTypePlain),
	)
	teaserRich := item.Text(feeds.TextRelTeaser, feeds.ContentTypeHTML)
	if teaserRich == "" {
		teaserRich = description
	}
	teaser := textnorm.Teaser(item.Text(feeds.TextRelTeaser, feeds.ContentTypePlain), teaserRich)

	countryID, err := t.countries.Resolve(ctx, item.Country)
	if err != nil {
		return EntryFields{}, err
	}

	terms := append(append([]string{}, item.Categories...), item.Keywords...)

	theme := item.Attribute(feeds.AttrThematicFocus)
	if theme == "" {
		theme = taxonomy.Join(taxonomy.MapThemes(terms))
	}
	target := item.Attribute(feeds.AttrTargetGroup)
	if target == "" {
		target = taxonomy.Join(taxonomy.MapTargets(append(terms, item.Features...)))
	}

	fields := EntryFields{
		Identifier:      identifier,
		Source:          entities.SourceGlobal,
		Title:           t.Title(item),
		Slug:            Slug(item.Title, identifier),
		Start:           start,
		End:             end,
		AllDay:          IsAllDay(start, end),
		Description:     description,
		Place:           globalPlace(item),
		URL:             globalURL(item),
		CountryID:       countryID,
		Institution:     item.Attribute(feeds.AttrInstitution),
		Theme:           theme,
		Target:          target,
		Format:          item.Attribute(feeds.AttrFormat),
		Tags:            strings.Join(item.Keywords, ", "),
		Fee:             item.Attribute(feeds.AttrFee),
		MetaTitle:       t.Title(item),
		MetaDescription: teaser,
		MetaKeywords:    strings.Join(terms, ", "),
	}

	if organizer, ok := item.Address(addressRelOrganizer); ok {
		fields.Contact = joinNonEmpty(", ", organizer.Name, organizer.Phone)
		fields.Email = strings.TrimSpace(organizer.Email)
		if fields.Institution == "" {
			fields.Institution = organizer.Name
		}
	}

	if media, ok := item.Media(feeds.MediaRelDefault, "image/"); ok {
		fields.ImageURL = media.URL
	} else if media, ok := item.Media("", "image/"); ok {
		fields.ImageURL = media.URL
	}
	if fields.ImageURL != "" {
		fields.ImageName = path.Base(strings.SplitN(fields.ImageURL, "?", 2)[0])
	}

	fields.Bound()
	return fields, nil
}

// globalURL prefers the venue website, then the record's web field, then
// the first HTML media link.
func globalURL(item feeds.GlobalItem) string {
	if media, ok := item.Media(feeds.MediaRelVenueWebsite, ""); ok {
		return strings.TrimSpace(media.URL)
	}
	if web := strings.TrimSpace(item.Web); web != "" {
		return web
	}
	if media, ok := item.Media("", feeds.ContentTypeHTML); ok {
		return strings.TrimSpace(media.URL)
	}
	return ""
}

func globalPlace(item feeds.GlobalItem) string {
	return joinNonEmpty(", ",
		item.Name,
		item.Street,
		joinNonEmpty(" ", item.Zip, item.City),
	)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
