package importers

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/mrlokans/eventsync/internal/entities"
	"github.com/mrlokans/eventsync/internal/feeds"
	"github.com/mrlokans/eventsync/internal/taxonomy"
	"github.com/mrlokans/eventsync/internal/textnorm"
)

var (
	contactLabelRe     = labelRegexp("Contact person")
	locationLabelRe    = labelRegexp("Location")
	institutionLabelRe = labelRegexp("Implementing institution")
	formatLabelRe      = labelRegexp("Format")
	emailRe            = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

func labelRegexp(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*` + regexp.QuoteMeta(label) + `[ \t]*:[ \t]*(.+?)[ \t]*$`)
}

// SplitDates returns the single date pair of a secondary feed record.
func SplitDates(item feeds.SplitArticle) []DatePair {
	if item.EventInfo == nil {
		return nil
	}
	return []DatePair{{Start: item.EventInfo.StartDateUTC, End: item.EventInfo.EndDateUTC}}
}

// NewSplitGrouper groups secondary feed records by articleId. Its dates
// are UTC, so zone-less values are read as UTC.
func NewSplitGrouper(parser TimeParser) Grouper[feeds.SplitArticle] {
	return Grouper[feeds.SplitArticle]{
		ID:     feeds.SplitArticle.ID,
		Dates:  SplitDates,
		Parser: parser.WithNaive(time.UTC),
	}
}

// SplitTransformer maps secondary feed records onto entry fields.
type SplitTransformer struct {
	normalizer *textnorm.Normalizer
	countries  *CountryResolver
	parser     TimeParser
}

func NewSplitTransformer(normalizer *textnorm.Normalizer, countries *CountryResolver, parser TimeParser) *SplitTransformer {
	return &SplitTransformer{normalizer: normalizer, countries: countries, parser: parser.WithNaive(time.UTC)}
}

func (t *SplitTransformer) Source() string {
	return entities.SourceSplit
}

// Identifier namespaces the article id so it cannot collide with primary
// feed identifiers.
func (t *SplitTransformer) Identifier(g *Grouped[feeds.SplitArticle]) string {
	return feeds.SplitIDPrefix + g.ID
}

func (t *SplitTransformer) Title(item feeds.SplitArticle) string {
	return strings.TrimSpace(item.ArticleTitle)
}

func (t *SplitTransformer) BareID(identifier string) string {
	return strings.TrimPrefix(identifier, feeds.SplitIDPrefix)
}

func (t *SplitTransformer) Transform(ctx context.Context, g *Grouped[feeds.SplitArticle]) (EntryFields, error) {
	item := g.Item
	identifier := t.Identifier(g)

	start, end := g.ComputedStart, g.ComputedEnd
	if item.EventInfo != nil {
		if start == nil {
			if ts, ok := t.parser.Parse(item.EventInfo.StartDateUTC); ok {
				start = &ts
			}
		}
		if end == nil {
			if ts, ok := t.parser.Parse(item.EventInfo.EndDateUTC); ok {
				end = &ts
			}
		}
	}

	description := t.normalizer.Description(item.ArticleText, item.ArticlePlainText)
	plain := item.ArticlePlainText
	if strings.TrimSpace(plain) == "" {
		plain = textnorm.HTMLToText(textnorm.FixUnicodeEscapes(item.ArticleText))
	}

	countryID, err := t.countries.Resolve(ctx, item.CustomField(feeds.FieldCountry))
	if err != nil {
		return EntryFields{}, err
	}

	categories := item.CategoryNames()

	theme := item.CustomField(feeds.FieldThematicFocus)
	if theme == "" {
		theme = taxonomy.Join(taxonomy.MapThemes(categories))
	}

	target := item.CustomField(feeds.FieldTargetGroup)
	if target == "" {
		targets := taxonomy.MapTargets(categories)
		if len(targets) == 0 {
			targets = taxonomy.Targets.Mine(plain)
		}
		target = taxonomy.Join(targets)
	}

	place := labelValue(locationLabelRe, plain)
	if place == "" && item.EventInfo != nil {
		place = item.EventInfo.Location
	}

	fields := EntryFields{
		Identifier:      identifier,
		Source:          entities.SourceSplit,
		Title:           t.Title(item),
		Slug:            Slug(item.ArticleTitle, identifier),
		Start:           start,
		End:             end,
		AllDay:          IsAllDay(start, end) || (item.EventInfo != nil && bool(item.EventInfo.WholeDay)),
		Description:     description,
		Place:           place,
		URL:             splitURL(item),
		CountryID:       countryID,
		Institution:     labelValue(institutionLabelRe, plain),
		Contact:         labelValue(contactLabelRe, plain),
		Email:           firstEmail(plain, item.ArticleText),
		Theme:           theme,
		Target:          target,
		Format:          labelValue(formatLabelRe, plain),
		Tags:            strings.Join(categories, ", "),
		Fee:             item.CustomField(feeds.FieldFee),
		MetaTitle:       t.Title(item),
		MetaDescription: textnorm.Teaser(item.ArticleTeaser, item.ArticleText),
		MetaKeywords:    strings.Join(categories, ", "),
	}

	if item.ArticleImage != nil && strings.TrimSpace(item.ArticleImage.URL) != "" {
		fields.ImageURL = strings.TrimSpace(item.ArticleImage.URL)
		fields.ImageName = item.ArticleImage.FileName
	}

	fields.Bound()
	return fields, nil
}

// splitURL prefers the Link custom field, then articleUrl, then the first
// entry of the link list.
func splitURL(item feeds.SplitArticle) string {
	if link := item.CustomField(feeds.FieldLink); link != "" {
		return link
	}
	if u := strings.TrimSpace(item.ArticleURL); u != "" {
		return u
	}
	for _, l := range item.Links {
		if u := strings.TrimSpace(l.URL); u != "" {
			return u
		}
	}
	return ""
}

func labelValue(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func firstEmail(texts ...string) string {
	for _, text := range texts {
		if m := emailRe.FindString(text); m != "" {
			return m
		}
	}
	return ""
}
