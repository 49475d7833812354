package feeds

import "strings"

// Text relations and content types used by the primary feed.
const (
	TextRelDetails = "details"
	TextRelTeaser  = "teaser"

	ContentTypeHTML  = "text/html"
	ContentTypePlain = "text/plain"
)

// Media relations used by the primary feed.
const (
	MediaRelVenueWebsite = "venuewebsite"
	MediaRelDefault      = "default"
	MediaRelImage        = "imagegallery"
)

// Attribute keys that carry dates or explicit taxonomy values.
const (
	AttrIntervalStart = "interval_start"
	AttrIntervalEnd   = "interval_end"
	AttrThematicFocus = "thematic_focus"
	AttrTargetGroup   = "target_group"
	AttrFee           = "price_info"
	AttrFormat        = "format"
	AttrInstitution   = "institution"
)

// GlobalItem is one record of the primary feed: {"items": [...]}.
type GlobalItem struct {
	GlobalID      FlexString     `json:"global_id"`
	Title         string         `json:"title"`
	Web           string         `json:"web"`
	Name          string         `json:"name"`
	Street        string         `json:"street"`
	Zip           string         `json:"zip"`
	City          string         `json:"city"`
	Country       string         `json:"country"`
	Texts         []Text         `json:"texts"`
	TimeIntervals []TimeInterval `json:"timeIntervals"`
	Attributes    []Attribute    `json:"attributes"`
	MediaObjects  []MediaObject  `json:"media_objects"`
	Categories    []string       `json:"categories"`
	Keywords      []string       `json:"keywords"`
	Features      []string       `json:"features"`
	Addresses     []Address      `json:"addresses"`
}

type Text struct {
	Rel   string `json:"rel"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type TimeInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
	TZ    string `json:"tz"`
}

type Attribute struct {
	Key   string     `json:"key"`
	Value FlexString `json:"value"`
}

type MediaObject struct {
	Rel   string `json:"rel"`
	URL   string `json:"url"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type Address struct {
	Rel   string `json:"rel"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Web   string `json:"web"`
}

// ID returns the trimmed external identifier.
func (i GlobalItem) ID() string {
	return i.GlobalID.String()
}

// Text returns the first text with the given relation and content type.
func (i GlobalItem) Text(rel, contentType string) string {
	for _, t := range i.Texts {
		if strings.EqualFold(t.Rel, rel) && strings.EqualFold(t.Type, contentType) {
			return t.Value
		}
	}
	return ""
}

// Attribute returns the value of the first attribute with key.
func (i GlobalItem) Attribute(key string) string {
	for _, a := range i.Attributes {
		if strings.EqualFold(a.Key, key) {
			return a.Value.String()
		}
	}
	return ""
}

// Media returns the first media object with the given relation, optionally
// restricted to a content type prefix such as "image/".
func (i GlobalItem) Media(rel, typePrefix string) (MediaObject, bool) {
	for _, m := range i.MediaObjects {
		if rel != "" && !strings.EqualFold(m.Rel, rel) {
			continue
		}
		if typePrefix != "" && !strings.HasPrefix(strings.ToLower(m.Type), typePrefix) {
			continue
		}
		if strings.TrimSpace(m.URL) == "" {
			continue
		}
		return m, true
	}
	return MediaObject{}, false
}

// Address returns the first address tagged with rel.
func (i GlobalItem) Address(rel string) (Address, bool) {
	for _, a := range i.Addresses {
		if strings.EqualFold(a.Rel, rel) {
			return a, true
		}
	}
	return Address{}, false
}
