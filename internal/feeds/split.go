package feeds

import "strings"

// SplitIDPrefix namespaces secondary feed identifiers in the shared store.
const SplitIDPrefix = "split-"

// Custom field names used by the secondary feed.
const (
	FieldThematicFocus = "Thematic focus"
	FieldTargetGroup   = "Target group"
	FieldCountry       = "Country"
	FieldFee           = "Fee"
	FieldLink          = "Link"
)

// SplitArticle is one record of the secondary feed, a bare JSON array.
type SplitArticle struct {
	ArticleID         FlexString        `json:"articleId"`
	ArticleTitle      string            `json:"articleTitle"`
	ArticleText       string            `json:"articleText"`
	ArticlePlainText  string            `json:"articlePlainText"`
	ArticleTeaser     string            `json:"articleTeaser"`
	ArticleURL        string            `json:"articleUrl"`
	EventInfo         *EventInfo        `json:"eventInfo"`
	CustomFieldList   []CustomField     `json:"customFieldList"`
	ArticleCategories []ArticleCategory `json:"articleCategories"`
	ArticleImage      *ArticleImage     `json:"articleImage"`
	Links             []Link            `json:"links"`
}

type EventInfo struct {
	StartDateUTC string   `json:"startDateUTC"`
	EndDateUTC   string   `json:"endDateUTC"`
	WholeDay     FlexBool `json:"wholeDay"`
	Location     string   `json:"location"`
}

type CustomField struct {
	Name  string     `json:"name"`
	Value FlexString `json:"value"`
}

type ArticleCategory struct {
	Name string `json:"categoryName"`
}

type ArticleImage struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Caption  string `json:"caption"`
}

type Link struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ID returns the trimmed external identifier without namespace.
func (a SplitArticle) ID() string {
	return a.ArticleID.String()
}

// CustomField returns the value of the named custom field.
func (a SplitArticle) CustomField(name string) string {
	for _, f := range a.CustomFieldList {
		if strings.EqualFold(strings.TrimSpace(f.Name), name) {
			return f.Value.String()
		}
	}
	return ""
}

// CategoryNames returns the article's category names.
func (a SplitArticle) CategoryNames() []string {
	names := make([]string, 0, len(a.ArticleCategories))
	for _, c := range a.ArticleCategories {
		if n := strings.TrimSpace(c.Name); n != "" {
			names = append(names, n)
		}
	}
	return names
}
