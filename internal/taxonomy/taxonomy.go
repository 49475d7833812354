// Package taxonomy maps free-text feed vocabulary onto the closed lists of
// thematic focus and target group values used for filtering.
//
// Each term is matched case-insensitively: first exactly against every
// synonym of every value, then by substring containment in table order.
// The first hit wins.
package taxonomy

import (
	"strings"
)

// OtherTheme is returned when no thematic focus matches.
const OtherTheme = "Other"

// Canonical pairs a canonical value with the synonyms that map onto it.
// The canonical value itself always matches.
type Canonical struct {
	Value    string
	Synonyms []string
}

// Table is an ordered mapping table. Order decides substring ties.
type Table []Canonical

// Themes is the thematic focus table.
var Themes = Table{
	{"Sustainability", []string{"sustainability", "sustainable", "climate", "climate change", "environment", "ecology", "energy", "nachhaltigkeit", "klima", "umwelt", "sdg", "biodiversity"}},
	{"Education", []string{"education", "global learning", "learning", "school", "bildung", "globales lernen", "training"}},
	{"Human Rights", []string{"human rights", "democracy", "justice", "menschenrechte", "demokratie", "civil society"}},
	{"Development Cooperation", []string{"development cooperation", "development", "cooperation", "entwicklungszusammenarbeit", "entwicklung", "partnership"}},
	{"Health", []string{"health", "gesundheit", "medicine", "nutrition"}},
	{"Economy", []string{"economy", "fair trade", "trade", "business", "wirtschaft", "fairer handel", "supply chain"}},
	{"Culture", []string{"culture", "art", "music", "film", "kultur", "kunst", "literature"}},
	{"Migration", []string{"migration", "refugees", "flight", "flucht", "integration", "diaspora"}},
	{"Gender", []string{"gender", "women", "equality", "frauen", "gleichstellung"}},
	{"Peace", []string{"peace", "conflict", "frieden", "konflikt"}},
	{"Food", []string{"food", "agriculture", "ernährung", "landwirtschaft"}},
}

// Targets is the target group table.
var Targets = Table{
	{"Children", []string{"children", "kids", "kinder", "primary school"}},
	{"Young people", []string{"young people", "youth", "teenagers", "jugendliche", "jugend"}},
	{"Students", []string{"students", "university", "studierende", "studenten"}},
	{"Teachers", []string{"teachers", "educators", "lehrkräfte", "lehrer", "multipliers", "multiplikatoren"}},
	{"Families", []string{"families", "family", "familien", "parents", "eltern"}},
	{"Seniors", []string{"seniors", "elderly", "senioren"}},
	{"Professionals", []string{"professionals", "experts", "fachkräfte", "practitioners"}},
	{"Civil society organisations", []string{"ngo", "ngos", "associations", "vereine", "initiatives", "civil society organisations"}},
	{"General public", []string{"general public", "everyone", "all interested", "public", "öffentlichkeit", "alle interessierten"}},
}

// Match returns the canonical value for one term and whether any matched.
func (t Table) Match(term string) (string, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return "", false
	}

	for _, c := range t {
		if strings.ToLower(c.Value) == term {
			return c.Value, true
		}
		for _, syn := range c.Synonyms {
			if syn == term {
				return c.Value, true
			}
		}
	}

	for _, c := range t {
		for _, syn := range c.Synonyms {
			if strings.Contains(term, syn) {
				return c.Value, true
			}
		}
	}
	return "", false
}

// MapAll maps every term and returns the distinct matches in order of first
// appearance. Terms without a match are dropped.
func (t Table) MapAll(terms []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, term := range terms {
		value, ok := t.Match(term)
		if !ok || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}

// Mine scans free text for any synonym and returns every canonical value
// found, in table order.
func (t Table) Mine(text string) []string {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []string
	for _, c := range t {
		for _, syn := range c.Synonyms {
			if containsWord(text, syn) {
				out = append(out, c.Value)
				break
			}
		}
	}
	return out
}

// MapThemes maps terms through the thematic focus table. It never returns
// an empty result.
func MapThemes(terms []string) []string {
	values := Themes.MapAll(terms)
	if len(values) == 0 {
		return []string{OtherTheme}
	}
	return values
}

// MapTargets maps terms through the target group table. The result may be
// empty.
func MapTargets(terms []string) []string {
	return Targets.MapAll(terms)
}

// Join comma-joins canonical values the way they are stored.
func Join(values []string) string {
	return strings.Join(values, ", ")
}

// Split reverses Join, trimming each value and dropping blanks.
func Split(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// containsWord reports whether needle occurs in text bounded by non-letters,
// so "art" does not match "start".
func containsWord(text, needle string) bool {
	for offset := 0; ; {
		i := strings.Index(text[offset:], needle)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(needle)
		if isBoundary(text, start-1) && isBoundary(text, end) {
			return true
		}
		offset = start + 1
	}
}

func isBoundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	c := text[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c >= 0x80)
}
