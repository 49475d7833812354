package spreadsheet

import (
	"regexp"
	"strings"
)

// Field is a canonical spreadsheet column.
type Field string

const (
	FieldDate        Field = "date"
	FieldEndDate     Field = "end_date"
	FieldStartTime   Field = "start_time"
	FieldEndTime     Field = "end_time"
	FieldAddress     Field = "address"
	FieldTitle       Field = "title"
	FieldInstitution Field = "institution"
	FieldDescription Field = "description"
	FieldLinks       Field = "links"
	FieldTarget1     Field = "target_1"
	FieldTarget2     Field = "target_2"
	FieldTarget3     Field = "target_3"
	FieldTheme       Field = "theme"
	FieldFormat      Field = "format"
	FieldPublic      Field = "public"
	FieldFee         Field = "fee"
	FieldRemarks     Field = "remarks"
	FieldContact     Field = "contact"
	FieldEmail       Field = "email"
	FieldTags        Field = "tags"
)

var targetFields = []Field{FieldTarget1, FieldTarget2, FieldTarget3}

// headerLabels maps normalized header labels to fields.
var headerLabels = map[string]Field{
	"date":              FieldDate,
	"start date":        FieldDate,
	"start_date":        FieldDate,
	"datum":             FieldDate,
	"startdatum":        FieldDate,
	"end date":          FieldEndDate,
	"end_date":          FieldEndDate,
	"enddatum":          FieldEndDate,
	"bis":               FieldEndDate,
	"start time":        FieldStartTime,
	"start_time":        FieldStartTime,
	"start hour":        FieldStartTime,
	"beginn":            FieldStartTime,
	"uhrzeit":           FieldStartTime,
	"von":               FieldStartTime,
	"end time":          FieldEndTime,
	"end_time":          FieldEndTime,
	"end hour":          FieldEndTime,
	"ende":              FieldEndTime,
	"address":           FieldAddress,
	"adresse":           FieldAddress,
	"location":          FieldAddress,
	"ort":               FieldAddress,
	"venue":             FieldAddress,
	"title":             FieldTitle,
	"titel":             FieldTitle,
	"event":             FieldTitle,
	"veranstaltung":     FieldTitle,
	"institution":       FieldInstitution,
	"organizer":         FieldInstitution,
	"veranstalter":      FieldInstitution,
	"description":       FieldDescription,
	"beschreibung":      FieldDescription,
	"links":             FieldLinks,
	"link":              FieldLinks,
	"url":               FieldLinks,
	"website":           FieldLinks,
	"target group":      FieldTarget1,
	"target group 1":    FieldTarget1,
	"zielgruppe":        FieldTarget1,
	"zielgruppe 1":      FieldTarget1,
	"target group 2":    FieldTarget2,
	"zielgruppe 2":      FieldTarget2,
	"target group 3":    FieldTarget3,
	"zielgruppe 3":      FieldTarget3,
	"theme":             FieldTheme,
	"thematic focus":    FieldTheme,
	"thema":             FieldTheme,
	"themenschwerpunkt": FieldTheme,
	"format":            FieldFormat,
	"public":            FieldPublic,
	"public/closed":     FieldPublic,
	"öffentlich":        FieldPublic,
	"fee":               FieldFee,
	"price":             FieldFee,
	"kosten":            FieldFee,
	"remarks":           FieldRemarks,
	"notes":             FieldRemarks,
	"bemerkungen":       FieldRemarks,
	"contact":           FieldContact,
	"contact person":    FieldContact,
	"ansprechpartner":   FieldContact,
	"email":             FieldEmail,
	"e-mail":            FieldEmail,
	"tags":              FieldTags,
	"schlagworte":       FieldTags,
}

var headerSpaceRe = regexp.MustCompile(`\s+`)

func normalizeHeader(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.TrimRight(label, ":* ")
	return headerSpaceRe.ReplaceAllString(label, " ")
}

// mapHeader returns the field of every column index. Unknown headers are
// left out. A repeated target group header takes the next free target
// slot; other repeated headers keep their first column.
func mapHeader(header []string) map[Field]int {
	columns := make(map[Field]int)
	for i, label := range header {
		field, ok := headerLabels[normalizeHeader(label)]
		if !ok {
			continue
		}
		if _, taken := columns[field]; taken {
			if !isTarget(field) {
				continue
			}
			field = nextTarget(columns)
			if field == "" {
				continue
			}
		}
		columns[field] = i
	}
	return columns
}

func isTarget(f Field) bool {
	for _, t := range targetFields {
		if f == t {
			return true
		}
	}
	return false
}

func nextTarget(columns map[Field]int) Field {
	for _, t := range targetFields {
		if _, taken := columns[t]; !taken {
			return t
		}
	}
	return ""
}
