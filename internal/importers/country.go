package importers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/eventsync/internal/entities"
)

// countryAliases maps spellings seen in feeds to ISO 3166 alpha-2 codes.
var countryAliases = map[string]string{
	"deutschland":                 "DE",
	"germany":                     "DE",
	"brd":                         "DE",
	"federal republic of germany": "DE",
	"österreich":                  "AT",
	"oesterreich":                 "AT",
	"schweiz":                     "CH",
	"suisse":                      "CH",
	"frankreich":                  "FR",
	"italien":                     "IT",
	"spanien":                     "ES",
	"niederlande":                 "NL",
	"holland":                     "NL",
	"the netherlands":             "NL",
	"belgien":                     "BE",
	"polen":                       "PL",
	"tschechien":                  "CZ",
	"czechia":                     "CZ",
	"dänemark":                    "DK",
	"schweden":                    "SE",
	"norwegen":                    "NO",
	"finnland":                    "FI",
	"uk":                          "GB",
	"great britain":               "GB",
	"england":                     "GB",
	"großbritannien":              "GB",
	"vereinigtes königreich":      "GB",
	"irland":                      "IE",
	"griechenland":                "GR",
	"türkei":                      "TR",
	"türkiye":                     "TR",
	"usa":                         "US",
	"u.s.a.":                      "US",
	"united states of america":    "US",
	"vereinigte staaten":          "US",
	"mexiko":                      "MX",
	"brasilien":                   "BR",
	"kolumbien":                   "CO",
	"bolivien":                    "BO",
	"ägypten":                     "EG",
	"marokko":                     "MA",
	"kamerun":                     "CM",
	"kenia":                       "KE",
	"tansania":                    "TZ",
	"ruanda":                      "RW",
	"äthiopien":                   "ET",
	"südafrika":                   "ZA",
	"indien":                      "IN",
	"kambodscha":                  "KH",
	"indonesien":                  "ID",
	"philippinen":                 "PH",
	"viet nam":                    "VN",
}

// CountryLookup is the persisted country list.
type CountryLookup interface {
	IDByName(ctx context.Context, name string) (uint, error)
	IDByCode(ctx context.Context, code string) (uint, error)
}

// CountryResolver maps free-text country names to country IDs.
type CountryResolver struct {
	lookup CountryLookup
}

func NewCountryResolver(lookup CountryLookup) *CountryResolver {
	return &CountryResolver{lookup: lookup}
}

// Resolve returns the country ID for name, or nil when it is unknown. The
// alias table is consulted first, then the stored names. Only lookup
// failures other than "not found" are returned as errors.
func (r *CountryResolver) Resolve(ctx context.Context, name string) (*uint, error) {
	name = strings.TrimSpace(name)
	if name == "" || r == nil || r.lookup == nil {
		return nil, nil
	}

	if code, ok := countryAliases[strings.ToLower(name)]; ok {
		id, err := r.lookup.IDByCode(ctx, code)
		if err == nil {
			return &id, nil
		}
		if !errors.Is(err, entities.ErrNotFound) {
			return nil, fmt.Errorf("resolve country %q: %w", name, err)
		}
	}

	id, err := r.lookup.IDByName(ctx, name)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve country %q: %w", name, err)
	}
	return &id, nil
}
