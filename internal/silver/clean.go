package silver

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// seasonByQuarter is the fixed quarter -> season mapping. Rows with an
// unmapped quarter are invalid for downstream use and are dropped.
var seasonByQuarter = map[string]string{
	"Q1": "Early Spring",
	"Q2": "Early Summer",
	"Q3": "Early Autumn",
	"Q4": "Early Winter",
}

// SeasonForQuarter returns the season label for a scrape quarter.
func SeasonForQuarter(quarter string) (string, bool) {
	season, ok := seasonByQuarter[strings.ToUpper(strings.TrimSpace(quarter))]
	return season, ok
}

var (
	// Everything outside word chars, whitespace, apostrophes, periods,
	// hyphens and unicode letters is stripped from free text.
	reTextJunk = regexp.MustCompile(`[^\w\s'.\-\p{L}]+`)

	rePriceJunk    = strings.NewReplacer("$", "", ",", "")
	reLeadingDigit = regexp.MustCompile(`\d+`)
)

// SanitizeText strips disallowed characters and surrounding space from
// a free-text field.
func SanitizeText(s string) string {
	return strings.TrimSpace(reTextJunk.ReplaceAllString(strings.TrimSpace(s), ""))
}

// NormalizeNeighbourhood sanitizes and lower-cases a neighbourhood name
// so listing data and the external geometry source join exactly.
func NormalizeNeighbourhood(s string) string {
	return strings.ToLower(SanitizeText(s))
}

// ParsePrice parses a scraped price string ("$1,234.00") to a float.
func ParsePrice(raw string) (float64, error) {
	cleaned := strings.TrimSpace(rePriceJunk.Replace(raw))
	return strconv.ParseFloat(cleaned, 64)
}

// ExtractBathrooms pulls the leading integer out of a free-text
// bathrooms description ("1.5 shared baths" -> 1).
func ExtractBathrooms(text string) (int, bool) {
	m := reLeadingDigit.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Cleaner turns raw snapshot rows into CleanedListingPeriods.
type Cleaner struct {
	log *slog.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(log *slog.Logger) *Cleaner {
	return &Cleaner{log: log}
}

// Clean runs the full cleaning pass over one raw dataset. Rows with a
// null or unparsable price, an unmapped quarter, or a missing city,
// property type or room type are dropped (data-quality filter, not an
// error), so every surviving attribute is a usable dimension value.
// Returned rows have non-null bedroom and bathroom counts and capped
// prices.
func (c *Cleaner) Clean(raw []RawSnapshot) []CleanedListingPeriod {
	// First pass: parse prices and drop unusable rows, so group
	// statistics are computed over the surviving population only.
	type parsedRow struct {
		raw    RawSnapshot
		price  float64
		season string
		period string
	}

	parsed := make([]parsedRow, 0, len(raw))
	droppedPrice, droppedSeason, droppedAttr := 0, 0, 0
	for _, r := range raw {
		if r.Price == nil {
			droppedPrice++
			continue
		}
		price, err := ParsePrice(*r.Price)
		if err != nil {
			droppedPrice++
			continue
		}
		if r.Quarter == nil || r.Year == nil {
			droppedSeason++
			continue
		}
		season, ok := SeasonForQuarter(*r.Quarter)
		if !ok {
			droppedSeason++
			continue
		}
		if strings.TrimSpace(strValue(r.City)) == "" ||
			strings.TrimSpace(strValue(r.PropertyType)) == "" ||
			strings.TrimSpace(strValue(r.RoomType)) == "" {
			droppedAttr++
			continue
		}
		parsed = append(parsed, parsedRow{
			raw:    r,
			price:  price,
			season: season,
			period: fmt.Sprintf("%s_%d", strings.ToUpper(strings.TrimSpace(*r.Quarter)), *r.Year),
		})
	}

	// Group statistics for imputation are taken from the raw
	// (pre-imputation) values, grouped by accommodates.
	bedroomGroups := make(map[int][]float64)
	bathroomGroups := make(map[int][]float64)
	var allBedrooms, allBathrooms []float64
	for _, p := range parsed {
		if p.raw.Accommodates == nil {
			continue
		}
		acc := int(*p.raw.Accommodates)
		if p.raw.Bedrooms != nil {
			bedroomGroups[acc] = append(bedroomGroups[acc], *p.raw.Bedrooms)
			allBedrooms = append(allBedrooms, *p.raw.Bedrooms)
		}
		if p.raw.BathroomsText != nil {
			if n, ok := ExtractBathrooms(*p.raw.BathroomsText); ok {
				bathroomGroups[acc] = append(bathroomGroups[acc], float64(n))
				allBathrooms = append(allBathrooms, float64(n))
			}
		}
	}
	bedroomMedians := GroupMedians(bedroomGroups)
	bathroomMedians := GroupMedians(bathroomGroups)
	globalBedroomMedian, _ := Median(allBedrooms)
	globalBathroomMedian, _ := Median(allBathrooms)

	// Outlier fence over the whole dataset, once per run.
	prices := make([]float64, len(parsed))
	for i, p := range parsed {
		prices[i] = p.price
	}
	capper, haveCapper := PriceCapperFromData(prices)

	cleaned := make([]CleanedListingPeriod, 0, len(parsed))
	for _, p := range parsed {
		r := p.raw

		accommodates := 0
		if r.Accommodates != nil {
			accommodates = int(*r.Accommodates)
		}

		bedrooms := imputeCount(r.Bedrooms, accommodates, bedroomMedians, globalBedroomMedian)

		var bathroomsRaw *float64
		if r.BathroomsText != nil {
			if n, ok := ExtractBathrooms(*r.BathroomsText); ok {
				f := float64(n)
				bathroomsRaw = &f
			}
		}
		bathrooms := imputeCount(bathroomsRaw, accommodates, bathroomMedians, globalBathroomMedian)

		price := p.price
		if haveCapper {
			price = capper.Cap(price)
		}

		row := CleanedListingPeriod{
			ID:            r.ID,
			Name:          SanitizeText(strValue(r.Name)),
			Description:   SanitizeText(strValue(r.Description)),
			ListingURL:    strValue(r.ListingURL),
			PictureURL:    strValue(r.PictureURL),
			Latitude:      floatValue(r.Latitude),
			Longitude:     floatValue(r.Longitude),
			PropertyType:  strValue(r.PropertyType),
			RoomType:      strValue(r.RoomType),
			Accommodates:  accommodates,
			Bedrooms:      bedrooms,
			Bathrooms:     bathrooms,
			MinNights:     intValue(r.MinimumNights),
			MaxNights:     intValue(r.MaximumNights),
			City:          strValue(r.City),
			Neighbourhood: NormalizeNeighbourhood(strValue(r.Neighbourhood)),
			Period:        p.period,
			Season:        p.season,
			ReviewMissing: r.ReviewScoresRating == nil,
			ReviewScore:   r.ReviewScoresRating,
			Amenities:     CategorizeAmenities(strValue(r.Amenities)),
			Price:         price,

			HostID:               r.HostID,
			HostName:             strValue(r.HostName),
			HostAbout:            strValue(r.HostAbout),
			HostSince:            parseHostSince(r.HostSince),
			HostResponseTime:     defaultUnknown(r.HostResponseTime),
			HostSuperhost:        normalizeSuperhost(r.HostIsSuperhost),
			HostIdentityVerified: normalizeFlag(r.HostIdentityVerified),
			HostPictureURL:       strValue(r.HostPictureURL),
		}
		cleaned = append(cleaned, row)
	}

	c.log.Info("cleaning complete",
		"input", len(raw),
		"output", len(cleaned),
		"dropped_price", droppedPrice,
		"dropped_season", droppedSeason,
		"dropped_attributes", droppedAttr)
	return cleaned
}

// imputeCount resolves a possibly-missing count with the group-wise
// median by accommodates, falling back to the dataset median so the
// result is never null. Fractional medians truncate toward zero.
func imputeCount(value *float64, accommodates int, groupMedians map[int]float64, globalMedian float64) int {
	if value != nil {
		return int(*value)
	}
	if m, ok := groupMedians[accommodates]; ok {
		return int(m)
	}
	return int(globalMedian)
}

func normalizeSuperhost(raw *string) string {
	if raw == nil {
		return SuperhostUnknown
	}
	switch strings.ToLower(strings.TrimSpace(*raw)) {
	case "t", "true":
		return SuperhostTrue
	case "f", "false":
		return SuperhostFalse
	default:
		return SuperhostUnknown
	}
}

// normalizeFlag maps t/f to true/false and keeps nulls null;
// identity-verified has no unknown sentinel.
func normalizeFlag(raw *string) *string {
	if raw == nil {
		return nil
	}
	var v string
	switch strings.ToLower(strings.TrimSpace(*raw)) {
	case "t", "true":
		v = "true"
	case "f", "false":
		v = "false"
	default:
		return nil
	}
	return &v
}

func defaultUnknown(raw *string) string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return SuperhostUnknown
	}
	return strings.TrimSpace(*raw)
}

func parseHostSince(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return nil
	}
	return &t
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func intValue(p *int64) int {
	if p == nil {
		return 0
	}
	return int(*p)
}
