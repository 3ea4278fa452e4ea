package silver

import (
	"regexp"
	"strings"
)

// OtherCategory labels amenities that match no keyword. They are
// excluded from the categorized map entirely.
const OtherCategory = "Other"

type amenityCategory struct {
	name     string
	keywords []string
}

// amenityCategories is the fixed keyword lookup. Order matters: the
// first category with a matching keyword wins, so narrower categories
// ("hair dryer" under Bathroom) come before broader ones ("dryer"
// under Laundry).
var amenityCategories = []amenityCategory{
	{"Connectivity", []string{"wifi", "internet", "ethernet"}},
	{"Bathroom", []string{
		"hair dryer", "shampoo", "conditioner", "body soap", "shower gel",
		"hot water", "bathtub", "bidet",
	}},
	{"Kitchen & Dining", []string{
		"kitchen", "oven", "stove", "microwave", "refrigerator", "freezer",
		"dishwasher", "coffee", "cooking basics", "dishes", "dining table",
		"toaster", "kettle", "blender", "wine glasses",
	}},
	{"Climate Control", []string{
		"air conditioning", "heating", "ceiling fan", "portable fan",
		"fireplace", "radiator",
	}},
	{"Laundry", []string{"washer", "dryer", "laundromat", "iron", "drying rack"}},
	{"Entertainment", []string{
		"tv", "netflix", "cable", "game console", "sound system",
		"record player", "books and reading material", "board games",
	}},
	{"Bedroom & Comfort", []string{
		"bed linens", "extra pillows", "blackout", "room-darkening",
		"hangers", "crib", "safe",
	}},
	{"Outdoor & Leisure", []string{
		"pool", "hot tub", "patio", "balcony", "garden", "backyard",
		"bbq", "grill", "beach", "outdoor", "sun lounger", "hammock",
		"kayak", "bikes",
	}},
	{"Safety", []string{
		"smoke alarm", "carbon monoxide", "fire extinguisher", "first aid",
		"security camera", "lockbox",
	}},
	{"Parking & Access", []string{
		"parking", "garage", "elevator", "ev charger", "private entrance",
		"self check-in", "keypad", "single level home",
	}},
	{"Workspace", []string{"workspace", "desk", "monitor", "printer"}},
}

// Scraped amenity blobs carry literal \uXXXX escapes and escaped
// slashes left over from double JSON encoding.
var reAmenityEscapes = regexp.MustCompile(`\\u[0-9a-fA-F]{4}|\\/`)

var amenityTokenCleaner = strings.NewReplacer(
	`'`, "", `"`, "", "[", "", "]", "", `\`, "",
)

// CleanAmenityToken strips quote/bracket/backslash characters from one
// amenity token and normalizes case and whitespace.
func CleanAmenityToken(raw string) string {
	s := amenityTokenCleaner.Replace(raw)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// CategorizeAmenity maps a cleaned token to a category by
// case-insensitive substring match. Tokens matching no keyword fall
// into OtherCategory.
func CategorizeAmenity(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return OtherCategory
	}
	for _, cat := range amenityCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(token, kw) {
				return cat.name
			}
		}
	}
	return OtherCategory
}

// CategorizeAmenities tokenizes a raw scraped amenity list and groups
// the cleaned tokens by category. Tokens categorized as Other are
// excluded; a listing whose amenities all fall into Other yields an
// empty map.
func CategorizeAmenities(raw string) map[string][]string {
	categorized := make(map[string][]string)
	if raw == "" {
		return categorized
	}

	raw = reAmenityEscapes.ReplaceAllString(raw, "")
	for _, part := range strings.Split(raw, ",") {
		token := CleanAmenityToken(part)
		if token == "" {
			continue
		}
		category := CategorizeAmenity(token)
		if category == OtherCategory {
			continue
		}
		categorized[category] = append(categorized[category], token)
	}
	return categorized
}
