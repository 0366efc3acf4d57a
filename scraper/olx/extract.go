package olx

import (
	"regexp"
	"strconv"
	"strings"

	"olx-profit-bot/models"
	"olx-profit-bot/services"
)

// Sentinels substituted when an upstream field cannot be extracted.
// Absence degrades to these, never to an error.
const (
	unknownTitle = "Без названия"
	unknownCity  = "Город не указан"
	unknownDate  = "Дата не указана"
)

var (
	htmlTagRe  = regexp.MustCompile(`<[^>]+>`)
	nonDigitRe = regexp.MustCompile(`[^\d]`)
	spaceRunRe = regexp.MustCompile(`\s+`)
	tengeRe    = regexp.MustCompile(`(?i)(тг\.?|тенге)`)
)

// dateKeys are the field-name aliases probed for a publication date,
// in order of preference.
var dateKeys = []string{"created_time", "created_at", "publication_time", "date"}

// normalizeOffer turns one raw offer object into a canonical Listing.
// The offers API is duck-typed: every attribute is resolved through an
// ordered list of field probes with a sentinel fallback.
func normalizeOffer(offer map[string]any, baseURL string) models.Listing {
	title := firstString(offer, "title", "name")
	if title == "" {
		title = unknownTitle
	}

	price := extractOfferPrice(offer)
	return models.Listing{
		Title:       title,
		Price:       price,
		PriceValue:  parsePriceValue(price),
		City:        extractCity(offer),
		Date:        extractDate(offer),
		URL:         extractURL(offer, baseURL),
		Description: extractDescription(offer),
	}
}

// extractOfferPrice reads the nested amount+currency pair of the
// structured shape. An empty result means the caller should fall back to
// the listing page's HTML price block.
func extractOfferPrice(offer map[string]any) string {
	priceObj := childMap(offer, "price")
	valueObj := childMap(priceObj, "value")
	if valueObj == nil {
		return ""
	}

	amount, ok := valueObj["amount"]
	if !ok || amount == nil {
		amount = valueObj["value"]
	}
	if num, isNum := toNumber(amount); !isNum || num == 0 {
		return ""
	}

	currency := stringValue(valueObj, "currency")
	if currency == "" {
		currency = stringValue(priceObj, "currency")
	}
	if currency == "" {
		currency = services.DefaultCurrency
	}
	return services.FormatAmount(amount, currency)
}

func extractCity(offer map[string]any) string {
	loc := childMap(offer, "locations_resolved")
	if loc == nil {
		loc = childMap(offer, "location")
	}
	if loc != nil {
		if name := stringValue(loc, "name"); name != "" {
			return name
		}
		if city := childMap(loc, "city"); city != nil {
			if name := stringValue(city, "name"); name != "" {
				return name
			}
		}
	}
	return unknownCity
}

// extractDate probes the date aliases and truncates ISO-8601 timestamps
// to their date portion.
func extractDate(offer map[string]any) string {
	for _, key := range dateKeys {
		s := stringValue(offer, key)
		if s == "" {
			continue
		}
		if i := strings.IndexByte(s, 'T'); i >= 0 {
			return s[:i]
		}
		return s
	}
	return unknownDate
}

// extractURL prefers the absolute url field, else joins the relative
// path onto the marketplace origin. Both "/path" and "path" forms occur.
func extractURL(offer map[string]any, baseURL string) string {
	if u := stringValue(offer, "url"); u != "" {
		return u
	}
	path := stringValue(offer, "path")
	if path == "" {
		return ""
	}
	base := strings.TrimRight(baseURL, "/")
	if strings.HasPrefix(path, "/") {
		return base + path
	}
	return base + "/" + path
}

// extractDescription strips markup and truncates to 200 characters.
func extractDescription(offer map[string]any) string {
	desc := firstString(offer, "description", "content")
	desc = htmlTagRe.ReplaceAllString(desc, "")
	runes := []rune(desc)
	if len(runes) > 200 {
		return string(runes[:200]) + "..."
	}
	return desc
}

// parsePriceValue strips everything but digits from a display price and
// parses the remainder. Unparsable or absent prices yield 0.
func parsePriceValue(display string) float64 {
	digits := nonDigitRe.ReplaceAllString(display, "")
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return v
}

// normalizePriceText collapses whitespace and rewrites the local
// currency words to the "₸" symbol in HTML-extracted price text.
func normalizePriceText(s string) string {
	s = strings.TrimSpace(s)
	s = spaceRunRe.ReplaceAllString(s, " ")
	return tengeRe.ReplaceAllString(s, "₸")
}

func childMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	child, _ := m[key].(map[string]any)
	return child
}

func stringValue(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringValue(m, key); s != "" {
			return s
		}
	}
	return ""
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
