package service

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Each field matcher is a pure pattern cascade over the conversation text:
// patterns are tried in priority order and the first hit wins. Matchers
// never fail; "not found" is just a nil field.

var titleCaser = cases.Title(language.English)

// gazetteerEntry maps a known place-name alias (possibly non-Latin) to its
// canonical English form.
type gazetteerEntry struct {
	alias     string
	canonical string
}

// Ordered so earlier entries win when a text mentions several known places.
var gazetteer = []gazetteerEntry{
	{"almaty", "Almaty"},
	{"astana", "Astana"},
	{"shymkent", "Shymkent"},
	{"aktobe", "Aktobe"},
	{"taraz", "Taraz"},
	{"pavlodar", "Pavlodar"},
	{"tokyo", "Tokyo"},
	{"new york", "New York"},
	{"london", "London"},
	{"paris", "Paris"},
	{"berlin", "Berlin"},
	{"madrid", "Madrid"},
	{"rome", "Rome"},
	{"moscow", "Moscow"},
	{"beijing", "Beijing"},
	{"seoul", "Seoul"},
	{"bangkok", "Bangkok"},
	{"dubai", "Dubai"},
	{"istanbul", "Istanbul"},
	{"kazakhstan", "Kazakhstan"},
	{"стамбул", "Istanbul"},
	{"москва", "Moscow"},
	{"алматы", "Almaty"},
	{"астана", "Astana"},
	{"токио", "Tokyo"},
	{"лондон", "London"},
	{"париж", "Paris"},
}

var gazetteerPatterns = buildGazetteerPatterns()

func buildGazetteerPatterns() []*regexp.Regexp {
	// \b does not work for non-ASCII, so boundaries are spelled out.
	patterns := make([]*regexp.Regexp, len(gazetteer))
	for i, entry := range gazetteer {
		patterns[i] = regexp.MustCompile(
			`(?i)(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(entry.alias) + `(?:$|[^\p{L}\p{N}])`)
	}
	return patterns
}

var locationPatterns = []*regexp.Regexp{
	// Travel prepositions followed by a capitalized phrase, stopping at
	// trailing qualifiers ("in 2", "for 4", "with 3"), punctuation, or EOL.
	regexp.MustCompile(`(?:\b(?i:in|to|at|visit|stay in|going to|traveling to|fly to|book in)\b|(?i:rent\s+\S+\s+in))\s+([A-Z][a-zA-Z]{2,}(?:\s+[A-Z][a-zA-Z]+)*?)(?:\s+(?i:in|for|with)\s+\d|\s*[,.!?]|\s*$)`),
	regexp.MustCompile(`(?i:place|area|city|town)\s+(?i:like|in|near)\s+([A-Z][a-zA-Z]{2,}(?:\s+[A-Z][a-zA-Z]+)*)`),
}

// Words that regularly appear after travel prepositions but never name a
// city. Geographic descriptors like "downtown" belong here too: they refine
// a location, they are not one.
var locationStoplist = map[string]struct{}{
	"help": {}, "looking": {}, "need": {}, "want": {}, "find": {}, "search": {},
	"book": {}, "stay": {}, "apartment": {}, "house": {}, "place": {}, "room": {},
	"home": {}, "hotel": {}, "rental": {}, "cheap": {}, "expensive": {},
	"budget": {}, "luxury": {}, "nice": {}, "good": {}, "great": {}, "perfect": {},
	"people": {}, "guests": {}, "adults": {}, "person": {}, "me": {}, "us": {},
	"them": {}, "night": {}, "day": {}, "week": {}, "month": {}, "year": {},
	"time": {}, "date": {}, "price": {}, "cost": {}, "money": {}, "dollar": {},
	"accommodation": {}, "something": {}, "somewhere": {}, "anywhere": {},
	"anything": {}, "everything": {}, "you": {}, "the": {}, "airbnb": {},
	"mountains": {}, "beach": {}, "downtown": {}, "center": {}, "close": {},
	"closer": {}, "near": {},
}

var locationFillerPhrases = []string{"help you", "find the", "perfect airbnb"}

// matchLocation extracts a place name: the gazetteer is checked first
// because a known city is unambiguous, then preposition-anchored patterns
// with strict stoplist filtering.
func matchLocation(text string) (string, bool) {
	for i, re := range gazetteerPatterns {
		if re.MatchString(text) {
			return gazetteer[i].canonical, true
		}
	}

	for _, re := range locationPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(m[1])
			if isPlausibleLocation(candidate) {
				return titleCaser.String(strings.ToLower(candidate)), true
			}
		}
	}
	return "", false
}

func isPlausibleLocation(candidate string) bool {
	lower := strings.ToLower(candidate)
	if len(lower) < 3 {
		return false
	}
	for _, word := range strings.Fields(lower) {
		if _, bad := locationStoplist[word]; bad {
			return false
		}
	}
	for _, phrase := range locationFillerPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}

var guestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s+(?:people|guests?|persons?|adults?)`),
	regexp.MustCompile(`(?i)(?:for|with)\s+(\d+)\b`),
	regexp.MustCompile(`(?i)(\d+)\s+of\s+us`),
}

func matchGuests(text string) (int, bool) {
	for _, re := range guestPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := atoiGroup(m[1]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// priceKind tells the price matcher how to interpret a matched amount.
type priceKind int

const (
	priceMaxOnly priceKind = iota // "under N", "max N": upper bound only
	priceKZT                      // amount in tenge, converted to USD max
	priceRange                    // explicit two-number range
	priceAround                   // approximate target, widened to a band
)

// Rough fixed rate used to turn a tenge budget into a USD ceiling.
const kztPerUSD = 450

// Band half-width applied to "around N" style budgets.
const aroundBand = 50

type pricePattern struct {
	re   *regexp.Regexp
	kind priceKind
}

// Maximum-only forms come first: "70 USD max" must never be read as a
// target of 70 with a band around it. Once one pattern fires the rest are
// skipped so a single mention is never double-counted.
var pricePatterns = []pricePattern{
	{regexp.MustCompile(`(?i)(\d+)\s*(?:usd|dollars?)\s*(?:per\s*(?:day|night)\s*)?max(?:imum)?`), priceMaxOnly},
	{regexp.MustCompile(`(?i)max(?:imum)?\s*(?:of\s*)?(?:usd\s*)?\$?(\d+)`), priceMaxOnly},
	{regexp.MustCompile(`(?i)under\s*\$?(\d+)`), priceMaxOnly},
	{regexp.MustCompile(`(?i)below\s*\$?(\d+)`), priceMaxOnly},
	{regexp.MustCompile(`(?i)up\s*to\s*\$?(\d+)`), priceMaxOnly},
	{regexp.MustCompile(`(?i)(\d+)\s*(?:kzt|tenge)`), priceKZT},
	{regexp.MustCompile(`(?i)\$(\d+)\s*-\s*\$?(\d+)`), priceRange},
	{regexp.MustCompile(`(?i)(?:between\s+)?(\d+)\s+(?:to|through)\s+(\d+)\s*(?:dollars?|\$)?`), priceRange},
	{regexp.MustCompile(`(?i)(?:around|about|roughly)\s*\$?(\d+)`), priceAround},
	{regexp.MustCompile(`(?i)budget\s*(?:of\s*)?(?:around\s*)?\$?(\d+)`), priceAround},
	{regexp.MustCompile(`\$(\d+)`), priceAround},
}

// matchPrice extracts price bounds. Exactly one pattern is applied.
func matchPrice(text string) (minPrice, maxPrice *int, ok bool) {
	for _, p := range pricePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch p.kind {
		case priceMaxOnly:
			n, err := atoiGroup(m[1])
			if err != nil {
				continue
			}
			return nil, intPtr(n), true
		case priceKZT:
			n, err := atoiGroup(m[1])
			if err != nil {
				continue
			}
			return nil, intPtr(n / kztPerUSD), true
		case priceRange:
			a, errA := atoiGroup(m[1])
			b, errB := atoiGroup(m[2])
			if errA != nil || errB != nil {
				continue
			}
			if a > b {
				a, b = b, a
			}
			return intPtr(a), intPtr(b), true
		case priceAround:
			n, err := atoiGroup(m[1])
			if err != nil {
				continue
			}
			lo := n - aroundBand
			if lo < 20 {
				lo = 20
			}
			return intPtr(lo), intPtr(n + aroundBand), true
		}
	}
	return nil, nil, false
}

type propertyPattern struct {
	re        *regexp.Regexp
	canonical string
}

var propertyPatterns = []propertyPattern{
	{regexp.MustCompile(`(?i)\b(?:house|houses|home|homes)\b`), "house"},
	{regexp.MustCompile(`(?i)\b(?:apartment|apartments|apt|apts)\b`), "apartment"},
	{regexp.MustCompile(`(?i)\b(?:villa|villas)\b`), "villa"},
	{regexp.MustCompile(`(?i)\b(?:cabin|cabins)\b`), "cabin"},
	{regexp.MustCompile(`(?i)\b(?:loft|lofts)\b`), "loft"},
	{regexp.MustCompile(`(?i)\b(?:cottage|cottages)\b`), "cottage"},
}

func matchPropertyType(text string) (string, bool) {
	for _, p := range propertyPatterns {
		if p.re.MatchString(text) {
			return p.canonical, true
		}
	}
	return "", false
}

type amenityPattern struct {
	canonical string
	re        *regexp.Regexp
}

// Amenity matchers are independent: all that fire are collected.
var amenityPatterns = []amenityPattern{
	{"wifi", regexp.MustCompile(`(?i)\b(?:wifi|wi-fi|internet|wireless)\b`)},
	{"kitchen", regexp.MustCompile(`(?i)\b(?:kitchen|cook|cooking|kitchenette)\b`)},
	{"pool", regexp.MustCompile(`(?i)\b(?:pool|swimming|swim)\b`)},
	{"parking", regexp.MustCompile(`(?i)\b(?:parking|garage)\b`)},
	{"air_conditioning", regexp.MustCompile(`(?i)\b(?:air\s*conditioning|aircon|ac|a/c|cooling)\b`)},
	{"washer", regexp.MustCompile(`(?i)\b(?:washer|washing|laundry)\b`)},
	{"hot_tub", regexp.MustCompile(`(?i)\b(?:hot\s*tub|jacuzzi|spa)\b`)},
	{"gym", regexp.MustCompile(`(?i)\b(?:gym|fitness|workout)\b`)},
	{"pets_allowed", regexp.MustCompile(`(?i)\b(?:pets?|dog|cat|pet-friendly)\b`)},
}

func matchAmenities(text string) []string {
	var found []string
	for _, p := range amenityPatterns {
		if p.re.MatchString(text) {
			found = append(found, p.canonical)
		}
	}
	return found
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func atoiGroup(s string) (int, error) { return strconv.Atoi(s) }
