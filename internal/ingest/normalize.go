// Package ingest turns raw scraper rows into typed listings.
//
// The cleaning functions handle the messy reality of scraped parcel
// data: Romanian number formatting (dot thousands separators, comma
// decimals), currency suffixes, free-text area fields, and columns
// that are simply missing. A field that cannot be parsed degrades to
// its unknown value; cleaning never returns an error and never aborts
// a batch.
package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/imm-a8ub/backoffice/internal/listing"
)

// areaRegex captures the integer immediately preceding an "mp" unit
// token, after embedded thousands-separator dots have been collapsed.
var areaRegex = regexp.MustCompile(`(?i)\b(\d+)\s*mp\b`)

// priceRegex validates the numeric part of a price after currency
// suffix and separators have been stripped.
var priceRegex = regexp.MustCompile(`^\d+(\.\d+)?$`)

// currencySuffixes are stripped case-insensitively from price fields.
var currencySuffixes = []string{"eur", "euro", "ron", "lei", "€"}

// LandCategory is the category whose descriptions get abbreviated for
// table display.
const LandCategory = "teren"

// shortDescriptionMax is the rune budget for abbreviated descriptions.
const shortDescriptionMax = 160

// CleanPrice parses a currency-formatted string ("1.000 EUR",
// "12.500,50 eur") into a non-negative amount. Dots are treated as
// thousands separators and a comma as the decimal mark. Anything that
// does not reduce to a plain number degrades to unknown.
func CleanPrice(raw string) listing.Price {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return listing.UnknownPrice
	}

	for _, suffix := range currencySuffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.TrimSpace(s)

	// Romanian formatting: "." groups thousands, "," marks decimals.
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, " ", "")

	if !priceRegex.MatchString(s) {
		return listing.UnknownPrice
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return listing.UnknownPrice
	}
	return listing.PriceOf(v)
}

// CleanArea extracts the surface in square meters from a free-text
// field ("500 mp", "teren 1.200mp deschidere 20m"). Dots embedded
// between digits are collapsed first so "1.200 mp" reads as 1200.
// Returns unknown when no "<number> mp" token is present.
func CleanArea(raw string) listing.Area {
	s := collapseDigitDots(strings.TrimSpace(raw))
	if s == "" {
		return listing.UnknownArea
	}

	m := areaRegex.FindStringSubmatch(s)
	if m == nil {
		return listing.UnknownArea
	}

	v, err := strconv.Atoi(m[1])
	if err != nil || v < 0 {
		return listing.UnknownArea
	}
	return listing.AreaOf(v)
}

// collapseDigitDots removes every dot that sits between two digits,
// leaving sentence punctuation alone.
func collapseDigitDots(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i, r := range runes {
		if r == '.' && i > 0 && i < len(runes)-1 &&
			unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// ShortDescription abbreviates the description for land listings so
// table rows stay scannable. Other categories pass through unchanged.
func ShortDescription(description, category string) string {
	if !strings.EqualFold(strings.TrimSpace(category), LandCategory) {
		return description
	}

	s := collapseWhitespace(description)
	runes := []rune(s)
	if len(runes) <= shortDescriptionMax {
		return s
	}

	cut := shortDescriptionMax
	// Back up to the previous word boundary so we never cut mid-word.
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = shortDescriptionMax
	}
	return strings.TrimRight(string(runes[:cut]), " ,;:") + "..."
}

// collapseWhitespace trims and folds internal whitespace runs into
// single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
