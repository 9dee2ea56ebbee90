package matching

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FieldKind selects how a raw value is normalized.
type FieldKind int

const (
	FieldDate FieldKind = iota
	FieldAmount
	FieldDescription
)

// Locale decides which character is the decimal separator of amounts.
type Locale string

const (
	LocaleDot   Locale = "dot"   // 1,234.56
	LocaleComma Locale = "comma" // 1.234,56
)

// ParseLocale maps a config string to a Locale, defaulting to LocaleDot.
func ParseLocale(s string) Locale {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "comma", "pt-br", "pt_br", "de", "eu":
		return LocaleComma
	default:
		return LocaleDot
	}
}

// dateLayouts is tried in order. Day-first slashed dates win over month-first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
}

var currencySymbols = []string{"R$", "US$", "$", "€", "£", "¥"}

// Value is the outcome of Normalize. OK is false for malformed dates and
// amounts; such a value must never be matched.
type Value struct {
	Kind   FieldKind
	Date   time.Time
	Amount decimal.Decimal
	Text   string
	OK     bool
}

// Normalizer canonicalizes raw ledger fields. It has no state besides its
// locale and is safe for concurrent use.
type Normalizer struct {
	locale Locale
}

// NewNormalizer returns a Normalizer for the given locale.
func NewNormalizer(locale Locale) Normalizer {
	if locale != LocaleComma {
		locale = LocaleDot
	}
	return Normalizer{locale: locale}
}

// Normalize never fails; check Value.OK.
func (n Normalizer) Normalize(raw string, kind FieldKind) Value {
	switch kind {
	case FieldDate:
		d, ok := n.Date(raw)
		return Value{Kind: kind, Date: d, OK: ok}
	case FieldAmount:
		a, ok := n.Amount(raw)
		return Value{Kind: kind, Amount: a, OK: ok}
	default:
		return Value{Kind: FieldDescription, Text: n.Description(raw), OK: true}
	}
}

// Date parses raw with the fixed layout precedence and truncates it to a UTC
// calendar day.
func (n Normalizer) Date(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// Amount parses a signed decimal amount.
func (n Normalizer) Amount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSuffix(s, "-")
	}

	switch {
	case strings.HasPrefix(s, "-"):
		negative = !negative
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	thousands, dec := ",", "."
	if n.locale == LocaleComma {
		thousands, dec = ".", ","
	}
	s, ok := canonicalAmount(s, thousands, dec)
	if !ok {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// canonicalAmount rewrites an unsigned amount to "123.45" form. The
// thousands separator is only accepted between 3-digit groups of the integer
// part, so an amount written for the other locale is rejected.
func canonicalAmount(s, thousands, dec string) (string, bool) {
	intPart, frac, hasDec := strings.Cut(s, dec)
	if hasDec && (frac == "" || !allDigits(frac)) {
		return "", false
	}

	groups := strings.Split(intPart, thousands)
	if len(groups) > 1 {
		if len(groups[0]) == 0 || len(groups[0]) > 3 {
			return "", false
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return "", false
			}
		}
	}
	intPart = strings.Join(groups, "")
	if intPart != "" && !allDigits(intPart) {
		return "", false
	}
	if intPart == "" {
		if !hasDec {
			return "", false
		}
		intPart = "0"
	}

	if hasDec {
		return intPart + "." + frac, true
	}
	return intPart, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Description folds case, strips diacritics and punctuation and collapses
// whitespace. The result is only used for scoring.
func (n Normalizer) Description(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, raw)
	if err != nil {
		s = raw
	}
	s = cases.Fold().String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
