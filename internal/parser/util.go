package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

const (
	// headerSize bounds the window most recognizers inspect.
	headerSize = 3000
	rupee      = "₹"
	// defaultVariant is reported when no product name is found.
	defaultVariant = "Standard"
	// DefaultYearPivot maps two-digit years below it to 20xx, the rest to 19xx.
	DefaultYearPivot = 50
)

// Date and figure shapes shared across issuers.
var (
	// D/M/YYYY tokens counted inside transaction sections.
	dateToken = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
	// DD-Mon-YY or DD-Mon-YYYY, e.g. 05-Aug-24
	monthDate = regexp.MustCompile(`(?i)^(\d{1,2})-([a-z]{3})[a-z]*-(\d{2,4})$`)
	// Month D, YYYY, e.g. August 5, 2024
	longDate = regexp.MustCompile(`(?i)^([a-z]+)\s+(\d{1,2}),\s+(\d{4})$`)
	// 1,23,456.78 style grouped figures.
	groupedFigure = regexp.MustCompile(`([\d]{1,3}(?:,\d{2,3})+(?:\.\d{2})?)`)
	// "12 transactions" style summary phrases.
	countPhrase = regexp.MustCompile(`(?i)\b(\d{1,4})[ \t]+(?:transaction|purchase|charge|payment|debit|credit)s?\b`)
	// Masked or grouped card numbers, used when no issuer pattern matched.
	genericLastFour = regexp.MustCompile(`(?:\*|x|X|\d){11,12}(\d{4})|(?:\d{4}[\s-]){3}(\d{4})`)
)

var months = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04", "may": "05", "jun": "06",
	"jul": "07", "aug": "08", "sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

var titleCaser = cases.Title(language.English)

// headerOf returns at most the first n bytes of text.
func headerOf(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n]
}

// window returns text[at-before : at+after], clamped to the text.
func window(text string, at, before, after int) string {
	start := max(at-before, 0)
	end := min(at+after, len(text))
	if start >= end {
		return ""
	}
	return text[start:end]
}

// after returns up to n bytes of text starting at the first occurrence of
// marker (case-insensitive). ok is false when the marker is absent.
func after(text, marker string, n int) (string, bool) {
	i := strings.Index(toLower(text), marker)
	if i < 0 {
		return "", false
	}
	return window(text, i, 0, n), true
}

// cascade is an ordered list of patterns tried until one matches.
type cascade []*regexp.Regexp

func compile(exprs ...string) cascade {
	c := make(cascade, len(exprs))
	for i, e := range exprs {
		c[i] = regexp.MustCompile(e)
	}
	return c
}

// first returns the trimmed first capture group of the first pattern that
// matches text.
func (c cascade) first(text string) (string, bool) {
	for _, re := range c {
		m := re.FindStringSubmatch(text)
		if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// submatch returns every capture group of the first pattern that matches.
func (c cascade) submatch(text string) ([]string, bool) {
	for _, re := range c {
		if m := re.FindStringSubmatch(text); m != nil {
			return m, true
		}
	}
	return nil, false
}

// amount is a numeric candidate found in statement text.
type amount struct {
	raw   string
	value decimal.Decimal
	at    int
}

var amountNoise = strings.NewReplacer(
	rupee, "",
	"Rs.", "", "Rs", "", "rs.", "", "rs", "",
	",", "",
	" ", "",
	"\u00A0", "",
)

// parseAmount converts a figure like "1,23,456.78" or "Rs. -500" to a decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = amountNoise.Replace(s)
	if s == "" || s == "-" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(s)
}

// scanAmounts collects every match of re in text whose first group parses
// as a number.
func scanAmounts(re *regexp.Regexp, text string) []amount {
	var out []amount
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if len(loc) < 4 || loc[2] < 0 {
			continue
		}
		raw := strings.TrimSpace(text[loc[2]:loc[3]])
		v, err := parseAmount(raw)
		if err != nil {
			continue
		}
		out = append(out, amount{raw: raw, value: v, at: loc[0]})
	}
	return out
}

// bound is a plausibility range for a numeric field.
type bound struct {
	lo, hi         decimal.Decimal
	loOpen, hiOpen bool
	// abs compares the magnitude, so credit balances are accepted.
	abs bool
	any bool
}

func closedRange(lo, hi int64) bound {
	return bound{lo: decimal.NewFromInt(lo), hi: decimal.NewFromInt(hi)}
}

// positiveUpTo is (0, hi].
func positiveUpTo(hi int64) bound {
	return bound{lo: decimal.Zero, hi: decimal.NewFromInt(hi), loOpen: true}
}

// magnitudeBelow is |v| < hi.
func magnitudeBelow(hi int64) bound {
	return bound{lo: decimal.Zero, hi: decimal.NewFromInt(hi), hiOpen: true, abs: true}
}

var unbounded = bound{any: true}

func (b bound) contains(v decimal.Decimal) bool {
	if b.any {
		return true
	}
	if b.abs {
		v = v.Abs()
	}
	if c := v.Cmp(b.lo); c < 0 || (c == 0 && b.loOpen) {
		return false
	}
	if c := v.Cmp(b.hi); c > 0 || (c == 0 && b.hiOpen) {
		return false
	}
	return true
}

// exclusion rejects candidates whose surrounding text names a figure that
// is not the balance, such as a credit limit.
type exclusion struct {
	phrases       []string
	before, after int
	// anchor, when set, limits rejection to phrases occurring earlier in
	// the window than the anchor keyword.
	anchor string
	// adjacent limits rejection to a phrase with no other figure between
	// it and the candidate.
	adjacent bool
}

// creditLimitPhrases are figures that sit next to the balance but are not it.
var creditLimitPhrases = []string{"credit limit", "available credit"}

// preceding rejects figures labelled by one of the phrases within the n
// bytes before them.
func preceding(n int, phrases ...string) *exclusion {
	return &exclusion{phrases: phrases, before: n, adjacent: true}
}

// limitLabel rejects a figure whose own label is a credit limit. Every
// balance step that has no wider exclusion uses it.
var limitLabel = preceding(40, creditLimitPhrases...)

func (x *exclusion) rejects(scope string, at int) bool {
	if x == nil {
		return false
	}
	ctx := toLower(window(scope, at, x.before, x.after))
	if x.adjacent {
		for _, p := range x.phrases {
			if i := strings.LastIndex(ctx, p); i >= 0 && !strings.ContainsAny(ctx[i+len(p):], "0123456789") {
				return true
			}
		}
		return false
	}
	anchorAt := -1
	if x.anchor != "" {
		if anchorAt = strings.Index(ctx, x.anchor); anchorAt < 0 {
			return false
		}
	}
	for _, p := range x.phrases {
		i := strings.Index(ctx, p)
		if i < 0 {
			continue
		}
		if x.anchor == "" || i < anchorAt {
			return true
		}
	}
	return false
}

// pickFirst returns the first candidate that is in bounds and not excluded.
func pickFirst(scope string, cands []amount, b bound, x *exclusion) (amount, bool) {
	for _, a := range cands {
		if b.contains(a.value) && !x.rejects(scope, a.at) {
			return a, true
		}
	}
	return amount{}, false
}

// pickMax returns the largest plausible candidate; ties keep the earliest.
func pickMax(scope string, cands []amount, b bound, x *exclusion) (amount, bool) {
	var best amount
	found := false
	for _, a := range cands {
		if !b.contains(a.value) || x.rejects(scope, a.at) {
			continue
		}
		if !found || a.value.GreaterThan(best.value) {
			best, found = a, true
		}
	}
	return best, found
}

// firstPlausible walks the cascade in order and returns the first
// plausible candidate of the first pattern that yields one.
func (c cascade) firstPlausible(scope string, b bound, x *exclusion) (amount, bool) {
	for _, re := range c {
		if a, ok := pickFirst(scope, scanAmounts(re, scope), b, x); ok {
			return a, true
		}
	}
	return amount{}, false
}

// maxPlausible returns the largest plausible candidate over all patterns.
func (c cascade) maxPlausible(scope string, b bound, x *exclusion) (amount, bool) {
	var all []amount
	for _, re := range c {
		all = append(all, scanAmounts(re, scope)...)
	}
	return pickMax(scope, all, b, x)
}

func rupees(a amount) string {
	return rupee + a.raw
}

// sectionSpec bounds a statement section by a start heading and the end
// headings that may follow it. End headings match case-insensitively on
// word boundaries.
type sectionSpec struct {
	starts []string
	ends   []*regexp.Regexp
}

func newSection(start string, ends ...string) sectionSpec {
	s := sectionSpec{starts: []string{start}}
	for _, e := range ends {
		s.ends = append(s.ends, regexp.MustCompile(`\b`+regexp.QuoteMeta(e)+`\b`))
	}
	return s
}

// orStart adds a start heading tried when the earlier ones are missing.
func (s sectionSpec) orStart(start string) sectionSpec {
	s.starts = append(append([]string(nil), s.starts...), start)
	return s
}

// find returns the text from the first start heading present up to the
// earliest end heading found after it.
func (s sectionSpec) find(text string) (string, bool) {
	lower := toLower(text)
	for _, start := range s.starts {
		i := strings.Index(lower, start)
		if i < 0 {
			continue
		}
		body := text[i:]
		lowerBody := lower[i:]
		end := len(body)
		for _, re := range s.ends {
			if loc := re.FindStringIndex(lowerBody); loc != nil && loc[0] > 0 && loc[0] < end {
				end = loc[0]
			}
		}
		return body[:end], true
	}
	return "", false
}

// tally counts transactions in a bounded section.
type tally struct {
	// lines match one listed transaction; group 1 is the date, group 2 the amount.
	lines []*regexp.Regexp
	// skipKnownInLines drops structured lines dated on a known date.
	skipKnownInLines bool
	// distinctDates counts each date token once in the raw count.
	distinctDates bool
	// rawBelow, when positive, consults the raw date count only if fewer
	// than rawBelow structured lines were found.
	rawBelow int
}

// count returns the larger of the deduplicated structured line count and
// the raw date-token count. Tokens equal to a known date (statement date,
// due date, period ends) are not counted as transactions.
func (t tally) count(sec string, known ...string) int {
	skip := make(map[string]bool)
	for _, k := range known {
		if models.IsResolved(k) {
			skip[canonicalDate(k)] = true
		}
	}

	seen := make(map[string]struct{})
	for _, re := range t.lines {
		for _, m := range re.FindAllStringSubmatch(sec, -1) {
			if t.skipKnownInLines && skip[canonicalDate(m[1])] {
				continue
			}
			seen[m[1]+"|"+strings.TrimSpace(m[2])] = struct{}{}
		}
	}
	n := len(seen)
	if t.rawBelow > 0 && n >= t.rawBelow {
		return n
	}

	raw := 0
	distinct := make(map[string]struct{})
	for _, m := range dateToken.FindAllStringSubmatch(sec, -1) {
		d := canonicalDate(m[1])
		if skip[d] {
			continue
		}
		raw++
		distinct[d] = struct{}{}
	}
	if t.distinctDates {
		raw = len(distinct)
	}
	return max(n, raw)
}

// phraseCount finds a "<N> transactions" summary phrase.
func phraseCount(text string) (string, bool) {
	if m := countPhrase.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

func formatCount(n int) string {
	if n <= 0 {
		return models.Sentinel
	}
	return strconv.Itoa(n)
}

// canonicalDate zero-pads a D/M/YYYY date so 5/8/2024 equals 05/08/2024.
func canonicalDate(s string) string {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return strings.TrimSpace(s)
	}
	for i := 0; i < 2; i++ {
		if len(parts[i]) == 1 {
			parts[i] = "0" + parts[i]
		}
	}
	return strings.Join(parts, "/")
}

// normalizeMonthDate converts DD-Mon-YY[YY] to DD/MM/YYYY. Two-digit years
// below pivot become 20xx, others 19xx. Unrecognized input is returned as is.
func normalizeMonthDate(s string, pivot int) string {
	m := monthDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return s
	}
	mon, ok := months[toLower(m[2])]
	if !ok {
		return s
	}
	day, _ := strconv.Atoi(m[1])
	return fmt.Sprintf("%02d/%s/%s", day, mon, expandYear(m[3], pivot))
}

// normalizeLongDate converts "August 5, 2024" to 05/08/2024.
func normalizeLongDate(s string) string {
	m := longDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || len(m[1]) < 3 {
		return s
	}
	mon, ok := months[toLower(m[1][:3])]
	if !ok {
		return s
	}
	day, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%02d/%s/%s", day, mon, m[3])
}

func expandYear(y string, pivot int) string {
	if len(y) != 2 {
		return y
	}
	n, err := strconv.Atoi(y)
	if err != nil {
		return y
	}
	if n < pivot {
		return "20" + y
	}
	return "19" + y
}

// vocabulary is an ordered list of product names; earlier entries win
// when several occur at the same position.
type vocabulary struct {
	words []string
	re    *regexp.Regexp
}

func newVocabulary(words ...string) vocabulary {
	return vocabulary{
		words: words,
		re:    regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`),
	}
}

// find returns the first product name in text, title-cased.
func (v vocabulary) find(text string) (string, bool) {
	if m := v.re.FindStringSubmatch(text); m != nil {
		return title(m[1]), true
	}
	return "", false
}

// findNear returns the first product name with any of the context words
// within radius bytes of it.
func (v vocabulary) findNear(text string, radius int, context ...string) (string, bool) {
	for _, loc := range v.re.FindAllStringSubmatchIndex(text, -1) {
		ctx := toLower(window(text, loc[0], radius, radius))
		if containsAny(ctx, context) {
			return title(text[loc[2]:loc[3]]), true
		}
	}
	return "", false
}

// has reports whether word belongs to the vocabulary.
func (v vocabulary) has(word string) bool {
	w := toLower(word)
	for _, x := range v.words {
		if x == w {
			return true
		}
	}
	return false
}

// title title-cases s and collapses internal whitespace.
func title(s string) string {
	return titleCaser.String(strings.Join(strings.Fields(toLower(s)), " "))
}

// lastFour applies the issuer cascade, then the generic heuristic.
func lastFour(text string, c cascade) string {
	if s, ok := c.first(text); ok {
		return s
	}
	return lastFourFallback(text)
}

func lastFourFallback(text string) string {
	m := genericLastFour.FindStringSubmatch(text)
	if m == nil {
		return models.Sentinel
	}
	if m[1] != "" {
		return m[1]
	}
	if m[2] != "" {
		return m[2]
	}
	return models.Sentinel
}
