package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// ICICIParser handles ICICI Bank credit card statements. Its recognizer is
// the broadest of the built-in issuers, so it is registered after the
// issuers with more specific signatures.
type ICICIParser struct{}

func (p *ICICIParser) BankName() models.Issuer { return models.IssuerICICI }

func (p *ICICIParser) Recognize(text string) bool {
	return strings.Contains(toLower(text), "icici")
}

const (
	iciciProducts = `coral|ruby|platinum|emerald|sapphiro|apay|amazon|hpcl|hp|titanium|signature|miles`
	iciciLongDate = `([a-z]+\s+\d{1,2},\s+\d{4})`
	iciciNumDate  = `(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`
)

var (
	iciciCard = compile(
		`\d{4}[xX]{8,12}(\d{4})`,
		`(?i)(?:card\s+no|card\s+number|card|credit\s+card)\s*[:]?\s*\d{4}\s*[xX]{4,12}\s*(\d{4})`,
		`\d{4}\s+[xX]{4}\s+[xX]{4}\s+(\d{4})`,
		`\d{4}[-\s]\d{4}[-\s]\d{4}[-\s](\d{4})`,
	)

	iciciVariants = newVocabulary(strings.Split(iciciProducts, "|")...)
	// Product codes embedded in statement file names, e.g. RETAIL_CORAL_0824.
	iciciFileNames = compile(
		`(?i)retail[_-](`+iciciProducts+`)`,
		`(?i)(`+iciciProducts+`)[_-]retail`,
		`(?i)_([a-z]+)_retail`,
		`(?i)retail_([a-z]+)_`,
	)
	iciciVariantContext = []string{"icici", "credit card", "product", "statement", "bank"}

	iciciStatementLong = compile(`(?i)statement\s+date\s*[:]\s*` + iciciLongDate)
	iciciStatementNum  = compile(`(?i)statement\s+date\s*[:]\s*` + iciciNumDate)
	iciciColonDate     = compile(`[:]\s*(\d{1,2}/\d{1,2}/\d{4})`)

	iciciCycle = compile(
		`(?i)(?:statement\s+period|billing\s+period|period)\s*[:]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*[-–]?\s*to\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`(?i)(?:period|statement\s+date)\s*[:]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s+to\s+\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
	)

	iciciDueLong   = compile(`(?i)(?:payment\s+due\s+date|due\s+date)\s*[:]\s*` + iciciLongDate)
	iciciDueNum    = compile(`(?i)(?:payment\s+due\s+date|due\s+date)\s*[:]\s*` + iciciNumDate)
	iciciDueWindow = compile(`(?i)[:]\s*`+iciciLongDate, iciciNumDate)

	iciciSummaryBalance = compile(
		`(?i)total\s+amount\s+due\s*[:]\s*[₹RrSs]?\s*([\d]{1,3}(?:,\d{2,3})+(?:\.\d{2})?)`,
		`(?i)total\s+amount\s+due\s+([\d]{1,3}(?:,\d{2,3})+(?:\.\d{2})?)`,
		`(?i)total\s+amount\s+due\s*[:]\s*[₹Rr]?[Ss]?\s*([\d,]+(?:\.\d{2})?)`,
		`(?i)total\s+amount\s+due\s+([\d,]+(?:\.\d{2})?)`,
		`(?i)total\s+amount\s+due\s*[:]?\s*([\d,]+(?:\.\d{2})?)`,
	)
	iciciBalance = compile(
		`(?i)total\s+amount\s+due\s*[:]\s*[₹Rr]?[Ss]?\s*([\d,]+(?:\.\d{2})?)`,
		`(?i)total\s+amount\s+due\s+([\d,]+(?:\.\d{2})?)`,
		`(?i)total\s+amount\s+due\s*[:]?\s*[₹Rr]?[Ss]?\s*([\d]{1,3}(?:,\d{2,3})+(?:\.\d{2})?)`,
		`(?i)total\s+amount\s+due\s*[:]?\s*[₹Rr]?\s*([\d,]+(?:\.\d{2})?)`,
	)
	iciciAltBalance = compile(
		`(?i)amount\s+due\s*[:]\s*[₹Rr]?[Ss]?\s*([\d,]+(?:\.\d{2})?)`,
		`(?i)total\s+due\s*[:]\s*[₹Rr]?[Ss]?\s*([\d,]+(?:\.\d{2})?)`,
		`(?i)outstanding\s+amount\s*[:]\s*[₹Rr]?[Ss]?\s*([\d,]+(?:\.\d{2})?)`,
	)
	iciciPaymentSummary = compile(
		`(?i)total\s+amount\s+due\s*[:]?\s*([\d,]+(?:\.\d{2})?)`,
		`(?i)amount\s+due\s*[:]\s*([\d,]+(?:\.\d{2})?)`,
		`(?i)total\s+due\s*[:]\s*([\d,]+(?:\.\d{2})?)`,
		`(?i)outstanding\s+amount\s*[:]\s*([\d,]+(?:\.\d{2})?)`,
	)

	iciciNarrowBound = closedRange(1000, 100000)
	iciciWideBound   = positiveUpTo(500000)
	iciciExclusion   = &exclusion{
		phrases: creditLimitPhrases,
		before:  200,
		after:   200,
		anchor:  "total amount due",
	}

	iciciTransactions = newSection("transaction details", "emi", "spends overview").orStart("date")
	iciciTally        = tally{
		lines: []*regexp.Regexp{
			regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})\s+[A-Z][^\n]{5,}?\s+([\d,]+(?:\.\d{2})?)`),
		},
		skipKnownInLines: true,
	}
)

func (p *ICICIParser) Extract(text string) models.StatementFields {
	f := models.NewStatementFields(p.BankName())

	f.CardSuffix = p.cardSuffix(text)
	f.Variant = p.variant(text)

	stmtDate, hasStmtDate := p.statementDate(text)
	if cycle, ok := iciciCycle.first(text); ok {
		f.BillingCycle = cycle
	} else if hasStmtDate {
		f.BillingCycle = stmtDate
	}
	if hasStmtDate {
		f.StatementPeriod = stmtDate
	} else {
		f.StatementPeriod = f.BillingCycle
	}

	if due, ok := p.dueDate(text); ok {
		f.PaymentDueDate = due
	}
	if bal, ok := p.balance(text); ok {
		f.TotalBalance = rupees(bal)
	}

	sec, ok := iciciTransactions.find(text)
	n := 0
	if ok {
		n = iciciTally.count(sec, stmtDate, f.PaymentDueDate)
	}
	if n > 0 {
		f.TransactionCount = formatCount(n)
	} else if c, ok := phraseCount(text); ok {
		f.TransactionCount = c
	}
	return f
}

// cardSuffix skips the page header, where ICICI prints reference numbers
// that look like card numbers.
func (p *ICICIParser) cardSuffix(text string) string {
	lower := toLower(text)
	start := max(
		strings.Index(lower, "statement for"),
		strings.Index(lower, "credit card statement"),
		strings.Index(lower, "card no"),
	)
	if start < 0 {
		start = min(1500, len(text))
	} else {
		start = min(max(start, 500), len(text))
	}
	if s, ok := iciciCard.first(text[start:]); ok {
		return s
	}
	return lastFourFallback(text)
}

func (p *ICICIParser) variant(text string) string {
	head := headerOf(text, 5000)
	for _, re := range iciciFileNames {
		if m := re.FindStringSubmatch(head); m != nil && iciciVariants.has(m[1]) {
			return title(m[1])
		}
	}
	if v, ok := iciciVariants.findNear(head, 150, iciciVariantContext...); ok {
		return v
	}
	if v, ok := iciciVariants.find(text); ok {
		return v
	}
	return defaultVariant
}

func (p *ICICIParser) statementDate(text string) (string, bool) {
	if d, ok := iciciStatementLong.first(text); ok {
		return normalizeLongDate(d), true
	}
	if d, ok := iciciStatementNum.first(text); ok {
		return d, true
	}
	if area, ok := after(text, "statement date", 100); ok {
		return iciciColonDate.first(area)
	}
	return "", false
}

func (p *ICICIParser) dueDate(text string) (string, bool) {
	if d, ok := iciciDueLong.first(text); ok {
		return normalizeLongDate(d), true
	}
	if d, ok := iciciDueNum.first(text); ok {
		return d, true
	}
	if area, ok := after(text, "payment due date", 150); ok {
		if d, ok := iciciDueWindow.first(area); ok {
			return normalizeLongDate(d), true
		}
	}
	return "", false
}

func (p *ICICIParser) balance(text string) (amount, bool) {
	lower := toLower(text)

	start := max(
		strings.Index(lower, "payment due date"),
		strings.Index(lower, "statement date"),
		strings.Index(lower, "amount due"),
		strings.Index(lower, "total"),
	)
	if start >= 0 {
		if a, ok := iciciSummaryBalance.firstPlausible(window(text, start, 0, 2000), iciciNarrowBound, limitLabel); ok {
			return a, true
		}
	}

	if a, ok := iciciBalance.maxPlausible(text, iciciWideBound, iciciExclusion); ok {
		return a, true
	}
	if a, ok := iciciAltBalance.firstPlausible(text, iciciWideBound, limitLabel); ok {
		return a, true
	}

	start = max(strings.Index(lower, "payment summary"), strings.Index(lower, "amount due"))
	if start < 0 {
		start = strings.Index(lower, "total")
	}
	if start >= 0 {
		if a, ok := iciciPaymentSummary.firstPlausible(window(text, start, 0, 1200), iciciWideBound, limitLabel); ok {
			return a, true
		}
	}

	if a, ok := iciciPaymentSummary[:1].maxPlausible(text, iciciNarrowBound, limitLabel); ok {
		return a, true
	}

	start = strings.Index(lower, "payment")
	if start < 0 {
		start = strings.Index(lower, "statement")
	}
	if start < 0 {
		return amount{}, false
	}
	area := window(text, start, 0, 2500)
	return pickMax(area, scanAmounts(groupedFigure, area), iciciNarrowBound, limitLabel)
}
