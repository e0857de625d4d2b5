package parser

import (
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// KotakParser handles Kotak Mahindra Bank credit card statements.
// Kotak prints dates as DD-Mon-YY; they are normalized to DD/MM/YYYY.
type KotakParser struct {
	// YearPivot is used when expanding two-digit years.
	YearPivot int
}

func (p *KotakParser) BankName() models.Issuer { return models.IssuerKotak }

var kotakStrongSignatures = []string{
	"kotak credit card", "kotak bank credit card", "kotak bank statement", "my kotak credit card",
}

func (p *KotakParser) Recognize(text string) bool {
	header := toLower(headerOf(text, headerSize))
	if containsAny(header, kotakStrongSignatures) {
		return true
	}
	return strings.Contains(header, "kotak") &&
		containsAny(header, []string{"credit card", "statement", "bank"})
}

const kotakDate = `(\d{1,2}-\w{3}-\d{2,4})`

var (
	kotakCard = compile(
		`(?i)(?:primary\s+card\s+number|card\s+number)\s*[:]\s*\d{4}\s*[xX]{4,12}\s*(\d{4})`,
		`\d{4}\d{2}[xX]{6,12}(\d{4})`,
		`\d{4}\s+[xX]{4}\s+[xX]{4}\s+(\d{4})`,
	)

	kotakVariants = newVocabulary(
		"royal", "legend", "mojo", "united", "white", "league", "dream", "hdfc",
		"primio", "indigo", "nxt", "lifestyle", "insta", "gold", "platinum",
		"titanium", "premium", "signature", "infinity", "pvr", "dining", "travel",
		"super", "ruby", "emerald", "sapphire", "black",
	)

	kotakPeriod = compile(
		`(?i)(?:transaction\s+details|period|statement\s+period)\s*(?:from)?\s*`+kotakDate+`\s+to\s+`+kotakDate,
		`(?i)(?:statement\s+period|period)\s*[:]?\s*`+kotakDate+`\s+to\s+`+kotakDate,
	)
	kotakStatementDate = compile(`(?i)statement\s+date\s*[:]\s*` + kotakDate)

	kotakNoPayment = compile(`(?i)remember\s+to\s+pay\s+by\s*[:]?\s*no\s+payment\s+required`)
	kotakDue       = compile(
		`(?i)remember\s+to\s+pay\s+by\s*[:]\s*`+kotakDate,
		`(?i)(?:payment\s+due\s+date|due\s+date)\s*[:]\s*`+kotakDate,
		`(?i)pay\s+by\s*[:]\s*`+kotakDate,
		`(?i)(?:payment\s+due|due\s+date|pay\s+by|remember\s+to\s+pay)\s*[:]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
	)

	kotakBalance = compile(
		`(?i)total\s+amount\s+due\s*\(?(?:tad|payable)\)?\s*[:]\s*[Rr][Ss]\.?\s*([-]?[\d,]+(?:\.\d{2})?)`,
		`(?i)total\s+amount\s+due\s*\(?(?:tad|payable)\)?\s*[:]\s*([-]?[\d,]+(?:\.\d{2})?)`,
		`(?i)total\s+amount\s+due\s*[:]\s*[Rr][Ss]\.?\s*([-]?[\d,]+(?:\.\d{2})?)`,
		`(?i)total\s+amount\s+due\s*[:]?\s*([-]?[\d,]+(?:\.\d{2})?)`,
	)
	kotakSummaryBalance = compile(
		`(?i)amount\s+due\s*[:]?\s*([-]?[\d,]+(?:\.\d{2})?)`,
		`(?i)tad\s*[:]?\s*[Rr][Ss]\.?\s*([-]?[\d,]+(?:\.\d{2})?)`,
	)
	kotakOutstanding = compile(
		`(?i)total\s+outstanding\s+including\s*[:]\s*[Rr][Ss]\.?\s*([-]?[\d,]+(?:\.\d{2})?)`,
	)
	kotakSignedGrouped = compile(`([-]?[\d]{1,3}(?:,\d{2,3})+(?:\.\d{2})?)`)
	kotakSignedPlain   = compile(`([-]?[\d]+(?:\.[\d]{2})?)`)

	kotakBalanceBound = magnitudeBelow(100000)
	kotakExclusion    = &exclusion{
		phrases: []string{"credit limit", "available credit", "self set credit"},
		before:  100,
		after:   200,
	}

	kotakTransactions = newSection("transaction details", "total purchase", "total purchases", "total retail purchases", "my rewards")
	kotakTally        = tally{
		lines: compile(
			`(?i)(\d{1,2}/\d{1,2}/\d{4})\s+[A-Z][^\n\r]{5,}?\s+([\d,]+(?:\.\d{2})?)`,
			`(?i)(\d{1,2}/\d{1,2}/\d{4})\s+[A-Za-z][^\n\r]{3,}?\s+([\d,]+(?:\.\d{2})?)`,
			`(?i)(\d{1,2}/\d{1,2}/\d{4})\s+[^\d]{5,100}\s+([\d,]+(?:\.\d{2})?)`,
		),
		distinctDates: true,
		rawBelow:      2,
	}
)

func (p *KotakParser) Extract(text string) models.StatementFields {
	f := models.NewStatementFields(p.BankName())

	f.CardSuffix = lastFour(text, kotakCard)
	if v, ok := kotakVariants.find(text); ok {
		f.Variant = v
	} else {
		f.Variant = defaultVariant
	}

	var periodStart, periodEnd string
	if m, ok := kotakPeriod.submatch(text); ok {
		periodStart, periodEnd = p.date(m[1]), p.date(m[2])
		f.StatementPeriod = periodStart + " - " + periodEnd
		f.BillingCycle = f.StatementPeriod
	} else if d, ok := kotakStatementDate.first(text); ok {
		f.StatementPeriod = p.date(d)
		f.BillingCycle = f.StatementPeriod
	}

	if due, ok := p.dueDate(text); ok {
		f.PaymentDueDate = due
	}
	if bal, ok := p.balance(text); ok {
		f.TotalBalance = rupees(bal)
	}

	if sec, ok := kotakTransactions.find(text); ok {
		f.TransactionCount = formatCount(kotakTally.count(sec, periodStart, periodEnd, f.PaymentDueDate))
	}
	return f
}

// date normalizes a Kotak date; a zero YearPivot means DefaultYearPivot.
func (p *KotakParser) date(s string) string {
	pivot := p.YearPivot
	if pivot <= 0 {
		pivot = DefaultYearPivot
	}
	return normalizeMonthDate(s, pivot)
}

// dueDate returns false both when no date is printed and when the
// statement says no payment is required.
func (p *KotakParser) dueDate(text string) (string, bool) {
	if _, ok := kotakNoPayment.submatch(text); ok {
		return "", false
	}
	if d, ok := kotakDue.first(text); ok {
		return p.date(d), true
	}
	if summary, ok := after(text, "statement summary", 2500); ok {
		if d, ok := kotakDue.first(summary); ok {
			return p.date(d), true
		}
	}
	return "", false
}

func (p *KotakParser) balance(text string) (amount, bool) {
	if a, ok := kotakBalance.firstPlausible(text, kotakBalanceBound, kotakExclusion); ok {
		return a, true
	}
	if summary, ok := after(text, "statement summary", 3000); ok {
		if a, ok := kotakBalance.firstPlausible(summary, kotakBalanceBound, kotakExclusion); ok {
			return a, true
		}
		if a, ok := kotakSummaryBalance.firstPlausible(summary, kotakBalanceBound, kotakExclusion); ok {
			return a, true
		}
	}
	if a, ok := kotakOutstanding.firstPlausible(text, unbounded, limitLabel); ok {
		return a, true
	}
	return p.balanceNearHeading(text)
}

// balanceNearHeading scans the figures printed after the amount due heading.
func (p *KotakParser) balanceNearHeading(text string) (amount, bool) {
	lower := toLower(text)
	start := max(strings.Index(lower, "total amount due"), strings.Index(lower, "amount due"))
	if start < 0 {
		return amount{}, false
	}
	area := window(text, start, 0, 1000)

	best, ok := kotakSignedGrouped.maxPlausible(area, kotakBalanceBound, kotakExclusion)
	if ok && best.value.Abs().IntPart() >= 1000 {
		return best, true
	}

	found := ok
	for _, a := range scanAmounts(kotakSignedPlain[0], area) {
		if !kotakBalanceBound.contains(a.value) || kotakExclusion.rejects(area, a.at) {
			continue
		}
		if found && !a.value.Abs().GreaterThan(best.value.Abs()) {
			continue
		}
		best, found = a, true
		if best.value.Abs().IsPositive() && best.value.Abs().IntPart() < 10000 {
			break
		}
	}
	return best, found
}
