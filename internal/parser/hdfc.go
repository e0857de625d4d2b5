package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// HDFCParser handles HDFC Bank credit card statements.
type HDFCParser struct{}

func (p *HDFCParser) BankName() models.Issuer { return models.IssuerHDFC }

var hdfcSignature = regexp.MustCompile(`(?i)hdfc\s+bank`)

func (p *HDFCParser) Recognize(text string) bool {
	if hdfcSignature.MatchString(text) {
		return true
	}
	lower := toLower(text)
	return strings.Contains(lower, "hdfc") && strings.Contains(lower, "we understand your world")
}

const hdfcDate = `(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`

var (
	hdfcCard = compile(
		`(?i)(?:card\s+no|card\s+number|card)\s*[:]?\s*\d{4}\s+\d{2}[xX]{2}\s+[xX]{4}\s+(\d{4})`,
		`(?:\d{4}\s+)?\d{4}\s+\d{1,2}[xX]{1,2}\s+[xX]{2,4}\s+(\d{4})`,
		`\d{4}[\s-]\d{4}[\s-]\d{4}[\s-](\d{4})`,
	)

	hdfcVariantWords = []string{
		"millennia", "regalia", "diners", "infinia", "moneyback", "freedom",
		"titanium", "platinum", "gold", "classic", "aura", "imperia", "infinity",
	}
	hdfcVariants       = newVocabulary(hdfcVariantWords...)
	hdfcVariantHeading = regexp.MustCompile(`(?i)\b(` + strings.Join(hdfcVariantWords, "|") + `)\s+credit\s+card\s+statement`)

	hdfcStatementDate = compile(
		`(?i)(?:statement\s+date|date\s+of\s+statement)\s*[:]\s*`+hdfcDate,
		`(?i)(?:statement\s+date|date\s+of\s+statement)\s*[:]?\s*`+hdfcDate,
		`(?i)statement\s+for\s+.*?`+hdfcDate,
	)
	hdfcSlashDate = compile(`(\d{1,2}/\d{1,2}/\d{4})`)

	hdfcCycle = compile(
		`(?i)(?:billing\s+period|statement\s+period|period)\s*[:]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*[-–]?\s*to\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`(?i)(?:billing\s+period|statement\s+period|period)\s*[:]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*[-–]\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
	)
	hdfcCycleNearHeading = compile(`(?i)[:]\s*(\d{1,2}/\d{1,2}/\d{4}\s*[-–]?\s*to\s*\d{1,2}/\d{1,2}/\d{4})`)

	hdfcDue = compile(
		`(?i)payment\s+due\s+date\s*[:]?\s*(\d{1,2}/\d{1,2}/\d{4})`,
		`(?i)(?:due\s+date|payment\s+due)\s*[:]?\s*`+hdfcDate,
		`(?i)payment\s+due\s+date[^\d]*(\d{1,2}/\d{1,2}/\d{4})`,
	)

	hdfcTotalDues  = compile(`(?i)total\s+dues?\s*[:]?\s*[₹Rr]?\s*([\d,]+(?:\.\d{2})?)`)
	hdfcBound      = positiveUpTo(500000)
	hdfcExclusions = &exclusion{
		phrases: []string{"opening balance", "previous balance", "credit limit", "available credit"},
		before:  150,
		after:   150,
		anchor:  "total due",
	}

	hdfcTransactions = newSection("domestic transactions", "emi", "important information", "international transactions")
	hdfcTally        = tally{
		lines: compile(
			`(\d{1,2}/\d{1,2}/\d{4})\s+[A-Z][^\n\r]{5,}?\s+([\d,]+(?:\.\d{2})?)`,
		),
		skipKnownInLines: true,
	}
)

func (p *HDFCParser) Extract(text string) models.StatementFields {
	f := models.NewStatementFields(p.BankName())

	f.CardSuffix = lastFour(text, hdfcCard)
	f.Variant = p.variant(text)

	stmtDate, hasStmtDate := p.statementDate(text)
	if cycle, ok := p.billingCycle(text); ok {
		f.BillingCycle = cycle
	} else if hasStmtDate {
		f.BillingCycle = stmtDate
	}
	if hasStmtDate {
		f.StatementPeriod = stmtDate
	} else {
		f.StatementPeriod = f.BillingCycle
	}

	if due, ok := hdfcDue.first(text); ok {
		f.PaymentDueDate = due
	}
	if bal, ok := p.balance(text); ok {
		f.TotalBalance = rupees(bal)
	}

	if sec, ok := hdfcTransactions.find(text); ok {
		f.TransactionCount = formatCount(hdfcTally.count(sec, stmtDate, f.PaymentDueDate))
	}
	return f
}

func (p *HDFCParser) variant(text string) string {
	if m := hdfcVariantHeading.FindStringSubmatch(text); m != nil {
		return title(m[1])
	}
	if v, ok := hdfcVariants.find(text); ok {
		return v
	}
	return defaultVariant
}

func (p *HDFCParser) statementDate(text string) (string, bool) {
	if d, ok := hdfcStatementDate.first(text); ok {
		return d, true
	}
	if area, ok := after(text, "statement for hdfc bank credit card", 300); ok {
		return hdfcSlashDate.first(area)
	}
	return "", false
}

func (p *HDFCParser) billingCycle(text string) (string, bool) {
	if c, ok := hdfcCycle.first(text); ok {
		return c, true
	}
	area, ok := after(text, "billing period", 100)
	if !ok {
		area, ok = after(text, "statement period", 100)
	}
	if !ok {
		return "", false
	}
	return hdfcCycleNearHeading.first(area)
}

// balance prefers the total dues printed next to the payment due date,
// then the largest plausible total dues anywhere in the statement.
func (p *HDFCParser) balance(text string) (amount, bool) {
	if area, ok := after(text, "payment due date", 800); ok {
		if a, ok := hdfcTotalDues.firstPlausible(area, hdfcBound, limitLabel); ok {
			return a, true
		}
	}
	return hdfcTotalDues.maxPlausible(text, hdfcBound, hdfcExclusions)
}
