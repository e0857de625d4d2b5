package parser

import (
	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// summaryLayout reads statements that print a short account summary with
// labelled fields and no structured transaction listing. SBI and Bank of
// Baroda statements share it.
type summaryLayout struct {
	issuer   models.Issuer
	variants vocabulary
}

var (
	summaryCard = compile(
		`[xX\*]{4}\s+[xX\*]{4}\s+[xX\*]{4}\s+(\d{4})`,
		`\d{4}\s+[xX\*]{4}\s+[xX\*]{4}\s+(\d{4})`,
		`(?i)(?:card|account)\s+(?:number|no|ending|#)?\s*[:]?\s*(?:\*{4,}|x{4,}|\d{4,})?\s*(?:\*{0,4}|x{0,4})?\s*(\d{4})`,
		`\d{4}[\s-]\d{4}[\s-]\d{4}[\s-](\d{4})`,
	)
	summaryCycle = compile(
		`(?i)(?:statement\s+period|billing\s+period|period)\s*[:]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*[-–]?\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`(?i)(?:period|statement\s+date)\s*[:]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s+to\s+\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
	)
	summaryDue     = compile(`(?i)(?:payment\s+due|due\s+date|pay\s+by)\s*[:]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	summaryBalance = compile(
		`(?i)(?:total\s+amount\s+due|outstanding|balance|total\s+due|amount\s+due)\s*[:]?\s*[Rr][Ss]?\.?\s*([\d,]+(?:\.\d{2})?)`,
		`(?i)(?:total\s+amount\s+due|outstanding|balance|total\s+due|amount\s+due)\s*[:]?\s*([\d,]+(?:\.\d{2})?)`,
		`(?i)total\s+amount\s+due\s*[:.]?\s*\$?([\d,]+(?:\.[\d]{2})?)`,
		`(?i)outstanding\s*[:.]?\s*\$?([\d,]+(?:\.[\d]{2})?)`,
		`(?i)balance\s*[:.]?\s*\$?([\d,]+(?:\.[\d]{2})?)`,
		`(?i)total\s+due\s*[:.]?\s*\$?([\d,]+(?:\.[\d]{2})?)`,
		`(?i)amount\s+due\s*[:.]?\s*\$?([\d,]+(?:\.[\d]{2})?)`,
	)
)

func (l summaryLayout) extract(text string) models.StatementFields {
	f := models.NewStatementFields(l.issuer)

	f.CardSuffix = lastFour(text, summaryCard)
	if v, ok := l.variants.find(text); ok {
		f.Variant = v
	} else {
		f.Variant = defaultVariant
	}
	if cycle, ok := summaryCycle.first(text); ok {
		f.BillingCycle = cycle
		f.StatementPeriod = cycle
	}
	if due, ok := summaryDue.first(text); ok {
		f.PaymentDueDate = due
	}
	if bal, ok := summaryBalance.firstPlausible(text, unbounded, limitLabel); ok {
		f.TotalBalance = rupees(bal)
	}
	if n, ok := phraseCount(text); ok {
		f.TransactionCount = n
	}
	return f
}
