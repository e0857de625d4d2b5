package parser

import (
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// AxisParser handles Axis Bank credit card statements, including the LIC
// co-branded cards.
type AxisParser struct{}

func (p *AxisParser) BankName() models.Issuer { return models.IssuerAxis }

var axisStrongSignatures = []string{
	"lic axis bank", "axis bank credit card statement", "axis bank statement",
}

var axisContextWords = []string{"bank", "credit", "card", "statement"}

// Recognize looks only at the statement header.
func (p *AxisParser) Recognize(text string) bool {
	header := toLower(headerOf(text, headerSize))

	if containsAny(header, axisStrongSignatures) {
		return true
	}
	if strings.Contains(header, "axis bank") &&
		(strings.Contains(header, "credit card") || strings.Contains(header, "statement")) {
		return true
	}
	if i := strings.Index(header, "axis"); i >= 0 && containsAny(header, axisContextWords) {
		return containsAny(window(header, i, 50, 50), axisContextWords)
	}
	return false
}

var (
	axisCard = compile(
		`(?i)(?:credit\s+card\s+number|card\s+number|card\s+no)\s*[:]\s*\d{4,6}[\*x]{4,12}(\d{4})`,
		`\d{4,6}[\*x]{4,12}(\d{4})`,
		`\d{4}\s+\d{4}\s+\d{4}\s+(\d{4})`,
	)

	axisVariants = newVocabulary(
		"magnus", "select", "vistara", "myzone", "flipkart", "bajaj",
		"indigo", "aura", "platinum", "gold", "reserve", "premium",
	)

	axisPeriod = compile(
		`(?i)statement\s+period\s*[:]\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*[-–]\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`(?i)statement\s+period\s*[:]\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*[-–]?\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`(?i)statement\s+period\s*[:]\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s+to\s+\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`(?i)statement\s+period\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*[-–]?\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
	)
	axisSummaryPeriod = compile(
		`(?i)statement\s+period\s*[:]\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*[-–]?\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
	)
	axisBillingPeriod = compile(
		`(?i)(?:billing\s+period|period)\s*[:]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*[-–]?\s*to\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
	)

	axisDue = compile(
		`(?i)payment\s+due\s+date\s*[:]\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`(?i)payment\s+due\s+date\s*[:]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`(?i)due\s+date\s*[:]\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
	)
	axisSummaryDue = compile(
		`(?i)(?:payment\s+due|due\s+date|pay\s+by)\s*[:]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
	)

	axisSummaryBalance = compile(
		`(?i)total\s+payment\s+due\s*[:]\s*([\d]{1,3}(?:,\d{2,3})+(?:\.\d{2})?)\s*(?:dr|cr)?`,
		`(?i)total\s+payment\s+due\s*[:]\s*([\d]{4,}(?:\.\d{2})?)\s*(?:dr|cr)?`,
		`(?i)total\s+payment\s+due\s*[:]\s*([\d,]+(?:\.\d{2})?)\s*(?:dr|cr)?`,
		`(?i)total\s+payment\s+due\s+([\d]{1,3}(?:,\d{2,3})+(?:\.\d{2})?)\s*(?:dr|cr)?`,
		`(?i)total\s+payment\s+due\s*[:]?\s*([\d]{1,3}(?:,\d{2,3})+(?:\.\d{2})?)\s*(?:dr|cr)?`,
	)
	axisBalance = compile(
		`(?i)total\s+payment\s+due\s*[:]\s*([\d,]+(?:\.\d{2})?)\s*(?:dr|cr)?`,
	)
	axisBalanceBound = closedRange(500, 500000)

	axisTransactions = newSection("transaction details", "end of statement", "emi balances")
	axisTally        = tally{
		lines: compile(
			`(?i)(\d{1,2}/\d{1,2}/\d{4})\s+[A-Z][^\n\r]{5,}?\s+([\d,]+(?:\.\d{2})?\s*(?:dr|cr)?)`,
		),
		rawBelow: 3,
	}
)

// Extract reads the Axis fields. The statement period doubles as the
// billing cycle.
func (p *AxisParser) Extract(text string) models.StatementFields {
	f := models.NewStatementFields(p.BankName())

	f.CardSuffix = lastFour(text, axisCard)
	if v, ok := axisVariants.find(text); ok {
		f.Variant = v
	} else {
		f.Variant = defaultVariant
	}

	summaryAt := strings.Index(toLower(text), "payment summary")

	if period, ok := p.period(text, summaryAt); ok {
		f.StatementPeriod = period
		f.BillingCycle = period
	}
	if due, ok := p.dueDate(text, summaryAt); ok {
		f.PaymentDueDate = due
	}
	if bal, ok := p.balance(text, summaryAt); ok {
		f.TotalBalance = rupees(bal)
	}

	if sec, ok := axisTransactions.find(text); ok {
		f.TransactionCount = formatCount(axisTally.count(sec))
	}
	return f
}

func (p *AxisParser) period(text string, summaryAt int) (string, bool) {
	if s, ok := axisPeriod.first(text); ok {
		return s, true
	}
	if summaryAt >= 0 {
		if s, ok := axisSummaryPeriod.first(window(text, summaryAt, 800, 2000)); ok {
			return s, true
		}
	}
	return axisBillingPeriod.first(text)
}

func (p *AxisParser) dueDate(text string, summaryAt int) (string, bool) {
	if s, ok := axisDue.first(text); ok {
		return s, true
	}
	if summaryAt < 0 {
		return "", false
	}
	return axisSummaryDue.first(window(text, summaryAt, 800, 2000))
}

func (p *AxisParser) balance(text string, summaryAt int) (amount, bool) {
	if summaryAt >= 0 {
		if a, ok := axisSummaryBalance.firstPlausible(window(text, summaryAt, 0, 2000), axisBalanceBound, limitLabel); ok {
			return a, true
		}
	}
	if a, ok := axisBalance.firstPlausible(text, axisBalanceBound, limitLabel); ok {
		return a, true
	}
	if summaryAt < 0 {
		return amount{}, false
	}
	area := window(text, summaryAt, 0, 2500)
	return pickMax(area, scanAmounts(groupedFigure, area), axisBalanceBound, limitLabel)
}
