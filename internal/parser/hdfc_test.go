package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const hdfcSample = `HDFC BANK
We understand your world
Regalia Credit Card Statement
Card No: 4567 89XX XXXX 1234
Statement Date: 20/07/2024
Billing Period: 21/06/2024 to 20/07/2024
Payment Due Date: 05/08/2024
Total dues: 12,345.67
Minimum Amount Due: 620.00

Domestic Transactions
Date Transaction Description Amount
22/06/2024 AMAZON PAY INDIA 1,299.00
24/06/2024 SWIGGY BANGALORE 456.50
26/06/2024 UBER INDIA SYSTEMS 212.00
29/06/2024 RELIANCE FRESH 2,310.75
02/07/2024 BOOKMYSHOW MUMBAI 900.00
06/07/2024 INDIAN OIL PETROL 3,000.00
11/07/2024 ZOMATO LIMITED 388.20
16/07/2024 APOLLO PHARMACY 1,120.00
EMI Summary
No active EMI
`

func TestHDFCParser_Recognize(t *testing.T) {
	p := &HDFCParser{}

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"bank name", "HDFC  Bank Ltd credit card", true},
		{"tagline", "hdfc millennia\nWe understand your world", true},
		{"bare mention", "paid via HDFC netbanking", false},
		{"other issuer", "ICICI Bank statement", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Recognize(tt.text); got != tt.want {
				t.Errorf("Recognize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHDFCParser_Extract(t *testing.T) {
	got := (&HDFCParser{}).Extract(hdfcSample)

	assert.Equal(t, "HDFC", got.Issuer)
	assert.Equal(t, "1234", got.CardSuffix)
	assert.Equal(t, "Regalia", got.Variant)
	assert.Equal(t, "21/06/2024 to 20/07/2024", got.BillingCycle)
	assert.Equal(t, "20/07/2024", got.StatementPeriod)
	assert.Equal(t, "05/08/2024", got.PaymentDueDate)
	assert.Equal(t, "₹12,345.67", got.TotalBalance)
	assert.Equal(t, "8", got.TransactionCount)
}

func TestHDFCParser_BalanceWithoutDueDate(t *testing.T) {
	text := `HDFC Bank Credit Card
Total Dues: 7,40,000.00
Total Dues: 18,900.00
Total Dues: 1,200.00
`
	got := (&HDFCParser{}).Extract(text)
	assert.Equal(t, "₹18,900.00", got.TotalBalance, "largest in-range total wins")

	text = "HDFC Bank Credit Card\nPrevious Balance Total Dues: 25,000.00\n" +
		strings.Repeat("-", 200) + "\nTotal Dues: 18,900.00\n"
	got = (&HDFCParser{}).Extract(text)
	assert.Equal(t, "₹18,900.00", got.TotalBalance, "previous balance is not the balance")
}

func TestHDFCParser_StatementDateFallback(t *testing.T) {
	text := "HDFC Bank Credit Card\nStatement Date: 14/03/2024\n"
	got := (&HDFCParser{}).Extract(text)

	assert.Equal(t, "14/03/2024", got.BillingCycle, "billing cycle falls back to the statement date")
	assert.Equal(t, "14/03/2024", got.StatementPeriod)
	assert.Equal(t, "N/A", got.TransactionCount)
	assert.Equal(t, "N/A", got.TotalBalance)
	assert.Equal(t, "Standard", got.Variant)
}

func TestHDFCParser_CreditLimitNeverBalance(t *testing.T) {
	got := (&HDFCParser{}).Extract("HDFC Bank Credit Card\nAvailable Credit Total Dues: 50,000.00")
	assert.Equal(t, "N/A", got.TotalBalance, "available credit is not the balance")

	got = (&HDFCParser{}).Extract("HDFC Bank\nPayment Due Date: 05/08/2024\nCredit Limit Total Dues: 2,00,000.00\nTotal Dues: 9,500.00")
	assert.Equal(t, "₹9,500.00", got.TotalBalance, "credit limit next to the due date is skipped")
}

func TestHDFCParser_BalanceCeilingNearDueDate(t *testing.T) {
	got := (&HDFCParser{}).Extract("HDFC Bank\nPayment Due Date: 05/08/2024\nTotal Dues: 6,00,000.00")
	assert.Equal(t, "N/A", got.TotalBalance, "figures above 5,00,000 are never the balance")

	got = (&HDFCParser{}).Extract("HDFC Bank\nPayment Due Date: 05/08/2024\nTotal Dues: 6,00,000.00\nTotal Dues: 45,000.00")
	assert.Equal(t, "₹45,000.00", got.TotalBalance)
}
