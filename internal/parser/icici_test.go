package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const iciciSample = `ICICI Bank
Credit Card Statement
ICICI Bank Coral Credit Card
Card Number: 4375XXXXXXXX1005
Statement Date: July 15, 2024
Billing Period: 16/06/2024 to 15/07/2024
Payment Due Date: August 2, 2024
Total Amount Due: ₹ 34,567.89
Minimum Amount Due: ₹ 1,730.00
Transaction Details
18/06/2024 AMAZON SELLER SERVICES 4,999.00
22/06/2024 IRCTC TICKETING 1,560.00
27/06/2024 SHELL PETROL PUMP 2,400.00
Spends Overview
Credit Limit: ₹ 3,00,000.00
`

func TestICICIParser_Extract(t *testing.T) {
	got := (&ICICIParser{}).Extract(iciciSample)

	assert.Equal(t, "ICICI", got.Issuer)
	assert.Equal(t, "1005", got.CardSuffix)
	assert.Equal(t, "Coral", got.Variant)
	assert.Equal(t, "16/06/2024 to 15/07/2024", got.BillingCycle)
	assert.Equal(t, "15/07/2024", got.StatementPeriod)
	assert.Equal(t, "02/08/2024", got.PaymentDueDate)
	assert.Equal(t, "₹34,567.89", got.TotalBalance)
	assert.Equal(t, "3", got.TransactionCount)
}

func TestICICIParser_VariantFromFileName(t *testing.T) {
	text := "ICICI Bank statement RETAIL_RUBY_0724.pdf\nICICI Coral Credit Card\n"
	got := (&ICICIParser{}).Extract(text)

	assert.Equal(t, "Ruby", got.Variant)
}

func TestICICIParser_CountPhraseFallback(t *testing.T) {
	text := "ICICI Bank\nYou have 5 transactions this cycle\n"
	got := (&ICICIParser{}).Extract(text)

	assert.Equal(t, "5", got.TransactionCount)
	assert.Equal(t, "N/A", got.PaymentDueDate)
	assert.Equal(t, "N/A", got.BillingCycle)
	assert.Equal(t, "N/A", got.StatementPeriod)
}

func TestICICIParser_CreditLimitNeverBalance(t *testing.T) {
	text := `ICICI Bank statement
Credit Limit 2,50,000.00
Total Amount Due 45,000.00
`
	got := (&ICICIParser{}).Extract(text)

	assert.Equal(t, "₹45,000.00", got.TotalBalance)
}
