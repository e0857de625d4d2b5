package models

// Sentinel marks a field that no extraction rule could resolve.
const Sentinel = "N/A"

// Issuer represents a supported card issuer, using the display name
// that appears in the output record.
type Issuer string

const (
	IssuerAxis    Issuer = "Axis Bank"
	IssuerKotak   Issuer = "Kotak Bank"
	IssuerHDFC    Issuer = "HDFC"
	IssuerICICI   Issuer = "ICICI"
	IssuerSBI     Issuer = "SBI"
	IssuerBaroda  Issuer = "Bank of Baroda"
	IssuerUnknown Issuer = "Unknown"
)

// StatementFields is the record produced for one statement text.
// Every field holds either a resolved value or Sentinel.
type StatementFields struct {
	Issuer           string `json:"issuer" yaml:"issuer"`
	CardSuffix       string `json:"cardSuffix" yaml:"cardSuffix"`
	Variant          string `json:"variant" yaml:"variant"`
	BillingCycle     string `json:"billingCycle" yaml:"billingCycle"`
	StatementPeriod  string `json:"statementPeriod" yaml:"statementPeriod"`
	PaymentDueDate   string `json:"paymentDueDate" yaml:"paymentDueDate"`
	TotalBalance     string `json:"totalBalance" yaml:"totalBalance"`
	TransactionCount string `json:"transactionCount" yaml:"transactionCount"`
}

// NewStatementFields returns a record tagged with issuer whose other
// fields are all Sentinel.
func NewStatementFields(issuer Issuer) StatementFields {
	return StatementFields{
		Issuer:           string(issuer),
		CardSuffix:       Sentinel,
		Variant:          Sentinel,
		BillingCycle:     Sentinel,
		StatementPeriod:  Sentinel,
		PaymentDueDate:   Sentinel,
		TotalBalance:     Sentinel,
		TransactionCount: Sentinel,
	}
}

// Unknown is the record returned when no issuer recognizes a text.
func Unknown() StatementFields {
	return NewStatementFields(IssuerUnknown)
}

// Normalize returns a copy with every empty field replaced by Sentinel.
func (s StatementFields) Normalize() StatementFields {
	for _, f := range []*string{
		&s.Issuer, &s.CardSuffix, &s.Variant, &s.BillingCycle,
		&s.StatementPeriod, &s.PaymentDueDate, &s.TotalBalance, &s.TransactionCount,
	} {
		if *f == "" {
			*f = Sentinel
		}
	}
	return s
}

// Field is a labelled value, used by the renderers.
type Field struct {
	Label string
	Value string
}

// Fields returns the record as ordered label/value pairs.
func (s StatementFields) Fields() []Field {
	return []Field{
		{"Issuer", s.Issuer},
		{"Card Last 4", s.CardSuffix},
		{"Card Variant", s.Variant},
		{"Billing Cycle", s.BillingCycle},
		{"Statement Period", s.StatementPeriod},
		{"Payment Due Date", s.PaymentDueDate},
		{"Total Balance", s.TotalBalance},
		{"Transaction Count", s.TransactionCount},
	}
}

// Recognized reports whether an issuer claimed the text.
func (s StatementFields) Recognized() bool {
	return s.Issuer != string(IssuerUnknown)
}

// IsResolved reports whether v is a real value rather than Sentinel.
func IsResolved(v string) bool {
	return v != "" && v != Sentinel
}
