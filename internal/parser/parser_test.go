package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// stubParser recognizes texts containing its marker.
type stubParser struct {
	issuer models.Issuer
	marker string
	panics bool
}

func (s *stubParser) BankName() models.Issuer { return s.issuer }

func (s *stubParser) Recognize(text string) bool { return indexOf(text, s.marker) >= 0 }

func (s *stubParser) Extract(text string) models.StatementFields {
	if s.panics {
		panic("bad layout")
	}
	f := models.NewStatementFields(s.issuer)
	f.CardSuffix = "0000"
	return f
}

func TestDefaultRegistryOrder(t *testing.T) {
	var got []models.Issuer
	for _, p := range DefaultRegistry(Options{}).Parsers() {
		got = append(got, p.BankName())
	}

	assert.Equal(t, []models.Issuer{
		models.IssuerAxis,
		models.IssuerKotak,
		models.IssuerHDFC,
		models.IssuerICICI,
		models.IssuerSBI,
		models.IssuerBaroda,
	}, got)
}

func TestDefaultRegistryPivot(t *testing.T) {
	parsers := DefaultRegistry(Options{}).Parsers()
	kotak, ok := parsers[1].(*KotakParser)
	require.True(t, ok)
	assert.Equal(t, DefaultYearPivot, kotak.YearPivot)
}

func TestClassifyAndExtract(t *testing.T) {
	d := NewDispatcher(DefaultRegistry(Options{}))

	tests := []struct {
		name string
		text string
		want string
	}{
		{"axis", axisSample, "Axis Bank"},
		{"kotak", kotakSample, "Kotak Bank"},
		{"hdfc", hdfcSample, "HDFC"},
		{"icici", iciciSample, "ICICI"},
		{"sbi", sbiSample, "SBI"},
		{"baroda", barodaSample, "Bank of Baroda"},
		{"unknown", "Monthly statement from Acme Finance\nTotal: 100.00\n", "Unknown"},
		{"empty", "", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.ClassifyAndExtract(tt.text)
			assert.Equal(t, tt.want, got.Issuer)
			for _, f := range got.Fields() {
				assert.NotEmpty(t, f.Value, f.Label)
			}
		})
	}
}

func TestClassifyAndExtractHDFCScenario(t *testing.T) {
	got := NewDispatcher(DefaultRegistry(Options{})).ClassifyAndExtract(hdfcSample)

	assert.Equal(t, models.StatementFields{
		Issuer:           "HDFC",
		CardSuffix:       "1234",
		Variant:          "Regalia",
		BillingCycle:     "21/06/2024 to 20/07/2024",
		StatementPeriod:  "20/07/2024",
		PaymentDueDate:   "05/08/2024",
		TotalBalance:     "₹12,345.67",
		TransactionCount: "8",
	}, got)
}

func TestClassifyAndExtractIdempotent(t *testing.T) {
	d := NewDispatcher(DefaultRegistry(Options{}))
	for _, text := range []string{axisSample, kotakSample, iciciSample, sbiSample} {
		assert.Equal(t, d.ClassifyAndExtract(text), d.ClassifyAndExtract(text))
	}
}

func TestUnknownHasAllSentinels(t *testing.T) {
	got := NewDispatcher(NewRegistry()).ClassifyAndExtract(hdfcSample)

	assert.Equal(t, models.Unknown(), got)
	assert.False(t, got.Recognized())
}

func TestFirstMatchWins(t *testing.T) {
	first := &stubParser{issuer: "First", marker: "statement"}
	second := &stubParser{issuer: "Second", marker: "statement"}
	d := NewDispatcher(NewRegistry(first, second))

	got := d.ClassifyAndExtract("card statement")
	assert.Equal(t, "First", got.Issuer)
	assert.Equal(t, "0000", got.CardSuffix)
}

func TestExtractorPanicPolicy(t *testing.T) {
	broken := &stubParser{issuer: "Broken", marker: "statement", panics: true}
	backup := &stubParser{issuer: "Backup", marker: "statement"}
	registry := NewRegistry(broken, backup)

	t.Run("stop on error", func(t *testing.T) {
		got := NewDispatcher(registry).ClassifyAndExtract("card statement")
		assert.Equal(t, models.NewStatementFields("Broken"), got)
	})

	t.Run("fall through", func(t *testing.T) {
		got := NewDispatcher(registry, WithPolicy(FallThrough)).ClassifyAndExtract("card statement")
		assert.Equal(t, "Backup", got.Issuer)
		assert.Equal(t, "0000", got.CardSuffix)
	})

	t.Run("fall through to unknown", func(t *testing.T) {
		d := NewDispatcher(NewRegistry(broken), WithPolicy(FallThrough))
		assert.Equal(t, models.Unknown(), d.ClassifyAndExtract("card statement"))
	})
}

func TestDetect(t *testing.T) {
	d := NewDispatcher(DefaultRegistry(Options{}))

	issuer, ok := d.Detect(barodaSample)
	assert.True(t, ok)
	assert.Equal(t, models.IssuerBaroda, issuer)

	issuer, ok = d.Detect("nothing to see")
	assert.False(t, ok)
	assert.Equal(t, models.IssuerUnknown, issuer)
}

func TestRegistryIsImmutable(t *testing.T) {
	ps := []Parser{&stubParser{issuer: "A", marker: "a"}}
	r := NewRegistry(ps...)
	ps[0] = &stubParser{issuer: "B", marker: "b"}

	got := r.Parsers()
	got[0] = nil
	assert.Equal(t, models.Issuer("A"), r.Parsers()[0].BankName())
}
