package parser

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// Parser recognizes and extracts one issuer's statement layout.
type Parser interface {
	// Recognize reports whether text looks like a statement from this issuer.
	Recognize(text string) bool
	// Extract returns the statement fields found in text. Fields that no
	// rule can resolve are left at models.Sentinel.
	Extract(text string) models.StatementFields
	// BankName returns the issuer name used in the output record.
	BankName() models.Issuer
}

// Options tunes the built-in parsers.
type Options struct {
	// YearPivot splits two-digit years: below it is 20xx, otherwise 19xx.
	YearPivot int
}

// Registry is an ordered list of parsers. It is fixed at construction;
// earlier parsers take priority over later ones.
type Registry struct {
	parsers []Parser
}

// NewRegistry returns a registry that consults parsers in the given order.
func NewRegistry(parsers ...Parser) Registry {
	return Registry{parsers: append([]Parser(nil), parsers...)}
}

// DefaultRegistry returns the built-in issuers. The order matters: the
// broad ICICI, SBI and Bank of Baroda checks sit behind the issuers with
// more specific signatures.
func DefaultRegistry(opts Options) Registry {
	pivot := opts.YearPivot
	if pivot <= 0 {
		pivot = DefaultYearPivot
	}
	return NewRegistry(
		&AxisParser{},
		&KotakParser{YearPivot: pivot},
		&HDFCParser{},
		&ICICIParser{},
		&SBIParser{},
		&BarodaParser{},
	)
}

// Parsers returns a copy of the registered parsers in priority order.
func (r Registry) Parsers() []Parser {
	return append([]Parser(nil), r.parsers...)
}

// ErrorPolicy decides what happens when a recognized issuer's extractor fails.
type ErrorPolicy int

const (
	// StopOnError returns the recognized issuer with every field unresolved.
	StopOnError ErrorPolicy = iota
	// FallThrough tries the remaining parsers in order.
	FallThrough
)

// Dispatcher picks the parser for a text and runs its extractor.
// It is safe for concurrent use.
type Dispatcher struct {
	registry Registry
	policy   ErrorPolicy
	logger   *log.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPolicy sets the extraction failure policy.
func WithPolicy(p ErrorPolicy) Option {
	return func(d *Dispatcher) { d.policy = p }
}

// WithLogger routes dispatch decisions to logger.
func WithLogger(logger *log.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher returns a dispatcher over registry.
func NewDispatcher(registry Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		policy:   StopOnError,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ClassifyAndExtract returns the fields of the first parser that recognizes
// text, or models.Unknown when none does.
func (d *Dispatcher) ClassifyAndExtract(text string) models.StatementFields {
	for _, p := range d.registry.parsers {
		if !p.Recognize(text) {
			continue
		}
		d.logger.Debug("recognized issuer", "issuer", p.BankName())

		fields, err := extract(p, text)
		if err == nil {
			return fields.Normalize()
		}
		d.logger.Warn("extraction failed", "issuer", p.BankName(), "err", err)
		if d.policy == FallThrough {
			continue
		}
		return models.NewStatementFields(p.BankName())
	}

	d.logger.Debug("no issuer recognized", "chars", len(text))
	return models.Unknown()
}

// Detect returns the issuer that would handle text.
func (d *Dispatcher) Detect(text string) (models.Issuer, bool) {
	for _, p := range d.registry.parsers {
		if p.Recognize(text) {
			return p.BankName(), true
		}
	}
	return models.IssuerUnknown, false
}

func extract(p Parser, text string) (fields models.StatementFields, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s extractor crashed: %v", p.BankName(), r)
		}
	}()
	return p.Extract(text), nil
}

// containsAny reports whether lowered text contains one of the needles.
func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if len(needle) > 0 && indexOf(text, needle) >= 0 {
			return true
		}
	}
	return false
}

// toLower folds ASCII letters only, so byte offsets in the result are
// valid in the input.
func toLower(s string) string {
	b := make([]byte, len(s))
	for i := range len(s) {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

func indexOf(s, substr string) int {
	if len(substr) > len(s) {
		return -1
	}
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
