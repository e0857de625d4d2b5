package parser

import (
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// SBIParser handles SBI Card statements.
type SBIParser struct{}

func (p *SBIParser) BankName() models.Issuer { return models.IssuerSBI }

var (
	// Axis statements mention "SBI" in payment instructions.
	sbiRejectSignatures = []string{"axis bank"}
	sbiStrongSignatures = []string{
		"state bank of india", "sbi credit card statement", "sbi card statement", "sbi statement",
	}
	sbiContextWords = []string{"bank", "credit", "card", "statement", "state"}

	sbiLayout = summaryLayout{
		issuer: models.IssuerSBI,
		variants: newVocabulary(
			"simplyclick", "simplysave", "prime", "elite", "aurum", "rpl",
			"supercard", "fbb", "air", "platinum", "gold",
		),
	}
)

func (p *SBIParser) Recognize(text string) bool {
	if containsAny(toLower(text), sbiRejectSignatures) {
		return false
	}
	header := toLower(headerOf(text, headerSize))
	if containsAny(header, sbiStrongSignatures) {
		return true
	}
	i := strings.Index(header, "sbi")
	if i < 0 || !containsAny(header, []string{"credit card", "bank", "statement"}) {
		return false
	}
	return containsAny(window(header, i, 100, 100), sbiContextWords)
}

func (p *SBIParser) Extract(text string) models.StatementFields {
	return sbiLayout.extract(text)
}
