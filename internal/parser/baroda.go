package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// BarodaParser handles Bank of Baroda (BoBCARD) statements.
type BarodaParser struct{}

func (p *BarodaParser) BankName() models.Issuer { return models.IssuerBaroda }

var (
	// Other issuers' headers that mention Baroda in passing.
	barodaRejects = compile(
		`(?i)(?:axis\s+bank|lic\s+axis\s+bank)\s+credit\s+card`,
		`(?i)hdfc\s+bank.*credit\s+card|hdfc.*credit\s+card\s+statement`,
		`(?i)icici\s+bank.*credit\s+card|icici.*credit\s+card\s+statement`,
		`(?i)kotak\s+bank.*credit\s+card|kotak.*credit\s+card\s+statement`,
		`(?i)(?:state\s+bank\s+of\s+india|sbi\s+card|sbi\s+credit\s+card)\s+statement`,
	)
	barodaName    = regexp.MustCompile(`(?i)bank\s+of\s+baroda`)
	barodaAliases = []string{"bob bank", "bob card", "bob credit card"}

	barodaLayout = summaryLayout{
		issuer: models.IssuerBaroda,
		variants: newVocabulary(
			`bob\s+card`, `baroda\s+card`, "premium", "gold", "platinum", "select", "prime",
		),
	}
)

func (p *BarodaParser) Recognize(text string) bool {
	head := headerOf(text, headerSize)
	for _, re := range barodaRejects {
		if re.MatchString(head) {
			return false
		}
	}

	header := toLower(head)
	if strings.Contains(header, "bank of baroda") &&
		containsAny(header, []string{"credit card", "statement"}) {
		return true
	}
	if containsAny(header, barodaAliases) &&
		containsAny(header, []string{"credit card", "statement", "bank"}) {
		return true
	}
	if loc := barodaName.FindStringIndex(header); loc != nil {
		return containsAny(window(header, loc[0], 150, 200), []string{"credit card", "statement", "bank"})
	}
	return false
}

func (p *BarodaParser) Extract(text string) models.StatementFields {
	return barodaLayout.extract(text)
}
