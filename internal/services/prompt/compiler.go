package prompt

import (
	"fmt"
	"strings"

	"github.com/office671/nawader/internal/domain/assistant/models"
)

const catalogSeparator = "\n---\n"

// Compiler turns an action, user text and the catalog into the instruction string.
// It holds no mutable state and is safe for concurrent use.
type Compiler struct {
	locale Locale
	tmpl   templateSet
}

func NewCompiler(locale Locale) *Compiler {
	tmpl, ok := templates[locale]
	if !ok {
		locale = LocaleEnglish
		tmpl = templates[LocaleEnglish]
	}
	return &Compiler{locale: locale, tmpl: tmpl}
}

func (c *Compiler) Locale() Locale {
	return c.locale
}

func (c *Compiler) Messages() Messages {
	return MessagesFor(c.locale)
}

// Compile builds the instruction text. The catalog is only read for the analyze action.
func (c *Compiler) Compile(action models.ActionKind, userText string, catalog []models.ReferenceItem, hasAttachment bool) string {
	var b strings.Builder

	if hasAttachment {
		b.WriteString(c.tmpl.attachmentLeadIn)
	}

	switch action {
	case models.ActionSummarize:
		fmt.Fprintf(&b, c.tmpl.summarize, userText)
	case models.ActionAnalyzeAgainstCatalog:
		fmt.Fprintf(&b, c.tmpl.analyze, c.serializeCatalog(catalog), userText)
	case models.ActionRefineText:
		fmt.Fprintf(&b, c.tmpl.refine, userText)
	default:
		fmt.Fprintf(&b, c.tmpl.generic, userText)
	}

	return b.String()
}

func (c *Compiler) serializeCatalog(catalog []models.ReferenceItem) string {
	entries := make([]string, 0, len(catalog))
	for _, item := range catalog {
		entries = append(entries, fmt.Sprintf("%s: %s\n%s: %s\n%s: %s\n%s: %s",
			c.tmpl.catalogID, item.ID,
			c.tmpl.catalogTitle, item.Title,
			c.tmpl.catalogDescription, item.Description,
			c.tmpl.catalogDetails, item.Details,
		))
	}
	return strings.Join(entries, catalogSeparator)
}
