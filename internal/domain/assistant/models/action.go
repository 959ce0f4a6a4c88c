package models

import "strings"

// ActionKind selects the instruction template for a submission
type ActionKind string

const (
	ActionSummarize             ActionKind = "summarize"
	ActionAnalyzeAgainstCatalog ActionKind = "analyze_services"
	ActionRefineText            ActionKind = "refine_text"
	// ActionGeneric is used for any unrecognised action
	ActionGeneric ActionKind = "generic"
)

// ParseAction maps a wire value onto an ActionKind; unknown values become ActionGeneric
func ParseAction(s string) ActionKind {
	switch ActionKind(strings.ToLower(strings.TrimSpace(s))) {
	case ActionSummarize:
		return ActionSummarize
	case ActionAnalyzeAgainstCatalog:
		return ActionAnalyzeAgainstCatalog
	case ActionRefineText:
		return ActionRefineText
	default:
		return ActionGeneric
	}
}

// RequiresText reports whether the action is meaningless without user text
func (a ActionKind) RequiresText() bool {
	return a == ActionRefineText
}
