// Package risk maps a tool's self-declared behavioural hints onto a coarse
// risk tier. Classification is total and deterministic: every descriptor,
// including one with no annotations at all, yields a tier, and an absent
// hint set is treated as the most conservative combination rather than as
// harmless.
package risk

import "github.com/toolgate/toolgate/model"

// Classify derives the risk tier for a tool descriptor. Rules apply in
// fixed priority order, first match wins:
//
//  1. destructive            -> HIGH
//  2. !readOnly && openWorld -> MEDIUM
//  3. !readOnly              -> MEDIUM
//  4. readOnly               -> LOW
//
// Hint accessors on model.Annotations already resolve absent hints
// conservatively (readOnly=false, destructive=true), so an unannotated
// tool classifies as HIGH.
func Classify(tool *model.ToolDescriptor) model.RiskTier {
	var hints *model.Annotations
	if tool != nil {
		hints = tool.Annotations
	}
	switch {
	case hints.IsDestructive():
		return model.RiskHigh
	case !hints.IsReadOnly() && hints.IsOpenWorld():
		return model.RiskMedium
	case !hints.IsReadOnly():
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
