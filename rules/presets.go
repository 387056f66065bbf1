package rules

// This file is the glossary of presets: thin named constructors over
// ForbiddenSequenceRule and PatternRule. It intentionally adds no
// behavior beyond wiring the right configuration — see spec.md §1, which
// places preset factories outside the engine's core design depth.

// ForbiddenSequenceGapsAllowed builds a sequence rule tolerant of gaps
// between tokens (the default matching mode).
func ForbiddenSequenceGapsAllowed(tokens []string, reason string) (*ForbiddenSequenceRule, error) {
	return NewForbiddenSequenceRule(tokens, SequenceConfig{Mode: GapsAllowed, Reason: reason})
}

// ForbiddenSequenceStrict builds a sequence rule requiring tokens to
// appear back-to-back (only whitespace may separate them).
func ForbiddenSequenceStrict(tokens []string, reason string) (*ForbiddenSequenceRule, error) {
	return NewForbiddenSequenceRule(tokens, SequenceConfig{Mode: Strict, Reason: reason})
}

// ForbiddenSequenceWithStopWords builds a gaps-allowed sequence rule that
// resets progress whenever one of stopWords appears in the carry buffer.
func ForbiddenSequenceWithStopWords(tokens, stopWords []string, reason string) (*ForbiddenSequenceRule, error) {
	return NewForbiddenSequenceRule(tokens, SequenceConfig{Mode: GapsAllowed, StopWords: stopWords, Reason: reason})
}

// ForbiddenSequenceScored builds a gaps-allowed sequence rule that
// attributes score on match instead of (or alongside) suppressing.
func ForbiddenSequenceScored(tokens []string, reason string, score int) (*ForbiddenSequenceRule, error) {
	return NewForbiddenSequenceRule(tokens, SequenceConfig{Mode: GapsAllowed, Reason: reason, Score: score})
}

// ForbiddenSequenceRewriting builds a gaps-allowed sequence rule that, on
// match, returns a Substitute of the rule's carry buffer plus the matching
// chunk, with every occurrence of each token replaced by replacement. The
// carry buffer holds only text that followed the most recently matched
// token (cut to a bounded tail), so earlier stream text is not part of
// the payload.
func ForbiddenSequenceRewriting(tokens []string, replacement string) (*ForbiddenSequenceRule, error) {
	return NewForbiddenSequenceRule(tokens, SequenceConfig{Mode: GapsAllowed, Replacement: replacement})
}

// Email builds a detection rule for permissive email-shaped text.
func Email(reason string) *PatternRule {
	return NewPatternRule(PatternEmail, reason)
}

// EmailStrict builds a detection rule documented as stricter than Email.
// At the detection layer the two are synonyms (spec.md §9).
func EmailStrict(reason string) *PatternRule {
	return NewPatternRule(PatternEmailStrict, reason)
}

// URL builds a detection rule for http:// and https:// links.
func URL(reason string) *PatternRule {
	return NewPatternRule(PatternURL, reason)
}

// IPv4 builds a detection rule for dotted-quad IPv4 addresses.
func IPv4(reason string) *PatternRule {
	return NewPatternRule(PatternIPv4, reason)
}

// CreditCard builds a detection rule for card-shaped digit runs.
func CreditCard(reason string) *PatternRule {
	return NewPatternRule(PatternCreditCard, reason)
}

// EmailRewrite builds a rule that substitutes detected emails with replacement.
func EmailRewrite(replacement string) *PatternRule {
	return NewPatternRewriteRule(PatternEmail, replacement)
}

// URLRewrite builds a rule that substitutes detected URLs with replacement.
func URLRewrite(replacement string) *PatternRule {
	return NewPatternRewriteRule(PatternURL, replacement)
}

// IPv4Rewrite builds a rule that substitutes detected IPv4 addresses with replacement.
func IPv4Rewrite(replacement string) *PatternRule {
	return NewPatternRewriteRule(PatternIPv4, replacement)
}

// CreditCardRewrite builds a rule that substitutes detected card numbers with replacement.
func CreditCardRewrite(replacement string) *PatternRule {
	return NewPatternRewriteRule(PatternCreditCard, replacement)
}

// Custom builds a detection rule for an opaque literal pattern.
func Custom(pattern, reason, description string) (*PatternRule, error) {
	return NewCustomPatternRule(pattern, reason, description, false)
}

// CustomCaseInsensitive is Custom with case-insensitive matching.
func CustomCaseInsensitive(pattern, reason, description string) (*PatternRule, error) {
	return NewCustomPatternRule(pattern, reason, description, true)
}
