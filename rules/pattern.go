package rules

import (
	"strings"

	"github.com/streamguardhq/streamguard"
)

// PatternPreset names a well-known structural pattern a PatternRule can
// detect.
type PatternPreset int

const (
	// PatternCustom signals a non-preset, literal substring pattern.
	PatternCustom PatternPreset = iota

	// PatternEmail detects permissive email-shaped text.
	PatternEmail

	// PatternEmailStrict is documented as a stricter email check; at the
	// detection layer it behaves identically to PatternEmail (see
	// spec.md §9 and SPEC_FULL.md §4.3).
	PatternEmailStrict

	// PatternURL detects http:// and https:// URLs.
	PatternURL

	// PatternIPv4 detects dotted-quad IPv4 addresses.
	PatternIPv4

	// PatternCreditCard detects digit runs shaped like a card number.
	PatternCreditCard
)

// String returns the preset's human-readable description.
func (p PatternPreset) String() string {
	switch p {
	case PatternEmail:
		return "email address"
	case PatternEmailStrict:
		return "email address (strict)"
	case PatternURL:
		return "URL"
	case PatternIPv4:
		return "IPv4 address"
	case PatternCreditCard:
		return "credit card number"
	default:
		return "custom pattern"
	}
}

// maxPatternBuffer bounds the PatternRule's rolling buffer (spec.md §4.3).
const maxPatternBuffer = 500

// PatternRule performs streaming detection of a structured pattern
// (or a literal custom substring) across chunk boundaries, with bounded
// memory and optional replacement rewriting.
//
// Thread Safety: not safe for concurrent use. One rule instance belongs
// to exactly one Engine.
type PatternRule struct {
	preset      PatternPreset
	custom      string
	description string
	caseFold    bool
	buffer      string
	reason      string
	replacement string
	name        string
}

// Description returns the rule's human-readable pattern description,
// either the preset's String() or the caller-supplied description for a
// custom pattern.
func (r *PatternRule) Description() string {
	if r.preset != PatternCustom {
		return r.preset.String()
	}
	return r.description
}

// NewPatternRule constructs a rule from a preset.
func NewPatternRule(preset PatternPreset, reason string) *PatternRule {
	return &PatternRule{preset: preset, reason: reason, name: "pattern_rule"}
}

// NewCustomPatternRule constructs a rule that tests for a literal
// substring, optionally case-insensitively.
func NewCustomPatternRule(pattern, reason, description string, caseInsensitive bool) (*PatternRule, error) {
	if pattern == "" {
		return nil, streamguard.ErrEmptyPattern
	}
	r := &PatternRule{
		preset:      PatternCustom,
		custom:      pattern,
		description: description,
		caseFold:    caseInsensitive,
		reason:      reason,
		name:        "pattern_rule",
	}
	return r, nil
}

// NewPatternRewriteRule constructs a rule from a preset that substitutes
// matches with replacement instead of suppressing.
func NewPatternRewriteRule(preset PatternPreset, replacement string) *PatternRule {
	return &PatternRule{preset: preset, replacement: replacement, name: "pattern_rule"}
}

// WithName overrides the rule's metrics/logging name.
func (r *PatternRule) WithName(name string) *PatternRule {
	r.name = name
	return r
}

// Feed implements streamguard.Rule.
func (r *PatternRule) Feed(chunk string) streamguard.Decision {
	if chunk == "" {
		return streamguard.Permit()
	}

	r.buffer += chunk

	if r.matches(r.buffer) {
		var decision streamguard.Decision
		if r.replacement != "" {
			decision = streamguard.Substitute(r.rewrite(r.buffer, r.replacement))
		} else {
			decision = streamguard.Suppress(r.reason)
		}
		r.buffer = ""
		return decision
	}

	if len(r.buffer) > maxPatternBuffer {
		r.buffer = r.buffer[len(r.buffer)-maxPatternBuffer:]
	}
	return streamguard.Permit()
}

// Reset implements streamguard.Rule.
func (r *PatternRule) Reset() { r.buffer = "" }

// Name implements streamguard.Rule.
func (r *PatternRule) Name() string { return r.name }

// LastScore implements streamguard.Rule. Pattern rules do not score.
func (r *PatternRule) LastScore() int { return 0 }

func (r *PatternRule) matches(text string) bool {
	switch r.preset {
	case PatternEmail, PatternEmailStrict:
		return matchesEmail(text)
	case PatternURL:
		return matchesURL(text)
	case PatternIPv4:
		return matchesIPv4(text)
	case PatternCreditCard:
		return matchesCreditCard(text)
	default:
		search, needle := text, r.custom
		if r.caseFold {
			search, needle = strings.ToLower(search), strings.ToLower(needle)
		}
		return strings.Contains(search, needle)
	}
}

func (r *PatternRule) rewrite(text, replacement string) string {
	switch r.preset {
	case PatternEmail, PatternEmailStrict:
		return rewriteEmails(text, replacement)
	case PatternURL:
		return rewriteURLs(text, replacement)
	case PatternIPv4:
		return rewriteIPv4(text, replacement)
	case PatternCreditCard:
		return rewriteCreditCards(text, replacement)
	default:
		return text
	}
}

// matchesEmail is a permissive structural check: an '@' not at position
// 0, at least one '.' after it with non-empty content before the dot and
// >= 2 bytes after it.
func matchesEmail(text string) bool {
	at := strings.IndexByte(text, '@')
	if at <= 0 {
		return false
	}
	afterAt := text[at+1:]
	dot := strings.IndexByte(afterAt, '.')
	if dot <= 0 {
		return false
	}
	afterDot := afterAt[dot+1:]
	return len(afterDot) >= 2
}

func matchesURL(text string) bool {
	for _, proto := range []string{"https://", "http://"} {
		idx := strings.Index(text, proto)
		if idx < 0 {
			continue
		}
		rest := text[idx+len(proto):]
		if rest != "" && isAlphanumericByte(rest[0]) {
			return true
		}
	}
	return false
}

func matchesIPv4(text string) bool {
	for _, word := range strings.Fields(text) {
		if ipv4Token(word) {
			return true
		}
	}
	return false
}

func ipv4Token(word string) bool {
	parts := strings.Split(word, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if len(p) == 0 || len(p) > 3 {
			return false
		}
		n := 0
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
			n = n*10 + int(c-'0')
		}
		if n > 255 {
			return false
		}
	}
	return true
}

func matchesCreditCard(text string) bool {
	digitCount := 0
	run := 0
	maxRun := 0
	for _, c := range text {
		switch {
		case c >= '0' && c <= '9':
			digitCount++
			run++
		case c == ' ' || c == '-':
			// separators inside a digit run do not break it
		default:
			run = 0
			continue
		}
		if run > maxRun {
			maxRun = run
		}
	}
	return digitCount >= 13 && digitCount <= 19 && maxRun >= 4
}

func isAlphanumericByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// rewriteEmails walks the buffer accumulating runs of email-legal bytes,
// emitting replacement for any run that looks like an email.
func rewriteEmails(text, replacement string) string {
	var result, current strings.Builder
	hasAt, hasDotAfterAt := false, false

	flush := func(trailing byte, hasTrailing bool) {
		if hasAt && hasDotAfterAt && current.Len() > 5 {
			result.WriteString(replacement)
		} else {
			result.WriteString(current.String())
		}
		if hasTrailing {
			result.WriteByte(trailing)
		}
		current.Reset()
		hasAt, hasDotAfterAt = false, false
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if isEmailLegal(c) {
			current.WriteByte(c)
			if c == '@' {
				hasAt = true
			}
			if hasAt && c == '.' {
				hasDotAfterAt = true
			}
		} else {
			flush(c, true)
		}
	}
	flush(0, false)
	return result.String()
}

func isEmailLegal(c byte) bool {
	return isAlphanumericByte(c) || c == '@' || c == '.' || c == '_' || c == '-' || c == '+' || c == '%'
}

// rewriteURLs replaces each https:// or http:// occurrence with
// replacement, where the URL span runs up to the next whitespace or end
// of string.
func rewriteURLs(text, replacement string) string {
	result := text
	for _, proto := range []string{"https://", "http://"} {
		for {
			start := strings.Index(result, proto)
			if start < 0 {
				break
			}
			rest := result[start:]
			end := strings.IndexFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' })
			if end < 0 {
				end = len(rest)
			}
			url := rest[:end]
			result = strings.ReplaceAll(result, url, replacement)
		}
	}
	return result
}

// rewriteIPv4 replaces every whitespace-separated token that validates as
// an IPv4 address with replacement.
func rewriteIPv4(text, replacement string) string {
	result := text
	for _, word := range strings.Fields(text) {
		if ipv4Token(word) {
			result = strings.ReplaceAll(result, word, replacement)
		}
	}
	return result
}

// rewriteCreditCards walks the buffer tracking a digit+separator run,
// emitting replacement for any run whose digit count is 13..=19.
func rewriteCreditCards(text, replacement string) string {
	var result, current strings.Builder
	digitCount := 0

	flush := func(trailing byte, hasTrailing bool) {
		if digitCount >= 13 && digitCount <= 19 {
			result.WriteString(replacement)
		} else {
			result.WriteString(current.String())
		}
		if hasTrailing {
			result.WriteByte(trailing)
		}
		current.Reset()
		digitCount = 0
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= '0' && c <= '9':
			current.WriteByte(c)
			digitCount++
		case (c == '-' || c == ' ') && digitCount > 0:
			current.WriteByte(c)
		default:
			flush(c, true)
		}
	}
	flush(0, false)
	return result.String()
}
