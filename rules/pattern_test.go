package rules

import (
	"strings"
	"testing"

	"github.com/streamguardhq/streamguard"
)

func TestNewCustomPatternRule_RejectsEmptyPattern(t *testing.T) {
	if _, err := NewCustomPatternRule("", "reason", "desc", false); err != streamguard.ErrEmptyPattern {
		t.Errorf("expected ErrEmptyPattern, got %v", err)
	}
}

func TestPatternRule_Email_SingleChunk(t *testing.T) {
	r := NewPatternRule(PatternEmail, "email detected")
	d := r.Feed("contact me at jane.doe@example.com today")
	if !d.IsSuppress() || d.Reason() != "email detected" {
		t.Errorf("expected suppress(email detected), got %v", d)
	}
}

func TestPatternRule_Email_AcrossChunks(t *testing.T) {
	r := NewPatternRule(PatternEmail, "email detected")
	if d := r.Feed("reach jane.doe"); !d.IsPermit() {
		t.Fatalf("expected permit before '@' arrives, got %v", d)
	}
	d := r.Feed("@example.com now")
	if !d.IsSuppress() {
		t.Errorf("expected suppress once the full address has streamed in, got %v", d)
	}
}

func TestPatternRule_EmailStrict_SameAsEmail(t *testing.T) {
	r := NewPatternRule(PatternEmailStrict, "email detected")
	d := r.Feed("jane.doe@example.com")
	if !d.IsSuppress() {
		t.Errorf("expected email_strict to detect like email, got %v", d)
	}
}

func TestPatternRule_URL(t *testing.T) {
	r := NewPatternRule(PatternURL, "url detected")
	d := r.Feed("visit https://example.com/path for details")
	if !d.IsSuppress() {
		t.Errorf("expected suppress, got %v", d)
	}
}

func TestPatternRule_IPv4(t *testing.T) {
	r := NewPatternRule(PatternIPv4, "ip detected")
	d := r.Feed("connect to 192.168.1.1 now")
	if !d.IsSuppress() {
		t.Errorf("expected suppress, got %v", d)
	}
}

func TestPatternRule_IPv4_RejectsOutOfRangeOctet(t *testing.T) {
	r := NewPatternRule(PatternIPv4, "ip detected")
	d := r.Feed("not an address: 999.1.1.1")
	if !d.IsPermit() {
		t.Errorf("expected permit for an out-of-range octet, got %v", d)
	}
}

func TestPatternRule_CreditCard(t *testing.T) {
	r := NewPatternRule(PatternCreditCard, "card detected")
	d := r.Feed("card number 4111 1111 1111 1111 expires soon")
	if !d.IsSuppress() {
		t.Errorf("expected suppress, got %v", d)
	}
}

func TestPatternRule_CreditCard_RejectsShortDigitRun(t *testing.T) {
	r := NewPatternRule(PatternCreditCard, "card detected")
	d := r.Feed("order number 12345")
	if !d.IsPermit() {
		t.Errorf("expected permit for a short digit run, got %v", d)
	}
}

func TestPatternRule_Custom_CaseSensitive(t *testing.T) {
	r, err := NewCustomPatternRule("forbidden", "custom hit", "literal", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := r.Feed("Forbidden text"); !d.IsPermit() {
		t.Errorf("expected case-sensitive miss to permit, got %v", d)
	}
	if d := r.Feed("this is forbidden text"); !d.IsSuppress() {
		t.Errorf("expected case-sensitive hit to suppress, got %v", d)
	}
}

func TestPatternRule_Custom_CaseInsensitive(t *testing.T) {
	r, _ := NewCustomPatternRule("forbidden", "custom hit", "literal", true)
	d := r.Feed("this is FORBIDDEN text")
	if !d.IsSuppress() {
		t.Errorf("expected case-insensitive hit to suppress, got %v", d)
	}
}

func TestPatternRule_BufferTrimmedWhenUnmatched(t *testing.T) {
	r := NewPatternRule(PatternEmail, "email detected")
	r.Feed(strings.Repeat("x", maxPatternBuffer+100))
	if len(r.buffer) > maxPatternBuffer {
		t.Errorf("expected buffer trimmed to at most %d bytes, got %d", maxPatternBuffer, len(r.buffer))
	}
}

func TestPatternRule_RewriteEmail(t *testing.T) {
	r := NewPatternRewriteRule(PatternEmail, "[redacted]")
	d := r.Feed("reach jane.doe@example.com today")
	if !d.IsSubstitute() {
		t.Fatalf("expected substitute, got %v", d)
	}
	if d.Replacement() != "reach [redacted] today" {
		t.Errorf("unexpected rewrite: %q", d.Replacement())
	}
}

func TestPatternRule_RewriteCreditCard(t *testing.T) {
	r := NewPatternRewriteRule(PatternCreditCard, "[card]")
	d := r.Feed("card 4111-1111-1111-1111 on file")
	if !d.IsSubstitute() {
		t.Fatalf("expected substitute, got %v", d)
	}
	if d.Replacement() != "card [card]on file" {
		t.Errorf("unexpected rewrite: %q", d.Replacement())
	}
}

func TestPatternRule_Reset(t *testing.T) {
	r := NewPatternRule(PatternEmail, "email detected")
	r.Feed("partial@")
	r.Reset()
	d := r.Feed("example.com")
	if !d.IsPermit() {
		t.Errorf("expected permit after Reset discarded the carry buffer, got %v", d)
	}
}

func TestPatternRule_LastScoreAlwaysZero(t *testing.T) {
	r := NewPatternRule(PatternEmail, "email detected")
	r.Feed("jane@example.com")
	if r.LastScore() != 0 {
		t.Errorf("pattern rules never score, got %d", r.LastScore())
	}
}

func TestPatternRule_Description(t *testing.T) {
	r := NewPatternRule(PatternEmail, "reason")
	if r.Description() != "email address" {
		t.Errorf("expected preset description, got %q", r.Description())
	}
	custom, _ := NewCustomPatternRule("x", "reason", "custom marker", false)
	if custom.Description() != "custom marker" {
		t.Errorf("expected custom description, got %q", custom.Description())
	}
}

func TestPatternRule_WithName(t *testing.T) {
	r := NewPatternRule(PatternEmail, "reason")
	if r.Name() != "pattern_rule" {
		t.Errorf("expected default name, got %q", r.Name())
	}
	r.WithName("email_guard")
	if r.Name() != "email_guard" {
		t.Errorf("expected overridden name, got %q", r.Name())
	}
}
