package sanitize

import (
	"strings"
	"testing"
)

func TestClean_StripsScriptTags(t *testing.T) {
	input := `Claim now <script>alert(1)</script>`
	out := Clean(input)

	if strings.ContainsAny(out, "<>") {
		t.Errorf("Expected angle brackets removed, got %q", out)
	}
}

func TestClean_StripsJavascriptURI(t *testing.T) {
	input := `click javascript:doEvil() here`
	out := Clean(input)

	if strings.Contains(strings.ToLower(out), "javascript:") {
		t.Errorf("Expected javascript: URI removed, got %q", out)
	}
}

func TestClean_StripsEventHandlers(t *testing.T) {
	input := `img onerror=steal() src=x`
	out := Clean(input)

	if strings.Contains(out, "onerror=") {
		t.Errorf("Expected event handler attribute removed, got %q", out)
	}
}

func TestClean_StripsNumericEntities(t *testing.T) {
	input := `airdrop &#106;&#x61; live`
	out := Clean(input)

	if strings.Contains(out, "&#") {
		t.Errorf("Expected numeric entities removed, got %q", out)
	}
}

func TestClean_EmptyInput(t *testing.T) {
	if out := Clean(""); out != "" {
		t.Errorf("Expected empty output for empty input, got %q", out)
	}
}

func TestClean_PlainTextUnchanged(t *testing.T) {
	input := "Jupiter airdrop claim window opens today"
	if out := Clean(input); out != input {
		t.Errorf("Expected plain text unchanged, got %q", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hello..."},
		{"zero limit", "hello", 0, ""},
		{"multibyte runes", "日本語のテキスト", 3, "日本語..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := Truncate(tt.input, tt.n); out != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.n, out, tt.expected)
			}
		})
	}
}
