package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/hackmatehq/hackmate/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	if got := htmlsanitize.Sanitize("Hello, World!"); got != "Hello, World!" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestSanitize_SafeFormattingPreserved(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	input := "<p>Hello</p><script>alert('xss')</script>"
	if got := htmlsanitize.Sanitize(input); got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesOnclick(t *testing.T) {
	input := `<button onclick="alert('xss')">Click</button>`
	if got := htmlsanitize.Sanitize(input); strings.Contains(got, "onclick") {
		t.Errorf("expected onclick attribute removed, got %q", got)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if got := htmlsanitize.Sanitize(input); strings.Contains(got, "javascript:") {
		t.Errorf("expected javascript: href removed, got %q", got)
	}
}

func TestSanitize_AllowsSafeLinks(t *testing.T) {
	input := `<a href="https://example.com">Link</a>`
	got := htmlsanitize.Sanitize(input)
	if !strings.Contains(got, "https://example.com") {
		t.Errorf("expected safe link preserved, got %q", got)
	}
}

func TestSanitize_AllowsBreakTags(t *testing.T) {
	input := "Line 1<br>Line 2<br/>Line 3"
	if got := htmlsanitize.Sanitize(input); !strings.Contains(got, "<br") {
		t.Errorf("expected br tags preserved, got %q", got)
	}
}

func TestSanitize_RemovesFormElements(t *testing.T) {
	input := `<form action="/submit"><input type="text" name="data"><button>Submit</button></form>`
	got := htmlsanitize.Sanitize(input)
	if strings.Contains(got, "<form") || strings.Contains(got, "<input") {
		t.Errorf("expected form elements removed, got %q", got)
	}
}

func TestSanitize_AllowsTableCellSpans(t *testing.T) {
	input := `<table><tr><td colspan="2" rowspan="2">Cell</td></tr></table>`
	got := htmlsanitize.Sanitize(input)
	if !strings.Contains(got, `colspan="2"`) || !strings.Contains(got, `rowspan="2"`) {
		t.Errorf("expected colspan/rowspan preserved, got %q", got)
	}
}

func TestSanitizeHTML_ReturnsTemplateHTML(t *testing.T) {
	got := htmlsanitize.SanitizeHTML("<p>ok</p><script>bad()</script>")
	if string(got) != "<p>ok</p>" {
		t.Errorf("SanitizeHTML = %q", got)
	}
}
