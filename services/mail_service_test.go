package services

import (
	"net/url"
	"strings"
	"testing"
)

func TestComposeQuotation(t *testing.T) {
	q := exportQuotation("5b0e6c2a-4a63-4d0f", "draft")
	q.Customer.CompanyName = "Smith & Sons"

	uri, err := NewMailComposer().ComposeQuotation(q, "buyer@smith.example")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(uri, "mailto:buyer@smith.example?") {
		t.Fatalf("unexpected uri %s", uri)
	}
	if strings.Contains(uri, "+") {
		t.Fatal("spaces must be percent-encoded")
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		t.Fatal(err)
	}
	query := parsed.Query()
	if got := query.Get("subject"); got != "Quotation Smith & Sons (5b0e6c2a)" {
		t.Fatalf("unexpected subject %q", got)
	}
	body := query.Get("body")
	for _, want := range []string{"Dear Smith & Sons,", "Total: 15.50", "Payment within 7 days from invoice date", "Rep"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "<") {
		t.Fatalf("body still contains markup:\n%s", body)
	}
}

func TestHTMLToText(t *testing.T) {
	got := HTMLToText("<p>Hello</p>\n\n\n<p>World<br>again</p><ul><li>one</li></ul>")
	want := "Hello\n\nWorld\nagain\n\n- one"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
