package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/fabienng71/Rclx-sub001/models"
)

const quotationMailTemplate = `
<p>Dear {{.CompanyName}},</p>
<p>Please find attached our quotation {{.Reference}} dated {{.Created}}.</p>
<table>
<tr><th>Items</th><td>{{.ItemCount}}</td></tr>
<tr><th>Total</th><td>{{.Total}}</td></tr>
<tr><th>Valid until</th><td>{{.ValidUntil}}</td></tr>
<tr><th>Payment</th><td>{{.Payment}}</td></tr>
</table>
<p>Best regards,<br>{{.SenderName}}<br>{{.SenderEmail}}<br>{{.SenderPhone}}</p>
`

type quotationMailData struct {
	CompanyName string
	Reference   string
	Created     string
	ItemCount   int
	Total       string
	ValidUntil  string
	Payment     string
	SenderName  string
	SenderEmail string
	SenderPhone string
}

// MailComposer builds mailto: links; it never sends anything itself.
type MailComposer struct {
	tmpl *template.Template
}

func NewMailComposer() *MailComposer {
	return &MailComposer{tmpl: template.Must(template.New("quotation").Parse(quotationMailTemplate))}
}

// QuotationSubject is "Quotation <company> (<short id>)".
func QuotationSubject(q models.Quotation) string {
	return fmt.Sprintf("Quotation %s (%s)", q.Customer.CompanyName, shortID(q.ID))
}

// ComposeQuotation returns a mailto URI addressed to `to` (which may be empty).
func (m *MailComposer) ComposeQuotation(q models.Quotation, to string) (string, error) {
	data := quotationMailData{
		CompanyName: q.Customer.CompanyName,
		Reference:   shortID(q.ID),
		Created:     q.CreatedAt.Format(pdfDateLayout),
		ItemCount:   len(q.Items),
		Total:       formatMoney(q.TotalQuote()),
		ValidUntil:  q.ValidUntil.Format(pdfDateLayout),
		Payment:     q.PaymentTerms.Text(),
	}
	if q.Sender != nil {
		data.SenderName = q.Sender.Name
		data.SenderEmail = q.Sender.Email
		data.SenderPhone = q.Sender.Phone
	}

	var buf bytes.Buffer
	if err := m.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render mail body: %w", err)
	}

	query := url.Values{}
	query.Set("subject", QuotationSubject(q))
	query.Set("body", HTMLToText(buf.String()))
	// mailto readers expect %20, not the form encoding '+'.
	encoded := strings.ReplaceAll(query.Encode(), "+", "%20")
	return "mailto:" + url.PathEscape(to) + "?" + encoded, nil
}

// HTMLToText flattens an HTML fragment into plain text lines.
func HTMLToText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}

	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(strings.TrimSpace(n.Data))
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "tr", "table", "h1", "h2", "h3":
				text.WriteString("\n")
			case "li":
				text.WriteString("\n- ")
			case "td":
				text.WriteString(": ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode && n.Data == "p" {
			text.WriteString("\n")
		}
	}
	walk(doc)

	var lines []string
	blank := false
	for _, line := range strings.Split(text.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(lines) > 0 {
				lines = append(lines, "")
			}
			blank = true
			continue
		}
		blank = false
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
