package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"

	"github.com/fabienng71/Rclx-sub001/models"
)

// ItemsPerPage is the row budget of every page.
const ItemsPerPage = 15

const pdfDateLayout = "02-Jan-2006"

// Issuer is the selling company printed in the document header.
type Issuer struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// QuotationDocument is the renderer input. Reference is optional; saved
// quotations use their id so the QR code on page 1 points back at them.
type QuotationDocument struct {
	Reference    string
	Customer     models.Customer
	Items        []models.QuotationItem
	Sender       *models.QuotationSender
	ValidUntil   time.Time
	PaymentTerms models.PaymentTerms
	IssuedAt     time.Time
}

// DocumentFromQuotation renders a saved quotation as issued at issuedAt.
func DocumentFromQuotation(q models.Quotation, issuedAt time.Time) QuotationDocument {
	return QuotationDocument{
		Reference:    q.ID,
		Customer:     q.Customer,
		Items:        q.Items,
		Sender:       q.Sender,
		ValidUntil:   q.ValidUntil,
		PaymentTerms: q.PaymentTerms,
		IssuedAt:     issuedAt,
	}
}

type HeaderBlock struct {
	Issuer Issuer
	Sender *models.QuotationSender
}

type CustomerBlock struct {
	CompanyName  string
	CustomerCode string
	SearchName   string
	IssueDate    string
	ValidUntil   string
}

type DocumentRow struct {
	ItemCode    string
	Description string
	ListPrice   string
	QuotePrice  string
	Annotation  string
	Discount    float64
}

type TermsBlock struct {
	Conditions []string
	Payment    string
}

// PageLayout is one page of the document. Title, Header and Customer are set
// on the first page only; Terms on the last page only.
type PageLayout struct {
	Number   int
	Total    int
	Title    string
	Header   *HeaderBlock
	Customer *CustomerBlock
	Rows     []DocumentRow
	Terms    *TermsBlock
}

// TotalPages is ceil(n/ItemsPerPage) but never less than one.
func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + ItemsPerPage - 1) / ItemsPerPage
}

type QuotationRenderer struct {
	issuer Issuer
}

func NewQuotationRenderer(issuer Issuer) *QuotationRenderer {
	return &QuotationRenderer{issuer: issuer}
}

// Layout splits the document into pages without drawing anything.
func (r *QuotationRenderer) Layout(doc QuotationDocument) []PageLayout {
	total := TotalPages(len(doc.Items))
	pages := make([]PageLayout, total)
	for i := range pages {
		start := i * ItemsPerPage
		end := start + ItemsPerPage
		if end > len(doc.Items) {
			end = len(doc.Items)
		}
		rows := make([]DocumentRow, 0, end-start)
		for _, it := range doc.Items[start:end] {
			rows = append(rows, buildRow(it))
		}
		pages[i] = PageLayout{Number: i + 1, Total: total, Rows: rows}
	}

	first := &pages[0]
	first.Title = "QUOTATION"
	first.Header = &HeaderBlock{Issuer: r.issuer, Sender: doc.Sender}
	first.Customer = &CustomerBlock{
		CompanyName:  doc.Customer.CompanyName,
		CustomerCode: doc.Customer.CustomerCode,
		SearchName:   doc.Customer.SearchName,
		IssueDate:    doc.IssuedAt.Format(pdfDateLayout),
		ValidUntil:   doc.ValidUntil.Format(pdfDateLayout),
	}
	pages[total-1].Terms = buildTerms(doc)
	return pages
}

func buildRow(it models.QuotationItem) DocumentRow {
	row := DocumentRow{
		ItemCode:    it.ItemCode,
		Description: it.Description,
		ListPrice:   "-",
		QuotePrice:  formatMoney(it.QuotePrice),
		Discount:    Discount(it.ListPrice, it.QuotePrice),
	}
	if it.ListPrice > 0 {
		row.ListPrice = formatMoney(it.ListPrice)
	}
	switch {
	case row.Discount > 0:
		row.Annotation = fmt.Sprintf("%.1f%% discount", row.Discount)
	case row.Discount < 0:
		row.Annotation = fmt.Sprintf("%.1f%% markup", math.Abs(row.Discount))
	}
	return row
}

func buildTerms(doc QuotationDocument) *TermsBlock {
	return &TermsBlock{
		Conditions: []string{
			fmt.Sprintf("Prices are valid from %s until %s.",
				doc.IssuedAt.Format(pdfDateLayout), doc.ValidUntil.Format(pdfDateLayout)),
			"Prices exclude VAT unless stated otherwise.",
			"Delivery is subject to stock availability at the time of order confirmation.",
		},
		Payment: doc.PaymentTerms.Text(),
	}
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Render draws the document as an A4 PDF into w. It stops between pages once ctx is done.
func (r *QuotationRenderer) Render(ctx context.Context, w io.Writer, doc QuotationDocument) error {
	pages := r.Layout(doc)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		pdf.AddPage()

		if page.Header != nil {
			drawHeader(pdf, tr, page)
			if doc.Reference != "" {
				if err := drawReferenceQR(pdf, doc.Reference); err != nil {
					return err
				}
			}
		}
		if page.Customer != nil {
			drawCustomer(pdf, tr, page.Customer)
		}
		drawRows(pdf, tr, page.Rows)
		if page.Terms != nil {
			drawTerms(pdf, tr, page.Terms)
		}

		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(190, 6, fmt.Sprintf("Page %d of %d", page.Number, page.Total), "", 0, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render quotation: %w", err)
	}
	return pdf.Output(w)
}

func drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, page PageLayout) {
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(150, 10, page.Title)
	pdf.Ln(12)

	issuer := page.Header.Issuer
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(95, 6, tr(issuer.Name))
	if s := page.Header.Sender; s != nil {
		pdf.Cell(95, 6, tr(s.Name))
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 9)
	left := []string{issuer.Address, issuer.Phone, issuer.Email}
	var right []string
	if s := page.Header.Sender; s != nil {
		right = []string{s.Email, s.Phone}
	}
	for i := 0; i < len(left); i++ {
		pdf.Cell(95, 5, tr(left[i]))
		if i < len(right) {
			pdf.Cell(95, 5, tr(right[i]))
		}
		pdf.Ln(5)
	}
	pdf.Ln(4)
}

func drawCustomer(pdf *gofpdf.Fpdf, tr func(string) string, c *CustomerBlock) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(190, 7, "Customer")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(95, 6, tr(c.CompanyName))
	pdf.Cell(95, 6, fmt.Sprintf("Date: %s", c.IssueDate))
	pdf.Ln(6)
	pdf.Cell(95, 6, tr(fmt.Sprintf("Code: %s", c.CustomerCode)))
	pdf.Cell(95, 6, fmt.Sprintf("Valid until: %s", c.ValidUntil))
	pdf.Ln(6)
	if c.SearchName != "" {
		pdf.Cell(95, 6, tr(c.SearchName))
		pdf.Ln(6)
	}
	pdf.Ln(4)
}

var rowWidths = []float64{30, 70, 28, 28, 34}

func drawRows(pdf *gofpdf.Fpdf, tr func(string) string, rows []DocumentRow) {
	if len(rows) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	headers := []string{"Item", "Description", "List Price", "Quote Price", ""}
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(rowWidths[i], 8, h, "1", ln, "C", true, 0, "")
	}

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		pdf.CellFormat(rowWidths[0], 7, tr(row.ItemCode), "1", 0, "L", false, 0, "")
		pdf.CellFormat(rowWidths[1], 7, tr(truncate(row.Description, 45)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(rowWidths[2], 7, row.ListPrice, "1", 0, "R", false, 0, "")
		pdf.CellFormat(rowWidths[3], 7, row.QuotePrice, "1", 0, "R", false, 0, "")
		pdf.CellFormat(rowWidths[4], 7, row.Annotation, "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
}

func drawTerms(pdf *gofpdf.Fpdf, tr func(string) string, terms *TermsBlock) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(190, 8, "Selling Conditions")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 9)
	for _, c := range terms.Conditions {
		pdf.MultiCell(190, 5, tr("- "+c), "", "L", false)
	}
	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(190, 8, "Payment Terms:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(190, 6, tr(terms.Payment), "", "L", false)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// drawReferenceQR places a captioned QR code of ref in the top right corner of the current page.
func drawReferenceQR(pdf *gofpdf.Fpdf, ref string) error {
	img, err := ReferenceQRImage(ref)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode QR code: %w", err)
	}
	name := "qr-" + ref
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, &buf)
	pdf.ImageOptions(name, 170, 8, 30, 0, false, opts, 0, "")
	return nil
}

const qrSize = 256

// ReferenceQRImage encodes ref as a QR code with the first characters of ref printed below it.
func ReferenceQRImage(ref string) (*image.RGBA, error) {
	qr, err := qrcode.New(ref, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	qrImg := qr.Image(qrSize)

	const captionHeight = 24
	out := image.NewRGBA(image.Rect(0, 0, qrSize, qrSize+captionHeight))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, 0, qrSize, qrSize), qrImg, image.Point{}, draw.Src)

	caption := ref
	if len(caption) > 8 {
		caption = caption[:8]
	}
	face := inconsolata.Bold8x16
	width := font.MeasureString(face, caption).Ceil()
	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.RGBA{30, 30, 30, 255}),
		Face: face,
		Dot:  fixed.P((qrSize-width)/2, qrSize+captionHeight/2+4),
	}
	d.DrawString(caption)
	return out, nil
}
