package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"facturation-backend/models"
	"facturation-backend/utils"
)

// TaxExemptMention is the legal mention printed on exempt documents.
const TaxExemptMention = "TVA non applicable, art. 293 B du CGI"

// Renderer rasterizes a billing document into the downloadable PDF. It is
// the only component aware of page layout; failure surfaces as an error,
// never a partial file.
type Renderer struct {
	log zerolog.Logger
}

func NewRenderer(log zerolog.Logger) *Renderer {
	return &Renderer{log: log.With().Str("component", "pdf").Logger()}
}

const (
	pageWidth  = 210.0
	marginSize = 20.0
	usable     = pageWidth - 2*marginSize
)

// RenderDocument lays out one document on an A4 page: theme bar, issuer and
// client blocks, items table, totals, the quote signature boxes, bank
// details when enabled and the tax-exemption mention.
func (r *Renderer) RenderDocument(doc models.BillingDocument) ([]byte, error) {
	meta := doc.Type.Meta()
	cr, cg, cb := hexColor(meta.ThemeColor)

	p := gofpdf.New("P", "mm", "A4", "")
	tr := p.UnicodeTranslatorFromDescriptor("")
	p.SetMargins(marginSize, marginSize, marginSize)
	p.SetAutoPageBreak(true, marginSize)
	p.AddPage()

	// Theme bar across the top edge.
	p.SetFillColor(cr, cg, cb)
	p.Rect(0, 0, pageWidth, 2, "F")

	// Issuer block, left.
	p.SetY(marginSize)
	p.SetFont("Helvetica", "B", 14)
	p.SetTextColor(20, 20, 20)
	p.MultiCell(usable/2, 6, tr(strings.ToUpper(doc.Issuer.Name)), "", "L", false)
	p.SetFont("Helvetica", "", 8)
	p.SetTextColor(110, 110, 110)
	for _, line := range []string{
		doc.Issuer.Address,
		strings.TrimSpace(doc.Issuer.ZipCode + " " + doc.Issuer.City),
		doc.Issuer.Country,
		"SIRET : " + doc.Issuer.TaxId,
	} {
		if line != "" {
			p.MultiCell(usable/2, 4, tr(line), "", "L", false)
		}
	}
	if doc.Issuer.Email != "" {
		p.MultiCell(usable/2, 4, tr("Email : "+doc.Issuer.Email), "", "L", false)
	}
	if doc.Issuer.Phone != "" {
		p.MultiCell(usable/2, 4, tr("Tél : "+doc.Issuer.Phone), "", "L", false)
	}
	issuerBottom := p.GetY()

	// Type chip, number and dates, right.
	p.SetXY(pageWidth-marginSize-60, marginSize)
	p.SetFillColor(cr, cg, cb)
	p.SetTextColor(255, 255, 255)
	p.SetFont("Helvetica", "B", 10)
	p.CellFormat(60, 8, tr(strings.ToUpper(meta.Label)), "", 1, "C", true, 0, "")
	p.SetX(pageWidth - marginSize - 60)
	p.SetTextColor(20, 20, 20)
	p.SetFont("Helvetica", "B", 10)
	p.CellFormat(60, 8, tr("N° "+doc.Number), "", 1, "R", false, 0, "")
	p.SetFont("Helvetica", "", 8)
	p.SetTextColor(110, 110, 110)
	p.SetX(pageWidth - marginSize - 60)
	p.CellFormat(60, 5, tr("Date : "+frenchDate(doc.IssueDate)), "", 1, "R", false, 0, "")
	p.SetX(pageWidth - marginSize - 60)
	p.CellFormat(60, 5, tr(meta.DateLabel+" : "+frenchDate(doc.DueDate)), "", 1, "R", false, 0, "")

	if p.GetY() < issuerBottom {
		p.SetY(issuerBottom)
	}
	p.Ln(8)

	// Subject left, recipient block right.
	blockTop := p.GetY()
	if doc.Subject != "" {
		p.SetFont("Helvetica", "B", 7)
		p.SetTextColor(150, 150, 150)
		p.CellFormat(usable/2, 4, tr(strings.ToUpper("Objet du document")), "", 1, "L", false, 0, "")
		p.SetFont("Helvetica", "B", 9)
		p.SetTextColor(40, 40, 40)
		p.MultiCell(usable/2-5, 4.5, tr(doc.Subject), "", "L", false)
	}
	leftBottom := p.GetY()

	p.SetXY(marginSize+usable/2, blockTop)
	p.SetFillColor(246, 247, 249)
	p.SetFont("Helvetica", "B", 7)
	p.SetTextColor(150, 150, 150)
	p.CellFormat(usable/2, 6, tr("  DESTINATAIRE"), "", 2, "L", true, 0, "")
	p.SetFont("Helvetica", "B", 10)
	p.SetTextColor(20, 20, 20)
	name := doc.Client.Name
	if name == "" {
		name = "Client"
	}
	p.SetX(marginSize + usable/2)
	p.CellFormat(usable/2, 6, tr("  "+name), "", 2, "L", true, 0, "")
	p.SetFont("Helvetica", "", 8)
	p.SetTextColor(90, 90, 90)
	for _, line := range []string{
		doc.Client.Address,
		strings.TrimSpace(doc.Client.ZipCode + " " + doc.Client.City),
		doc.Client.Country,
	} {
		if line != "" {
			p.SetX(marginSize + usable/2)
			p.CellFormat(usable/2, 4.5, tr("  "+line), "", 2, "L", true, 0, "")
		}
	}
	if p.GetY() < leftBottom {
		p.SetY(leftBottom)
	}
	p.Ln(10)

	r.itemsTable(p, tr, doc)
	r.totalsBlock(p, tr, doc)

	if doc.Type == models.TypeQuote {
		r.signatureBoxes(p, tr)
	}

	r.footer(p, tr, doc)

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		r.log.Error().Err(err).Str("document_id", doc.Id).Msg("pdf generation failed")
		return nil, err
	}
	return buf.Bytes(), nil
}

// Column widths match the on-screen table: description 55%, quantity 10%,
// unit price 15%, line total 20%.
var colWidths = [4]float64{usable * 0.55, usable * 0.10, usable * 0.15, usable * 0.20}

func (r *Renderer) itemsTable(p *gofpdf.Fpdf, tr func(string) string, doc models.BillingDocument) {
	p.SetFont("Helvetica", "B", 7)
	p.SetTextColor(150, 150, 150)
	p.SetDrawColor(20, 20, 20)
	p.SetLineWidth(0.5)
	headers := [4]string{"DESCRIPTION DES PRESTATIONS", "QTÉ", "P.U HT", "TOTAL HT"}
	aligns := [4]string{"L", "C", "R", "R"}
	for i, h := range headers {
		p.CellFormat(colWidths[i], 6, tr(h), "B", 0, aligns[i], false, 0, "")
	}
	p.Ln(-1)
	p.SetLineWidth(0.2)
	p.SetDrawColor(230, 230, 230)

	p.SetFont("Helvetica", "", 8)
	for _, item := range doc.Items {
		top := p.GetY()
		p.SetTextColor(60, 60, 60)
		p.MultiCell(colWidths[0], 6, tr(item.Description), "", "L", false)
		rowBottom := p.GetY()

		p.SetXY(marginSize+colWidths[0], top)
		p.SetTextColor(110, 110, 110)
		p.CellFormat(colWidths[1], 6, trimNumber(item.Quantity.Float64()), "", 0, "C", false, 0, "")
		p.CellFormat(colWidths[2], 6, tr(formatEUR(item.UnitPrice.Float64())), "", 0, "R", false, 0, "")
		p.SetFont("Helvetica", "B", 8)
		p.SetTextColor(20, 20, 20)
		line := item.Quantity.Float64() * item.UnitPrice.Float64()
		p.CellFormat(colWidths[3], 6, tr(formatEUR(utils.Round2(line))), "", 0, "R", false, 0, "")
		p.SetFont("Helvetica", "", 8)

		if rowBottom < top+6 {
			rowBottom = top + 6
		}
		p.SetY(rowBottom)
		p.Line(marginSize, rowBottom, pageWidth-marginSize, rowBottom)
		p.Ln(1)
	}
	p.Ln(6)
}

func (r *Renderer) totalsBlock(p *gofpdf.Fpdf, tr func(string) string, doc models.BillingDocument) {
	totals := doc.Totals()
	x := pageWidth - marginSize - 65

	p.SetX(x)
	p.SetFont("Helvetica", "", 8)
	p.SetTextColor(150, 150, 150)
	p.CellFormat(35, 6, tr("TOTAL HORS TAXES"), "", 0, "L", false, 0, "")
	p.SetTextColor(20, 20, 20)
	p.SetFont("Helvetica", "B", 8)
	p.CellFormat(30, 6, tr(formatEUR(totals.Subtotal)), "", 1, "R", false, 0, "")

	if !doc.TaxExempt {
		p.SetX(x)
		p.SetFont("Helvetica", "", 8)
		p.SetTextColor(150, 150, 150)
		p.CellFormat(35, 6, tr(fmt.Sprintf("TVA (%s %%)", trimNumber(doc.TaxRate.Float64()))), "", 0, "L", false, 0, "")
		p.SetTextColor(20, 20, 20)
		p.SetFont("Helvetica", "B", 8)
		p.CellFormat(30, 6, tr(formatEUR(totals.TaxAmount)), "", 1, "R", false, 0, "")
	}

	p.SetX(x)
	p.SetFillColor(20, 20, 20)
	p.SetTextColor(255, 255, 255)
	p.SetFont("Helvetica", "B", 9)
	p.CellFormat(35, 10, tr("  TOTAL TTC"), "", 0, "L", true, 0, "")
	p.SetFont("Helvetica", "B", 11)
	p.CellFormat(30, 10, tr(formatEUR(totals.Total)+"  "), "", 1, "R", true, 0, "")
	p.Ln(10)
}

func (r *Renderer) signatureBoxes(p *gofpdf.Fpdf, tr func(string) string) {
	colW := usable/2 - 5
	top := p.GetY()
	p.SetFont("Helvetica", "B", 7)
	p.SetTextColor(150, 150, 150)
	p.CellFormat(colW, 5, tr("CACHET ENTREPRISE"), "", 0, "C", false, 0, "")
	p.SetX(marginSize + colW + 10)
	p.CellFormat(colW, 5, tr("SIGNATURE CLIENT (ACCORD)"), "", 1, "C", false, 0, "")
	p.SetFont("Helvetica", "I", 7)
	p.SetX(marginSize + colW + 10)
	p.CellFormat(colW, 4, tr(`Mention "Bon pour accord" et signature`), "", 1, "C", false, 0, "")

	boxTop := p.GetY() + 2
	p.SetDrawColor(220, 220, 220)
	p.SetFillColor(250, 250, 250)
	p.Rect(marginSize, boxTop, colW, 24, "FD")
	p.Rect(marginSize+colW+10, boxTop, colW, 24, "FD")
	p.SetY(boxTop + 30)
	_ = top
}

func (r *Renderer) footer(p *gofpdf.Fpdf, tr func(string) string, doc models.BillingDocument) {
	p.SetDrawColor(235, 235, 235)
	p.Line(marginSize, p.GetY(), pageWidth-marginSize, p.GetY())
	p.Ln(4)

	colW := usable/2 - 5
	top := p.GetY()

	p.SetFont("Helvetica", "B", 7)
	p.SetTextColor(150, 150, 150)
	p.CellFormat(colW, 5, tr("MODE DE RÈGLEMENT"), "", 1, "L", false, 0, "")
	if doc.ShowBankDetails && doc.Issuer.IBAN != "" {
		p.SetFont("Courier", "", 7)
		p.SetTextColor(60, 60, 60)
		p.CellFormat(colW, 4.5, tr("IBAN : "+doc.Issuer.IBAN), "", 1, "L", false, 0, "")
		if doc.Issuer.BIC != "" {
			p.CellFormat(colW, 4.5, tr("BIC  : "+doc.Issuer.BIC), "", 1, "L", false, 0, "")
		}
	} else {
		p.SetFont("Helvetica", "I", 7)
		p.SetTextColor(150, 150, 150)
		p.CellFormat(colW, 4.5, tr("À définir selon conditions générales."), "", 1, "L", false, 0, "")
	}

	p.SetXY(marginSize+colW+10, top)
	p.SetFont("Helvetica", "B", 7)
	p.SetTextColor(150, 150, 150)
	p.CellFormat(colW, 5, tr("INFORMATIONS COMPLÉMENTAIRES"), "", 1, "L", false, 0, "")
	if doc.Notes != "" {
		p.SetX(marginSize + colW + 10)
		p.SetFont("Helvetica", "I", 7)
		p.SetTextColor(90, 90, 90)
		p.MultiCell(colW, 4, tr(doc.Notes), "", "L", false)
	}
	p.Ln(6)

	if doc.TaxExempt {
		p.SetFont("Helvetica", "B", 7)
		p.SetTextColor(150, 150, 150)
		p.CellFormat(usable, 4, tr(TaxExemptMention), "", 1, "C", false, 0, "")
	}
	p.SetFont("Helvetica", "", 5)
	p.SetTextColor(190, 190, 190)
	p.CellFormat(usable, 4, tr("Document généré numériquement via FactureAuto"), "", 1, "C", false, 0, "")
}

// frenchDate renders a date as dd/mm/yyyy for print.
func frenchDate(d models.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format("02/01/2006")
}

// formatEUR renders an amount in the French locale: "1 234,56 €".
func formatEUR(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	parts := strings.SplitN(s, ".", 2)
	intPart, decPart := parts[0], parts[1]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	out := b.String() + "," + decPart + " €"
	if neg {
		out = "-" + out
	}
	return out
}

// trimNumber drops a trailing ".00" from quantities and rates.
func trimNumber(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

// hexColor parses "#rrggbb" into its components.
func hexColor(hex string) (int, int, int) {
	var r, g, b int
	if _, err := fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		return 37, 99, 235
	}
	return r, g, b
}
