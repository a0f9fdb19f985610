package models

import (
	"fmt"

	"github.com/google/uuid"
)

// DocumentType discriminates the three kinds of billing documents.
type DocumentType string

const (
	TypeInvoice DocumentType = "invoice"
	TypeQuote   DocumentType = "quote"
	TypeOrder   DocumentType = "order"
)

// TypeMeta is the presentation metadata attached to a document type. The
// due-date field is shared storage; only its meaning changes per type.
type TypeMeta struct {
	Prefix      string // document number prefix
	Label       string // printed heading
	DateLabel   string // meaning of the due-date field
	ThemeColor  string // accent color on the rendered document
	DefaultNote string
	Placeholder string // description of the seeded line item
}

var typeMetas = map[DocumentType]TypeMeta{
	TypeInvoice: {
		Prefix:      "FAC",
		Label:       "Facture",
		DateLabel:   "Échéance",
		ThemeColor:  "#2563eb",
		DefaultNote: "Merci de votre confiance !",
		Placeholder: "Prestation de service (facture)",
	},
	TypeQuote: {
		Prefix:      "DEV",
		Label:       "Devis",
		DateLabel:   "Validité",
		ThemeColor:  "#059669",
		DefaultNote: "Devis valable 30 jours.",
		Placeholder: "Prestation de service (devis)",
	},
	TypeOrder: {
		Prefix:      "CMD",
		Label:       "Bon de Commande",
		DateLabel:   "Livraison",
		ThemeColor:  "#7c3aed",
		DefaultNote: "Merci de votre confiance !",
		Placeholder: "Prestation de service (commande)",
	},
}

func (t DocumentType) Valid() bool {
	_, ok := typeMetas[t]
	return ok
}

// Meta returns the presentation metadata for t. Unknown values fall back to
// the invoice metadata.
func (t DocumentType) Meta() TypeMeta {
	if m, ok := typeMetas[t]; ok {
		return m
	}
	return typeMetas[TypeInvoice]
}

// LineItem is one billed position. The line total is always derived, never
// stored.
type LineItem struct {
	Id          string `json:"id"`
	Description string `json:"description"`
	Quantity    Amount `json:"quantity"`
	UnitPrice   Amount `json:"unit_price"`
}

// BillingDocument is an invoice, quote or purchase order. Client and issuer
// are embedded snapshots taken at assignment time.
type BillingDocument struct {
	Id              string         `json:"id"`
	Type            DocumentType   `json:"type"`
	Number          string         `json:"number"`
	Subject         string         `json:"subject"`
	IssueDate       Date           `json:"issue_date"`
	DueDate         Date           `json:"due_date"`
	Items           []LineItem     `json:"items"`
	Client          ClientInfo     `json:"client"`
	Issuer          CompanyProfile `json:"issuer"`
	Notes           string         `json:"notes"`
	TaxExempt       bool           `json:"tax_exempt"`
	TaxRate         Amount         `json:"tax_rate"` // percent
	ShowBankDetails bool           `json:"show_bank_details"`
}

// Clone returns a deep copy; the items get their own backing array.
func (d BillingDocument) Clone() BillingDocument {
	out := d
	out.Items = make([]LineItem, len(d.Items))
	copy(out.Items, d.Items)
	return out
}

// Filename is the download name of the rendered PDF.
func (d BillingDocument) Filename() string {
	return fmt.Sprintf("%s_%s.pdf", d.Type, d.Number)
}

// FormatNumber renders the canonical document number for a type, year and
// sequence suffix.
func FormatNumber(t DocumentType, year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", t.Meta().Prefix, year, seq)
}

// NewDocument builds a draft document with computed defaults. The draft is
// detached: it only enters the store on an explicit save. seq feeds the
// monotonic number suffix (the number itself stays editable before save).
// The operation is total; an unknown type degrades to an invoice and a nil
// issuer to the built-in default profile.
func NewDocument(t DocumentType, issuer *CompanyProfile, seq int) BillingDocument {
	if !t.Valid() {
		t = TypeInvoice
	}
	meta := t.Meta()

	emitter := DefaultProfile()
	if issuer != nil {
		emitter = issuer.Clone()
	}

	today := Today()
	return BillingDocument{
		Id:        uuid.NewString(),
		Type:      t,
		Number:    FormatNumber(t, today.Year(), seq),
		IssueDate: today,
		// Same 30-day offset for every type; only the label differs.
		DueDate: today.AddDays(30),
		Items: []LineItem{{
			Id:          uuid.NewString(),
			Description: meta.Placeholder,
			Quantity:    1,
			UnitPrice:   0,
		}},
		Client:          NewClient(),
		Issuer:          emitter,
		Notes:           meta.DefaultNote,
		TaxExempt:       true,
		TaxRate:         0,
		ShowBankDetails: emitter.ShowBankDetails,
	}
}
