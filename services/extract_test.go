package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturation-backend/models"
)

func TestExtractFromTextStrictJSON(t *testing.T) {
	a := stubAssistant(t, http.StatusOK, `{
		"number": "FAC-2026-042",
		"date": "2026-03-01",
		"due_date": "2026-03-31",
		"client_name": "Alice Martin",
		"subject": "Développement web",
		"items": [
			{"description": "Sprint 1", "quantity": 5, "unit_price": 400}
		]
	}`)

	got := a.extractFromText(context.Background(), "FACTURE ...")
	require.NotNil(t, got)
	assert.Equal(t, "FAC-2026-042", got.Number)
	assert.Equal(t, "Alice Martin", got.ClientName)
	require.Len(t, got.Items, 1)
	assert.Equal(t, models.Amount(400), got.Items[0].UnitPrice)
}

func TestExtractFromTextMalformedIsTotalFailure(t *testing.T) {
	a := stubAssistant(t, http.StatusOK, `Voici le JSON : {"number": "FAC-1"}`)
	assert.Nil(t, a.extractFromText(context.Background(), "FACTURE ..."))
}

func TestExtractFromTextTransportFailure(t *testing.T) {
	a := stubAssistant(t, http.StatusServiceUnavailable, "")
	assert.Nil(t, a.extractFromText(context.Background(), "FACTURE ..."))
}

func TestExtractFromDocumentRejectsGarbagePayload(t *testing.T) {
	a := stubAssistant(t, http.StatusOK, "{}")
	assert.Nil(t, a.ExtractFromDocument(context.Background(), []byte("not a pdf")))
	assert.Nil(t, a.ExtractFromDocument(context.Background(), nil))
}

func TestToDocument(t *testing.T) {
	issuer := models.DefaultProfile()
	e := &ExtractedDocument{
		Number:     "FAC-EXT-001",
		Date:       "2026-02-01",
		DueDate:    "2026-03-03",
		ClientName: "Bob Durand",
		Subject:    "Maintenance",
		Items: []ExtractedItem{
			{Description: "Forfait mensuel", Quantity: 2, UnitPrice: 150},
			{Description: "", Quantity: 0, UnitPrice: 80},
		},
	}

	doc := e.ToDocument(&issuer, 1)

	assert.Equal(t, models.TypeInvoice, doc.Type)
	assert.Equal(t, "FAC-EXT-001", doc.Number)
	assert.Equal(t, "2026-02-01", doc.IssueDate.String())
	assert.Equal(t, "2026-03-03", doc.DueDate.String())
	assert.Equal(t, "Bob Durand", doc.Client.Name)
	assert.Equal(t, "Maintenance", doc.Subject)

	require.Len(t, doc.Items, 2)
	// blank description and zero quantity degrade to usable values
	assert.Equal(t, "Prestation", doc.Items[1].Description)
	assert.Equal(t, models.Amount(1), doc.Items[1].Quantity)
	assert.Equal(t, models.Amount(80), doc.Items[1].UnitPrice)
}

func TestToDocumentEmptyExtraction(t *testing.T) {
	issuer := models.DefaultProfile()
	doc := (&ExtractedDocument{}).ToDocument(&issuer, 1)

	assert.Contains(t, doc.Number, "IMP-")
	assert.Equal(t, "Facture Importée", doc.Subject)
	assert.Equal(t, "Client Inconnu", doc.Client.Name)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Prestation importée", doc.Items[0].Description)
	assert.Equal(t, models.Amount(1), doc.Items[0].Quantity)
}
