package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/sashabaranov/go-openai"

	"facturation-backend/models"
)

// ExtractedDocument is the best-effort structure pulled out of an imported
// PDF invoice. Missing fields stay zero-valued and degrade to defaults in
// ToDocument.
type ExtractedDocument struct {
	Number        string          `json:"number"`
	Date          string          `json:"date"`
	DueDate       string          `json:"due_date"`
	IssuerName    string          `json:"issuer_name"`
	ClientName    string          `json:"client_name"`
	ClientAddress string          `json:"client_address"`
	Subject       string          `json:"subject"`
	Items         []ExtractedItem `json:"items"`
}

type ExtractedItem struct {
	Description string        `json:"description"`
	Quantity    models.Amount `json:"quantity"`
	UnitPrice   models.Amount `json:"unit_price"`
}

const extractionSystemPrompt = `Analyse le texte de cette facture et extrais les informations suivantes au format JSON strict.
Si une information est manquante, laisse le champ vide ou à 0.

Format attendu:
{
  "number": "Numéro de la facture",
  "date": "YYYY-MM-DD",
  "due_date": "YYYY-MM-DD",
  "issuer_name": "Nom de l'émetteur",
  "client_name": "Nom du client",
  "client_address": "Adresse du client",
  "subject": "Objet global de la facture ou résumé",
  "items": [
    { "description": "Description ligne 1", "quantity": 1, "unit_price": 0.0 }
  ]
}

Réponds AVEC UNIQUEMENT du JSON valide, sans texte avant ou après.`

// ExtractFromDocument reads the text layer of a PDF invoice and asks the
// model for a strict JSON extraction. Any failure (unreadable PDF, transport
// error, malformed JSON) yields nil; there is never a partial result, so a
// failed import mutates nothing.
func (a *Assistant) ExtractFromDocument(ctx context.Context, payload []byte) *ExtractedDocument {
	text, err := pdfText(payload)
	if err != nil || strings.TrimSpace(text) == "" {
		a.log.Warn().Err(err).Msg("no text layer extracted from PDF")
		return nil
	}
	return a.extractFromText(ctx, text)
}

func (a *Assistant) extractFromText(ctx context.Context, text string) *ExtractedDocument {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("extraction request failed")
		return nil
	}
	if len(resp.Choices) == 0 {
		a.log.Warn().Msg("extraction returned no choices")
		return nil
	}

	var out ExtractedDocument
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		// Malformed output is a total failure, not a partial parse.
		a.log.Warn().Err(err).Msg("extraction response is not valid JSON")
		return nil
	}
	return &out
}

func pdfText(payload []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ToDocument merges the extraction into a fresh invoice draft built by the
// document factory, degrading missing fields to usable defaults.
func (e *ExtractedDocument) ToDocument(issuer *models.CompanyProfile, seq int) models.BillingDocument {
	doc := models.NewDocument(models.TypeInvoice, issuer, seq)

	if e.Number != "" {
		doc.Number = e.Number
	} else {
		doc.Number = fmt.Sprintf("IMP-%d", time.Now().Unix())
	}
	if d, err := models.ParseDate(e.Date); err == nil {
		doc.IssueDate = d
	}
	if d, err := models.ParseDate(e.DueDate); err == nil {
		doc.DueDate = d
	}

	doc.Subject = e.Subject
	if doc.Subject == "" {
		doc.Subject = "Facture Importée"
	}
	doc.Client.Name = e.ClientName
	if doc.Client.Name == "" {
		doc.Client.Name = "Client Inconnu"
	}
	doc.Client.Address = e.ClientAddress

	if len(e.Items) == 0 {
		doc.Items = []models.LineItem{{
			Id:          uuid.NewString(),
			Description: "Prestation importée",
			Quantity:    1,
			UnitPrice:   0,
		}}
		return doc
	}

	items := make([]models.LineItem, 0, len(e.Items))
	for _, it := range e.Items {
		desc := it.Description
		if desc == "" {
			desc = "Prestation"
		}
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		items = append(items, models.LineItem{
			Id:          uuid.NewString(),
			Description: desc,
			Quantity:    qty,
			UnitPrice:   it.UnitPrice,
		})
	}
	doc.Items = items
	return doc
}
