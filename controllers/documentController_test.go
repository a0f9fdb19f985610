package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturation-backend/middlewares"
	"facturation-backend/models"
	"facturation-backend/services"
	"facturation-backend/storage"
	"facturation-backend/store"
)

func newTestApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	st, err := store.New(storage.NewMemory(), zerolog.Nop())
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	dc := NewDocumentController(st, services.NewAssistant(zerolog.Nop()), services.NewRenderer(zerolog.Nop()), zerolog.Nop())
	pc := NewProfileController(st, zerolog.Nop())

	app.Get("/api/documents", dc.List)
	app.Post("/api/documents/new", dc.NewDraft)
	app.Get("/api/documents/:id", dc.Get)
	app.Post("/api/documents", dc.Upsert)
	app.Delete("/api/documents", dc.Delete)
	app.Get("/api/documents/:id/pdf", dc.DownloadPDF)
	app.Get("/api/stats", dc.Stats)
	app.Delete("/api/profiles/:id", pc.Delete)
	return app, st
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestNewDraftIsNotStored(t *testing.T) {
	app, st := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/documents/new?type=quote", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	draft := decode[models.BillingDocument](t, resp)
	assert.Equal(t, models.TypeQuote, draft.Type)
	assert.Contains(t, draft.Number, "DEV-")

	// drafts only enter the collection on save
	assert.Empty(t, st.Documents())
}

func TestUpsertAndGetDocument(t *testing.T) {
	app, st := newTestApp(t)
	issuer := st.DefaultProfile()
	doc := models.NewDocument(models.TypeInvoice, &issuer, 1)
	doc.Subject = "Site vitrine"

	resp := doJSON(t, app, http.MethodPost, "/api/documents", doc)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/documents/"+doc.Id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.BillingDocument](t, resp)
	assert.Equal(t, "Site vitrine", got.Subject)

	resp = doJSON(t, app, http.MethodGet, "/api/documents/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpsertDocumentRejectsMissingId(t *testing.T) {
	app, _ := newTestApp(t)
	resp := doJSON(t, app, http.MethodPost, "/api/documents", fiber.Map{"subject": "no id"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteDocuments(t *testing.T) {
	app, st := newTestApp(t)
	issuer := st.DefaultProfile()
	doc := models.NewDocument(models.TypeInvoice, &issuer, 1)
	require.NoError(t, st.UpsertDocument(doc))

	resp := doJSON(t, app, http.MethodDelete, "/api/documents", fiber.Map{"ids": []string{doc.Id}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, st.Documents())

	// an empty id list fails validation
	resp = doJSON(t, app, http.MethodDelete, "/api/documents", fiber.Map{"ids": []string{}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDownloadPDF(t *testing.T) {
	app, st := newTestApp(t)
	issuer := st.DefaultProfile()
	doc := models.NewDocument(models.TypeInvoice, &issuer, 1)
	require.NoError(t, st.UpsertDocument(doc))

	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.Id+"/pdf", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), doc.Filename())
}

func TestDeleteLastProfileConflicts(t *testing.T) {
	app, st := newTestApp(t)
	resp := doJSON(t, app, http.MethodDelete, "/api/profiles/"+st.DefaultProfile().Id, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	app, st := newTestApp(t)
	issuer := st.DefaultProfile()
	doc := models.NewDocument(models.TypeInvoice, &issuer, 1)
	doc.Items = []models.LineItem{{Id: "1", Quantity: 2, UnitPrice: 75}}
	require.NoError(t, st.UpsertDocument(doc))

	resp := doJSON(t, app, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[store.Stats](t, resp)
	assert.Equal(t, store.Stats{Documents: 1, Clients: 0, Revenue: 150}, got)
}
