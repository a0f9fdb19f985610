package store

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturation-backend/models"
	"facturation-backend/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	s, err := New(mem, zerolog.Nop())
	require.NoError(t, err)
	return s, mem
}

func testDoc(id, number, clientName, subject string) models.BillingDocument {
	return models.BillingDocument{
		Id:      id,
		Type:    models.TypeInvoice,
		Number:  number,
		Client:  models.ClientInfo{Id: "c-" + id, Name: clientName},
		Subject: subject,
		Items:   []models.LineItem{{Id: "i-" + id, Quantity: 1, UnitPrice: 100}},
	}
}

func TestNewSeedsDefaultProfile(t *testing.T) {
	s, _ := newTestStore(t)

	profiles := s.Profiles()
	require.Len(t, profiles, 1)
	assert.True(t, profiles[0].IsDefault)
	assert.Equal(t, "Ma Micro-Entreprise", profiles[0].Name)
}

func TestUpsertDocument(t *testing.T) {
	s, _ := newTestStore(t)

	a := testDoc("a", "FAC-2026-001", "Alice", "Site web")
	b := testDoc("b", "FAC-2026-002", "Bob", "Logo")
	require.NoError(t, s.UpsertDocument(a))
	require.NoError(t, s.UpsertDocument(b))

	// new documents prepend
	docs := s.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].Id)

	// updates replace in place, keeping length and order
	a.Subject = "Refonte"
	require.NoError(t, s.UpsertDocument(a))
	docs = s.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].Id)
	assert.Equal(t, "Refonte", docs[1].Subject)
}

func TestUpsertDocumentDetachesCaller(t *testing.T) {
	s, _ := newTestStore(t)

	doc := testDoc("a", "FAC-2026-001", "Alice", "Site web")
	require.NoError(t, s.UpsertDocument(doc))

	// mutating the caller's copy after save must not touch the store
	doc.Items[0].UnitPrice = 999999
	got, ok := s.Document("a")
	require.True(t, ok)
	assert.Equal(t, models.Amount(100), got.Items[0].UnitPrice)
}

func TestDeleteDocumentsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.UpsertDocument(testDoc("a", "FAC-2026-001", "Alice", "")))
	require.NoError(t, s.UpsertDocument(testDoc("b", "FAC-2026-002", "Bob", "")))

	require.NoError(t, s.DeleteDocuments([]string{"a", "missing"}))
	assert.Len(t, s.Documents(), 1)

	// repeat delete is a no-op
	require.NoError(t, s.DeleteDocuments([]string{"a"}))
	assert.Len(t, s.Documents(), 1)
}

func TestFindDocuments(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.UpsertDocument(testDoc("a", "FAC-2026-001", "Alice Martin", "Site web")))
	require.NoError(t, s.UpsertDocument(testDoc("b", "DEV-2026-001", "Bob Durand", "Identité visuelle")))

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"  ", 2},
		{"fac-2026", 1},
		{"MARTIN", 1},
		{"visuelle", 1},
		{"nothing here", 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("q=%q", tt.query), func(t *testing.T) {
			assert.Len(t, s.FindDocuments(tt.query), tt.want)
		})
	}
}

func TestNextSequence(t *testing.T) {
	s, _ := newTestStore(t)
	year := models.Today().Year()

	assert.Equal(t, 1, s.NextSequence(models.TypeInvoice))

	require.NoError(t, s.UpsertDocument(testDoc("a", models.FormatNumber(models.TypeInvoice, year, 4), "", "")))
	require.NoError(t, s.UpsertDocument(testDoc("b", models.FormatNumber(models.TypeInvoice, year, 2), "", "")))
	// other types and free-form numbers do not interfere
	require.NoError(t, s.UpsertDocument(testDoc("c", models.FormatNumber(models.TypeQuote, year, 9), "", "")))
	require.NoError(t, s.UpsertDocument(testDoc("d", "IMP-1756600000", "", "")))

	assert.Equal(t, 5, s.NextSequence(models.TypeInvoice))
	assert.Equal(t, 10, s.NextSequence(models.TypeQuote))
	assert.Equal(t, 1, s.NextSequence(models.TypeOrder))
}

func TestWriteThroughRoundTrip(t *testing.T) {
	mem := storage.NewMemory()
	s1, err := New(mem, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s1.UpsertDocument(testDoc("a", "FAC-2026-001", "Alice", "Site web")))
	require.NoError(t, s1.UpsertClient(models.ClientInfo{Id: "c1", Name: "Alice"}))
	_, err = s1.AddProfile()
	require.NoError(t, err)

	// a fresh store over the same backend sees everything
	s2, err := New(mem, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, s2.Documents(), 1)
	assert.Len(t, s2.Clients(), 1)
	assert.Len(t, s2.Profiles(), 2)
	assert.True(t, models.DefaultIsUnique(s2.Profiles()))
}

func TestUpsertClient(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.UpsertClient(models.ClientInfo{Id: "c1", Name: "Alice"}))
	require.NoError(t, s.UpsertClient(models.ClientInfo{Id: "c2", Name: "Bob"}))
	require.NoError(t, s.UpsertClient(models.ClientInfo{Id: "c1", Name: "Alice Martin"}))

	clients := s.Clients()
	require.Len(t, clients, 2)
	assert.Equal(t, "c2", clients[0].Id)
	assert.Equal(t, "Alice Martin", clients[1].Name)
}

func TestClientEditLeavesDocumentSnapshot(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.UpsertClient(models.ClientInfo{Id: "c1", Name: "Alice"}))
	doc := testDoc("a", "FAC-2026-001", "Alice", "")
	doc.Client = models.ClientInfo{Id: "c1", Name: "Alice"}
	require.NoError(t, s.UpsertDocument(doc))

	require.NoError(t, s.UpsertClient(models.ClientInfo{Id: "c1", Name: "Alice Martin"}))

	got, ok := s.Document("a")
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Client.Name)
}

func TestDeleteClientAbsentIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.DeleteClient("missing"))
	require.NoError(t, s.UpsertClient(models.ClientInfo{Id: "c1"}))
	require.NoError(t, s.DeleteClient("c1"))
	assert.Empty(t, s.Clients())
}

func TestProfileDefaultInvariant(t *testing.T) {
	s, _ := newTestStore(t)

	p2, err := s.AddProfile()
	require.NoError(t, err)
	assert.False(t, p2.IsDefault)

	require.NoError(t, s.SetDefaultProfile(p2.Id))
	profiles := s.Profiles()
	require.True(t, models.DefaultIsUnique(profiles))
	assert.Equal(t, p2.Id, s.DefaultProfile().Id)

	// setting an unknown id changes nothing
	require.NoError(t, s.SetDefaultProfile("missing"))
	assert.Equal(t, p2.Id, s.DefaultProfile().Id)

	// upserting a profile flagged default clears the others
	p3 := models.NewProfile()
	p3.IsDefault = true
	require.NoError(t, s.UpsertProfile(p3))
	profiles = s.Profiles()
	require.Len(t, profiles, 3)
	assert.True(t, models.DefaultIsUnique(profiles))
	assert.Equal(t, p3.Id, s.DefaultProfile().Id)
}

func TestDeleteProfile(t *testing.T) {
	s, _ := newTestStore(t)

	// the seeded profile is the only one: deletion refused
	assert.False(t, s.CanDeleteProfile())
	err := s.DeleteProfile(s.DefaultProfile().Id)
	assert.ErrorIs(t, err, ErrLastProfile)

	p2, err := s.AddProfile()
	require.NoError(t, err)
	assert.True(t, s.CanDeleteProfile())

	// deleting an unknown id is a no-op
	require.NoError(t, s.DeleteProfile("missing"))
	assert.Len(t, s.Profiles(), 2)

	// deleting the default promotes the first remaining profile
	def := s.DefaultProfile()
	require.NoError(t, s.DeleteProfile(def.Id))
	profiles := s.Profiles()
	require.Len(t, profiles, 1)
	assert.Equal(t, p2.Id, profiles[0].Id)
	assert.True(t, profiles[0].IsDefault)
}

func TestStats(t *testing.T) {
	s, _ := newTestStore(t)

	inv := testDoc("a", "FAC-2026-001", "Alice", "")
	inv.TaxExempt = true
	require.NoError(t, s.UpsertDocument(inv))

	quote := testDoc("b", "DEV-2026-001", "Bob", "")
	quote.Type = models.TypeQuote
	require.NoError(t, s.UpsertDocument(quote))

	require.NoError(t, s.UpsertClient(models.ClientInfo{Id: "c1"}))

	got := s.Stats()
	assert.Equal(t, Stats{Documents: 2, Clients: 1, Revenue: 100}, got)
}
