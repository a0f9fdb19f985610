package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"facturation-backend/models"
	"facturation-backend/storage"
)

// Persisted entry names, one per collection.
const (
	keyDocuments = "documents"
	keyClients   = "clients"
	keyProfiles  = "profiles"
)

// ErrLastProfile rejects deleting the only remaining issuer profile.
var ErrLastProfile = errors.New("cannot delete last profile")

// Store owns the canonical collections of documents, clients and issuer
// profiles. Every mutation is mirrored synchronously to the persistence
// collaborator (write-through, last write wins). A single mutex serializes
// mutations so each runs to completion before the next begins.
//
// Callers always get detached copies: a document being edited is a working
// copy, and discarding it leaves the stored collection untouched.
type Store struct {
	mu        sync.Mutex
	kv        storage.KV
	log       zerolog.Logger
	documents []models.BillingDocument
	clients   []models.ClientInfo
	profiles  []models.CompanyProfile
}

// New loads the persisted collections and seeds a single default profile
// when none exists yet, so the profile set is never empty after init.
func New(kv storage.KV, log zerolog.Logger) (*Store, error) {
	s := &Store{kv: kv, log: log.With().Str("component", "store").Logger()}
	if err := load(kv, keyDocuments, &s.documents); err != nil {
		return nil, err
	}
	if err := load(kv, keyClients, &s.clients); err != nil {
		return nil, err
	}
	if err := load(kv, keyProfiles, &s.profiles); err != nil {
		return nil, err
	}
	if len(s.profiles) == 0 {
		s.profiles = []models.CompanyProfile{models.DefaultProfile()}
		if err := s.persist(keyProfiles, s.profiles); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func load(kv storage.KV, key string, dst any) error {
	raw, ok, err := kv.Load(key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// persist mirrors one collection to the KV. Errors (quota, I/O) surface to
// the caller instead of being swallowed; the in-memory state already holds
// the new value either way.
func (s *Store) persist(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Save(key, raw); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("write-through failed")
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// ---- Documents

// Documents returns a detached copy of the collection, newest first.
func (s *Store) Documents() []models.BillingDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDocuments(s.documents)
}

// Document looks a document up by id; ok is false when absent.
func (s *Store) Document(id string) (models.BillingDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.documents {
		if d.Id == id {
			return d.Clone(), true
		}
	}
	return models.BillingDocument{}, false
}

// UpsertDocument replaces a stored document in place, keeping its position,
// or prepends a new one.
func (s *Store) UpsertDocument(doc models.BillingDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc = doc.Clone()
	for i := range s.documents {
		if s.documents[i].Id == doc.Id {
			s.documents[i] = doc
			return s.persist(keyDocuments, s.documents)
		}
	}
	s.documents = append([]models.BillingDocument{doc}, s.documents...)
	return s.persist(keyDocuments, s.documents)
}

// DeleteDocuments removes every document whose id is in ids. Absent ids are
// ignored; deleting nothing skips the write entirely.
func (s *Store) DeleteDocuments(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.documents[:0]
	for _, d := range s.documents {
		if _, gone := drop[d.Id]; !gone {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(s.documents) {
		return nil
	}
	s.documents = kept
	return s.persist(keyDocuments, s.documents)
}

// FindDocuments filters by case-insensitive substring over the document
// number, the embedded client name and the subject. A blank query matches
// everything. Pure read, no mutation.
func (s *Store) FindDocuments(query string) []models.BillingDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return cloneDocuments(s.documents)
	}
	out := []models.BillingDocument{}
	for _, d := range s.documents {
		if strings.Contains(strings.ToLower(d.Number), q) ||
			strings.Contains(strings.ToLower(d.Client.Name), q) ||
			strings.Contains(strings.ToLower(d.Subject), q) {
			out = append(out, d.Clone())
		}
	}
	return out
}

// NextSequence returns the next free number suffix for the given type in the
// current year: one past the highest suffix already stored. Suffixes grow
// monotonically instead of being drawn at random, so freshly numbered
// documents cannot collide; the number itself stays editable before save.
func (s *Store) NextSequence(t models.DocumentType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := fmt.Sprintf("%s-%d-", t.Meta().Prefix, models.Today().Year())
	max := 0
	for _, d := range s.documents {
		if !strings.HasPrefix(d.Number, prefix) {
			continue
		}
		if n, err := strconv.Atoi(d.Number[len(prefix):]); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

func cloneDocuments(in []models.BillingDocument) []models.BillingDocument {
	out := make([]models.BillingDocument, len(in))
	for i, d := range in {
		out[i] = d.Clone()
	}
	return out
}

// ---- Clients

// Clients returns a detached copy of the client collection.
func (s *Store) Clients() []models.ClientInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ClientInfo, len(s.clients))
	for i, c := range s.clients {
		out[i] = c.Clone()
	}
	return out
}

// UpsertClient replaces in place or prepends, like documents. Embedded
// copies in existing documents are snapshots and stay untouched.
func (s *Store) UpsertClient(client models.ClientInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clients {
		if s.clients[i].Id == client.Id {
			s.clients[i] = client
			return s.persist(keyClients, s.clients)
		}
	}
	s.clients = append([]models.ClientInfo{client}, s.clients...)
	return s.persist(keyClients, s.clients)
}

// DeleteClient removes by id; an absent id is a no-op.
func (s *Store) DeleteClient(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clients {
		if s.clients[i].Id == id {
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			return s.persist(keyClients, s.clients)
		}
	}
	return nil
}

// ---- Profiles

// Profiles returns a detached copy of the profile collection.
func (s *Store) Profiles() []models.CompanyProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CompanyProfile, len(s.profiles))
	for i, p := range s.profiles {
		out[i] = p.Clone()
	}
	return out
}

// DefaultProfile returns the default issuer, falling back to the first
// profile when none is flagged.
func (s *Store) DefaultProfile() models.CompanyProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.IsDefault {
			return p.Clone()
		}
	}
	return s.profiles[0].Clone()
}

// AddProfile appends a profile built from the defaults with a fresh id. It
// becomes the default only when the collection was empty beforehand.
func (s *Store) AddProfile() (models.CompanyProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.NewProfile()
	p.IsDefault = len(s.profiles) == 0
	s.profiles = append(s.profiles, p)
	return p.Clone(), s.persist(keyProfiles, s.profiles)
}

// UpsertProfile replaces a profile in place or appends an unknown one at the
// end. The single-default invariant is preserved: a profile flagged default
// here clears the flag everywhere else.
func (s *Store) UpsertProfile(profile models.CompanyProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.profiles {
		if s.profiles[i].Id == profile.Id {
			s.profiles[i] = profile
			found = true
			break
		}
	}
	if !found {
		s.profiles = append(s.profiles, profile)
	}
	if profile.IsDefault {
		for i := range s.profiles {
			s.profiles[i].IsDefault = s.profiles[i].Id == profile.Id
		}
	}
	return s.persist(keyProfiles, s.profiles)
}

// SetDefaultProfile flags the matching profile as default and clears the
// flag on all others. An absent id is a no-op, keeping the invariant that
// exactly one default survives the call.
func (s *Store) SetDefaultProfile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, p := range s.profiles {
		if p.Id == id {
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	for i := range s.profiles {
		s.profiles[i].IsDefault = s.profiles[i].Id == id
	}
	return s.persist(keyProfiles, s.profiles)
}

// CanDeleteProfile is the guard the view checks before offering deletion.
func (s *Store) CanDeleteProfile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles) > 1
}

// DeleteProfile removes a profile. Deleting the last remaining profile is
// rejected with ErrLastProfile. When the deleted profile was the default,
// the first remaining profile in collection order is promoted, an
// arbitrary but deterministic tie-break.
func (s *Store) DeleteProfile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.profiles) <= 1 {
		return ErrLastProfile
	}
	idx := -1
	for i := range s.profiles {
		if s.profiles[i].Id == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	wasDefault := s.profiles[idx].IsDefault
	s.profiles = append(s.profiles[:idx], s.profiles[idx+1:]...)
	if wasDefault {
		s.profiles[0].IsDefault = true
	}
	return s.persist(keyProfiles, s.profiles)
}

// ---- Dashboard

// Stats is the dashboard summary: collection sizes plus invoiced revenue.
type Stats struct {
	Documents int     `json:"documents"`
	Clients   int     `json:"clients"`
	Revenue   float64 `json:"revenue"`
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Documents: len(s.documents),
		Clients:   len(s.clients),
		Revenue:   models.Revenue(s.documents),
	}
}
