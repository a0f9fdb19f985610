package models

import "github.com/google/uuid"

type ClientKind string

const (
	ClientIndividual ClientKind = "individual"
	ClientBusiness   ClientKind = "business"
)

// ClientInfo is a billing recipient. Names are not unique across clients; the
// id is the only stable identity.
type ClientInfo struct {
	Id      string     `json:"id"`
	Kind    ClientKind `json:"kind"`
	Name    string     `json:"name"`
	Address string     `json:"address"`
	ZipCode string     `json:"zip_code"`
	City    string     `json:"city"`
	Country string     `json:"country"`
	Email   string     `json:"email"`
	Phone   string     `json:"phone"`
	// TaxId carries the SIRET of business clients; empty for individuals.
	TaxId string `json:"tax_id,omitempty"`
}

// Clone returns a value copy safe to embed into a document. Documents keep
// snapshots, never live references, so issued paperwork stays stable when the
// client record is edited later.
func (c ClientInfo) Clone() ClientInfo {
	return c
}

// NewClient returns a blank individual client with a fresh id.
func NewClient() ClientInfo {
	return ClientInfo{
		Id:      uuid.NewString(),
		Kind:    ClientIndividual,
		Country: "France",
	}
}
