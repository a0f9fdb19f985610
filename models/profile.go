package models

import (
	"strings"

	"github.com/google/uuid"
)

// CompanyProfile is an issuing identity of the operator, printed as the
// document emitter. Several profiles can coexist; at most one is the default.
type CompanyProfile struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	Address         string `json:"address"`
	ZipCode         string `json:"zip_code"`
	City            string `json:"city"`
	Country         string `json:"country"`
	TaxId           string `json:"tax_id"` // SIRET
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Website         string `json:"website,omitempty"`
	IBAN            string `json:"iban,omitempty"`
	BIC             string `json:"bic,omitempty"`
	ShowBankDetails bool   `json:"show_bank_details"`
	IsDefault       bool   `json:"is_default"`
}

// Clone returns a value copy safe to embed into a document.
func (p CompanyProfile) Clone() CompanyProfile {
	return p
}

// DefaultProfile is the issuer seeded on first start, used until the operator
// fills in their own identity.
func DefaultProfile() CompanyProfile {
	return CompanyProfile{
		Id:              "default-profile",
		Name:            "Ma Micro-Entreprise",
		Address:         "123 Rue de la Réussite",
		ZipCode:         "75001",
		City:            "Paris",
		Country:         "France",
		TaxId:           "123 456 789 00012",
		Email:           "contact@entreprise.fr",
		Phone:           "01 02 03 04 05",
		Website:         "www.ma-boite.fr",
		IBAN:            "FR76 1234 5678 9012 3456 7890 123",
		BIC:             "ABCDEF12XXX",
		ShowBankDetails: true,
		IsDefault:       true,
	}
}

// NewProfile returns a secondary profile built from the defaults.
func NewProfile() CompanyProfile {
	p := DefaultProfile()
	p.Id = uuid.NewString()
	p.Name = "Nouveau Profil"
	p.IsDefault = false
	return p
}

// IsValidProfile reports whether the profile can serve as a document issuer.
func IsValidProfile(p CompanyProfile) bool {
	return strings.TrimSpace(p.Name) != ""
}

// DefaultIsUnique reports whether at most one profile is flagged default.
func DefaultIsUnique(profiles []CompanyProfile) bool {
	n := 0
	for _, p := range profiles {
		if p.IsDefault {
			n++
		}
	}
	return n <= 1
}
