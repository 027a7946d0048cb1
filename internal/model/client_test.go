package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientScrub(t *testing.T) {
	c := Client{
		ID:          7,
		Type:        ClientIndividual,
		FirstName:   "Anna",
		LastName:    "Nowak",
		Address:     "ul. Polna 1, Warszawa",
		Email:       "anna@example.com",
		PhoneNumber: "600700800",
		PESEL:       "85010112345",
	}
	c.Scrub()

	assert.True(t, c.IsDeleted)
	assert.Equal(t, ScrubbedText, c.FirstName)
	assert.Equal(t, ScrubbedText, c.LastName)
	assert.Equal(t, ScrubbedText, c.Address)
	assert.Equal(t, ScrubbedEmail, c.Email)
	assert.Equal(t, ScrubbedPhone, c.PhoneNumber)
	assert.Equal(t, ScrubbedPESEL, c.PESEL)
	assert.Equal(t, uint64(7), c.ID, "identifier survives the scrub")
}

func TestClientScrubIgnoresCompanies(t *testing.T) {
	c := Client{ID: 8, Type: ClientCompany, CompanyName: "Acme sp. z o.o.", KRS: "0000123456"}
	c.Scrub()

	assert.False(t, c.IsDeleted)
	assert.Equal(t, "Acme sp. z o.o.", c.CompanyName)
}

func TestClientDisplayName(t *testing.T) {
	ind := Client{Type: ClientIndividual, FirstName: "Jan", LastName: "Kowalski"}
	assert.Equal(t, "Jan Kowalski", ind.DisplayName())

	co := Client{Type: ClientCompany, CompanyName: "Acme sp. z o.o."}
	assert.Equal(t, "Acme sp. z o.o.", co.DisplayName())
}
