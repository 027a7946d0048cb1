package model

import "time"

// ClientType distinguishes the two concrete client variants stored in the
// `clients` table. Exactly one variant applies to a row; the variant tag
// decides which of the type-specific columns carry data.
type ClientType string

const (
	ClientIndividual ClientType = "INDIVIDUAL" // natural person identified by PESEL
	ClientCompany    ClientType = "COMPANY"    // legal entity identified by KRS
)

// Sentinel values written over an individual client's PII when the row is
// soft deleted. The row itself stays addressable so historical contracts
// keep their join target.
const (
	ScrubbedText  = "DELETED"
	ScrubbedEmail = "deleted@deleted.com"
	ScrubbedPhone = "000000000"
	ScrubbedPESEL = "00000000000"
)

// Client is a closed tagged union over the individual and company variants.
// The base columns are shared; FirstName/LastName/PESEL are meaningful only
// when Type is ClientIndividual, CompanyName/KRS only when Type is
// ClientCompany.
//
// Fields:
//  ID          – primary key identifier.
//  Type        – variant tag (INDIVIDUAL or COMPANY).
//  Address     – postal address.
//  Email       – contact email.
//  PhoneNumber – contact phone.
//  IsDeleted   – soft-delete flag; deleted rows are excluded from actives.
//  CreatedAt   – creation timestamp.
type Client struct {
	ID          uint64     // clients.id
	Type        ClientType // clients.client_type
	Address     string     // clients.address
	Email       string     // clients.email
	PhoneNumber string     // clients.phone_number
	IsDeleted   bool       // clients.is_deleted
	CreatedAt   time.Time  // clients.created_at

	FirstName string // clients.first_name (individual only)
	LastName  string // clients.last_name (individual only)
	PESEL     string // clients.pesel (individual only)

	CompanyName string // clients.company_name (company only)
	KRS         string // clients.krs (company only)
}

// DisplayName returns the human-readable name for either variant.
func (c *Client) DisplayName() string {
	if c.Type == ClientCompany {
		return c.CompanyName
	}
	return c.FirstName + " " + c.LastName
}

// Scrub overwrites the PII of an individual client with sentinel values and
// marks the row deleted. It does nothing for company clients, which are not
// deletable.
func (c *Client) Scrub() {
	if c.Type != ClientIndividual {
		return
	}
	c.IsDeleted = true
	c.FirstName = ScrubbedText
	c.LastName = ScrubbedText
	c.Address = ScrubbedText
	c.Email = ScrubbedEmail
	c.PhoneNumber = ScrubbedPhone
	c.PESEL = ScrubbedPESEL
}
