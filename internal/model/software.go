package model

// Software is the sellable catalog entry contracts refer to. Rows are
// immutable reference data: contracts snapshot the version label at
// creation time so later catalog updates do not rewrite history.
//
// Fields:
//  ID                – primary key identifier.
//  Name              – product name.
//  Description       – free-form description.
//  CurrentVersion    – current version label offered for new contracts.
//  Category          – product category (e.g. finance, education).
//  UpfrontPriceGrosz – flat upfront price in grosz (1/100 PLN).
type Software struct {
	ID                uint64 // software.id
	Name              string // software.name
	Description       string // software.description
	CurrentVersion    string // software.current_version
	Category          string // software.category
	UpfrontPriceGrosz int64  // software.upfront_price_grosz
}
