// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// ContractSignedEvent is published when cumulative payments reach a
// contract's price and it transitions to signed. It carries enough context
// for downstream consumers to log or reconcile without querying the
// primary database.
type ContractSignedEvent struct {
	ContractID     uint64 `json:"contract_id"`
	ClientID       uint64 `json:"client_id"`
	SoftwareID     uint64 `json:"software_id"`
	PriceGrosz     int64  `json:"price_grosz"`
	TotalPaidGrosz int64  `json:"total_paid_grosz"`
	SignedAt       string `json:"signed_at"`
}

// ContractExpiredEvent is published for each contract the expiry sweep
// cancels. Payments under the contract are already refunded when the event
// goes out.
type ContractExpiredEvent struct {
	ContractID uint64 `json:"contract_id"`
	ExpiredAt  string `json:"expired_at"`
}
