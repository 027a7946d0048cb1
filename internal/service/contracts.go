package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/licensedesk/revenue-api/internal/model"
	"github.com/licensedesk/revenue-api/internal/queue"
	"github.com/licensedesk/revenue-api/internal/repository"
)

// Contract duration and support-year bounds enforced at creation.
const (
	MinDurationDays = 3
	MaxDurationDays = 30
	MinSupportYears = 0
	MaxSupportYears = 3

	// SupportYearPriceGrosz is added to the base price per additional
	// support year (1000 PLN).
	SupportYearPriceGrosz int64 = 100_000
)

// Sentinel errors surfaced by the lifecycle engine. Handlers map them onto
// HTTP statuses; none of them are retried.
var (
	ErrInvalidDuration     = errors.New("contract duration must be between 3 and 30 days")
	ErrInvalidSupportYears = errors.New("additional support years must be between 0 and 3")
	ErrDuplicateContract   = errors.New("client already has an active contract for this software")
	ErrWindowClosed        = errors.New("payment window for this contract has closed")
	ErrFullyPaid           = errors.New("contract is already fully paid")
	ErrExceedsRemaining    = errors.New("payment amount exceeds remaining balance")
	ErrInvalidAmount       = errors.New("payment amount must be greater than 0")
)

// EventPublisher pushes contract lifecycle events to the broker. Publishing
// is best-effort: failures are logged and never fail the business
// operation.
type EventPublisher interface {
	PublishContractSigned(ctx context.Context, ev queue.ContractSignedEvent) error
	PublishContractExpired(ctx context.Context, ev queue.ContractExpiredEvent) error
}

// ContractService owns the contract state machine: creation with
// discounted pricing, payment acceptance with the signed transition, and
// the expiry sweep with refunds. Every mutation that touches more than one
// row runs in a single transaction on DB.
type ContractService struct {
	DB        *sql.DB
	Clients   *repository.ClientRepo
	Software  *repository.SoftwareRepo
	Contracts *repository.ContractRepo
	Pricing   *PricingService
	Events    EventPublisher // optional; nil disables publishing
}

// NewContractService wires a ContractService from its dependencies.
func NewContractService(db *sql.DB, clients *repository.ClientRepo, software *repository.SoftwareRepo, contracts *repository.ContractRepo, pricing *PricingService, events EventPublisher) *ContractService {
	return &ContractService{
		DB:        db,
		Clients:   clients,
		Software:  software,
		Contracts: contracts,
		Pricing:   pricing,
		Events:    events,
	}
}

// CreateContractInput carries the caller-supplied contract parameters.
type CreateContractInput struct {
	ClientID        uint64
	SoftwareID      uint64
	DurationDays    int
	SupportYears    int
	SoftwareVersion string
}

// CreateContract creates an open contract. The price is the software's
// upfront price plus 1000 PLN per support year, run through the discount
// resolver with the client's returning status. Fails when the client or
// software is missing or the client already holds an active contract for
// the software.
func (s *ContractService) CreateContract(ctx context.Context, in CreateContractInput) (model.Contract, error) {
	var c model.Contract
	if in.DurationDays < MinDurationDays || in.DurationDays > MaxDurationDays {
		return c, ErrInvalidDuration
	}
	if in.SupportYears < MinSupportYears || in.SupportYears > MaxSupportYears {
		return c, ErrInvalidSupportYears
	}

	clientExists, err := s.Clients.Exists(ctx, in.ClientID)
	if err != nil {
		return c, err
	}
	if !clientExists {
		return c, fmt.Errorf("client %d: %w", in.ClientID, repository.ErrNotFound)
	}
	sw, err := s.Software.GetByID(ctx, in.SoftwareID)
	if err != nil {
		return c, fmt.Errorf("software %d: %w", in.SoftwareID, err)
	}
	dup, err := s.Contracts.HasActiveForSoftware(ctx, in.ClientID, in.SoftwareID)
	if err != nil {
		return c, err
	}
	if dup {
		return c, ErrDuplicateContract
	}

	returning, err := s.Contracts.HasSignedContract(ctx, in.ClientID)
	if err != nil {
		return c, err
	}
	basePrice := sw.UpfrontPriceGrosz + int64(in.SupportYears)*SupportYearPriceGrosz
	finalPrice, err := s.Pricing.FinalPrice(ctx, basePrice, &in.SoftwareID, returning)
	if err != nil {
		return c, err
	}

	now := time.Now().UTC()
	c = model.Contract{
		ClientID:        in.ClientID,
		SoftwareID:      in.SoftwareID,
		StartDate:       now,
		EndDate:         now.AddDate(0, 0, in.DurationDays),
		PriceGrosz:      finalPrice,
		SoftwareVersion: in.SoftwareVersion,
		SupportYears:    in.SupportYears,
		CreatedAt:       now,
	}
	c.ID, err = s.Contracts.Create(ctx, &c)
	if err != nil {
		return c, err
	}
	return s.Contracts.GetByID(ctx, c.ID)
}

// PaymentDecision is the pure part of RecordPayment: given the contract
// state at the payment instant and the amount, it decides whether the
// payment is accepted and whether it completes the contract. Keeping the
// decision separate from the transaction makes the rule testable without a
// database.
func PaymentDecision(c *model.Contract, amountGrosz int64, now time.Time) (signs bool, err error) {
	if amountGrosz <= 0 {
		return false, ErrInvalidAmount
	}
	if !c.PaymentWindowOpen(now) {
		return false, ErrWindowClosed
	}
	if c.FullyPaid() {
		return false, ErrFullyPaid
	}
	if amountGrosz > c.RemainingGrosz() {
		return false, ErrExceedsRemaining
	}
	return c.TotalPaidGrosz()+amountGrosz >= c.PriceGrosz, nil
}

// RecordPayment appends a payment to an open contract and, when the
// cumulative non-refunded total reaches the price, marks it signed. The
// payment row and the signed flag are committed in one transaction; on any
// failure the whole operation rolls back. The contract row is locked for
// the duration so the remaining-balance check holds under concurrency.
func (s *ContractService) RecordPayment(ctx context.Context, contractID uint64, amountGrosz int64) (model.Contract, error) {
	var out model.Contract
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return out, err
	}
	defer func() { _ = tx.Rollback() }()

	c, err := s.Contracts.GetByIDTx(ctx, tx, contractID)
	if err != nil {
		return out, err
	}
	now := time.Now().UTC()
	signs, err := PaymentDecision(&c, amountGrosz, now)
	if err != nil {
		return out, err
	}

	p := model.Payment{ContractID: contractID, AmountGrosz: amountGrosz, PaymentDate: now}
	if err := s.Contracts.InsertPaymentTx(ctx, tx, &p); err != nil {
		return out, err
	}
	if signs {
		if err := s.Contracts.MarkSignedTx(ctx, tx, contractID); err != nil {
			return out, err
		}
	}
	if err := tx.Commit(); err != nil {
		return out, err
	}

	if signs && s.Events != nil {
		ev := queue.ContractSignedEvent{
			ContractID:     contractID,
			ClientID:       c.ClientID,
			SoftwareID:     c.SoftwareID,
			PriceGrosz:     c.PriceGrosz,
			TotalPaidGrosz: c.TotalPaidGrosz() + amountGrosz,
			SignedAt:       now.Format(time.RFC3339),
		}
		if err := s.Events.PublishContractSigned(ctx, ev); err != nil {
			log.Printf("contracts: publish signed event for %d failed: %v", contractID, err)
		}
	}
	return s.Contracts.GetByID(ctx, contractID)
}

// SweepExpired cancels every unsigned, non-cancelled contract past its end
// date and refunds all of its non-refunded payments. The whole batch runs
// in one transaction: a crash mid-sweep leaves either everything applied or
// nothing. Returns the number of contracts cancelled.
func (s *ContractService) SweepExpired(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	ids, err := s.Contracts.ExpiredOpenIDsTx(ctx, tx, now)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.Contracts.CancelWithRefundsTx(ctx, tx, id, now); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	if s.Events != nil {
		for _, id := range ids {
			ev := queue.ContractExpiredEvent{
				ContractID: id,
				ExpiredAt:  now.Format(time.RFC3339),
			}
			if err := s.Events.PublishContractExpired(ctx, ev); err != nil {
				log.Printf("contracts: publish expired event for %d failed: %v", id, err)
			}
		}
	}
	return len(ids), nil
}

// SoftDeleteIndividualClient scrubs and soft-deletes an individual client
// in a single transaction. It lives here rather than in the handler so the
// transaction boundary sits next to the other multi-row mutations.
func (s *ContractService) SoftDeleteIndividualClient(ctx context.Context, clientID uint64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.Clients.SoftDeleteIndividualTx(ctx, tx, clientID); err != nil {
		return err
	}
	return tx.Commit()
}
