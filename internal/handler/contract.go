package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/licensedesk/revenue-api/internal/model"
	"github.com/licensedesk/revenue-api/internal/repository"
	"github.com/licensedesk/revenue-api/internal/service"
)

// ContractHandler serves contract creation, lookup, payment recording and
// the expiry sweep trigger. All state transitions run through the
// lifecycle service; the handler only binds, validates ids and shapes
// responses.
type ContractHandler struct {
	Lifecycle *service.ContractService
	Contracts *repository.ContractRepo
	Clients   *repository.ClientRepo
	Software  *repository.SoftwareRepo
}

func NewContractHandler(lifecycle *service.ContractService, contracts *repository.ContractRepo, clients *repository.ClientRepo, software *repository.SoftwareRepo) *ContractHandler {
	return &ContractHandler{
		Lifecycle: lifecycle,
		Contracts: contracts,
		Clients:   clients,
		Software:  software,
	}
}

// ----- DTOs -----

type createContractReq struct {
	ClientID        uint64 `json:"client_id"`
	SoftwareID      uint64 `json:"software_id"`
	DurationDays    int    `json:"duration_days"`
	SupportYears    int    `json:"support_years"`
	SoftwareVersion string `json:"software_version"`
}

type paymentReq struct {
	AmountGrosz int64 `json:"amount_grosz"`
}

type paymentResp struct {
	ID          uint64     `json:"id"`
	AmountGrosz int64      `json:"amount_grosz"`
	PaymentDate time.Time  `json:"payment_date"`
	IsRefunded  bool       `json:"is_refunded"`
	RefundDate  *time.Time `json:"refund_date,omitempty"`
}

type clientSummary struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ClientType string `json:"client_type"`
}

type softwareSummary struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	CurrentVersion string `json:"current_version"`
	Category       string `json:"category"`
}

type contractResp struct {
	ID                uint64          `json:"id"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
	PriceGrosz        int64           `json:"price_grosz"`
	SoftwareVersion   string          `json:"software_version"`
	SupportYears      int             `json:"support_years"`
	IsSigned          bool            `json:"is_signed"`
	IsCancelled       bool            `json:"is_cancelled"`
	CreatedAt         time.Time       `json:"created_at"`
	TotalPaidGrosz    int64           `json:"total_paid_grosz"`
	RemainingGrosz    int64           `json:"remaining_grosz"`
	PaymentWindowOpen bool            `json:"payment_window_open"`
	Client            clientSummary   `json:"client"`
	Software          softwareSummary `json:"software"`
	Payments          []paymentResp   `json:"payments"`
}

// contractToResp loads the client (deleted rows included, for history) and
// software summaries and flattens the contract with its derived fields.
func (h *ContractHandler) contractToResp(ctx context.Context, contract model.Contract) (contractResp, error) {
	client, err := h.Clients.GetByIDAnyState(ctx, contract.ClientID)
	if err != nil {
		return contractResp{}, err
	}
	sw, err := h.Software.GetByID(ctx, contract.SoftwareID)
	if err != nil {
		return contractResp{}, err
	}

	payments := make([]paymentResp, 0, len(contract.Payments))
	for _, p := range contract.Payments {
		payments = append(payments, paymentResp{
			ID:          p.ID,
			AmountGrosz: p.AmountGrosz,
			PaymentDate: p.PaymentDate,
			IsRefunded:  p.IsRefunded,
			RefundDate:  p.RefundDate,
		})
	}
	return contractResp{
		ID:                contract.ID,
		StartDate:         contract.StartDate,
		EndDate:           contract.EndDate,
		PriceGrosz:        contract.PriceGrosz,
		SoftwareVersion:   contract.SoftwareVersion,
		SupportYears:      contract.SupportYears,
		IsSigned:          contract.IsSigned,
		IsCancelled:       contract.IsCancelled,
		CreatedAt:         contract.CreatedAt,
		TotalPaidGrosz:    contract.TotalPaidGrosz(),
		RemainingGrosz:    contract.RemainingGrosz(),
		PaymentWindowOpen: contract.PaymentWindowOpen(time.Now().UTC()),
		Client: clientSummary{
			ID:         client.ID,
			Name:       client.DisplayName(),
			Email:      client.Email,
			ClientType: string(client.Type),
		},
		Software: softwareSummary{
			ID:             sw.ID,
			Name:           sw.Name,
			CurrentVersion: sw.CurrentVersion,
			Category:       sw.Category,
		},
		Payments: payments,
	}, nil
}

// Create opens a new contract for a client and software product.
func (h *ContractHandler) Create(c echo.Context) error {
	var req createContractReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ClientID == 0 || req.SoftwareID == 0 || req.SoftwareVersion == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id, software_id and software_version are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	contract, err := h.Lifecycle.CreateContract(ctx, service.CreateContractInput{
		ClientID:        req.ClientID,
		SoftwareID:      req.SoftwareID,
		DurationDays:    req.DurationDays,
		SupportYears:    req.SupportYears,
		SoftwareVersion: req.SoftwareVersion,
	})
	if err != nil {
		return contractError(c, err)
	}
	resp, err := h.contractToResp(ctx, contract)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, resp)
}

// Get returns one contract with its payments.
func (h *ContractHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contract id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	contract, err := h.Contracts.GetByID(ctx, id)
	if err != nil {
		return contractError(c, err)
	}
	resp, err := h.contractToResp(ctx, contract)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// ListByClient returns all contracts held by a client, newest first.
func (h *ContractHandler) ListByClient(c echo.Context) error {
	clientID, ok := paramID(c, "clientId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	exists, err := h.Clients.Exists(ctx, clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}

	contracts, err := h.Contracts.ListByClient(ctx, clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]contractResp, 0, len(contracts))
	for _, contract := range contracts {
		resp, err := h.contractToResp(ctx, contract)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}

// RecordPayment records an installment against a contract. The amount,
// window and balance checks all live inside the lifecycle service's
// transaction.
func (h *ContractHandler) RecordPayment(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contract id"})
	}
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	contract, err := h.Lifecycle.RecordPayment(ctx, id, req.AmountGrosz)
	if err != nil {
		return contractError(c, err)
	}
	resp, err := h.contractToResp(ctx, contract)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// CancelExpired runs the expiry sweep: every open contract past its end
// date is cancelled and its payments refunded, atomically.
func (h *ContractHandler) CancelExpired(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	n, err := h.Lifecycle.SweepExpired(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":             "expired contracts have been cancelled and payments refunded",
		"cancelled_contracts": n,
	})
}

func contractError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateContract):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidSupportYears),
		errors.Is(err, service.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrWindowClosed),
		errors.Is(err, service.ErrFullyPaid),
		errors.Is(err, service.ErrExceedsRemaining):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
	}
}
