package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/licensedesk/revenue-api/internal/repository"
	"github.com/licensedesk/revenue-api/internal/service"
)

// validCurrencies is the fixed allow-list of ISO codes revenue may be
// requested in.
var validCurrencies = map[string]bool{
	"PLN": true, "USD": true, "EUR": true, "GBP": true, "CHF": true,
	"JPY": true, "CAD": true, "AUD": true, "SEK": true, "NOK": true,
	"DKK": true, "CZK": true, "HUF": true,
}

// ValidCurrency reports whether the (upper-cased) code is on the
// allow-list.
func ValidCurrency(code string) bool { return validCurrencies[code] }

// RevenueHandler computes the recognized and predicted revenue figures.
type RevenueHandler struct {
	Revenue  *service.RevenueService
	Software *repository.SoftwareRepo
}

func NewRevenueHandler(r *service.RevenueService, s *repository.SoftwareRepo) *RevenueHandler {
	return &RevenueHandler{Revenue: r, Software: s}
}

type revenueCalcReq struct {
	SoftwareID *uint64 `json:"software_id"`
	Currency   string  `json:"currency"`
}

type revenueCalcResp struct {
	CurrentRevenueGrosz   int64   `json:"current_revenue_grosz"`
	PredictedRevenueGrosz int64   `json:"predicted_revenue_grosz"`
	Currency              string  `json:"currency"`
	SoftwareID            *uint64 `json:"software_id,omitempty"`
	SoftwareName          *string `json:"software_name,omitempty"`
}

// revenueQuery parses and validates the shared softwareId/currency inputs.
// It returns ok=false after writing the error response.
func (h *RevenueHandler) revenueQuery(c echo.Context, ctx context.Context, rawSoftwareID, rawCurrency string) (softwareID *uint64, currency string, ok bool, err error) {
	currency = "PLN"
	if rawCurrency != "" {
		currency = strings.ToUpper(strings.TrimSpace(rawCurrency))
		if !ValidCurrency(currency) {
			return nil, "", false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid currency code: " + rawCurrency})
		}
	}
	if rawSoftwareID != "" {
		id, perr := strconv.ParseUint(rawSoftwareID, 10, 64)
		if perr != nil || id == 0 {
			return nil, "", false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid software id"})
		}
		exists, qerr := h.Software.Exists(ctx, id)
		if qerr != nil {
			return nil, "", false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if !exists {
			return nil, "", false, c.JSON(http.StatusNotFound, echo.Map{"error": "software not found"})
		}
		softwareID = &id
	}
	return softwareID, currency, true, nil
}

// Current returns the recognized revenue, optionally filtered by software
// and converted into another allow-listed currency.
func (h *RevenueHandler) Current(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	softwareID, currency, ok, err := h.revenueQuery(c, ctx, c.QueryParam("softwareId"), c.QueryParam("currency"))
	if !ok {
		return err
	}
	revenue, err := h.Revenue.Current(ctx, softwareID, currency)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"revenue_grosz": revenue,
		"currency":      currency,
		"calculated_at": time.Now().UTC(),
		"software_id":   softwareID,
	})
}

// Predicted returns recognized revenue plus the face value of open
// contracts, same filters as Current.
func (h *RevenueHandler) Predicted(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	softwareID, currency, ok, err := h.revenueQuery(c, ctx, c.QueryParam("softwareId"), c.QueryParam("currency"))
	if !ok {
		return err
	}
	revenue, err := h.Revenue.Predicted(ctx, softwareID, currency)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"revenue_grosz": revenue,
		"currency":      currency,
		"calculated_at": time.Now().UTC(),
		"software_id":   softwareID,
	})
}

// Calculate returns both figures in one response.
func (h *RevenueHandler) Calculate(c echo.Context) error {
	var req revenueCalcReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	rawID := ""
	if req.SoftwareID != nil {
		rawID = strconv.FormatUint(*req.SoftwareID, 10)
	}
	softwareID, currency, ok, err := h.revenueQuery(c, ctx, rawID, req.Currency)
	if !ok {
		return err
	}

	current, err := h.Revenue.Current(ctx, softwareID, currency)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	predicted, err := h.Revenue.Predicted(ctx, softwareID, currency)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	resp := revenueCalcResp{
		CurrentRevenueGrosz:   current,
		PredictedRevenueGrosz: predicted,
		Currency:              currency,
		SoftwareID:            softwareID,
	}
	if softwareID != nil {
		if sw, err := h.Software.GetByID(ctx, *softwareID); err == nil {
			resp.SoftwareName = &sw.Name
		}
	}
	return c.JSON(http.StatusOK, resp)
}
