package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/licensedesk/revenue-api/internal/model"
	"github.com/licensedesk/revenue-api/internal/repository"
)

// DiscountHandler lists promotional discounts and lets admins create new
// ones.
type DiscountHandler struct {
	Discounts *repository.DiscountRepo
}

func NewDiscountHandler(d *repository.DiscountRepo) *DiscountHandler {
	return &DiscountHandler{Discounts: d}
}

type createDiscountReq struct {
	Name       string    `json:"name"`
	Percentage float64   `json:"percentage"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	SoftwareID *uint64   `json:"software_id"`
}

type discountResp struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Percentage float64   `json:"percentage"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	SoftwareID *uint64   `json:"software_id,omitempty"`
	Active     bool      `json:"active"`
}

func discountToResp(d model.Discount, now time.Time) discountResp {
	return discountResp{
		ID:         d.ID,
		Name:       d.Name,
		Percentage: d.Percentage,
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		SoftwareID: d.SoftwareID,
		Active:     d.ActiveAt(now),
	}
}

// List returns every discount with an activity flag for the current
// instant.
func (h *DiscountHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	discounts, err := h.Discounts.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	now := time.Now().UTC()
	out := make([]discountResp, 0, len(discounts))
	for _, d := range discounts {
		out = append(out, discountToResp(d, now))
	}
	return c.JSON(http.StatusOK, out)
}

// Create registers a new discount. Admin only (enforced by the router).
func (h *DiscountHandler) Create(c echo.Context) error {
	var req createDiscountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Percentage < 0.01 || req.Percentage > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "percentage must be between 0.01 and 100"})
	}
	if req.EndDate.Before(req.StartDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must not precede start_date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d := model.Discount{
		Name:       req.Name,
		Percentage: req.Percentage,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		SoftwareID: req.SoftwareID,
	}
	id, err := h.Discounts.Create(ctx, &d)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create discount failed"})
	}
	d.ID = id
	return c.JSON(http.StatusCreated, discountToResp(d, time.Now().UTC()))
}
