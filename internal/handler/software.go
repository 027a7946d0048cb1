package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/licensedesk/revenue-api/internal/model"
	"github.com/licensedesk/revenue-api/internal/repository"
)

// SoftwareHandler exposes the read-only software catalog.
type SoftwareHandler struct {
	Software *repository.SoftwareRepo
}

func NewSoftwareHandler(s *repository.SoftwareRepo) *SoftwareHandler {
	return &SoftwareHandler{Software: s}
}

type softwareResp struct {
	ID                uint64 `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	CurrentVersion    string `json:"current_version"`
	Category          string `json:"category"`
	UpfrontPriceGrosz int64  `json:"upfront_price_grosz"`
}

func softwareToResp(s model.Software) softwareResp {
	return softwareResp{
		ID:                s.ID,
		Name:              s.Name,
		Description:       s.Description,
		CurrentVersion:    s.CurrentVersion,
		Category:          s.Category,
		UpfrontPriceGrosz: s.UpfrontPriceGrosz,
	}
}

// List returns the whole catalog.
func (h *SoftwareHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Software.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]softwareResp, 0, len(items))
	for _, s := range items {
		out = append(out, softwareToResp(s))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one catalog entry by id.
func (h *SoftwareHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid software id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Software.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "software not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, softwareToResp(s))
}
