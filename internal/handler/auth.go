package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/licensedesk/revenue-api/internal/model"
	"github.com/licensedesk/revenue-api/internal/repository"
	"github.com/licensedesk/revenue-api/internal/utils"
)

// AuthHandler bundles dependencies for the login and employee lookup
// endpoints.
type AuthHandler struct {
	Employees *repository.EmployeeRepo
}

func NewAuthHandler(e *repository.EmployeeRepo) *AuthHandler {
	return &AuthHandler{Employees: e}
}

// ----- DTOs -----

type loginReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type employeePart struct {
	ID        uint64 `json:"id"`
	Login     string `json:"login"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type loginResp struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Employee *employeePart `json:"employee,omitempty"`
}

func employeeToPart(e model.Employee) *employeePart {
	return &employeePart{
		ID:        e.ID,
		Login:     e.Login,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Role:      e.Role,
	}
}

// Login verifies credentials and returns a success flag plus the employee
// summary. Authentication itself stays per-request Basic auth; this
// endpoint only lets clients check credentials up front, so bad
// credentials yield success=false rather than 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	employee, err := h.Employees.GetByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, loginResp{Success: false, Message: "Invalid login credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(employee.PasswordHash, req.Password) {
		return c.JSON(http.StatusOK, loginResp{Success: false, Message: "Invalid login credentials"})
	}

	return c.JSON(http.StatusOK, loginResp{
		Success:  true,
		Message:  "Login successful",
		Employee: employeeToPart(employee),
	})
}

// Validate returns the employee summary for a login, 404 when unknown.
func (h *AuthHandler) Validate(c echo.Context) error {
	login := c.Param("login")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	employee, err := h.Employees.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, employeeToPart(employee))
}
