package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/licensedesk/revenue-api/internal/model"
	"github.com/licensedesk/revenue-api/internal/repository"
	"github.com/licensedesk/revenue-api/internal/service"
)

var (
	peselPattern = regexp.MustCompile(`^\d{11}$`)
	krsPattern   = regexp.MustCompile(`^\d{10}$`)
)

// ClientHandler serves the client directory: listing, lookup, creation of
// both variants, admin updates and the individual soft delete.
type ClientHandler struct {
	Clients   *repository.ClientRepo
	Lifecycle *service.ContractService // owns the soft-delete transaction
}

func NewClientHandler(clients *repository.ClientRepo, lifecycle *service.ContractService) *ClientHandler {
	return &ClientHandler{Clients: clients, Lifecycle: lifecycle}
}

// ----- DTOs -----

type createIndividualReq struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PESEL       string `json:"pesel"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type createCompanyReq struct {
	CompanyName string `json:"company_name"`
	KRS         string `json:"krs"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type updateIndividualReq struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type updateCompanyReq struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type clientResp struct {
	ID          uint64    `json:"id"`
	ClientType  string    `json:"client_type"`
	Address     string    `json:"address"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`

	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	PESEL     string `json:"pesel,omitempty"`

	CompanyName string `json:"company_name,omitempty"`
	KRS         string `json:"krs,omitempty"`
}

func clientToResp(c model.Client) clientResp {
	resp := clientResp{
		ID:          c.ID,
		ClientType:  string(c.Type),
		Address:     c.Address,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		CreatedAt:   c.CreatedAt,
	}
	switch c.Type {
	case model.ClientIndividual:
		resp.FirstName = c.FirstName
		resp.LastName = c.LastName
		resp.PESEL = c.PESEL
	case model.ClientCompany:
		resp.CompanyName = c.CompanyName
		resp.KRS = c.KRS
	}
	return resp
}

func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1
}

func paramID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// List returns all non-deleted clients.
func (h *ClientHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	clients, err := h.Clients.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]clientResp, 0, len(clients))
	for _, cl := range clients {
		out = append(out, clientToResp(cl))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one non-deleted client by id.
func (h *ClientHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	client, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, clientToResp(client))
}

// CreateIndividual registers a natural-person client. Duplicate PESELs
// among non-deleted clients are rejected.
func (h *ClientHandler) CreateIndividual(c echo.Context) error {
	var req createIndividualReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.FirstName == "" || req.LastName == "" || req.Address == "" || req.PhoneNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name, last_name, address and phone_number are required"})
	}
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if !peselPattern.MatchString(req.PESEL) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "PESEL must be exactly 11 digits"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	client := model.Client{
		Type:        model.ClientIndividual,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PESEL:       req.PESEL,
		Address:     req.Address,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	id, err := h.Clients.CreateIndividual(ctx, &client)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "individual client with this PESEL already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create client failed"})
	}
	created, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, clientToResp(created))
}

// CreateCompany registers a company client. Duplicate KRS numbers among
// non-deleted clients are rejected.
func (h *ClientHandler) CreateCompany(c echo.Context) error {
	var req createCompanyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CompanyName == "" || req.Address == "" || req.PhoneNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company_name, address and phone_number are required"})
	}
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if !krsPattern.MatchString(req.KRS) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "KRS must be exactly 10 digits"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	client := model.Client{
		Type:        model.ClientCompany,
		CompanyName: req.CompanyName,
		KRS:         req.KRS,
		Address:     req.Address,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	id, err := h.Clients.CreateCompany(ctx, &client)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "company client with this KRS already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create client failed"})
	}
	created, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, clientToResp(created))
}

// UpdateIndividual overwrites the mutable fields of an individual client.
// Admin only (enforced by the router).
func (h *ClientHandler) UpdateIndividual(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	var req updateIndividualReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.FirstName == "" || req.LastName == "" || req.Address == "" || req.PhoneNumber == "" || !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all fields are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	update := model.Client{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Address:     req.Address,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	if err := h.Clients.UpdateIndividual(ctx, id, &update); err != nil {
		return clientMutationError(c, err)
	}
	updated, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, clientToResp(updated))
}

// UpdateCompany overwrites the mutable fields of a company client. Admin
// only (enforced by the router).
func (h *ClientHandler) UpdateCompany(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	var req updateCompanyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CompanyName == "" || req.Address == "" || req.PhoneNumber == "" || !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all fields are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	update := model.Client{
		CompanyName: req.CompanyName,
		Address:     req.Address,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	if err := h.Clients.UpdateCompany(ctx, id, &update); err != nil {
		return clientMutationError(c, err)
	}
	updated, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, clientToResp(updated))
}

// Delete soft-deletes an individual client: the PII is scrubbed and the
// row flagged, never removed. Company clients cannot be deleted. Admin
// only (enforced by the router).
func (h *ClientHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Lifecycle.SoftDeleteIndividualClient(ctx, id); err != nil {
		return clientMutationError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func clientMutationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	case errors.Is(err, repository.ErrWrongClientType):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client is of a different type"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
	}
}
