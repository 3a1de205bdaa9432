package http

import (
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"backoffice-api/internal/application"
	"backoffice-api/internal/domain"
	"backoffice-api/internal/ports"
)

const dateLayout = "2006-01-02"

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidInput, raw)
	}
	return t, nil
}

type ContractsHandler struct {
	service *application.ContractService
	logger  ports.Logger
}

func NewContractsHandler(service *application.ContractService, logger ports.Logger) *ContractsHandler {
	return &ContractsHandler{service: service, logger: logger}
}

type contractRequest struct {
	Position     string          `json:"position" validate:"required,max=120"`
	ContractType string          `json:"contractType" validate:"required,max=60"`
	StartDate    string          `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string          `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Status       string          `json:"status" validate:"omitempty,oneof=active terminated"`
	BasicSalary  *float64        `json:"basicSalary" validate:"omitempty,gte=0"`
	Allowances   json.RawMessage `json:"allowancesJson"`
}

type createContractRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	contractRequest
}

func (r contractRequest) input(employeeID string) (application.ContractInput, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return application.ContractInput{}, err
	}
	in := application.ContractInput{
		EmployeeID:   employeeID,
		Position:     r.Position,
		ContractType: r.ContractType,
		StartDate:    start,
		Status:       r.Status,
		BasicSalary:  r.BasicSalary,
		Allowances:   r.Allowances,
	}
	if r.EndDate != "" {
		end, err := parseDate(r.EndDate)
		if err != nil {
			return application.ContractInput{}, err
		}
		in.EndDate = &end
	}
	return in, nil
}

func (h *ContractsHandler) List(c echo.Context) error {
	filter := domain.ContractFilter{Status: c.QueryParam("status")}
	contracts, err := h.service.List(c.Request().Context(), principal(c), filter)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, contracts)
}

func (h *ContractsHandler) Get(c echo.Context) error {
	contract, err := h.service.Get(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, contract)
}

func (h *ContractsHandler) Create(c echo.Context) error {
	var req createContractRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, h.logger, err)
	}
	in, err := req.input(req.EmployeeID)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	contract, err := h.service.Create(c.Request().Context(), principal(c), in)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusCreated, contract)
}

func (h *ContractsHandler) Update(c echo.Context) error {
	var req contractRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, h.logger, err)
	}
	in, err := req.input("")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	contract, err := h.service.Update(c.Request().Context(), principal(c), c.Param("id"), in)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, contract)
}

type LeaveHandler struct {
	service *application.LeaveService
	logger  ports.Logger
}

func NewLeaveHandler(service *application.LeaveService, logger ports.Logger) *LeaveHandler {
	return &LeaveHandler{service: service, logger: logger}
}

func (h *LeaveHandler) Submit(c echo.Context) error {
	var req struct {
		StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
		EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
		Reason    string `json:"reason" validate:"max=500"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, h.logger, err)
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	leave, err := h.service.Submit(c.Request().Context(), principal(c), application.LeaveInput{
		StartDate: start, EndDate: end, Reason: req.Reason,
	})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusCreated, leave)
}

func (h *LeaveHandler) List(c echo.Context) error {
	leaves, err := h.service.List(c.Request().Context(), principal(c), domain.LeaveStatus(c.QueryParam("status")))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, leaves)
}

func (h *LeaveHandler) Decide(c echo.Context) error {
	var req struct {
		Status string `json:"status" validate:"required,oneof=approved rejected"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, h.logger, err)
	}
	leave, err := h.service.Decide(c.Request().Context(), principal(c), c.Param("id"), domain.LeaveStatus(req.Status))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, leave)
}

type PayrollHandler struct {
	service *application.SnapshotService
	logger  ports.Logger
}

func NewPayrollHandler(service *application.SnapshotService, logger ports.Logger) *PayrollHandler {
	return &PayrollHandler{service: service, logger: logger}
}

func (h *PayrollHandler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return handleError(c, h.logger, fmt.Errorf("%w: limit must be a number", domain.ErrInvalidInput))
		}
		limit = n
	}
	snapshots, err := h.service.List(c.Request().Context(), limit)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, snapshots)
}

// Run computes the snapshot for the requested day, today when the body is
// empty or omits the date.
func (h *PayrollHandler) Run(c echo.Context) error {
	var req struct {
		Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	}
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return handleError(c, h.logger, err)
		}
	}
	var date time.Time
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			return handleError(c, h.logger, err)
		}
		date = d
	}
	snapshot, err := h.service.Run(c.Request().Context(), date)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusCreated, snapshot)
}
