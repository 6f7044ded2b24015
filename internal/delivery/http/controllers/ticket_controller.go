package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"conferencehub/internal/delivery/http/helpers"
	"conferencehub/internal/delivery/http/middleware"
	"conferencehub/internal/domain"
)

var cardDigitsRegexp = regexp.MustCompile(`^\d{4}$`)

// ReserveTicketRequest is the request body for POST /tickets.
type ReserveTicketRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
}

// Validate implements helpers.Validator.
func (t ReserveTicketRequest) Validate() []string {
	if t.TicketTypeID == "" {
		return []string{"ticket_type_id is required"}
	}
	if !uuidRegexp.MatchString(t.TicketTypeID) {
		return []string{"invalid ticket_type_id"}
	}
	return nil
}

// PayTicketRequest is the request body for POST /tickets/{ticketID}/payments.
type PayTicketRequest struct {
	CardIssuer     string `json:"card_issuer"`
	CardLastDigits string `json:"card_last_digits"`
}

// Validate implements helpers.Validator.
func (p PayTicketRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(p.CardIssuer) == "" {
		errs = append(errs, "card_issuer is required")
	}
	if !cardDigitsRegexp.MatchString(p.CardLastDigits) {
		errs = append(errs, "card_last_digits must be exactly 4 digits")
	}
	return errs
}

type TicketController struct {
	Logger  *slog.Logger
	Service domain.TicketService
}

func NewTicketController(logger *slog.Logger, svc domain.TicketService) *TicketController {
	return &TicketController{
		Logger:  logger,
		Service: svc,
	}
}

// ListTypes godoc
// @Summary List ticket types
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the ticket types"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/types [get]
func (c *TicketController) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := c.Service.ListTypes(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, types)
}

// Reserve godoc
// @Summary Reserve a ticket
// @Description Create a RESERVED ticket of the given type for the caller's enrollment.
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReserveTicketRequest true "Ticket type to reserve"
// @Success 201 {object} helpers.APIResponse "data contains the reserved ticket"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets [post]
func (c *TicketController) Reserve(w http.ResponseWriter, r *http.Request) {
	var req ReserveTicketRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	ticket, err := c.Service.Reserve(r.Context(), userID, req.TicketTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "ticket type not found")
			return
		}
		if errors.Is(err, domain.ErrIneligible) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, ticket)
}

// Get godoc
// @Summary Get the caller's ticket
// @Description Returns the caller's ticket with its type joined.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the ticket"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets [get]
func (c *TicketController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	ticket, err := c.Service.GetByUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "ticket not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// Pay godoc
// @Summary Pay for a ticket
// @Description Record a payment for the caller's own ticket and flip it to PAID.
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ticketID path string true "Ticket ID (UUID)"
// @Param body body PayTicketRequest true "Card details"
// @Success 201 {object} helpers.APIResponse "data contains the payment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/{ticketID}/payments [post]
func (c *TicketController) Pay(w http.ResponseWriter, r *http.Request) {
	ticketID := r.PathValue("ticketID")
	if !uuidRegexp.MatchString(ticketID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ticketID")
		return
	}

	var req PayTicketRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	payment, err := c.Service.Pay(r.Context(), userID, ticketID, strings.TrimSpace(req.CardIssuer), req.CardLastDigits)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "ticket not found")
			return
		}
		if errors.Is(err, domain.ErrIneligible) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, payment)
}

// GetPayment godoc
// @Summary Get the payment for a ticket
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param ticketID path string true "Ticket ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the payment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/{ticketID}/payments [get]
func (c *TicketController) GetPayment(w http.ResponseWriter, r *http.Request) {
	ticketID := r.PathValue("ticketID")
	if !uuidRegexp.MatchString(ticketID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ticketID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	payment, err := c.Service.GetPayment(r.Context(), userID, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "payment not found")
			return
		}
		if errors.Is(err, domain.ErrIneligible) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, payment)
}
