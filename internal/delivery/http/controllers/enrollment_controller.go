package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"conferencehub/internal/delivery/http/helpers"
	"conferencehub/internal/delivery/http/middleware"
	"conferencehub/internal/domain"
)

var documentRegexp = regexp.MustCompile(`^\d{11}$`)

// UpsertEnrollmentRequest is the request body for POST /enrollments.
type UpsertEnrollmentRequest struct {
	Name         string `json:"name"`
	Document     string `json:"document"`
	Birthday     string `json:"birthday"`
	Phone        string `json:"phone"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	City         string `json:"city"`
	State        string `json:"state"`
	Neighborhood string `json:"neighborhood"`
	PostalCode   string `json:"postal_code"`
}

// Validate implements helpers.Validator.
func (u UpsertEnrollmentRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, "name is required")
	}
	if !documentRegexp.MatchString(u.Document) {
		errs = append(errs, "document must be exactly 11 digits")
	}
	if u.Birthday == "" {
		errs = append(errs, "birthday is required")
	} else if _, err := time.Parse("2006-01-02", u.Birthday); err != nil {
		errs = append(errs, "birthday must be YYYY-MM-DD")
	}
	if strings.TrimSpace(u.Phone) == "" {
		errs = append(errs, "phone is required")
	}
	return errs
}

type EnrollmentController struct {
	Logger  *slog.Logger
	Service domain.EnrollmentService
}

func NewEnrollmentController(logger *slog.Logger, svc domain.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{
		Logger:  logger,
		Service: svc,
	}
}

// Get godoc
// @Summary Get the caller's enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the enrollment"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /enrollments [get]
func (c *EnrollmentController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	enrollment, err := c.Service.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "enrollment not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, enrollment)
}

// Upsert godoc
// @Summary Create or update the caller's enrollment
// @Description Each user has at most one enrollment. Posting again overwrites the existing one in place.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpsertEnrollmentRequest true "Enrollment data"
// @Success 200 {object} helpers.APIResponse "data contains the enrollment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /enrollments [post]
func (c *EnrollmentController) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertEnrollmentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "birthday must be YYYY-MM-DD")
		return
	}

	enrollment := &domain.Enrollment{
		UserID:       userID,
		Name:         strings.TrimSpace(req.Name),
		Document:     req.Document,
		Birthday:     birthday,
		Phone:        strings.TrimSpace(req.Phone),
		Street:       strings.TrimSpace(req.Street),
		Number:       strings.TrimSpace(req.Number),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		Neighborhood: strings.TrimSpace(req.Neighborhood),
		PostalCode:   strings.TrimSpace(req.PostalCode),
	}
	if err := c.Service.Upsert(r.Context(), enrollment); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, enrollment)
}
