package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"conferencehub/internal/delivery/http/helpers"
	"conferencehub/internal/delivery/http/middleware"
	"conferencehub/internal/domain"
)

// uuidRegexp matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegexp = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// dayLayout is the wire format for schedule days.
const dayLayout = "2006-01-02"

type ActivityController struct {
	Logger  *slog.Logger
	Service domain.ActivityService
}

func NewActivityController(logger *slog.Logger, svc domain.ActivityService) *ActivityController {
	return &ActivityController{
		Logger:  logger,
		Service: svc,
	}
}

// SubscribeRequest is the request body for POST /activities/subscription.
type SubscribeRequest struct {
	ActivityID string `json:"activity_id"`
}

// Validate implements helpers.Validator.
func (s SubscribeRequest) Validate() []string {
	if s.ActivityID == "" {
		return []string{"activity_id is required"}
	}
	if !uuidRegexp.MatchString(s.ActivityID) {
		return []string{"invalid activity_id"}
	}
	return nil
}

// GetDays godoc
// @Summary List days with scheduled activities
// @Description Returns the distinct days (YYYY-MM-DD, ascending) that have at least one activity.
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the list of days"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities [get]
func (c *ActivityController) GetDays(w http.ResponseWriter, r *http.Request) {
	days, err := c.Service.GetDays(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(dayLayout))
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

// GetDaySchedule godoc
// @Summary Get the schedule for one day
// @Description Returns every location with its activities for the given day, activities ordered by start time.
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param date path string true "Day (YYYY-MM-DD)"
// @Success 200 {object} helpers.APIResponse "data contains locations with activities"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities/days/{date} [get]
func (c *ActivityController) GetDaySchedule(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("date")
	day, err := time.Parse(dayLayout, raw)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	schedule, err := c.Service.GetDaySchedule(r.Context(), day)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, schedule)
}

// GetSubscription godoc
// @Summary Get the caller's subscription to an activity
// @Description Returns the subscription linking the caller's ticket to the activity, if one exists.
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param activityID path string true "Activity ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the subscription"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities/{activityID} [get]
func (c *ActivityController) GetSubscription(w http.ResponseWriter, r *http.Request) {
	activityID := r.PathValue("activityID")
	if !uuidRegexp.MatchString(activityID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid activityID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	sub, err := c.Service.GetSubscription(r.Context(), userID, activityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "subscription not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, sub)
}

// Subscribe godoc
// @Summary Subscribe to an activity
// @Description Subscribe the caller's ticket to an activity. Requires an enrollment and a paid in-person ticket, a free time slot on the activity's day, and a remaining vacancy.
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubscribeRequest true "Activity to subscribe to"
// @Success 200 {object} helpers.APIResponse "data contains the created subscription"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities/subscription [post]
func (c *ActivityController) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	sub, err := c.Service.Subscribe(r.Context(), userID, req.ActivityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "activity not found")
			return
		}
		if errors.Is(err, domain.ErrIneligible) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
			return
		}
		if errors.Is(err, domain.ErrAlreadySubscribed) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "already subscribed to this activity")
			return
		}
		if errors.Is(err, domain.ErrCapacityExceeded) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "activity has no vacancies left")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, sub)
}

// Unsubscribe godoc
// @Summary Unsubscribe from an activity
// @Description Remove the caller's subscription and release the vacancy. Responds 202 with no body.
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param activityID path string true "Activity ID (UUID)"
// @Success 202 "subscription removed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities/{activityID} [delete]
func (c *ActivityController) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	activityID := r.PathValue("activityID")
	if !uuidRegexp.MatchString(activityID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid activityID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if _, err := c.Service.Unsubscribe(r.Context(), userID, activityID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "activity not found")
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

	w.WriteHeader(http.StatusAccepted)
}
