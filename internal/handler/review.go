package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"reviso/internal/contract"
	"reviso/internal/service"
	"reviso/internal/srs"
)

func (h *Handler) SubmitReview(c echo.Context) error {
	studentID, err := GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req contract.SubmitReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidRequest)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	schedule, err := h.reviews.SubmitReview(c.Request().Context(), service.SubmitReviewInput{
		StudentID:   studentID,
		ProblemID:   req.ProblemID,
		Rating:      req.Rating,
		TimeSpentMs: req.TimeSpentMs,
	})
	if err != nil {
		if errors.Is(err, srs.ErrInvalidFeedback) || errors.Is(err, srs.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process review").SetInternal(err)
	}

	return c.JSON(http.StatusOK, contract.NewScheduleResponse(schedule, h.policy, h.clock.Now()))
}

func (h *Handler) GetDueSchedules(c echo.Context) error {
	studentID, err := GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	schedules, err := h.reviews.DueSchedules(studentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch due schedules").SetInternal(err)
	}

	now := h.clock.Now()
	responses := make([]contract.ScheduleResponse, 0, len(schedules))
	for _, schedule := range schedules {
		responses = append(responses, contract.NewScheduleResponse(schedule, h.policy, now))
	}

	return c.JSON(http.StatusOK, responses)
}

func (h *Handler) GetOverdueQueue(c echo.Context) error {
	studentID, err := GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	items, err := h.overdue.OverdueQueue(studentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch overdue queue").SetInternal(err)
	}

	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetRetentionReport(c echo.Context) error {
	studentID, err := GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	report, err := h.retention.Report(studentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build retention report").SetInternal(err)
	}

	return c.JSON(http.StatusOK, report)
}

func (h *Handler) GetSchedule(c echo.Context) error {
	studentID, err := GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	scheduleID := c.Param("id")
	if scheduleID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Schedule ID is required")
	}

	schedule, err := h.reviews.ScheduleByID(scheduleID)
	if err != nil {
		if errors.Is(err, srs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Schedule not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch schedule").SetInternal(err)
	}

	if schedule.StudentID != studentID {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	return c.JSON(http.StatusOK, contract.NewScheduleResponse(schedule, h.policy, h.clock.Now()))
}

func (h *Handler) GetStats(c echo.Context) error {
	studentID, err := GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	stats, err := h.db.GetStudyStats(studentID, h.clock.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch stats").SetInternal(err)
	}

	return c.JSON(http.StatusOK, stats)
}
