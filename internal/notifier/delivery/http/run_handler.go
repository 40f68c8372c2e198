package http

import (
	"net/http"
	"strconv"

	"tickrflow/internal/entity"
	"tickrflow/internal/notifier/dto"
	"tickrflow/internal/notifier/repository"
	"tickrflow/pkg/logger"

	"github.com/labstack/echo/v4"
)

const defaultRunListLimit = 50

// RunHandler exposes the workflow run history.
type RunHandler struct {
	runRepo repository.WorkflowRunRepository
	logger  *logger.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runRepo repository.WorkflowRunRepository, logger *logger.Logger) *RunHandler {
	return &RunHandler{runRepo: runRepo, logger: logger}
}

// RegisterRoutes registers the run routes to the Echo group.
func (h *RunHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListRuns)
	g.GET("/:run_id", h.GetRun)
}

// ListRuns returns the most recent workflow runs.
func (h *RunHandler) ListRuns(c echo.Context) error {
	limit := defaultRunListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid limit"})
		}
		limit = parsed
	}

	runs, err := h.runRepo.FindRecent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list workflow runs", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	responses := make([]dto.RunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, mapRunResponse(&run))
	}
	return c.JSON(http.StatusOK, responses)
}

// GetRun returns one workflow run by its run id.
func (h *RunHandler) GetRun(c echo.Context) error {
	run, err := h.runRepo.FindByRunID(c.Request().Context(), c.Param("run_id"))
	if err != nil {
		h.logger.Error("Failed to fetch workflow run", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "run not found"})
	}

	return c.JSON(http.StatusOK, mapRunResponse(run))
}

func mapRunResponse(run *entity.WorkflowRun) dto.RunResponse {
	resp := dto.RunResponse{
		RunID:      run.RunID,
		Flow:       run.Flow,
		Status:     string(run.Status),
		Recipients: run.Recipients,
		StartedAt:  run.StartedAt,
	}
	if run.Output.Valid {
		resp.Output = run.Output.String
	}
	if run.ErrorMessage.Valid {
		resp.ErrorMessage = run.ErrorMessage.String
	}
	if run.CompletedAt.Valid {
		t := run.CompletedAt.Time
		resp.CompletedAt = &t
	}
	return resp
}
