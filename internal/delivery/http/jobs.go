package http

import (
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/internal/model"
	"crypto-signal-backtest/internal/service"
	"errors"
	"net/http"

	"github.com/creasty/defaults"
	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupJobs(base *echo.Group) {
	v1 := base.Group("/v1/jobs")
	{
		v1.GET("", h.ListJobs)
		v1.GET("/histories", h.ListJobHistories)
		v1.POST("/run/:name", h.RunJob)
	}
}

func (h *HttpAPIHandler) ListJobs(c echo.Context) error {
	jobs := h.service.SchedulerService.Jobs()
	infos := make([]dto.JobInfo, 0, len(jobs))
	for _, job := range jobs {
		info := dto.JobInfo{
			Name:    job.Name,
			Type:    string(job.Type),
			Cron:    job.Cron,
			Payload: job.Payload,
		}
		if job.Timeout > 0 {
			info.Timeout = job.Timeout.String()
		}
		infos = append(infos, info)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", infos))
}

func (h *HttpAPIHandler) RunJob(c echo.Context) error {
	name := c.Param("name")
	if err := h.service.SchedulerService.RunJob(c.Request().Context(), name); err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse(err.Error()))
	}
	return c.JSON(http.StatusAccepted, dto.NewAcceptedResponse("Start running job "+name))
}

func (h *HttpAPIHandler) ListJobHistories(c echo.Context) error {
	var param dto.GetJobHistoriesParam
	if err := c.Bind(&param); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("invalid query", validationErrors(err)))
	}
	if err := defaults.Set(&param); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	histories, err := h.service.TaskExecutor.Histories(c.Request().Context(), model.GetTaskExecutionHistoryParam{
		JobName: param.JobName,
		Limit:   param.Limit,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to get job histories"))
	}

	out := make([]dto.JobHistory, 0, len(histories))
	for _, hist := range histories {
		out = append(out, toJobHistory(hist))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", out))
}

func toJobHistory(h model.TaskExecutionHistory) dto.JobHistory {
	out := dto.JobHistory{
		ID:           h.ID,
		JobName:      h.JobName,
		JobType:      h.JobType,
		Trigger:      h.Trigger,
		Status:       string(h.Status),
		StartedAt:    h.StartedAt,
		Output:       h.Output.String,
		ErrorMessage: h.ErrorMessage.String,
	}
	if h.CompletedAt.Valid {
		out.CompletedAt = &h.CompletedAt.Time
	}
	if h.ExitCode.Valid {
		out.ExitCode = &h.ExitCode.Int32
	}
	return out
}
