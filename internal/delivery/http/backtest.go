package http

import (
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/internal/repository"
	"crypto-signal-backtest/internal/service"
	"crypto-signal-backtest/pkg/logger"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupBacktest(base *echo.Group) {
	v1 := base.Group("/v1/backtest")
	{
		v1.POST("", h.RunBacktest)
		v1.GET("/results", h.ListBacktestResults)
		v1.GET("/results/:id", h.GetBacktestResult)
	}
}

func (h *HttpAPIHandler) RunBacktest(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BacktestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("invalid request body", validationErrors(err)))
	}

	result, err := h.service.BacktestService.RunBacktest(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("invalid backtest request", validationErrors(err)))
		}
		h.log.ErrorContext(ctx, "Failed to run backtest", logger.ErrorField(err), logger.StringField("symbol", req.Symbol))
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to run backtest"))
	}
	if result == nil {
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse("backtest unavailable: no data for the requested window"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("backtest finished", result))
}

func (h *HttpAPIHandler) ListBacktestResults(c echo.Context) error {
	var param dto.GetBacktestResultsParam
	if err := c.Bind(&param); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("invalid query", validationErrors(err)))
	}

	results, err := h.service.BacktestService.ListResults(c.Request().Context(), param)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("invalid query", validationErrors(err)))
		}
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to list backtest results"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", results))
}

func (h *HttpAPIHandler) GetBacktestResult(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("id must be a positive integer"))
	}

	result, err := h.service.BacktestService.GetResult(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrBacktestResultNotFound) {
			return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse("backtest result not found"))
		}
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to get backtest result"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", result))
}
