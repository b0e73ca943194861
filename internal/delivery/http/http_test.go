package http

import (
	"context"
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/internal/model"
	"crypto-signal-backtest/internal/repository"
	"crypto-signal-backtest/internal/service"
	"crypto-signal-backtest/internal/strategy"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/metrics"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBacktestService struct {
	service.BacktestService
	lastReq  dto.BacktestRequest
	lastList dto.GetBacktestResultsParam
}

func (f *fakeBacktestService) RunBacktest(_ context.Context, req dto.BacktestRequest) (*dto.BacktestResult, error) {
	f.lastReq = req
	switch req.Symbol {
	case "":
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidRequest, service.NewValidator().Struct(req))
	case "NODATA/USDT":
		return nil, nil
	}
	return &dto.BacktestResult{Symbol: req.Symbol, TotalSignals: 3, WinRate: 66.67}, nil
}

func (f *fakeBacktestService) ListResults(_ context.Context, param dto.GetBacktestResultsParam) ([]dto.BacktestResult, error) {
	f.lastList = param
	return []dto.BacktestResult{{ID: 1, Symbol: param.Symbol}}, nil
}

func (f *fakeBacktestService) GetResult(_ context.Context, id uint) (*dto.BacktestResult, error) {
	if id != 7 {
		return nil, repository.ErrBacktestResultNotFound
	}
	return &dto.BacktestResult{ID: 7, Symbol: "BTC/USDT"}, nil
}

type fakeScheduler struct {
	service.SchedulerService
	ran []string
}

func (f *fakeScheduler) Jobs() []strategy.Job {
	return []strategy.Job{{Name: "daily_backtest", Type: strategy.JobTypeBacktest, Cron: "0 1 * * *", Timeout: 5 * time.Minute, Payload: json.RawMessage(`{"days":30}`)}}
}

func (f *fakeScheduler) RunJob(_ context.Context, name string) error {
	if name != "daily_backtest" {
		return fmt.Errorf("%w: %s", service.ErrJobNotFound, name)
	}
	f.ran = append(f.ran, name)
	return nil
}

type fakeExecutor struct {
	service.TaskExecutor
}

func (fakeExecutor) Histories(_ context.Context, param model.GetTaskExecutionHistoryParam) ([]model.TaskExecutionHistory, error) {
	return []model.TaskExecutionHistory{{ID: 1, JobName: param.JobName, Status: model.StatusCompleted}}, nil
}

type fixture struct {
	echo      *echo.Echo
	backtest  *fakeBacktestService
	scheduler *fakeScheduler
}

func newFixture() *fixture {
	f := &fixture{echo: echo.New(), backtest: &fakeBacktestService{}, scheduler: &fakeScheduler{}}
	svc := &service.Service{BacktestService: f.backtest, SchedulerService: f.scheduler, TaskExecutor: fakeExecutor{}}
	NewHttpAPIHandler(f.echo, logger.NewNop(), svc, metrics.New()).SetupRoutes()
	return f
}

func (f *fixture) do(method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestRunBacktest(t *testing.T) {
	f := newFixture()

	rec, body := f.do(http.MethodPost, "/api/v1/backtest", `{"symbol":"BTC/USDT","timeframe":"4h","days":7,"config":{"use_rsi":false}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "BTC/USDT", data["symbol"])
	assert.Equal(t, "4h", f.backtest.lastReq.Timeframe)
	require.NotNil(t, f.backtest.lastReq.Config.UseRSI)
	assert.False(t, *f.backtest.lastReq.Config.UseRSI)
	assert.Nil(t, f.backtest.lastReq.Config.UseMACD)
}

func TestRunBacktest_Unavailable(t *testing.T) {
	f := newFixture()

	rec, body := f.do(http.MethodPost, "/api/v1/backtest", `{"symbol":"NODATA/USDT"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body["message"], "backtest unavailable")
}

func TestRunBacktest_ValidationDetails(t *testing.T) {
	f := newFixture()

	rec, body := f.do(http.MethodPost, "/api/v1/backtest", `{"days":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	details := body["errors"].([]interface{})
	require.NotEmpty(t, details)
	first := details[0].(map[string]interface{})
	assert.Equal(t, "ERR_REQUIRED", first["code"])
	assert.Equal(t, "Symbol", first["field"])
	assert.Equal(t, "Symbol is required", first["message"])

	rec, _ = f.do(http.MethodPost, "/api/v1/backtest", `{"exchange":"kraken"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Exchange must be one of: BINANCE, YAHOO")

	rec, _ = f.do(http.MethodPost, "/api/v1/backtest", `{"symbol":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBacktestResults(t *testing.T) {
	f := newFixture()

	rec, body := f.do(http.MethodGet, "/api/v1/backtest/results?symbol=ETH/USDT&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := body["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "ETH/USDT", list[0].(map[string]interface{})["symbol"])
	assert.False(t, f.backtest.lastList.WithSignals)

	rec, _ = f.do(http.MethodGet, "/api/v1/backtest/results?with_signals=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.backtest.lastList.WithSignals)

	rec, _ = f.do(http.MethodGet, "/api/v1/backtest/results/7", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(http.MethodGet, "/api/v1/backtest/results/8", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(http.MethodGet, "/api/v1/backtest/results/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobs(t *testing.T) {
	f := newFixture()

	rec, body := f.do(http.MethodGet, "/api/v1/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	job := body["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "daily_backtest", job["name"])
	assert.Equal(t, "5m0s", job["timeout"])
	assert.Equal(t, map[string]interface{}{"days": float64(30)}, job["payload"])

	rec, _ = f.do(http.MethodPost, "/api/v1/jobs/run/daily_backtest", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"daily_backtest"}, f.scheduler.ran)

	rec, _ = f.do(http.MethodPost, "/api/v1/jobs/run/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = f.do(http.MethodGet, "/api/v1/jobs/histories?job_name=daily_backtest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	hist := body["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "completed", hist["status"])
	assert.Equal(t, "daily_backtest", hist["job_name"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture()

	rec, _ := f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
