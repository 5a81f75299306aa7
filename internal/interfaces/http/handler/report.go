package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	reportapp "github.com/pinshop/backend/internal/application/report"
	"github.com/pinshop/backend/internal/infrastructure/scheduler"
	"github.com/pinshop/backend/internal/interfaces/http/dto"
)

// CacheWarmer is the part of the scheduler the admin endpoints drive
type CacheWarmer interface {
	GetStatus() scheduler.Status
	TriggerManualRun(ctx context.Context) error
}

// ReportHandler handles report-related API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
	warmer        CacheWarmer
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// SetCacheWarmer sets the scheduler used by the admin endpoints
func (h *ReportHandler) SetCacheWarmer(warmer CacheWarmer) {
	h.warmer = warmer
}

// WarmupTriggerResponse acknowledges a manual warmup
type WarmupTriggerResponse struct {
	Message string `json:"message"`
}

// GetDailyReport returns the per-day table of the selected period.
//
// @Summary      Get daily financial report
// @Description  One row per local day of the period plus a total row
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        period query string false "Period filter" Enums(today, 7days, month, quarter, year, custom)
// @Param        month query int false "Month (1-12), defaults to the current month"
// @Param        year query int false "Year, defaults to the current year"
// @Param        start_date query string false "Custom start date (YYYY-MM-DD)"
// @Param        end_date query string false "Custom end date (YYYY-MM-DD), at most 366 days after start_date"
// @Param        sort_by query string false "Sort column, e.g. date or net_profit"
// @Param        sort_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=reportapp.DailyReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/daily [get]
func (h *ReportHandler) GetDailyReport(c *gin.Context) {
	var q reportapp.PeriodQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var sq reportapp.SortQuery
	if !h.bindQuery(c, &sq) {
		return
	}

	rep, err := h.reportService.GetDailyReport(c.Request.Context(), q, sq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, rep, len(rep.Rows), rep.Period.StartDate, rep.Period.EndDate)
}

// GetSummary returns the revenue, cashflow, production and inventory groups.
//
// @Summary      Get report summary
// @Description  Revenue, cashflow, production and inventory groups derived from the total row
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        period query string false "Period filter" Enums(today, 7days, month, quarter, year, custom)
// @Param        month query int false "Month (1-12), defaults to the current month"
// @Param        year query int false "Year, defaults to the current year"
// @Param        start_date query string false "Custom start date (YYYY-MM-DD)"
// @Param        end_date query string false "Custom end date (YYYY-MM-DD), at most 366 days after start_date"
// @Success      200 {object} dto.Response{data=reportapp.SummaryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	var q reportapp.PeriodQuery
	if !h.bindQuery(c, &q) {
		return
	}

	summary, err := h.reportService.GetSummary(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetDayDetail lists the records behind one row of the table.
//
// @Summary      Get day detail
// @Description  Sales, repairs and cash book entries of one day of the period
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        date path string true "Day (YYYY-MM-DD)"
// @Param        period query string false "Period filter" Enums(today, 7days, month, quarter, year, custom)
// @Param        month query int false "Month (1-12), defaults to the current month"
// @Param        year query int false "Year, defaults to the current year"
// @Param        start_date query string false "Custom start date (YYYY-MM-DD)"
// @Param        end_date query string false "Custom end date (YYYY-MM-DD), at most 366 days after start_date"
// @Success      200 {object} dto.Response{data=reportapp.DayDetailResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/daily/{date} [get]
func (h *ReportHandler) GetDayDetail(c *gin.Context) {
	var q reportapp.PeriodQuery
	if !h.bindQuery(c, &q) {
		return
	}

	detail, err := h.reportService.GetDayDetail(c.Request.Context(), q, c.Param("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, detail)
}

// Export renders the daily table as CSV or XLSX. Uploaded files are answered
// with a download link, otherwise the file is streamed back.
//
// @Summary      Export daily report
// @Description  Streams a CSV or XLSX file, or returns a download link when object storage is configured
// @Tags         reports
// @Accept       json
// @Produce      json,text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        period query string false "Period filter" Enums(today, 7days, month, quarter, year, custom)
// @Param        month query int false "Month (1-12), defaults to the current month"
// @Param        year query int false "Year, defaults to the current year"
// @Param        start_date query string false "Custom start date (YYYY-MM-DD)"
// @Param        end_date query string false "Custom end date (YYYY-MM-DD), at most 366 days after start_date"
// @Param        sort_by query string false "Sort column, e.g. date or net_profit"
// @Param        sort_dir query string false "Sort direction" Enums(asc, desc)
// @Param        format query string false "File format" Enums(csv, xlsx)
// @Success      200 {object} dto.Response{data=reportapp.ExportResult}
// @Success      200 {file} file
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	var q reportapp.ExportQuery
	if !h.bindQuery(c, &q) {
		return
	}

	result, err := h.reportService.ExportDailyReport(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.Uploaded() {
		h.Success(c, result)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// GetWarmerStatus returns the state of the cache warmer.
//
// @Summary      Get report cache warmer status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=scheduler.Status}
// @Router       /admin/reports/warmer [get]
func (h *ReportHandler) GetWarmerStatus(c *gin.Context) {
	if h.warmer == nil {
		h.Success(c, scheduler.Status{})
		return
	}
	h.Success(c, h.warmer.GetStatus())
}

// TriggerWarmup starts a warmup run in the background.
//
// @Summary      Trigger report cache warmup
// @Description  Starts a warmup run in the background
// @Tags         admin
// @Accept       json
// @Produce      json
// @Success      202 {object} dto.Response{data=WarmupTriggerResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/reports/warmer/run [post]
func (h *ReportHandler) TriggerWarmup(c *gin.Context) {
	if h.warmer == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Report cache warmer not configured")
		return
	}

	if err := h.warmer.TriggerManualRun(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, scheduler.ErrSchedulerNotRunning):
			h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Report cache warmer is not running")
		case errors.Is(err, scheduler.ErrWarmupInProgress):
			h.Error(c, http.StatusConflict, dto.ErrCodeInvalidState, "A warmup is already in progress")
		default:
			h.HandleError(c, err)
		}
		return
	}

	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(WarmupTriggerResponse{
		Message: "Report cache warmup started",
	}))
}
