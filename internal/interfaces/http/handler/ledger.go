package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/pinshop/backend/internal/application/ledger"
)

// LedgerHandler handles the record-keeping endpoints feeding the reports
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *ledgerapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// CreateSale records a sale.
//
// @Summary      Create sale
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateSaleRequest true "Sale"
// @Success      201 {object} dto.Response{data=ledgerapp.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales [post]
func (h *LedgerHandler) CreateSale(c *gin.Context) {
	var req ledgerapp.CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sale, err := h.ledgerService.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// ListSales lists sales in a date range.
//
// @Summary      List sales
// @Description  Sales dated within the range, oldest first
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        start_date query string true "Start date (YYYY-MM-DD)"
// @Param        end_date query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]ledgerapp.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales [get]
func (h *LedgerHandler) ListSales(c *gin.Context) {
	var q ledgerapp.RangeQuery
	if !h.bindQuery(c, &q) {
		return
	}

	sales, err := h.ledgerService.ListSales(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, sales, len(sales), q.StartDate, q.EndDate)
}

// ImportCashBook imports a cash book CSV, sent either as the multipart field
// "file" or as the raw request body. Rows are all stored or none are; with
// dry_run=true the file is only checked. Imported files answer 201, checks
// and files with row errors answer 200 with the row errors listed.
//
// @Summary      Import cash book
// @Description  Imports a cash book CSV sent as the multipart field "file" or as the raw body. All rows are stored or none are.
// @Tags         ledger
// @Accept       multipart/form-data,text/csv
// @Produce      json
// @Param        file formData file false "Cash book CSV"
// @Param        dry_run query bool false "Only check the file"
// @Success      200 {object} dto.Response{data=ledgerapp.ImportCashBookResponse}
// @Success      201 {object} dto.Response{data=ledgerapp.ImportCashBookResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cash-transactions/import [post]
func (h *LedgerHandler) ImportCashBook(c *gin.Context) {
	var q ledgerapp.ImportQuery
	if !h.bindQuery(c, &q) {
		return
	}

	var file io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		upload, _, err := c.Request.FormFile("file")
		if err != nil {
			h.BadRequest(c, "file is required")
			return
		}
		defer upload.Close()
		file = upload
	}

	resp, err := h.ledgerService.ImportCashBook(c.Request.Context(), file, q.DryRun)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if resp.ImportedRows > 0 {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}

// CreateRepairOrder records a repair ticket.
//
// @Summary      Create repair order
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateRepairOrderRequest true "Repair order"
// @Success      201 {object} dto.Response{data=ledgerapp.RepairOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /repair-orders [post]
func (h *LedgerHandler) CreateRepairOrder(c *gin.Context) {
	var req ledgerapp.CreateRepairOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.ledgerService.CreateRepairOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// ListRepairOrders lists repair tickets in a date range.
//
// @Summary      List repair orders
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        start_date query string true "Start date (YYYY-MM-DD)"
// @Param        end_date query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]ledgerapp.RepairOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /repair-orders [get]
func (h *LedgerHandler) ListRepairOrders(c *gin.Context) {
	var q ledgerapp.RangeQuery
	if !h.bindQuery(c, &q) {
		return
	}

	orders, err := h.ledgerService.ListRepairOrders(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, orders, len(orders), q.StartDate, q.EndDate)
}

// CreateCashTransaction records a cash book entry.
//
// @Summary      Create cash transaction
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateCashTransactionRequest true "Cash book entry"
// @Success      201 {object} dto.Response{data=ledgerapp.CashTransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cash-transactions [post]
func (h *LedgerHandler) CreateCashTransaction(c *gin.Context) {
	var req ledgerapp.CreateCashTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.ledgerService.CreateCashTransaction(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tx)
}

// ListCashTransactions lists cash book entries in a date range.
//
// @Summary      List cash transactions
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        start_date query string true "Start date (YYYY-MM-DD)"
// @Param        end_date query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]ledgerapp.CashTransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cash-transactions [get]
func (h *LedgerHandler) ListCashTransactions(c *gin.Context) {
	var q ledgerapp.RangeQuery
	if !h.bindQuery(c, &q) {
		return
	}

	txs, err := h.ledgerService.ListCashTransactions(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, txs, len(txs), q.StartDate, q.EndDate)
}

// CreateProductionOrder records an assembly run.
//
// @Summary      Create production order
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateProductionOrderRequest true "Production order"
// @Success      201 {object} dto.Response{data=ledgerapp.ProductionOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /production-orders [post]
func (h *LedgerHandler) CreateProductionOrder(c *gin.Context) {
	var req ledgerapp.CreateProductionOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.ledgerService.CreateProductionOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// ListProductionOrders lists production orders in a date range.
//
// @Summary      List production orders
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        start_date query string true "Start date (YYYY-MM-DD)"
// @Param        end_date query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]ledgerapp.ProductionOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /production-orders [get]
func (h *LedgerHandler) ListProductionOrders(c *gin.Context) {
	var q ledgerapp.RangeQuery
	if !h.bindQuery(c, &q) {
		return
	}

	orders, err := h.ledgerService.ListProductionOrders(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, orders, len(orders), q.StartDate, q.EndDate)
}

// CancelProductionOrder cancels an order.
//
// @Summary      Cancel production order
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id path string true "Production order ID"
// @Success      200 {object} dto.Response{data=ledgerapp.ProductionOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /production-orders/{id}/cancel [post]
func (h *LedgerHandler) CancelProductionOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid production order ID")
		return
	}

	order, err := h.ledgerService.CancelProductionOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}
