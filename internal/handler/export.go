package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MILO-debug/POS/internal/service"
)

type ExportHandler struct{ svc service.ExportService }

func NewExportHandler(svc service.ExportService) *ExportHandler { return &ExportHandler{svc: svc} }

func attachCSV(c *gin.Context, name string, data []byte) {
	filename := name + "_" + time.Now().Format("20060102_150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Sales godoc
// @Summary      Export sales as CSV
// @Description  One row per item line: Date,Name,Unit,Qty,Weight,LineTotal.
// @Tags         export
// @Produce      text/csv
// @Security     BearerAuth
// @Param        start   query string false "Start date YYYY-MM-DD"
// @Param        end     query string false "End date YYYY-MM-DD"
// @Param        shiftId query string false "Filter by shift"
// @Success      200 {string} string "CSV data"
// @Router       /v1/export/sales [get]
func (h *ExportHandler) Sales(c *gin.Context) {
	filter, err := saleFilterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := h.svc.SalesCSV(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	attachCSV(c, "sales", data)
}

// History godoc
// @Summary      Export the audit-grade sales history as CSV
// @Description  Columns: timestamp,shiftId,saleTotal,saleDiscount,itemName,unit,quantityOrWeight,pricePerUnit,lineTotal.
// @Tags         export
// @Produce      text/csv
// @Security     BearerAuth
// @Param        start   query string false "Start date YYYY-MM-DD"
// @Param        end     query string false "End date YYYY-MM-DD"
// @Param        shiftId query string false "Filter by shift"
// @Success      200 {string} string "CSV data"
// @Router       /v1/export/history [get]
func (h *ExportHandler) History(c *gin.Context) {
	filter, err := saleFilterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := h.svc.HistoryCSV(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	attachCSV(c, "sales_history", data)
}
