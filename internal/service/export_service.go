package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/MILO-debug/POS/internal/model"
	"github.com/MILO-debug/POS/internal/repository"
)

type ExportService interface {
	// SalesCSV flattens sales to one row per item line:
	// Date,Name,Unit,Qty,Weight,LineTotal
	SalesCSV(ctx context.Context, f repository.SaleFilter) ([]byte, error)
	// HistoryCSV is the audit-grade flat export:
	// timestamp,shiftId,saleTotal,saleDiscount,itemName,unit,quantityOrWeight,pricePerUnit,lineTotal
	HistoryCSV(ctx context.Context, f repository.SaleFilter) ([]byte, error)
}

type exportService struct {
	sales repository.SaleRepository
}

func NewExportService(sales repository.SaleRepository) ExportService {
	return &exportService{sales: sales}
}

func (s *exportService) SalesCSV(ctx context.Context, f repository.SaleFilter) ([]byte, error) {
	sales, err := s.sales.List(ctx, f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Date", "Name", "Unit", "Qty", "Weight", "LineTotal"}); err != nil {
		return nil, err
	}
	for _, sale := range sales {
		date := sale.Timestamp.Format("2006-01-02 15:04")
		for _, it := range sale.Items {
			qty, weight := "", ""
			if it.Unit == model.UnitKg {
				weight = it.Weight.StringFixed(3)
			} else {
				qty = strconv.Itoa(it.Qty)
			}
			rec := []string{date, it.Name, it.Unit, qty, weight, it.LineTotal.StringFixed(2)}
			if err := w.Write(rec); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s *exportService) HistoryCSV(ctx context.Context, f repository.SaleFilter) ([]byte, error) {
	sales, err := s.sales.List(ctx, f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"timestamp", "shiftId", "saleTotal", "saleDiscount", "itemName", "unit", "quantityOrWeight", "pricePerUnit", "lineTotal"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, sale := range sales {
		ts := sale.Timestamp.Format(time.RFC3339)
		for _, it := range sale.Items {
			rec := []string{
				ts,
				sale.ShiftID,
				sale.Total.StringFixed(2),
				sale.Discount.StringFixed(2),
				it.Name,
				it.Unit,
				it.Quantity().String(),
				it.Price.StringFixed(2),
				it.LineTotal.StringFixed(2),
			}
			if err := w.Write(rec); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
