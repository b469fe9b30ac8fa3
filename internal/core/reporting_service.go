package core

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummary aggregates one day of committed sales.
type SalesSummary struct {
	Day             string          `json:"day"`
	TotalRevenueUsd decimal.Decimal `json:"totalRevenueUsd"`
	TotalRevenueNLe decimal.Decimal `json:"totalRevenueNLe"`
	ItemsSold       int             `json:"itemsSold"`
	SaleCount       int             `json:"saleCount"`
	AvgMarginPct    decimal.Decimal `json:"avgMarginPct"`
}

// Report is a plain-text document: a title and pre-formatted lines.
type Report struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// ReportingService renders read-only summaries and documents over the
// sales ledger, catalog and attendance log.
type ReportingService interface {
	DailySalesSummary(ctx context.Context, day time.Time) (*SalesSummary, error)
	DailySalesReport(ctx context.Context, day time.Time) (*Report, error)
	LowStockReport(ctx context.Context) (*Report, error)
	AttendanceReport(ctx context.Context) (*Report, error)
}

type reportingService struct {
	sales  SaleService
	alerts AlertService
	staff  StaffService
}

func NewReportingService(sales SaleService, alerts AlertService, staff StaffService) ReportingService {
	return &reportingService{sales: sales, alerts: alerts, staff: staff}
}

func (s *reportingService) DailySalesSummary(ctx context.Context, day time.Time) (*SalesSummary, error) {
	sales, err := s.sales.GetSalesByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	summary := &SalesSummary{
		Day:             day.UTC().Format("2006-01-02"),
		TotalRevenueUsd: decimal.Zero,
		TotalRevenueNLe: decimal.Zero,
		AvgMarginPct:    decimal.Zero,
		SaleCount:       len(sales),
	}

	marginSum := decimal.Zero
	marginCount := 0
	for _, sale := range sales {
		summary.TotalRevenueUsd = summary.TotalRevenueUsd.Add(sale.TotalUsd)
		summary.TotalRevenueNLe = summary.TotalRevenueNLe.Add(sale.TotalLeone)
		for _, l := range sale.Lines {
			summary.ItemsSold += l.Qty
		}
		// Zero-total sales carry no meaningful margin; skip them.
		if !sale.TotalUsd.IsZero() {
			marginSum = marginSum.Add(EvaluateSale(&sale).MarginPct)
			marginCount++
		}
	}
	if marginCount > 0 {
		summary.AvgMarginPct = marginSum.Div(decimal.NewFromInt(int64(marginCount))).Round(2)
	}
	return summary, nil
}

func (s *reportingService) DailySalesReport(ctx context.Context, day time.Time) (*Report, error) {
	sales, err := s.sales.GetSalesByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Title: fmt.Sprintf("Daily Sales Report — %s", day.UTC().Format("2006-01-02")),
	}
	totalUsd := decimal.Zero
	totalNLe := decimal.Zero
	items := 0
	for _, sale := range sales {
		itemCount := 0
		for _, l := range sale.Lines {
			itemCount += l.Qty
		}
		report.Lines = append(report.Lines, fmt.Sprintf("%s  Items:%d  USD:%s  NLe:%s",
			sale.SaleDate.UTC().Format("15:04"), itemCount,
			sale.TotalUsd.StringFixed(2), sale.TotalLeone.StringFixed(2)))
		for _, l := range sale.Lines {
			report.Lines = append(report.Lines, fmt.Sprintf("  - %s x%d @ %s USD",
				l.SKU, l.Qty, l.UnitPriceUsd.StringFixed(2)))
		}
		totalUsd = totalUsd.Add(sale.TotalUsd)
		totalNLe = totalNLe.Add(sale.TotalLeone)
		items += itemCount
	}
	report.Lines = append(report.Lines, fmt.Sprintf("TOTAL  Sales:%d  Items:%d  USD:%s  NLe:%s",
		len(sales), items, totalUsd.StringFixed(2), totalNLe.StringFixed(2)))
	return report, nil
}

func (s *reportingService) LowStockReport(ctx context.Context) (*Report, error) {
	alerts, err := s.alerts.Scan(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Title: "Low-stock Report"}
	if len(alerts) == 0 {
		report.Lines = append(report.Lines, "All products above their reorder thresholds.")
		return report, nil
	}
	for _, a := range alerts {
		report.Lines = append(report.Lines, fmt.Sprintf("%s  %s  on hand: %d  threshold: %d",
			a.SKU, a.Name, a.QtyOnHand, a.Threshold))
	}
	return report, nil
}

func (s *reportingService) AttendanceReport(ctx context.Context) (*Report, error) {
	records, err := s.staff.TodayAttendance(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Title: fmt.Sprintf("Attendance — %s", time.Now().UTC().Format("2006-01-02")),
	}
	if len(records) == 0 {
		report.Lines = append(report.Lines, "No clock events today.")
		return report, nil
	}
	for _, a := range records {
		report.Lines = append(report.Lines, fmt.Sprintf("%s  %s  %s  station:%s",
			a.ClockTime.UTC().Format("15:04"), a.StaffID, a.Action, a.WorkstationID))
	}
	return report, nil
}
