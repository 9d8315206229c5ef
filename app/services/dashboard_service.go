package services

import (
	"context"
	"fmt"
	"io"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/utils/format"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
)

const (
	recentOrdersLimit = 5
	lowStockThreshold = 5
	lowStockLimit     = 10
)

type StatusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

type Dashboard struct {
	OrderCounts  []StatusCount    `json:"orderCounts"`
	TotalOrders  int64            `json:"totalOrders"`
	Revenue      decimal.Decimal  `json:"revenue"`
	RecentOrders []models.Order   `json:"recentOrders"`
	LowStock     []models.Product `json:"lowStock"`

	// HeldPayments were captured by the gateway but produced no order.
	HeldPayments []models.PaymentIntent `json:"heldPayments"`
}

type DashboardService struct {
	repos Repositories
	log   *logrus.Entry
}

func NewDashboardService(repos Repositories, log *logrus.Entry) *DashboardService {
	return &DashboardService{repos: repos, log: log}
}

func (s *DashboardService) Dashboard(ctx context.Context) (*Dashboard, error) {
	counts, err := s.repos.Orders.CountByStatus(ctx)
	if err != nil {
		return nil, persistence(err)
	}
	revenue, err := s.repos.Orders.PaidRevenue(ctx)
	if err != nil {
		return nil, persistence(err)
	}
	recent, err := s.repos.Orders.Recent(ctx, recentOrdersLimit)
	if err != nil {
		return nil, persistence(err)
	}
	lowStock, err := s.repos.Products.LowStock(ctx, lowStockThreshold, lowStockLimit)
	if err != nil {
		return nil, persistence(err)
	}

	held, err := s.repos.Payments.ListHeldIntents(ctx)
	if err != nil {
		return nil, persistence(err)
	}

	d := &Dashboard{Revenue: revenue, RecentOrders: recent, LowStock: lowStock, HeldPayments: held}
	for _, status := range models.OrderStatuses {
		d.OrderCounts = append(d.OrderCounts, StatusCount{Status: status, Count: counts[status]})
		d.TotalOrders += counts[status]
	}
	return d, nil
}

var exportHeaders = []string{
	"Order Number", "Placed At", "Status", "Payment Status", "Payment Method",
	"Customer", "City", "Pincode", "Items", "Subtotal", "Shipping", "COD Charge", "Tax", "Total",
}

// ExportOrders writes the matching orders as an xlsx workbook to w.
func (s *DashboardService) ExportOrders(ctx context.Context, filter repositories.OrderFilter, w io.Writer) error {
	orders, err := s.repos.Orders.ListForExport(ctx, filter)
	if err != nil {
		return persistence(err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	revenue := decimal.Zero
	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetValue(o.OrderNumber)
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(string(o.PaymentStatus))
		row.AddCell().SetValue(string(o.PaymentMethod))
		row.AddCell().SetValue(o.ShippingName)
		row.AddCell().SetValue(o.ShippingCity)
		row.AddCell().SetValue(o.ShippingPincode)
		row.AddCell().SetInt(len(o.Items))
		for _, amount := range []decimal.Decimal{o.Subtotal, o.ShippingCost, o.CodCharge, o.Tax, o.Total} {
			row.AddCell().SetFloatWithFormat(amount.InexactFloat64(), "#,##0.00")
		}
		if o.PaymentStatus == models.PaymentStatusPaid {
			revenue = revenue.Add(o.Total)
		}
	}

	summary := sheet.AddRow()
	summary.AddCell().SetValue("Paid revenue")
	summary.AddCell().SetValue(format.FormatINR(revenue))

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	s.log.Infof("exported %d orders", len(orders))
	return nil
}
