// Package report exports order history as an XLSX workbook.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/checkout"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	orderHeaders = []string{"Order ID", "Order Date", "Pickup Time", "Payment Method", "Payment Status", "Status", "Total"}
	itemHeaders  = []string{"Order ID", "Menu ID", "Menu", "Quantity", "Unit Price", "Subtotal"}
)

// WriteOrderHistory writes an "Orders" sheet with one row per order and an
// "Items" sheet with one row per order line.
func WriteOrderHistory(w io.Writer, orders []checkout.Detail) error {
	file := xlsx.NewFile()

	orderSheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("add orders sheet: %w", err)
	}
	itemSheet, err := file.AddSheet("Items")
	if err != nil {
		return fmt.Errorf("add items sheet: %w", err)
	}

	addHeader(orderSheet, orderHeaders)
	addHeader(itemSheet, itemHeaders)

	for _, d := range orders {
		o := d.Order
		row := orderSheet.AddRow()
		row.AddCell().SetInt64(o.ID)
		row.AddCell().SetString(model.FormatTime(o.OrderDate))
		row.AddCell().SetString(model.FormatTime(o.PickupTime))
		row.AddCell().SetString(string(o.PaymentMethod))
		row.AddCell().SetString(string(o.PaymentStatus))
		row.AddCell().SetString(string(o.Status))
		setMoney(row.AddCell(), o.TotalPrice)

		for _, l := range d.Lines {
			item := itemSheet.AddRow()
			item.AddCell().SetInt64(o.ID)
			item.AddCell().SetInt64(l.MenuID)
			item.AddCell().SetString(l.MenuName)
			item.AddCell().SetInt(l.Quantity)
			setMoney(item.AddCell(), l.UnitPrice)
			setMoney(item.AddCell(), l.Subtotal())
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func addHeader(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().SetString(h)
	}
}

// setMoney writes whole amounts as numbers and anything else as exact text.
func setMoney(cell *xlsx.Cell, d decimal.Decimal) {
	if d.IsInteger() {
		cell.SetInt64(d.IntPart())
		return
	}
	cell.SetString(d.String())
}
