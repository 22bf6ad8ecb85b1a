package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/checkout"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
)

func cellValues(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = c.Value
	}
	return out
}

func TestWriteOrderHistory(t *testing.T) {
	placed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	orders := []checkout.Detail{{
		Order: model.Order{
			ID:            7,
			UserID:        1,
			TotalPrice:    decimal.NewFromInt(45000),
			OrderDate:     placed,
			PickupTime:    placed.Add(15 * time.Minute),
			PaymentMethod: model.PaymentQRIS,
			PaymentStatus: model.PaymentPaid,
			Status:        model.StatusCompleted,
		},
		Lines: []model.OrderLineDetail{{
			OrderLine: model.OrderLine{ID: 1, OrderID: 7, MenuID: 1, Quantity: 3, UnitPrice: decimal.NewFromInt(15000)},
			MenuName:  "Nasi Gudeg",
		}},
	}, {
		Order: model.Order{
			ID:            8,
			TotalPrice:    decimal.RequireFromString("12500.5"),
			OrderDate:     placed,
			PickupTime:    placed,
			PaymentMethod: model.PaymentCash,
			PaymentStatus: model.PaymentPending,
			Status:        model.StatusPending,
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteOrderHistory(&buf, orders))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)

	orderSheet := file.Sheet["Orders"]
	require.NotNil(t, orderSheet)
	require.Len(t, orderSheet.Rows, 3)
	assert.Equal(t, orderHeaders, cellValues(orderSheet.Rows[0]))
	assert.Equal(t, []string{"7", "2025-03-01 12:00:00", "2025-03-01 12:15:00", "QRIS", "Paid", "Completed", "45000"}, cellValues(orderSheet.Rows[1]))
	assert.Equal(t, "12500.5", orderSheet.Rows[2].Cells[6].Value)

	itemSheet := file.Sheet["Items"]
	require.NotNil(t, itemSheet)
	require.Len(t, itemSheet.Rows, 2)
	assert.Equal(t, []string{"7", "1", "Nasi Gudeg", "3", "15000", "45000"}, cellValues(itemSheet.Rows[1]))
}

func TestWriteOrderHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrderHistory(&buf, nil))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 2)
	assert.Len(t, file.Sheet["Orders"].Rows, 1, "header only")
}
