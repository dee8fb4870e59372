package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceLine_Arithmetic(t *testing.T) {
	assertions := assert.New(t)

	// 2 x 100, 10% discount, 24% VAT (standard Finnish rate for furniture)
	line := InvoiceLine{Quantity: 2, UnitPrice: 100, DiscountPercent: 10, TaxRate: 24}

	assertions.Equal(200.0, line.Gross())
	assertions.Equal(20.0, line.DiscountAmount())
	assertions.Equal(180.0, line.Net())
	assertions.Equal(43.2, line.TaxAmount())
	assertions.Equal(223.2, line.Total())
}

func TestInvoiceLine_NoDiscountNoTax(t *testing.T) {
	line := InvoiceLine{Quantity: 3, UnitPrice: 19.9}

	assert.Equal(t, 59.7, line.Gross())
	assert.Equal(t, 0.0, line.DiscountAmount())
	assert.Equal(t, 59.7, line.Total())
}

func TestInvoiceLine_RoundsToCents(t *testing.T) {
	// 1 x 9.99 at 24% VAT: tax is 2.3976, stored as 2.40
	line := InvoiceLine{Quantity: 1, UnitPrice: 9.99, TaxRate: 24}

	assert.Equal(t, 2.4, line.TaxAmount())
	assert.Equal(t, 12.39, line.Total())
}

func TestInvoice_ComputeTotals(t *testing.T) {
	assertions := assert.New(t)

	inv := &Invoice{
		CustomerName: "Aino Virtanen",
		Lines: []InvoiceLine{
			{Description: "Oak dining table", Quantity: 1, UnitPrice: 450, TaxRate: 24},
			{Description: "Chairs", Quantity: 4, UnitPrice: 85, DiscountPercent: 5, TaxRate: 24},
		},
	}

	totals := inv.ComputeTotals()

	assertions.Equal(790.0, totals.Gross)
	assertions.Equal(17.0, totals.DiscountTotal)
	assertions.Equal(773.0, totals.Net)
	assertions.Equal(185.52, totals.TaxTotal)
	assertions.Equal(958.52, totals.GrandTotal)
	assertions.Equal(totals, inv.Totals, "totals are stored on the invoice")
}

func TestInvoice_Validate(t *testing.T) {
	assertions := assert.New(t)

	inv := &Invoice{CustomerName: "X"}
	assertions.Error(inv.Validate(), "an invoice needs lines")

	inv.Lines = []InvoiceLine{{Description: "Sofa", Quantity: 1, UnitPrice: 100}}
	assertions.NoError(inv.Validate())

	inv.Lines[0].Quantity = 0
	assertions.Error(inv.Validate())

	inv.Lines[0].Quantity = 1
	inv.Lines[0].DiscountPercent = 150
	assertions.Error(inv.Validate())
}
