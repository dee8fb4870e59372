package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// InvoiceLine is one billed row. Prices are tax-exclusive; DiscountPercent
// and TaxRate are percentages applied per line.
type InvoiceLine struct {
	ID              string  `json:"id"`
	Description     string  `json:"description"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unitPrice"`
	DiscountPercent float64 `json:"discountPercent"`
	TaxRate         float64 `json:"taxRate"`
}

// Gross is quantity * unit price before discount.
func (l InvoiceLine) Gross() float64 {
	return roundCents(float64(l.Quantity) * l.UnitPrice)
}

// DiscountAmount is the absolute discount for the line.
func (l InvoiceLine) DiscountAmount() float64 {
	return roundCents(l.Gross() * l.DiscountPercent / 100)
}

// Net is the taxable amount: gross minus discount.
func (l InvoiceLine) Net() float64 {
	return roundCents(l.Gross() - l.DiscountAmount())
}

// TaxAmount is the tax charged on the net amount.
func (l InvoiceLine) TaxAmount() float64 {
	return roundCents(l.Net() * l.TaxRate / 100)
}

// Total is net plus tax.
func (l InvoiceLine) Total() float64 {
	return roundCents(l.Net() + l.TaxAmount())
}

func (l *InvoiceLine) Validate() error {
	if strings.TrimSpace(l.Description) == "" {
		return fmt.Errorf("line description is required")
	}
	if l.Quantity < 1 {
		return fmt.Errorf("line quantity must be >= 1")
	}
	if l.UnitPrice < 0 {
		return fmt.Errorf("line unit price must be >= 0")
	}
	if l.DiscountPercent < 0 || l.DiscountPercent > 100 {
		return fmt.Errorf("line discount must be between 0 and 100 percent")
	}
	if l.TaxRate < 0 {
		return fmt.Errorf("line tax rate must be >= 0")
	}
	return nil
}

// InvoiceTotals is the computed summary across lines.
type InvoiceTotals struct {
	Gross         float64 `json:"gross"`
	DiscountTotal float64 `json:"discountTotal"`
	Net           float64 `json:"net"`
	TaxTotal      float64 `json:"taxTotal"`
	GrandTotal    float64 `json:"grandTotal"`
}

type Invoice struct {
	ID            string        `json:"id"`
	Number        string        `json:"number"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	Status        string        `json:"status"`
	Lines         []InvoiceLine `json:"lines"`
	Totals        InvoiceTotals `json:"totals"`
	IssuedAt      time.Time     `json:"issuedAt"`
	DueAt         *time.Time    `json:"dueAt"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ComputeTotals recalculates the summary from the lines. Stored totals are a
// denormalization; this is the authority.
func (inv *Invoice) ComputeTotals() InvoiceTotals {
	var t InvoiceTotals
	for _, l := range inv.Lines {
		t.Gross = roundCents(t.Gross + l.Gross())
		t.DiscountTotal = roundCents(t.DiscountTotal + l.DiscountAmount())
		t.Net = roundCents(t.Net + l.Net())
		t.TaxTotal = roundCents(t.TaxTotal + l.TaxAmount())
		t.GrandTotal = roundCents(t.GrandTotal + l.Total())
	}
	inv.Totals = t
	return t
}

func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.CustomerName) == "" {
		return fmt.Errorf("customer name is required")
	}
	if len(inv.Lines) == 0 {
		return fmt.Errorf("invoice needs at least one line")
	}
	for i := range inv.Lines {
		if err := inv.Lines[i].Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

type InvoiceFilter struct {
	Status string
	Query  string
	Limit  int
	Offset int
}

type InvoiceRepository interface {
	GetAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	Create(ctx context.Context, invoice *Invoice) error
	Update(ctx context.Context, invoice *Invoice) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}
