package usecase

import (
	"context"
	"fmt"
	"time"

	"kaluste-backend/internal/domain"
	"kaluste-backend/pkg/logger"
	"kaluste-backend/pkg/utils"
)

// InvoiceUsecase handles manually issued invoices for in-store and phone
// sales. Totals are always recomputed server-side before persisting.
type InvoiceUsecase struct {
	repo domain.InvoiceRepository
}

func NewInvoiceUsecase(repo domain.InvoiceRepository) *InvoiceUsecase {
	return &InvoiceUsecase{repo: repo}
}

func (uc *InvoiceUsecase) List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.repo.GetAll(ctx, filter)
}

func (uc *InvoiceUsecase) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *InvoiceUsecase) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}
	if invoice.ID == "" {
		invoice.ID = utils.GenerateUUID()
	}
	if invoice.Number == "" {
		invoice.Number = generateInvoiceNumber(time.Now())
	}
	if invoice.Status == "" {
		invoice.Status = domain.InvoiceStatusDraft
	}
	if invoice.IssuedAt.IsZero() {
		invoice.IssuedAt = time.Now()
	}
	for i := range invoice.Lines {
		if invoice.Lines[i].ID == "" {
			invoice.Lines[i].ID = utils.GenerateUUID()
		}
	}
	invoice.ComputeTotals()

	if err := uc.repo.Create(ctx, invoice); err != nil {
		return err
	}
	logger.WithContext(ctx).Info().
		Str("invoice_id", invoice.ID).
		Str("number", invoice.Number).
		Float64("grand_total", invoice.Totals.GrandTotal).
		Msg("invoice created")
	return nil
}

func (uc *InvoiceUsecase) Update(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}
	existing, err := uc.repo.GetByID(ctx, invoice.ID)
	if err != nil {
		return err
	}
	// Paid and cancelled invoices are immutable
	if existing.Status == domain.InvoiceStatusPaid || existing.Status == domain.InvoiceStatusCancelled {
		return fmt.Errorf("invoice %s is %s and cannot be edited", invoice.Number, existing.Status)
	}
	for i := range invoice.Lines {
		if invoice.Lines[i].ID == "" {
			invoice.Lines[i].ID = utils.GenerateUUID()
		}
	}
	invoice.ComputeTotals()
	return uc.repo.Update(ctx, invoice)
}

func (uc *InvoiceUsecase) UpdateStatus(ctx context.Context, id, status string) error {
	if !contains(domain.InvoiceStatuses, status) {
		return fmt.Errorf("unknown invoice status %q", status)
	}
	return uc.repo.UpdateStatus(ctx, id, status)
}

func (uc *InvoiceUsecase) Delete(ctx context.Context, id string) error {
	existing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status != domain.InvoiceStatusDraft {
		return fmt.Errorf("only draft invoices can be deleted")
	}
	return uc.repo.Delete(ctx, id)
}

// generateInvoiceNumber produces a human-readable number like "2026-08-35264001".
// Uniqueness is enforced by the database constraint, not here.
func generateInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("%d-%02d-%d", now.Year(), now.Month(), now.Unix()%100_000_000)
}
