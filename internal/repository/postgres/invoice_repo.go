package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kaluste-backend/internal/domain"
)

// InvoiceRepo persists invoices and their lines. Header and lines are written
// together in a transaction.
type InvoiceRepo struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepo(pool *pgxpool.Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

const invoiceColumns = `id, number, customer_name, customer_email, status,
	gross, discount_total, net, tax_total, grand_total,
	issued_at, due_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.CustomerName, &inv.CustomerEmail, &inv.Status,
		&inv.Totals.Gross, &inv.Totals.DiscountTotal, &inv.Totals.Net,
		&inv.Totals.TaxTotal, &inv.Totals.GrandTotal,
		&inv.IssuedAt, &inv.DueAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	return inv, err
}

func (r *InvoiceRepo) GetAll(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int64, error) {
	db := dbFrom(ctx, r.pool)

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		where = append(where, "(number ILIKE "+p+" OR customer_name ILIKE "+p+" OR customer_email ILIKE "+p+")")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := db.QueryRow(ctx, "SELECT count(*) FROM invoices"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	query := "SELECT " + invoiceColumns + " FROM invoices" + whereClause +
		" ORDER BY issued_at DESC LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachLines(ctx, invoices); err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	db := dbFrom(ctx, r.pool)

	inv, err := scanInvoice(db.QueryRow(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query invoice: %w", err)
	}

	invoices := []domain.Invoice{inv}
	if err := r.attachLines(ctx, invoices); err != nil {
		return nil, err
	}
	return &invoices[0], nil
}

func (r *InvoiceRepo) attachLines(ctx context.Context, invoices []domain.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	db := dbFrom(ctx, r.pool)

	ids := make([]string, len(invoices))
	for i := range invoices {
		ids[i] = invoices[i].ID
	}

	rows, err := db.Query(ctx, `
		SELECT invoice_id, id, description, quantity, unit_price, discount_percent, tax_rate
		FROM invoice_lines
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, position`, ids)
	if err != nil {
		return fmt.Errorf("query invoice lines: %w", err)
	}
	defer rows.Close()

	byInvoice := make(map[string][]domain.InvoiceLine)
	for rows.Next() {
		var invoiceID string
		var l domain.InvoiceLine
		if err := rows.Scan(&invoiceID, &l.ID, &l.Description, &l.Quantity, &l.UnitPrice, &l.DiscountPercent, &l.TaxRate); err != nil {
			return fmt.Errorf("scan invoice line: %w", err)
		}
		byInvoice[invoiceID] = append(byInvoice[invoiceID], l)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range invoices {
		invoices[i].Lines = byInvoice[invoices[i].ID]
	}
	return nil
}

func (r *InvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	return runInTx(ctx, r.pool, func(ctx context.Context) error {
		db := dbFrom(ctx, r.pool)

		err := db.QueryRow(ctx, `
			INSERT INTO invoices (
				id, number, customer_name, customer_email, status,
				gross, discount_total, net, tax_total, grand_total, issued_at, due_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING created_at, updated_at`,
			invoice.ID, invoice.Number, invoice.CustomerName, invoice.CustomerEmail, invoice.Status,
			invoice.Totals.Gross, invoice.Totals.DiscountTotal, invoice.Totals.Net,
			invoice.Totals.TaxTotal, invoice.Totals.GrandTotal, invoice.IssuedAt, invoice.DueAt,
		).Scan(&invoice.CreatedAt, &invoice.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		return r.replaceLines(ctx, invoice.ID, invoice.Lines)
	})
}

func (r *InvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	return runInTx(ctx, r.pool, func(ctx context.Context) error {
		db := dbFrom(ctx, r.pool)

		tag, err := db.Exec(ctx, `
			UPDATE invoices SET
				customer_name = $2, customer_email = $3, status = $4,
				gross = $5, discount_total = $6, net = $7, tax_total = $8, grand_total = $9,
				issued_at = $10, due_at = $11, updated_at = now()
			WHERE id = $1`,
			invoice.ID, invoice.CustomerName, invoice.CustomerEmail, invoice.Status,
			invoice.Totals.Gross, invoice.Totals.DiscountTotal, invoice.Totals.Net,
			invoice.Totals.TaxTotal, invoice.Totals.GrandTotal, invoice.IssuedAt, invoice.DueAt)
		if err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("invoice %s: %w", invoice.ID, domain.ErrNotFound)
		}
		return r.replaceLines(ctx, invoice.ID, invoice.Lines)
	})
}

func (r *InvoiceRepo) replaceLines(ctx context.Context, invoiceID string, lines []domain.InvoiceLine) error {
	db := dbFrom(ctx, r.pool)

	if _, err := db.Exec(ctx, "DELETE FROM invoice_lines WHERE invoice_id = $1", invoiceID); err != nil {
		return fmt.Errorf("clear invoice lines: %w", err)
	}
	for i, l := range lines {
		_, err := db.Exec(ctx, `
			INSERT INTO invoice_lines (id, invoice_id, position, description, quantity, unit_price, discount_percent, tax_rate)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.ID, invoiceID, i, l.Description, l.Quantity, l.UnitPrice, l.DiscountPercent, l.TaxRate)
		if err != nil {
			return fmt.Errorf("insert invoice line %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id, status string) error {
	db := dbFrom(ctx, r.pool)

	tag, err := db.Exec(ctx,
		"UPDATE invoices SET status = $2, updated_at = now() WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	db := dbFrom(ctx, r.pool)

	tag, err := db.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
