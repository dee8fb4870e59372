package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kaluste-backend/internal/domain"
)

// ReservationRepo persists item holds.
type ReservationRepo struct {
	pool *pgxpool.Pool
}

func NewReservationRepo(pool *pgxpool.Pool) *ReservationRepo {
	return &ReservationRepo{pool: pool}
}

const reservationColumns = `r.id, r.product_id, p.name, r.customer_name, r.customer_email,
	r.customer_phone, r.note, r.status, r.expires_at, r.created_at, r.updated_at`

func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(&res.ID, &res.ProductID, &res.ProductName, &res.CustomerName, &res.CustomerEmail,
		&res.CustomerPhone, &res.Note, &res.Status, &res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt)
	return res, err
}

func (r *ReservationRepo) Create(ctx context.Context, res *domain.Reservation) error {
	db := dbFrom(ctx, r.pool)

	err := db.QueryRow(ctx, `
		INSERT INTO reservations (id, product_id, customer_name, customer_email, customer_phone, note, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		res.ID, res.ProductID, res.CustomerName, res.CustomerEmail, res.CustomerPhone,
		res.Note, res.Status, res.ExpiresAt,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	db := dbFrom(ctx, r.pool)

	res, err := scanReservation(db.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r JOIN products p ON p.id = r.product_id
		WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query reservation: %w", err)
	}
	return &res, nil
}

func (r *ReservationRepo) GetAll(ctx context.Context, status string, limit, offset int) ([]domain.Reservation, int64, error) {
	db := dbFrom(ctx, r.pool)

	where := ""
	args := []any{}
	if status != "" {
		where = " WHERE r.status = $1"
		args = append(args, status)
	}

	var total int64
	if err := db.QueryRow(ctx, "SELECT count(*) FROM reservations r"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM reservations r JOIN products p ON p.id = r.product_id
		%s ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d`,
		reservationColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, total, rows.Err()
}

func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	db := dbFrom(ctx, r.pool)

	tag, err := db.Exec(ctx,
		"UPDATE reservations SET status = $2, updated_at = now() WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// TradeInRepo persists customer trade-in offers.
type TradeInRepo struct {
	pool *pgxpool.Pool
}

func NewTradeInRepo(pool *pgxpool.Pool) *TradeInRepo {
	return &TradeInRepo{pool: pool}
}

const tradeInColumns = `id, customer_name, customer_email, customer_phone, description,
	category_id, condition, photo_urls, offered_price, status, admin_note, created_at, updated_at`

func scanTradeIn(row pgx.Row) (domain.TradeInRequest, error) {
	var t domain.TradeInRequest
	err := row.Scan(&t.ID, &t.CustomerName, &t.CustomerEmail, &t.CustomerPhone, &t.Description,
		&t.CategoryID, &t.Condition, &t.PhotoURLs, &t.OfferedPrice, &t.Status, &t.AdminNote,
		&t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *TradeInRepo) Create(ctx context.Context, req *domain.TradeInRequest) error {
	db := dbFrom(ctx, r.pool)

	photoURLs := req.PhotoURLs
	if photoURLs == nil {
		photoURLs = []string{}
	}
	err := db.QueryRow(ctx, `
		INSERT INTO trade_in_requests (
			id, customer_name, customer_email, customer_phone, description,
			category_id, condition, photo_urls, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		req.ID, req.CustomerName, req.CustomerEmail, req.CustomerPhone, req.Description,
		req.CategoryID, req.Condition, photoURLs, req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert trade-in request: %w", err)
	}
	return nil
}

func (r *TradeInRepo) GetByID(ctx context.Context, id string) (*domain.TradeInRequest, error) {
	db := dbFrom(ctx, r.pool)

	t, err := scanTradeIn(db.QueryRow(ctx,
		"SELECT "+tradeInColumns+" FROM trade_in_requests WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("trade-in request %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query trade-in request: %w", err)
	}
	return &t, nil
}

func (r *TradeInRepo) GetAll(ctx context.Context, status string, limit, offset int) ([]domain.TradeInRequest, int64, error) {
	db := dbFrom(ctx, r.pool)

	where := ""
	args := []any{}
	if status != "" {
		where = " WHERE status = $1"
		args = append(args, status)
	}

	var total int64
	if err := db.QueryRow(ctx, "SELECT count(*) FROM trade_in_requests"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count trade-in requests: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM trade_in_requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		tradeInColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query trade-in requests: %w", err)
	}
	defer rows.Close()

	var out []domain.TradeInRequest
	for rows.Next() {
		t, err := scanTradeIn(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan trade-in request: %w", err)
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *TradeInRepo) Update(ctx context.Context, req *domain.TradeInRequest) error {
	db := dbFrom(ctx, r.pool)

	tag, err := db.Exec(ctx, `
		UPDATE trade_in_requests
		SET status = $2, offered_price = $3, admin_note = $4, updated_at = now()
		WHERE id = $1`,
		req.ID, req.Status, req.OfferedPrice, req.AdminNote)
	if err != nil {
		return fmt.Errorf("update trade-in request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trade-in request %s: %w", req.ID, domain.ErrNotFound)
	}
	return nil
}
