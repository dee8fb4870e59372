package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kaluste-backend/internal/domain"
)

// ShippingRepo persists zones, rules and zone price overrides. Zone writes
// touch two tables (zones + postal code ranges) and run in a transaction.
type ShippingRepo struct {
	pool *pgxpool.Pool
}

func NewShippingRepo(pool *pgxpool.Pool) *ShippingRepo {
	return &ShippingRepo{pool: pool}
}

// --- Zones ---

const zoneColumns = "id, name, distance_from_store_km, is_active, created_at, updated_at"

func (r *ShippingRepo) GetAllZones(ctx context.Context) ([]domain.ShippingZone, error) {
	return r.getZones(ctx, "SELECT "+zoneColumns+" FROM shipping_zones ORDER BY id")
}

func (r *ShippingRepo) GetActiveZones(ctx context.Context) ([]domain.ShippingZone, error) {
	return r.getZones(ctx, "SELECT "+zoneColumns+" FROM shipping_zones WHERE is_active ORDER BY id")
}

func (r *ShippingRepo) getZones(ctx context.Context, query string) ([]domain.ShippingZone, error) {
	db := dbFrom(ctx, r.pool)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query zones: %w", err)
	}
	defer rows.Close()

	var zones []domain.ShippingZone
	ids := make([]int32, 0)
	for rows.Next() {
		var z domain.ShippingZone
		if err := rows.Scan(&z.ID, &z.Name, &z.DistanceFromStoreKm, &z.IsActive, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		zones = append(zones, z)
		ids = append(ids, z.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(zones) == 0 {
		return zones, nil
	}

	ranges, err := r.postalCodesForZones(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range zones {
		zones[i].PostalCodes = ranges[zones[i].ID]
	}
	return zones, nil
}

func (r *ShippingRepo) postalCodesForZones(ctx context.Context, zoneIDs []int32) (map[int32][]domain.PostalCodeRange, error) {
	db := dbFrom(ctx, r.pool)

	rows, err := db.Query(ctx, `
		SELECT zone_id, postal_code_start, postal_code_end, city
		FROM shipping_zone_postal_codes
		WHERE zone_id = ANY($1)
		ORDER BY id`, zoneIDs)
	if err != nil {
		return nil, fmt.Errorf("query postal code ranges: %w", err)
	}
	defer rows.Close()

	out := make(map[int32][]domain.PostalCodeRange)
	for rows.Next() {
		var zoneID int32
		var pcr domain.PostalCodeRange
		if err := rows.Scan(&zoneID, &pcr.Start, &pcr.End, &pcr.City); err != nil {
			return nil, fmt.Errorf("scan postal code range: %w", err)
		}
		out[zoneID] = append(out[zoneID], pcr)
	}
	return out, rows.Err()
}

func (r *ShippingRepo) GetZoneByID(ctx context.Context, id int32) (*domain.ShippingZone, error) {
	db := dbFrom(ctx, r.pool)

	var z domain.ShippingZone
	err := db.QueryRow(ctx,
		"SELECT "+zoneColumns+" FROM shipping_zones WHERE id = $1", id,
	).Scan(&z.ID, &z.Name, &z.DistanceFromStoreKm, &z.IsActive, &z.CreatedAt, &z.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("zone %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query zone: %w", err)
	}

	ranges, err := r.postalCodesForZones(ctx, []int32{z.ID})
	if err != nil {
		return nil, err
	}
	z.PostalCodes = ranges[z.ID]
	return &z, nil
}

func (r *ShippingRepo) CreateZone(ctx context.Context, zone *domain.ShippingZone) (*domain.ShippingZone, error) {
	err := runInTx(ctx, r.pool, func(ctx context.Context) error {
		db := dbFrom(ctx, r.pool)
		err := db.QueryRow(ctx, `
			INSERT INTO shipping_zones (name, distance_from_store_km, is_active)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at`,
			zone.Name, zone.DistanceFromStoreKm, zone.IsActive,
		).Scan(&zone.ID, &zone.CreatedAt, &zone.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert zone: %w", err)
		}
		return r.replacePostalCodes(ctx, zone.ID, zone.PostalCodes)
	})
	if err != nil {
		return nil, err
	}
	return zone, nil
}

func (r *ShippingRepo) UpdateZone(ctx context.Context, zone *domain.ShippingZone) (*domain.ShippingZone, error) {
	err := runInTx(ctx, r.pool, func(ctx context.Context) error {
		db := dbFrom(ctx, r.pool)
		err := db.QueryRow(ctx, `
			UPDATE shipping_zones
			SET name = $2, distance_from_store_km = $3, is_active = $4, updated_at = now()
			WHERE id = $1
			RETURNING created_at, updated_at`,
			zone.ID, zone.Name, zone.DistanceFromStoreKm, zone.IsActive,
		).Scan(&zone.CreatedAt, &zone.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("zone %d: %w", zone.ID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update zone: %w", err)
		}
		return r.replacePostalCodes(ctx, zone.ID, zone.PostalCodes)
	})
	if err != nil {
		return nil, err
	}
	return zone, nil
}

func (r *ShippingRepo) replacePostalCodes(ctx context.Context, zoneID int32, ranges []domain.PostalCodeRange) error {
	db := dbFrom(ctx, r.pool)

	if _, err := db.Exec(ctx, "DELETE FROM shipping_zone_postal_codes WHERE zone_id = $1", zoneID); err != nil {
		return fmt.Errorf("clear postal code ranges: %w", err)
	}
	for _, pcr := range ranges {
		_, err := db.Exec(ctx, `
			INSERT INTO shipping_zone_postal_codes (zone_id, postal_code_start, postal_code_end, city)
			VALUES ($1, $2, $3, $4)`,
			zoneID, pcr.Start, pcr.End, pcr.City)
		if err != nil {
			return fmt.Errorf("insert postal code range %s: %w", pcr.String(), err)
		}
	}
	return nil
}

// DeleteZone removes the zone; ranges and overrides go with it via cascade.
func (r *ShippingRepo) DeleteZone(ctx context.Context, id int32) error {
	db := dbFrom(ctx, r.pool)

	tag, err := db.Exec(ctx, "DELETE FROM shipping_zones WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("zone %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// --- Rules ---

const ruleColumns = `id, name, description, rule_type, is_active, priority,
	category_scope, category_ids, product_condition, min_order_value,
	flat_rate_price, base_price, price_per_km, max_distance_km,
	estimated_delivery_days, created_at, updated_at`

func scanRule(row pgx.Row) (domain.ShippingRule, error) {
	var rule domain.ShippingRule
	err := row.Scan(
		&rule.ID, &rule.Name, &rule.Description, &rule.RuleType, &rule.IsActive,
		&rule.Priority, &rule.CategoryScope, &rule.CategoryIDs, &rule.ProductCondition,
		&rule.MinOrderValue, &rule.FlatRatePrice, &rule.BasePrice, &rule.PricePerKm,
		&rule.MaxDistanceKm, &rule.EstimatedDeliveryDays, &rule.CreatedAt, &rule.UpdatedAt,
	)
	return rule, err
}

func (r *ShippingRepo) GetAllRules(ctx context.Context) ([]domain.ShippingRule, error) {
	return r.getRules(ctx, "SELECT "+ruleColumns+" FROM shipping_rules ORDER BY priority, id")
}

func (r *ShippingRepo) GetActiveRules(ctx context.Context) ([]domain.ShippingRule, error) {
	return r.getRules(ctx, "SELECT "+ruleColumns+" FROM shipping_rules WHERE is_active ORDER BY priority, id")
}

func (r *ShippingRepo) getRules(ctx context.Context, query string) ([]domain.ShippingRule, error) {
	db := dbFrom(ctx, r.pool)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.ShippingRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *ShippingRepo) GetRuleByID(ctx context.Context, id int32) (*domain.ShippingRule, error) {
	db := dbFrom(ctx, r.pool)

	rule, err := scanRule(db.QueryRow(ctx, "SELECT "+ruleColumns+" FROM shipping_rules WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("rule %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query rule: %w", err)
	}
	return &rule, nil
}

func (r *ShippingRepo) CreateRule(ctx context.Context, rule *domain.ShippingRule) (*domain.ShippingRule, error) {
	db := dbFrom(ctx, r.pool)

	created := *rule
	err := db.QueryRow(ctx, `
		INSERT INTO shipping_rules (
			name, description, rule_type, is_active, priority,
			category_scope, category_ids, product_condition, min_order_value,
			flat_rate_price, base_price, price_per_km, max_distance_km,
			estimated_delivery_days
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`,
		rule.Name, rule.Description, rule.RuleType, rule.IsActive, rule.Priority,
		rule.CategoryScope, categoryIDs(rule.CategoryIDs), rule.ProductCondition, rule.MinOrderValue,
		rule.FlatRatePrice, rule.BasePrice, rule.PricePerKm, rule.MaxDistanceKm,
		rule.EstimatedDeliveryDays,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert rule: %w", err)
	}
	created.ZonePrices = nil
	return &created, nil
}

func (r *ShippingRepo) UpdateRule(ctx context.Context, rule *domain.ShippingRule) (*domain.ShippingRule, error) {
	db := dbFrom(ctx, r.pool)

	updated := *rule
	err := db.QueryRow(ctx, `
		UPDATE shipping_rules SET
			name = $2, description = $3, rule_type = $4, is_active = $5, priority = $6,
			category_scope = $7, category_ids = $8, product_condition = $9,
			min_order_value = $10, flat_rate_price = $11, base_price = $12,
			price_per_km = $13, max_distance_km = $14, estimated_delivery_days = $15,
			updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		rule.ID, rule.Name, rule.Description, rule.RuleType, rule.IsActive, rule.Priority,
		rule.CategoryScope, categoryIDs(rule.CategoryIDs), rule.ProductCondition,
		rule.MinOrderValue, rule.FlatRatePrice, rule.BasePrice,
		rule.PricePerKm, rule.MaxDistanceKm, rule.EstimatedDeliveryDays,
	).Scan(&updated.CreatedAt, &updated.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("rule %d: %w", rule.ID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update rule: %w", err)
	}
	updated.ZonePrices = nil
	return &updated, nil
}

func (r *ShippingRepo) DeleteRule(ctx context.Context, id int32) error {
	db := dbFrom(ctx, r.pool)

	tag, err := db.Exec(ctx, "DELETE FROM shipping_rules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rule %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// categoryIDs never sends NULL for an empty list; the column is NOT NULL.
func categoryIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// --- Zone price overrides ---

const priceColumns = "id, shipping_rule_id, shipping_zone_id, override_price, override_enabled"

func (r *ShippingRepo) GetAllZonePrices(ctx context.Context) ([]domain.ShippingZonePrice, error) {
	return r.getZonePrices(ctx, "SELECT "+priceColumns+" FROM shipping_zone_prices ORDER BY id")
}

func (r *ShippingRepo) GetZonePricesByRule(ctx context.Context, ruleID int32) ([]domain.ShippingZonePrice, error) {
	return r.getZonePrices(ctx,
		"SELECT "+priceColumns+" FROM shipping_zone_prices WHERE shipping_rule_id = $1 ORDER BY id", ruleID)
}

func (r *ShippingRepo) getZonePrices(ctx context.Context, query string, args ...any) ([]domain.ShippingZonePrice, error) {
	db := dbFrom(ctx, r.pool)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query zone prices: %w", err)
	}
	defer rows.Close()

	var prices []domain.ShippingZonePrice
	for rows.Next() {
		var p domain.ShippingZonePrice
		if err := rows.Scan(&p.ID, &p.ShippingRuleID, &p.ShippingZoneID, &p.OverridePrice, &p.OverrideEnabled); err != nil {
			return nil, fmt.Errorf("scan zone price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func (r *ShippingRepo) UpsertZonePrice(ctx context.Context, price *domain.ShippingZonePrice) (*domain.ShippingZonePrice, error) {
	db := dbFrom(ctx, r.pool)

	saved := *price
	err := db.QueryRow(ctx, `
		INSERT INTO shipping_zone_prices (shipping_rule_id, shipping_zone_id, override_price, override_enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (shipping_rule_id, shipping_zone_id)
		DO UPDATE SET override_price = EXCLUDED.override_price, override_enabled = EXCLUDED.override_enabled
		RETURNING id`,
		price.ShippingRuleID, price.ShippingZoneID, price.OverridePrice, price.OverrideEnabled,
	).Scan(&saved.ID)
	if err != nil {
		return nil, fmt.Errorf("upsert zone price: %w", err)
	}
	return &saved, nil
}

func (r *ShippingRepo) UpdateZonePrice(ctx context.Context, price *domain.ShippingZonePrice) (*domain.ShippingZonePrice, error) {
	db := dbFrom(ctx, r.pool)

	saved := *price
	err := db.QueryRow(ctx, `
		UPDATE shipping_zone_prices
		SET override_price = $2, override_enabled = $3
		WHERE id = $1
		RETURNING shipping_rule_id, shipping_zone_id`,
		price.ID, price.OverridePrice, price.OverrideEnabled,
	).Scan(&saved.ShippingRuleID, &saved.ShippingZoneID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("zone price %d: %w", price.ID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update zone price: %w", err)
	}
	return &saved, nil
}

// ReplaceZonePricesForRule swaps the full override set for a rule. Called
// inside the rule-save transaction.
func (r *ShippingRepo) ReplaceZonePricesForRule(ctx context.Context, ruleID int32, prices []domain.ShippingZonePrice) error {
	db := dbFrom(ctx, r.pool)

	if _, err := db.Exec(ctx, "DELETE FROM shipping_zone_prices WHERE shipping_rule_id = $1", ruleID); err != nil {
		return fmt.Errorf("clear zone prices: %w", err)
	}
	for _, p := range prices {
		_, err := db.Exec(ctx, `
			INSERT INTO shipping_zone_prices (shipping_rule_id, shipping_zone_id, override_price, override_enabled)
			VALUES ($1, $2, $3, $4)`,
			ruleID, p.ShippingZoneID, p.OverridePrice, p.OverrideEnabled)
		if err != nil {
			return fmt.Errorf("insert zone price for zone %d: %w", p.ShippingZoneID, err)
		}
	}
	return nil
}
