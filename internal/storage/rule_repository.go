package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/torquepoint/parts-engine/internal/pricing"
)

// RuleRepository handles pricing-rule CRUD with shop scoping.
type RuleRepository struct {
	db DB
}

// NewRuleRepository creates a new rule repository.
func NewRuleRepository(db DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// Create stores a new rule. At most one global rule may exist per shop; a
// second insert fails with ErrGlobalRuleExists.
func (r *RuleRepository) Create(ctx context.Context, rule *pricing.Rule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	if rule.RuleType == pricing.RuleGlobal {
		existing, err := r.globalRuleCount(ctx, rule.ShopID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrGlobalRuleExists
		}
	}

	tiers, err := marshalTiers(rule.MatrixTiers)
	if err != nil {
		return err
	}

	now := time.Now()
	query := `
		INSERT INTO pricing_rules (id, shop_id, rule_type, brand, category,
			markup_type, markup_value, matrix_tiers, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		rule.ID, rule.ShopID, rule.RuleType, rule.Brand, rule.Category,
		rule.MarkupType, rule.MarkupValue, tiers, rule.Priority, now, now,
	)
	return err
}

// GetByID retrieves one rule with shop scoping.
func (r *RuleRepository) GetByID(ctx context.Context, shopID, ruleID string) (*pricing.Rule, error) {
	query := `
		SELECT id, shop_id, rule_type, brand, category, markup_type,
			markup_value, matrix_tiers, priority
		FROM pricing_rules
		WHERE id = $1 AND shop_id = $2
	`
	rule, err := scanRule(r.db.QueryRowContext(ctx, query, ruleID, shopID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rule, err
}

// ListByShop returns all rules for a shop, priority-sorted descending, the
// order the resolver expects.
func (r *RuleRepository) ListByShop(ctx context.Context, shopID string) ([]pricing.Rule, error) {
	query := `
		SELECT id, shop_id, rule_type, brand, category, markup_type,
			markup_value, matrix_tiers, priority
		FROM pricing_rules
		WHERE shop_id = $1
		ORDER BY priority DESC, created_at
	`
	rows, err := r.db.QueryContext(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []pricing.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

// Update rewrites a rule's markup fields and priority.
func (r *RuleRepository) Update(ctx context.Context, rule *pricing.Rule) error {
	tiers, err := marshalTiers(rule.MatrixTiers)
	if err != nil {
		return err
	}

	query := `
		UPDATE pricing_rules
		SET brand = $1, category = $2, markup_type = $3, markup_value = $4,
			matrix_tiers = $5, priority = $6, updated_at = $7
		WHERE id = $8 AND shop_id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		rule.Brand, rule.Category, rule.MarkupType, rule.MarkupValue,
		tiers, rule.Priority, time.Now(), rule.ID, rule.ShopID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a rule with shop scoping.
func (r *RuleRepository) Delete(ctx context.Context, shopID, ruleID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM pricing_rules WHERE id = $1 AND shop_id = $2`, ruleID, shopID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RuleRepository) globalRuleCount(ctx context.Context, shopID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pricing_rules WHERE shop_id = $1 AND rule_type = $2`,
		shopID, pricing.RuleGlobal,
	).Scan(&count)
	return count, err
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*pricing.Rule, error) {
	rule := &pricing.Rule{}
	var tiers []byte
	err := row.Scan(
		&rule.ID, &rule.ShopID, &rule.RuleType, &rule.Brand, &rule.Category,
		&rule.MarkupType, &rule.MarkupValue, &tiers, &rule.Priority,
	)
	if err != nil {
		return nil, err
	}

	if len(tiers) > 0 {
		if err := json.Unmarshal(tiers, &rule.MatrixTiers); err != nil {
			return nil, fmt.Errorf("decode matrix tiers: %w", err)
		}
	}
	return rule, nil
}

func marshalTiers(tiers []pricing.MatrixTier) ([]byte, error) {
	if len(tiers) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(tiers)
	if err != nil {
		return nil, fmt.Errorf("encode matrix tiers: %w", err)
	}
	return data, nil
}
