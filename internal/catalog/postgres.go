package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopfabrik/catalog-import/internal/types"
)

// Store is the Postgres-backed implementation of all catalog collaborators.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store on top of an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var (
	_ AttributeStore = (*Store)(nil)
	_ CategoryStore  = (*Store)(nil)
	_ ScopeStore     = (*Store)(nil)
	_ BulkImporter   = (*Store)(nil)
	_ RunStore       = (*Store)(nil)
)

// AttributeCodes returns all product attribute codes known to the catalog.
func (s *Store) AttributeCodes(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT code FROM product_attributes ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query attribute codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan attribute code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// CreateAttribute persists a new product attribute.
func (s *Store) CreateAttribute(ctx context.Context, attr *NewAttribute) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO product_attributes (
			code, frontend_label, frontend_input, backend_type,
			is_global, is_visible, is_user_defined, is_searchable,
			is_filterable, is_comparable, is_configurable, apply_to,
			default_value, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
	`, attr.Code, attr.FrontendLabel, attr.FrontendInput, attr.BackendType,
		attr.IsGlobal, attr.IsVisible, attr.IsUserDefined, attr.IsSearchable,
		attr.IsFilterable, attr.IsComparable, attr.IsConfigurable, attr.ApplyTo,
		attr.DefaultValue)
	if err != nil {
		return fmt.Errorf("failed to create attribute %s: %w", attr.Code, err)
	}
	return nil
}

// CategoryTree loads the full category tree.
func (s *Store) CategoryTree(ctx context.Context) ([]CategoryNode, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(parent_id, 0), name
		FROM categories
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category tree: %w", err)
	}
	defer rows.Close()

	var nodes []CategoryNode
	for rows.Next() {
		var n CategoryNode
		if err := rows.Scan(&n.ID, &n.ParentID, &n.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// CreateCategory persists a new category and returns its id.
func (s *Store) CreateCategory(ctx context.Context, cat *NewCategory) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO categories (parent_id, name, path, is_active, display_mode, created_at)
		VALUES (NULLIF($1, 0), $2, $3, $4, $5, NOW())
		RETURNING id
	`, cat.ParentID, cat.Name, cat.Path, cat.IsActive, cat.DisplayMode).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create category %s: %w", cat.Name, err)
	}
	return id, nil
}

// ScopeCodes returns all registered store scope codes.
func (s *Store) ScopeCodes(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT code FROM store_scopes ORDER BY sort_order, code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query store scopes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan scope code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// ImportRecords writes flat records into the import staging table in one
// batch and registers unseen SKUs. A default-scope record without a SKU
// counts as invalid together with its store-scoped rows.
func (s *Store) ImportRecords(ctx context.Context, records []types.FlatRecord) (*types.ImportResult, error) {
	result := &types.ImportResult{}
	batchID := uuid.New().String()

	var (
		copyRows   [][]any
		currentSKU string
		skuValid   bool
		seenSKUs   []string
	)
	for _, record := range records {
		if record.Scope() == types.DefaultScope {
			currentSKU, skuValid = record.SKU()
			if skuValid {
				seenSKUs = append(seenSKUs, currentSKU)
			}
		}
		if !skuValid {
			result.Invalid++
			continue
		}
		payload, err := json.Marshal(record)
		if err != nil {
			result.Invalid++
			continue
		}
		var scope *string
		if sc := record.Scope(); sc != types.DefaultScope {
			scope = &sc
		}
		copyRows = append(copyRows, []any{batchID, currentSKU, scope, payload, time.Now()})
		result.Processed++
	}

	if len(copyRows) > 0 {
		_, err := s.pool.CopyFrom(ctx,
			pgx.Identifier{"import_product_rows"},
			[]string{"batch_id", "sku", "store_scope", "payload", "created_at"},
			pgx.CopyFromRows(copyRows))
		if err != nil {
			return nil, fmt.Errorf("failed to copy import rows: %w", err)
		}
	}

	for _, sku := range seenSKUs {
		var created bool
		err := s.pool.QueryRow(ctx, `
			INSERT INTO catalog_products (sku, created_at)
			VALUES ($1, NOW())
			ON CONFLICT (sku) DO NOTHING
			RETURNING true
		`, sku).Scan(&created)
		if err == pgx.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to register sku %s: %w", sku, err)
		}
		result.NewSKUs = append(result.NewSKUs, sku)
	}

	return result, nil
}

// StartRun inserts a run record in running state and returns its id.
func (s *Store) StartRun(ctx context.Context, source types.RunSource) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO import_runs (id, source, status, started_at, created_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`, id, string(source), string(types.RunStatusRunning))
	if err != nil {
		return "", fmt.Errorf("failed to create import run: %w", err)
	}
	return id, nil
}

// FinishRun closes a run record with final status and counts.
func (s *Store) FinishRun(ctx context.Context, id string, status types.RunStatus, files, records, errorCount int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE import_runs
		SET status = $2, file_count = $3, record_count = $4,
		    error_count = $5, completed_at = NOW()
		WHERE id = $1
	`, id, string(status), files, records, errorCount)
	if err != nil {
		return fmt.Errorf("failed to finish import run %s: %w", id, err)
	}
	return nil
}
