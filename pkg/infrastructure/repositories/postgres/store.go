package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
	"github.com/vsinha/picklist/pkg/domain/services"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/memory"
)

// Store reads master data and availability from PostgreSQL.
// The schema is applied separately by the migrate command.
type Store struct {
	pool      *pgxpool.Pool
	serialCmp *services.SerialComparator
}

var (
	_ repositories.AvailabilityProvider = (*Store)(nil)
	_ repositories.ItemRepository       = (*Store)(nil)
	_ repositories.UOMRepository        = (*Store)(nil)
	_ repositories.WarehouseRepository  = (*Store)(nil)
)

// Connect opens a connection pool and checks it
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewStore(pool), nil
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, serialCmp: services.NewSerialComparator()}
}

func (s *Store) Close() {
	s.pool.Close()
}

// Seed writes a snapshot in one transaction. Batch records become ledger entries.
func (s *Store) Seed(ctx context.Context, snapshot *entities.InventorySnapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, u := range snapshot.UOMs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO uoms (name, must_be_whole_number) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET must_be_whole_number = EXCLUDED.must_be_whole_number
		`, u.Name, u.MustBeWholeNumber); err != nil {
			return fmt.Errorf("failed to seed uom %s: %w", u.Name, err)
		}
	}
	for _, it := range snapshot.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO items (item_code, description, stock_uom, has_serial_no, has_batch_no)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (item_code) DO UPDATE SET
				description = EXCLUDED.description,
				stock_uom = EXCLUDED.stock_uom,
				has_serial_no = EXCLUDED.has_serial_no,
				has_batch_no = EXCLUDED.has_batch_no
		`, string(it.ItemCode), it.Description, it.StockUOM, it.HasSerialNo, it.HasBatchNo); err != nil {
			return fmt.Errorf("failed to seed item %s: %w", it.ItemCode, err)
		}
	}
	for _, w := range snapshot.Warehouses {
		if _, err := tx.Exec(ctx, `
			INSERT INTO warehouses (name, parent_warehouse, is_group) VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET
				parent_warehouse = EXCLUDED.parent_warehouse,
				is_group = EXCLUDED.is_group
		`, w.Name, w.ParentWarehouse, w.IsGroup); err != nil {
			return fmt.Errorf("failed to seed warehouse %s: %w", w.Name, err)
		}
	}

	stock := make([]entities.StockRecord, len(snapshot.Stock))
	copy(stock, snapshot.Stock)
	sort.SliceStable(stock, func(i, j int) bool { return stock[i].InsertionOrder < stock[j].InsertionOrder })
	for _, rec := range stock {
		if _, err := tx.Exec(ctx, `
			INSERT INTO bins (item_code, warehouse, actual_qty) VALUES ($1, $2, $3::numeric)
		`, string(rec.ItemCode), rec.Warehouse, rec.Quantity.String()); err != nil {
			return fmt.Errorf("failed to seed stock of %s: %w", rec.ItemCode, err)
		}
	}
	for _, rec := range snapshot.Serials {
		if _, err := tx.Exec(ctx, `
			INSERT INTO serial_nos (serial_no, item_code, warehouse, purchase_date) VALUES ($1, $2, $3, $4)
		`, rec.SerialID, string(rec.ItemCode), rec.Warehouse, rec.AcquiredAt.UTC()); err != nil {
			return fmt.Errorf("failed to seed serial %s: %w", rec.SerialID, err)
		}
	}
	for _, rec := range snapshot.Batches {
		expiry := pgtype.Date{}
		if rec.Expiry != nil {
			expiry = pgtype.Date{Time: *rec.Expiry, Valid: true}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO batches (batch_id, item_code, expiry_date) VALUES ($1, $2, $3)
			ON CONFLICT (batch_id) DO NOTHING
		`, rec.BatchID, string(rec.ItemCode), expiry); err != nil {
			return fmt.Errorf("failed to seed batch %s: %w", rec.BatchID, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO stock_ledger_entries (item_code, warehouse, batch_no, actual_qty)
			VALUES ($1, $2, $3, $4::numeric)
		`, string(rec.ItemCode), rec.Warehouse, rec.BatchID, rec.Quantity.String()); err != nil {
			return fmt.Errorf("failed to seed ledger entry for batch %s: %w", rec.BatchID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) GetItem(ctx context.Context, itemCode entities.ItemCode) (*entities.Item, error) {
	var item entities.Item
	var code string
	err := s.pool.QueryRow(ctx, `
		SELECT item_code, description, stock_uom, has_serial_no, has_batch_no
		FROM items
		WHERE item_code = $1
	`, string(itemCode)).Scan(&code, &item.Description, &item.StockUOM, &item.HasSerialNo, &item.HasBatchNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repositories.ErrItemNotFound, itemCode)
	}
	if err != nil {
		return nil, err
	}
	item.ItemCode = entities.ItemCode(code)
	return &item, nil
}

func (s *Store) TrackingMode(ctx context.Context, itemCode entities.ItemCode) (entities.TrackingMode, error) {
	item, err := s.GetItem(ctx, itemCode)
	if err != nil {
		return entities.TrackingNone, err
	}
	return item.TrackingMode(), nil
}

func (s *Store) IsWholeNumberUnit(ctx context.Context, uom string) (bool, error) {
	var whole bool
	err := s.pool.QueryRow(ctx, `SELECT must_be_whole_number FROM uoms WHERE name = $1`, uom).Scan(&whole)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return whole, err
}

func (s *Store) Exists(ctx context.Context, warehouse string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM warehouses WHERE name = $1)`, warehouse).Scan(&exists)
	return exists, err
}

// Descendants loads the hierarchy and walks it in memory
func (s *Store) Descendants(ctx context.Context, parent string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, parent_warehouse, is_group FROM warehouses`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tree := memory.NewWarehouseRepository()
	for rows.Next() {
		var w entities.Warehouse
		if err := rows.Scan(&w.Name, &w.ParentWarehouse, &w.IsGroup); err != nil {
			return nil, err
		}
		tree.AddWarehouse(w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tree.Descendants(ctx, parent)
}

func (s *Store) AvailableStock(
	ctx context.Context,
	itemCode entities.ItemCode,
	warehouseScope []string,
) ([]entities.StockRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, warehouse, actual_qty::text
		FROM bins
		WHERE item_code = $1
			AND actual_qty > 0
			AND (COALESCE(cardinality($2::text[]), 0) = 0 OR warehouse = ANY($2::text[]))
		ORDER BY id
	`, string(itemCode), warehouseScope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []entities.StockRecord{}
	for rows.Next() {
		var (
			id        int64
			warehouse string
			qtyText   string
		)
		if err := rows.Scan(&id, &warehouse, &qtyText); err != nil {
			return nil, err
		}
		qty, err := decimal.NewFromString(qtyText)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q in bin %d: %w", qtyText, id, err)
		}
		records = append(records, entities.StockRecord{
			ItemCode:       itemCode,
			Warehouse:      warehouse,
			Quantity:       qty,
			InsertionOrder: id,
		})
	}
	return records, rows.Err()
}

// AvailableSerials fetches the oldest limit serials plus any others sharing the last purchase
// date, so serial numbers can be compared naturally within that date before trimming
func (s *Store) AvailableSerials(
	ctx context.Context,
	itemCode entities.ItemCode,
	limit int,
) ([]entities.SerialRecord, error) {
	if limit <= 0 {
		return []entities.SerialRecord{}, nil
	}

	serials, err := s.querySerials(ctx, itemCode, `
		SELECT serial_no, warehouse, purchase_date
		FROM serial_nos
		WHERE item_code = $1 AND warehouse <> ''
		ORDER BY purchase_date, serial_no
		LIMIT $2
	`, string(itemCode), limit)
	if err != nil {
		return nil, err
	}

	if len(serials) == limit {
		fetched := make([]string, len(serials))
		for i, rec := range serials {
			fetched[i] = rec.SerialID
		}
		ties, err := s.querySerials(ctx, itemCode, `
			SELECT serial_no, warehouse, purchase_date
			FROM serial_nos
			WHERE item_code = $1 AND warehouse <> ''
				AND purchase_date = $2 AND serial_no <> ALL($3::text[])
		`, string(itemCode), serials[len(serials)-1].AcquiredAt, fetched)
		if err != nil {
			return nil, err
		}
		serials = append(serials, ties...)
	}

	s.serialCmp.SortByAcquisition(serials)
	if len(serials) > limit {
		serials = serials[:limit]
	}
	return serials, nil
}

func (s *Store) querySerials(
	ctx context.Context,
	itemCode entities.ItemCode,
	query string,
	args ...any,
) ([]entities.SerialRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	serials := []entities.SerialRecord{}
	for rows.Next() {
		rec := entities.SerialRecord{ItemCode: itemCode}
		if err := rows.Scan(&rec.SerialID, &rec.Warehouse, &rec.AcquiredAt); err != nil {
			return nil, err
		}
		rec.AcquiredAt = rec.AcquiredAt.UTC()
		serials = append(serials, rec)
	}
	return serials, rows.Err()
}

// AvailableBatches nets the ledger per batch and warehouse in SQL
func (s *Store) AvailableBatches(
	ctx context.Context,
	itemCode entities.ItemCode,
	referenceDate time.Time,
) ([]entities.BatchRecord, error) {
	y, m, d := referenceDate.Date()
	refDay := pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}

	rows, err := s.pool.Query(ctx, `
		SELECT sle.batch_no, sle.warehouse, SUM(sle.actual_qty)::text, b.expiry_date
		FROM stock_ledger_entries sle
		JOIN batches b ON b.batch_id = sle.batch_no
		WHERE sle.item_code = $1
			AND COALESCE(b.expiry_date, DATE '2200-01-01') > $2
		GROUP BY sle.batch_no, sle.warehouse, b.expiry_date
		HAVING SUM(sle.actual_qty) > 0
		ORDER BY b.expiry_date ASC NULLS LAST, sle.batch_no, sle.warehouse
	`, string(itemCode), refDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := []entities.BatchRecord{}
	for rows.Next() {
		var (
			rec     = entities.BatchRecord{ItemCode: itemCode}
			qtyText string
			expiry  pgtype.Date
		)
		if err := rows.Scan(&rec.BatchID, &rec.Warehouse, &qtyText, &expiry); err != nil {
			return nil, err
		}
		rec.Quantity, err = decimal.NewFromString(qtyText)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q for batch %s: %w", qtyText, rec.BatchID, err)
		}
		if expiry.Valid {
			t := expiry.Time
			rec.Expiry = &t
		}
		batches = append(batches, rec)
	}
	return batches, rows.Err()
}
