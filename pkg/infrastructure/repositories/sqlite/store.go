package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pressly/goose/v3/database"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
	"github.com/vsinha/picklist/pkg/domain/services"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/migrations"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// Store reads master data and availability from a SQLite database.
// Quantities are stored as decimal text and summed in Go.
type Store struct {
	db        *sql.DB
	serialCmp *services.SerialComparator
}

var (
	_ repositories.AvailabilityProvider = (*Store)(nil)
	_ repositories.ItemRepository       = (*Store)(nil)
	_ repositories.UOMRepository        = (*Store)(nil)
	_ repositories.WarehouseRepository  = (*Store)(nil)
)

// Open opens the database at dsn and applies pending migrations
func Open(ctx context.Context, dsn string) (*Store, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", dsn+sep+"_pragma=busy_timeout=5000&_pragma=foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}
	if _, err := migrations.Up(ctx, db, database.DialectSQLite3); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, serialCmp: services.NewSerialComparator()}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Seed writes a snapshot in one transaction. Batch records become ledger entries.
func (s *Store) Seed(ctx context.Context, snapshot *entities.InventorySnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range snapshot.UOMs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO uoms (name, must_be_whole_number) VALUES (?, ?)
			ON CONFLICT (name) DO UPDATE SET must_be_whole_number = excluded.must_be_whole_number
		`, u.Name, u.MustBeWholeNumber); err != nil {
			return fmt.Errorf("failed to seed uom %s: %w", u.Name, err)
		}
	}
	for _, it := range snapshot.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (item_code, description, stock_uom, has_serial_no, has_batch_no)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (item_code) DO UPDATE SET
				description = excluded.description,
				stock_uom = excluded.stock_uom,
				has_serial_no = excluded.has_serial_no,
				has_batch_no = excluded.has_batch_no
		`, string(it.ItemCode), it.Description, it.StockUOM, it.HasSerialNo, it.HasBatchNo); err != nil {
			return fmt.Errorf("failed to seed item %s: %w", it.ItemCode, err)
		}
	}
	for _, w := range snapshot.Warehouses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO warehouses (name, parent_warehouse, is_group) VALUES (?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET
				parent_warehouse = excluded.parent_warehouse,
				is_group = excluded.is_group
		`, w.Name, w.ParentWarehouse, w.IsGroup); err != nil {
			return fmt.Errorf("failed to seed warehouse %s: %w", w.Name, err)
		}
	}

	stock := make([]entities.StockRecord, len(snapshot.Stock))
	copy(stock, snapshot.Stock)
	sort.SliceStable(stock, func(i, j int) bool { return stock[i].InsertionOrder < stock[j].InsertionOrder })
	for _, rec := range stock {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bins (item_code, warehouse, actual_qty) VALUES (?, ?, ?)
		`, string(rec.ItemCode), rec.Warehouse, rec.Quantity.String()); err != nil {
			return fmt.Errorf("failed to seed stock of %s: %w", rec.ItemCode, err)
		}
	}
	for _, rec := range snapshot.Serials {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO serial_nos (serial_no, item_code, warehouse, purchase_date) VALUES (?, ?, ?, ?)
		`, rec.SerialID, string(rec.ItemCode), rec.Warehouse, rec.AcquiredAt.UTC().Format(timestampLayout)); err != nil {
			return fmt.Errorf("failed to seed serial %s: %w", rec.SerialID, err)
		}
	}
	for _, rec := range snapshot.Batches {
		var expiry sql.NullString
		if rec.Expiry != nil {
			expiry = sql.NullString{String: rec.Expiry.Format(dateLayout), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO batches (batch_id, item_code, expiry_date) VALUES (?, ?, ?)
			ON CONFLICT (batch_id) DO NOTHING
		`, rec.BatchID, string(rec.ItemCode), expiry); err != nil {
			return fmt.Errorf("failed to seed batch %s: %w", rec.BatchID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stock_ledger_entries (item_code, warehouse, batch_no, actual_qty) VALUES (?, ?, ?, ?)
		`, string(rec.ItemCode), rec.Warehouse, rec.BatchID, rec.Quantity.String()); err != nil {
			return fmt.Errorf("failed to seed ledger entry for batch %s: %w", rec.BatchID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetItem(ctx context.Context, itemCode entities.ItemCode) (*entities.Item, error) {
	var item entities.Item
	var code string
	err := s.db.QueryRowContext(ctx, `
		SELECT item_code, description, stock_uom, has_serial_no, has_batch_no
		FROM items
		WHERE item_code = ?
	`, string(itemCode)).Scan(&code, &item.Description, &item.StockUOM, &item.HasSerialNo, &item.HasBatchNo)
	if err == sql.ErrNoRows {
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
	err := s.db.QueryRowContext(ctx, `SELECT must_be_whole_number FROM uoms WHERE name = ?`, uom).Scan(&whole)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return whole, err
}

func (s *Store) Exists(ctx context.Context, warehouse string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM warehouses WHERE name = ?`, warehouse).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Descendants loads the hierarchy and walks it in memory
func (s *Store) Descendants(ctx context.Context, parent string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, parent_warehouse, is_group FROM warehouses`)
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
	query := `SELECT id, warehouse, actual_qty FROM bins WHERE item_code = ?`
	args := []interface{}{string(itemCode)}
	if len(warehouseScope) > 0 {
		query += ` AND warehouse IN (?` + strings.Repeat(`, ?`, len(warehouseScope)-1) + `)`
		for _, w := range warehouseScope {
			args = append(args, w)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
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
		if !qty.IsPositive() {
			continue
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
		WHERE item_code = ? AND warehouse != ''
		ORDER BY purchase_date, serial_no
		LIMIT ?
	`, string(itemCode), limit)
	if err != nil {
		return nil, err
	}

	if len(serials) == limit {
		last := serials[len(serials)-1].AcquiredAt.UTC().Format(timestampLayout)
		ties, err := s.querySerials(ctx, itemCode, `
			SELECT serial_no, warehouse, purchase_date
			FROM serial_nos
			WHERE item_code = ? AND warehouse != '' AND purchase_date = ?
		`, string(itemCode), last)
		if err != nil {
			return nil, err
		}
		serials = mergeSerials(serials, ties)
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
	args ...interface{},
) ([]entities.SerialRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	serials := []entities.SerialRecord{}
	for rows.Next() {
		var serialNo, warehouse, purchased string
		if err := rows.Scan(&serialNo, &warehouse, &purchased); err != nil {
			return nil, err
		}
		var acquiredAt time.Time
		if purchased != "" {
			acquiredAt, err = time.Parse(timestampLayout, purchased)
			if err != nil {
				return nil, fmt.Errorf("invalid purchase date %q for serial %s: %w", purchased, serialNo, err)
			}
		}
		serials = append(serials, entities.SerialRecord{
			ItemCode:   itemCode,
			SerialID:   serialNo,
			Warehouse:  warehouse,
			AcquiredAt: acquiredAt,
		})
	}
	return serials, rows.Err()
}

// mergeSerials appends the records of extra not already in serials
func mergeSerials(serials, extra []entities.SerialRecord) []entities.SerialRecord {
	seen := make(map[string]bool, len(serials))
	for _, rec := range serials {
		seen[rec.SerialID] = true
	}
	for _, rec := range extra {
		if !seen[rec.SerialID] {
			serials = append(serials, rec)
			seen[rec.SerialID] = true
		}
	}
	return serials
}

// AvailableBatches nets ledger entries per batch and warehouse
func (s *Store) AvailableBatches(
	ctx context.Context,
	itemCode entities.ItemCode,
	referenceDate time.Time,
) ([]entities.BatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sle.batch_no, sle.warehouse, sle.actual_qty, b.expiry_date
		FROM stock_ledger_entries sle
		JOIN batches b ON b.batch_id = sle.batch_no
		WHERE sle.item_code = ?
			AND COALESCE(b.expiry_date, '2200-01-01') > ?
		ORDER BY sle.id
	`, string(itemCode), referenceDate.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ledger := memory.NewInventoryRepository()
	for rows.Next() {
		var (
			batchNo, warehouse, qtyText string
			expiryText                  sql.NullString
		)
		if err := rows.Scan(&batchNo, &warehouse, &qtyText, &expiryText); err != nil {
			return nil, err
		}
		qty, err := decimal.NewFromString(qtyText)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q for batch %s: %w", qtyText, batchNo, err)
		}
		rec := entities.BatchRecord{ItemCode: itemCode, BatchID: batchNo, Warehouse: warehouse, Quantity: qty}
		if expiryText.Valid {
			expiry, err := time.Parse(dateLayout, expiryText.String)
			if err != nil {
				return nil, fmt.Errorf("invalid expiry %q for batch %s: %w", expiryText.String, batchNo, err)
			}
			rec.Expiry = &expiry
		}
		ledger.AddBatch(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ledger.AvailableBatches(ctx, itemCode, referenceDate)
}
