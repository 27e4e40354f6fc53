/*
Package sqlite provides SQLite-backed implementations of the catalog,
customer, and order store interfaces.

PURPOSE:
  Optional persistence for the order system. The in-memory stores remain
  the reference implementation of the semantics; this package round-trips
  the same entities through SQLite so state survives process restarts.

KEY TABLES:
  items / item_warehouses:        Catalog with per-warehouse levels. The
                                  position column preserves warehouse
                                  insertion order, which the allocation
                                  algorithm treats as a contract.
  customers / customer_addresses
  / customer_orders:              Ledger with ordered address list and
                                  informational order back-references.
  orders / order_lines:           Orders with positioned line items.
  order_events:                   Append-only audit log.
  counters:                       Order-number sequence. Never rewinds.

DECIMALS:
  Money columns are TEXT holding decimal.Decimal strings. SQLite REAL
  would reintroduce the float drift the decimal type exists to avoid.

CONCURRENCY:
  A mutex serializes writers; SQLite is opened in WAL mode so readers
  don't block. Schema is auto-migrated on Open.

USAGE:
  db, err := sqlite.Open("./orders.db")   // or ":memory:"
  catalogSvc := catalog.NewService(db.Items())
*/
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/vydibot/order-engine/catalog"
	"github.com/vydibot/order-engine/customers"
	"github.com/vydibot/order-engine/orders"
)

// DB wraps a SQLite handle and exposes the three store views.
type DB struct {
	db *sql.DB
	mu sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
	code        TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS item_warehouses (
	item_code TEXT NOT NULL REFERENCES items(code) ON DELETE CASCADE,
	warehouse TEXT NOT NULL,
	position  INTEGER NOT NULL,
	stock     INTEGER NOT NULL,
	min_stock INTEGER,
	PRIMARY KEY (item_code, warehouse)
);

CREATE TABLE IF NOT EXISTS customers (
	code             TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	balance          TEXT NOT NULL,
	credit_limit     TEXT NOT NULL,
	discount_percent TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS customer_addresses (
	customer_code TEXT NOT NULL REFERENCES customers(code) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	address       TEXT NOT NULL,
	PRIMARY KEY (customer_code, position)
);

CREATE TABLE IF NOT EXISTS customer_orders (
	customer_code TEXT NOT NULL REFERENCES customers(code) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	order_number  TEXT NOT NULL,
	PRIMARY KEY (customer_code, position)
);

CREATE TABLE IF NOT EXISTS orders (
	number           TEXT PRIMARY KEY,
	customer_code    TEXT NOT NULL,
	shipping_address TEXT NOT NULL,
	placed_at        TEXT NOT NULL,
	status           TEXT NOT NULL,
	total            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS order_lines (
	order_number TEXT NOT NULL REFERENCES orders(number) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	item_code    TEXT NOT NULL,
	ordered      INTEGER NOT NULL,
	pending      INTEGER NOT NULL,
	unit_price   TEXT NOT NULL,
	subtotal     TEXT NOT NULL,
	PRIMARY KEY (order_number, position)
);

CREATE TABLE IF NOT EXISTS order_events (
	id           TEXT PRIMARY KEY,
	order_number TEXT NOT NULL,
	event_type   TEXT NOT NULL,
	from_status  TEXT NOT NULL DEFAULT '',
	to_status    TEXT NOT NULL DEFAULT '',
	note         TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_events_number ON order_events(order_number);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_code);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

CREATE TABLE IF NOT EXISTS counters (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
`

// Open opens (creating if needed) a SQLite database and migrates the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the underlying handle.
func (d *DB) Close() error { return d.db.Close() }

// Items returns the catalog store view.
func (d *DB) Items() catalog.Store { return &itemStore{d} }

// Customers returns the customer ledger store view.
func (d *DB) Customers() customers.Store { return &customerStore{d} }

// Orders returns the order store view.
func (d *DB) Orders() orders.Store { return &orderStore{d} }

// =============================================================================
// ITEM STORE
// =============================================================================

type itemStore struct{ d *DB }

func (s *itemStore) Put(it *catalog.Item) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	st := it.Snapshot()
	tx, err := s.d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO items (code, name, description, price) VALUES (?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET name=excluded.name,
		 description=excluded.description, price=excluded.price`,
		st.Code, st.Name, st.Description, st.Price.String()); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM item_warehouses WHERE item_code = ?`, st.Code); err != nil {
		return err
	}
	for i, w := range st.Warehouses {
		var min interface{}
		if w.HasMin {
			min = w.MinStock
		}
		if _, err := tx.Exec(
			`INSERT INTO item_warehouses (item_code, warehouse, position, stock, min_stock)
			 VALUES (?, ?, ?, ?, ?)`,
			st.Code, w.Name, i, w.Stock, min); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *itemStore) Get(code string) (*catalog.Item, bool) {
	var st catalog.ItemState
	var price string
	err := s.d.db.QueryRow(
		`SELECT code, name, description, price FROM items WHERE code = ?`, code).
		Scan(&st.Code, &st.Name, &st.Description, &price)
	if err != nil {
		return nil, false
	}
	st.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, false
	}

	rows, err := s.d.db.Query(
		`SELECT warehouse, stock, min_stock FROM item_warehouses
		 WHERE item_code = ? ORDER BY position`, code)
	if err != nil {
		return nil, false
	}
	defer rows.Close()
	for rows.Next() {
		var w catalog.WarehouseLevel
		var min sql.NullInt64
		if err := rows.Scan(&w.Name, &w.Stock, &min); err != nil {
			return nil, false
		}
		if min.Valid {
			w.MinStock = int(min.Int64)
			w.HasMin = true
		}
		st.Warehouses = append(st.Warehouses, w)
	}
	return catalog.Restore(st), true
}

func (s *itemStore) List() []*catalog.Item {
	rows, err := s.d.db.Query(`SELECT code FROM items ORDER BY rowid`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []*catalog.Item
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return out
		}
		if it, ok := s.Get(code); ok {
			out = append(out, it)
		}
	}
	return out
}

func (s *itemStore) Delete(code string) bool {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	res, err := s.d.db.Exec(`DELETE FROM items WHERE code = ?`, code)
	if err != nil {
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *itemStore) Len() int {
	var n int
	if err := s.d.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// =============================================================================
// CUSTOMER STORE
// =============================================================================

type customerStore struct{ d *DB }

func (s *customerStore) Put(c *customers.Customer) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	tx, err := s.d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO customers (code, name, balance, credit_limit, discount_percent)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET name=excluded.name, balance=excluded.balance,
		 credit_limit=excluded.credit_limit, discount_percent=excluded.discount_percent`,
		c.Code, c.Name, c.Balance.String(), c.CreditLimit.String(),
		c.DiscountPercent.String()); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM customer_addresses WHERE customer_code = ?`, c.Code); err != nil {
		return err
	}
	for i, a := range c.ShippingAddresses() {
		if _, err := tx.Exec(
			`INSERT INTO customer_addresses (customer_code, position, address) VALUES (?, ?, ?)`,
			c.Code, i, a); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM customer_orders WHERE customer_code = ?`, c.Code); err != nil {
		return err
	}
	for i, n := range c.Orders() {
		if _, err := tx.Exec(
			`INSERT INTO customer_orders (customer_code, position, order_number) VALUES (?, ?, ?)`,
			c.Code, i, n); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *customerStore) Get(code string) (*customers.Customer, bool) {
	var name, balance, limit, discount string
	err := s.d.db.QueryRow(
		`SELECT name, balance, credit_limit, discount_percent FROM customers WHERE code = ?`, code).
		Scan(&name, &balance, &limit, &discount)
	if err != nil {
		return nil, false
	}

	lim, err := decimal.NewFromString(limit)
	if err != nil {
		return nil, false
	}
	disc, err := decimal.NewFromString(discount)
	if err != nil {
		return nil, false
	}
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, false
	}

	c := customers.New(code, name, lim, disc)
	c.Balance = bal

	addrs, err := s.stringColumn(
		`SELECT address FROM customer_addresses WHERE customer_code = ? ORDER BY position`, code)
	if err != nil {
		return nil, false
	}
	c.SetShippingAddresses(addrs)

	nums, err := s.stringColumn(
		`SELECT order_number FROM customer_orders WHERE customer_code = ? ORDER BY position`, code)
	if err != nil {
		return nil, false
	}
	c.SetOrders(nums)
	return c, true
}

func (s *customerStore) stringColumn(query, code string) ([]string, error) {
	rows, err := s.d.db.Query(query, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *customerStore) List() []*customers.Customer {
	rows, err := s.d.db.Query(`SELECT code FROM customers ORDER BY rowid`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []*customers.Customer
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return out
		}
		if c, ok := s.Get(code); ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *customerStore) Delete(code string) bool {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	res, err := s.d.db.Exec(`DELETE FROM customers WHERE code = ?`, code)
	if err != nil {
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *customerStore) Len() int {
	var n int
	if err := s.d.db.QueryRow(`SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// =============================================================================
// ORDER STORE
// =============================================================================

type orderStore struct{ d *DB }

func (s *orderStore) Put(o *orders.Order) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	tx, err := s.d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO orders (number, customer_code, shipping_address, placed_at, status, total)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(number) DO UPDATE SET status=excluded.status, total=excluded.total`,
		o.Number, o.CustomerCode, o.ShippingAddress,
		o.PlacedAt.Format("2006-01-02"), string(o.Status), o.Total.String()); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM order_lines WHERE order_number = ?`, o.Number); err != nil {
		return err
	}
	for i, l := range o.Lines {
		if _, err := tx.Exec(
			`INSERT INTO order_lines (order_number, position, item_code, ordered, pending, unit_price, subtotal)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.Number, i, l.ItemCode, l.Ordered, l.Pending,
			l.UnitPrice.String(), l.Subtotal.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *orderStore) Get(number string) (*orders.Order, bool) {
	var o orders.Order
	var placedAt, status, total string
	err := s.d.db.QueryRow(
		`SELECT number, customer_code, shipping_address, placed_at, status, total
		 FROM orders WHERE number = ?`, number).
		Scan(&o.Number, &o.CustomerCode, &o.ShippingAddress, &placedAt, &status, &total)
	if err != nil {
		return nil, false
	}
	o.PlacedAt, err = time.ParseInLocation("2006-01-02", placedAt, time.UTC)
	if err != nil {
		return nil, false
	}
	o.Status = orders.Status(status)
	o.Total, err = decimal.NewFromString(total)
	if err != nil {
		return nil, false
	}

	rows, err := s.d.db.Query(
		`SELECT item_code, ordered, pending, unit_price, subtotal
		 FROM order_lines WHERE order_number = ? ORDER BY position`, number)
	if err != nil {
		return nil, false
	}
	defer rows.Close()
	for rows.Next() {
		var l orders.Line
		var price, subtotal string
		if err := rows.Scan(&l.ItemCode, &l.Ordered, &l.Pending, &price, &subtotal); err != nil {
			return nil, false
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, false
		}
		if l.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, false
		}
		o.Lines = append(o.Lines, &l)
	}
	return &o, true
}

func (s *orderStore) List() []*orders.Order {
	rows, err := s.d.db.Query(`SELECT number FROM orders ORDER BY rowid`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []*orders.Order
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return out
		}
		if o, ok := s.Get(number); ok {
			out = append(out, o)
		}
	}
	return out
}

func (s *orderStore) Len() int {
	var n int
	if err := s.d.db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// NextNumber advances the persistent order counter. The counter survives
// restarts so order numbers are never reused.
func (s *orderStore) NextNumber() int {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	var value int
	err := s.d.db.QueryRow(
		`INSERT INTO counters (name, value) VALUES ('order_number', 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1
		 RETURNING value`).Scan(&value)
	if err != nil {
		return 0
	}
	return value
}

func (s *orderStore) AppendEvent(ev orders.Event) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	_, err := s.d.db.Exec(
		`INSERT INTO order_events (id, order_number, event_type, from_status, to_status, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID.String(), ev.OrderNumber, string(ev.Type),
		string(ev.FromStatus), string(ev.ToStatus), ev.Note,
		ev.At.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *orderStore) EventsFor(number string) []orders.Event {
	rows, err := s.d.db.Query(
		`SELECT id, event_type, from_status, to_status, note, created_at
		 FROM order_events WHERE order_number = ? ORDER BY rowid`, number)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []orders.Event
	for rows.Next() {
		var ev orders.Event
		var id, typ, from, to, at string
		if err := rows.Scan(&id, &typ, &from, &to, &ev.Note, &at); err != nil {
			return out
		}
		ev.ID, err = uuid.Parse(id)
		if err != nil {
			return out
		}
		ev.OrderNumber = number
		ev.Type = orders.EventType(typ)
		ev.FromStatus = orders.Status(from)
		ev.ToStatus = orders.Status(to)
		ev.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return out
		}
		out = append(out, ev)
	}
	return out
}
