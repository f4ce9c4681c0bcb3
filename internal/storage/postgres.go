package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"greek-irini/internal/domain"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS menu_items (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			image_url TEXT,
			names JSONB NOT NULL DEFAULT '{}',
			descriptions JSONB NOT NULL DEFAULT '{}',
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			is_popular BOOLEAN NOT NULL DEFAULT FALSE,
			is_new BOOLEAN NOT NULL DEFAULT FALSE,
			is_vegetarian BOOLEAN NOT NULL DEFAULT FALSE,
			is_vegan BOOLEAN NOT NULL DEFAULT FALSE,
			is_gluten_free BOOLEAN NOT NULL DEFAULT FALSE,
			spicy_level INT NOT NULL DEFAULT 0,
			allergens TEXT[],
			preparation_time INT NOT NULL DEFAULT 0,
			calories INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			subtotal NUMERIC(10,2) NOT NULL,
			delivery_fee NUMERIC(10,2) NOT NULL,
			total NUMERIC(10,2) NOT NULL,
			status TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			payment_status TEXT NOT NULL,
			transaction_id TEXT,
			paid_at TIMESTAMPTZ,
			payment_amount NUMERIC(10,2) NOT NULL,
			delivery_type TEXT NOT NULL,
			delivery_estimate TEXT,
			customer JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			estimated_ready_time TIMESTAMPTZ,
			assigned_driver TEXT,
			delivery_departed_at TIMESTAMPTZ,
			estimated_delivery_time TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			position INT NOT NULL,
			item_id TEXT NOT NULL,
			name TEXT NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			quantity INT NOT NULL,
			PRIMARY KEY (order_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS staff_notes (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			author TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS drivers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT,
			status TEXT NOT NULL,
			active_deliveries INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_phone TEXT NOT NULL,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			number_of_guests INT NOT NULL,
			special_requests TEXT,
			status TEXT NOT NULL,
			admin_notes TEXT,
			confirmation_sent_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS site_content (
			section TEXT NOT NULL,
			key TEXT NOT NULL,
			image_url TEXT,
			texts JSONB NOT NULL DEFAULT '{}',
			PRIMARY KEY (section, key)
		)`,
		"CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at DESC)",
	}
	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func jsonText(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

const menuColumns = `id, category, price, COALESCE(image_url, ''), names, descriptions, is_available, is_popular,
	is_new, is_vegetarian, is_vegan, is_gluten_free, spicy_level, allergens, preparation_time, calories`

func (r *PostgresRepository) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+menuColumns+" FROM menu_items ORDER BY category, created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var (
			m           domain.MenuItem
			names, desc []byte
			allergens   []string
		)
		if err := rows.Scan(&m.ID, &m.Category, &m.Price, &m.ImageURL, &names, &desc, &m.IsAvailable, &m.IsPopular,
			&m.IsNew, &m.IsVegetarian, &m.IsVegan, &m.IsGlutenFree, &m.SpicyLevel, pq.Array(&allergens),
			&m.PreparationTime, &m.Calories); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(names, &m.Names); err != nil {
			return nil, fmt.Errorf("menu item %s names: %w", m.ID, err)
		}
		if err := json.Unmarshal(desc, &m.Descriptions); err != nil {
			return nil, fmt.Errorf("menu item %s descriptions: %w", m.ID, err)
		}
		m.Allergens = allergens
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) UpsertMenuItem(ctx context.Context, m *domain.MenuItem) error {
	names, err := jsonText(m.Names)
	if err != nil {
		return err
	}
	desc, err := jsonText(m.Descriptions)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO menu_items (id, category, price, image_url, names, descriptions, is_available, is_popular,
			is_new, is_vegetarian, is_vegan, is_gluten_free, spicy_level, allergens, preparation_time, calories)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category, price = EXCLUDED.price, image_url = EXCLUDED.image_url,
			names = EXCLUDED.names, descriptions = EXCLUDED.descriptions, is_available = EXCLUDED.is_available,
			is_popular = EXCLUDED.is_popular, is_new = EXCLUDED.is_new, is_vegetarian = EXCLUDED.is_vegetarian,
			is_vegan = EXCLUDED.is_vegan, is_gluten_free = EXCLUDED.is_gluten_free,
			spicy_level = EXCLUDED.spicy_level, allergens = EXCLUDED.allergens,
			preparation_time = EXCLUDED.preparation_time, calories = EXCLUDED.calories`,
		m.ID, m.Category, m.Price, m.ImageURL, names, desc, m.IsAvailable, m.IsPopular,
		m.IsNew, m.IsVegetarian, m.IsVegan, m.IsGlutenFree, m.SpicyLevel, pq.Array(m.Allergens),
		m.PreparationTime, m.Calories)
	return err
}

func (r *PostgresRepository) DeleteMenuItem(ctx context.Context, id string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM menu_items WHERE id=$1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CreateOrder writes the order with its items in one transaction. The id is
// assigned by the database.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *domain.Order) error {
	customer, err := jsonText(o.Customer)
	if err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (subtotal, delivery_fee, total, status, payment_method, payment_status, transaction_id,
			paid_at, payment_amount, delivery_type, delivery_estimate, customer, created_at, updated_at,
			estimated_ready_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		o.Subtotal, o.DeliveryFee, o.Total, o.Status, o.Payment.Method, o.Payment.Status, o.Payment.TransactionID,
		nullTime(o.Payment.PaidAt), o.Payment.Amount, o.Delivery.Type, o.Delivery.EstimatedTime, customer,
		o.CreatedAt, o.UpdatedAt, nullTime(o.EstimatedReadyTime),
	).Scan(&o.ID); err != nil {
		return err
	}

	for i, item := range o.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, item_id, name, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, i, item.ID, item.Name, item.Price, item.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const orderColumns = `id, subtotal, delivery_fee, total, status, payment_method, payment_status,
	COALESCE(transaction_id, ''), paid_at, payment_amount, delivery_type, COALESCE(delivery_estimate, ''),
	customer, created_at, updated_at, estimated_ready_time, COALESCE(assigned_driver, ''),
	delivery_departed_at, estimated_delivery_time`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o                            domain.Order
		customer                     []byte
		paidAt, ready, departed, eta sql.NullTime
	)
	if err := row.Scan(&o.ID, &o.Subtotal, &o.DeliveryFee, &o.Total, &o.Status, &o.Payment.Method,
		&o.Payment.Status, &o.Payment.TransactionID, &paidAt, &o.Payment.Amount, &o.Delivery.Type,
		&o.Delivery.EstimatedTime, &customer, &o.CreatedAt, &o.UpdatedAt, &ready, &o.AssignedDriver,
		&departed, &eta); err != nil {
		return o, err
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return o, fmt.Errorf("order %s customer: %w", o.ID, err)
	}
	o.Delivery.Fee = o.DeliveryFee
	o.Payment.PaidAt = timePtr(paidAt)
	o.EstimatedReadyTime = timePtr(ready)
	o.DeliveryDepartedAt = timePtr(departed)
	o.EstimatedDeliveryTime = timePtr(eta)
	return o, nil
}

func (r *PostgresRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	index := make(map[string]int)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	if err := r.eachItem(ctx, "", func(orderID string, item domain.OrderItem) {
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}); err != nil {
		return nil, err
	}
	if err := r.eachNote(ctx, "", func(orderID string, note domain.StaffNote) {
		if i, ok := index[orderID]; ok {
			orders[i].StaffNotes = append(orders[i].StaffNotes, note)
		}
	}); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns nil without error when the order does not exist.
func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.eachItem(ctx, id, func(_ string, item domain.OrderItem) {
		o.Items = append(o.Items, item)
	}); err != nil {
		return nil, err
	}
	if err := r.eachNote(ctx, id, func(_ string, note domain.StaffNote) {
		o.StaffNotes = append(o.StaffNotes, note)
	}); err != nil {
		return nil, err
	}
	return &o, nil
}

// eachItem walks order items, of one order when orderID is set.
func (r *PostgresRepository) eachItem(ctx context.Context, orderID string, fn func(string, domain.OrderItem)) error {
	query := "SELECT order_id, item_id, name, price, quantity FROM order_items"
	var args []any
	if orderID != "" {
		query += " WHERE order_id = $1"
		args = append(args, orderID)
	}
	rows, err := r.DB.QueryContext(ctx, query+" ORDER BY order_id, position", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   string
			item domain.OrderItem
		)
		if err := rows.Scan(&id, &item.ID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return err
		}
		fn(id, item)
	}
	return rows.Err()
}

func (r *PostgresRepository) eachNote(ctx context.Context, orderID string, fn func(string, domain.StaffNote)) error {
	query := "SELECT order_id, id, text, author, created_at FROM staff_notes"
	var args []any
	if orderID != "" {
		query += " WHERE order_id = $1"
		args = append(args, orderID)
	}
	rows, err := r.DB.QueryContext(ctx, query+" ORDER BY created_at", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   string
			note domain.StaffNote
		)
		if err := rows.Scan(&id, &note.ID, &note.Text, &note.Author, &note.Timestamp); err != nil {
			return err
		}
		fn(id, note)
	}
	return rows.Err()
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3", status, at, id)
	return err
}

func (r *PostgresRepository) UpdatePaymentStatus(ctx context.Context, id string, p domain.PaymentInfo, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET payment_status=$1, paid_at=$2, updated_at=$3 WHERE id=$4",
		p.Status, nullTime(p.PaidAt), at, id)
	return err
}

func (r *PostgresRepository) AddStaffNote(ctx context.Context, orderID string, note domain.StaffNote) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO staff_notes (id, order_id, text, author, created_at) VALUES ($1, $2, $3, $4, $5)",
		note.ID, orderID, note.Text, note.Author, note.Timestamp)
	return err
}

func (r *PostgresRepository) AssignDriver(ctx context.Context, orderID, driverID string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET assigned_driver=NULLIF($1, ''), updated_at=$2 WHERE id=$3", driverID, at, orderID)
	return err
}

func (r *PostgresRepository) StartDelivery(ctx context.Context, orderID string, departedAt, eta time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE orders SET status=$1, delivery_departed_at=$2, estimated_delivery_time=$3, updated_at=$2
		WHERE id=$4`, domain.StatusDelivery, departedAt, eta, orderID)
	return err
}

func (r *PostgresRepository) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, COALESCE(phone, ''), status, active_deliveries FROM drivers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []domain.Driver
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.Status, &d.ActiveDeliveries); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (r *PostgresRepository) UpsertDriver(ctx context.Context, d *domain.Driver) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO drivers (id, name, phone, status, active_deliveries) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone,
			status = EXCLUDED.status, active_deliveries = EXCLUDED.active_deliveries`,
		d.ID, d.Name, d.Phone, d.Status, d.ActiveDeliveries)
	return err
}

func (r *PostgresRepository) DeleteDriver(ctx context.Context, id string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM drivers WHERE id=$1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO reservations (customer_name, customer_email, customer_phone, date, time, number_of_guests,
			special_requests, status, admin_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		res.CustomerName, res.CustomerEmail, res.CustomerPhone, res.Date, res.Time, res.NumberOfGuests,
		res.SpecialRequests, res.Status, res.AdminNotes, res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
}

func (r *PostgresRepository) ListReservations(ctx context.Context) ([]domain.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, customer_name, customer_email, customer_phone, date, time, number_of_guests,
			COALESCE(special_requests, ''), status, COALESCE(admin_notes, ''), confirmation_sent_at,
			created_at, updated_at
		FROM reservations
		ORDER BY date, time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var (
			res    domain.Reservation
			sentAt sql.NullTime
		)
		if err := rows.Scan(&res.ID, &res.CustomerName, &res.CustomerEmail, &res.CustomerPhone, &res.Date,
			&res.Time, &res.NumberOfGuests, &res.SpecialRequests, &res.Status, &res.AdminNotes, &sentAt,
			&res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		res.ConfirmationSentAt = timePtr(sentAt)
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateReservation(ctx context.Context, res *domain.Reservation) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE reservations SET status=$1, admin_notes=$2, confirmation_sent_at=$3, updated_at=$4
		WHERE id=$5`,
		res.Status, res.AdminNotes, nullTime(res.ConfirmationSentAt), res.UpdatedAt, res.ID)
	return err
}

func (r *PostgresRepository) LoadSettings(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		groups[key] = json.RawMessage(value)
	}
	return groups, rows.Err()
}

func (r *PostgresRepository) SaveSettingsGroup(ctx context.Context, group string, value any) error {
	raw, err := jsonText(value)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		group, raw)
	return err
}

func (r *PostgresRepository) ListContent(ctx context.Context) ([]domain.SiteContent, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT section, key, COALESCE(image_url, ''), texts FROM site_content ORDER BY section, key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SiteContent
	for rows.Next() {
		var (
			c     domain.SiteContent
			texts []byte
		)
		if err := rows.Scan(&c.Section, &c.Key, &c.ImageURL, &texts); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(texts, &c.Texts); err != nil {
			return nil, fmt.Errorf("content %s/%s: %w", c.Section, c.Key, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpsertContent(ctx context.Context, c *domain.SiteContent) error {
	texts, err := jsonText(c.Texts)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO site_content (section, key, image_url, texts) VALUES ($1, $2, $3, $4)
		ON CONFLICT (section, key) DO UPDATE SET image_url = EXCLUDED.image_url, texts = EXCLUDED.texts`,
		c.Section, c.Key, c.ImageURL, texts)
	return err
}
