package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/platform/db"
)

const dateLayout = "2006-01-02"

//go:embed schema.sql
var schemaSQL string

// Postgres persists records in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a Postgres store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates missing tables.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Load truncates every table and inserts ds with its ids preserved.
func (p *Postgres) Load(ctx context.Context, ds Dataset) error {
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE order_items, orders, products, customers, users, booker_locations RESTART IDENTITY`); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, u := range ds.Users {
			batch.Queue(`INSERT INTO users (id, username, email, role, password_hash) VALUES ($1,$2,$3,$4,$5)`,
				u.ID, u.Username, u.Email, string(u.Role), u.PasswordHash)
		}
		for _, pr := range ds.Products {
			expiry, err := parseDate(pr.ExpiryDate)
			if err != nil {
				return err
			}
			batch.Queue(`INSERT INTO products (id, name, category, quantity, price, supplier, expiry_date) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				pr.ID, pr.Name, pr.Category, pr.Quantity, pr.Price, pr.Supplier, expiry)
		}
		for _, c := range ds.Customers {
			batch.Queue(`INSERT INTO customers (id, name, phone, address, route) VALUES ($1,$2,$3,$4,$5)`,
				c.ID, c.Name, c.Phone, c.Address, c.Route)
		}
		for _, o := range ds.Orders {
			date, err := parseDate(o.Date)
			if err != nil {
				return err
			}
			batch.Queue(`INSERT INTO orders (id, customer_id, order_date, total, status) VALUES ($1,$2,$3,$4,$5)`,
				o.ID, o.CustomerID, date, o.Total, string(o.Status))
			for _, item := range o.Items {
				batch.Queue(`INSERT INTO order_items (id, order_id, product_id, quantity, price, subtotal) VALUES ($1,$2,$3,$4,$5,$6)`,
					item.ID, o.ID, item.ProductID, item.Quantity, item.Price, item.Subtotal)
			}
		}
		for _, l := range ds.Locations {
			batch.Queue(`INSERT INTO booker_locations (id, username, latitude, longitude, status) VALUES ($1,$2,$3,$4,$5)`,
				l.ID, l.Username, l.Latitude, l.Longitude, l.Status)
		}
		for _, table := range []string{"users", "products", "customers", "orders", "order_items"} {
			batch.Queue(fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`, table, table))
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (p *Postgres) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return p.queryProducts(ctx, `SELECT id, name, category, quantity, price, supplier, expiry_date FROM products ORDER BY id`)
}

func (p *Postgres) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	products, err := p.queryProducts(ctx, `SELECT id, name, category, quantity, price, supplier, expiry_date FROM products WHERE id=$1`, id)
	if err != nil {
		return domain.Product{}, err
	}
	if len(products) == 0 {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return products[0], nil
}

func (p *Postgres) GetProducts(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	out := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := p.queryProducts(ctx, `SELECT id, name, category, quantity, price, supplier, expiry_date FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, pr := range products {
		out[pr.ID] = pr
	}
	return out, nil
}

func (p *Postgres) DeleteProduct(ctx context.Context, id int64) error {
	return p.deleteByID(ctx, "products", "product", id)
}

func (p *Postgres) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return p.queryCustomers(ctx, `SELECT id, name, phone, address, route FROM customers ORDER BY id`)
}

func (p *Postgres) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	customers, err := p.queryCustomers(ctx, `SELECT id, name, phone, address, route FROM customers WHERE id=$1`, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if len(customers) == 0 {
		return domain.Customer{}, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	return customers[0], nil
}

func (p *Postgres) DeleteCustomer(ctx context.Context, id int64) error {
	return p.deleteByID(ctx, "customers", "customer", id)
}

func (p *Postgres) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return p.queryOrders(ctx, `SELECT id, customer_id, order_date, total, status FROM orders ORDER BY id`)
}

func (p *Postgres) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	orders, err := p.queryOrders(ctx, `SELECT id, customer_id, order_date, total, status FROM orders WHERE id=$1`, id)
	if err != nil {
		return domain.Order{}, err
	}
	if len(orders) == 0 {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return orders[0], nil
}

func (p *Postgres) CreateOrder(ctx context.Context, in NewOrderInput) (domain.Order, error) {
	date, err := parseDate(in.Date)
	if err != nil {
		return domain.Order{}, err
	}
	draft := domain.NewOrder(0, in.CustomerID, in.Date, 0, in.Lines)
	err = db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO orders (customer_id, order_date, total, status) VALUES ($1,$2,$3,$4) RETURNING id`,
			draft.CustomerID, date, draft.Total, string(draft.Status)).Scan(&draft.ID); err != nil {
			return err
		}
		for i := range draft.Items {
			item := &draft.Items[i]
			if err := tx.QueryRow(ctx, `INSERT INTO order_items (order_id, product_id, quantity, price, subtotal) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
				draft.ID, item.ProductID, item.Quantity, item.Price, item.Subtotal).Scan(&item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("store: create order: %w", err)
	}
	return draft, nil
}

func (p *Postgres) DeleteOrder(ctx context.Context, id int64) error {
	return p.deleteByID(ctx, "orders", "order", id)
}

func (p *Postgres) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	tag, err := p.pool.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, string(status))
	if err != nil {
		return domain.Order{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return p.GetOrder(ctx, id)
}

func (p *Postgres) Authenticate(ctx context.Context, identifier, secret string) (domain.User, error) {
	var (
		rec  UserRecord
		role string
	)
	err := p.pool.QueryRow(ctx, `SELECT id, username, email, role, password_hash FROM users WHERE username=$1 OR email=$1 LIMIT 1`, identifier).
		Scan(&rec.ID, &rec.Username, &rec.Email, &role, &rec.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	rec.Role = domain.ParseRole(role)
	if !rec.Matches(identifier, secret) {
		return domain.User{}, ErrInvalidCredentials
	}
	return rec.User, nil
}

func (p *Postgres) ListBookerLocations(ctx context.Context) ([]domain.BookerLocation, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, username, latitude, longitude, status FROM booker_locations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	locations := []domain.BookerLocation{}
	for rows.Next() {
		var l domain.BookerLocation
		if err := rows.Scan(&l.ID, &l.Username, &l.Latitude, &l.Longitude, &l.Status); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (p *Postgres) queryProducts(ctx context.Context, sql string, args ...any) ([]domain.Product, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []domain.Product{}
	for rows.Next() {
		var (
			pr     domain.Product
			expiry time.Time
		)
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Category, &pr.Quantity, &pr.Price, &pr.Supplier, &expiry); err != nil {
			return nil, err
		}
		pr.ExpiryDate = expiry.Format(dateLayout)
		products = append(products, pr)
	}
	return products, rows.Err()
}

func (p *Postgres) queryCustomers(ctx context.Context, sql string, args ...any) ([]domain.Customer, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	customers := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.Route); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (p *Postgres) queryOrders(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	orders := []domain.Order{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			o      domain.Order
			date   time.Time
			status string
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &date, &o.Total, &status); err != nil {
			rows.Close()
			return nil, err
		}
		o.Date = date.Format(dateLayout)
		o.Status = domain.OrderStatus(status)
		o.Items = []domain.OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	itemRows, err := p.pool.Query(ctx, `SELECT id, order_id, product_id, quantity, price, subtotal FROM order_items WHERE order_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var (
			item    domain.OrderItem
			orderID int64
		)
		if err := itemRows.Scan(&item.ID, &orderID, &item.ProductID, &item.Quantity, &item.Price, &item.Subtotal); err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}

func (p *Postgres) deleteByID(ctx context.Context, table, entity string, id int64) error {
	tag, err := p.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, table), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse date %q: %w", value, err)
	}
	return t, nil
}

var _ Store = (*Postgres)(nil)
