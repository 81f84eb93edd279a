package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrmateussiilva/api-sgp/internal/domain"
)

// orderColumns must match the Scan order in scanOrder.
const orderColumns = `id, number, entry_date, delivery_date, customer, customer_phone,
	customer_city, customer_state, priority, status, total_value, items_value,
	freight_value, payment_type, payment_notes, shipping_method, notes,
	finance, review, printing, sewing, shipping, ready, items, created_at, updated_at`

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// OrderRepo implements domain.OrderRepository backed by PostgreSQL.
// Mutations use RETURNING, so the committing caller always reads its own
// write.
type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.EntryDate, &o.DeliveryDate, &o.Customer, &o.CustomerPhone,
		&o.CustomerCity, &o.CustomerState, &o.Priority, &o.Status, &o.TotalValue, &o.ItemsValue,
		&o.FreightValue, &o.PaymentType, &o.PaymentNotes, &o.ShippingMethod, &o.Notes,
		&o.Finance, &o.Review, &o.Printing, &o.Sewing, &o.Shipping, &o.Ready,
		&o.Items, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) Create(ctx context.Context, req domain.OrderCreate) (*domain.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `
		INSERT INTO orders (number, entry_date, delivery_date, customer, customer_phone,
			customer_city, customer_state, priority, status, total_value, items_value,
			freight_value, payment_type, payment_notes, shipping_method, notes, items)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+orderColumns,
		req.Number, req.EntryDate, req.DeliveryDate, req.Customer, req.CustomerPhone,
		req.CustomerCity, req.CustomerState, req.Priority, req.Status, req.TotalValue,
		req.ItemsValue, req.FreightValue, req.PaymentType, req.PaymentNotes,
		req.ShippingMethod, req.Notes, req.Items,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	return order, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *OrderRepo) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(filter.Status))
	}
	if filter.Customer != "" {
		conditions = append(conditions, "LOWER(customer) LIKE "+arg("%"+strings.ToLower(filter.Customer)+"%"))
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, "entry_date >= "+arg(filter.DateFrom))
	}
	if filter.DateTo != "" {
		conditions = append(conditions, "entry_date <= "+arg(filter.DateTo))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	query += " ORDER BY created_at DESC OFFSET " + arg(filter.Skip) + " LIMIT " + arg(limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// orderUpdateAssignments maps non-nil update fields to SET assignments in a
// fixed order so the generated clause is deterministic.
func orderUpdateAssignments(req domain.OrderUpdate, arg func(v any) string) []string {
	var set []string
	add := func(column string, value any) {
		set = append(set, column+" = "+arg(value))
	}

	if req.Number != nil {
		add("number", *req.Number)
	}
	if req.EntryDate != nil {
		add("entry_date", *req.EntryDate)
	}
	if req.DeliveryDate != nil {
		add("delivery_date", *req.DeliveryDate)
	}
	if req.Customer != nil {
		add("customer", *req.Customer)
	}
	if req.CustomerPhone != nil {
		add("customer_phone", *req.CustomerPhone)
	}
	if req.CustomerCity != nil {
		add("customer_city", *req.CustomerCity)
	}
	if req.CustomerState != nil {
		add("customer_state", *req.CustomerState)
	}
	if req.Priority != nil {
		add("priority", *req.Priority)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	if req.TotalValue != nil {
		add("total_value", *req.TotalValue)
	}
	if req.ItemsValue != nil {
		add("items_value", *req.ItemsValue)
	}
	if req.FreightValue != nil {
		add("freight_value", *req.FreightValue)
	}
	if req.PaymentType != nil {
		add("payment_type", *req.PaymentType)
	}
	if req.PaymentNotes != nil {
		add("payment_notes", *req.PaymentNotes)
	}
	if req.ShippingMethod != nil {
		add("shipping_method", *req.ShippingMethod)
	}
	if req.Notes != nil {
		add("notes", *req.Notes)
	}
	if req.Finance != nil {
		add("finance", *req.Finance)
	}
	if req.Review != nil {
		add("review", *req.Review)
	}
	if req.Printing != nil {
		add("printing", *req.Printing)
	}
	if req.Sewing != nil {
		add("sewing", *req.Sewing)
	}
	if req.Shipping != nil {
		add("shipping", *req.Shipping)
	}
	if req.Ready != nil {
		add("ready", *req.Ready)
	}
	if req.Items != nil {
		add("items", *req.Items)
	}
	return set
}

func (r *OrderRepo) Update(ctx context.Context, id int64, req domain.OrderUpdate) (*domain.Order, error) {
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	set := orderUpdateAssignments(req, arg)
	set = append(set, "updated_at = NOW()")

	query := `UPDATE orders SET ` + strings.Join(set, ", ") +
		` WHERE id = ` + arg(id) + ` RETURNING ` + orderColumns

	order, err := scanOrder(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return order, nil
}

func (r *OrderRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// LatestID reads the highest committed order id. Zero when no orders exist.
func (r *OrderRepo) LatestID(ctx context.Context) (int64, error) {
	var latest int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM orders`).Scan(&latest)
	if err != nil {
		return 0, fmt.Errorf("failed to read latest order id: %w", err)
	}
	return latest, nil
}
