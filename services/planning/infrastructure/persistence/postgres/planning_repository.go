package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/smartfactory/pkg/database"
	plandomain "github.com/ghuser/smartfactory/services/planning/domain"
	"github.com/ghuser/smartfactory/services/planning/domain/models"
)

const pgUniqueViolation = "23505"

// PlanningRepository implements repositories.PlanningRepository against PostgreSQL.
type PlanningRepository struct {
	db *database.Database
}

// NewPlanningRepository returns a PlanningRepository backed by the given
// connection pool.
func NewPlanningRepository(db *database.Database) *PlanningRepository {
	return &PlanningRepository{db: db}
}

// PromotePending runs the scheduler's lock-score-promote cycle in one
// transaction. The FOR UPDATE lock on the pending set serializes concurrent
// promotion runs.
func (r *PlanningRepository) PromotePending(ctx context.Context, k int, score func(order models.PendingOrder) float64) ([]models.PendingOrder, error) {
	var promoted []models.PendingOrder
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, order_no, due_date, processing_time, priority, created_at
			FROM orders WHERE status = 'pending' FOR UPDATE`)
		if err != nil {
			return fmt.Errorf("lock pending orders: %w", err)
		}
		pending, err := scanPendingOrders(rows)
		if err != nil {
			return err
		}

		for i := range pending {
			p := score(pending[i])
			pending[i].Priority = &p
			if _, err := tx.ExecContext(ctx, `
				UPDATE orders SET priority = $1 WHERE id = $2`, p, pending[i].ID,
			); err != nil {
				return fmt.Errorf("persist priority: %w", err)
			}
		}

		sort.SliceStable(pending, func(i, j int) bool {
			if *pending[i].Priority != *pending[j].Priority {
				return *pending[i].Priority < *pending[j].Priority
			}
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		})
		if k > len(pending) {
			k = len(pending)
		}

		for _, order := range pending[:k] {
			if _, err := tx.ExecContext(ctx, `
				UPDATE orders SET status = 'processing' WHERE id = $1`, order.ID,
			); err != nil {
				return fmt.Errorf("promote order: %w", err)
			}
			promoted = append(promoted, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// ProcessingOrders returns orders in the processing status, smallest priority
// first with unscored orders last.
func (r *PlanningRepository) ProcessingOrders(ctx context.Context) ([]models.PendingOrder, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, order_no, due_date, processing_time, priority, created_at
		FROM orders WHERE status = 'processing'
		ORDER BY priority ASC NULLS LAST, created_at`)
	if err != nil {
		return nil, fmt.Errorf("query processing orders: %w", err)
	}
	return scanPendingOrders(rows)
}

// CreateMachine persists a new machine.
func (r *PlanningRepository) CreateMachine(ctx context.Context, machine *models.Machine) error {
	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO machines (id, name, status, capacity, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		machine.ID, machine.Name, machine.Status, machine.Capacity, machine.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", plandomain.ErrMachineAlreadyExists, machine.Name)
		}
		return fmt.Errorf("insert machine: %w", err)
	}
	return nil
}

// Machines returns machines, optionally filtered by status.
func (r *PlanningRepository) Machines(ctx context.Context, status *models.MachineStatus) ([]models.Machine, error) {
	query := `SELECT id, name, status, capacity, created_at FROM machines`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY name`

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query machines: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var machines []models.Machine
	for rows.Next() {
		var m models.Machine
		var status string
		if err := rows.Scan(&m.ID, &m.Name, &status, &m.Capacity, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan machine: %w", err)
		}
		m.Status = models.MachineStatus(status)
		machines = append(machines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate machines: %w", err)
	}
	return machines, nil
}

// UpsertAssignments writes the assignments in one transaction, overwriting
// the time window of any existing (order, machine) pair.
func (r *PlanningRepository) UpsertAssignments(ctx context.Context, assignments []models.ProductionAssignment) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, a := range assignments {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO production_assignments (order_id, machine_id, start_time, end_time)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (order_id, machine_id)
				DO UPDATE SET start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time`,
				a.OrderID, a.MachineID, a.StartTime, a.EndTime,
			); err != nil {
				return fmt.Errorf("upsert assignment: %w", err)
			}
		}
		return nil
	})
}

// Plan returns every assignment joined with order and machine names.
func (r *PlanningRepository) Plan(ctx context.Context) ([]models.PlanEntry, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT pa.order_id, o.order_no, pa.machine_id, m.name, pa.start_time, pa.end_time
		FROM production_assignments pa
		JOIN orders o ON o.id = pa.order_id
		JOIN machines m ON m.id = pa.machine_id
		ORDER BY pa.start_time`)
	if err != nil {
		return nil, fmt.Errorf("query production plan: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var entries []models.PlanEntry
	for rows.Next() {
		var e models.PlanEntry
		if err := rows.Scan(&e.OrderID, &e.OrderNo, &e.MachineID, &e.MachineName, &e.StartTime, &e.EndTime); err != nil {
			return nil, fmt.Errorf("scan plan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan entries: %w", err)
	}
	return entries, nil
}

// SalesHistory returns total demand per date across all items.
func (r *PlanningRepository) SalesHistory(ctx context.Context) ([]models.SalesPoint, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT recorded_on, SUM(quantity)
		FROM sales_history GROUP BY recorded_on ORDER BY recorded_on`)
	if err != nil {
		return nil, fmt.Errorf("query sales history: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var points []models.SalesPoint
	for rows.Next() {
		var p models.SalesPoint
		if err := rows.Scan(&p.RecordedOn, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scan sales point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales history: %w", err)
	}
	return points, nil
}

func scanPendingOrders(rows *sql.Rows) ([]models.PendingOrder, error) {
	defer rows.Close() //nolint:errcheck

	var orders []models.PendingOrder
	for rows.Next() {
		var o models.PendingOrder
		if err := rows.Scan(&o.ID, &o.OrderNo, &o.DueDate, &o.ProcessingDays, &o.Priority, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}
