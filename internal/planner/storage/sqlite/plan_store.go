package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/coverage.planner/internal/planner/emit"
	"github.com/banshee-data/coverage.planner/internal/planner/geom"
	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
)

// ErrPlanNotFound is returned by Get and Delete for unknown plan IDs.
var ErrPlanNotFound = errors.New("plan not found")

// PlanSummary is a plan row without its waypoints.
type PlanSummary struct {
	ID            string    `json:"plan_id"`
	Frame         string    `json:"frame_id"`
	Strategy      string    `json:"strategy"`
	Stamp         time.Time `json:"stamp"`
	WaypointCount int       `json:"waypoint_count"`
}

// PlanStore persists published plans. It implements emit.Sink.
type PlanStore struct {
	db *sql.DB
}

var _ emit.Sink = (*PlanStore)(nil)

// NewPlanStore creates a new PlanStore.
func NewPlanStore(db *sql.DB) *PlanStore {
	return &PlanStore{db: db}
}

// PublishPlan stores the plan.
func (s *PlanStore) PublishPlan(ctx context.Context, plan *emit.Plan) error {
	return s.Insert(ctx, plan)
}

// Insert writes the plan and its waypoints in one transaction.
// If plan.ID is empty, a new UUID is generated.
func (s *PlanStore) Insert(ctx context.Context, plan *emit.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	if plan.Stamp.IsZero() {
		plan.Stamp = time.Now()
	}
	frame := plan.Frame
	if frame == "" {
		frame = geom.DefaultFrame
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin plan insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO coverage_plans (
			plan_id, frame_id, strategy, stamp_unix_nanos, waypoint_count
		) VALUES (?, ?, ?, ?, ?)`,
		plan.ID, string(frame), plan.Strategy, plan.Stamp.UnixNano(), len(plan.Waypoints),
	)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO coverage_plan_waypoints (
			plan_id, seq, kind, frame_id, x, y, yaw,
			qw, qx, qy, qz, tile_x, tile_y
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare waypoint insert: %w", err)
	}
	defer stmt.Close()

	for i, w := range plan.Waypoints {
		wf := w.Frame
		if wf == "" {
			wf = frame
		}
		q := w.Orientation
		_, err := stmt.ExecContext(ctx,
			plan.ID, i, w.Kind.String(), string(wf),
			w.Position.X, w.Position.Y, w.Yaw,
			q.Real, q.Imag, q.Jmag, q.Kmag,
			w.Tile.X, w.Tile.Y,
		)
		if err != nil {
			return fmt.Errorf("insert waypoint %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit plan insert: %w", err)
	}
	return nil
}

// Get loads a plan with its waypoints in sequence order.
func (s *PlanStore) Get(ctx context.Context, id string) (*emit.Plan, error) {
	var (
		plan  emit.Plan
		frame string
		stamp int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT plan_id, frame_id, strategy, stamp_unix_nanos
		FROM coverage_plans WHERE plan_id = ?`, id,
	).Scan(&plan.ID, &frame, &plan.Strategy, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get plan %s: %w", id, ErrPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	plan.Frame = geom.FrameID(frame)
	plan.Stamp = time.Unix(0, stamp)

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, frame_id, x, y, yaw, qw, qx, qy, qz, tile_x, tile_y
		FROM coverage_plan_waypoints
		WHERE plan_id = ?
		ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query waypoints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind, wf       string
			x, y, yaw      float64
			qw, qx, qy, qz float64
			tx, ty         int
		)
		if err := rows.Scan(&kind, &wf, &x, &y, &yaw, &qw, &qx, &qy, &qz, &tx, &ty); err != nil {
			return nil, fmt.Errorf("scan waypoint: %w", err)
		}
		k, err := path.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		plan.Waypoints = append(plan.Waypoints, path.Waypoint{
			Pose: geom.Pose{
				Frame:       geom.FrameID(wf),
				Position:    r2.Vec{X: x, Y: y},
				Orientation: quat.Number{Real: qw, Imag: qx, Jmag: qy, Kmag: qz},
			},
			Yaw:  yaw,
			Kind: k,
			Tile: grid.Tile{X: tx, Y: ty},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate waypoints: %w", err)
	}
	return &plan, nil
}

// List returns the most recent plans first. A limit <= 0 returns all.
func (s *PlanStore) List(ctx context.Context, limit int) ([]PlanSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT plan_id, frame_id, strategy, stamp_unix_nanos, waypoint_count
		FROM coverage_plans
		ORDER BY stamp_unix_nanos DESC, plan_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []PlanSummary
	for rows.Next() {
		var (
			p     PlanSummary
			stamp int64
		)
		if err := rows.Scan(&p.ID, &p.Frame, &p.Strategy, &stamp, &p.WaypointCount); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		p.Stamp = time.Unix(0, stamp)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a plan; its waypoints cascade.
func (s *PlanStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM coverage_plans WHERE plan_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete plan %s: %w", id, ErrPlanNotFound)
	}
	return nil
}
