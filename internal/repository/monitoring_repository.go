package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/backoffice-suite/internal/domain"
)

// ServerRepository persists monitored servers.
type ServerRepository interface {
	Create(ctx context.Context, server *domain.Server) error
	List(ctx context.Context) ([]domain.Server, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Server, error)
	GetByIP(ctx context.Context, ip string) (*domain.Server, error)
	GetActiveByIP(ctx context.Context, ip string) (*domain.Server, error)
}

// AlertRuleRepository persists alert rules, unique per (server, metric).
type AlertRuleRepository interface {
	// Upsert replaces the threshold when a rule for the pair already exists.
	Upsert(ctx context.Context, rule *domain.AlertRule) error
}

// MetricTx exposes the statements the metric-submission workflow runs inside
// one transaction.
type MetricTx interface {
	InsertMetric(ctx context.Context, metric *domain.Metric) error
	RulesForServer(ctx context.Context, serverID string) ([]domain.AlertRule, error)
	InsertAlertLog(ctx context.Context, log *domain.AlertLog) error
}

// MetricRepository persists metric readings and hosts the submission
// transaction boundary.
type MetricRepository interface {
	RunSubmit(ctx context.Context, fn func(tx MetricTx) error) error
	LatestForServer(ctx context.Context, serverID string) (*domain.Metric, error)
}

// AlertLogRepository reads back triggered alerts.
type AlertLogRepository interface {
	List(ctx context.Context, isResolved *bool) ([]domain.AlertLog, error)
}

type serverRepository struct {
	pool *pgxpool.Pool
}

// NewServerRepository instantiates repository.
func NewServerRepository(pool *pgxpool.Pool) ServerRepository {
	return &serverRepository{pool: pool}
}

func (r *serverRepository) Create(ctx context.Context, server *domain.Server) error {
	const query = `
        INSERT INTO servers (name, ip_address, is_active, added_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		server.Name, server.IPAddress, server.IsActive, server.AddedByID,
	).Scan(&server.ID)
}

func (r *serverRepository) List(ctx context.Context) ([]domain.Server, error) {
	const query = `
        SELECT id, name, ip_address, is_active, added_by
        FROM servers ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var servers []domain.Server
	for rows.Next() {
		var s domain.Server
		if err := rows.Scan(&s.ID, &s.Name, &s.IPAddress, &s.IsActive, &s.AddedByID); err != nil {
			return nil, err
		}
		servers = append(servers, s)
	}
	return servers, rows.Err()
}

func (r *serverRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM servers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serverRepository) GetByID(ctx context.Context, id string) (*domain.Server, error) {
	const query = `
        SELECT id, name, ip_address, is_active, added_by
        FROM servers WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *serverRepository) GetByIP(ctx context.Context, ip string) (*domain.Server, error) {
	const query = `
        SELECT id, name, ip_address, is_active, added_by
        FROM servers WHERE ip_address=$1`
	return r.fetchSingle(ctx, query, ip)
}

func (r *serverRepository) GetActiveByIP(ctx context.Context, ip string) (*domain.Server, error) {
	const query = `
        SELECT id, name, ip_address, is_active, added_by
        FROM servers WHERE ip_address=$1 AND is_active`
	return r.fetchSingle(ctx, query, ip)
}

func (r *serverRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Server, error) {
	var s domain.Server
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&s.ID, &s.Name, &s.IPAddress, &s.IsActive, &s.AddedByID,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

type alertRuleRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRuleRepository instantiates repository.
func NewAlertRuleRepository(pool *pgxpool.Pool) AlertRuleRepository {
	return &alertRuleRepository{pool: pool}
}

func (r *alertRuleRepository) Upsert(ctx context.Context, rule *domain.AlertRule) error {
	const query = `
        INSERT INTO alert_rules (server_id, metric_name, threshold)
        VALUES ($1,$2,$3)
        ON CONFLICT (server_id, metric_name) DO UPDATE SET threshold = EXCLUDED.threshold
        RETURNING id`
	return r.pool.QueryRow(ctx, query, rule.ServerID, rule.MetricName, rule.Threshold).
		Scan(&rule.ID)
}

type metricRepository struct {
	pool *pgxpool.Pool
}

// NewMetricRepository instantiates repository.
func NewMetricRepository(pool *pgxpool.Pool) MetricRepository {
	return &metricRepository{pool: pool}
}

func (r *metricRepository) RunSubmit(ctx context.Context, fn func(tx MetricTx) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&metricTx{db: tx})
	})
}

type metricTx struct {
	db DB
}

func (t *metricTx) InsertMetric(ctx context.Context, metric *domain.Metric) error {
	const query = `
        INSERT INTO metrics (server_id, status, cpu_load, memory_usage, disk_usage)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, recorded_at`
	return t.db.QueryRow(ctx, query,
		metric.ServerID, metric.Status, metric.CPULoad, metric.MemoryUsage, metric.DiskUsage,
	).Scan(&metric.ID, &metric.RecordedAt)
}

func (t *metricTx) RulesForServer(ctx context.Context, serverID string) ([]domain.AlertRule, error) {
	const query = `
        SELECT id, server_id, metric_name, threshold
        FROM alert_rules WHERE server_id=$1`
	rows, err := t.db.Query(ctx, query, serverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.AlertRule
	for rows.Next() {
		var rule domain.AlertRule
		if err := rows.Scan(&rule.ID, &rule.ServerID, &rule.MetricName, &rule.Threshold); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (t *metricTx) InsertAlertLog(ctx context.Context, log *domain.AlertLog) error {
	const query = `
        INSERT INTO alert_logs (server_id, message)
        VALUES ($1,$2)
        RETURNING id, is_resolved, created_at`
	return t.db.QueryRow(ctx, query, log.ServerID, log.Message).
		Scan(&log.ID, &log.IsResolved, &log.CreatedAt)
}

func (r *metricRepository) LatestForServer(ctx context.Context, serverID string) (*domain.Metric, error) {
	const query = `
        SELECT id, server_id, status, cpu_load, memory_usage, disk_usage, recorded_at
        FROM metrics WHERE server_id=$1
        ORDER BY recorded_at DESC LIMIT 1`
	var m domain.Metric
	if err := r.pool.QueryRow(ctx, query, serverID).Scan(
		&m.ID, &m.ServerID, &m.Status, &m.CPULoad, &m.MemoryUsage, &m.DiskUsage, &m.RecordedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

type alertLogRepository struct {
	pool *pgxpool.Pool
}

// NewAlertLogRepository instantiates repository.
func NewAlertLogRepository(pool *pgxpool.Pool) AlertLogRepository {
	return &alertLogRepository{pool: pool}
}

func (r *alertLogRepository) List(ctx context.Context, isResolved *bool) ([]domain.AlertLog, error) {
	query := `
        SELECT id, server_id, message, is_resolved, created_at
        FROM alert_logs`
	args := []any{}
	if isResolved != nil {
		args = append(args, *isResolved)
		query += ` WHERE is_resolved=$1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.AlertLog
	for rows.Next() {
		var l domain.AlertLog
		if err := rows.Scan(&l.ID, &l.ServerID, &l.Message, &l.IsResolved, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
