package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/events"
	"github.com/spec-kit/backoffice-suite/internal/repository"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

// MonitoringService coordinates servers, alert rules and metric ingestion.
type MonitoringService struct {
	servers    repository.ServerRepository
	rules      repository.AlertRuleRepository
	metrics    repository.MetricRepository
	alertLogs  repository.AlertLogRepository
	dispatcher events.Dispatcher
}

// MonitoringDependencies bundles repositories for monitoring service.
type MonitoringDependencies struct {
	ServerRepo   repository.ServerRepository
	RuleRepo     repository.AlertRuleRepository
	MetricRepo   repository.MetricRepository
	AlertLogRepo repository.AlertLogRepository
	Dispatcher   events.Dispatcher
}

// NewMonitoringService creates the service.
func NewMonitoringService(deps MonitoringDependencies) *MonitoringService {
	return &MonitoringService{
		servers:    deps.ServerRepo,
		rules:      deps.RuleRepo,
		metrics:    deps.MetricRepo,
		alertLogs:  deps.AlertLogRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ServerCreateInput describes server registration payload.
type ServerCreateInput struct {
	Name      string
	IPAddress string
	IsActive  bool
}

// MetricSubmitInput is one agent reading, keyed by the sender's IP address.
type MetricSubmitInput struct {
	Status      bool
	CPULoad     *float64
	MemoryUsage *float64
	DiskUsage   *float64
}

// CreateServer registers a host for monitoring, attributed to the caller.
func (s *MonitoringService) CreateServer(ctx context.Context, userID string, input ServerCreateInput) (*domain.Server, error) {
	server := &domain.Server{
		Name:      input.Name,
		IPAddress: input.IPAddress,
		IsActive:  input.IsActive,
		AddedByID: &userID,
	}
	if err := s.servers.Create(ctx, server); err != nil {
		return nil, err
	}
	return server, nil
}

// ListServers returns all monitored hosts.
func (s *MonitoringService) ListServers(ctx context.Context) ([]domain.Server, error) {
	return s.servers.List(ctx)
}

// DeleteServer removes a host and, via cascade, its rules, metrics and alerts.
func (s *MonitoringService) DeleteServer(ctx context.Context, id string) error {
	if err := s.servers.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("server", nil)
		}
		return err
	}
	return nil
}

// UpsertAlertRule sets the threshold a metric must reach to raise an alert;
// a second rule for the same (server, metric) pair replaces the first.
func (s *MonitoringService) UpsertAlertRule(ctx context.Context, serverID string, metricName domain.MetricName, threshold float64) (*domain.AlertRule, error) {
	if !domain.ValidMetricName(metricName) {
		return nil, apperrors.NewValidationError(
			"metric_name must be one of CPU_LOAD, MEMORY_USAGE, DISK_USAGE", nil)
	}
	if _, err := s.servers.GetByID(ctx, serverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("server", nil)
		}
		return nil, err
	}

	rule := &domain.AlertRule{ServerID: serverID, MetricName: metricName, Threshold: threshold}
	if err := s.rules.Upsert(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// SubmitMetrics ingests one agent reading for the active server registered
// under ip. The reading is stored and every alert rule is evaluated against
// it in the same transaction, so a rolled-back reading leaves no alerts
// behind. Triggered alert messages are returned alongside the stored metric.
func (s *MonitoringService) SubmitMetrics(ctx context.Context, ip string, input MetricSubmitInput) (*domain.Metric, []string, error) {
	server, err := s.servers.GetActiveByIP(ctx, ip)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("server", nil)
		}
		return nil, nil, err
	}

	metric := &domain.Metric{
		ServerID:    server.ID,
		Status:      input.Status,
		CPULoad:     input.CPULoad,
		MemoryUsage: input.MemoryUsage,
		DiskUsage:   input.DiskUsage,
	}

	var alerts []string
	err = s.metrics.RunSubmit(ctx, func(tx repository.MetricTx) error {
		if err := tx.InsertMetric(ctx, metric); err != nil {
			return err
		}

		rules, err := tx.RulesForServer(ctx, server.ID)
		if err != nil {
			return err
		}

		alerts = evaluateReading(metric, rules)
		for _, message := range alerts {
			log := &domain.AlertLog{ServerID: server.ID, Message: message}
			if err := tx.InsertAlertLog(ctx, log); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for _, message := range alerts {
		s.publishEvent(ctx, events.Event{
			Type: events.EventAlertRaised,
			Payload: events.AlertRaisedPayload{
				ServerID:   server.ID,
				ServerName: server.Name,
				Message:    message,
			},
		})
	}
	return metric, alerts, nil
}

// evaluateReading produces one alert message per violated condition: a down
// status always alerts, and each rule whose metric reading reaches its
// threshold alerts. Rules for metrics absent from the reading are skipped.
func evaluateReading(metric *domain.Metric, rules []domain.AlertRule) []string {
	var alerts []string
	if !metric.Status {
		alerts = append(alerts, "Server is DOWN!")
	}
	for _, rule := range rules {
		value := readingValue(metric, rule.MetricName)
		if value == nil {
			continue
		}
		if *value >= rule.Threshold {
			alerts = append(alerts, fmt.Sprintf(
				"%s exceeded threshold! Value: %.2f%% (Threshold: %.2f%%)",
				rule.MetricName, *value, rule.Threshold))
		}
	}
	return alerts
}

func readingValue(metric *domain.Metric, name domain.MetricName) *float64 {
	switch name {
	case domain.MetricCPULoad:
		return metric.CPULoad
	case domain.MetricMemoryUsage:
		return metric.MemoryUsage
	case domain.MetricDiskUsage:
		return metric.DiskUsage
	}
	return nil
}

// LatestMetrics returns the newest reading for the server registered under
// ip, active or not.
func (s *MonitoringService) LatestMetrics(ctx context.Context, ip string) (*domain.Metric, error) {
	server, err := s.servers.GetByIP(ctx, ip)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("server", nil)
		}
		return nil, err
	}

	metric, err := s.metrics.LatestForServer(ctx, server.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("metrics", nil)
		}
		return nil, err
	}
	return metric, nil
}

// ListAlerts returns triggered alerts, optionally filtered by resolution.
func (s *MonitoringService) ListAlerts(ctx context.Context, isResolved *bool) ([]domain.AlertLog, error) {
	return s.alertLogs.List(ctx, isResolved)
}

func (s *MonitoringService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
