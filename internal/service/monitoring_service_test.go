package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/events"
	"github.com/spec-kit/backoffice-suite/internal/repository"
)

type stubServerRepo struct {
	servers map[string]*domain.Server
}

func (r *stubServerRepo) Create(_ context.Context, s *domain.Server) error {
	s.ID = "server-" + s.Name
	clone := *s
	r.servers[s.ID] = &clone
	return nil
}

func (r *stubServerRepo) List(_ context.Context) ([]domain.Server, error) {
	var out []domain.Server
	for _, s := range r.servers {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubServerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.servers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.servers, id)
	return nil
}

func (r *stubServerRepo) GetByID(_ context.Context, id string) (*domain.Server, error) {
	s, ok := r.servers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (r *stubServerRepo) GetByIP(_ context.Context, ip string) (*domain.Server, error) {
	for _, s := range r.servers {
		if s.IPAddress == ip {
			clone := *s
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubServerRepo) GetActiveByIP(_ context.Context, ip string) (*domain.Server, error) {
	s, err := r.GetByIP(context.Background(), ip)
	if err != nil || !s.IsActive {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

type stubRuleRepo struct {
	rules []domain.AlertRule
}

func (r *stubRuleRepo) Upsert(_ context.Context, rule *domain.AlertRule) error {
	for i := range r.rules {
		if r.rules[i].ServerID == rule.ServerID && r.rules[i].MetricName == rule.MetricName {
			r.rules[i].Threshold = rule.Threshold
			rule.ID = r.rules[i].ID
			return nil
		}
	}
	rule.ID = "rule-" + string(rule.MetricName)
	r.rules = append(r.rules, *rule)
	return nil
}

type stubMetricTx struct {
	rules        []domain.AlertRule
	insertedLogs []domain.AlertLog
	metric       *domain.Metric
}

func (t *stubMetricTx) InsertMetric(_ context.Context, metric *domain.Metric) error {
	metric.ID = "metric-1"
	metric.RecordedAt = time.Now()
	clone := *metric
	t.metric = &clone
	return nil
}

func (t *stubMetricTx) RulesForServer(_ context.Context, serverID string) ([]domain.AlertRule, error) {
	return append([]domain.AlertRule{}, t.rules...), nil
}

func (t *stubMetricTx) InsertAlertLog(_ context.Context, log *domain.AlertLog) error {
	log.ID = "alert-1"
	log.CreatedAt = time.Now()
	t.insertedLogs = append(t.insertedLogs, *log)
	return nil
}

type stubMetricRepo struct {
	tx     *stubMetricTx
	latest *domain.Metric
}

func (r *stubMetricRepo) RunSubmit(_ context.Context, fn func(tx repository.MetricTx) error) error {
	return fn(r.tx)
}

func (r *stubMetricRepo) LatestForServer(_ context.Context, serverID string) (*domain.Metric, error) {
	if r.latest == nil {
		return nil, pgx.ErrNoRows
	}
	clone := *r.latest
	return &clone, nil
}

type stubAlertLogRepo struct {
	logs []domain.AlertLog
}

func (r *stubAlertLogRepo) List(_ context.Context, isResolved *bool) ([]domain.AlertLog, error) {
	var out []domain.AlertLog
	for _, l := range r.logs {
		if isResolved != nil && l.IsResolved != *isResolved {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func newMonitoringFixture(tx *stubMetricTx) (*MonitoringService, *stubServerRepo, *recordingDispatcher) {
	servers := &stubServerRepo{servers: map[string]*domain.Server{}}
	dispatcher := &recordingDispatcher{}
	svc := NewMonitoringService(MonitoringDependencies{
		ServerRepo:   servers,
		RuleRepo:     &stubRuleRepo{},
		MetricRepo:   &stubMetricRepo{tx: tx},
		AlertLogRepo: &stubAlertLogRepo{},
		Dispatcher:   dispatcher,
	})
	return svc, servers, dispatcher
}

func floatPtr(v float64) *float64 { return &v }

func TestSubmitMetricsHealthyReading(t *testing.T) {
	tx := &stubMetricTx{rules: []domain.AlertRule{
		{ServerID: "server-web", MetricName: domain.MetricCPULoad, Threshold: 90},
	}}
	svc, servers, dispatcher := newMonitoringFixture(tx)
	servers.servers["server-web"] = &domain.Server{ID: "server-web", Name: "web", IPAddress: "10.0.0.1", IsActive: true}

	metric, alerts, err := svc.SubmitMetrics(context.Background(), "10.0.0.1", MetricSubmitInput{
		Status:  true,
		CPULoad: floatPtr(42.5),
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if metric.ID == "" {
		t.Fatal("metric must be stored")
	}
	if len(alerts) != 0 {
		t.Fatalf("no alerts expected, got %v", alerts)
	}
	if len(dispatcher.published) != 0 {
		t.Fatal("no events expected for a healthy reading")
	}
}

func TestSubmitMetricsDownServerAlerts(t *testing.T) {
	tx := &stubMetricTx{}
	svc, servers, dispatcher := newMonitoringFixture(tx)
	servers.servers["server-web"] = &domain.Server{ID: "server-web", Name: "web", IPAddress: "10.0.0.1", IsActive: true}

	_, alerts, err := svc.SubmitMetrics(context.Background(), "10.0.0.1", MetricSubmitInput{Status: false})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(alerts) != 1 || alerts[0] != "Server is DOWN!" {
		t.Fatalf("alerts = %v, want [Server is DOWN!]", alerts)
	}
	if len(tx.insertedLogs) != 1 {
		t.Fatalf("alert logs = %d, want 1", len(tx.insertedLogs))
	}
	if len(dispatcher.published) != 1 || dispatcher.published[0].Type != events.EventAlertRaised {
		t.Fatal("expected one alert raised event")
	}
}

func TestSubmitMetricsThresholdBreaches(t *testing.T) {
	tx := &stubMetricTx{rules: []domain.AlertRule{
		{ServerID: "server-web", MetricName: domain.MetricCPULoad, Threshold: 90},
		{ServerID: "server-web", MetricName: domain.MetricDiskUsage, Threshold: 80},
	}}
	svc, servers, _ := newMonitoringFixture(tx)
	servers.servers["server-web"] = &domain.Server{ID: "server-web", Name: "web", IPAddress: "10.0.0.1", IsActive: true}

	_, alerts, err := svc.SubmitMetrics(context.Background(), "10.0.0.1", MetricSubmitInput{
		Status:    true,
		CPULoad:   floatPtr(95.5),
		DiskUsage: floatPtr(50),
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %v, want exactly one CPU alert", alerts)
	}
	if !strings.Contains(alerts[0], "CPU_LOAD") || !strings.Contains(alerts[0], "95.50") {
		t.Fatalf("unexpected alert message: %s", alerts[0])
	}
}

func TestSubmitMetricsSkipsRulesWithoutReading(t *testing.T) {
	tx := &stubMetricTx{rules: []domain.AlertRule{
		{ServerID: "server-web", MetricName: domain.MetricMemoryUsage, Threshold: 10},
	}}
	svc, servers, _ := newMonitoringFixture(tx)
	servers.servers["server-web"] = &domain.Server{ID: "server-web", Name: "web", IPAddress: "10.0.0.1", IsActive: true}

	_, alerts, err := svc.SubmitMetrics(context.Background(), "10.0.0.1", MetricSubmitInput{Status: true})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("rule without a reading must not fire, got %v", alerts)
	}
}

func TestSubmitMetricsInactiveServer(t *testing.T) {
	svc, servers, _ := newMonitoringFixture(&stubMetricTx{})
	servers.servers["server-web"] = &domain.Server{ID: "server-web", Name: "web", IPAddress: "10.0.0.1", IsActive: false}

	_, _, err := svc.SubmitMetrics(context.Background(), "10.0.0.1", MetricSubmitInput{Status: true})
	expectCode(t, err, "NOT_FOUND")
}

func TestUpsertAlertRuleRejectsUnknownMetric(t *testing.T) {
	svc, servers, _ := newMonitoringFixture(&stubMetricTx{})
	servers.servers["server-web"] = &domain.Server{ID: "server-web", Name: "web", IPAddress: "10.0.0.1", IsActive: true}

	_, err := svc.UpsertAlertRule(context.Background(), "server-web", "LOAD_AVG", 50)
	expectCode(t, err, "VALIDATION_FAILED")
}

func TestUpsertAlertRuleReplacesThreshold(t *testing.T) {
	svc, servers, _ := newMonitoringFixture(&stubMetricTx{})
	servers.servers["server-web"] = &domain.Server{ID: "server-web", Name: "web", IPAddress: "10.0.0.1", IsActive: true}

	first, err := svc.UpsertAlertRule(context.Background(), "server-web", domain.MetricCPULoad, 50)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second, err := svc.UpsertAlertRule(context.Background(), "server-web", domain.MetricCPULoad, 75)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same rule, got %s and %s", first.ID, second.ID)
	}
	if second.Threshold != 75 {
		t.Fatalf("threshold = %f, want 75", second.Threshold)
	}
}
