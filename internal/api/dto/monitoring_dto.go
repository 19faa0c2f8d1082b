package dto

import (
	"time"

	"github.com/spec-kit/backoffice-suite/internal/domain"
)

// CreateServerRequest payload.
type CreateServerRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	IPAddress string `json:"ip_address" validate:"required,ip"`
	IsActive  *bool  `json:"is_active"`
}

// ServerResponse representation.
type ServerResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	IPAddress string  `json:"ip_address"`
	IsActive  bool    `json:"is_active"`
	AddedByID *string `json:"added_by_id"`
}

// AlertRuleRequest payload; a second rule for the same metric replaces the
// threshold.
type AlertRuleRequest struct {
	MetricName domain.MetricName `json:"metric_name" validate:"required"`
	Threshold  float64           `json:"threshold" validate:"gte=0"`
}

// AlertRuleResponse representation.
type AlertRuleResponse struct {
	ID         string            `json:"id"`
	ServerID   string            `json:"server_id"`
	MetricName domain.MetricName `json:"metric_name"`
	Threshold  float64           `json:"threshold"`
}

// SubmitMetricsRequest is one agent reading; the server is identified by the
// ip path parameter, not the body.
type SubmitMetricsRequest struct {
	Status      *bool    `json:"status" validate:"required"`
	CPULoad     *float64 `json:"cpu_load" validate:"omitempty,gte=0,lte=100"`
	MemoryUsage *float64 `json:"memory_usage" validate:"omitempty,gte=0,lte=100"`
	DiskUsage   *float64 `json:"disk_usage" validate:"omitempty,gte=0,lte=100"`
}

// MetricResponse representation.
type MetricResponse struct {
	ID          string    `json:"id"`
	ServerID    string    `json:"server_id"`
	Status      bool      `json:"status"`
	CPULoad     *float64  `json:"cpu_load"`
	MemoryUsage *float64  `json:"memory_usage"`
	DiskUsage   *float64  `json:"disk_usage"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// SubmitMetricsResponse returns the stored reading plus any alerts it
// triggered.
type SubmitMetricsResponse struct {
	Metric MetricResponse `json:"metric"`
	Alerts []string       `json:"alerts"`
}

// AlertLogResponse representation.
type AlertLogResponse struct {
	ID         string    `json:"id"`
	ServerID   string    `json:"server_id"`
	Message    string    `json:"message"`
	IsResolved bool      `json:"is_resolved"`
	CreatedAt  time.Time `json:"created_at"`
}
