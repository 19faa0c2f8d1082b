package domain

import "time"

// MetricName enumerates the numeric metrics alert rules can watch.
type MetricName string

const (
	MetricCPULoad     MetricName = "CPU_LOAD"
	MetricMemoryUsage MetricName = "MEMORY_USAGE"
	MetricDiskUsage   MetricName = "DISK_USAGE"
)

// ValidMetricName reports whether n is a known metric name.
func ValidMetricName(n MetricName) bool {
	switch n {
	case MetricCPULoad, MetricMemoryUsage, MetricDiskUsage:
		return true
	}
	return false
}

// Server is a monitored host.
type Server struct {
	ID        string
	Name      string
	IPAddress string
	IsActive  bool
	AddedByID *string
}

// AlertRule fires when a metric reading reaches its threshold, unique per
// (server, metric).
type AlertRule struct {
	ID         string
	ServerID   string
	MetricName MetricName
	Threshold  float64
}

// Metric is one reading submitted by an agent.
type Metric struct {
	ID          string
	ServerID    string
	Status      bool
	CPULoad     *float64
	MemoryUsage *float64
	DiskUsage   *float64
	RecordedAt  time.Time
}

// AlertLog records a triggered alert.
type AlertLog struct {
	ID         string
	ServerID   string
	Message    string
	IsResolved bool
	CreatedAt  time.Time
}
