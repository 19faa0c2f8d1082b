package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-suite/internal/api/dto"
	"github.com/spec-kit/backoffice-suite/internal/auth"
	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/service"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

// MonitoringHandler manages server, alert rule and metric endpoints. Metric
// submission stays open so agents can report without credentials.
type MonitoringHandler struct {
	service *service.MonitoringService
}

// NewMonitoringHandler constructs handler.
func NewMonitoringHandler(monitoringService *service.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{service: monitoringService}
}

// CreateServer POST /monitoring/servers.
func (h *MonitoringHandler) CreateServer(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateServerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	server, err := h.service.CreateServer(c.Context(), user.ID, service.ServerCreateInput{
		Name:      req.Name,
		IPAddress: req.IPAddress,
		IsActive:  isActive,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": serverResponse(server)})
}

// ListServers GET /monitoring/servers.
func (h *MonitoringHandler) ListServers(c *fiber.Ctx) error {
	servers, err := h.service.ListServers(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ServerResponse, 0, len(servers))
	for i := range servers {
		items = append(items, serverResponse(&servers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteServer DELETE /monitoring/servers/:id.
func (h *MonitoringHandler) DeleteServer(c *fiber.Ctx) error {
	if err := h.service.DeleteServer(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpsertAlertRule POST /monitoring/servers/:id/alert-rules.
func (h *MonitoringHandler) UpsertAlertRule(c *fiber.Ctx) error {
	var req dto.AlertRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	rule, err := h.service.UpsertAlertRule(c.Context(), c.Params("id"), req.MetricName, req.Threshold)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AlertRuleResponse{
		ID:         rule.ID,
		ServerID:   rule.ServerID,
		MetricName: rule.MetricName,
		Threshold:  rule.Threshold,
	}})
}

// SubmitMetrics POST /monitoring/metrics/:ip.
func (h *MonitoringHandler) SubmitMetrics(c *fiber.Ctx) error {
	var req dto.SubmitMetricsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	metric, alerts, err := h.service.SubmitMetrics(c.Context(), c.Params("ip"), service.MetricSubmitInput{
		Status:      *req.Status,
		CPULoad:     req.CPULoad,
		MemoryUsage: req.MemoryUsage,
		DiskUsage:   req.DiskUsage,
	})
	if err != nil {
		return err
	}
	if alerts == nil {
		alerts = []string{}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.SubmitMetricsResponse{
		Metric: metricResponse(metric),
		Alerts: alerts,
	}})
}

// LatestMetrics GET /monitoring/metrics/:ip/latest.
func (h *MonitoringHandler) LatestMetrics(c *fiber.Ctx) error {
	metric, err := h.service.LatestMetrics(c.Context(), c.Params("ip"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metricResponse(metric)})
}

// ListAlerts GET /monitoring/alerts.
func (h *MonitoringHandler) ListAlerts(c *fiber.Ctx) error {
	var isResolved *bool
	if resolvedStr := c.Query("is_resolved"); resolvedStr != "" {
		resolved, err := strconv.ParseBool(resolvedStr)
		if err != nil {
			return apperrors.NewValidationError("is_resolved must be a boolean", nil)
		}
		isResolved = &resolved
	}

	logs, err := h.service.ListAlerts(c.Context(), isResolved)
	if err != nil {
		return err
	}
	items := make([]dto.AlertLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, alertLogResponse(&logs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func serverResponse(s *domain.Server) dto.ServerResponse {
	return dto.ServerResponse{
		ID:        s.ID,
		Name:      s.Name,
		IPAddress: s.IPAddress,
		IsActive:  s.IsActive,
		AddedByID: s.AddedByID,
	}
}

func metricResponse(m *domain.Metric) dto.MetricResponse {
	return dto.MetricResponse{
		ID:          m.ID,
		ServerID:    m.ServerID,
		Status:      m.Status,
		CPULoad:     m.CPULoad,
		MemoryUsage: m.MemoryUsage,
		DiskUsage:   m.DiskUsage,
		RecordedAt:  m.RecordedAt,
	}
}

func alertLogResponse(l *domain.AlertLog) dto.AlertLogResponse {
	return dto.AlertLogResponse{
		ID:         l.ID,
		ServerID:   l.ServerID,
		Message:    l.Message,
		IsResolved: l.IsResolved,
		CreatedAt:  l.CreatedAt,
	}
}
