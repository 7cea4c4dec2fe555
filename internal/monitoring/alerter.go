package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ranksignal/accuracy-cli/internal/config"
	"github.com/ranksignal/accuracy-cli/internal/resilience"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertLowAccuracyRate       AlertType = "low_accuracy_rate"
	AlertLowConfidence         AlertType = "low_confidence"
	AlertCriticalDiscrepancies AlertType = "critical_discrepancies"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a MetricsSnapshot against configured thresholds
// and sends alerts via webhook when thresholds are breached. Webhook
// delivery runs through retry inside a circuit breaker so a dead endpoint
// cannot stall the check loop.
type Alerter struct {
	cfg     config.MonitoringConfig
	client  *http.Client
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
		retry: resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: 200 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			OnRetry:        resilience.RetryLogger("webhook", "send_alert"),
		},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *MetricsSnapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	// Check accuracy rate. Fewer than 5 reports is too little signal.
	if snap.ReportTotal >= 5 && snap.AccuracyRate < a.cfg.MinAccuracyRate {
		alerts = append(alerts, Alert{
			Type:     AlertLowAccuracyRate,
			Severity: "high",
			Message: fmt.Sprintf(
				"Accuracy rate %.1f%% is below threshold %.1f%% (%d accurate / %d reports in last %dh)",
				snap.AccuracyRate*100, a.cfg.MinAccuracyRate*100,
				snap.ReportAccurate, snap.ReportTotal, snap.LookbackHours,
			),
			Details: map[string]any{
				"accuracy_rate": snap.AccuracyRate,
				"threshold":     a.cfg.MinAccuracyRate,
				"accurate":      snap.ReportAccurate,
				"total":         snap.ReportTotal,
			},
			Timestamp: now,
		})
	}

	// Check average confidence.
	if snap.ReportTotal > 0 && a.cfg.MinAvgConfidence > 0 && snap.AvgConfidence < a.cfg.MinAvgConfidence {
		alerts = append(alerts, Alert{
			Type:     AlertLowConfidence,
			Severity: "medium",
			Message: fmt.Sprintf(
				"Average confidence %.1f is below threshold %.1f across %d reports in last %dh",
				snap.AvgConfidence, a.cfg.MinAvgConfidence,
				snap.ReportTotal, snap.LookbackHours,
			),
			Details: map[string]any{
				"avg_confidence": snap.AvgConfidence,
				"threshold":      a.cfg.MinAvgConfidence,
				"total":          snap.ReportTotal,
			},
			Timestamp: now,
		})
	}

	// Check critical discrepancy volume.
	if snap.CriticalIssues > a.cfg.MaxCriticalIssues {
		alerts = append(alerts, Alert{
			Type:     AlertCriticalDiscrepancies,
			Severity: "critical",
			Message: fmt.Sprintf(
				"%d critical discrepancies in last %dh exceeds limit %d",
				snap.CriticalIssues, snap.LookbackHours, a.cfg.MaxCriticalIssues,
			),
			Details: map[string]any{
				"critical_issues": snap.CriticalIssues,
				"limit":           a.cfg.MaxCriticalIssues,
				"projects":        snap.DistinctProjects,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		err := a.breaker.Execute(ctx, func(ctx context.Context) error {
			return resilience.Do(ctx, a.retry, func(ctx context.Context) error {
				return a.sendWebhook(ctx, alert)
			})
		})
		if err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.String("error_type", resilience.ClassifyError(err)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		statusErr := eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return statusErr
	}
	return nil
}
