package alerts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/internal/metrics"
	"github.com/pranishuprety/Respondrr/internal/storage/models"
	"github.com/pranishuprety/Respondrr/internal/vitals"
	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// Snapshotter produces the per-metric rollup the prompt is built from.
type Snapshotter interface {
	Snapshot(ctx context.Context, email string) ([]models.MetricSnapshot, error)
}

// Completer is the model provider.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Store interface {
	InsertAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error)
}

type Directory interface {
	LookupUserID(ctx context.Context, email string) (string, error)
	ListUserEmails(ctx context.Context) ([]string, error)
}

// Analyzer runs the soft-signal pass: summarize a patient's day of metrics,
// ask the model for concerning values, and persist whatever it flags. It is
// deliberately quiet about its own failures: an unavailable analysis and a
// healthy analysis both produce no alerts, and logs carry the difference.
type Analyzer struct {
	snapshotter Snapshotter
	completer   Completer
	store       Store
	directory   Directory
}

func NewAnalyzer(snapshotter Snapshotter, completer Completer, store Store, directory Directory) *Analyzer {
	return &Analyzer{
		snapshotter: snapshotter,
		completer:   completer,
		store:       store,
		directory:   directory,
	}
}

// Analyze builds the snapshot and asks the model for a verdict. Returns
// (nil, nil) when there is no data, the provider is unavailable after
// retries, or the reply does not parse. Only store failures are errors.
func (a *Analyzer) Analyze(ctx context.Context, email string) (*Analysis, error) {
	snapshots, err := a.snapshotter.Snapshot(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to build vitals snapshot: %w", err)
	}
	if len(snapshots) == 0 {
		logger.Debug("No health data for analysis", zap.String("email", email))
		return nil, nil
	}

	reply, err := a.completer.Complete(ctx, buildPrompt(snapshots))
	if err != nil {
		logger.Warn("Metric analysis unavailable",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, nil
	}

	analysis, err := parseAnalysis(reply)
	if err != nil {
		logger.Warn("Model reply did not parse, skipping analysis",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, nil
	}

	return analysis, nil
}

// ProcessUser analyzes one patient and persists any flagged alerts. One
// candidate's insert failure does not block the others.
func (a *Analyzer) ProcessUser(ctx context.Context, email string) error {
	analysis, err := a.Analyze(ctx, email)
	if err != nil {
		return err
	}
	if analysis == nil || !analysis.HasAlerts {
		logger.Debug("No alerts needed", zap.String("email", email))
		return nil
	}

	patientID, err := a.directory.LookupUserID(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to resolve patient %s: %w", email, err)
	}

	for _, candidate := range analysis.Alerts {
		alert := &models.Alert{
			PatientID:    patientID,
			PatientEmail: email,
			Title:        titleOrDefault(candidate.Title),
			Message:      candidate.Message,
			AlertType:    "health_metric",
			Severity:     NormalizeSeverity(candidate.Severity),
			Status:       models.AlertStatusOpen,
			Metadata: map[string]any{
				"metric_name":      candidate.MetricName,
				"reason":           candidate.Reason,
				"analysis_summary": analysis.Summary,
			},
		}

		if _, err := a.store.InsertAlert(ctx, alert); err != nil {
			logger.Error("Failed to create alert",
				zap.String("email", email),
				zap.String("title", alert.Title),
				zap.Error(err),
			)
			continue
		}

		metrics.AlertsCreated.WithLabelValues("ai").Inc()
		logger.Info("Alert created",
			zap.String("email", email),
			zap.String("title", alert.Title),
			zap.String("severity", alert.Severity),
		)
	}

	return nil
}

// RunHourlySweep analyzes every known user sequentially. One user's failure
// never aborts the sweep.
func (a *Analyzer) RunHourlySweep(ctx context.Context) error {
	emails, err := a.directory.ListUserEmails(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users for alert sweep: %w", err)
	}

	logger.Info("Running alert sweep", zap.Int("users", len(emails)))

	for _, email := range emails {
		if err := a.ProcessUser(ctx, email); err != nil {
			logger.Error("Alert sweep failed for user",
				zap.String("email", email),
				zap.Error(err),
			)
		}
	}

	return nil
}

func buildPrompt(snapshots []models.MetricSnapshot) string {
	var lines []string
	for _, s := range snapshots {
		lines = append(lines, fmt.Sprintf("%s: curr=%s, hr_avg=%s, today_avg=%s",
			s.MetricName,
			formatStat(s.LastHourCurrent),
			formatStat(s.LastHourAvg),
			formatStat(s.TodayAvg),
		))
	}

	return fmt.Sprintf(`Analyze health metrics and identify concerning values:
%s

Normal ranges: %s

Return JSON: {"has_alerts": bool, "alerts": [{"metric_name": str, "severity": str, "title": str, "message": str, "reason": str}], "summary": str}
`, strings.Join(lines, "\n"), vitals.NormalRangesText)
}

func formatStat(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}

func titleOrDefault(title string) string {
	if title == "" {
		return "Health Alert"
	}
	return title
}
