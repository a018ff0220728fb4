package vitals

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/internal/storage/models"
	"github.com/pranishuprety/Respondrr/internal/storage/supabase"
	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// Store is the slice of the row store the fetcher reads from.
type Store interface {
	SamplesSince(ctx context.Context, table, email string, since time.Time) ([]models.Sample, error)
}

// Directory resolves patient identity from email.
type Directory interface {
	LookupUserID(ctx context.Context, email string) (string, error)
}

// snapshotMetrics is the allow-list of metrics the AI analyzer looks at.
var snapshotMetrics = map[string]bool{
	"heart_rate":                       true,
	"respiratory_rate":                 true,
	"active_energy":                    true,
	"apple_sleeping_wrist_temperature": true,
	"blood_oxygen_saturation":          true,
	"heart_rate_variability":           true,
	"resting_heart_rate":               true,
}

// metricAliases maps the phone app's camelCase metric names onto the
// canonical snake_case names the threshold table uses.
var metricAliases = map[string]string{
	"heartRate":          "heart_rate",
	"respiratoryRate":    "respiratory_rate",
	"activeEnergy":       "active_energy",
	"activeEnergyBurned": "active_energy",
	"oxygenSaturation":   "blood_oxygen_saturation",
}

func normalizeMetricName(name string) string {
	if canonical, ok := metricAliases[name]; ok {
		return canonical
	}
	return name
}

type Service struct {
	store     Store
	directory Directory
}

func NewService(store Store, directory Directory) *Service {
	return &Service{store: store, directory: directory}
}

// CollectAbnormal evaluates the patient's last hour of samples against the
// threshold table. An unknown email propagates identity.ErrUserNotFound; no
// samples or no violations is an empty result, not an error.
func (s *Service) CollectAbnormal(ctx context.Context, email string) ([]models.AbnormalFinding, error) {
	if _, err := s.directory.LookupUserID(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to resolve patient %s: %w", email, err)
	}

	hourStart := time.Now().UTC().Add(-time.Hour)

	samples, err := s.recentSamples(ctx, email, hourStart)
	if err != nil {
		return nil, err
	}

	if len(samples) == 0 {
		logger.Debug("No vital samples in window", zap.String("email", email))
		return nil, nil
	}

	var findings []models.AbnormalFinding
	for _, sample := range samples {
		if sample.MetricName == "" || sample.Value == nil {
			continue
		}
		if IsAbnormal(sample.MetricName, *sample.Value) {
			findings = append(findings, models.AbnormalFinding{
				Metric:    sample.MetricName,
				Value:     *sample.Value,
				Timestamp: sample.Timestamp,
			})
		}
	}

	logger.Debug("Vitals evaluated",
		zap.String("email", email),
		zap.Int("samples", len(samples)),
		zap.Int("abnormal", len(findings)),
	)

	return findings, nil
}

// Snapshot builds today's per-metric rollup for the allow-listed metrics:
// the most recent value, last-hour avg/low/high, and today avg/low/high.
// Returns an empty slice when the patient has no data today.
func (s *Service) Snapshot(ctx context.Context, email string) ([]models.MetricSnapshot, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	hourStart := now.Add(-time.Hour)

	samples, err := s.recentSamples(ctx, email, dayStart)
	if err != nil {
		return nil, err
	}

	byMetric := map[string][]models.Sample{}
	for _, sample := range samples {
		name := normalizeMetricName(sample.MetricName)
		if !snapshotMetrics[name] || sample.Value == nil {
			continue
		}
		byMetric[name] = append(byMetric[name], sample)
	}

	var snapshots []models.MetricSnapshot
	for name, metricSamples := range byMetric {
		snapshots = append(snapshots, buildSnapshot(name, metricSamples, hourStart))
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].MetricName < snapshots[j].MetricName
	})

	return snapshots, nil
}

func (s *Service) recentSamples(ctx context.Context, email string, since time.Time) ([]models.Sample, error) {
	realtime, err := s.store.SamplesSince(ctx, supabase.TableHealthRealtime, email, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch realtime vitals: %w", err)
	}

	aggregated, err := s.store.SamplesSince(ctx, supabase.TableHealthAggregated, email, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch aggregated vitals: %w", err)
	}

	return append(realtime, aggregated...), nil
}

func buildSnapshot(name string, samples []models.Sample, hourStart time.Time) models.MetricSnapshot {
	snapshot := models.MetricSnapshot{MetricName: name}

	var todayValues, hourValues []float64
	var latest *models.Sample

	for i := range samples {
		sample := samples[i]
		todayValues = append(todayValues, *sample.Value)

		ts, err := time.Parse(time.RFC3339, sample.Timestamp)
		if err != nil {
			continue
		}
		if !ts.Before(hourStart) {
			hourValues = append(hourValues, *sample.Value)
		}
		if latest == nil || sample.Timestamp > latest.Timestamp {
			latest = &samples[i]
		}
	}

	if latest != nil {
		snapshot.LastHourCurrent = latest.Value
		snapshot.LastHourCurrentTS = latest.Timestamp
	}

	snapshot.LastHourAvg, snapshot.LastHourLow, snapshot.LastHourHigh = stats(hourValues)
	snapshot.TodayAvg, snapshot.TodayLow, snapshot.TodayHigh = stats(todayValues)

	return snapshot
}

func stats(values []float64) (avg, low, high *float64) {
	if len(values) == 0 {
		return nil, nil, nil
	}

	sum := values[0]
	lowV, highV := values[0], values[0]
	for _, v := range values[1:] {
		sum += v
		if v < lowV {
			lowV = v
		}
		if v > highV {
			highV = v
		}
	}

	avgV := sum / float64(len(values))
	return &avgV, &lowV, &highV
}
