package emergency

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/internal/metrics"
	"github.com/pranishuprety/Respondrr/internal/storage/models"
	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// AlertStore is the slice of the row store the dispatcher writes to.
type AlertStore interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	InsertAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error)
}

// AlertNotifier creates the paired patient/doctor alert rows for a new
// emergency. Everything here is best-effort: the Emergency row is the source
// of truth and an emergency without its advisory alerts is an acceptable
// degraded state.
type AlertNotifier struct {
	store AlertStore
}

func NewAlertNotifier(store AlertStore) *AlertNotifier {
	return &AlertNotifier{store: store}
}

func (n *AlertNotifier) Notify(ctx context.Context, patientID, doctorID, emergencyID string, conversationID int64, patientEmail string) {
	doctorName := "Doctor"
	if profile, err := n.store.GetProfile(ctx, doctorID); err == nil && profile.FullName != "" {
		doctorName = profile.FullName
	}

	patientAlert := &models.Alert{
		PatientID:    patientID,
		PatientEmail: patientEmail,
		Title:        "Emergency Alert",
		Message:      fmt.Sprintf("Medical emergency detected. %s will contact you shortly.", doctorName),
		AlertType:    "health_metric",
		Severity:     "critical",
		Status:       models.AlertStatusOpen,
		EmergencyID:  &emergencyID,
		Metadata: map[string]any{
			"conversation_id": conversationID,
			"type":            "emergency_alert",
		},
	}

	doctorAlert := &models.Alert{
		PatientID:    doctorID,
		PatientEmail: patientEmail,
		Title:        "Emergency Alert - Patient Crisis",
		Message:      fmt.Sprintf("Patient %s vitals triggered an emergency. Please call them immediately.", patientEmail),
		AlertType:    "health_metric",
		Severity:     "critical",
		Status:       models.AlertStatusOpen,
		EmergencyID:  &emergencyID,
		Metadata: map[string]any{
			"patient_id":      patientID,
			"patient_email":   patientEmail,
			"conversation_id": conversationID,
			"type":            "emergency_doctor_alert",
		},
	}

	for _, alert := range []*models.Alert{patientAlert, doctorAlert} {
		if _, err := n.store.InsertAlert(ctx, alert); err != nil {
			logger.Error("Failed to create emergency alert",
				zap.String("emergency_id", emergencyID),
				zap.String("recipient", alert.PatientID),
				zap.Error(err),
			)
			continue
		}
		metrics.AlertsCreated.WithLabelValues("emergency").Inc()
	}

	logger.Info("Emergency notifications dispatched",
		zap.String("emergency_id", emergencyID),
		zap.String("patient_email", patientEmail),
	)
}
