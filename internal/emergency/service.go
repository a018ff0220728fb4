package emergency

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/internal/identity"
	"github.com/pranishuprety/Respondrr/internal/metrics"
	"github.com/pranishuprety/Respondrr/internal/storage/models"
	"github.com/pranishuprety/Respondrr/internal/storage/supabase"
	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// Reason explains why a check did not trigger an emergency. Every reason is
// a terminal no-op, not an error.
type Reason string

const (
	ReasonTriggered        Reason = "triggered"
	ReasonPatientNotFound  Reason = "patient_not_found"
	ReasonNoAbnormalVitals Reason = "no_abnormal_vitals"
	ReasonNoConversation   Reason = "no_conversation"
	ReasonAlreadyActive    Reason = "already_active"
	ReasonNoDoctor         Reason = "no_doctor"
)

type Result struct {
	Triggered      bool                     `json:"triggered"`
	Reason         Reason                   `json:"reason"`
	Emergency      *models.Emergency        `json:"emergency,omitempty"`
	AbnormalVitals []models.AbnormalFinding `json:"abnormal_vitals,omitempty"`
}

// Collector produces the abnormal findings that start the state machine.
type Collector interface {
	CollectAbnormal(ctx context.Context, email string) ([]models.AbnormalFinding, error)
}

// Store is the slice of the row store the state machine needs.
type Store interface {
	LatestConversation(ctx context.Context, patientID string) (*models.Conversation, error)
	HasActiveEmergency(ctx context.Context, conversationID int64) (bool, error)
	ActiveDoctorID(ctx context.Context, patientID string) (string, error)
	InsertEmergency(ctx context.Context, emergency *models.Emergency) (*models.Emergency, error)
	ResolveEmergency(ctx context.Context, emergencyID string) error
}

type Directory interface {
	LookupUserID(ctx context.Context, email string) (string, error)
	ListUserEmails(ctx context.Context) ([]string, error)
}

type Notifier interface {
	Notify(ctx context.Context, patientID, doctorID, emergencyID string, conversationID int64, patientEmail string)
}

type Service struct {
	store     Store
	directory Directory
	collector Collector
	notifier  Notifier
}

func NewService(store Store, directory Directory, collector Collector, notifier Notifier) *Service {
	return &Service{
		store:     store,
		directory: directory,
		collector: collector,
		notifier:  notifier,
	}
}

// CheckAndTrigger walks the escalation preconditions for one patient:
// abnormal vitals in the last hour, an active conversation, no emergency
// already active for it, and an assigned doctor. Only when all hold does it
// insert an Emergency row and dispatch notifications. Missing preconditions
// short-circuit to a no-op Result; only transport and persistence failures
// surface as errors.
//
// The existing-emergency check and the insert are not atomic: concurrent
// triggers for the same conversation can race past the guard. Callers
// needing a hard guarantee must add a storage-level unique constraint on
// (conversation_id, status=active).
func (s *Service) CheckAndTrigger(ctx context.Context, email string) (Result, error) {
	findings, err := s.collector.CollectAbnormal(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			logger.Warn("Emergency check skipped, patient not found", zap.String("email", email))
			return s.noOp(ReasonPatientNotFound, nil), nil
		}
		return Result{}, fmt.Errorf("failed to collect vitals: %w", err)
	}

	if len(findings) == 0 {
		return s.noOp(ReasonNoAbnormalVitals, nil), nil
	}

	logger.Info("Abnormal vitals found",
		zap.String("email", email),
		zap.Int("count", len(findings)),
	)

	patientID, err := s.directory.LookupUserID(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return s.noOp(ReasonPatientNotFound, findings), nil
		}
		return Result{}, fmt.Errorf("failed to resolve patient: %w", err)
	}

	conversation, err := s.store.LatestConversation(ctx, patientID)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			logger.Info("No conversation for patient, emergency not triggered", zap.String("email", email))
			return s.noOp(ReasonNoConversation, findings), nil
		}
		return Result{}, fmt.Errorf("failed to resolve conversation: %w", err)
	}

	active, err := s.store.HasActiveEmergency(ctx, conversation.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check existing emergency: %w", err)
	}
	if active {
		logger.Info("Active emergency already exists",
			zap.String("email", email),
			zap.Int64("conversation_id", conversation.ID),
		)
		return s.noOp(ReasonAlreadyActive, findings), nil
	}

	doctorID, err := s.store.ActiveDoctorID(ctx, patientID)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			logger.Info("No active doctor for patient, emergency not triggered", zap.String("email", email))
			return s.noOp(ReasonNoDoctor, findings), nil
		}
		return Result{}, fmt.Errorf("failed to resolve doctor: %w", err)
	}

	emergency, err := s.store.InsertEmergency(ctx, &models.Emergency{
		PatientID:      patientID,
		DoctorID:       doctorID,
		ConversationID: conversation.ID,
		VideoCallID:    nil,
		Status:         models.EmergencyStatusActive,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to create emergency: %w", err)
	}

	logger.Info("Emergency created",
		zap.String("emergency_id", emergency.ID),
		zap.String("patient_id", patientID),
		zap.String("doctor_id", doctorID),
		zap.Int64("conversation_id", conversation.ID),
	)
	metrics.EmergencyChecks.WithLabelValues(string(ReasonTriggered)).Inc()

	s.notifier.Notify(ctx, patientID, doctorID, emergency.ID, conversation.ID, email)

	return Result{
		Triggered:      true,
		Reason:         ReasonTriggered,
		Emergency:      emergency,
		AbnormalVitals: findings,
	}, nil
}

// Resolve closes an emergency. Used by explicit patient/doctor action and by
// the call-rejection side effect.
func (s *Service) Resolve(ctx context.Context, emergencyID string) error {
	if err := s.store.ResolveEmergency(ctx, emergencyID); err != nil {
		return fmt.Errorf("failed to resolve emergency: %w", err)
	}

	logger.Info("Emergency resolved", zap.String("emergency_id", emergencyID))
	return nil
}

func (s *Service) noOp(reason Reason, findings []models.AbnormalFinding) Result {
	metrics.EmergencyChecks.WithLabelValues(string(reason)).Inc()
	return Result{Triggered: false, Reason: reason, AbnormalVitals: findings}
}
