package videocall

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/internal/metrics"
	"github.com/pranishuprety/Respondrr/internal/storage/models"
	"github.com/pranishuprety/Respondrr/internal/storage/supabase"
	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// CallStore is the persistence surface the call flow depends on.
type CallStore interface {
	InsertVideoCall(ctx context.Context, call *models.VideoCall) (*models.VideoCall, error)
	GetVideoCall(ctx context.Context, callID int64) (*models.VideoCall, error)
	UpdateVideoCall(ctx context.Context, callID int64, patch map[string]any) error
	EmergencyByVideoCall(ctx context.Context, videoCallID string) (*models.Emergency, error)
	ResolveEmergency(ctx context.Context, emergencyID string) error
	SetEmergencyVideoCall(ctx context.Context, emergencyID, videoCallID string) error
}

// CallSession is what the API returns to a participant joining a call.
type CallSession struct {
	Call  *models.VideoCall `json:"call"`
	Token string            `json:"token,omitempty"`
}

type Service struct {
	store    CallStore
	provider RoomProvider
}

func NewService(store CallStore, provider RoomProvider) *Service {
	return &Service{store: store, provider: provider}
}

// InitiateCall creates a room with the provider, records the call as
// ringing, and mints a join token for the caller.
func (s *Service) InitiateCall(ctx context.Context, conversationID int64, initiatedBy string) (*CallSession, error) {
	room, err := s.provider.CreateRoom(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to create call room: %w", err)
	}

	call := &models.VideoCall{
		ConversationID: conversationID,
		Provider:       "daily",
		RoomName:       room.Name,
		RoomURL:        room.URL,
		StartedBy:      initiatedBy,
		Status:         models.CallStatusRinging,
	}

	inserted, err := s.store.InsertVideoCall(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("failed to record call: %w", err)
	}

	token, err := s.provider.GetMeetingToken(ctx, room.Name, initiatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to mint caller token: %w", err)
	}

	metrics.VideoCallsStarted.Inc()
	logger.Info("Video call initiated",
		zap.Int64("call_id", inserted.ID),
		zap.Int64("conversation_id", conversationID))

	return &CallSession{Call: inserted, Token: token}, nil
}

// AcceptCall moves a ringing call to active and returns a join token for
// the accepting participant.
func (s *Service) AcceptCall(ctx context.Context, callID int64, participant string) (*CallSession, error) {
	call, err := s.store.GetVideoCall(ctx, callID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	patch := map[string]any{
		"status":     models.CallStatusActive,
		"started_at": now,
	}
	if err := s.store.UpdateVideoCall(ctx, callID, patch); err != nil {
		return nil, fmt.Errorf("failed to mark call active: %w", err)
	}
	call.Status = models.CallStatusActive
	call.StartedAt = &now

	token, err := s.provider.GetMeetingToken(ctx, call.RoomName, participant)
	if err != nil {
		return nil, fmt.Errorf("failed to mint participant token: %w", err)
	}

	return &CallSession{Call: call, Token: token}, nil
}

// EndCall marks the call ended.
func (s *Service) EndCall(ctx context.Context, callID int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.store.UpdateVideoCall(ctx, callID, map[string]any{
		"status":   models.CallStatusEnded,
		"ended_at": now,
	})
}

// RejectCall marks the call missed and resolves the emergency attached to
// it, if one is. A missed emergency call closes the emergency rather than
// leaving it ringing forever.
func (s *Service) RejectCall(ctx context.Context, callID int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.store.UpdateVideoCall(ctx, callID, map[string]any{
		"status":   models.CallStatusMissed,
		"ended_at": now,
	}); err != nil {
		return fmt.Errorf("failed to mark call missed: %w", err)
	}

	emg, err := s.store.EmergencyByVideoCall(ctx, strconv.FormatInt(callID, 10))
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up emergency for call: %w", err)
	}

	if err := s.store.ResolveEmergency(ctx, emg.ID); err != nil {
		return fmt.Errorf("failed to resolve emergency %s: %w", emg.ID, err)
	}
	logger.Info("Emergency resolved after rejected call",
		zap.String("emergency_id", emg.ID),
		zap.Int64("call_id", callID))
	return nil
}

// AttachToEmergency links a call to an emergency so a later rejection can
// resolve it.
func (s *Service) AttachToEmergency(ctx context.Context, emergencyID string, callID int64) error {
	return s.store.SetEmergencyVideoCall(ctx, emergencyID, strconv.FormatInt(callID, 10))
}
