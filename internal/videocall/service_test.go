package videocall

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranishuprety/Respondrr/internal/storage/models"
	"github.com/pranishuprety/Respondrr/internal/storage/supabase"
)

type fakeCallStore struct {
	calls        map[int64]*models.VideoCall
	patches      map[int64][]map[string]any
	emergency    *models.Emergency
	emergencyErr error
	resolved     []string
	attached     map[string]string
}

func newFakeCallStore() *fakeCallStore {
	return &fakeCallStore{
		calls:    map[int64]*models.VideoCall{},
		patches:  map[int64][]map[string]any{},
		attached: map[string]string{},
	}
}

func (s *fakeCallStore) InsertVideoCall(ctx context.Context, call *models.VideoCall) (*models.VideoCall, error) {
	call.ID = int64(len(s.calls) + 1)
	s.calls[call.ID] = call
	return call, nil
}

func (s *fakeCallStore) GetVideoCall(ctx context.Context, callID int64) (*models.VideoCall, error) {
	call, ok := s.calls[callID]
	if !ok {
		return nil, supabase.ErrNotFound
	}
	return call, nil
}

func (s *fakeCallStore) UpdateVideoCall(ctx context.Context, callID int64, patch map[string]any) error {
	s.patches[callID] = append(s.patches[callID], patch)
	return nil
}

func (s *fakeCallStore) EmergencyByVideoCall(ctx context.Context, videoCallID string) (*models.Emergency, error) {
	if s.emergencyErr != nil {
		return nil, s.emergencyErr
	}
	if s.emergency == nil {
		return nil, supabase.ErrNotFound
	}
	return s.emergency, nil
}

func (s *fakeCallStore) ResolveEmergency(ctx context.Context, emergencyID string) error {
	s.resolved = append(s.resolved, emergencyID)
	return nil
}

func (s *fakeCallStore) SetEmergencyVideoCall(ctx context.Context, emergencyID, videoCallID string) error {
	s.attached[emergencyID] = videoCallID
	return nil
}

type fakeProvider struct {
	room      *Room
	roomErr   error
	token     string
	tokenErr  error
	tokenFor  []string
	roomCalls int
}

func (p *fakeProvider) CreateRoom(ctx context.Context, conversationID int64) (*Room, error) {
	p.roomCalls++
	if p.roomErr != nil {
		return nil, p.roomErr
	}
	return p.room, nil
}

func (p *fakeProvider) GetMeetingToken(ctx context.Context, roomName, participant string) (string, error) {
	p.tokenFor = append(p.tokenFor, participant)
	if p.tokenErr != nil {
		return "", p.tokenErr
	}
	return p.token, nil
}

func testRoom() *Room {
	return &Room{Name: "conv-42-abcd1234", URL: "https://respondr.daily.co/conv-42-abcd1234"}
}

func TestInitiateCallRecordsRingingCall(t *testing.T) {
	store := newFakeCallStore()
	provider := &fakeProvider{room: testRoom(), token: "tok-1"}
	svc := NewService(store, provider)

	session, err := svc.InitiateCall(context.Background(), 42, "patient-1")
	require.NoError(t, err)

	assert.Equal(t, "tok-1", session.Token)
	assert.Equal(t, models.CallStatusRinging, session.Call.Status)
	assert.Equal(t, int64(42), session.Call.ConversationID)
	assert.Equal(t, "conv-42-abcd1234", session.Call.RoomName)
	assert.Equal(t, []string{"patient-1"}, provider.tokenFor)
}

func TestInitiateCallProviderFailure(t *testing.T) {
	store := newFakeCallStore()
	svc := NewService(store, &fakeProvider{roomErr: errors.New("api down")})

	_, err := svc.InitiateCall(context.Background(), 42, "patient-1")
	require.Error(t, err)
	assert.Empty(t, store.calls)
}

func TestAcceptCallActivatesAndMintsToken(t *testing.T) {
	store := newFakeCallStore()
	provider := &fakeProvider{room: testRoom(), token: "tok-2"}
	svc := NewService(store, provider)

	session, err := svc.InitiateCall(context.Background(), 42, "patient-1")
	require.NoError(t, err)

	accepted, err := svc.AcceptCall(context.Background(), session.Call.ID, "doctor-1")
	require.NoError(t, err)

	assert.Equal(t, models.CallStatusActive, accepted.Call.Status)
	require.NotNil(t, accepted.Call.StartedAt)
	assert.Equal(t, "tok-2", accepted.Token)

	patches := store.patches[session.Call.ID]
	require.Len(t, patches, 1)
	assert.Equal(t, models.CallStatusActive, patches[0]["status"])
	assert.NotEmpty(t, patches[0]["started_at"])
}

func TestAcceptCallUnknownCall(t *testing.T) {
	svc := NewService(newFakeCallStore(), &fakeProvider{})

	_, err := svc.AcceptCall(context.Background(), 99, "doctor-1")
	assert.True(t, errors.Is(err, supabase.ErrNotFound))
}

func TestEndCallMarksEnded(t *testing.T) {
	store := newFakeCallStore()
	svc := NewService(store, &fakeProvider{room: testRoom()})

	require.NoError(t, svc.EndCall(context.Background(), 7))

	patches := store.patches[7]
	require.Len(t, patches, 1)
	assert.Equal(t, models.CallStatusEnded, patches[0]["status"])
	assert.NotEmpty(t, patches[0]["ended_at"])
}

func TestRejectCallResolvesLinkedEmergency(t *testing.T) {
	store := newFakeCallStore()
	store.emergency = &models.Emergency{ID: "emg-1", Status: models.EmergencyStatusActive}
	svc := NewService(store, &fakeProvider{})

	require.NoError(t, svc.RejectCall(context.Background(), 7))

	patches := store.patches[7]
	require.Len(t, patches, 1)
	assert.Equal(t, models.CallStatusMissed, patches[0]["status"])
	assert.Equal(t, []string{"emg-1"}, store.resolved)
}

func TestRejectCallWithoutEmergencyIsFine(t *testing.T) {
	store := newFakeCallStore()
	svc := NewService(store, &fakeProvider{})

	require.NoError(t, svc.RejectCall(context.Background(), 7))
	assert.Empty(t, store.resolved)
}

func TestAttachToEmergency(t *testing.T) {
	store := newFakeCallStore()
	svc := NewService(store, &fakeProvider{})

	require.NoError(t, svc.AttachToEmergency(context.Background(), "emg-1", 7))
	assert.Equal(t, "7", store.attached["emg-1"])
}
