package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranishuprety/Respondrr/internal/storage/models"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	header http.Header
	body   map[string]any
}

// newTestClient stands up a PostgREST stub that records every request and
// replies with the given JSON body.
func newTestClient(t *testing.T, replyStatus int, replyBody string) (*Client, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  map[string]string{},
			header: r.Header.Clone(),
		}
		for k, vs := range r.URL.Query() {
			rec.query[k] = vs[0]
		}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&rec.body)
		}
		requests = append(requests, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(replyStatus)
		w.Write([]byte(replyBody))
	}))
	t.Cleanup(server.Close)

	return NewClient(server.URL, "service-key", 5*time.Second), &requests
}

func TestSelectEncodesFilters(t *testing.T) {
	client, requests := newTestClient(t, http.StatusOK, `[]`)

	since := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	_, err := client.SamplesSince(context.Background(), TableHealthRealtime, "pat@example.com", since)
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/rest/v1/health_realtime", req.path)
	assert.Equal(t, "eq.pat@example.com", req.query["email"])
	assert.Equal(t, "gte.2026-08-29T09:00:00Z", req.query["timestamp"])
	assert.Equal(t, "*", req.query["select"])
	assert.Equal(t, "service-key", req.header.Get("Apikey"))
	assert.Equal(t, "Bearer service-key", req.header.Get("Authorization"))
}

func TestLatestConversationOrderAndLimit(t *testing.T) {
	client, requests := newTestClient(t, http.StatusOK, `[{"id": 42, "patient_id": "patient-1"}]`)

	conv, err := client.LatestConversation(context.Background(), "patient-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), conv.ID)

	req := (*requests)[0]
	assert.Equal(t, "created_at.desc", req.query["order"])
	assert.Equal(t, "1", req.query["limit"])
	assert.Equal(t, "eq.patient-1", req.query["patient_id"])
}

func TestLatestConversationEmptyIsNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `[]`)

	_, err := client.LatestConversation(context.Background(), "patient-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestActiveDoctorIDFiltersOnActiveStatus(t *testing.T) {
	client, requests := newTestClient(t, http.StatusOK, `[{"patient_id": "patient-1", "doctor_id": "doctor-1", "status": "active"}]`)

	doctorID, err := client.ActiveDoctorID(context.Background(), "patient-1")
	require.NoError(t, err)
	assert.Equal(t, "doctor-1", doctorID)

	req := (*requests)[0]
	assert.Equal(t, "/rest/v1/patient_doctor_links", req.path)
	assert.Equal(t, "eq.active", req.query["status"])
}

func TestInsertEmergencyReturnsRepresentation(t *testing.T) {
	client, requests := newTestClient(t, http.StatusCreated,
		`[{"id": "emg-1", "patient_id": "patient-1", "conversation_id": 42, "status": "active"}]`)

	created, err := client.InsertEmergency(context.Background(), &models.Emergency{
		PatientID:      "patient-1",
		DoctorID:       "doctor-1",
		ConversationID: 42,
		Status:         models.EmergencyStatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "emg-1", created.ID)

	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/rest/v1/emergencies", req.path)
	assert.Equal(t, "return=representation", req.header.Get("Prefer"))
	assert.NotEmpty(t, req.body["created_at"])
}

func TestAcknowledgeAlertOnlyPatchesOpenRows(t *testing.T) {
	client, requests := newTestClient(t, http.StatusNoContent, ``)

	require.NoError(t, client.AcknowledgeAlert(context.Background(), "alert-1", "doctor-1"))

	req := (*requests)[0]
	assert.Equal(t, http.MethodPatch, req.method)
	assert.Equal(t, "eq.alert-1", req.query["id"])
	assert.Equal(t, "eq.open", req.query["status"])
	assert.Equal(t, models.AlertStatusAcknowledged, req.body["status"])
	assert.Equal(t, "doctor-1", req.body["acknowledged_by"])
	assert.NotEmpty(t, req.body["acknowledged_at"])
}

func TestUpdateJobStatusOmitsEmptyErrorMessage(t *testing.T) {
	client, requests := newTestClient(t, http.StatusNoContent, ``)

	require.NoError(t, client.UpdateJobStatus(context.Background(), 7, models.JobStatusCompleted, ""))

	req := (*requests)[0]
	assert.Equal(t, "eq.7", req.query["id"])
	assert.Equal(t, models.JobStatusCompleted, req.body["status"])
	_, hasError := req.body["error_message"]
	assert.False(t, hasError)
}

func TestServerErrorSurfacesStatus(t *testing.T) {
	client, _ := newTestClient(t, http.StatusInternalServerError, `{"message": "boom"}`)

	_, err := client.PendingJobs(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
