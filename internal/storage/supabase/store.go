package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/pranishuprety/Respondrr/internal/storage/models"
)

const (
	TableHealthRealtime   = "health_realtime"
	TableHealthAggregated = "health_aggregated"
	TableConversations    = "conversations"
	TableDoctorLinks      = "patient_doctor_links"
	TableProfiles         = "profiles"
	TableEmergencies      = "emergencies"
	TableAlerts           = "alerts"
	TableCheckQueue       = "emergency_check_queue"
	TableVideoCalls       = "video_calls"
)

func eq(v string) string     { return "eq." + v }
func eqInt(v int64) string   { return fmt.Sprintf("eq.%d", v) }
func gte(t time.Time) string { return "gte." + t.UTC().Format(time.RFC3339) }
func nowISO() string         { return time.Now().UTC().Format(time.RFC3339) }

// SamplesSince returns all samples for email in table with timestamp >= since.
func (c *Client) SamplesSince(ctx context.Context, table, email string, since time.Time) ([]models.Sample, error) {
	var samples []models.Sample
	err := c.Select(ctx, table, Query{
		Filters: map[string]string{
			"email":     eq(email),
			"timestamp": gte(since),
		},
	}, &samples)
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// LatestConversation returns the patient's most recently created
// conversation, or ErrNotFound when they have none.
func (c *Client) LatestConversation(ctx context.Context, patientID string) (*models.Conversation, error) {
	var conversations []models.Conversation
	err := c.Select(ctx, TableConversations, Query{
		Filters: map[string]string{"patient_id": eq(patientID)},
		Order:   "created_at.desc",
		Limit:   1,
	}, &conversations)
	if err != nil {
		return nil, err
	}
	if len(conversations) == 0 {
		return nil, ErrNotFound
	}
	return &conversations[0], nil
}

// ActiveDoctorID returns the doctor from the patient's active link row, or
// ErrNotFound when no active link exists.
func (c *Client) ActiveDoctorID(ctx context.Context, patientID string) (string, error) {
	var links []models.DoctorLink
	err := c.Select(ctx, TableDoctorLinks, Query{
		Filters: map[string]string{
			"patient_id": eq(patientID),
			"status":     eq("active"),
		},
		Limit: 1,
	}, &links)
	if err != nil {
		return "", err
	}
	if len(links) == 0 {
		return "", ErrNotFound
	}
	return links[0].DoctorID, nil
}

func (c *Client) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profiles []models.Profile
	err := c.Select(ctx, TableProfiles, Query{
		Filters: map[string]string{"id": eq(id)},
		Limit:   1,
	}, &profiles)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}

// HasActiveEmergency reports whether the conversation already has an
// emergency with status=active. This is the idempotency guard read.
func (c *Client) HasActiveEmergency(ctx context.Context, conversationID int64) (bool, error) {
	var emergencies []models.Emergency
	err := c.Select(ctx, TableEmergencies, Query{
		Filters: map[string]string{
			"conversation_id": eqInt(conversationID),
			"status":          eq(models.EmergencyStatusActive),
		},
		Limit: 1,
	}, &emergencies)
	if err != nil {
		return false, err
	}
	return len(emergencies) > 0, nil
}

func (c *Client) InsertEmergency(ctx context.Context, emergency *models.Emergency) (*models.Emergency, error) {
	if emergency.CreatedAt == "" {
		emergency.CreatedAt = nowISO()
	}

	var inserted []models.Emergency
	if err := c.Insert(ctx, TableEmergencies, emergency, &inserted); err != nil {
		return nil, err
	}
	if len(inserted) == 0 {
		return nil, fmt.Errorf("emergency insert returned no rows")
	}
	return &inserted[0], nil
}

func (c *Client) ResolveEmergency(ctx context.Context, emergencyID string) error {
	patch := map[string]any{
		"status":      models.EmergencyStatusResolved,
		"resolved_at": nowISO(),
	}
	return c.Update(ctx, TableEmergencies, patch, map[string]string{"id": eq(emergencyID)})
}

func (c *Client) SetEmergencyVideoCall(ctx context.Context, emergencyID, videoCallID string) error {
	patch := map[string]any{"video_call_id": videoCallID}
	return c.Update(ctx, TableEmergencies, patch, map[string]string{"id": eq(emergencyID)})
}

// EmergencyByVideoCall finds the emergency linked to a video call, if any.
func (c *Client) EmergencyByVideoCall(ctx context.Context, videoCallID string) (*models.Emergency, error) {
	var emergencies []models.Emergency
	err := c.Select(ctx, TableEmergencies, Query{
		Filters: map[string]string{"video_call_id": eq(videoCallID)},
		Limit:   1,
	}, &emergencies)
	if err != nil {
		return nil, err
	}
	if len(emergencies) == 0 {
		return nil, ErrNotFound
	}
	return &emergencies[0], nil
}

func (c *Client) InsertAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	if alert.CreatedAt == "" {
		alert.CreatedAt = nowISO()
	}
	if alert.Status == "" {
		alert.Status = models.AlertStatusOpen
	}

	var inserted []models.Alert
	if err := c.Insert(ctx, TableAlerts, alert, &inserted); err != nil {
		return nil, err
	}
	if len(inserted) == 0 {
		return nil, fmt.Errorf("alert insert returned no rows")
	}
	return &inserted[0], nil
}

// AcknowledgeAlert transitions an open alert to acknowledged, recording who
// and when. Alerts are never deleted.
func (c *Client) AcknowledgeAlert(ctx context.Context, alertID, acknowledgedBy string) error {
	patch := map[string]any{
		"status":          models.AlertStatusAcknowledged,
		"acknowledged_by": acknowledgedBy,
		"acknowledged_at": nowISO(),
	}
	return c.Update(ctx, TableAlerts, patch, map[string]string{
		"id":     eq(alertID),
		"status": eq(models.AlertStatusOpen),
	})
}

func (c *Client) PendingJobs(ctx context.Context, limit int) ([]models.EmergencyCheckJob, error) {
	var jobs []models.EmergencyCheckJob
	err := c.Select(ctx, TableCheckQueue, Query{
		Filters: map[string]string{"status": eq(models.JobStatusPending)},
		Limit:   limit,
	}, &jobs)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) UpdateJobStatus(ctx context.Context, jobID int64, status, errorMessage string) error {
	patch := map[string]any{
		"status":       status,
		"processed_at": nowISO(),
	}
	if errorMessage != "" {
		patch["error_message"] = errorMessage
	}
	return c.Update(ctx, TableCheckQueue, patch, map[string]string{"id": eqInt(jobID)})
}

func (c *Client) InsertVideoCall(ctx context.Context, call *models.VideoCall) (*models.VideoCall, error) {
	if call.CreatedAt == "" {
		call.CreatedAt = nowISO()
	}

	var inserted []models.VideoCall
	if err := c.Insert(ctx, TableVideoCalls, call, &inserted); err != nil {
		return nil, err
	}
	if len(inserted) == 0 {
		return nil, fmt.Errorf("video call insert returned no rows")
	}
	return &inserted[0], nil
}

func (c *Client) GetVideoCall(ctx context.Context, callID int64) (*models.VideoCall, error) {
	var calls []models.VideoCall
	err := c.Select(ctx, TableVideoCalls, Query{
		Filters: map[string]string{"id": eqInt(callID)},
		Limit:   1,
	}, &calls)
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		return nil, ErrNotFound
	}
	return &calls[0], nil
}

func (c *Client) UpdateVideoCall(ctx context.Context, callID int64, patch map[string]any) error {
	return c.Update(ctx, TableVideoCalls, patch, map[string]string{"id": eqInt(callID)})
}
