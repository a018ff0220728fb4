package videocall

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// Room is the provider's answer to a room-creation request.
type Room struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RoomProvider is what the call flow needs from the video backend.
type RoomProvider interface {
	CreateRoom(ctx context.Context, conversationID int64) (*Room, error)
	GetMeetingToken(ctx context.Context, roomName, participant string) (string, error)
}

// Client talks to a Daily-style video API: rooms are created on demand and
// participants join with short-lived meeting tokens.
type Client struct {
	http *resty.Client
}

func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	http := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json")

	logger.Info("Video room provider initialized", zap.String("api_url", apiURL))

	return &Client{http: http}
}

func (c *Client) CreateRoom(ctx context.Context, conversationID int64) (*Room, error) {
	roomName := fmt.Sprintf("conv-%d-%s", conversationID, uuid.New().String()[:8])

	payload := map[string]any{
		"name":    roomName,
		"privacy": "public",
		"properties": map[string]any{
			"enable_recording": false,
			"max_participants": 2,
		},
	}

	var room Room
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&room).
		Post("/rooms")
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("room creation returned %d: %s", resp.StatusCode(), resp.String())
	}

	logger.Info("Video room created", zap.String("room_name", room.Name))
	return &room, nil
}

func (c *Client) GetMeetingToken(ctx context.Context, roomName, participant string) (string, error) {
	payload := map[string]any{
		"room_name": roomName,
		"user_name": participant,
	}

	var result struct {
		Token string `json:"token"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post("/meeting-tokens")
	if err != nil {
		return "", fmt.Errorf("failed to mint meeting token: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("meeting token returned %d: %s", resp.StatusCode(), resp.String())
	}

	return result.Token, nil
}
