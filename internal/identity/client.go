package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// ErrUserNotFound means the directory has no user with that email.
var ErrUserNotFound = errors.New("user not found")

const listPageSize = 100

// Client resolves opaque user ids from emails through the Supabase auth
// admin API. Lookups are service-role only; nothing here is reachable with
// an anon key.
type Client struct {
	http *resty.Client
}

type adminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type adminUsersResponse struct {
	Users []adminUser `json:"users"`
}

func NewClient(baseURL, serviceKey string, timeout time.Duration) *Client {
	http := resty.New().
		SetBaseURL(baseURL+"/auth/v1").
		SetTimeout(timeout).
		SetHeader("apikey", serviceKey).
		SetHeader("Authorization", "Bearer "+serviceKey).
		SetHeader("Accept", "application/json")

	logger.Info("Identity client initialized", zap.String("base_url", baseURL))

	return &Client{http: http}
}

// LookupUserID resolves an email to the user's id. The admin endpoint does a
// fuzzy query, so results are matched on exact email before trusting them.
func (c *Client) LookupUserID(ctx context.Context, email string) (string, error) {
	var result adminUsersResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("query", email).
		SetResult(&result).
		Get("/admin/users")
	if err != nil {
		return "", fmt.Errorf("failed to query user directory: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("user directory returned %d: %s", resp.StatusCode(), resp.String())
	}

	for _, user := range result.Users {
		if user.Email == email {
			return user.ID, nil
		}
	}

	return "", ErrUserNotFound
}

// ListUserEmails pages through the whole directory and returns every known
// email. Used by the hourly sweeps.
func (c *Client) ListUserEmails(ctx context.Context) ([]string, error) {
	var emails []string

	for page := 1; ; page++ {
		var result adminUsersResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("page", fmt.Sprintf("%d", page)).
			SetQueryParam("per_page", fmt.Sprintf("%d", listPageSize)).
			SetResult(&result).
			Get("/admin/users")
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("user directory returned %d: %s", resp.StatusCode(), resp.String())
		}

		if len(result.Users) == 0 {
			break
		}

		for _, user := range result.Users {
			if user.Email != "" {
				emails = append(emails, user.Email)
			}
		}
	}

	logger.Debug("User directory listed", zap.Int("count", len(emails)))
	return emails, nil
}
