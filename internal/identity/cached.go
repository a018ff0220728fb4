package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/pkg/logger"
	"github.com/pranishuprety/Respondrr/pkg/utils"
)

// Directory is what the pipeline needs from the user directory.
type Directory interface {
	LookupUserID(ctx context.Context, email string) (string, error)
	ListUserEmails(ctx context.Context) ([]string, error)
}

// UserIDCache is implemented by the redis cache client.
type UserIDCache interface {
	GetUserID(ctx context.Context, emailHash string) (string, bool, error)
	SetUserID(ctx context.Context, emailHash, userID string) error
}

// CachedDirectory decorates a Directory with an email->id cache. Cache
// failures degrade to a direct lookup, never to an error.
type CachedDirectory struct {
	directory Directory
	cache     UserIDCache
}

func NewCachedDirectory(directory Directory, cache UserIDCache) *CachedDirectory {
	return &CachedDirectory{directory: directory, cache: cache}
}

func (d *CachedDirectory) LookupUserID(ctx context.Context, email string) (string, error) {
	key := utils.HashString(email)

	userID, ok, err := d.cache.GetUserID(ctx, key)
	if err != nil {
		logger.Warn("User id cache read failed", zap.Error(err))
	}
	if ok {
		return userID, nil
	}

	userID, err = d.directory.LookupUserID(ctx, email)
	if err != nil {
		return "", err
	}

	if err := d.cache.SetUserID(ctx, key, userID); err != nil {
		logger.Warn("User id cache write failed", zap.Error(err))
	}

	return userID, nil
}

func (d *CachedDirectory) ListUserEmails(ctx context.Context) ([]string, error) {
	return d.directory.ListUserEmails(ctx)
}
