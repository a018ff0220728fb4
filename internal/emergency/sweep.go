package emergency

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// RunHourlySweep runs the trigger check for every known user, sequentially.
// The queue path covers patients whose uploads tripped a storage trigger;
// this sweep is the safety net for everyone else.
func (s *Service) RunHourlySweep(ctx context.Context) error {
	emails, err := s.directory.ListUserEmails(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users for emergency sweep: %w", err)
	}

	logger.Info("Running emergency sweep", zap.Int("users", len(emails)))

	triggered := 0
	for _, email := range emails {
		result, err := s.CheckAndTrigger(ctx, email)
		if err != nil {
			logger.Error("Emergency sweep failed for user",
				zap.String("email", email),
				zap.Error(err),
			)
			continue
		}
		if result.Triggered {
			triggered++
		}
	}

	logger.Info("Emergency sweep completed",
		zap.Int("users", len(emails)),
		zap.Int("triggered", triggered),
	)

	return nil
}
