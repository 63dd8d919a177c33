package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PresenceRecorder marks a user as recently active.
type PresenceRecorder interface {
	Touch(ctx context.Context, userID string, ttl time.Duration) error
}

// CoordinatorPresence stamps authenticated coordinators as online for window. Auto-approval rules
// that require an online coordinator read the same tracker.
func CoordinatorPresence(recorder PresenceRecorder, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if claims := ClaimsFrom(c); recorder != nil && claims.IsCoordinator() {
			if err := recorder.Touch(c.Request.Context(), claims.UserID, window); err != nil {
				logger.Warn("failed to record coordinator presence", zap.String("user_id", claims.UserID), zap.Error(err))
			}
		}
		c.Next()
	}
}
