package subscriber

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Subscription is a validated sign-up.
type Subscription struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewSubscription stamps an email with a fresh id and creation time.
func NewSubscription(email string, now time.Time) Subscription {
	return Subscription{ID: uuid.New(), Email: email, CreatedAt: now.UTC()}
}

// Recorder persists subscriptions somewhere.
type Recorder interface {
	Record(ctx context.Context, sub Subscription) error
}

// LogRecorder only logs subscriptions. It is the default when no
// database is configured.
type LogRecorder struct {
	Logger *slog.Logger
}

// Record implements Recorder.
func (r LogRecorder) Record(ctx context.Context, sub Subscription) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "new subscription", "id", sub.ID, "email", sub.Email)
	return nil
}
