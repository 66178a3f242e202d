package subscriber

import (
	"context"
	"html"
	"log/slog"
	"time"

	"github.com/RobinCoderZhao/happening-now/pkg/notify"
)

// SuccessMessage is returned to clients after a successful sign-up.
const SuccessMessage = "Subscribed successfully!"

// confirmTimeout bounds the confirmation send so a slow mail server
// cannot hold the sign-up request open.
const confirmTimeout = 10 * time.Second

// Service validates sign-ups, hands them to a Recorder and optionally
// sends a confirmation through a notify.Dispatcher.
type Service struct {
	recorder Recorder
	notifier *notify.Dispatcher
	now      func() time.Time
	logger   *slog.Logger

	confirmTimeout time.Duration
}

// NewService creates a subscription service. A nil recorder logs only;
// a nil or empty dispatcher sends no confirmation.
func NewService(recorder Recorder, notifier *notify.Dispatcher) *Service {
	if recorder == nil {
		recorder = LogRecorder{}
	}
	return &Service{
		recorder: recorder,
		notifier: notifier,
		now:      time.Now,
		logger:   slog.Default(),

		confirmTimeout: confirmTimeout,
	}
}

// Subscribe validates the address and records it. Only validation errors
// are returned; recorder and notifier failures are logged.
func (s *Service) Subscribe(ctx context.Context, email string) (Subscription, error) {
	email, err := Validate(email)
	if err != nil {
		return Subscription{}, err
	}

	sub := NewSubscription(email, s.now())
	if err := s.recorder.Record(ctx, sub); err != nil {
		s.logger.Error("record subscription failed", "email", sub.Email, "error", err)
	}

	if s.notifier != nil && s.notifier.Len() > 0 {
		sendCtx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
		defer cancel()
		if err := s.notifier.SendAll(sendCtx, confirmation(sub)); err != nil {
			s.logger.Warn("subscription confirmation failed", "email", sub.Email, "error", err)
		}
	}
	return sub, nil
}

func confirmation(sub Subscription) notify.Message {
	const text = "Thank you for subscribing to our daily trending news updates!"
	return notify.Message{
		To:       sub.Email,
		Title:    "Welcome to Happening Now!",
		Body:     text,
		HTMLBody: "<strong>" + html.EscapeString(text) + "</strong>",
		Format:   "html",
	}
}
