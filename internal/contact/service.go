package contact

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/ratelimit"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/tracking"
)

type Tracker interface {
	Track(ctx context.Context, visitorID, name string, params tracking.Params)
}

type Service struct {
	repo    Repository
	limiter ratelimit.Limiter
	tracker Tracker
	now     func() time.Time
}

func NewService(repo Repository, limiter ratelimit.Limiter, tracker Tracker) *Service {
	return &Service{
		repo:    repo,
		limiter: limiter,
		tracker: tracker,
		now:     time.Now,
	}
}

// Submit stores a contact message. The client address is rate limited
// before anything is validated or written.
func (s *Service) Submit(ctx context.Context, visitorID, clientIP string, msg Message) error {
	if s.limiter != nil {
		decision, err := s.limiter.Allow(ctx, clientIP)
		if err != nil {
			// a broken limiter must not take the contact form down
			log.Printf("rate limit error: %v \n", err)
		} else if !decision.Allowed {
			return &RateLimitError{RetryAfter: decision.RetryAfter}
		}
	}

	msg.Normalize()
	if err := msg.Validate(); err != nil {
		return err
	}
	msg.ClientIP = clientIP
	msg.CreatedAt = s.now().UTC()

	if err := s.repo.SaveMessage(ctx, &msg); err != nil {
		return fmt.Errorf("submit contact failed: %w", err)
	}
	if s.tracker != nil {
		s.tracker.Track(ctx, visitorID, tracking.EventLead, tracking.Params{ContentName: "contact"})
	}
	return nil
}

// Subscribe adds email to the newsletter. created is false when the address
// was already subscribed.
func (s *Service) Subscribe(ctx context.Context, visitorID, email, source string) (created bool, err error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return false, err
	}

	err = s.repo.AddSubscriber(ctx, &Subscriber{Email: email, Source: source, CreatedAt: s.now().UTC()})
	if errors.Is(err, ErrAlreadySubscribed) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("subscribe failed: %w", err)
	}
	if s.tracker != nil {
		s.tracker.Track(ctx, visitorID, tracking.EventSubscribe, tracking.Params{ContentName: "newsletter"})
	}
	return true, nil
}
