package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
	"github.com/EdwinEstrella/ironcore-gym/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3

	KindWelcome      = "welcome"
	KindSubscription = "subscription_confirmation"
	KindReminder     = "expiry_reminder"

	dateLayout = "Jan 2, 2006"
)

type EmailJob struct {
	Kind    string    `json:"kind"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Sender delivers one message. SMTPSender is the production implementation.
type Sender interface {
	Send(job EmailJob) error
}

type Service struct {
	redis         *redis.Client
	sender        Sender
	retryDelay    time.Duration
	gaugeInterval time.Duration
}

func New(rdb *redis.Client, sender Sender) *Service {
	return &Service{
		redis:         rdb,
		sender:        sender,
		retryDelay:    5 * time.Second,
		gaugeInterval: 15 * time.Second,
	}
}

func (s *Service) Send(ctx context.Context, kind, to, name, subject, body string) error {
	job := EmailJob{
		Kind:    kind,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.WithError(err).Error("failed to queue email", "to", to, "kind", kind)
		return err
	}

	metrics.RecordEmail(kind, "queued")
	logger.Debug("email queued", "to", to, "kind", kind)
	return nil
}

func (s *Service) SendWelcome(ctx context.Context, to, name, gymName string) error {
	subject := "Welcome to " + gymName
	body := fmt.Sprintf(`Hi %s,

Welcome to %s! Your membership is now active.

See you at the gym!

- %s`, name, gymName, gymName)

	return s.Send(ctx, KindWelcome, to, name, subject, body)
}

func (s *Service) SendSubscriptionConfirmation(ctx context.Context, to, name, planName string, start, end time.Time) error {
	subject := "Subscription confirmed - " + planName
	body := fmt.Sprintf(`Hi %s,

Your %s subscription is confirmed.

Starts: %s
Ends: %s

- IronCore`, name, planName, start.Format(dateLayout), end.Format(dateLayout))

	return s.Send(ctx, KindSubscription, to, name, subject, body)
}

func (s *Service) SendExpiryReminder(ctx context.Context, to, name, planName string, end time.Time) error {
	subject := "Your " + planName + " subscription is ending soon"
	body := fmt.Sprintf(`Hi %s,

Your %s subscription ends on %s.
Talk to the front desk to renew it.

- IronCore`, name, planName, end.Format(dateLayout))

	return s.Send(ctx, KindReminder, to, name, subject, body)
}

// Start consumes the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	var measured time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			if time.Since(measured) >= s.gaugeInterval {
				s.QueueLength(ctx)
				measured = time.Now()
			}
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.WithError(err).Warn("email queue read failed")
			time.Sleep(time.Second)
		}
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.WithError(err).Error("bad email job")
		return
	}

	job.Tries++
	if err := s.sender.Send(job); err != nil {
		logger.WithError(err).Warn("email send failed", "to", job.To, "attempt", job.Tries)

		if job.Tries < maxTries {
			if s.retryDelay > 0 {
				time.Sleep(s.retryDelay)
			}
			if err := s.push(queueKey, job); err != nil {
				metrics.RecordEmail(job.Kind, "dropped")
				logger.WithError(err).Error("email requeue failed, job dropped",
					"to", job.To, "kind", job.Kind, "attempt", job.Tries)
			}
		} else {
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Kind, "sent")
	logger.Info("email sent", "to", job.To, "kind", job.Kind)
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	metrics.RecordEmail(job.Kind, "failed")

	if pushErr := s.push(failedQueueKey, failed); pushErr != nil {
		logger.WithError(pushErr).Error("email failed and could not be recorded",
			"to", job.To, "kind", job.Kind, "tries", job.Tries, "send_error", err.Error())
		return
	}
	logger.Error("email moved to failed queue", "to", job.To, "tries", job.Tries)
}

// push writes v as JSON onto the head of the list at key. The caller's context
// may already be cancelled, so it uses its own.
func (s *Service) push(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.redis.LPush(ctx, key, string(data)).Err()
}

// QueueLength reports the pending jobs and publishes them on the queue gauge.
// The worker refreshes it every gaugeInterval.
func (s *Service) QueueLength(ctx context.Context) int64 {
	length, err := s.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		logger.WithError(err).Warn("email queue length unavailable")
		return 0
	}
	metrics.EmailQueueLength.Set(float64(length))
	return length
}
