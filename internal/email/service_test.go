package email

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
	"github.com/EdwinEstrella/ironcore-gym/internal/metrics"

	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

type fakeSender struct {
	err  error
	sent []EmailJob
}

func (f *fakeSender) Send(job EmailJob) error {
	f.sent = append(f.sent, job)
	return f.err
}

func newTestService(rdb *redis.Client, sender Sender) *Service {
	svc := New(rdb, sender)
	svc.retryDelay = 0
	return svc
}

func jobJSON(t *testing.T, job EmailJob) string {
	t.Helper()
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return string(data)
}

func TestSend(t *testing.T) {
	db, mock := redismock.NewClientMock()

	mock.Regexp().ExpectLPush("emails", `"kind":"welcome"`).SetVal(1)

	err := newTestService(db, nil).Send(context.Background(), KindWelcome, "ana@example.com", "Ana", "Hello", "Body")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendError(t *testing.T) {
	db, mock := redismock.NewClientMock()

	mock.Regexp().ExpectLPush("emails", `.*`).SetErr(assert.AnError)

	err := newTestService(db, nil).Send(context.Background(), KindWelcome, "ana@example.com", "Ana", "Hello", "Body")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplates(t *testing.T) {
	end := time.Date(2026, 11, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		pattern string
		send    func(*Service) error
	}{
		{
			name:    "welcome",
			pattern: `Welcome to Iron Temple`,
			send: func(s *Service) error {
				return s.SendWelcome(context.Background(), "ana@example.com", "Ana", "Iron Temple")
			},
		},
		{
			name:    "subscription confirmation",
			pattern: `Nov 17, 2026`,
			send: func(s *Service) error {
				return s.SendSubscriptionConfirmation(context.Background(), "ana@example.com", "Ana", "Gold", end.AddDate(0, 0, -30), end)
			},
		},
		{
			name:    "expiry reminder",
			pattern: `"kind":"expiry_reminder"`,
			send: func(s *Service) error {
				return s.SendExpiryReminder(context.Background(), "ana@example.com", "Ana", "Gold", end)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			mock.Regexp().ExpectLPush("emails", tt.pattern).SetVal(1)

			assert.NoError(t, tt.send(newTestService(db, nil)))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProcessNextSends(t *testing.T) {
	db, mock := redismock.NewClientMock()
	sender := &fakeSender{}
	metrics.EmailsSentTotal.Reset()

	mock.ExpectBRPop(2*time.Second, "emails").
		SetVal([]string{"emails", jobJSON(t, EmailJob{Kind: KindWelcome, To: "ana@example.com"})})

	newTestService(db, sender).processNext(context.Background())

	require.Len(t, sender.sent, 1)
	assert.Equal(t, 1, sender.sent[0].Tries)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues(KindWelcome, "sent")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNextRequeuesOnFailure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	sender := &fakeSender{err: errors.New("smtp down")}

	mock.ExpectBRPop(2*time.Second, "emails").
		SetVal([]string{"emails", jobJSON(t, EmailJob{Kind: KindReminder, To: "ana@example.com", Tries: 1})})
	mock.Regexp().ExpectLPush("emails", `"tries":2`).SetVal(1)

	newTestService(db, sender).processNext(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNextMovesToFailedAfterMaxTries(t *testing.T) {
	db, mock := redismock.NewClientMock()
	sender := &fakeSender{err: errors.New("smtp down")}
	metrics.EmailsSentTotal.Reset()

	mock.ExpectBRPop(2*time.Second, "emails").
		SetVal([]string{"emails", jobJSON(t, EmailJob{Kind: KindReminder, To: "ana@example.com", Tries: 2})})
	mock.Regexp().ExpectLPush("emails:failed", `smtp down`).SetVal(1)

	newTestService(db, sender).processNext(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues(KindReminder, "failed")))
}

func TestProcessNextSkipsBadJob(t *testing.T) {
	db, mock := redismock.NewClientMock()
	sender := &fakeSender{}

	mock.ExpectBRPop(2*time.Second, "emails").SetVal([]string{"emails", "{not json"})

	newTestService(db, sender).processNext(context.Background())

	assert.Empty(t, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()

	mock.ExpectLLen("emails").SetVal(5)

	length := newTestService(db, nil).QueueLength(context.Background())
	assert.Equal(t, int64(5), length)
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.EmailQueueLength))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNextDropsJobWhenRequeueFails(t *testing.T) {
	metrics.EmailsSentTotal.Reset()
	db, mock := redismock.NewClientMock()
	sender := &fakeSender{err: errors.New("smtp down")}

	mock.ExpectBRPop(2*time.Second, "emails").
		SetVal([]string{"emails", jobJSON(t, EmailJob{Kind: KindWelcome, To: "ana@example.com"})})
	mock.Regexp().ExpectLPush("emails", `"tries":1`).SetErr(errors.New("connection refused"))

	newTestService(db, sender).processNext(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues(KindWelcome, "dropped")))
}

func TestProcessNextFailedQueueUnavailable(t *testing.T) {
	metrics.EmailsSentTotal.Reset()
	db, mock := redismock.NewClientMock()
	sender := &fakeSender{err: errors.New("smtp down")}

	mock.ExpectBRPop(2*time.Second, "emails").
		SetVal([]string{"emails", jobJSON(t, EmailJob{Kind: KindReminder, To: "ana@example.com", Tries: 2})})
	mock.Regexp().ExpectLPush("emails:failed", `smtp down`).SetErr(errors.New("connection refused"))

	newTestService(db, sender).processNext(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues(KindReminder, "failed")))
}

func TestStartRefreshesQueueGauge(t *testing.T) {
	metrics.EmailQueueLength.Set(0)
	db, mock := redismock.NewClientMock()

	mock.ExpectLLen("emails").SetVal(7)
	mock.ExpectBRPop(2*time.Second, "emails").RedisNil()

	svc := newTestService(db, nil)
	svc.gaugeInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.EmailQueueLength) == 7
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
