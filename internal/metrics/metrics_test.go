package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/api/members", "200", 0.5)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/members", "200"))
	assert.Equal(t, float64(1), count)
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/api/auth/login", "200", 0.1)
	RecordHTTPRequest("POST", "/api/auth/login", "200", 0.2)
	RecordHTTPRequest("POST", "/api/auth/login", "401", 0.05)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/auth/login", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/auth/login", "401")))
}

func TestRecordMembers(t *testing.T) {
	before := testutil.ToFloat64(MembersCreatedTotal)
	RecordMemberCreated()
	RecordMemberCreated()
	assert.Equal(t, before+2, testutil.ToFloat64(MembersCreatedTotal))

	cancelled := testutil.ToFloat64(MembersCancelledTotal)
	RecordMemberCancelled()
	assert.Equal(t, cancelled+1, testutil.ToFloat64(MembersCancelledTotal))
}

func TestRecordSubscription(t *testing.T) {
	SubscriptionsCreatedTotal.Reset()

	RecordSubscription("Gold")
	RecordSubscription("Gold")
	RecordSubscription("Basic")

	assert.Equal(t, float64(2), testutil.ToFloat64(SubscriptionsCreatedTotal.WithLabelValues("Gold")))
	assert.Equal(t, float64(1), testutil.ToFloat64(SubscriptionsCreatedTotal.WithLabelValues("Basic")))
}

func TestRecordSubscriptionsExpired(t *testing.T) {
	SubscriptionsExpiredTotal.Reset()

	RecordSubscriptionsExpired("overdue", 3)
	RecordSubscriptionsExpired("overdue", 0)
	RecordSubscriptionsExpired("replaced", 1)

	assert.Equal(t, float64(3), testutil.ToFloat64(SubscriptionsExpiredTotal.WithLabelValues("overdue")))
	assert.Equal(t, float64(1), testutil.ToFloat64(SubscriptionsExpiredTotal.WithLabelValues("replaced")))
}

func TestRecordPlanDeletionBlocked(t *testing.T) {
	before := testutil.ToFloat64(PlanDeletionsBlockedTotal)
	RecordPlanDeletionBlocked()
	assert.Equal(t, before+1, testutil.ToFloat64(PlanDeletionsBlockedTotal))
}

func TestRecordCheckIn(t *testing.T) {
	CheckInsTotal.Reset()

	RecordCheckIn("ok")
	RecordCheckIn("full")

	assert.Equal(t, float64(1), testutil.ToFloat64(CheckInsTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(CheckInsTotal.WithLabelValues("full")))
}

func TestRecordEmail(t *testing.T) {
	EmailsSentTotal.Reset()

	RecordEmail("welcome", "queued")
	RecordEmail("welcome", "sent")
	RecordEmail("expiry_reminder", "failed")

	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("welcome", "queued")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("welcome", "sent")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("expiry_reminder", "failed")))
}

func TestRecordEventAndCache(t *testing.T) {
	EventsPublishedTotal.Reset()
	StatsCacheTotal.Reset()
	JobRunsTotal.Reset()

	RecordEvent("member.created", "ok")
	RecordStatsCache("hit")
	RecordStatsCache("miss")
	RecordStatsCache("miss")
	RecordJobRun("expire_overdue", "ok")

	assert.Equal(t, float64(1), testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("member.created", "ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(StatsCacheTotal.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(JobRunsTotal.WithLabelValues("expire_overdue", "ok")))
}
