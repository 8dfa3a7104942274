package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ironcore_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ironcore_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MembersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ironcore_members_created_total",
			Help: "Total number of members created",
		},
	)

	MembersCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ironcore_members_cancelled_total",
			Help: "Total number of members soft-deleted",
		},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ironcore_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
		[]string{"plan"},
	)

	SubscriptionsExpiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ironcore_subscriptions_expired_total",
			Help: "Total number of subscriptions moved to EXPIRED",
		},
		[]string{"reason"},
	)

	PlanDeletionsBlockedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ironcore_plan_deletions_blocked_total",
			Help: "Plan deletions rejected because of active subscriptions",
		},
	)

	CheckInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ironcore_checkins_total",
			Help: "Total number of check-in attempts",
		},
		[]string{"result"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ironcore_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ironcore_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ironcore_events_published_total",
			Help: "Domain events published to the broker",
		},
		[]string{"routing_key", "status"},
	)

	StatsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ironcore_stats_cache_total",
			Help: "Gym stats cache lookups",
		},
		[]string{"result"},
	)

	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ironcore_job_runs_total",
			Help: "Scheduled job runs",
		},
		[]string{"job", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordMemberCreated() {
	MembersCreatedTotal.Inc()
}

func RecordMemberCancelled() {
	MembersCancelledTotal.Inc()
}

func RecordSubscription(planName string) {
	SubscriptionsCreatedTotal.WithLabelValues(planName).Inc()
}

// RecordSubscriptionsExpired counts subscriptions expired either by a
// replacement ("replaced") or by the overdue sweep ("overdue").
func RecordSubscriptionsExpired(reason string, n int) {
	if n <= 0 {
		return
	}
	SubscriptionsExpiredTotal.WithLabelValues(reason).Add(float64(n))
}

func RecordPlanDeletionBlocked() {
	PlanDeletionsBlockedTotal.Inc()
}

func RecordCheckIn(result string) {
	CheckInsTotal.WithLabelValues(result).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordEvent(routingKey, status string) {
	EventsPublishedTotal.WithLabelValues(routingKey, status).Inc()
}

func RecordStatsCache(result string) {
	StatsCacheTotal.WithLabelValues(result).Inc()
}

func RecordJobRun(job, status string) {
	JobRunsTotal.WithLabelValues(job, status).Inc()
}
