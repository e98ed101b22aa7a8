package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCycleIncrementsCounters(t *testing.T) {
	beforeCycles := testutil.ToFloat64(engineCycles)
	beforeFollowUps := testutil.ToFloat64(emailsSent.WithLabelValues("follow_up", "success"))
	beforeInvites := testutil.ToFloat64(emailsSent.WithLabelValues("meeting_invite", "success"))
	beforeUnsubs := testutil.ToFloat64(unsubscribes.WithLabelValues("automated"))
	beforeFailures := testutil.ToFloat64(engineFailures)

	RecordCycle(CycleStats{
		FollowUpsSent:    2,
		MeetingLinksSent: 1,
		Unsubscribed:     3,
		Failures:         1,
	}, 0.25)

	assert.Equal(t, beforeCycles+1, testutil.ToFloat64(engineCycles))
	assert.Equal(t, beforeFollowUps+2, testutil.ToFloat64(emailsSent.WithLabelValues("follow_up", "success")))
	assert.Equal(t, beforeInvites+1, testutil.ToFloat64(emailsSent.WithLabelValues("meeting_invite", "success")))
	assert.Equal(t, beforeUnsubs+3, testutil.ToFloat64(unsubscribes.WithLabelValues("automated")))
	assert.Equal(t, beforeFailures+1, testutil.ToFloat64(engineFailures))
}

func TestRecordEmailSentAndUnsubscribe(t *testing.T) {
	beforeSent := testutil.ToFloat64(emailsSent.WithLabelValues("initial_outreach", "failed"))
	beforeUnsub := testutil.ToFloat64(unsubscribes.WithLabelValues("link"))

	RecordEmailSent("initial_outreach", "failed")
	RecordUnsubscribe("link")

	assert.Equal(t, beforeSent+1, testutil.ToFloat64(emailsSent.WithLabelValues("initial_outreach", "failed")))
	assert.Equal(t, beforeUnsub+1, testutil.ToFloat64(unsubscribes.WithLabelValues("link")))
}

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ping", "204"))

	handler := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ping", "204")))
}
