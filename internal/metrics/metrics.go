package metrics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ministry", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "status"})
	LifecycleTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ministry", Name: "lifecycle_transitions_total", Help: "Consultation lifecycle transitions",
	}, []string{"action"})
	MessagesAppended = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ministry", Name: "chat_messages_total", Help: "Chat messages appended",
	})
	SummaryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ministry", Name: "summary_failures_total", Help: "Failed summarization calls",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, LifecycleTransitions, MessagesAppended, SummaryFailures)
}

func Handler() http.Handler { return promhttp.Handler() }

// Middleware counts requests by method and status class.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		HTTPRequests.WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func ObserveTransition(action string) { LifecycleTransitions.WithLabelValues(action).Inc() }
