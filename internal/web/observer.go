package web

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/paysimlabs/paysim-go/internal/telemetry"
	"github.com/paysimlabs/paysim-go/sdk"
)

// metricsObserver bridges SDK pipeline events into Prometheus metrics and
// structured logs.
type metricsObserver struct {
	log *logrus.Entry
}

func newMetricsObserver() *metricsObserver {
	return &metricsObserver{log: telemetry.WithComponent("paysim-client")}
}

func (o *metricsObserver) OnRequestStart(method, path string) {
	o.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	}).Debug("upstream request started")
}

func (o *metricsObserver) OnRequestEnd(method, path string, duration time.Duration, err error) {
	fields := logrus.Fields{
		"method":      method,
		"path":        path,
		"duration_ms": duration.Milliseconds(),
	}
	if err == nil {
		o.log.WithFields(fields).Debug("upstream request completed")
		return
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		fields["kind"] = apiErr.Type.String()
		fields["attempts"] = apiErr.Attempts
		upstreamErrors.WithLabelValues(apiErr.Type.String()).Inc()
	} else {
		upstreamErrors.WithLabelValues("unknown").Inc()
	}
	o.log.WithFields(fields).WithError(err).Warn("upstream request failed")
}

func (o *metricsObserver) OnRetryAttempt(method, path string, attempt int, delay time.Duration, err error) {
	upstreamRetries.Inc()
	o.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"attempt":  attempt,
		"delay_ms": delay.Milliseconds(),
	}).WithError(err).Info("retrying upstream request")
}

func (o *metricsObserver) OnRateLimitUpdate(state sdk.RateLimitState) {
	rateLimitRemaining.Set(float64(state.Remaining))
}
