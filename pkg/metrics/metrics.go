package metrics

import (
	"net/http"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes the counters the controller and agents maintain about
// environment changes.
type Recorder struct {
	once        sync.Once
	reg         *prom.Registry
	dispatched  *prom.CounterVec
	version     prom.Gauge
	hostPage    prom.Gauge
	persistErrs prom.Counter
	publishErrs prom.Counter
	polls       *prom.CounterVec
}

// NewRecorder registers metrics on reg, creating a private registry when nil.
func NewRecorder(namespace string, reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{reg: reg}
	r.once.Do(func() {
		r.dispatched = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "actions_dispatched_total",
			Help:      "Actions dispatched to the environment store by type and outcome",
		}, []string{"action_type", "changed"})
		r.version = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "env_version",
			Help:      "Current environment snapshot version",
		})
		r.hostPage = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "host_page_disabled",
			Help:      "1 when the host page is disabled",
		})
		r.persistErrs = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_persist_errors_total",
			Help:      "Snapshots that failed to persist",
		})
		r.publishErrs = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "notification_publish_errors_total",
			Help:      "Change notifications that failed to publish",
		})
		r.polls = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Controller polls by result",
		}, []string{"result"})
		reg.MustRegister(r.dispatched, r.version, r.hostPage, r.persistErrs, r.publishErrs, r.polls)
	})
	return r
}

func (r *Recorder) IncDispatched(actionType string, changed bool) {
	label := "false"
	if changed {
		label = "true"
	}
	r.dispatched.WithLabelValues(actionType, label).Inc()
}

func (r *Recorder) SetEnv(version int64, hostPageDisabled bool) {
	r.version.Set(float64(version))
	if hostPageDisabled {
		r.hostPage.Set(1)
	} else {
		r.hostPage.Set(0)
	}
}

func (r *Recorder) IncPersistError() { r.persistErrs.Inc() }

func (r *Recorder) IncPublishError() { r.publishErrs.Inc() }

// IncPoll records a poll outcome: "changed", "not_modified" or "error".
func (r *Recorder) IncPoll(result string) { r.polls.WithLabelValues(result).Inc() }

func (r *Recorder) Registry() *prom.Registry { return r.reg }

// HTTPHandler serves the recorder's registry.
func (r *Recorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
