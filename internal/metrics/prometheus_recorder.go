package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "disciplinebot"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	triggerDuration *prom.HistogramVec
	triggerResults  *prom.CounterVec
	commandResults  *prom.CounterVec
	notifyFailures  *prom.CounterVec
	queueDropped    prom.Counter
	queueDepth      prom.Gauge
	day             prom.Gauge
	strikes         prom.Gauge
	streak          prom.Gauge
	hellmode        prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		triggerDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "trigger_duration_seconds",
			Help:      "Duration of scheduled trigger handlers",
			Buckets:   prom.DefBuckets,
		}, []string{"trigger"}),
		triggerResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "trigger_results_total",
			Help:      "Scheduled trigger results by outcome",
		}, []string{"trigger", "result"}),
		commandResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "command_results_total",
			Help:      "Chat command and inline action results by outcome",
		}, []string{"command", "result"}),
		notifyFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "Outbound message sends or edits that failed",
		}, []string{"op"}),
		queueDropped: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "queue_dropped_total",
			Help:      "Units of work dropped because the queue was full",
		}),
		queueDepth: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Units of work waiting in the queue",
		}),
		day: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_day",
			Help:      "Current plan day",
		}),
		strikes: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_strikes",
			Help:      "Consecutive failed days",
		}),
		streak: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_streak",
			Help:      "Consecutive successful days",
		}),
		hellmode: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_hellmode",
			Help:      "1 when hellmode is active",
		}),
	}
	reg.MustRegister(pr.triggerDuration, pr.triggerResults, pr.commandResults, pr.notifyFailures,
		pr.queueDropped, pr.queueDepth, pr.day, pr.strikes, pr.streak, pr.hellmode)
	return pr
}

func (p *PrometheusRecorder) ObserveTrigger(trigger string, d time.Duration, result ResultLabel) {
	if p == nil {
		return
	}
	p.triggerDuration.WithLabelValues(trigger).Observe(d.Seconds())
	p.triggerResults.WithLabelValues(trigger, string(result)).Inc()
}

func (p *PrometheusRecorder) IncCommand(command string, result ResultLabel) {
	if p == nil {
		return
	}
	p.commandResults.WithLabelValues(command, string(result)).Inc()
}

func (p *PrometheusRecorder) IncNotifyFailure(op string) {
	if p == nil {
		return
	}
	p.notifyFailures.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) IncQueueDropped() {
	if p == nil {
		return
	}
	p.queueDropped.Inc()
}

func (p *PrometheusRecorder) SetQueueDepth(n int) {
	if p == nil {
		return
	}
	p.queueDepth.Set(float64(n))
}

func (p *PrometheusRecorder) SetProgress(day, strikes, streak int, hellmode bool) {
	if p == nil {
		return
	}
	p.day.Set(float64(day))
	p.strikes.Set(float64(strikes))
	p.streak.Set(float64(streak))
	if hellmode {
		p.hellmode.Set(1)
	} else {
		p.hellmode.Set(0)
	}
}
