// Package metrics provides the observability hooks for the bot.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs nil checks:
//
//	h := bot.NewHandler(store, plans, notifier, rules)
//	h.SetRecorder(metrics.NewPrometheusRecorder(reg))
//
// The Prometheus implementation registers its collectors on the supplied
// registry; HTTPHandler exposes that registry for scraping.
package metrics
