package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue sums every series of the named counter family.
func counterValue(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func histogramCount(reg *prometheus.Registry, name string) uint64 {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	var total uint64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetHistogram().GetSampleCount()
		}
	}
	return total
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "triage")
				So(manager.subsystem, ShouldEqual, "feedback")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("acme"),
				WithSubsystem("support"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordLogAppend(true)

			Convey("Then metric names use the namespace and subsystem", func() {
				So(counterValue(registry, "acme_support_log_appends_total"), ShouldEqual, 1)
			})
		})
	})
}

func TestPipelineMetrics(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithPrometheusRegistry(registry))

		Convey("When events are processed and rejected", func() {
			manager.RecordEventProcessed("NEGATIVE", 0.945, 12)
			manager.RecordEventProcessed("POSITIVE", 0.0275, 8)
			manager.RecordEventRejected("classifier")

			Convey("Then counters and histograms reflect them", func() {
				So(counterValue(registry, "triage_feedback_events_processed_total"), ShouldEqual, 2)
				So(counterValue(registry, "triage_feedback_events_rejected_total"), ShouldEqual, 1)
				So(histogramCount(registry, "triage_feedback_severity_score"), ShouldEqual, 2)
			})
		})

		Convey("When escalation outcomes are recorded", func() {
			manager.RecordTicketCreated("Database")
			manager.RecordTicketError()
			manager.RecordNotification(true)
			manager.RecordNotification(false)
			manager.RecordNotification(false)

			Convey("Then each outcome has its own counter", func() {
				So(counterValue(registry, "triage_feedback_tickets_created_total"), ShouldEqual, 1)
				So(counterValue(registry, "triage_feedback_ticket_errors_total"), ShouldEqual, 1)
				So(counterValue(registry, "triage_feedback_notifications_sent_total"), ShouldEqual, 1)
				So(counterValue(registry, "triage_feedback_notification_failures_total"), ShouldEqual, 2)
			})
		})

		Convey("When classifier calls are observed", func() {
			manager.RecordClassifierCall(ClassifierSentiment, 20, false)
			manager.RecordClassifierCall(ClassifierTopic, 40, true)

			Convey("Then latency and errors are recorded", func() {
				So(histogramCount(registry, "triage_feedback_classifier_latency_milliseconds"), ShouldEqual, 2)
				So(counterValue(registry, "triage_feedback_classifier_errors_total"), ShouldEqual, 1)
			})
		})
	})
}

func TestDisabledManager(t *testing.T) {
	Convey("Given a disabled manager", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))

		manager.RecordLogAppend(true)
		manager.RecordHTTPRequest("feedback", "GET", "200", 3)
		manager.RecordErrorByComponent("repository", "io")

		Convey("Then nothing is recorded", func() {
			So(counterValue(registry, "triage_feedback_log_appends_total"), ShouldEqual, 0)
			So(counterValue(registry, "triage_feedback_http_requests_total"), ShouldEqual, 0)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("When package helpers are called", func() {
			before := counterValue(GetRegistry(), "triage_feedback_log_appends_total")
			RecordLogAppend(true)
			UpdateLogRecords(3)
			UpdateSystem(1024, 5, 0.5)

			Convey("Then the global manager records them", func() {
				So(counterValue(GetRegistry(), "triage_feedback_log_appends_total"), ShouldEqual, before+1)
			})
		})
	})
}
