package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should register the ranking collectors", func() {
				So(manager, ShouldNotBeNil)
				manager.rankingRequests.WithLabelValues("ok").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "talentmatch_ranking_requests_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("engine"),
				WithMetricPrefix("x_"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithRefreshInterval(3*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels should follow the options", func() {
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)
				manager.curatedMissing.Inc()
				expected := `
# HELP test_engine_x_curated_missing_total Curated talent ids that could not be resolved
# TYPE test_engine_x_curated_missing_total counter
test_engine_x_curated_missing_total{env="test"} 1
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_engine_x_curated_missing_total")
				So(err, ShouldBeNil)
			})
		})

		Convey("When metrics are disabled", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithMetricsEnabled(false), WithPrometheusRegistry(registry))

			Convey("Then nothing should be exported to the given registry", func() {
				manager.budgetRejected.Add(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldBeEmpty)
			})
		})

		Convey("When options carry invalid or shared values", func() {
			labels := map[string]string{"env": "prod", "": "dropped"}
			buckets := []float64{1, 2, 4}
			manager := NewManager(
				WithNamespace("  "),
				WithSubsystem(""),
				WithMetricPrefix("canary"),
				WithHistogramBuckets([]float64{5, 5, 10}),
				WithHistogramBuckets(buckets),
				WithHistogramBuckets([]float64{10, 1}),
				WithRefreshInterval(-time.Second),
				WithCustomLabels(labels),
				WithPrometheusRegistry(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)
			labels["env"] = "mutated"
			buckets[0] = 100

			Convey("Then the defaults survive and inputs are copied", func() {
				So(manager.namespace, ShouldEqual, "talentmatch")
				So(manager.subsystem, ShouldEqual, "ranking")
				So(manager.metricPrefix, ShouldEqual, "canary_")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 2, 4})
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
				So(manager.customLabels, ShouldResemble, map[string]string{"env": "prod"})
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording ranking metrics", func() {
			before := testutil.ToFloat64(globalManager.rankingRequests.WithLabelValues("ok"))
			RecordRankingRequest("ok")
			RecordRankingRequest("ok")

			Convey("Then the outcome counter should advance", func() {
				So(testutil.ToFloat64(globalManager.rankingRequests.WithLabelValues("ok")), ShouldEqual, before+2)
			})
		})

		Convey("When updating pool gauges", func() {
			UpdateCandidatePool("budget", 120)
			UpdateLastResultSize(30)

			Convey("Then the gauges should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.candidatePool.WithLabelValues("budget")), ShouldEqual, 120)
				So(testutil.ToFloat64(globalManager.lastResultSize), ShouldEqual, 30)
			})
		})

		Convey("When recording the remaining helpers", func() {
			So(func() {
				RecordRankingLatency(12.5)
				RecordStageLatency("image", 1.5)
				RecordBudgetRejected(4)
				RecordRegulatedGated(2)
				RecordDegenerateDistribution("cute")
				RecordCuratedPlaced(3)
				RecordCuratedMissing()
				RecordCompetingCmFlagged(1)
				RecordRepositoryQueryLatency("FetchCandidates", 3)
				RecordRepositoryError("FetchIndustry")
				RecordCacheHit("industry")
				RecordCacheMiss("industry")
				RecordHTTPRequest("rank", "GET", "200")
				RecordHTTPRequestDuration("rank", "GET", "200", 4)
				RecordErrorByComponent("engine", "config_error")
				RecordErrorByType("config_error", "medium")
				RecordErrorByEndpoint("rank", "GET", "client_error")
				RecordErrorLatency("http", "client_error", 2)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
			So(Global(), ShouldEqual, globalManager)
		})
	})
}
