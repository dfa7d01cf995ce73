package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/talentmatch/internal/adapters/http/api"
	repository "github.com/okian/talentmatch/internal/adapters/repository"
	service "github.com/okian/talentmatch/internal/app"
	"github.com/okian/talentmatch/internal/domain/types"
	"github.com/okian/talentmatch/pkg/logger"
)

func init() {
	_ = logger.Init()
}

type mockRanker struct {
	results []types.RankedTalent
	err     error
	last    service.Request
	block   bool
}

func (m *mockRanker) Rank(ctx context.Context, req service.Request) ([]types.RankedTalent, error) {
	m.last = req
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.results, m.err
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"requests": 7}
}

func newMux(deps api.Dependencies, opts ...api.Option) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, opts...).Register(context.Background(), mux)
	return api.Wrap("talentmatch-test", mux)
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRankEndpoint(t *testing.T) {
	Convey("Given a server backed by a stub engine", t, func() {
		ranker := &mockRanker{results: []types.RankedTalent{
			{TalentID: 4, Name: "Dana", Rank: 1, MatchingScore: 99.1, IsRecommended: true},
			{TalentID: 2, Name: "Bo", Rank: 2, MatchingScore: 98.0, IsCurrentlyInCompetingCm: true},
		}}
		h := newMux(ranker)

		Convey("When the brief is complete", func() {
			w := get(h, "/rank?segment=F2&industry=beer&budget_band=up+to+30M")

			Convey("Then the results are returned with the brief echoed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					RequestID  string               `json:"request_id"`
					Segment    string               `json:"segment"`
					BudgetBand string               `json:"budget_band"`
					Count      int                  `json:"count"`
					Results    []types.RankedTalent `json:"results"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Count, ShouldEqual, 2)
				So(body.Segment, ShouldEqual, "F2")
				So(body.BudgetBand, ShouldEqual, "up to 30M")
				So(body.Results[0].IsRecommended, ShouldBeTrue)
				So(body.Results[1].IsCurrentlyInCompetingCm, ShouldBeTrue)
				So(body.RequestID, ShouldEqual, w.Header().Get(api.RequestIDHeader))
				So(ranker.last, ShouldResemble, service.Request{Segment: "F2", Industry: "beer", BudgetBand: "up to 30M"})
			})
		})

		Convey("When the engine returns nothing", func() {
			ranker.results = nil
			w := get(h, "/rank?segment=F2&industry=beer&budget_band=any")

			Convey("Then results is an empty array", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"results":[]`)
			})
		})

		Convey("When a parameter is missing", func() {
			w := get(h, "/rank?segment=F2&industry=beer")

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "missing budget_band")
			})
		})

		Convey("When the method is not GET", func() {
			req := httptest.NewRequest(http.MethodPost, "/rank?segment=F2&industry=beer&budget_band=any", http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it answers 405", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestRankErrorMapping(t *testing.T) {
	Convey("Given engine failures", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{fmt.Errorf("%w: %w", service.ErrConfiguration, repository.ErrUnknownIndustry), http.StatusBadRequest, "invalid_brief"},
			{fmt.Errorf("%w: dial tcp", service.ErrRepository), http.StatusServiceUnavailable, "unavailable"},
			{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
		}
		for _, c := range cases {
			h := newMux(&mockRanker{err: c.err})
			w := get(h, "/rank?segment=F2&industry=wine&budget_band=any")
			So(w.Code, ShouldEqual, c.status)
			var body map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["code"], ShouldEqual, c.code)
			So(body["request_id"], ShouldNotBeEmpty)
		}
	})

	Convey("Given an engine slower than the request timeout", t, func() {
		h := newMux(&mockRanker{block: true}, api.WithRequestTimeout(20*time.Millisecond))
		w := get(h, "/rank?segment=F2&industry=beer&budget_band=any")

		Convey("Then the handler answers 504", func() {
			So(w.Code, ShouldEqual, http.StatusGatewayTimeout)
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given the request id middleware", t, func() {
		h := newMux(&mockRanker{})

		Convey("When the client sends an id", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is echoed", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})

		Convey("When the client sends none", func() {
			a := get(h, "/healthz").Header().Get(api.RequestIDHeader)
			b := get(h, "/healthz").Header().Get(api.RequestIDHeader)

			Convey("Then a fresh uuid is generated per request", func() {
				So(a, ShouldHaveLength, 36)
				So(a, ShouldNotEqual, b)
			})
		})
	})

	Convey("Given a context without an id", t, func() {
		So(api.RequestIDFromContext(context.Background()), ShouldEqual, "")
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given the operational routes", t, func() {
		h := newMux(&mockRanker{})

		Convey("Then /healthz reports ok", func() {
			w := get(h, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then /stats returns the provider counters", func() {
			w := get(h, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"requests":7`)
		})

		Convey("Then /metrics exposes the registry", func() {
			get(h, "/healthz")
			w := get(h, "/metrics")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "talentmatch_")
		})
	})
}
