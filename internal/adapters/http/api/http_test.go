package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/armandov/sellerpulse/internal/adapters/http/api"
	"github.com/armandov/sellerpulse/internal/domain/analytics"
	"github.com/armandov/sellerpulse/internal/domain/forecast"
	"github.com/armandov/sellerpulse/internal/domain/model"
	"github.com/armandov/sellerpulse/internal/domain/race"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockIngest struct {
	seen           map[string]bool
	enqueueSuccess bool
	enqueued       []model.Event
}

func newMockIngest() *mockIngest {
	return &mockIngest{seen: make(map[string]bool), enqueueSuccess: true}
}

func (m *mockIngest) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockIngest) Unrecord(ctx context.Context, id string) {
	delete(m.seen, id)
}

func (m *mockIngest) Size() int64 {
	return int64(len(m.seen))
}

func (m *mockIngest) Enqueue(ctx context.Context, e model.Event) bool {
	if m.enqueueSuccess {
		m.enqueued = append(m.enqueued, e)
		return true
	}
	return false
}

type mockEngines struct {
	summary        forecast.Summary
	forecastErr    error
	score          float64
	reliabilityErr error
	ranked         []race.Ranked[model.RaceEntry]
	raceErr        error
	correlation    float64
	correlationErr error
	buckets        []analytics.PostponeBucket
}

func (m *mockEngines) Forecast(ctx context.Context) (forecast.Summary, error) {
	return m.summary, m.forecastErr
}

func (m *mockEngines) Reliability(ctx context.Context, sellerID string) (float64, error) {
	return m.score, m.reliabilityErr
}

func (m *mockEngines) Race(ctx context.Context, metric string, limit int) ([]race.Ranked[model.RaceEntry], error) {
	if m.raceErr != nil {
		return nil, m.raceErr
	}
	if limit > 0 && len(m.ranked) > limit {
		return m.ranked[:limit], nil
	}
	return m.ranked, nil
}

func (m *mockEngines) Correlation(ctx context.Context, metricX, metricY string) (float64, error) {
	return m.correlation, m.correlationErr
}

func (m *mockEngines) PostponeBuckets(ctx context.Context) ([]analytics.PostponeBucket, error) {
	return m.buckets, nil
}

func postJSON(handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func get(handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

const validDeal = `{
	"record_id": "rec-1",
	"deal_id": "deal-1",
	"seller_id": "seller-1",
	"seller_name": "Lucía",
	"stage": "Negociación",
	"estimated_value": 50000,
	"probability": 60
}`

func TestDealsHandler(t *testing.T) {
	Convey("Given a deals handler", t, func() {
		ingest := newMockIngest()
		handler := api.NewDealsHandler(ingest)

		Convey("When posting a valid deal", func() {
			rec := postJSON(handler.HandlePostDeal, "/deals", validDeal)

			Convey("Then it should be accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(len(ingest.enqueued), ShouldEqual, 1)
				So(ingest.enqueued[0].Kind, ShouldEqual, model.KindDeal)
				So(ingest.enqueued[0].Deal.SellerID, ShouldEqual, "seller-1")
			})
		})

		Convey("When posting the same record twice", func() {
			postJSON(handler.HandlePostDeal, "/deals", validDeal)
			rec := postJSON(handler.HandlePostDeal, "/deals", validDeal)

			Convey("Then the second post should be acknowledged as duplicate", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var ack struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Duplicate, ShouldBeTrue)
				So(len(ingest.enqueued), ShouldEqual, 1)
			})
		})

		Convey("When posting malformed JSON", func() {
			rec := postJSON(handler.HandlePostDeal, "/deals", "{not json")

			Convey("Then it should be rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting a deal missing its seller", func() {
			rec := postJSON(handler.HandlePostDeal, "/deals",
				`{"record_id":"rec-2","deal_id":"deal-2","stage":"Negociación","probability":50}`)

			Convey("Then it should be rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting a deal with an out-of-range probability", func() {
			rec := postJSON(handler.HandlePostDeal, "/deals",
				`{"record_id":"rec-3","deal_id":"deal-3","seller_id":"s","stage":"Negociación","probability":120}`)

			Convey("Then it should be rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the queue is saturated", func() {
			ingest.enqueueSuccess = false
			rec := postJSON(handler.HandlePostDeal, "/deals", validDeal)

			Convey("Then it should signal backpressure", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			})

			Convey("And the record should be forgotten so it can be retried", func() {
				So(ingest.seen["rec-1"], ShouldBeFalse)
			})
		})

		Convey("When using the wrong method", func() {
			rec := get(handler.HandlePostDeal, "/deals")

			Convey("Then it should not be found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestMeetingsHandler(t *testing.T) {
	Convey("Given a meetings handler", t, func() {
		ingest := newMockIngest()
		handler := api.NewMeetingsHandler(ingest)

		Convey("When posting a valid meeting", func() {
			rec := postJSON(handler.HandlePostMeeting, "/meetings",
				`{"record_id":"rec-m1","meeting_id":"meet-1","seller_id":"seller-1","company_size":3,"status":"held"}`)

			Convey("Then it should be accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(len(ingest.enqueued), ShouldEqual, 1)
				So(ingest.enqueued[0].Kind, ShouldEqual, model.KindMeeting)
				So(ingest.enqueued[0].Meeting.CompanySize, ShouldEqual, 3)
			})
		})

		Convey("When posting a meeting without a company size", func() {
			rec := postJSON(handler.HandlePostMeeting, "/meetings",
				`{"record_id":"rec-m2","meeting_id":"meet-2","seller_id":"seller-1","status":"held"}`)

			Convey("Then it should be rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestForecastHandler(t *testing.T) {
	Convey("Given a forecast handler", t, func() {
		engines := &mockEngines{
			summary: forecast.Summary{
				TotalPipeline:    150_000,
				AdjustedForecast: 90_000,
				Sellers: []forecast.SellerForecast{
					{SellerID: "seller-1", Name: "Lucía", Pipeline: 60_000, Adjusted: 48_000, Score: 80},
				},
			},
		}
		handler := api.NewForecastHandler(engines)

		Convey("When requesting the forecast", func() {
			rec := get(handler.HandleGetForecast, "/forecast")

			Convey("Then it should return the summary", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var summary forecast.Summary
				So(json.Unmarshal(rec.Body.Bytes(), &summary), ShouldBeNil)
				So(summary.TotalPipeline, ShouldAlmostEqual, 150_000)
				So(len(summary.Sellers), ShouldEqual, 1)
			})
		})

		Convey("When the forecast computation fails", func() {
			engines.forecastErr = errors.New("boom")
			rec := get(handler.HandleGetForecast, "/forecast")

			Convey("Then it should return an internal error", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestRaceHandler(t *testing.T) {
	Convey("Given a race handler", t, func() {
		engines := &mockEngines{
			ranked: []race.Ranked[model.RaceEntry]{
				{Item: model.RaceEntry{SellerID: "seller-1", Name: "Lucía", Value: 65_000}, Value: 65_000, Rank: 1, Medal: race.Gold},
				{Item: model.RaceEntry{SellerID: "seller-2", Name: "Marco", Value: 15_000}, Value: 15_000, Rank: 2, Medal: race.Silver},
			},
		}
		handler := api.NewRaceHandler(engines, 100)

		Convey("When requesting the race", func() {
			rec := get(handler.HandleGetRace, "/race?metric=won")

			Convey("Then it should return the ranked rows", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var rows []race.Ranked[model.RaceEntry]
				So(json.Unmarshal(rec.Body.Bytes(), &rows), ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				So(rows[0].Rank, ShouldEqual, 1)
				So(rows[0].Medal, ShouldEqual, race.Gold)
			})
		})

		Convey("When requesting with a limit", func() {
			rec := get(handler.HandleGetRace, "/race?limit=1")

			Convey("Then it should cap the rows", func() {
				var rows []race.Ranked[model.RaceEntry]
				So(json.Unmarshal(rec.Body.Bytes(), &rows), ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
			})
		})

		Convey("When the limit is not a number", func() {
			rec := get(handler.HandleGetRace, "/race?limit=abc")

			Convey("Then it should be rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the limit exceeds the maximum", func() {
			rec := get(handler.HandleGetRace, "/race?limit=5000")

			Convey("Then it should be rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the metric is unknown", func() {
			engines.raceErr = errors.New("unknown metric: charisma")
			rec := get(handler.HandleGetRace, "/race?metric=charisma")

			Convey("Then it should be rejected as a client error", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestReliabilityHandler(t *testing.T) {
	Convey("Given a reliability handler", t, func() {
		engines := &mockEngines{score: 72.5}
		handler := api.NewReliabilityHandler(engines)

		Convey("When requesting a seller's score", func() {
			rec := get(handler.HandleGetReliability, "/reliability/seller-1")

			Convey("Then it should return the score", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					SellerID string  `json:"seller_id"`
					Score    float64 `json:"score"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.SellerID, ShouldEqual, "seller-1")
				So(resp.Score, ShouldAlmostEqual, 72.5)
			})
		})

		Convey("When the seller does not exist", func() {
			engines.reliabilityErr = errors.New("reliability for seller-404: seller not found")
			rec := get(handler.HandleGetReliability, "/reliability/seller-404")

			Convey("Then it should return 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the path has no seller id", func() {
			rec := get(handler.HandleGetReliability, "/reliability/")

			Convey("Then it should be rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestAnalyticsHandler(t *testing.T) {
	Convey("Given an analytics handler", t, func() {
		engines := &mockEngines{
			correlation: 0.6,
			buckets: []analytics.PostponeBucket{
				{Size: 1},
				{Size: 2, Total: 2, Held: 1, Postponed: 1, Probability: 50},
			},
		}
		handler := api.NewAnalyticsHandler(engines)

		Convey("When requesting a correlation", func() {
			rec := get(handler.HandleGetCorrelation, "/correlation?x=deal_count&y=won_value")

			Convey("Then it should return the coefficient", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Correlation float64 `json:"correlation"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Correlation, ShouldAlmostEqual, 0.6)
			})
		})

		Convey("When a metric is missing", func() {
			rec := get(handler.HandleGetCorrelation, "/correlation?x=deal_count")

			Convey("Then it should be rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When a metric is unknown", func() {
			engines.correlationErr = errors.New("unknown metric: charisma")
			rec := get(handler.HandleGetCorrelation, "/correlation?x=deal_count&y=charisma")

			Convey("Then it should be rejected as a client error", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When requesting postpone buckets", func() {
			rec := get(handler.HandleGetPostpones, "/postpones")

			Convey("Then it should return the buckets", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var buckets []analytics.PostponeBucket
				So(json.Unmarshal(rec.Body.Bytes(), &buckets), ShouldBeNil)
				So(len(buckets), ShouldEqual, 2)
				So(buckets[1].Probability, ShouldAlmostEqual, 50)
			})
		})
	})
}

// mockDeps satisfies the full Dependencies bundle.
type mockDeps struct {
	*mockIngest
	*mockEngines
}

func TestServerRegister(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{mockIngest: newMockIngest(), mockEngines: &mockEngines{}}
		server := api.NewServer(deps, &mockStats{}, 100)
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		req := func(method, target, body string) *httptest.ResponseRecorder {
			var r *http.Request
			if body == "" {
				r = httptest.NewRequest(method, target, nil)
			} else {
				r = httptest.NewRequest(method, target, strings.NewReader(body))
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, r)
			return rec
		}

		Convey("Then every route should be reachable", func() {
			So(req(http.MethodPost, "/deals", validDeal).Code, ShouldEqual, http.StatusAccepted)
			So(req(http.MethodPost, "/meetings",
				`{"record_id":"rec-m1","meeting_id":"meet-1","seller_id":"seller-1","company_size":2,"status":"held"}`,
			).Code, ShouldEqual, http.StatusAccepted)
			So(req(http.MethodGet, "/forecast", "").Code, ShouldEqual, http.StatusOK)
			So(req(http.MethodGet, "/race", "").Code, ShouldEqual, http.StatusOK)
			So(req(http.MethodGet, "/reliability/seller-1", "").Code, ShouldEqual, http.StatusOK)
			So(req(http.MethodGet, "/correlation?x=deal_count&y=won_value", "").Code, ShouldEqual, http.StatusOK)
			So(req(http.MethodGet, "/postpones", "").Code, ShouldEqual, http.StatusOK)
			So(req(http.MethodGet, "/stats", "").Code, ShouldEqual, http.StatusOK)
			So(req(http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)
		})
	})
}

type mockStats struct{}

func (m *mockStats) GetStats() map[string]any {
	return map[string]any{"started": true, "deals": 3}
}

func TestStatsHandler(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		handler := api.NewStatsHandler(&mockStats{})

		Convey("When requesting stats", func() {
			rec := get(handler.HandleStats, "/stats")

			Convey("Then it should return the stats map", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var stats map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["started"], ShouldEqual, true)
			})
		})
	})
}
