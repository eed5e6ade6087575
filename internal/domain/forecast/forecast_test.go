package forecast_test

import (
	"testing"

	forecast "github.com/armandov/sellerpulse/internal/domain/forecast"
	model "github.com/armandov/sellerpulse/internal/domain/model"
	"github.com/google/go-cmp/cmp"
	"github.com/smartystreets/goconvey/convey"
)

var (
	testPolicy = model.StagePolicy{
		Negotiation: "Negociación",
		WonMarker:   "Ganado",
		LostMarker:  "Perdido",
	}
	testStages = []string{"Prospección", "Negociación", "Cerrado Ganado", "Cerrado Perdido"}
)

func TestAggregate(t *testing.T) {
	convey.Convey("Given a mixed deal collection", t, func() {
		deals := []model.Deal{
			{ID: "d1", SellerID: "s1", SellerName: "Ana", Stage: "Negociación", EstimatedValue: 10000, Probability: 60},
			{ID: "d2", SellerID: "s1", SellerName: "Ana", Stage: "Prospección", EstimatedValue: 5000, Probability: 20},
			{ID: "d3", SellerID: "s2", SellerName: "Luis", Stage: "Negociación", EstimatedValue: 20000, Probability: 50},
			{ID: "d4", SellerID: "s2", SellerName: "Luis", Stage: "Cerrado Ganado", EstimatedValue: 8000, Probability: 100},
			{ID: "d5", SellerID: "s3", SellerName: "Marta", Stage: "Negociación", EstimatedValue: 0, Probability: 40},
			{ID: "d6", SellerID: "s3", SellerName: "Marta", Stage: "Cerrado Perdido", EstimatedValue: 3000, Probability: 0},
		}
		scores := map[string]float64{"s1": 80, "s2": 40, "s3": 90}

		summary := forecast.Aggregate(deals, scores, testStages, testPolicy)

		convey.Convey("Then active deals and raw pipeline are counted", func() {
			convey.So(summary.ActiveCount, convey.ShouldEqual, 4)
			convey.So(summary.TotalPipeline, convey.ShouldAlmostEqual, 35000)
		})

		convey.Convey("Then per-seller negotiation pipeline matches the identity", func() {
			// Sum over sellers must equal the direct sum over
			// negotiation-stage deals of probability-weighted value.
			want := 0.6*10000 + 0.5*20000 + 0.4*0
			var got float64
			for _, s := range summary.Sellers {
				got += s.Pipeline
			}
			convey.So(got, convey.ShouldAlmostEqual, want)
		})

		convey.Convey("Then the adjusted forecast applies reliability", func() {
			convey.So(summary.AdjustedForecast, convey.ShouldAlmostEqual, 6000*0.8+10000*0.4)
		})

		convey.Convey("Then sellers are ordered by raw pipeline, not adjusted", func() {
			// Luis has the bigger raw pipeline (10000 vs 6000) even
			// though his adjusted value (4000) is below Ana's (4800).
			convey.So(summary.Sellers[0].SellerID, convey.ShouldEqual, "s2")
			convey.So(summary.Sellers[1].SellerID, convey.ShouldEqual, "s1")
			convey.So(summary.Sellers[2].SellerID, convey.ShouldEqual, "s3")
			convey.So(summary.Sellers[0].Adjusted, convey.ShouldBeLessThan, summary.Sellers[1].Adjusted)
		})

		convey.Convey("Then the funnel follows the fixed stage order", func() {
			want := []forecast.FunnelRow{
				{Stage: "Prospección", Count: 1, Value: 5000, Category: forecast.CategoryNeutral},
				{Stage: "Negociación", Count: 3, Value: 30000, Category: forecast.CategoryInProgress},
				{Stage: "Cerrado Ganado", Count: 1, Value: 8000, Category: forecast.CategoryPositive},
				{Stage: "Cerrado Perdido", Count: 1, Value: 3000, Category: forecast.CategoryNegative},
			}
			if diff := cmp.Diff(want, summary.Funnel); diff != "" {
				t.Errorf("funnel mismatch (-want +got):\n%s", diff)
			}
		})

		convey.Convey("Then zero-value active deals raise a data warning", func() {
			convey.So(summary.DataWarnings, convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given deals with unknown stage labels", t, func() {
		deals := []model.Deal{
			{ID: "d1", SellerID: "s1", Stage: "Demo agendada", EstimatedValue: 7000, Probability: 30},
			{ID: "d2", SellerID: "s1", Stage: "Negociación", EstimatedValue: 1000, Probability: 50},
		}
		summary := forecast.Aggregate(deals, map[string]float64{"s1": 100}, testStages, testPolicy)

		convey.Convey("Then the unknown stage stays out of the funnel but in totals", func() {
			for _, row := range summary.Funnel {
				convey.So(row.Stage, convey.ShouldNotEqual, "Demo agendada")
			}
			convey.So(summary.ActiveCount, convey.ShouldEqual, 2)
			convey.So(summary.TotalPipeline, convey.ShouldAlmostEqual, 8000)
		})
	})

	convey.Convey("Given a seller with no reliability score", t, func() {
		deals := []model.Deal{
			{ID: "d1", SellerID: "s9", SellerName: "Nadia", Stage: "Negociación", EstimatedValue: 4000, Probability: 50},
		}
		summary := forecast.Aggregate(deals, map[string]float64{}, testStages, testPolicy)

		convey.Convey("Then the adjusted contribution is zero, pipeline intact", func() {
			convey.So(summary.Sellers[0].Pipeline, convey.ShouldAlmostEqual, 2000)
			convey.So(summary.Sellers[0].Adjusted, convey.ShouldEqual, 0)
			convey.So(summary.AdjustedForecast, convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given no deals at all", t, func() {
		summary := forecast.Aggregate(nil, nil, testStages, testPolicy)

		convey.Convey("Then the summary is zeroed, funnel rows still present", func() {
			convey.So(summary.TotalPipeline, convey.ShouldEqual, 0)
			convey.So(summary.AdjustedForecast, convey.ShouldEqual, 0)
			convey.So(summary.ActiveCount, convey.ShouldEqual, 0)
			convey.So(len(summary.Funnel), convey.ShouldEqual, 4)
			convey.So(len(summary.Sellers), convey.ShouldEqual, 0)
		})
	})
}
