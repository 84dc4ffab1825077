package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	ds := ComputeTiers(sampleBids())
	s := Summarize(ds)

	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 3, s.Routes)
	assert.Equal(t, 90.0, s.MinPrice)
	assert.Equal(t, 400.0, s.MaxPrice)
	assert.InDelta(t, 218.0, s.MeanPrice, 0.001)
	assert.Equal(t, 2, s.AirlineCounts["AA"]+s.AirlineCounts["DL"])

	total := 0
	for _, c := range s.TierCounts {
		total += c
	}
	assert.Equal(t, s.Count, total)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(Dataset{})
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0.0, s.MinPrice)
	assert.Empty(t, s.AirlineCounts)
}

func TestAnalyzeRoute(t *testing.T) {
	r, ok := AnalyzeRoute(sampleBids(), "FRA", "PVG")
	require.True(t, ok)

	assert.Equal(t, "FRA → PVG", r.Route)
	assert.Equal(t, 2, r.Carriers)
	assert.Equal(t, 350.0, r.BestPrice)
	assert.Equal(t, "CA", r.BestCarrier)
	assert.Equal(t, "LH", r.WorstCarrier)
	assert.Equal(t, 50.0, r.Savings)
	assert.InDelta(t, 12.5, r.SavingsPct, 0.001)
	assert.Equal(t, 50.0, r.PriceSpread)
	assert.InDelta(t, 375.0, r.MeanPrice, 0.001)

	// 报价按价格升序
	require.Len(t, r.Bids, 2)
	assert.LessOrEqual(t, r.Bids[0].Price, r.Bids[1].Price)
}

func TestAnalyzeRouteNoCarriers(t *testing.T) {
	_, ok := AnalyzeRoute(sampleBids(), "JFK", "PVG")
	assert.False(t, ok)
}

func TestAnalyzeRouteSingleCarrier(t *testing.T) {
	r, ok := AnalyzeRoute(sampleBids(), "JFK", "ORD")
	require.True(t, ok)

	assert.Equal(t, 1, r.Carriers)
	assert.Equal(t, 0.0, r.PriceSpread)
	assert.Equal(t, 0.0, r.Savings)
	assert.Equal(t, r.BestCarrier, r.WorstCarrier)
}

func TestAirlineOverview(t *testing.T) {
	ds := Dataset{Bids: []Bid{
		{Origin: "JFK", Destination: "LAX", Airline: "AA", Price: 100},
		{Origin: "JFK", Destination: "ORD", Airline: "AA", Price: 200},
		{Origin: "JFK", Destination: "ORD", Airline: "AA", Price: 300},
		{Origin: "FRA", Destination: "PVG", Airline: "LH", Price: 400},
	}}

	stats := AirlineOverview(ds)
	require.Len(t, stats, 2)

	// 按报价总数降序
	assert.Equal(t, "AA", stats[0].Airline)
	assert.Equal(t, 3, stats[0].TotalBids)
	assert.Equal(t, 2, stats[0].RoutesCovered)
	assert.InDelta(t, 200.0, stats[0].AvgPrice, 0.001)

	assert.Equal(t, "LH", stats[1].Airline)
	assert.Equal(t, 1, stats[1].TotalBids)
}
