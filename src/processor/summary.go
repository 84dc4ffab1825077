// summary.go
package processor

import "sort"

// Summary 数据集聚合统计
type Summary struct {
	Count         int            `json:"count"`
	Routes        int            `json:"routes"`
	MinPrice      float64        `json:"min_price"`
	MaxPrice      float64        `json:"max_price"`
	MeanPrice     float64        `json:"mean_price"`
	TierCounts    map[Tier]int   `json:"tier_counts"`
	AirlineCounts map[string]int `json:"airline_counts"`
}

// Summarize 计算条数、价格最小/最大/均值、分层计数和承运人计数
func Summarize(ds Dataset) Summary {
	s := Summary{
		TierCounts:    make(map[Tier]int),
		AirlineCounts: make(map[string]int),
	}
	if len(ds.Bids) == 0 {
		return s
	}

	routes := make(map[string]bool)
	total := 0.0
	s.MinPrice = ds.Bids[0].Price
	s.MaxPrice = ds.Bids[0].Price

	for _, b := range ds.Bids {
		s.Count++
		total += b.Price
		if b.Price < s.MinPrice {
			s.MinPrice = b.Price
		}
		if b.Price > s.MaxPrice {
			s.MaxPrice = b.Price
		}
		s.TierCounts[b.Tier]++
		s.AirlineCounts[b.Airline]++
		routes[b.Route()] = true
	}

	s.Routes = len(routes)
	s.MeanPrice = total / float64(s.Count)
	return s
}

// RouteReport 单条航线的承运人对比分析
type RouteReport struct {
	Route        string  `json:"route"`
	Carriers     int     `json:"carriers"`
	BestPrice    float64 `json:"best_price"`
	MeanPrice    float64 `json:"mean_price"`
	PriceSpread  float64 `json:"price_spread"`
	BestCarrier  string  `json:"best_carrier"`
	WorstCarrier string  `json:"worst_carrier"`
	Savings      float64 `json:"savings"`
	SavingsPct   float64 `json:"savings_pct"`
	Bids         []Bid   `json:"bids"`
}

// AnalyzeRoute 生成航线报告: 承运人数量、最优/平均价格、价差，
// 以及最优承运人相对最高报价的节省空间。记录按价格升序返回。
// 航线无记录时返回false。
func AnalyzeRoute(ds Dataset, origin, destination string) (RouteReport, bool) {
	route := Filter(ds, Query{Origin: origin, Destination: destination})
	if route.Len() == 0 {
		return RouteReport{}, false
	}

	bids := make([]Bid, len(route.Bids))
	copy(bids, route.Bids)
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price < bids[j].Price })

	best := bids[0]
	worst := bids[len(bids)-1]

	carriers := make(map[string]bool)
	total := 0.0
	for _, b := range bids {
		carriers[b.Airline] = true
		total += b.Price
	}

	r := RouteReport{
		Route:        origin + " → " + destination,
		Carriers:     len(carriers),
		BestPrice:    best.Price,
		MeanPrice:    total / float64(len(bids)),
		PriceSpread:  worst.Price - best.Price,
		BestCarrier:  best.Airline,
		WorstCarrier: worst.Airline,
		Savings:      worst.Price - best.Price,
		Bids:         bids,
	}
	if worst.Price > 0 {
		r.SavingsPct = r.Savings / worst.Price * 100
	}
	return r, true
}

// AirlineStats 单个承运人的整体表现
type AirlineStats struct {
	Airline       string  `json:"airline"`
	AvgPrice      float64 `json:"avg_price"`
	RoutesCovered int     `json:"routes_covered"`
	TotalBids     int     `json:"total_bids"`
}

// AirlineOverview 每个承运人的平均报价、覆盖航线数和报价总数，
// 按报价总数降序排列
func AirlineOverview(ds Dataset) []AirlineStats {
	type acc struct {
		total  float64
		count  int
		routes map[string]bool
	}
	byAirline := make(map[string]*acc)

	for _, b := range ds.Bids {
		a, ok := byAirline[b.Airline]
		if !ok {
			a = &acc{routes: make(map[string]bool)}
			byAirline[b.Airline] = a
		}
		a.total += b.Price
		a.count++
		a.routes[b.Route()] = true
	}

	out := make([]AirlineStats, 0, len(byAirline))
	for name, a := range byAirline {
		out = append(out, AirlineStats{
			Airline:       name,
			AvgPrice:      a.total / float64(a.count),
			RoutesCovered: len(a.routes),
			TotalBids:     a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalBids != out[j].TotalBids {
			return out[i].TotalBids > out[j].TotalBids
		}
		return out[i].Airline < out[j].Airline
	})
	return out
}
