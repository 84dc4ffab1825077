// filter.go
package processor

import (
	"AirlineBids/src/utils"
)

// Query 过滤条件，未提供的维度不参与过滤
type Query struct {
	Origin      string   // 与Destination一起构成精确航线匹配
	Destination string
	Airlines    []string // 承运人集合，空集不过滤
	MinPrice    *float64 // 价格闭区间下界
	MaxPrice    *float64 // 价格闭区间上界
}

// Filter 返回满足所有已提供条件的记录子序列。分层沿用全量数据集的
// 计算结果，不随过滤重算。
func Filter(ds Dataset, q Query) Dataset {
	var out []Bid
	for _, b := range ds.Bids {
		if q.Origin != "" && b.Origin != q.Origin {
			continue
		}
		if q.Destination != "" && b.Destination != q.Destination {
			continue
		}
		if len(q.Airlines) > 0 && !utils.Contains(q.Airlines, b.Airline) {
			continue
		}
		if q.MinPrice != nil && b.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && b.Price > *q.MaxPrice {
			continue
		}
		out = append(out, b)
	}

	return Dataset{Bids: out, Sheet: ds.Sheet, LoadedAt: ds.LoadedAt}
}
