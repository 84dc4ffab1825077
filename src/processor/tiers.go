// tiers.go
package processor

import "sort"

// 分层比例: 最低20% → Cheap, 其后50% → Mid, 剩余30% → Expensive
const (
	cheapShare = 0.2
	midShare   = 0.5
)

// ComputeTiers 按全量价格分布重算每条记录的分层，返回新Dataset。
// 排序按价格稳定升序(价格相同保持原始顺序)；相同价格的记录统一取
// 首次出现位置对应的分层。
func ComputeTiers(ds Dataset) Dataset {
	n := len(ds.Bids)
	if n == 0 {
		return ds
	}

	// 稳定排序索引
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return ds.Bids[idx[a]].Price < ds.Bids[idx[b]].Price
	})

	out := make([]Bid, n)
	copy(out, ds.Bids)

	cheapCut := cheapShare * float64(n)
	midCut := (cheapShare + midShare) * float64(n)

	prevPrice := 0.0
	prevTier := TierCheap
	for rank, i := range idx {
		var tier Tier
		switch {
		case rank > 0 && out[i].Price == prevPrice:
			// 同价记录沿用首个同价位置的分层
			tier = prevTier
		case float64(rank) < cheapCut:
			tier = TierCheap
		case float64(rank) < midCut:
			tier = TierMid
		default:
			tier = TierExpensive
		}
		out[i].Tier = tier
		prevPrice = out[i].Price
		prevTier = tier
	}

	return Dataset{Bids: out, Sheet: ds.Sheet, LoadedAt: ds.LoadedAt}
}
