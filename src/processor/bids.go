// bids.go
package processor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"

	"AirlineBids/src/utils"
)

// Tier 价格分层: 按全量价格分布的百分位划分
type Tier string

const (
	TierCheap     Tier = "Cheap"
	TierMid       Tier = "Mid"
	TierExpensive Tier = "Expensive"
)

// Connection 航线衔接类型
type Connection string

const (
	ConnectionDirect   Connection = "Direct"
	ConnectionIndirect Connection = "Indirect"
)

// Bid 一条航空公司报价记录
type Bid struct {
	Origin         string     `json:"origin"`
	Destination    string     `json:"destination"`
	Airline        string     `json:"airline"`
	Price          float64    `json:"price"`
	Currency       string     `json:"currency"`
	Tier           Tier       `json:"tier"`
	Connection     Connection `json:"connection"`
	Via            string     `json:"via,omitempty"`
	CommodityGroup string     `json:"commodity_group"`

	// 工作簿里存在时才填充的描述性字段
	AirMode        string `json:"air_mode,omitempty"`
	OriginCountry  string `json:"origin_country,omitempty"`
	DestCountry    string `json:"destination_country,omitempty"`
	OriginRegion   string `json:"origin_region,omitempty"`
	DestRegion     string `json:"destination_region,omitempty"`
	IntentionToBid string `json:"intention_to_bid,omitempty"`
}

// Route 有序的 origin → destination 对
func (b Bid) Route() string {
	return b.Origin + " → " + b.Destination
}

// Dataset 一次加载产生的不可变报价集合。所有操作返回新的Dataset，
// 原值不被修改。
type Dataset struct {
	Bids     []Bid     `json:"bids"`
	Sheet    string    `json:"sheet"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Len 当前记录条数
func (ds Dataset) Len() int { return len(ds.Bids) }

// 工作簿标准列名(重命名后的规范名)
const (
	ColOrigin         = "origin_airport"
	ColDestination    = "destination_airport"
	ColAirline        = "airline"
	ColPrice          = "price"
	ColCurrency       = "currency"
	ColConnection     = "direct_indirect"
	ColVia            = "via"
	ColCommodity      = "commodity_group"
	ColAirMode        = "air_mode"
	ColOriginCountry  = "origin_country"
	ColDestCountry    = "destination_country"
	ColOriginRegion   = "origin_region"
	ColDestRegion     = "destination_region"
	ColIntentionToBid = "intention_to_bid"
)

// RequiredColumns 加载时必须存在的列
var RequiredColumns = []string{
	ColOrigin, ColDestination, ColAirline, ColPrice,
	ColCommodity, ColConnection, ColVia, ColCurrency,
}

// MissingColumnError 工作簿缺少必需列
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ErrEmptyDataset 丢弃无效行之后没有可用数据
var ErrEmptyDataset = fmt.Errorf("no usable rows after dropping incomplete records")

// Load 从读取器产出的DataFrame构建Dataset。
// 校验必需列，丢弃缺少origin/destination/airline/price的行，
// 无法解析的price视同缺失。加载后立刻重算价格分层。
func Load(df dataframe.DataFrame, sheet string) (Dataset, error) {
	if err := checkColumns(df); err != nil {
		return Dataset{}, err
	}

	names := df.Names()
	has := make(map[string]bool, len(names))
	for _, n := range names {
		has[n] = true
	}

	col := func(name string, row int) string {
		if !has[name] {
			return ""
		}
		v := df.Col(name).Elem(row).String()
		if v == "NaN" {
			return ""
		}
		return strings.TrimSpace(v)
	}

	bids := make([]Bid, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		origin := col(ColOrigin, i)
		dest := col(ColDestination, i)
		airline := col(ColAirline, i)
		rawPrice := col(ColPrice, i)

		if origin == "" || dest == "" || airline == "" || rawPrice == "" {
			continue
		}

		price, err := strconv.ParseFloat(strings.ReplaceAll(rawPrice, ",", ""), 64)
		if err != nil || price < 0 {
			// 价格非数值或为负，按缺失处理
			continue
		}

		bids = append(bids, Bid{
			Origin:         origin,
			Destination:    dest,
			Airline:        airline,
			Price:          price,
			Currency:       col(ColCurrency, i),
			Connection:     parseConnection(col(ColConnection, i)),
			Via:            col(ColVia, i),
			CommodityGroup: col(ColCommodity, i),
			AirMode:        col(ColAirMode, i),
			OriginCountry:  col(ColOriginCountry, i),
			DestCountry:    col(ColDestCountry, i),
			OriginRegion:   col(ColOriginRegion, i),
			DestRegion:     col(ColDestRegion, i),
			IntentionToBid: col(ColIntentionToBid, i),
		})
	}

	if len(bids) == 0 {
		return Dataset{}, ErrEmptyDataset
	}

	ds := Dataset{
		Bids:     bids,
		Sheet:    sheet,
		LoadedAt: time.Now(),
	}
	return ComputeTiers(ds), nil
}

func checkColumns(df dataframe.DataFrame) error {
	var missing []string
	for _, req := range RequiredColumns {
		if !utils.HasColumn(df, req) {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

func parseConnection(s string) Connection {
	if strings.EqualFold(strings.TrimSpace(s), "indirect") {
		return ConnectionIndirect
	}
	return ConnectionDirect
}

// Origins 去重排序后的始发机场列表
func (ds Dataset) Origins() []string {
	return ds.distinct(func(b Bid) string { return b.Origin })
}

// Destinations 去重排序后的目的机场列表，origin非空时只看该始发地
func (ds Dataset) Destinations(origin string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range ds.Bids {
		if origin != "" && b.Origin != origin {
			continue
		}
		if !seen[b.Destination] {
			seen[b.Destination] = true
			out = append(out, b.Destination)
		}
	}
	sort.Strings(out)
	return out
}

// Airlines 去重排序后的承运人列表
func (ds Dataset) Airlines() []string {
	return ds.distinct(func(b Bid) string { return b.Airline })
}

func (ds Dataset) distinct(key func(Bid) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range ds.Bids {
		k := key(b)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
