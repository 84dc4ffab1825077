// csv.go
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/go-gota/gota/dataframe"

	"AirlineBids/src/processor"
)

// exportColumns 导出视图的列顺序
var exportColumns = []string{
	processor.ColOrigin,
	processor.ColDestination,
	processor.ColAirline,
	processor.ColPrice,
	processor.ColCurrency,
	"tier",
	processor.ColConnection,
	processor.ColVia,
	processor.ColCommodity,
}

// ToDataFrame 把Dataset还原为表格形式，供CSV/XLSX导出
func ToDataFrame(ds processor.Dataset) dataframe.DataFrame {
	records := make([][]string, 0, ds.Len()+1)
	records = append(records, exportColumns)

	for _, b := range ds.Bids {
		records = append(records, []string{
			b.Origin,
			b.Destination,
			b.Airline,
			strconv.FormatFloat(b.Price, 'f', -1, 64),
			b.Currency,
			string(b.Tier),
			string(b.Connection),
			b.Via,
			b.CommodityGroup,
		})
	}

	return dataframe.LoadRecords(records, dataframe.DetectTypes(false))
}

// WriteCSV 把当前过滤视图写成CSV。空视图只输出表头。
func WriteCSV(ds processor.Dataset, w io.Writer) error {
	if ds.Len() == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(exportColumns); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		cw.Flush()
		return cw.Error()
	}

	df := ToDataFrame(ds)
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
