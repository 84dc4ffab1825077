package file

import (
	"os"
	"path/filepath"
	"testing"

	"AirlineBids/src/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testLayout() Layout {
	return Layout{
		SheetName: "Airline Bids",
		HeaderRow: 11,
		FirstCol:  3,
		Rename: map[string]string{
			"Origin Airport":      processor.ColOrigin,
			"Destination Airport": processor.ColDestination,
			"Airline":             processor.ColAirline,
			"Min Charge2":         processor.ColPrice,
			"Commodity Group":     processor.ColCommodity,
			"Direct / Indirect":   processor.ColConnection,
			"Via":                 processor.ColVia,
			"Currency":            processor.ColCurrency,
		},
	}
}

// writeFixtureWorkbook 按原始报价工作簿的排版生成测试文件:
// 标题在第11行，数据从第12行开始，前两列空白
func writeFixtureWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet("Airline Bids")
	require.NoError(t, err)

	headers := []interface{}{
		"Commodity Group", "Direct / Indirect", "Origin Airport",
		"Destination Airport", "Airline", "Via", "Currency", "Min Charge2",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(3+i, 11)
		require.NoError(t, f.SetCellValue("Airline Bids", cell, h))
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(3+c, 12+r)
			require.NoError(t, f.SetCellValue("Airline Bids", cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "bids.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func fixtureRows() [][]interface{} {
	return [][]interface{}{
		{"Pharma", "Direct", "JFK", "LAX", "AA", "", "USD", 100},
		{"Pharma", "Indirect", "JFK", "LAX", "DL", "ORD", "USD", 200},
		{"General", "Direct", "FRA", "PVG", "LH", "", "EUR", 300},
	}
}

func TestReadXLSXToDataFrame(t *testing.T) {
	path := writeFixtureWorkbook(t, fixtureRows())

	df, err := ReadXLSXToDataFrame(path, testLayout())
	require.NoError(t, err)

	assert.Equal(t, 3, df.Nrow())
	assert.Contains(t, df.Names(), processor.ColOrigin)
	assert.Contains(t, df.Names(), processor.ColPrice)
	assert.Equal(t, "JFK", df.Col(processor.ColOrigin).Elem(0).String())
}

func TestReadXLSXMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	path := filepath.Join(t.TempDir(), "wrong.xlsx")
	require.NoError(t, f.SaveAs(path))

	_, err := ReadXLSXToDataFrame(path, testLayout())
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestParseXLSXFromBytes(t *testing.T) {
	path := writeFixtureWorkbook(t, fixtureRows())
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	df, err := ParseXLSX(data, testLayout())
	require.NoError(t, err)
	assert.Equal(t, 3, df.Nrow())
}

func TestWorkbookToDataset(t *testing.T) {
	path := writeFixtureWorkbook(t, fixtureRows())

	df, err := ReadXLSXToDataFrame(path, testLayout())
	require.NoError(t, err)

	ds, err := processor.Load(df, "Airline Bids")
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 100.0, ds.Bids[0].Price)
	assert.Equal(t, processor.ConnectionIndirect, ds.Bids[1].Connection)
}
