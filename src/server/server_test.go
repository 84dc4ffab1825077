package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"AirlineBids/src/config"
	"AirlineBids/src/datapush"
	"AirlineBids/src/processor"
	"AirlineBids/src/storage"
)

func testConfig(t *testing.T) (*config.Config, *config.ColumnConfig) {
	t.Helper()
	cfg := &config.Config{}
	cfg.SheetName = "Airline Bids"
	cfg.HeaderRow = 11
	cfg.FirstCol = 3
	cfg.Server.Addr = ":0"

	ccfg := &config.ColumnConfig{Columns: map[string]string{
		"Origin Airport":      processor.ColOrigin,
		"Destination Airport": processor.ColDestination,
		"Airline":             processor.ColAirline,
		"Min Charge2":         processor.ColPrice,
		"Commodity Group":     processor.ColCommodity,
		"Direct / Indirect":   processor.ColConnection,
		"Via":                 processor.ColVia,
		"Currency":            processor.ColCurrency,
	}}
	return cfg, ccfg
}

func testServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, ccfg := testConfig(t)
	logger, err := storage.NewLogger(filepath.Join(t.TempDir(), "app.log"), "")
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	return New(cfg, LayoutFromConfig(cfg, ccfg), &DatasetStore{}, logger, datapush.NewNotifier(""))
}

// workbookBytes 按原始排版构造报价工作簿
func workbookBytes(t *testing.T, sheetName string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(sheetName)
	require.NoError(t, err)

	headers := []interface{}{
		"Commodity Group", "Direct / Indirect", "Origin Airport",
		"Destination Airport", "Airline", "Via", "Currency", "Min Charge2",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(3+i, 11)
		require.NoError(t, f.SetCellValue(sheetName, cell, h))
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(3+c, 12+r)
			require.NoError(t, f.SetCellValue(sheetName, cell, v))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func defaultRows() [][]interface{} {
	return [][]interface{}{
		{"Pharma", "Direct", "JFK", "LAX", "AA", "", "USD", 100},
		{"Pharma", "Indirect", "JFK", "LAX", "DL", "ORD", "USD", 200},
		{"General", "Direct", "JFK", "ORD", "UA", "", "USD", 300},
		{"General", "Direct", "FRA", "PVG", "LH", "", "EUR", 400},
		{"General", "Direct", "FRA", "PVG", "CA", "", "EUR", 500},
	}
}

func uploadWorkbook(t *testing.T, router *gin.Engine, workbook []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "bids.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/bids", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAndSummary(t *testing.T) {
	s := testServer(t)
	router := s.Router()

	w := uploadWorkbook(t, router, workbookBytes(t, "Airline Bids", defaultRows()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = get(router, "/api/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var s2 processor.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s2))
	assert.Equal(t, 5, s2.Count)
	assert.Equal(t, 100.0, s2.MinPrice)
	assert.Equal(t, 500.0, s2.MaxPrice)
}

func TestUploadMissingSheetKeepsPriorDataset(t *testing.T) {
	s := testServer(t)
	router := s.Router()

	w := uploadWorkbook(t, router, workbookBytes(t, "Airline Bids", defaultRows()))
	require.Equal(t, http.StatusOK, w.Code)

	// 错误的sheet名，上传被拒绝
	w = uploadWorkbook(t, router, workbookBytes(t, "Wrong Sheet", defaultRows()))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 之前的数据集仍然可查
	w = get(router, "/api/summary")
	require.Equal(t, http.StatusOK, w.Code)
	var s2 processor.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s2))
	assert.Equal(t, 5, s2.Count)
}

func TestListBidsWithFilters(t *testing.T) {
	s := testServer(t)
	router := s.Router()
	uploadWorkbook(t, router, workbookBytes(t, "Airline Bids", defaultRows()))

	w := get(router, "/api/bids?origin=JFK&destination=LAX")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int             `json:"count"`
		Bids  []processor.Bid `json:"bids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	w = get(router, "/api/bids?airlines=AA,LH&max_price=400")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	w = get(router, "/api/bids?min_price=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportBidsCSV(t *testing.T) {
	s := testServer(t)
	router := s.Router()
	uploadWorkbook(t, router, workbookBytes(t, "Airline Bids", defaultRows()))

	w := get(router, "/api/bids/export?origin=FRA&destination=PVG")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 3) // 表头 + 2条FRA→PVG记录
}

func TestRouteReport(t *testing.T) {
	s := testServer(t)
	router := s.Router()
	uploadWorkbook(t, router, workbookBytes(t, "Airline Bids", defaultRows()))

	w := get(router, "/api/routes/FRA/PVG")
	require.Equal(t, http.StatusOK, w.Code)

	var report processor.RouteReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Carriers)
	assert.Equal(t, 400.0, report.BestPrice)
	assert.Equal(t, "LH", report.BestCarrier)

	w = get(router, "/api/routes/JFK/PVG")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAirlineOverview(t *testing.T) {
	s := testServer(t)
	router := s.Router()
	uploadWorkbook(t, router, workbookBytes(t, "Airline Bids", defaultRows()))

	w := get(router, "/api/airlines")
	require.Equal(t, http.StatusOK, w.Code)

	var stats []processor.AirlineStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Len(t, stats, 5)
}

func TestSelectors(t *testing.T) {
	s := testServer(t)
	router := s.Router()
	uploadWorkbook(t, router, workbookBytes(t, "Airline Bids", defaultRows()))

	w := get(router, "/api/selectors?origin=JFK")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Origins      []string `json:"origins"`
		Destinations []string `json:"destinations"`
		Airlines     []string `json:"airlines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"FRA", "JFK"}, resp.Origins)
	assert.Equal(t, []string{"LAX", "ORD"}, resp.Destinations)
	assert.Len(t, resp.Airlines, 5)
}

func TestEndpointsBeforeUpload(t *testing.T) {
	s := testServer(t)
	router := s.Router()

	for _, path := range []string{"/api/bids", "/api/summary", "/api/airlines", "/api/routes/JFK/LAX", "/api/selectors"} {
		w := get(router, path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}
