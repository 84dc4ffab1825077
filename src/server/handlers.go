// handlers.go
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"AirlineBids/src/datasource/email"
	"AirlineBids/src/datasource/file"
	"AirlineBids/src/export"
	"AirlineBids/src/processor"
)

// uploadBids 接收multipart工作簿，校验并替换会话数据集。
// 加载失败时保留之前的数据集。
func (s *Server) uploadBids(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, fmt.Errorf("missing workbook file: %w", err))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	ds, err := s.loadWorkbook(data)
	if err != nil {
		s.logger.Error(fmt.Sprintf("workbook rejected: %v", err))
		status := http.StatusUnprocessableEntity
		if errors.Is(err, file.ErrSheetNotFound) {
			status = http.StatusBadRequest
		}
		errorJSON(c, status, err)
		return
	}

	s.store.Set(ds)
	s.logger.Info(fmt.Sprintf("dataset replaced from upload %q: %d bids", fileHeader.Filename, ds.Len()))

	if s.notifier.Enabled() {
		go func() {
			if err := s.notifier.PushRefresh(ds); err != nil {
				s.logger.Error(err.Error())
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{
		"bids":    ds.Len(),
		"sheet":   ds.Sheet,
		"summary": processor.Summarize(ds),
	})
}

func (s *Server) loadWorkbook(data []byte) (processor.Dataset, error) {
	df, err := file.ParseXLSX(data, s.layout)
	if err != nil {
		return processor.Dataset{}, err
	}
	return processor.Load(df, s.layout.SheetName)
}

// parseQuery 从query string还原过滤条件
func parseQuery(c *gin.Context) (processor.Query, error) {
	q := processor.Query{
		Origin:      strings.TrimSpace(c.Query("origin")),
		Destination: strings.TrimSpace(c.Query("destination")),
	}

	if raw := strings.TrimSpace(c.Query("airlines")); raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				q.Airlines = append(q.Airlines, a)
			}
		}
	}

	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("invalid min_price %q", raw)
		}
		q.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("invalid max_price %q", raw)
		}
		q.MaxPrice = &v
	}

	return q, nil
}

// listBids 返回过滤后的记录
func (s *Server) listBids(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		noDataset(c)
		return
	}

	q, err := parseQuery(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	filtered := processor.Filter(ds, q)
	c.JSON(http.StatusOK, gin.H{
		"count": filtered.Len(),
		"bids":  filtered.Bids,
	})
}

// exportBids 把同一过滤视图导出为CSV下载
func (s *Server) exportBids(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		noDataset(c)
		return
	}

	q, err := parseQuery(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	filtered := processor.Filter(ds, q)

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="bids.csv"`)
	if err := export.WriteCSV(filtered, c.Writer); err != nil {
		s.logger.Error(fmt.Sprintf("csv export failed: %v", err))
	}
}

func (s *Server) getSummary(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		noDataset(c)
		return
	}
	c.JSON(http.StatusOK, processor.Summarize(ds))
}

// getSelectors 返回过滤控件需要的取值集合
func (s *Server) getSelectors(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		noDataset(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"origins":      ds.Origins(),
		"destinations": ds.Destinations(c.Query("origin")),
		"airlines":     ds.Airlines(),
	})
}

func (s *Server) getRouteReport(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		noDataset(c)
		return
	}

	origin := c.Param("origin")
	destination := c.Param("destination")
	report, found := processor.AnalyzeRoute(ds, origin, destination)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("no carriers serve route %s → %s", origin, destination),
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) getAirlineOverview(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		noDataset(c)
		return
	}
	c.JSON(http.StatusOK, processor.AirlineOverview(ds))
}

// sendReport 把当前过滤视图的CSV邮件发送给配置的收件人
func (s *Server) sendReport(c *gin.Context) {
	if s.cfg.SendEmail.Recipient == "" {
		errorJSON(c, http.StatusServiceUnavailable, fmt.Errorf("report mail not configured"))
		return
	}

	ds, ok := s.store.Get()
	if !ok {
		noDataset(c)
		return
	}

	q, err := parseQuery(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	var buf strings.Builder
	if err := export.WriteCSV(processor.Filter(ds, q), &buf); err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	subject := fmt.Sprintf("Airline bid report: %s", ds.Sheet)
	if err := email.SendReport(s.cfg, subject, []byte(buf.String())); err != nil {
		s.logger.Error(err.Error())
		errorJSON(c, http.StatusBadGateway, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent_to": s.cfg.SendEmail.Recipient})
}
