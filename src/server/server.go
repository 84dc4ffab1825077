// server.go
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"AirlineBids/src/config"
	"AirlineBids/src/datapush"
	"AirlineBids/src/datasource/file"
	"AirlineBids/src/storage"
)

// LayoutFromConfig 从配置拼出工作簿排版描述
func LayoutFromConfig(cfg *config.Config, ccfg *config.ColumnConfig) file.Layout {
	return file.Layout{
		SheetName: cfg.SheetName,
		HeaderRow: cfg.HeaderRow,
		FirstCol:  cfg.FirstCol,
		Rename:    ccfg.Columns,
	}
}

// Server 报价分析数据API
type Server struct {
	cfg      *config.Config
	layout   file.Layout
	store    *DatasetStore
	logger   *storage.Logger
	notifier *datapush.Notifier
}

func New(cfg *config.Config, layout file.Layout, store *DatasetStore, logger *storage.Logger, notifier *datapush.Notifier) *Server {
	return &Server{
		cfg:      cfg,
		layout:   layout,
		store:    store,
		logger:   logger,
		notifier: notifier,
	}
}

// Router 注册全部路由
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.POST("/bids", s.uploadBids)
		api.GET("/bids", s.listBids)
		api.GET("/bids/export", s.exportBids)
		api.GET("/summary", s.getSummary)
		api.GET("/selectors", s.getSelectors)
		api.GET("/routes/:origin/:destination", s.getRouteReport)
		api.GET("/airlines", s.getAirlineOverview)
		api.POST("/report", s.sendReport)
	}
	router.GET("/logs", s.streamLogs)

	return router
}

// Run 启动HTTP服务
func (s *Server) Run() error {
	s.logger.Info(fmt.Sprintf("bid analysis API listening on %s", s.cfg.Server.Addr))
	return s.Router().Run(s.cfg.Server.Addr)
}

// streamLogs 以chunked响应持续输出日志，供简单的网页端查看
func (s *Server) streamLogs(c *gin.Context) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Transfer-Encoding", "chunked")

	logChan := s.logger.Subscribe()

	for {
		select {
		case msg := <-logChan:
			if _, err := fmt.Fprint(c.Writer, msg); err != nil {
				return
			}
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func noDataset(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "no dataset loaded, upload a workbook first"})
}
