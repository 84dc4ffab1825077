package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron"

	"AirlineBids/src/config"
	"AirlineBids/src/datapush"
	"AirlineBids/src/datasource/email"
	"AirlineBids/src/datasource/file"
	"AirlineBids/src/processor"
	"AirlineBids/src/server"
	"AirlineBids/src/storage"
)

func main() {
	jsonFolder := "./config"
	jsonFile := "config.json"
	columnsJsonFile := "columns.json"
	cfg, ccfg, err := config.LoadConfig(jsonFolder, jsonFile, columnsJsonFile)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName, cfg.LogMaxSize)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Close()

	layout := server.LayoutFromConfig(cfg, ccfg)
	store := &server.DatasetStore{}
	notifier := datapush.NewNotifier(cfg.WebhookURL)

	// 工作簿落盘后的统一加载入口
	loadWorkbook := func(path string) {
		df, err := file.ReadXLSXToDataFrame(path, layout)
		if err != nil {
			logger.Error(fmt.Sprintf("failed to read workbook %s: %v", path, err))
			return
		}
		ds, err := processor.Load(df, layout.SheetName)
		if err != nil {
			logger.Error(fmt.Sprintf("failed to load dataset from %s: %v", path, err))
			return
		}
		store.Set(ds)
		logger.Info(fmt.Sprintf("dataset loaded from %s: %d bids", path, ds.Len()))

		if notifier.Enabled() {
			go func() {
				if err := notifier.PushRefresh(ds); err != nil {
					logger.Error(err.Error())
				}
			}()
		}
	}

	if err := file.EnsureDir(cfg.DataDir); err != nil {
		log.Fatal("Failed to prepare data dir:", err)
	}

	// 启动时尝试加载目录里已有的最新工作簿
	if path, err := file.FindLatestWorkbook(cfg.DataDir); err == nil {
		loadWorkbook(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warning(err.Error())
	}

	// 监控数据目录，新工作簿自动重载
	monitor, err := file.NewFileMonitor(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to create file monitor:", err)
	}
	defer monitor.Close()
	go func() {
		if err := monitor.Watch(loadWorkbook); err != nil {
			logger.Error("file monitoring error: " + err.Error())
		}
	}()

	// 配置了邮箱时按固定间隔拉取带报价附件的邮件
	c := cron.New()
	if cfg.Email.Server != "" {
		emailClient := email.NewEmailClient(
			cfg.Email.Server,
			cfg.Email.Username,
			cfg.Email.Password)
		handler := email.NewXLSXAttachmentHandler(cfg.Email.TargetSubject, cfg.DataDir)

		interval := time.Duration(cfg.Email.CheckInterval).String()
		cronSpec := fmt.Sprintf("@every %s", interval)

		err = c.AddFunc(cronSpec, func() {
			logger.Info(fmt.Sprintf("mailbox poll started (interval: %v)", interval))

			newEmail, err := email.CheckAndProcessEmails(emailClient, cfg.Email.TargetSubject, logger)
			if err != nil {
				logger.Error("mailbox check failed: " + err.Error())
				return
			}
			if newEmail == nil {
				return
			}

			path, err := handler.Handle(newEmail)
			if err != nil {
				logger.Error(fmt.Sprintf("failed to handle mail (UID:%d): %v", newEmail.UID, err))
				return
			}
			if path != "" {
				// 落盘即交给统一加载入口，目录监控不在所有平台都可靠
				loadWorkbook(path)
			}
		})
		if err != nil {
			logger.Error("failed to schedule mailbox poll: " + err.Error())
			return
		}

		c.Start()
		defer c.Stop()
		logger.Info(fmt.Sprintf("mailbox polling enabled (interval: %v)", interval))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	file.SetupSignalHandler(cancel)

	srv := server.New(cfg, layout, store, logger, notifier)
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Run()
	}()

	select {
	case err := <-srvErr:
		if err != nil {
			logger.Fatal("server stopped: " + err.Error())
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, exiting")
	}
}
