package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Server struct {
		Addr string `json:"addr"` // HTTP监听地址
	} `json:"server"`

	Email struct {
		Server        string   `json:"server"`         // IMAP服务器地址
		Username      string   `json:"username"`       // 邮箱用户名
		Password      string   `json:"password"`       // 邮箱密码
		TargetSubject string   `json:"target_subject"` // 需要匹配的邮件主题
		CheckInterval Duration `json:"check_interval"` // 检查新邮件的间隔时间
	} `json:"email"`

	SendEmail struct {
		Server    string `json:"server"`    // SMTP服务器地址
		Username  string `json:"username"`  // 发件邮箱
		Password  string `json:"password"`  // 发件密码
		Recipient string `json:"recipient"` // 报表收件人
	} `json:"send_email"`

	DataDir    string `json:"data_dir"`   // 工作簿存储目录
	SheetName  string `json:"sheet_name"` // 报价表所在sheet
	HeaderRow  int    `json:"header_row"` // 标题行(1起算)
	FirstCol   int    `json:"first_col"`  // 数据起始列(1起算)
	LogName    string `json:"log_name"`
	LogMaxSize string `json:"log_max_size"`
	WebhookURL string `json:"webhook_url"` // 数据集刷新通知地址，空则不推送
}

// ColumnConfig 工作簿标题到规范列名的映射
type ColumnConfig struct {
	Columns map[string]string `json:"columns"`
}

var (
	once                 sync.Once
	instance             *Config
	columnConfigInstance *ColumnConfig
	mu                   sync.RWMutex
)

func LoadConfig(jsonFolder, jsonFile, columnsJsonFile string) (*Config, *ColumnConfig, error) {
	var err error
	once.Do(func() {
		instance, columnConfigInstance, err = loadConfigs(jsonFolder, jsonFile, columnsJsonFile)
	})
	return instance, columnConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, columnsJsonFile string) (*Config, *ColumnConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	columnsFile := filepath.Join(jsonFolder, columnsJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	columnsData, err := readFile(columnsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read columns config file: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	ccfgChan := make(chan *ColumnConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseColumnConfig(columnsData, ccfgChan, errChan)

	cfg, ccfg, err := waitForResults(cfgChan, ccfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	applyDefaults(cfg)
	return cfg, ccfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.SheetName == "" {
		cfg.SheetName = "Airline Bids"
	}
	if cfg.HeaderRow == 0 {
		cfg.HeaderRow = 11
	}
	if cfg.FirstCol == 0 {
		cfg.FirstCol = 3
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("failed to parse Config: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseColumnConfig(data []byte, resultChan chan<- *ColumnConfig, errChan chan<- error) {
	var ccfg ColumnConfig
	if err := json.Unmarshal(data, &ccfg); err != nil {
		errChan <- fmt.Errorf("failed to parse ColumnConfig: %w", err)
		return
	}
	resultChan <- &ccfg
}

func waitForResults(
	cfgChan <-chan *Config,
	ccfgChan <-chan *ColumnConfig,
	errChan <-chan error,
) (*Config, *ColumnConfig, error) {
	var (
		cfg    *Config
		ccfg   *ColumnConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case cc := <-ccfgChan:
			ccfg = cc
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || ccfg == nil {
		return nil, nil, fmt.Errorf("some config files failed to load")
	}

	return cfg, ccfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "config loading hit multiple errors:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
// 用于从JSON字符串解析Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
// 用于将Duration序列化为JSON字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (cc *ColumnConfig) GetColumn(header string) string {
	mu.RLock()
	defer mu.RUnlock()
	return cc.Columns[header]
}

func (cc *ColumnConfig) SetColumn(header, canonical string) {
	mu.Lock()
	defer mu.Unlock()
	cc.Columns[header] = canonical
}
