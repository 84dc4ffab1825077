package datapush

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"AirlineBids/src/processor"
)

const (
	RETRY_TIMES    = 5
	RETRY_INTERVAL = 2 * time.Second
	PUSH_TIMEOUT   = 10 * time.Second
)

// Notifier 数据集刷新后向外部系统推送摘要
type Notifier struct {
	url    string
	client *http.Client
	sleep  func(time.Duration) // 测试时替换
}

func NewNotifier(url string) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: PUSH_TIMEOUT},
		sleep:  time.Sleep,
	}
}

// Enabled 未配置推送地址时通知器静默关闭
func (n *Notifier) Enabled() bool {
	return n != nil && n.url != ""
}

type refreshPayload struct {
	Event    string            `json:"event"`
	Sheet    string            `json:"sheet"`
	LoadedAt time.Time         `json:"loaded_at"`
	Summary  processor.Summary `json:"summary"`
	PushedAt time.Time         `json:"pushed_at"`
}

// PushRefresh 推送"数据集已刷新"事件，带有限次重试
func (n *Notifier) PushRefresh(ds processor.Dataset) error {
	if !n.Enabled() {
		return nil
	}

	payload := refreshPayload{
		Event:    "dataset_refreshed",
		Sheet:    ds.Sheet,
		LoadedAt: ds.LoadedAt,
		Summary:  processor.Summarize(ds),
		PushedAt: time.Now(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= RETRY_TIMES; attempt++ {
		lastErr = n.post(body)
		if lastErr == nil {
			return nil
		}
		if attempt < RETRY_TIMES {
			n.sleep(RETRY_INTERVAL)
		}
	}
	return fmt.Errorf("webhook push failed after %d attempts: %w", RETRY_TIMES, lastErr)
}

func (n *Notifier) post(body []byte) error {
	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
