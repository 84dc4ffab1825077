// attachment.go
package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jordan-wright/email"

	"AirlineBids/src/config"
)

// XLSXAttachmentHandler 把目标邮件里的xlsx附件落盘到数据目录
type XLSXAttachmentHandler struct {
	TargetSubject string          // 目标邮件主题关键词
	DataDir       string          // 附件保存目录
	processedUIDs map[uint32]bool // 已处理邮件UID记录
	mu            sync.RWMutex
}

func NewXLSXAttachmentHandler(subject, dataDir string) *XLSXAttachmentHandler {
	return &XLSXAttachmentHandler{
		TargetSubject: subject,
		DataDir:       dataDir,
		processedUIDs: make(map[uint32]bool),
	}
}

func (h *XLSXAttachmentHandler) isProcessed(uid uint32) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.processedUIDs[uid]
}

func (h *XLSXAttachmentHandler) markAsProcessed(uid uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processedUIDs[uid] = true
}

// Handle 保存单封邮件的xlsx附件，返回落盘路径(没有可用附件时为空)。
// 同一UID只处理一次。
func (h *XLSXAttachmentHandler) Handle(e *Email) (string, error) {
	if e == nil || h.isProcessed(e.UID) {
		return "", nil
	}

	if !strings.Contains(e.Subject, h.TargetSubject) {
		return "", nil
	}

	if err := os.MkdirAll(h.DataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}

	var savedPath string
	for _, attachment := range e.Attachments {
		if !strings.EqualFold(filepath.Ext(attachment.Filename), ".xlsx") {
			continue
		}

		filePath := filepath.Join(h.DataDir, filepath.Base(attachment.Filename))
		if err := os.WriteFile(filePath, attachment.Content, 0644); err != nil {
			return "", fmt.Errorf("failed to save attachment: %w", err)
		}
		savedPath = filePath
	}

	if savedPath != "" {
		h.markAsProcessed(e.UID)
	}

	return savedPath, nil
}

// SendReport 把当前过滤视图的CSV以邮件附件发给配置的收件人
func SendReport(c *config.Config, subject string, csvData []byte) error {
	from := c.SendEmail.Username

	e := email.NewEmail()
	e.From = fmt.Sprintf("Bid Reports <%s>", from)
	e.To = []string{c.SendEmail.Recipient}
	e.Subject = subject
	e.Text = []byte("Attached: the current airline bid view exported as CSV.")

	if _, err := e.Attach(strings.NewReader(string(csvData)), "bids.csv", "text/csv"); err != nil {
		return fmt.Errorf("failed to attach report: %w", err)
	}

	// 确保服务器地址包含端口
	smtpAddr := c.SendEmail.Server
	if !strings.Contains(smtpAddr, ":") {
		smtpAddr += ":465" // 默认SSL端口
	}
	host := strings.Split(smtpAddr, ":")[0]

	err := e.SendWithTLS(
		smtpAddr,
		smtp.PlainAuth("", from, c.SendEmail.Password, host),
		&tls.Config{ServerName: host},
	)
	if err != nil {
		return fmt.Errorf("failed to send report mail via %s: %w", smtpAddr, err)
	}
	return nil
}
