package wecom

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/psyns/account-monitor/internal/service/notification"
)

var _ notification.Notifier = (*Service)(nil)

const defaultTimeout = 10 * time.Second

// Service 企业微信群机器人webhook
// 所有发送失败都就地吞掉并记日志
type Service struct {
	webhookURL  string
	initMessage string
	client      *http.Client
	now         func() time.Time
}

func NewService(webhookURL, initMessage string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	s := &Service{
		webhookURL:  webhookURL,
		initMessage: initMessage,
		client:      &http.Client{Timeout: timeout},
		now:         time.Now,
	}
	// 构造即报到, 和告警走同一条webhook通道
	s.Send(context.Background(), fmt.Sprintf("========INFO======\n%s\nEvent:ProgramStart", s.initMessage))
	return s
}

// Send 发送文本, 统一追加时间戳
func (s *Service) Send(ctx context.Context, text string) {
	payload := map[string]any{
		"msgtype": "text",
		"text": map[string]any{
			"content": text + "\n" + s.now().Format(time.DateTime),
		},
	}
	if err := s.post(ctx, payload); err != nil {
		slog.Error("failed to send wecom message", "error", err)
	}
}

// SendError 运行中断/异常报告, 时间戳由Send统一追加
func (s *Service) SendError(ctx context.Context, text string) {
	s.Send(ctx, fmt.Sprintf("========BREAK=======\n%s\nEvent:ProgramBreak\nExitlog:%s",
		s.initMessage, text))
}

// SendImage 上传本地图片, base64正文 + md5校验, 发送后删除源文件
func (s *Service) SendImage(ctx context.Context, filePath string) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		slog.Error("failed to read image for wecom", "path", filePath, "error", err)
		return
	}
	defer func() {
		if err := os.Remove(filePath); err != nil {
			slog.Warn("failed to remove sent image", "path", filePath, "error", err)
		}
	}()

	sum := md5.Sum(content)
	payload := map[string]any{
		"msgtype": "image",
		"image": map[string]any{
			"base64": base64.StdEncoding.EncodeToString(content),
			"md5":    hex.EncodeToString(sum[:]),
		},
	}
	if err := s.post(ctx, payload); err != nil {
		slog.Error("failed to send wecom image", "path", filePath, "error", err)
	}
}

func (s *Service) post(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("wecom status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
