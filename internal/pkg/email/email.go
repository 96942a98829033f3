package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/qs3c/insider_go_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendTrialExpired 试用到期提醒
func (s *Service) SendTrialExpired(to, username string) error {
	subject := "试用已到期 - Insider Radar"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; color: #333;">
  <h2>您好，%s</h2>
  <p>您的 Insider Pro 24 小时试用已经到期，账号已回到延迟数据模式。</p>
  <p>升级到 Insider Pro 可以继续实时查看内部人交易申报：</p>
  <p><a href="https://insider-radar.example.com/upgrade">立即升级</a></p>
  <p style="color: #999; font-size: 12px;">如果这不是您的操作，请忽略此邮件。</p>
</body>
</html>`, username)

	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	if s.cfg.SMTPHost == "" {
		return fmt.Errorf("smtp not configured")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
