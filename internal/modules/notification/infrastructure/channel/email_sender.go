package channel

import (
	"MediLink/internal/modules/notification/domain/entity"
	"context"
	"errors"

	"gopkg.in/mail.v2"
)

// emailSender SMTP 邮件渠道
type emailSender struct {
	smtpHost string
	smtpPort int
	username string
	password string
	from     string
	resolver AddressResolver
}

func NewEmailSender(smtpHost string, smtpPort int, username, password, from string, resolver AddressResolver) Sender {
	return &emailSender{
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		username: username,
		password: password,
		from:     from,
		resolver: resolver,
	}
}

func (s *emailSender) Name() string {
	return entity.ChannelEmail
}

func (s *emailSender) Send(ctx context.Context, userID, title, body string, payload entity.Payload) error {
	if s.smtpHost == "" {
		return errors.New("smtp 未配置")
	}
	if s.resolver == nil {
		return errors.New("缺少邮箱解析器")
	}

	to, err := s.resolver(ctx, userID)
	if err != nil {
		return err
	}
	if to == "" {
		// 用户没有邮箱，跳过不算失败
		return nil
	}

	message := mail.NewMessage()
	message.SetHeader("From", s.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", title)
	message.SetBody("text/plain", body)

	dialer := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	return dialer.DialAndSend(message)
}
