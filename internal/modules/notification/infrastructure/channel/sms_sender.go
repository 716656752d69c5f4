package channel

import (
	"MediLink/internal/modules/notification/domain/entity"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// smsSender 短信渠道，对接外部短信网关的 HTTP 接口
type smsSender struct {
	gatewayURL string
	token      string
	client     *http.Client
	resolver   AddressResolver
}

func NewSmsSender(gatewayURL, token string, resolver AddressResolver) Sender {
	return &smsSender{
		gatewayURL: gatewayURL,
		token:      token,
		client:     &http.Client{Timeout: 10 * time.Second},
		resolver:   resolver,
	}
}

func (s *smsSender) Name() string {
	return entity.ChannelSms
}

type smsRequest struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
}

func (s *smsSender) Send(ctx context.Context, userID, title, body string, payload entity.Payload) error {
	if s.gatewayURL == "" {
		return errors.New("短信网关未配置")
	}
	if s.resolver == nil {
		return errors.New("缺少手机号解析器")
	}

	phone, err := s.resolver(ctx, userID)
	if err != nil {
		return err
	}
	if phone == "" {
		return nil
	}

	reqBody, err := json.Marshal(smsRequest{
		Phone: phone,
		Text:  fmt.Sprintf("【MediLink】%s：%s", title, body),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway error: %s", resp.Status)
	}
	return nil
}
