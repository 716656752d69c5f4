package channel

import (
	"MediLink/internal/modules/notification/domain/entity"
	"MediLink/internal/modules/prescription/infrastructure/mq"
	"context"
	"encoding/json"
	"errors"
)

// pushSender App 推送渠道：消息发往 Kafka 推送主题，由独立的推送网关消费
type pushSender struct {
	pub   mq.Publisher
	topic string
}

func NewPushSender(pub mq.Publisher, topic string) Sender {
	return &pushSender{pub: pub, topic: topic}
}

func (s *pushSender) Name() string {
	return entity.ChannelPush
}

type pushMessage struct {
	UserId  string         `json:"user_id"`
	Title   string         `json:"title"`
	Body    string         `json:"body"`
	Payload entity.Payload `json:"payload"`
}

func (s *pushSender) Send(ctx context.Context, userID, title, body string, payload entity.Payload) error {
	if s.pub == nil || s.topic == "" {
		return errors.New("推送通道未配置")
	}

	value, err := json.Marshal(pushMessage{
		UserId:  userID,
		Title:   title,
		Body:    body,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	_, err = s.pub.Publish(ctx, mq.Message{
		Topic: s.topic,
		Key:   []byte(userID),
		Value: value,
		Headers: map[string]string{
			"prescription_id": payload.PrescriptionId,
			"new_status":      payload.NewStatus,
		},
	})
	return err
}
