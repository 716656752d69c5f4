package channel

import (
	"MediLink/internal/modules/notification/domain/entity"
	"context"
)

// Sender 投递渠道抽象。具体渠道（推送/邮件/短信/站内）彼此独立，
// 单渠道失败只影响自己，由调用方隔离处理。
type Sender interface {
	// Name 渠道名，与 entity.Channel* 常量对应
	Name() string

	// Send 向用户投递一条通知
	Send(ctx context.Context, userID, title, body string, payload entity.Payload) error
}

// AddressResolver 把用户 ID 解析为渠道地址（邮箱、手机号）。
// 用户资料属于外部协作方，这里只依赖解析函数。
// 返回空地址表示该用户没有此渠道地址，渠道静默跳过。
type AddressResolver func(ctx context.Context, userID string) (string, error)
