package entity

import "time"

// 通知类型
const (
	TypeStatusChange = "status_change" // 处方状态变更
	TypeOrderUpdate  = "order_update"  // 订单进展
	TypeMessage      = "message"       // 站内消息
	TypeAlert        = "alert"         // 系统告警
)

// 通知优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// 投递渠道
const (
	ChannelPush  = "push"
	ChannelEmail = "email"
	ChannelSms   = "sms"
	ChannelInApp = "in_app"
)

// Notification 通知记录。每个逻辑事件只落一条记录，与渠道数无关；
// 创建后内容不再修改，只有已读标记可以翻转。
type Notification struct {
	Id          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Uuid        string     `gorm:"column:uuid;type:char(20);uniqueIndex;not null"`
	UserId      string     `gorm:"column:user_id;type:char(36);index:idx_notif_user;not null"`
	Type        string     `gorm:"column:type;type:varchar(30);not null"`
	Title       string     `gorm:"column:title;type:varchar(100);not null"`
	Body        string     `gorm:"column:body;type:varchar(500)"`
	PayloadJson string     `gorm:"column:payload_json;type:json"`
	IsRead      bool       `gorm:"column:is_read;not null;default:false;index:idx_notif_user"`
	Priority    string     `gorm:"column:priority;type:varchar(10);not null;default:medium"`
	ExpiresAt   *time.Time `gorm:"column:expires_at;type:datetime"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:datetime;not null"`
}

func (Notification) TableName() string {
	return "notification"
}

// Payload 通知结构化负载，供前端跳转
type Payload struct {
	PrescriptionId string `json:"prescription_id,omitempty"`
	NewStatus      string `json:"new_status,omitempty"`
	DeepLink       string `json:"deep_link,omitempty"`
}
