package entity

import "time"

// NotificationPreference 用户通知偏好。
// 首次访问时以全开缺省值懒创建，只有用户显式操作才会修改。
type NotificationPreference struct {
	Id     int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserId string `gorm:"column:user_id;type:char(36);uniqueIndex;not null"`

	// 渠道开关
	PushEnabled  bool `gorm:"column:push_enabled;not null;default:true"`
	EmailEnabled bool `gorm:"column:email_enabled;not null;default:true"`
	SmsEnabled   bool `gorm:"column:sms_enabled;not null;default:true"`
	InAppEnabled bool `gorm:"column:in_app_enabled;not null;default:true"`

	// 类别开关
	StatusUpdates bool `gorm:"column:status_updates;not null;default:true"`
	OrderUpdates  bool `gorm:"column:order_updates;not null;default:true"`
	Promotional   bool `gorm:"column:promotional;not null;default:true"`
	SystemAlerts  bool `gorm:"column:system_alerts;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (NotificationPreference) TableName() string {
	return "notification_preference"
}

// DefaultPreference 缺省全开
func DefaultPreference(userID string) *NotificationPreference {
	now := time.Now()
	return &NotificationPreference{
		UserId:        userID,
		PushEnabled:   true,
		EmailEnabled:  true,
		SmsEnabled:    true,
		InAppEnabled:  true,
		StatusUpdates: true,
		OrderUpdates:  true,
		Promotional:   true,
		SystemAlerts:  true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// EnabledChannels 按开关返回启用的渠道列表
func (p *NotificationPreference) EnabledChannels() []string {
	channels := make([]string, 0, 4)
	if p.InAppEnabled {
		channels = append(channels, ChannelInApp)
	}
	if p.PushEnabled {
		channels = append(channels, ChannelPush)
	}
	if p.EmailEnabled {
		channels = append(channels, ChannelEmail)
	}
	if p.SmsEnabled {
		channels = append(channels, ChannelSms)
	}
	return channels
}

// CategoryEnabled 判断某通知类别是否允许
func (p *NotificationPreference) CategoryEnabled(notifType string) bool {
	switch notifType {
	case TypeStatusChange:
		return p.StatusUpdates
	case TypeOrderUpdate:
		return p.OrderUpdates
	case TypeMessage:
		return p.Promotional
	case TypeAlert:
		return p.SystemAlerts
	}
	return true
}
