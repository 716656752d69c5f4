package respond

// NotificationItem 通知列表项
type NotificationItem struct {
	Uuid      string `json:"uuid"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Payload   string `json:"payload,omitempty"`
	IsRead    bool   `json:"is_read"`
	Priority  string `json:"priority"`
	CreatedAt string `json:"created_at"`
}

// PreferenceItem 偏好视图
type PreferenceItem struct {
	PushEnabled  bool `json:"push_enabled"`
	EmailEnabled bool `json:"email_enabled"`
	SmsEnabled   bool `json:"sms_enabled"`
	InAppEnabled bool `json:"in_app_enabled"`

	StatusUpdates bool `json:"status_updates"`
	OrderUpdates  bool `json:"order_updates"`
	Promotional   bool `json:"promotional"`
	SystemAlerts  bool `json:"system_alerts"`
}
