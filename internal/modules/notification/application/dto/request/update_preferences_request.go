package request

// UpdatePreferencesRequest 偏好增量修改，nil 表示不改该项
type UpdatePreferencesRequest struct {
	PushEnabled  *bool `json:"push_enabled"`
	EmailEnabled *bool `json:"email_enabled"`
	SmsEnabled   *bool `json:"sms_enabled"`
	InAppEnabled *bool `json:"in_app_enabled"`

	StatusUpdates *bool `json:"status_updates"`
	OrderUpdates  *bool `json:"order_updates"`
	Promotional   *bool `json:"promotional"`
	SystemAlerts  *bool `json:"system_alerts"`
}
