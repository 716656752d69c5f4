package request

// ListNotificationsRequest 通知列表查询
type ListNotificationsRequest struct {
	UnreadOnly bool   `json:"unread_only"`
	Type       string `json:"type"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}
