package request

// MarkReadRequest 单条已读
type MarkReadRequest struct {
	NotificationId string `json:"notification_id"`
}
