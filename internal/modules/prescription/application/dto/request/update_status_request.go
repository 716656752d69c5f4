package request

// UpdateStatusRequest 状态流转请求
type UpdateStatusRequest struct {
	PrescriptionId string `json:"prescription_id"`
	NewStatus      string `json:"new_status"`
	Notes          string `json:"notes"`
}
