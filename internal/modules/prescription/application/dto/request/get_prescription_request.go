package request

// GetPrescriptionRequest 时间线 / 进度 / 详情查询共用
type GetPrescriptionRequest struct {
	PrescriptionId string `json:"prescription_id"`
}

// ListPrescriptionsRequest 用户处方列表
type ListPrescriptionsRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}
