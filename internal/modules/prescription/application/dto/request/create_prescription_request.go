package request

// CreatePrescriptionRequest 处方上传登记
type CreatePrescriptionRequest struct {
	ImageUrl string `json:"image_url"`
	OrderId  string `json:"order_id"`
}
