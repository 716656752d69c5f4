package respond

// PrescriptionItem 处方详情 / 列表项
type PrescriptionItem struct {
	Uuid        string `json:"uuid"`
	UserId      string `json:"user_id"`
	OrderId     string `json:"order_id,omitempty"`
	ImageUrl    string `json:"image_url,omitempty"`
	Status      string `json:"status"`
	VerifiedBy  string `json:"verified_by,omitempty"`
	VerifiedAt  string `json:"verified_at,omitempty"`
	ProcessedAt string `json:"processed_at,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
