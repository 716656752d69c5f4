package entity

import "time"

// Prescription 处方实体。
// 不变式：Status 一定是枚举值之一；VerifiedAt / ProcessedAt 一旦写入就不被后续
// 正向流转清除。Status 是审计日志最新一条的缓存投影，历史以日志为准。
type Prescription struct {
	Id          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Uuid        string     `gorm:"column:uuid;type:char(20);uniqueIndex;not null"`
	UserId      string     `gorm:"column:user_id;type:char(36);index;not null"`
	OrderId     string     `gorm:"column:order_id;type:char(20);index"`
	ImageUrl    string     `gorm:"column:image_url;type:varchar(255)"`
	Status      string     `gorm:"column:status;type:varchar(20);index;not null;default:uploaded"`
	VerifiedBy  string     `gorm:"column:verified_by;type:char(36)"`
	VerifiedAt  *time.Time `gorm:"column:verified_at;type:datetime"`
	ProcessedAt *time.Time `gorm:"column:processed_at;type:datetime"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;type:datetime;not null"`
}

func (Prescription) TableName() string {
	return "prescription"
}
