package entity

import (
	"database/sql"
	"time"
)

// 日志级别分类
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"  // 退回、驳回等需要关注的流转
	SeverityCritical = "critical" // 系统过期等异常路径
)

// 系统操作人标识
const ActorSystem = "system"

// TransitionLog 状态流转审计日志，只追加不修改。
// 同一处方按时间排序的日志集合是历史的唯一事实来源。
type TransitionLog struct {
	Id             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PrescriptionId string    `gorm:"column:prescription_id;type:char(20);index:idx_translog_rx;not null"`
	OldStatus      string    `gorm:"column:old_status;type:varchar(20);not null"`
	NewStatus      string    `gorm:"column:new_status;type:varchar(20);not null"`
	ActorId        string    `gorm:"column:actor_id;type:char(36);not null;default:system"`
	Notes          string    `gorm:"column:notes;type:text"`
	Severity       string    `gorm:"column:severity;type:varchar(16);not null;default:info"`
	CreatedAt      time.Time `gorm:"column:created_at;type:datetime;not null;index:idx_translog_rx"`
}

func (TransitionLog) TableName() string {
	return "prescription_transition_log"
}

// 事件发布状态（outbox）
const (
	EventStatusPending   = 0 // 待发布
	EventStatusPublished = 1 // 已发布到 Kafka
)

// PrescriptionEvent 流转事件 outbox。
// 编排器在流转事务内追加一行，中继轮询后发布到 Kafka 供下游（订单、报表）消费。
type PrescriptionEvent struct {
	Id             int64        `gorm:"column:id;primaryKey;autoIncrement"`
	EventType      string       `gorm:"column:event_type;type:varchar(40);not null"`
	PrescriptionId string       `gorm:"column:prescription_id;type:char(20);not null;index:idx_rx_event_rx"`
	UserId         string       `gorm:"column:user_id;type:char(36);not null"`
	PayloadJson    string       `gorm:"column:payload_json;type:json"`
	DedupKey       string       `gorm:"column:dedup_key;type:varchar(160);not null;uniqueIndex:uniq_rx_event_dedup"`
	Status         int8         `gorm:"column:status;type:tinyint;not null;default:0;index:idx_rx_event_status"`
	RetryCount     int          `gorm:"column:retry_count;type:int;not null;default:0"`
	NextRetryAt    sql.NullTime `gorm:"column:next_retry_at;type:datetime;index:idx_rx_event_next_retry"`
	LastError      string       `gorm:"column:last_error;type:varchar(255)"`
	CreatedAt      time.Time    `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt      time.Time    `gorm:"column:updated_at;type:datetime;not null"`
}

func (PrescriptionEvent) TableName() string {
	return "prescription_event"
}
