package repository

// TrackingUnitOfWork 把状态更新、日志追加、事件入队放进同一个数据库事务。
// 状态缓存与审计日志作为一个逻辑单元一起提交，避免两者观察到不一致。
type TrackingUnitOfWork interface {
	Transaction(fn func(rxRepo PrescriptionRepository, logRepo TransitionLogRepository, eventRepo PrescriptionEventRepository) error) error
}
