package entity

// 处方状态
const (
	StatusUploaded       = "uploaded"        // 已上传，等待机器处理
	StatusProcessing     = "processing"      // 机器处理中（图像解析等）
	StatusReviewRequired = "review_required" // 等待药师人工审核
	StatusValidated      = "validated"       // 审核通过
	StatusFulfilled      = "fulfilled"       // 已配药完成，终态
	StatusRejected       = "rejected"        // 已驳回，吸收态
	StatusExpired        = "expired"         // 已过期，吸收态（仅由系统定时任务进入）
)

// ForwardPath 5步成功路径，进度条与时间线均以它为准
var ForwardPath = []string{
	StatusUploaded,
	StatusProcessing,
	StatusReviewRequired,
	StatusValidated,
	StatusFulfilled,
}

// TotalSteps 成功路径固定步数
const TotalSteps = 5

// AllStatuses 全部状态枚举
func AllStatuses() []string {
	return []string{
		StatusUploaded,
		StatusProcessing,
		StatusReviewRequired,
		StatusValidated,
		StatusFulfilled,
		StatusRejected,
		StatusExpired,
	}
}

// IsStatus 是否为合法枚举值
func IsStatus(s string) bool {
	for _, v := range AllStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// StepIndex 状态在成功路径中的 1-based 位置，不在路径上返回 0
func StepIndex(s string) int {
	for i, v := range ForwardPath {
		if v == s {
			return i + 1
		}
	}
	return 0
}

// IsValidTransition 状态机唯一裁决入口，任何持久化变更前都必须先过这张表。
// 规则：
//   - 成功路径上任意向前移动合法（允许跳步）
//   - validated → review_required 合法（退回补充审核）
//   - rejected 可以从除 fulfilled 外的任何状态进入（终态成功不可撤销）
//   - 其余组合一律非法；expired 不经此表，由定时任务单独进入
func IsValidTransition(oldStatus, newStatus string) bool {
	if !IsStatus(oldStatus) || !IsStatus(newStatus) {
		return false
	}

	if newStatus == StatusRejected {
		return oldStatus != StatusFulfilled
	}

	if oldStatus == StatusValidated && newStatus == StatusReviewRequired {
		return true
	}

	oldStep := StepIndex(oldStatus)
	newStep := StepIndex(newStatus)
	if oldStep > 0 && newStep > 0 && newStep > oldStep {
		return true
	}

	return false
}

// CanExpire 过期扫描只处理尚未进入审核结论的处方
func CanExpire(s string) bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusReviewRequired:
		return true
	}
	return false
}

// IsTerminal 吸收态判断：终态之后成功路径不再适用
func IsTerminal(s string) bool {
	switch s {
	case StatusFulfilled, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// NextAction 面向用户的下一步动作说明
func NextAction(s string) string {
	switch s {
	case StatusUploaded:
		return "处方已上传，系统即将开始识别"
	case StatusProcessing:
		return "系统识别中，请耐心等待"
	case StatusReviewRequired:
		return "等待药师审核处方内容"
	case StatusValidated:
		return "审核通过，药房正在配药"
	case StatusFulfilled:
		return "配药完成，处理已结束"
	case StatusRejected:
		return "处方被驳回，请联系药师或重新上传"
	case StatusExpired:
		return "处方已过期，请重新上传"
	}
	return ""
}
