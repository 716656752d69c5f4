package entity

import "fmt"

// TransitionTemplate 状态对应的通知模板。
// 查表代替 if-else 链，新增状态只需补一行。
type TransitionTemplate struct {
	Title    string
	Body     string // 带一个 %s 占位，填处方 ID
	Priority string
}

// transitionTemplates 状态 → 模板。没有条目的状态不产生通知。
// uploaded 是初始状态，不会作为流转目标出现，因此没有模板。
var transitionTemplates = map[string]TransitionTemplate{
	"processing": {
		Title:    "处方识别中",
		Body:     "您的处方 %s 已进入系统识别流程",
		Priority: PriorityMedium,
	},
	"review_required": {
		Title:    "处方等待审核",
		Body:     "您的处方 %s 正在等待药师审核",
		Priority: PriorityMedium,
	},
	"validated": {
		Title:    "处方审核通过",
		Body:     "您的处方 %s 已通过药师审核，药房即将配药",
		Priority: PriorityHigh,
	},
	"fulfilled": {
		Title:    "配药完成",
		Body:     "您的处方 %s 已完成配药",
		Priority: PriorityHigh,
	},
	"rejected": {
		Title:    "处方被驳回",
		Body:     "您的处方 %s 未通过审核，请联系药师了解详情",
		Priority: PriorityHigh,
	},
	"expired": {
		Title:    "处方已过期",
		Body:     "您的处方 %s 因长时间未完成审核已过期，请重新上传",
		Priority: PriorityHigh,
	},
}

// TemplateFor 查找状态的通知模板，不存在返回 false（不是错误）
func TemplateFor(status string) (TransitionTemplate, bool) {
	tpl, ok := transitionTemplates[status]
	return tpl, ok
}

// Render 渲染标题与正文
func (t TransitionTemplate) Render(prescriptionID string) (string, string) {
	return t.Title, fmt.Sprintf(t.Body, prescriptionID)
}
