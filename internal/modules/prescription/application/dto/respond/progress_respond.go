package respond

// ProgressRespond 进度视图。吸收态（rejected/expired）冻结在进入吸收态前
// 到达的步骤，百分比随之冻结
type ProgressRespond struct {
	PrescriptionId      string `json:"prescription_id"`
	Status              string `json:"status"`
	StepIndex           int    `json:"step_index"`
	TotalSteps          int    `json:"total_steps"`
	Percentage          int    `json:"percentage"`
	EstimatedCompletion string `json:"estimated_completion,omitempty"`
	NextAction          string `json:"next_action"`
}
