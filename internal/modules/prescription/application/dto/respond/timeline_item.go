package respond

// TimelineItem 时间线条目。Duration 为到下一条目的分钟数，最后一条为空
type TimelineItem struct {
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp"`
	ActorId         string `json:"actor_id,omitempty"`
	Notes           string `json:"notes,omitempty"`
	DurationMinutes *int64 `json:"duration_minutes,omitempty"`
	IsCurrent       bool   `json:"is_current"`
}
