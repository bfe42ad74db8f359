package domain

import "time"

// Stream names
const (
	StreamPipelineEvents = "stream:pipeline:events"
)

// Типы событий пайплайна
const (
	EventRunStarted    = "run_started"
	EventProgress      = "progress"
	EventSceneComplete = "scene_complete"
	EventRunFinished   = "run_finished"
)

// Стадии пайплайна
const (
	StageFetch   = "fetch"
	StageProbe   = "probe"
	StageReports = "reports"
	StageWorlds  = "worlds"
	StagePublish = "publish"
)

// PipelineEvent - событие прогресса, публикуемое в StreamPipelineEvents
type PipelineEvent struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	Stage      string    `json:"stage,omitempty"`
	Done       int       `json:"done,omitempty"`
	Total      int       `json:"total,omitempty"`
	Percent    int       `json:"percent,omitempty"`
	SceneID    string    `json:"scene_id,omitempty"`
	Success    bool      `json:"success,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	Timestamp  time.Time `json:"timestamp"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
