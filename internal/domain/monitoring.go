package domain

import "time"

const (
	// ConsumerOfflineAfter - после этого интервала без heartbeat потребитель считается offline
	ConsumerOfflineAfter = 30 * time.Second
	// ConsumerExpireAfter - после этого интервала потребитель удаляется
	ConsumerExpireAfter = 5 * time.Minute

	QueueMetricsRetention   = 15000
	QueueHistoryWindow      = 7 * 24 * time.Hour
	ProcessHistoryRetention = 24 * time.Hour
	RecentHistoryLimit      = 20
	RankingLimit            = 20

	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"

	ConsumerStatusOffline    = "offline"
	ConsumerStatusIdle       = "idle"
	ConsumerStatusProcessing = "processing"
)

// Heartbeat - сигнал жизни потребителя пайплайна
type Heartbeat struct {
	ConsumerID      string     `json:"consumerId" validate:"required,max=36"`
	ProcessMethod   string     `json:"processMethod" validate:"required,max=50"`
	Status          string     `json:"status" validate:"required,max=20"`
	CurrentSceneID  string     `json:"currentSceneId,omitempty" validate:"max=255"`
	CurrentStep     string     `json:"currentStep,omitempty" validate:"max=100"`
	ProgressPercent int        `json:"progressPercent" validate:"gte=0,lte=100"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	IsPriority      bool       `json:"isPriority"`
}

// JobCompletion - завершение обработки одной сцены
type JobCompletion struct {
	ConsumerID    string    `json:"consumerId" validate:"required,max=36"`
	SceneID       string    `json:"sceneId" validate:"required,max=255"`
	ProcessMethod string    `json:"processMethod" validate:"required,max=50"`
	Status        string    `json:"status" validate:"required,max=20"`
	StartedAt     time.Time `json:"startedAt"`
	CompletedAt   time.Time `json:"completedAt"`
	DurationMs    int64     `json:"durationMs" validate:"required,gt=0"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	IsPriority    bool      `json:"isPriority"`
}

func (j JobCompletion) Succeeded() bool {
	return j.Status == JobStatusSuccess
}

// Consumer - строка pipeline_consumers
type Consumer struct {
	ID                  string     `json:"id" db:"id"`
	ProcessMethod       string     `json:"processMethod" db:"process_method"`
	Status              string     `json:"status" db:"status"`
	CurrentSceneID      *string    `json:"currentSceneId" db:"current_scene_id"`
	CurrentStep         *string    `json:"currentStep" db:"current_step"`
	ProgressPercent     int        `json:"progressPercent" db:"progress_percent"`
	StartedAt           *time.Time `json:"startedAt" db:"started_at"`
	LastHeartbeat       time.Time  `json:"lastHeartbeat" db:"last_heartbeat"`
	JobsCompleted       int        `json:"jobsCompleted" db:"jobs_completed"`
	JobsFailed          int        `json:"jobsFailed" db:"jobs_failed"`
	AvgProcessingTimeMs int64      `json:"avgProcessingTimeMs" db:"avg_processing_time_ms"`
	IsPriority          bool       `json:"isPriority" db:"is_priority"`
	LastJobStatus       *string    `json:"lastJobStatus" db:"last_job_status"`
}

// ProcessRecord - строка pipeline_process_history
type ProcessRecord struct {
	ConsumerID    string    `json:"consumerId" db:"consumer_id"`
	SceneID       string    `json:"sceneId" db:"scene_id"`
	ProcessMethod string    `json:"processMethod" db:"process_method"`
	Status        string    `json:"status" db:"status"`
	DurationMs    int64     `json:"durationMs" db:"duration_ms"`
	CompletedAt   time.Time `json:"completedAt" db:"completed_at"`
}

type RankingEntry struct {
	Rank int `json:"rank"`
	ProcessRecord
}

// QueueSample - замер глубины очереди
type QueueSample struct {
	QueueDepth int       `json:"queueDepth" db:"queue_depth"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

// MonitoringStatus - агрегированное состояние для дашборда
type MonitoringStatus struct {
	Queue             *QueueSample    `json:"queue"`
	QueueHistory      []QueueSample   `json:"queueHistory"`
	Consumers         []Consumer      `json:"consumers"`
	RecentHistory     []ProcessRecord `json:"recentHistory"`
	ProcessedLastHour int             `json:"processedLastHour"`
}

// RunningAverage пересчитывает среднее время обработки после ещё одной задачи
func RunningAverage(avg int64, jobs int, duration int64) int64 {
	if jobs <= 0 {
		return duration
	}
	n := int64(jobs)
	// округление половины вверх
	return (avg*n + duration + (n+1)/2) / (n + 1)
}
