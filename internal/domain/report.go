package domain

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// CompressedLand - занятый участок в компактном формате
// [x, y, sceneId, optimized] или [x, y, sceneId, optimized, reportSuccess].
// Пятый элемент присутствует только если у сцены есть отчёт.
type CompressedLand struct {
	X             int
	Y             int
	SceneID       string
	Optimized     bool
	HasReport     bool
	ReportSuccess bool
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (l CompressedLand) MarshalJSON() ([]byte, error) {
	if l.HasReport {
		return json.Marshal([]any{l.X, l.Y, l.SceneID, flag(l.Optimized), flag(l.ReportSuccess)})
	}
	return json.Marshal([]any{l.X, l.Y, l.SceneID, flag(l.Optimized)})
}

func (l *CompressedLand) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("compressed land: %w", err)
	}
	if len(raw) != 4 && len(raw) != 5 {
		return fmt.Errorf("compressed land: expected 4 or 5 elements, got %d", len(raw))
	}

	var optimized int
	out := CompressedLand{}
	if err := json.Unmarshal(raw[0], &out.X); err != nil {
		return fmt.Errorf("compressed land x: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.Y); err != nil {
		return fmt.Errorf("compressed land y: %w", err)
	}
	if err := json.Unmarshal(raw[2], &out.SceneID); err != nil {
		return fmt.Errorf("compressed land scene id: %w", err)
	}
	if err := json.Unmarshal(raw[3], &optimized); err != nil {
		return fmt.Errorf("compressed land optimized flag: %w", err)
	}
	out.Optimized = optimized == 1

	if len(raw) == 5 {
		var success int
		if err := json.Unmarshal(raw[4], &success); err != nil {
			return fmt.Errorf("compressed land report flag: %w", err)
		}
		out.HasReport = true
		out.ReportSuccess = success == 1
	}

	*l = out
	return nil
}

// CompressedWorld - [name, sceneId, title, thumbnail, parcels, optimized]
type CompressedWorld struct {
	Name      string
	SceneID   string
	Title     string
	Thumbnail string
	Parcels   int
	Optimized bool
}

func (w CompressedWorld) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{w.Name, w.SceneID, w.Title, w.Thumbnail, w.Parcels, flag(w.Optimized)})
}

func (w *CompressedWorld) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("compressed world: %w", err)
	}
	if len(raw) != 6 {
		return fmt.Errorf("compressed world: expected 6 elements, got %d", len(raw))
	}

	var optimized int
	out := CompressedWorld{}
	targets := []any{&out.Name, &out.SceneID, &out.Title, &out.Thumbnail, &out.Parcels, &optimized}
	for i, target := range targets {
		if err := json.Unmarshal(raw[i], target); err != nil {
			return fmt.Errorf("compressed world element %d: %w", i, err)
		}
	}
	out.Optimized = optimized == 1

	*w = out
	return nil
}

// CompressedReport - итоговый артефакт, который читает карта
type CompressedReport struct {
	Lands       []CompressedLand  `json:"l"`
	Stats       Stats             `json:"s"`
	Colors      map[string]int    `json:"c"`
	GeneratedAt int64             `json:"g"`
	Worlds      []CompressedWorld `json:"w,omitempty"`
	WorldsStats *WorldsStats      `json:"ws,omitempty"`
}

// GeneratedTime возвращает время генерации из epoch millis
func (r *CompressedReport) GeneratedTime() time.Time {
	return time.UnixMilli(r.GeneratedAt).UTC()
}

// ReportMetadata - содержимое metadata.json рядом с артефактом
type ReportMetadata struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Stats       Stats     `json:"stats"`
	TotalLands  int       `json:"totalLands"`
	ReportURL   string    `json:"reportUrl"`
	HistoryURL  string    `json:"historyUrl"`
}

// Object - объект для записи в хранилище артефактов
type Object struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// RunResult - результат одного запуска пайплайна
type RunResult struct {
	RunID       string            `json:"runId"`
	Report      *CompressedReport `json:"-"`
	Stats       Stats             `json:"stats"`
	Conflicts   int               `json:"conflicts"`
	OutOfRange  int               `json:"outOfRange"`
	Malformed   int               `json:"malformed"`
	SnapshotKey string            `json:"snapshotKey,omitempty"`
	Duration    time.Duration     `json:"duration"`
	Published   bool              `json:"published"`
}
