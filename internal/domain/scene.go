package domain

import "maps"

// OptimizationReport - отчёт оптимизатора по сцене
type OptimizationReport struct {
	SceneID   string         `json:"sceneId"`
	Success   bool           `json:"success"`
	Timestamp string         `json:"timestamp,omitempty"`
	Error     string         `json:"error,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Scene - сцена из каталога контента
type Scene struct {
	ID                 string              `json:"id"`
	Pointers           []string            `json:"pointers"`
	HasOptimizedAssets bool                `json:"hasOptimizedAssets"`
	OptimizationReport *OptimizationReport `json:"optimizationReport,omitempty"`
}

// Clone возвращает копию сцены, не разделяющую память с оригиналом
func (s Scene) Clone() Scene {
	out := s
	if s.Pointers != nil {
		out.Pointers = append([]string(nil), s.Pointers...)
	}
	if s.OptimizationReport != nil {
		r := *s.OptimizationReport
		if r.Details != nil {
			r.Details = maps.Clone(r.Details)
		}
		out.OptimizationReport = &r
	}
	return out
}

// Land - один участок сетки. Пустой SceneID означает свободный участок.
type Land struct {
	X                  int                 `json:"x"`
	Y                  int                 `json:"y"`
	SceneID            string              `json:"sceneId,omitempty"`
	HasOptimizedAssets bool                `json:"hasOptimizedAssets"`
	OptimizationReport *OptimizationReport `json:"optimizationReport,omitempty"`
}

func (l Land) Occupied() bool {
	return l.SceneID != ""
}

func (l Land) Coordinate() Coordinate {
	return Coordinate{X: l.X, Y: l.Y}
}

// WorldData - полное состояние сетки после сверки
type WorldData struct {
	Bounds GridBounds
	// Lands индексируется через Bounds.Index
	Lands  []Land
	Scenes map[string]*Scene
	// SceneOrder - порядок первого появления сцен
	SceneOrder []string
}

// Land возвращает участок по координате; false если координата вне сетки
func (w *WorldData) Land(c Coordinate) (Land, bool) {
	if !w.Bounds.Contains(c) {
		return Land{}, false
	}
	return w.Lands[w.Bounds.Index(c)], true
}
