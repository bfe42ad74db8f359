// Package grid сводит сцены каталога в плотную сетку участков,
// считает по ней статистику и упаковывает в компактный артефакт.
package grid

import (
	"github.com/optimization-report/internal/domain"
)

// ReconcileReport - счётчики аномалий, замеченных при сверке
type ReconcileReport struct {
	Scenes     int `json:"scenes"`
	Duplicates int `json:"duplicates"`
	// Conflicts - участки, на которые претендовала другая сцена (побеждает последняя)
	Conflicts  int `json:"conflicts"`
	OutOfRange int `json:"outOfRange"`
	Malformed  int `json:"malformed"`
}

// NewWorld возвращает сетку, в которой каждый участок пуст
func NewWorld(bounds domain.GridBounds) *domain.WorldData {
	lands := make([]domain.Land, bounds.Size())
	for i := range lands {
		c := bounds.At(i)
		lands[i] = domain.Land{X: c.X, Y: c.Y}
	}
	return &domain.WorldData{
		Bounds: bounds,
		Lands:  lands,
		Scenes: make(map[string]*domain.Scene),
	}
}

// Reconcile накладывает сцены на сетку.
//
// Сцены с одинаковым id схлопываются: остаётся последняя копия на позиции первой.
// Указатели вне сетки и нечисловые указатели пропускаются. Если участок уже
// занят другой сценой, его забирает сцена, обработанная позже.
// Входной срез не изменяется.
func Reconcile(bounds domain.GridBounds, scenes []domain.Scene) (*domain.WorldData, ReconcileReport) {
	world := NewWorld(bounds)
	var report ReconcileReport

	for _, s := range scenes {
		if s.ID == "" {
			continue
		}
		clone := s.Clone()
		if _, seen := world.Scenes[s.ID]; seen {
			report.Duplicates++
		} else {
			world.SceneOrder = append(world.SceneOrder, s.ID)
		}
		world.Scenes[s.ID] = &clone
	}
	report.Scenes = len(world.SceneOrder)

	for _, id := range world.SceneOrder {
		scene := world.Scenes[id]
		for _, p := range scene.Pointers {
			c, err := domain.ParsePointer(p)
			if err != nil {
				report.Malformed++
				continue
			}
			if !bounds.Contains(c) {
				report.OutOfRange++
				continue
			}

			land := &world.Lands[bounds.Index(c)]
			if land.SceneID != "" && land.SceneID != id {
				report.Conflicts++
			}
			land.SceneID = id
			land.HasOptimizedAssets = scene.HasOptimizedAssets
			land.OptimizationReport = scene.OptimizationReport
		}
	}

	return world, report
}
