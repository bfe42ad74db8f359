package grid

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/optimization-report/internal/domain"
)

// goldenAngle разводит соседние индексы по кругу оттенков
const goldenAngle = 137.5

// Compress упаковывает занятые участки в кортежи и назначает индексы цветов
// в порядке первого появления сцен
func Compress(world *domain.WorldData, stats domain.Stats, generatedAt time.Time) *domain.CompressedReport {
	report := &domain.CompressedReport{
		Lands:       make([]domain.CompressedLand, 0, stats.OccupiedLands),
		Stats:       stats,
		Colors:      make(map[string]int, len(world.SceneOrder)),
		GeneratedAt: generatedAt.UnixMilli(),
	}

	for i := range world.Lands {
		land := &world.Lands[i]
		if !land.Occupied() {
			continue
		}
		cl := domain.CompressedLand{
			X:         land.X,
			Y:         land.Y,
			SceneID:   land.SceneID,
			Optimized: land.HasOptimizedAssets,
		}
		if land.OptimizationReport != nil {
			cl.HasReport = true
			cl.ReportSuccess = land.OptimizationReport.Success
		}
		report.Lands = append(report.Lands, cl)
	}

	for _, id := range world.SceneOrder {
		if _, ok := report.Colors[id]; !ok {
			report.Colors[id] = len(report.Colors)
		}
	}

	return report
}

// CompressWorlds переводит статусы миров в кортежи
func CompressWorlds(worlds []domain.WorldStatus) []domain.CompressedWorld {
	out := make([]domain.CompressedWorld, 0, len(worlds))
	for _, w := range worlds {
		out = append(out, domain.CompressedWorld{
			Name:      w.Name,
			SceneID:   w.SceneID,
			Title:     w.Title,
			Thumbnail: w.Thumbnail,
			Parcels:   w.Parcels,
			Optimized: w.HasOptimizedAssets,
		})
	}
	return out
}

// Decompress восстанавливает сетку из артефакта.
// Участки, которых нет в l, остаются пустыми. От отчёта сохраняется только success.
func Decompress(bounds domain.GridBounds, report *domain.CompressedReport) *domain.WorldData {
	world := NewWorld(bounds)

	for _, cl := range report.Lands {
		c := domain.Coordinate{X: cl.X, Y: cl.Y}
		if !bounds.Contains(c) || cl.SceneID == "" {
			continue
		}

		scene, ok := world.Scenes[cl.SceneID]
		if !ok {
			scene = &domain.Scene{ID: cl.SceneID, HasOptimizedAssets: cl.Optimized}
			if cl.HasReport {
				scene.OptimizationReport = &domain.OptimizationReport{SceneID: cl.SceneID, Success: cl.ReportSuccess}
			}
			world.Scenes[cl.SceneID] = scene
			world.SceneOrder = append(world.SceneOrder, cl.SceneID)
		}
		scene.Pointers = append(scene.Pointers, c.Pointer())

		land := &world.Lands[bounds.Index(c)]
		land.SceneID = cl.SceneID
		land.HasOptimizedAssets = cl.Optimized
		land.OptimizationReport = scene.OptimizationReport
	}

	// порядок сцен берём из индексов цветов, если они есть
	if len(report.Colors) > 0 {
		sort.SliceStable(world.SceneOrder, func(i, j int) bool {
			ci, iok := report.Colors[world.SceneOrder[i]]
			cj, jok := report.Colors[world.SceneOrder[j]]
			if iok != jok {
				return iok
			}
			return ci < cj
		})
	}

	return world
}

// SceneColor возвращает цвет сцены по её индексу
func SceneColor(index int) string {
	hue := math.Mod(float64(index)*goldenAngle, 360)
	return "hsl(" + strconv.FormatFloat(hue, 'f', -1, 64) + ", 70%, 50%)"
}
