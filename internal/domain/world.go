package domain

// WorldScene - сцена, развёрнутая в именованном мире
type WorldScene struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Thumbnail string   `json:"thumbnail"`
	Pointers  []string `json:"pointers"`
}

// World - запись индекса миров
type World struct {
	Name   string       `json:"name"`
	Scenes []WorldScene `json:"scenes"`
}

// WorldStatus - мир с признаком оптимизации основной сцены
type WorldStatus struct {
	Name               string `json:"name"`
	SceneID            string `json:"sceneId"`
	Title              string `json:"title"`
	Thumbnail          string `json:"thumbnail,omitempty"`
	Parcels            int    `json:"parcels"`
	HasOptimizedAssets bool   `json:"hasOptimizedAssets"`
}

type WorldsStats struct {
	TotalWorlds        int     `json:"totalWorlds"`
	OptimizedWorlds    int     `json:"optimizedWorlds"`
	NotOptimizedWorlds int     `json:"notOptimizedWorlds"`
	// Процент округлён до одного знака
	OptimizationPercentage float64 `json:"optimizationPercentage"`
}
