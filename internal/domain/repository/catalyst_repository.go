package repository

import (
	"context"

	"github.com/optimization-report/internal/domain"
)

// SceneRepository - каталог активных сцен
type SceneRepository interface {
	// FetchScenes возвращает сцены, занимающие переданные указатели "x,y"
	FetchScenes(ctx context.Context, pointers []string) ([]domain.Scene, error)
}

// WorldsRepository - индекс именованных миров
type WorldsRepository interface {
	FetchWorlds(ctx context.Context) ([]domain.World, error)
}
