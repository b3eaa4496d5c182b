package handlers

import (
	"context"

	"licitaciones/models"
)

type StorageInterface interface {
	CreateLicitacion(ctx context.Context, l *models.Licitacion) error
	GetLicitacion(ctx context.Context, id int64) (*models.Licitacion, error)
	GetLicitaciones(ctx context.Context, estado string, limit, offset int) ([]*models.Licitacion, error)
	UpdateLicitacion(ctx context.Context, l *models.Licitacion) error
	DeleteLicitacion(ctx context.Context, id int64) error
}
