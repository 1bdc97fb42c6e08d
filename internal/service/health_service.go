package service

import (
	"context"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
)

type HealthService interface {
	Ping(ctx context.Context) (time.Time, error)
}

type healthService struct {
	store repository.Store
}

func NewHealthService(store repository.Store) HealthService {
	return &healthService{store: store}
}

func (s *healthService) Ping(ctx context.Context) (time.Time, error) {
	return s.store.Ping(ctx)
}
