package recommendation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/travel-planner-api/internal/models"
)

type recorder interface {
	RecordRecommendation(cities int, duration time.Duration)
}

type Service struct {
	catalog cityLister
	log     zerolog.Logger
	m       recorder
}

func NewService(catalog cityLister, logger zerolog.Logger, m recorder) *Service {
	return &Service{
		catalog: catalog,
		log:     logger.With().Str("component", "RecommendationService").Logger(),
		m:       m,
	}
}

func (s *Service) Recommend(ctx context.Context, budget int) []models.Recommendation {
	start := time.Now()
	result := Recommend(budget, s.catalog)
	dur := time.Since(start)

	s.m.RecordRecommendation(len(result), dur)
	s.log.Debug().Ctx(ctx).
		Int("budget", budget).
		Int("cities", len(result)).
		Dur("duration", dur).
		Msg("recommendations computed")

	return result
}
