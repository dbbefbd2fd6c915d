package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/cache"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/metrics"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/repositories"
)

// Board is the dashboard snapshot: per-status order counts, the agenda
// of upcoming scheduled jobs and the billed revenue of the last 30 days.
type Board struct {
	StatusCounts map[string]int64      `json:"status_counts"`
	Agenda       []models.ServiceOrder `json:"agenda"`
	RevenueCents int64                 `json:"revenue_cents"`
	OpenTickets  int64                 `json:"open_tickets"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// DashboardService assembles the dashboard widgets
type DashboardService struct {
	orderRepo   repositories.OrderRepository
	ticketRepo  repositories.TicketRepository
	revenueRepo repositories.RevenueRepository
	cache       *cache.RedisCache
	guard       *realtime.RefreshGuard
	hub         *realtime.Hub
	metrics     *metrics.Metrics
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	db *gorm.DB,
	readOnlyDB *gorm.DB,
	redisCache *cache.RedisCache,
	hub *realtime.Hub,
	m *metrics.Metrics,
	cacheTTL time.Duration,
) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &DashboardService{
		orderRepo:   repositories.NewOrderRepository(db, readOnlyDB),
		ticketRepo:  repositories.NewTicketRepository(db, readOnlyDB),
		revenueRepo: repositories.NewRevenueRepository(db, readOnlyDB),
		cache:       redisCache,
		guard:       realtime.NewRefreshGuard(),
		hub:         hub,
		metrics:     m,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

// Board returns the dashboard snapshot, served from cache when fresh.
func (s *DashboardService) Board(ctx context.Context) (*Board, error) {
	if s.cache != nil {
		var cached Board
		if err := s.cache.Get(ctx, cache.BoardCacheKey(), &cached); err == nil {
			return &cached, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the board. Overlapping refreshes can finish out of
// order; only the newest one is allowed to overwrite the cache, stale
// results are computed and then discarded.
func (s *DashboardService) Refresh(ctx context.Context) (*Board, error) {
	gen := s.guard.Begin()
	start := s.now()

	board, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTimer("dashboard_refresh", s.now().Sub(start).Milliseconds())

	if !s.guard.Commit(gen) {
		log.Debug().Uint64("generation", gen).Msg("Stale dashboard refresh discarded")
		return board, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.BoardCacheKey(), board, s.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache dashboard board")
		}
	}
	return board, nil
}

func (s *DashboardService) build(ctx context.Context) (*Board, error) {
	now := s.now()

	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build dashboard")
	}

	agenda, err := s.orderRepo.ListScheduledBetween(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build agenda")
	}

	revenue, err := s.revenueRepo.TotalBilled(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, errors.Wrap(err, "failed to sum revenue")
	}

	openTickets := int64(0)
	tickets, err := s.ticketRepo.List(ctx, models.TicketOpen, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count open tickets for dashboard")
	} else {
		openTickets = int64(len(tickets))
	}

	return &Board{
		StatusCounts: counts,
		Agenda:       agenda,
		RevenueCents: revenue,
		OpenTickets:  openTickets,
		GeneratedAt:  now,
	}, nil
}

// KPIs exposes the in-process counters backing the KPI panel.
func (s *DashboardService) KPIs() map[string]int64 {
	return s.metrics.GetCounters()
}
