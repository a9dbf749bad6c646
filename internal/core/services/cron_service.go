package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"cryptex-console/internal/config"
)

// CronService owns the background schedule for the console: currently
// a single job refreshing the market snapshot cache so dashboards read
// warm data.
type CronService struct {
	cron   *cron.Cron
	market *MarketService
}

// NewCronService creates a new cron service
func NewCronService(market *MarketService) *CronService {
	return &CronService{
		cron:   cron.New(),
		market: market,
	}
}

// Start registers jobs and starts the scheduler.
func (s *CronService) Start() error {
	spec := config.AppConfig.Market.RefreshSpec
	_, err := s.cron.AddFunc(spec, func() {
		if apiErr := s.market.RefreshSnapshot(context.Background()); apiErr != nil {
			log.Printf("⚠️ Market snapshot refresh failed: %v", apiErr)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("🚀 Cron started (market refresh %s)", spec)
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron stopped")
}
