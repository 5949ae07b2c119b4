// Package scheduler runs the price evolution tick on a fixed period.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"DogCoinBot/internal/market"
	"DogCoinBot/internal/metrics"
)

// Scheduler manages the periodic price tick.
type Scheduler struct {
	Cron    *cron.Cron
	Engine  *market.Engine
	Quote   *market.Quote
	Metrics *metrics.Collector
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, eng *market.Engine, quote *market.Quote, m *metrics.Collector) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Engine:  eng,
		Quote:   quote,
		Metrics: m,
		Ctx:     ctx,
	}
}

// Register registers the price tick with the given cron spec.
func (s *Scheduler) Register(tickCron string) error {
	if _, err := s.Cron.AddFunc(tickCron, s.tick); err != nil {
		return fmt.Errorf("register price tick: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunTickNow executes the price tick immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunTickNow() {
	s.tick()
}

// tick is fire-and-forget: a failed tick is logged and the next period
// proceeds regardless.
func (s *Scheduler) tick() {
	if s.Ctx.Err() != nil {
		return
	}
	if err := s.Engine.Tick(); err != nil {
		log.Printf("[ERROR] price tick: %v", err)
		return
	}
	price, _ := s.Quote.Price().Float64()
	s.Metrics.PriceTick(price)
}
