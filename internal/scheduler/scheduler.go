package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"file-appender/internal/metrics"
	"file-appender/internal/runtime"
)

// DefaultSchedule проверяет агентов раз в час
const DefaultSchedule = "@hourly"

// StatusSource отдает текущее состояние всех агентов
type StatusSource interface {
	Statuses(ctx context.Context) []runtime.Status
}

// Scheduler управляет периодической проверкой работоспособности агентов
type Scheduler struct {
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	source   StatusSource
	schedule string
}

// New создает новый планировщик
func New(source StatusSource, schedule string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if schedule == "" {
		schedule = DefaultSchedule
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		ctx:      ctx,
		cancel:   cancel,
		source:   source,
		schedule: schedule,
	}
}

// Start запускает планировщик
func (s *Scheduler) Start() error {
	if s.source == nil {
		log.Println("⚠️ Status source not set, health checks disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		log.Println("🩺 Triggered agent health check")
		s.Check(s.ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("📅 Scheduler started - health checks on %q (UTC)", s.schedule)
	return nil
}

// Check проверяет всех агентов и возвращает число неработающих
func (s *Scheduler) Check(ctx context.Context) int {
	failing := 0
	for _, st := range s.source.Statuses(ctx) {
		if st.Disabled {
			continue
		}
		metrics.SetWorking(st.ID, st.Working)
		if st.Working {
			continue
		}
		failing++
		switch {
		case st.LastReceiveAt == nil:
			log.Printf("⚠️ Agent %s has not received any events yet", st.ID)
		case st.RecentErrors:
			log.Printf("⚠️ Agent %s has recent errors (last at %s)", st.ID, st.LastErrorLogAt.Format(time.RFC3339))
		default:
			log.Printf("⚠️ Agent %s is not working, last receive at %s", st.ID, st.LastReceiveAt.Format(time.RFC3339))
		}
	}
	return failing
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

// IsRunning проверяет, запущен ли планировщик
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
