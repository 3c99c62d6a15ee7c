package services

import (
	"log"
	"time"

	"lottery-publish-system/utils"

	"github.com/go-co-op/gocron/v2"
)

// DrawScheduler owns the recurring lifecycle ticks: daily generation plus
// per-minute close, execute and publish scans. Every tick is idempotent, so
// overlapping or missed runs are harmless.
type DrawScheduler struct {
	Generator *DrawGeneratorService
	Closer    *DrawCloserService
	Executor  *DrawExecutorService
	Publisher *PublicationService

	sched gocron.Scheduler
}

func NewDrawScheduler(generator *DrawGeneratorService, closer *DrawCloserService,
	executor *DrawExecutorService, publisher *PublicationService) *DrawScheduler {
	return &DrawScheduler{
		Generator: generator,
		Closer:    closer,
		Executor:  executor,
		Publisher: publisher,
	}
}

func (s *DrawScheduler) Start() error {
	sched, err := gocron.NewScheduler(gocron.WithLocation(utils.DrawLocation()))
	if err != nil {
		return err
	}
	s.sched = sched

	// Shortly after midnight: materialize today's draws from templates.
	_, err = sched.NewJob(
		gocron.CronJob("5 0 * * *", false),
		gocron.NewTask(func() {
			if _, err := s.Generator.GenerateDailyDraws(time.Now()); err != nil {
				log.Printf("❌ [Scheduler] Daily generation failed: %v", err)
			}
		}),
	)
	if err != nil {
		return err
	}

	// Every minute: close draws entering the lead window.
	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() { s.Closer.CloseDueDraws(time.Now()) }),
	)
	if err != nil {
		return err
	}

	// Every minute: execute draws whose scheduled instant arrived.
	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() { s.Executor.ExecuteDueDraws(time.Now()) }),
	)
	if err != nil {
		return err
	}

	// Every minute: publish executed draws whose image pipeline finished.
	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() { s.Publisher.PublishPendingDraws() }),
	)
	if err != nil {
		return err
	}

	sched.Start()
	log.Println("⏰ Draw scheduler started (generate 00:05, lifecycle scans every minute)")
	return nil
}

func (s *DrawScheduler) Stop() {
	if s.sched != nil {
		if err := s.sched.Shutdown(); err != nil {
			log.Printf("⚠️ Scheduler shutdown: %v", err)
		}
	}
}
