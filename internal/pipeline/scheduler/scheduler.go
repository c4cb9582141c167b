// Package scheduler dispatches one scrape task per configured source on
// its own interval, staggering the first run of each source so they don't
// all wake the browser pool in the same instant.
package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"newsdesk/internal/pipeline/queue"
	"newsdesk/pkg/logger"
)

// Scheduler owns one cron entry per source.
type Scheduler struct {
	cron  *cron.Cron
	queue *queue.Queue
	log   *logger.Logger
}

func New(q *queue.Queue, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		queue: q,
		log:   log,
	}
}

// SourceSchedule is one source's dispatch interval.
type SourceSchedule struct {
	Source   string
	Interval time.Duration
}

// Register schedules one entry per source. Each source's first dispatch
// is staggered by index*(interval/len(sources)) from the others, then
// repeats every Interval.
func (s *Scheduler) Register(sources []SourceSchedule) {
	sort.Slice(sources, func(i, j int) bool { return sources[i].Source < sources[j].Source })

	n := len(sources)
	for i, sched := range sources {
		source := sched.Source
		interval := sched.Interval
		var stagger time.Duration
		if n > 0 {
			stagger = interval / time.Duration(n) * time.Duration(i)
		}

		s.cron.Schedule(&staggeredSchedule{interval: interval, stagger: stagger}, cron.FuncJob(func() {
			s.dispatch(source)
		}))
	}
}

func (s *Scheduler) dispatch(source string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.queue.PublishScrape(ctx, queue.ScrapeMessage{Source: source}); err != nil {
		s.log.Error("failed to dispatch scheduled scrape", "source", source, "error", err.Error())
		return
	}
	s.log.Info("dispatched scheduled scrape", "source", source)
}

func (s *Scheduler) Start() { s.cron.Start() }
func (s *Scheduler) Stop()  { <-s.cron.Stop().Done() }

// staggeredSchedule is a cron.Schedule that fires stagger after the first
// moment it's asked, then every interval thereafter. It is stateful (has
// it fired once yet?) so it must always be registered by pointer.
type staggeredSchedule struct {
	interval time.Duration
	stagger  time.Duration
	fired    bool
}

func (s *staggeredSchedule) Next(t time.Time) time.Time {
	if !s.fired {
		s.fired = true
		return t.Add(s.stagger)
	}
	return t.Add(s.interval)
}
