package scheduler

import (
	"testing"
	"time"
)

func TestStaggeredScheduleFiresStaggerThenInterval(t *testing.T) {
	sched := &staggeredSchedule{
		interval: time.Hour,
		stagger:  15 * time.Minute,
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := sched.Next(base)
	if want := base.Add(15 * time.Minute); !first.Equal(want) {
		t.Errorf("first Next() = %v, want %v", first, want)
	}

	second := sched.Next(first)
	if want := first.Add(time.Hour); !second.Equal(want) {
		t.Errorf("second Next() = %v, want %v", second, want)
	}

	third := sched.Next(second)
	if want := second.Add(time.Hour); !third.Equal(want) {
		t.Errorf("third Next() = %v, want %v", third, want)
	}
}

func TestStaggeredScheduleZeroStaggerFiresImmediatelyAtInterval(t *testing.T) {
	sched := &staggeredSchedule{interval: 30 * time.Minute}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := sched.Next(base)
	if !first.Equal(base) {
		t.Errorf("first Next() with zero stagger = %v, want %v", first, base)
	}

	second := sched.Next(first)
	if want := first.Add(30 * time.Minute); !second.Equal(want) {
		t.Errorf("second Next() = %v, want %v", second, want)
	}
}

func TestRegisterDistributesStaggerAcrossSources(t *testing.T) {
	s := New(nil, nil)

	schedules := []SourceSchedule{
		{Source: "zambo-times", Interval: time.Hour},
		{Source: "inquirer", Interval: time.Hour},
		{Source: "gma", Interval: time.Hour},
	}
	s.Register(schedules)

	entries := s.cron.Entries()
	if len(entries) != len(schedules) {
		t.Fatalf("got %d cron entries, want %d", len(entries), len(schedules))
	}

	// Sources are registered sorted by name (gma, inquirer, zambo-times),
	// each offset by index * (1h / 3).
	wantStagger := []time.Duration{0, 20 * time.Minute, 40 * time.Minute}
	for i, e := range entries {
		sched, ok := e.Schedule.(*staggeredSchedule)
		if !ok {
			t.Fatalf("entry %d schedule is %T, want *staggeredSchedule", i, e.Schedule)
		}
		if sched.stagger != wantStagger[i] {
			t.Errorf("entry %d stagger = %v, want %v", i, sched.stagger, wantStagger[i])
		}
	}
}
