package race

import (
	"context"
	"strconv"
	"time"

	"github.com/zucenko/mazerace/model"
)

const FRAME = 16 * time.Millisecond

// Driver clocks a session in real time: a short countdown, then one Tick
// per frame until the race is over.
type Driver struct {
	Session *Session
	Frame   time.Duration
	// Countdown beeps, Beat apart, then the start cue and a Settle pause.
	Countdown int
	Beat      time.Duration
	Settle    time.Duration
	Clock     func() time.Time
}

func NewDriver(s *Session) *Driver {
	return &Driver{
		Session:   s,
		Frame:     FRAME,
		Countdown: 3,
		Beat:      time.Second,
		Settle:    500 * time.Millisecond,
		Clock:     time.Now,
	}
}

// Run blocks until the race completes or ctx is cancelled. The session is
// stopped either way; cancellation returns ctx.Err().
func (d *Driver) Run(ctx context.Context) error {
	defer d.Session.Stop()

	if err := d.countdown(ctx); err != nil {
		return err
	}
	d.Session.Start(d.Clock())

	ticker := time.NewTicker(d.Frame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.Session.log.Infof("driver cancelled: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if res := d.Session.Tick(d.Clock()); !res.Running {
				return nil
			}
		}
	}
}

func (d *Driver) countdown(ctx context.Context) error {
	for i := d.Countdown; i > 0; i-- {
		d.Session.Cue(model.CUE_COUNTDOWN)
		d.Session.Announce(strconv.Itoa(i))
		if err := sleep(ctx, d.Beat); err != nil {
			return err
		}
	}
	d.Session.Cue(model.CUE_START)
	d.Session.Announce("GO!")
	return sleep(ctx, d.Settle)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
