package usecase

import "time"

type options struct {
	now func() time.Time
}

// Option tweaks use case construction. Tests use WithClock to pin time.
type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
