package capture

import (
	"context"
	"errors"
	"sync"
)

var ErrAlreadyResolved = errors.New("capture already resolved")

type result struct {
	photo *Photo
	err   error
}

// Pending is the caller's side of one capture request.
type Pending struct {
	ch chan result
}

// Resolver is the camera flow's side of one capture request. It can be
// resolved exactly once.
type Resolver struct {
	once sync.Once
	ch   chan result
}

// Request opens a capture hand-off between a screen that needs a photo and
// the flow that takes it.
func Request() (*Pending, *Resolver) {
	ch := make(chan result, 1)
	return &Pending{ch: ch}, &Resolver{ch: ch}
}

func (r *Resolver) send(res result) error {
	sent := false
	r.once.Do(func() {
		r.ch <- res
		sent = true
	})
	if !sent {
		return ErrAlreadyResolved
	}
	return nil
}

func (r *Resolver) Resolve(photo *Photo) error {
	return r.send(result{photo: photo})
}

func (r *Resolver) Reject(err error) error {
	if err == nil {
		err = context.Canceled
	}
	return r.send(result{err: err})
}

// Await blocks until the photo arrives or ctx ends.
func (p *Pending) Await(ctx context.Context) (*Photo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-p.ch:
		return res.photo, res.err
	}
}
