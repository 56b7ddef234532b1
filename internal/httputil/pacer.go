// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// Pacer applies a fixed politeness delay before each outbound request to one
// upstream. Waits are serialized: concurrent callers sharing a Pacer are
// spaced at least one delay apart. A nil Pacer or a zero delay never blocks.
type Pacer struct {
	delay time.Duration
	mu    sync.Mutex
}

// NewPacer returns a Pacer that sleeps for delay before every request.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay}
}

// Delay returns the configured politeness delay.
func (p *Pacer) Delay() time.Duration {
	if p == nil {
		return 0
	}
	return p.delay
}

// Wait blocks for the politeness delay or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.delay <= 0 {
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PacerSet hands out one Pacer per upstream host so that requests to the
// same host are paced together while different hosts proceed independently.
type PacerSet struct {
	delay  time.Duration
	mu     sync.Mutex
	pacers map[string]*Pacer
}

// NewPacerSet returns an empty set whose pacers all use delay.
func NewPacerSet(delay time.Duration) *PacerSet {
	return &PacerSet{delay: delay, pacers: make(map[string]*Pacer)}
}

// ForURL returns the Pacer for the host of rawURL. Unparseable URLs share
// a single pacer keyed by the empty host.
func (s *PacerSet) ForURL(rawURL string) *Pacer {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	return s.For(host)
}

// For returns the Pacer registered under key, creating it on first use.
func (s *PacerSet) For(key string) *Pacer {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pacers[key]
	if !ok {
		p = NewPacer(s.delay)
		s.pacers[key] = p
	}
	return p
}
