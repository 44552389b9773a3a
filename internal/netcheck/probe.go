// Package netcheck decides whether the remote chat fallback is worth trying.
package netcheck

import (
	"context"
	log "log/slog"
	"time"

	"golang.org/x/net/proxy"
)

type Probe struct {
	addr    string
	timeout time.Duration
	dialer  proxy.ContextDialer
}

func NewProbe(addr string, timeout time.Duration, dialer proxy.ContextDialer) *Probe {
	if dialer == nil {
		dialer = proxy.Direct
	}
	return &Probe{addr: addr, timeout: timeout, dialer: dialer}
}

// Online dials addr once over TCP. There is no retry.
func (p *Probe) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		log.Debug("Connectivity probe failed", "addr", p.addr, "err", err)
		return false
	}
	conn.Close()
	return true
}
