package infra

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// probeCacheTTL bounds how often Online actually pings the store. Writes in a
// burst (a sale commit issues several) share one reachability answer.
const probeCacheTTL = 5 * time.Second

// Probe tracks reachability of the remote store. Connectivity is checked at
// specific gate points (gateway writes, shift start, drain ticks), not
// continuously.
type Probe struct {
	client  *mongo.Client
	timeout time.Duration

	mu        sync.Mutex
	online    bool
	checkedAt time.Time
}

func NewProbe(client *mongo.Client, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Probe{client: client, timeout: timeout, online: true}
}

// Online reports whether the remote store is currently reachable. The result
// is cached briefly; a failed ping flips the state until the next check.
func (p *Probe) Online(ctx context.Context) bool {
	p.mu.Lock()
	if time.Since(p.checkedAt) < probeCacheTTL {
		online := p.online
		p.mu.Unlock()
		return online
	}
	p.mu.Unlock()

	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err := p.client.Ping(pingCtx, readpref.Primary())

	p.mu.Lock()
	defer p.mu.Unlock()
	wasOnline := p.online
	p.online = err == nil
	p.checkedAt = time.Now()
	if wasOnline != p.online {
		log.Info().Bool("online", p.online).Msg("probe: connectivity changed")
	}
	return p.online
}

// MarkOffline records a failed remote write so subsequent calls within the
// cache window short-circuit to the queue.
func (p *Probe) MarkOffline() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.online {
		log.Info().Bool("online", false).Msg("probe: connectivity changed")
	}
	p.online = false
	p.checkedAt = time.Now()
}
