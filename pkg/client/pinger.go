package client

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"go.minekube.com/mcwire/pkg/internal/cachutil"
	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/util/errs"
)

// Pinger caches status results per address and protocol.
// Concurrent pings of the same server share one exchange.
type Pinger struct {
	dialer *Dialer
	ttl    time.Duration
	cache  *ttlcache.Cache[pingKey, *pingResult]
}

type pingKey struct {
	addr     string
	protocol proto.Protocol
}

type pingResult struct {
	res *Result
	err error
}

// NewPinger returns a Pinger caching results of d for ttl.
// Call Close to stop the eviction loop.
func NewPinger(d *Dialer, ttl time.Duration) *Pinger {
	p := &Pinger{dialer: d, ttl: ttl}
	loader := ttlcache.LoaderFunc[pingKey, *pingResult](
		func(c *ttlcache.Cache[pingKey, *pingResult], key pingKey) *ttlcache.Item[pingKey, *pingResult] {
			// not bound to a single caller's context since the result is shared
			res, err := d.Status(context.Background(), key.addr, key.protocol)
			return c.Set(key, &pingResult{res: res, err: err}, ttlcache.DefaultTTL)
		},
	)
	p.cache = ttlcache.New[pingKey, *pingResult](
		ttlcache.WithTTL[pingKey, *pingResult](ttl),
		ttlcache.WithLoader[pingKey, *pingResult](&cachutil.SuppressedLoader[pingKey, *pingResult]{
			Loader: loader,
			Key:    func(k pingKey) string { return fmt.Sprintf("%s/%d", k.addr, k.protocol) },
		}),
	)
	go p.cache.Start()
	return p
}

// Ping returns the cached status of addr or dials it.
// Failed pings are cached as well.
func (p *Pinger) Ping(ctx context.Context, addr string, protocol proto.Protocol) (*Result, error) {
	key := pingKey{addr: addr, protocol: protocol}

	resultChan := make(chan *pingResult, 1)
	go func() {
		item := p.cache.Get(key)
		if item == nil {
			resultChan <- &pingResult{err: fmt.Errorf("no status result for %s", addr)}
			return
		}
		resultChan <- item.Value()
	}()

	select {
	case r := <-resultChan:
		return r.res, r.err
	case <-ctx.Done():
		return nil, errs.WrapSilent(context.Cause(ctx))
	}
}

// Reset drops all cached results.
func (p *Pinger) Reset() { p.cache.DeleteAll() }

// TTL returns how long results are cached.
func (p *Pinger) TTL() time.Duration { return p.ttl }

// Len returns the number of cached results.
func (p *Pinger) Len() int { return p.cache.Len() }

// Close stops the eviction loop.
func (p *Pinger) Close() { p.cache.Stop() }
