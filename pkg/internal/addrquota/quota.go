// Package addrquota limits the rate of events per remote address range.
package addrquota

import (
	"net"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/time/rate"
)

// Quota implements a simple IP-based rate limiter.
// Each set of incoming IP addresses with the same
// low-order byte gets events per second.
// Information is kept in an LRU cache of size maxEntries.
// A nil *Quota blocks nothing.
type Quota struct {
	eps   float32    // allowed events per second
	burst int        // maximum events at once
	mu    sync.Mutex // protects cache
	cache *lru.Cache
}

// NewQuota returns a new Quota.
func NewQuota(eventsPerSecond float32, burst, maxEntries int) *Quota {
	return &Quota{
		eps:   eventsPerSecond,
		burst: burst,
		cache: lru.New(maxEntries),
	}
}

// Blocked consumes one event for addr and reports
// whether the quota of its address range is exceeded.
// Addresses without an IP are never blocked.
func (q *Quota) Blocked(addr net.Addr) bool {
	if q == nil || addr == nil {
		return false
	}
	key := ipKey(addr)
	if key == "" {
		return false
	}
	q.mu.Lock()
	var limiter *rate.Limiter
	if v, ok := q.cache.Get(key); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rate.Limit(q.eps), q.burst)
		q.cache.Add(key, limiter)
	}
	q.mu.Unlock()
	return !limiter.Allow()
}

// Len returns the number of tracked address ranges.
func (q *Quota) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cache.Len()
}

func ipKey(addr net.Addr) string {
	var ip net.IP
	switch a := addr.(type) {
	case *net.TCPAddr:
		ip = a.IP
	default:
		host, _, err := net.SplitHostPort(addr.String())
		if err != nil {
			host = addr.String()
		}
		ip = net.ParseIP(host)
	}
	if ip == nil {
		return ""
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	// Zero out last byte, to cover ranges.
	masked := make(net.IP, len(ip))
	copy(masked, ip)
	masked[len(masked)-1] = 0
	return masked.String()
}
