// Package cachutil holds ttlcache helpers.
package cachutil

import (
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

// SuppressedLoader wraps another Loader and suppresses duplicate
// calls to its Load method.
type SuppressedLoader[K comparable, V any] struct {
	ttlcache.Loader[K, V]

	// Key returns the singleflight key of k.
	Key func(k K) string

	group singleflight.Group
}

// Load executes a custom item retrieval logic and returns the item that
// is associated with the key.
// It returns nil if the item is not found/valid.
// Only one execution of the wrapped Loader's Load
// method is in-flight for a given key at a time.
func (l *SuppressedLoader[K, V]) Load(c *ttlcache.Cache[K, V], key K) *ttlcache.Item[K, V] {
	// singleflight only returns the error of the func below, which is always nil
	res, _, _ := l.group.Do(l.Key(key), func() (any, error) {
		item := l.Loader.Load(c, key)
		if item == nil {
			return nil, nil
		}
		return item, nil
	})
	if res == nil {
		return nil
	}
	return res.(*ttlcache.Item[K, V])
}
