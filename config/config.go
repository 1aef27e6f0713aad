// Package config resolves per-cache policy: compiled-in defaults with
// environment overrides layered on top.
//
// Override order for a cache named "card_list":
//
//	CACHE_ENABLED              global switch (default true)
//	CACHE_CARD_LIST_ENABLED    per-cache switch, AND'ed with the global one
//	CACHE_CARD_LIST_TTL        TTL in seconds (>= 1)
//	CACHE_CARD_LIST_MAXSIZE    capacity (>= 1)
//
// A malformed value is logged and ignored; it never fails startup.
package config

import (
	"time"

	"github.com/IvanBrykalov/memocache/store"
)

// Names of the caches shipped with compiled-in defaults.
const (
	CardList     = "card_list"
	OrderButtons = "order_buttons"
)

// CacheConfig is the resolved policy of one named cache.
type CacheConfig struct {
	Name       string     `json:"name"`
	Kind       store.Kind `json:"kind"`
	Capacity   int        `json:"capacity"`
	TTLSeconds int        `json:"ttl_seconds"`
	Enabled    bool       `json:"enabled"`
}

// TTL returns TTLSeconds as a duration.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSeconds) * time.Second }

// StoreOptions converts the config into store construction options.
func (c CacheConfig) StoreOptions() store.Options[string, any] {
	return store.Options[string, any]{
		Kind:     c.Kind,
		Capacity: c.Capacity,
		TTL:      c.TTL(),
	}
}

// Disabled is the config reported for a name nobody configured.
func Disabled(name string) CacheConfig {
	return CacheConfig{Name: name, Kind: store.KindTTL, Capacity: 128, TTLSeconds: 300, Enabled: false}
}

// Defaults returns the compiled-in cache set.
func Defaults() map[string]CacheConfig {
	return map[string]CacheConfig{
		// Card list rarely changes.
		CardList: {
			Name:       CardList,
			Kind:       store.KindTTL,
			Capacity:   100,
			TTLSeconds: 300,
			Enabled:    true,
		},
		OrderButtons: {
			Name:       OrderButtons,
			Kind:       store.KindTTL,
			Capacity:   1000,
			TTLSeconds: 1800,
			Enabled:    true,
		},
	}
}
