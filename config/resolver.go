package config

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every cache override variable.
const EnvPrefix = "CACHE"

// Resolver holds the resolved config of every known cache.
// It is safe for concurrent use; Reload swaps the whole set atomically.
type Resolver struct {
	defaults map[string]CacheConfig
	envFile  string
	log      *slog.Logger

	mu      sync.RWMutex
	configs map[string]CacheConfig
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDefaults replaces the compiled-in cache set.
func WithDefaults(defaults map[string]CacheConfig) Option {
	return func(r *Resolver) { r.defaults = defaults }
}

// WithEnvFile reads overrides from a dotenv file as well. Variables set in
// the process environment win over the file.
func WithEnvFile(path string) Option {
	return func(r *Resolver) { r.envFile = path }
}

// WithLogger sets the logger used to report ignored overrides.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// New resolves defaults plus the current environment.
// It fails only when an explicitly requested env file cannot be read.
func New(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		defaults: Defaults(),
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the resolved config for name, or a disabled config if the name
// is unknown.
func (r *Resolver) Get(name string) CacheConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.configs[name]; ok {
		return c
	}
	return Disabled(name)
}

// IsEnabled reports whether memoization is on for name.
func (r *Resolver) IsEnabled(name string) bool { return r.Get(name).Enabled }

// Names returns the configured cache names, sorted.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.configs))
	for name := range r.configs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// All returns a copy of every resolved config.
func (r *Resolver) All() map[string]CacheConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]CacheConfig, len(r.configs))
	for k, v := range r.configs {
		out[k] = v
	}
	return out
}

// Reload recomputes every config from the defaults and the current
// environment. Caches that already exist keep their stores; only later
// lookups see the new values.
func (r *Resolver) Reload() error {
	v := viper.New()
	v.AutomaticEnv()
	if r.envFile != "" {
		v.SetConfigFile(r.envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read env file %s", r.envFile)
		}
	}

	configs := r.resolve(v)

	r.mu.Lock()
	r.configs = configs
	r.mu.Unlock()
	return nil
}

func (r *Resolver) resolve(v *viper.Viper) map[string]CacheConfig {
	global := true
	if b, ok := r.boolOverride(v, EnvPrefix+"_ENABLED"); ok {
		global = b
	}

	out := make(map[string]CacheConfig, len(r.defaults))
	for name, c := range r.defaults {
		c.Name = name
		prefix := EnvPrefix + "_" + strings.ToUpper(name)

		enabled := c.Enabled
		if b, ok := r.boolOverride(v, prefix+"_ENABLED"); ok {
			enabled = b
		}
		c.Enabled = global && enabled

		if n, ok := r.positiveOverride(v, prefix+"_TTL"); ok {
			c.TTLSeconds = n
		}
		if n, ok := r.positiveOverride(v, prefix+"_MAXSIZE"); ok {
			c.Capacity = n
		}
		out[name] = c
	}
	return out
}

func (r *Resolver) boolOverride(v *viper.Viper, key string) (bool, bool) {
	raw := v.GetString(key)
	if raw == "" {
		return false, false
	}
	b, err := cast.ToBoolE(strings.TrimSpace(raw))
	if err != nil {
		r.log.Warn("ignoring malformed cache override", "key", key, "value", raw, "error", err)
		return false, false
	}
	return b, true
}

// positiveOverride accepts integers >= 1; anything else is malformed.
func (r *Resolver) positiveOverride(v *viper.Viper, key string) (int, bool) {
	raw := v.GetString(key)
	if raw == "" {
		return 0, false
	}
	n, err := cast.ToIntE(strings.TrimSpace(raw))
	if err == nil && n < 1 {
		err = errors.Errorf("must be >= 1, got %d", n)
	}
	if err != nil {
		r.log.Warn("ignoring malformed cache override", "key", key, "value", raw, "error", err)
		return 0, false
	}
	return n, true
}
