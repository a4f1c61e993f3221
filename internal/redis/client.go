// Package redis provides a wrapper around the go-redis client library
// for improved testing and abstraction.
package redis

import (
	"crypto/tls"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Topology modes understood by New
const (
	ModeSingle   = "single"
	ModeCluster  = "cluster"
	ModeSentinel = "sentinel"
)

// Options configures Redis client behavior
type Options struct {
	Mode            string
	Addrs           []string
	MasterName      string // sentinel only
	Password        string
	DB              int
	PoolSize        int
	MinIdleConns    int
	ConnMaxIdleTime time.Duration
	MaxRetries      int
	UseTLS          bool
}

func (o *Options) tlsConfig() *tls.Config {
	if !o.UseTLS {
		return nil
	}
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
}

// New creates a client for the configured topology. Redis connects lazily,
// so callers should Ping before serving traffic.
func New(opts *Options) (Client, error) {
	if opts == nil || len(opts.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}

	switch opts.Mode {
	case "", ModeSingle:
		return NewClient(opts.Addrs[0], opts)
	case ModeCluster:
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        opts.Addrs,
			Password:     opts.Password,
			MinIdleConns: opts.MinIdleConns,
			PoolSize:     opts.PoolSize,
			MaxRetries:   opts.MaxRetries,
			TLSConfig:    opts.tlsConfig(),
		}), nil
	case ModeSentinel:
		if opts.MasterName == "" {
			return nil, errors.New("redis: master name is required for sentinel mode")
		}
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    opts.MasterName,
			SentinelAddrs: opts.Addrs,
			Password:      opts.Password,
			DB:            opts.DB,
			MinIdleConns:  opts.MinIdleConns,
			PoolSize:      opts.PoolSize,
			MaxRetries:    opts.MaxRetries,
			TLSConfig:     opts.tlsConfig(),
		}), nil
	default:
		return nil, errors.New("redis: unknown mode " + opts.Mode)
	}
}

// NewClient creates a Redis client for a single instance
func NewClient(endpoint string, opts *Options) (Client, error) {
	if endpoint == "" {
		return nil, errors.New("redis: endpoint is required")
	}

	if opts == nil {
		opts = &Options{}
	}

	return redis.NewClient(&redis.Options{
		Addr:            endpoint,
		Password:        opts.Password,
		DB:              opts.DB,
		MinIdleConns:    opts.MinIdleConns,
		PoolSize:        opts.PoolSize,
		ConnMaxIdleTime: opts.ConnMaxIdleTime,
		MaxRetries:      opts.MaxRetries,
		TLSConfig:       opts.tlsConfig(),
	}), nil
}
