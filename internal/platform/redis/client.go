package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Config holds connection settings for the pocket Redis store.
type Config struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns client defaults for url.
func DefaultConfig(url string) Config {
	return Config{
		URL:          url,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Client wraps the go-redis client with health checking capabilities.
type Client struct {
	*redis.Client
}

// New creates a Redis client and verifies the connection.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// PoolCollector exposes connection pool gauges for a client.
type PoolCollector struct {
	client *redis.Client
	total  *prometheus.Desc
	idle   *prometheus.Desc
	stale  *prometheus.Desc
}

// RegisterPoolMetrics registers pool gauges for c on reg.
func RegisterPoolMetrics(reg prometheus.Registerer, c *redis.Client) *PoolCollector {
	pc := &PoolCollector{
		client: c,
		total:  prometheus.NewDesc("mysafepocket_redis_pool_total_conns", "Number of total connections in the pool", nil, nil),
		idle:   prometheus.NewDesc("mysafepocket_redis_pool_idle_conns", "Number of idle connections in the pool", nil, nil),
		stale:  prometheus.NewDesc("mysafepocket_redis_pool_stale_conns_total", "Number of stale connections removed from the pool", nil, nil),
	}
	reg.MustRegister(pc)
	return pc
}

// Describe implements prometheus.Collector.
func (pc *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- pc.total
	ch <- pc.idle
	ch <- pc.stale
}

// Collect implements prometheus.Collector.
func (pc *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := pc.client.PoolStats()
	ch <- prometheus.MustNewConstMetric(pc.total, prometheus.GaugeValue, float64(stats.TotalConns))
	ch <- prometheus.MustNewConstMetric(pc.idle, prometheus.GaugeValue, float64(stats.IdleConns))
	ch <- prometheus.MustNewConstMetric(pc.stale, prometheus.CounterValue, float64(stats.StaleConns))
}
