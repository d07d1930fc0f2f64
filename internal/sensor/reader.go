// Package sensor polls the rig's climate readings and keeps the latest
// values available for the web server and the readings push.
package sensor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shirou/gopsutil/v3/host"
)

// readingCacheKey is the single entry a CachedReader stores.
const readingCacheKey = "climate"

// Reading is one climate measurement. Fields a reader cannot supply stay
// nil.
type Reading struct {
	Temperature *float32
	Humidity    *float32
}

// Reader produces climate readings.
type Reader interface {
	Read(ctx context.Context) (Reading, error)
}

// HostReader reads the machine's own thermal sensors. There is no humidity
// sensor on a typical host, so readings carry temperature only.
type HostReader struct {
	// SensorKey narrows the thermal sensor by substring, e.g. "coretemp".
	// Empty picks the first sensor reporting a plausible value.
	SensorKey string
}

func (r *HostReader) Read(ctx context.Context) (Reading, error) {
	stats, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil {
		return Reading{}, fmt.Errorf("reading host sensors: %w", err)
	}

	for i := range stats {
		if r.SensorKey != "" && !strings.Contains(stats[i].SensorKey, r.SensorKey) {
			continue
		}
		if stats[i].Temperature == 0 {
			continue
		}
		t := float32(stats[i].Temperature)
		return Reading{Temperature: &t}, nil
	}
	return Reading{}, fmt.Errorf("no usable thermal sensor (want key containing %q, %d sensors seen)", r.SensorKey, len(stats))
}

// CachedReader serves a cached reading while one is fresh, shielding
// sensors that misbehave when read too often. The DHT22 this replaces
// returns errors on reads closer than two seconds apart.
type CachedReader struct {
	inner Reader
	cache *cache.Cache
}

func NewCachedReader(inner Reader, minInterval time.Duration) *CachedReader {
	// cleanup interval 0: expiry is checked on Get, no janitor goroutine
	return &CachedReader{
		inner: inner,
		cache: cache.New(minInterval, 0),
	}
}

func (c *CachedReader) Read(ctx context.Context) (Reading, error) {
	if cached, found := c.cache.Get(readingCacheKey); found {
		if reading, ok := cached.(Reading); ok {
			return reading, nil
		}
	}

	reading, err := c.inner.Read(ctx)
	if err != nil {
		return Reading{}, err
	}
	c.cache.Set(readingCacheKey, reading, cache.DefaultExpiration)
	return reading, nil
}
