package sand

import (
	"fmt"
	"strconv"
)

// Params holds the tunables of the sand engine.
type Params struct {
	// ChunkSize is the edge of a scheduling chunk; one chunk column is one
	// parallel work unit. It must exceed LiquidReach.
	ChunkSize int
	// Workers bounds the goroutines used per phase; 0 selects GOMAXPROCS.
	Workers int
	// RegionLinger is how many quiet ticks a chunk stays active.
	RegionLinger int
	// LiquidReach is how far a fluid looks sideways for open space.
	LiquidReach int
	// SpreadLimit caps consecutive sideways moves before a fluid rests.
	SpreadLimit int

	BrushRadius int
	// SprayTries > 0 makes the brush scatter that many grains per stroke
	// instead of filling the whole disk.
	SprayTries int

	DrainHalfWidth int
	DrainDepth     int
}

// Config controls the sand world.
type Config struct {
	Width  int
	Height int

	Seed int64

	// Layout names the initial scene; see Layouts.
	Layout string

	Params Params
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:  400,
		Height: 264,
		Seed:   170,
		Params: Params{
			ChunkSize:      16,
			Workers:        0,
			RegionLinger:   2,
			LiquidReach:    4,
			SpreadLimit:    48,
			BrushRadius:    6,
			SprayTries:     0,
			DrainHalfWidth: 16,
			DrainDepth:     1,
		},
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Unparseable values keep their defaults; Validate reports inconsistent ones.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	setInt := func(key string, dst *int, min int) {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.Atoi(v); err == nil && parsed >= min {
				*dst = parsed
			}
		}
	}
	setInt("w", &c.Width, 1)
	setInt("h", &c.Height, 1)
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["layout"]; ok {
		c.Layout = v
	}
	setInt("chunk", &c.Params.ChunkSize, 1)
	setInt("workers", &c.Params.Workers, 0)
	setInt("linger", &c.Params.RegionLinger, 1)
	setInt("reach", &c.Params.LiquidReach, 1)
	setInt("spread_limit", &c.Params.SpreadLimit, 1)
	setInt("brush", &c.Params.BrushRadius, 0)
	setInt("spray", &c.Params.SprayTries, 0)
	setInt("drain_half", &c.Params.DrainHalfWidth, 0)
	setInt("drain_depth", &c.Params.DrainDepth, 1)
	return c
}

// Validate reports configuration errors that would break the engine's
// guarantees.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("grid size %dx%d must be positive", c.Width, c.Height)
	}
	p := c.Params
	if p.LiquidReach < 1 {
		return fmt.Errorf("liquid reach %d must be at least 1", p.LiquidReach)
	}
	if p.ChunkSize <= p.LiquidReach {
		return fmt.Errorf("chunk size %d must exceed liquid reach %d", p.ChunkSize, p.LiquidReach)
	}
	if p.RegionLinger < 1 || p.RegionLinger > 255 {
		return fmt.Errorf("region linger %d out of range [1,255]", p.RegionLinger)
	}
	if p.SpreadLimit < 1 || p.SpreadLimit > 255 {
		return fmt.Errorf("spread limit %d out of range [1,255]", p.SpreadLimit)
	}
	if p.DrainDepth < 1 || p.DrainDepth > c.Height {
		return fmt.Errorf("drain depth %d out of range [1,%d]", p.DrainDepth, c.Height)
	}
	if p.Workers < 0 || p.BrushRadius < 0 || p.SprayTries < 0 || p.DrainHalfWidth < 0 {
		return fmt.Errorf("workers, brush, spray and drain width must not be negative")
	}
	if _, ok := layouts[c.Layout]; !ok {
		return fmt.Errorf("unknown layout %q", c.Layout)
	}
	return nil
}

// normalize coerces values so that an unvalidated config still yields a
// world that keeps the scheduler's disjointness guarantee.
func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	p := &c.Params
	if p.LiquidReach < 1 {
		p.LiquidReach = 1
	}
	if p.ChunkSize <= p.LiquidReach {
		p.ChunkSize = p.LiquidReach + 1
	}
	p.RegionLinger = min(max(p.RegionLinger, 1), 255)
	p.SpreadLimit = min(max(p.SpreadLimit, 1), 255)
	p.DrainDepth = min(max(p.DrainDepth, 1), c.Height)
	p.Workers = max(p.Workers, 0)
	p.BrushRadius = max(p.BrushRadius, 0)
	p.SprayTries = max(p.SprayTries, 0)
	p.DrainHalfWidth = max(p.DrainHalfWidth, 0)
	if _, ok := layouts[c.Layout]; !ok {
		c.Layout = ""
	}
	return c
}
