package app

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"sandfall/internal/sims/sand"
)

// kvList collects repeatable key=value flags.
type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("override %q must have key=value form", value)
	}
	*l = append(*l, value)
	return nil
}

// Config represents the command-line parameters shared by the front-ends.
type Config struct {
	Sim      string
	Scale    int
	TPS      int
	Seed     int64
	Width    int
	Height   int
	Workers  int
	Chunk    int
	Material string
	Spray    int

	Overrides kvList
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	d := sand.DefaultConfig()
	return &Config{
		Sim:      "sand",
		Scale:    3,
		TPS:      60,
		Seed:     d.Seed,
		Width:    d.Width,
		Height:   d.Height,
		Workers:  d.Params.Workers,
		Chunk:    d.Params.ChunkSize,
		Material: "sand",
		Spray:    d.Params.SprayTries,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.Width, "w", c.Width, "grid width in cells")
	fs.IntVar(&c.Height, "h", c.Height, "grid height in cells")
	fs.IntVar(&c.Workers, "workers", c.Workers, "worker goroutines per phase (0 = GOMAXPROCS)")
	fs.IntVar(&c.Chunk, "chunk", c.Chunk, "chunk edge in cells")
	fs.StringVar(&c.Material, "material", c.Material, "initially selected material")
	fs.IntVar(&c.Spray, "spray", c.Spray, "grains per brush stroke (0 fills the whole brush)")
	fs.Var(&c.Overrides, "set", "sim parameter override in key=value form (repeatable)")
}

// SimConfig builds the factory configuration map. Overrides win over the
// dedicated flags.
func (c *Config) SimConfig() map[string]string {
	m := map[string]string{
		"w":       strconv.Itoa(c.Width),
		"h":       strconv.Itoa(c.Height),
		"seed":    strconv.FormatInt(c.Seed, 10),
		"workers": strconv.Itoa(c.Workers),
		"chunk":   strconv.Itoa(c.Chunk),
		"spray":   strconv.Itoa(c.Spray),
	}
	for _, kv := range c.Overrides {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		m[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return m
}

// Validate rejects flag combinations the engine cannot honour.
func (c *Config) Validate() error {
	if c.Scale <= 0 {
		return fmt.Errorf("scale %d must be positive", c.Scale)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("tps %d must be positive", c.TPS)
	}
	if _, err := c.SelectedMaterial(); err != nil {
		return err
	}
	return sand.FromMap(c.SimConfig()).Validate()
}

// SelectedMaterial resolves the -material flag.
func (c *Config) SelectedMaterial() (sand.MaterialID, error) {
	id, err := sand.ParseMaterial(c.Material)
	if err != nil {
		return sand.Empty, err
	}
	for _, p := range sand.Placeable() {
		if p == id {
			return id, nil
		}
	}
	return sand.Empty, fmt.Errorf("material %q cannot be placed", c.Material)
}
