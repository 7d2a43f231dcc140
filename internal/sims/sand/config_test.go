package sand

import "testing"

func TestFromMapParsesKeys(t *testing.T) {
	cfg := FromMap(map[string]string{
		"w":            "120",
		"h":            "80",
		"seed":         "-9",
		"layout":       "basin",
		"chunk":        "12",
		"workers":      "3",
		"reach":        "5",
		"spread_limit": "20",
		"brush":        "bogus",
	})
	if cfg.Width != 120 || cfg.Height != 80 || cfg.Seed != -9 || cfg.Layout != "basin" {
		t.Fatalf("unexpected world config %+v", cfg)
	}
	p := cfg.Params
	if p.ChunkSize != 12 || p.Workers != 3 || p.LiquidReach != 5 || p.SpreadLimit != 20 {
		t.Fatalf("unexpected params %+v", p)
	}
	if p.BrushRadius != DefaultConfig().Params.BrushRadius {
		t.Fatal("unparseable values must keep defaults")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestValidateRejectsOverlappingStrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.ChunkSize = 4
	cfg.Params.LiquidReach = 4
	if err := cfg.Validate(); err == nil {
		t.Fatal("chunk size equal to reach must be rejected")
	}
	n := cfg.normalize()
	if n.Params.ChunkSize <= n.Params.LiquidReach {
		t.Fatalf("normalize left chunk %d <= reach %d", n.Params.ChunkSize, n.Params.LiquidReach)
	}
}

func TestValidateRejectsUnknownLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout = "volcano"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown layout must be rejected")
	}
	if cfg.normalize().Layout != "" {
		t.Fatal("normalize should fall back to the empty layout")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if got := Layouts(); len(got) != 1 || got[0] != "basin" {
		t.Fatalf("Layouts() = %v", got)
	}
}
