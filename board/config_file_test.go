//go:build !tinygo

package board

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"supermini/hal"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SUPERMINI_CONFIG", "")
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	d := DefaultConfig()
	if c.Bus != d.Bus || c.Display != d.Display || c.Audio != d.Audio || c.Identity != d.Identity {
		t.Fatalf("config = %+v, want defaults", c)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supermini.toml")
	data := `
[display]
dc = 4
invert_color = false
offset_y = 20
height = 200

[identity]
name = "bench unit"

[report]
broker = "localhost:1883"
interval = "5s"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUPERMINI_LED_PIN", "12")

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Display.DC != 4 || c.Display.InvertColor || c.Display.OffsetY != 20 || c.Display.Height != 200 {
		t.Fatalf("display = %+v", c.Display)
	}
	if c.Display.CS != 0 || c.Display.Reset != hal.NC || c.Display.Width != 240 {
		t.Fatalf("defaults lost: %+v", c.Display)
	}
	if c.Identity.Name != "bench unit" || c.Identity.Version != "1.0" {
		t.Fatalf("identity = %+v", c.Identity)
	}
	if c.Led.Pin != 12 {
		t.Fatalf("led pin = %d, want env override 12", c.Led.Pin)
	}
	if c.Report.Broker != "localhost:1883" || c.Report.Interval != 5*time.Second {
		t.Fatalf("report = %+v", c.Report)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supermini.yaml")
	data := "display:\n  dc: 4\n  swap_xy: true\nidentity:\n  name: yaml unit\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Display.DC != 4 || !c.Display.SwapXY || c.Identity.Name != "yaml unit" {
		t.Fatalf("config = %+v", c)
	}
	if c.Display.Width != 240 {
		t.Fatalf("defaults lost: %+v", c.Display)
	}
}

func TestLoadConfigBareNameIsTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supermini")
	if err := os.WriteFile(path, []byte("[display]\ndc = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Display.DC != 5 {
		t.Fatalf("dc = %d, want 5", c.Display.DC)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for a missing explicit file")
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[bus]\nmax_transfer_size = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error")
	}
}
