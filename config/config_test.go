package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/witflo/fyndo-core/config"
)

func TestLoad_ExplicitMissingPathFails(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err == nil {
		t.Fatal("expected stat error for an explicit missing path")
	}

	_ = c
}

func TestLoad_DefaultPathMissingYieldsBuiltins(t *testing.T) {
	t.Setenv("WITFLO_CONFIG_PATH", filepath.Join(t.TempDir(), "does-not-exist.toml"))

	c, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	if !c.AutoLock.Enabled {
		t.Error("expected auto-lock enabled by default")
	}

	if c.AutoLock.DurationSeconds != 900 {
		t.Errorf("got default duration %d, want 900", c.AutoLock.DurationSeconds)
	}
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "witflo.toml")

	t.Setenv("WITFLO_CONFIG_PATH", path)

	c, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	c.AutoLock.DurationSeconds = 1800
	c.PushRecent("/home/me/vaults/personal", "Personal")

	if err := c.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if reloaded.AutoLock.DurationSeconds != 1800 {
		t.Errorf("got duration %d, want 1800", reloaded.AutoLock.DurationSeconds)
	}

	if len(reloaded.Recent) != 1 || reloaded.Recent[0].Root != "/home/me/vaults/personal" {
		t.Errorf("got recent entries %+v, want one entry for personal vault", reloaded.Recent)
	}
}

func TestPushRecent_DeduplicatesAndCaps(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "ignored.toml"))
	if err != nil {
		// explicit missing path is an error per Load's contract; start fresh instead.
		c = &config.FileConfig{}
	}

	for i := 0; i < 12; i++ {
		c.PushRecent("/vaults/v"+string(rune('a'+i)), "")
	}

	c.PushRecent("/vaults/va", "renamed")

	if len(c.Recent) != 10 {
		t.Errorf("got %d recent entries, want capped at 10", len(c.Recent))
	}

	if c.Recent[0].Root != "/vaults/va" {
		t.Errorf("got most-recent root %q, want /vaults/va", c.Recent[0].Root)
	}
}

func TestValidate_RejectsBadAutoLockDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")

	const badTOML = "[auto_lock]\nenabled = true\nduration_seconds = 42\n"

	if err := os.WriteFile(path, []byte(badTOML), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected validation error for an out-of-range auto-lock duration")
	}
}
