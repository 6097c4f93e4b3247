// Package migrate tests verify sequential migration application, version
// skipping, error propagation, [NeedsMigration] detection, and [Registry]
// duplicate protection.
package migrate

import (
	"fmt"
	"strings"
	"testing"
)

// ///////////////////////////////////////////////
// Run (package-level)
// ///////////////////////////////////////////////

func TestRunSkipsOldVersions(t *testing.T) {
	called := false
	migrations := []Migration{
		{Version: 1, Description: "already applied", Upgrade: func(d []byte) ([]byte, error) {
			called = true
			return d, nil
		}},
	}
	out, version, err := Run([]byte("data"), 1, migrations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("migration should have been skipped")
	}
	if version != 1 {
		t.Fatalf("expected version 1, got %d", version)
	}
	if string(out) != "data" {
		t.Fatalf("expected data unchanged, got %q", out)
	}
}

func TestRunAppliesSequentially(t *testing.T) {
	migrations := []Migration{
		{Version: 2, Description: "v1->v2", Upgrade: func(d []byte) ([]byte, error) {
			return append(d, []byte("-v2")...), nil
		}},
		{Version: 3, Description: "v2->v3", Upgrade: func(d []byte) ([]byte, error) {
			return append(d, []byte("-v3")...), nil
		}},
	}
	out, version, err := Run([]byte("data"), 1, migrations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != 3 {
		t.Fatalf("expected version 3, got %d", version)
	}
	if string(out) != "data-v2-v3" {
		t.Fatalf("expected data-v2-v3, got %q", out)
	}
}

func TestRunUnsortedInput(t *testing.T) {
	migrations := []Migration{
		{Version: 3, Description: "v2->v3", Upgrade: func(d []byte) ([]byte, error) {
			return append(d, []byte("-v3")...), nil
		}},
		{Version: 2, Description: "v1->v2", Upgrade: func(d []byte) ([]byte, error) {
			return append(d, []byte("-v2")...), nil
		}},
	}
	out, version, err := Run([]byte("data"), 1, migrations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != 3 {
		t.Fatalf("expected version 3, got %d", version)
	}
	if string(out) != "data-v2-v3" {
		t.Fatalf("expected ascending application order, got %q", out)
	}
}

func TestRunStopsOnError(t *testing.T) {
	migrations := []Migration{
		{Version: 2, Description: "v1->v2", Upgrade: func(d []byte) ([]byte, error) {
			return append(d, []byte("-v2")...), nil
		}},
		{Version: 3, Description: "v2->v3 fails", Upgrade: func(d []byte) ([]byte, error) {
			return nil, fmt.Errorf("boom")
		}},
	}
	_, version, err := Run([]byte("data"), 1, migrations)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "migration to v3 failed") {
		t.Fatalf("expected migration error message, got %v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if version != 2 {
		t.Fatalf("expected version 2 (stopped before v3), got %d", version)
	}
}

func TestRunNoMigrations(t *testing.T) {
	out, version, err := Run([]byte("original"), 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1, got %d", version)
	}
	if string(out) != "original" {
		t.Fatalf("expected original, got %q", out)
	}
}

// ///////////////////////////////////////////////
// NeedsMigration (package-level)
// ///////////////////////////////////////////////

func TestNeedsMigrationVersionMismatch(t *testing.T) {
	if !NeedsMigration(0, 1, nil) {
		t.Fatal("expected true for version 0 vs current 1")
	}
	if !NeedsMigration(2, 1, nil) {
		t.Fatal("expected true for version 2 vs current 1")
	}
}

func TestNeedsMigrationUpToDate(t *testing.T) {
	if NeedsMigration(1, 1, nil) {
		t.Fatal("expected false when up to date")
	}
	if NeedsMigration(1, 1, []Migration{}) {
		t.Fatal("expected false when up to date with empty migrations")
	}
}

func TestNeedsMigrationPendingUpgrade(t *testing.T) {
	migs := []Migration{{Version: 2, Description: "test"}}
	if !NeedsMigration(1, 1, migs) {
		t.Fatal("expected true when a newer migration is registered")
	}
}

// ///////////////////////////////////////////////
// Registry
// ///////////////////////////////////////////////

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate version")
		}
	}()
	r := &Registry{CurrentVersion: 2}
	r.Register(Migration{Version: 2, Description: "first"})
	r.Register(Migration{Version: 2, Description: "second"})
}

func TestRegistryExportedForOverride(t *testing.T) {
	// Verify Config and State registries exist with expected defaults
	if Config.CurrentVersion != 2 {
		t.Fatalf("expected Config.CurrentVersion=2, got %d", Config.CurrentVersion)
	}
	if State.CurrentVersion != 1 {
		t.Fatalf("expected State.CurrentVersion=1, got %d", State.CurrentVersion)
	}

	// Verify Migrations slice is exported and overridable
	orig := Config.Migrations
	Config.Migrations = []Migration{{Version: 99, Description: "test override"}}
	if len(Config.Migrations) != 1 || Config.Migrations[0].Version != 99 {
		t.Fatal("expected override to work")
	}
	Config.Migrations = orig
}
