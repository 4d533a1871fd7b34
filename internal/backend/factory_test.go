package backend

import (
	"context"
	"path/filepath"
	"testing"

	"finboard/internal/config"
	"finboard/internal/storage"
)

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"file", Config{Type: FileBackend, DataDirectory: filepath.Join(dir, "files")}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "finboard.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			result, err := NewFactory(nil).CreateBackend(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer func() {
				if err := result.Cleanup(); err != nil {
					t.Errorf("cleanup: %v", err)
				}
			}()

			if err := result.Ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}
			if err := result.KV.Set(ctx, storage.BudgetsKey, "[]"); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, ok, err := result.KV.Get(ctx, storage.BudgetsKey)
			if err != nil || !ok || got != "[]" {
				t.Fatalf("get = %q %v %v", got, ok, err)
			}
		})
	}
}

func TestCreateBackendRejectsIncompleteConfig(t *testing.T) {
	cases := []Config{
		{Type: "sheets"},
		{Type: FileBackend},
		{Type: SQLiteBackend},
		{Type: PostgresBackend},
	}
	for _, c := range cases {
		if _, err := NewFactory(nil).CreateBackend(context.Background(), c); err == nil {
			t.Errorf("expected error for %+v", c)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg := &config.Config{DataBackend: "postgres", DatabaseURL: "postgres://localhost/finboard", DataDir: "./data"}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != PostgresBackend || got.DatabaseURL != cfg.DatabaseURL || got.DataDirectory != "./data" {
		t.Fatalf("unexpected backend config %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != len(config.Backends) {
		t.Fatalf("backend lists diverge: %v vs %v", got, config.Backends)
	}
	for i := range got {
		if got[i] != config.Backends[i] {
			t.Fatalf("backend lists diverge: %v vs %v", got, config.Backends)
		}
	}
}
