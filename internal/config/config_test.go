package config

import (
	"testing"

	"github.com/adhamsal/splitkit/internal/storage"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.StorageDriver != storage.DriverMemory {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, storage.DriverMemory)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_DB_PATH", "/tmp/test.db")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.StorageDriver != storage.DriverSQLite {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, storage.DriverSQLite)
	}
	if cfg.SQLitePath != "/tmp/test.db" {
		t.Errorf("SQLitePath = %q, want %q", cfg.SQLitePath, "/tmp/test.db")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate(): %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid memory",
			cfg:  Config{Port: "8080", StorageDriver: storage.DriverMemory},
		},
		{
			name:    "unknown driver",
			cfg:     Config{Port: "8080", StorageDriver: "redis"},
			wantErr: true,
		},
		{
			name:    "empty port",
			cfg:     Config{StorageDriver: storage.DriverMemory},
			wantErr: true,
		},
		{
			name:    "sqlite without path",
			cfg:     Config{Port: "8080", StorageDriver: storage.DriverSQLite},
			wantErr: true,
		},
		{
			name:    "postgres without url",
			cfg:     Config{Port: "8080", StorageDriver: storage.DriverPostgres},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
