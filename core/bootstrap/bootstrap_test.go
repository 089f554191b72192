package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/kinobot/core/config"
)

func TestRunMemoryDriverSkipsDatabase(t *testing.T) {
	cfg := &coreconfig.Config{Storage: coreconfig.StorageConfig{Driver: coreconfig.StorageMemory}}
	loggerCalled := false
	res, err := Run(Options{
		Config:     cfg,
		LoggerInit: func(*coreconfig.Config) error { loggerCalled = true; return nil },
		Connect: func(coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			t.Fatal("connect must not be called for memory driver")
			return nil, nil
		},
		Migrate: func(coreconfig.DatabaseConfig, fs.FS, string) error {
			t.Fatal("migrate must not be called for memory driver")
			return nil
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !loggerCalled {
		t.Fatal("logger init not called")
	}
	if res.DB != nil {
		t.Fatal("expected nil DB")
	}
}

func TestRunPropagatesConnectError(t *testing.T) {
	cfg := &coreconfig.Config{Storage: coreconfig.StorageConfig{Driver: coreconfig.StoragePostgres}}
	boom := errors.New("boom")
	_, err := Run(Options{
		Config:     cfg,
		LoggerInit: func(*coreconfig.Config) error { return nil },
		Connect:    func(coreconfig.DatabaseConfig) (*sqlx.DB, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}

func TestRunSeedersStopsOnFailure(t *testing.T) {
	var calls []int
	boom := errors.New("seed")
	err := RunSeeders(context.Background(),
		SeederFunc(func(context.Context) error { calls = append(calls, 1); return nil }),
		SeederFunc(func(context.Context) error { calls = append(calls, 2); return boom }),
		SeederFunc(func(context.Context) error { calls = append(calls, 3); return nil }),
	)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %v", calls)
	}
}
