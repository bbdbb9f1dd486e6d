package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/learnpath/internal/config"
	"github.com/rcliao/learnpath/internal/logger"
	"github.com/rcliao/learnpath/internal/model"
)

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{"sqlite", config.StorageConfig{Backend: "sqlite", Path: filepath.Join(dir, "l.db")}, false},
		{"file", config.StorageConfig{Backend: "file", Path: filepath.Join(dir, "data")}, false},
		{"memory", config.StorageConfig{Backend: "memory"}, false},
		{"redis without addr", config.StorageConfig{Backend: "redis"}, true},
		{"unknown", config.StorageConfig{Backend: "etcd"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := openBackend(ctx, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("openBackend: %v", err)
			}
			defer b.Close()
			if err := b.Set(ctx, "k", []byte("v")); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, ok, err := b.Get(ctx, "k")
			if err != nil || !ok || string(got) != "v" {
				t.Errorf("get = %q, %v, %v", got, ok, err)
			}
		})
	}
}

func TestOpenStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default(t.TempDir())
	cfg.Storage = config.StorageConfig{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "l.db")}

	st, err := openStore(ctx, cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	id := st.SavePlan(ctx, model.UserProfile{Topic: "Go"}, model.Plan{Topic: "Go"})
	st.Close()

	st, err = openStore(ctx, cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if st.GetActivePlanID(ctx) != id {
		t.Error("plan not persisted across opens")
	}
}

func TestOutputFormats(t *testing.T) {
	defer func(f string) { formatFlag = f }(formatFlag)
	v := map[string]int{"plans": 2}
	text := func(w io.Writer) { io.WriteString(w, "2 plans\n") }

	var buf bytes.Buffer
	formatFlag = "json"
	output(&buf, v, text)
	if !strings.Contains(buf.String(), `"plans": 2`) {
		t.Errorf("json output = %q", buf.String())
	}

	buf.Reset()
	formatFlag = "text"
	output(&buf, v, text)
	if buf.String() != "2 plans\n" {
		t.Errorf("text output = %q", buf.String())
	}

	buf.Reset()
	output(&buf, v, nil)
	if !strings.Contains(buf.String(), `"plans"`) {
		t.Error("text without a renderer should fall back to json")
	}
}

func TestNewServiceMock(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.LLM.Provider = "mock"
	svc := newService(cfg, logger.Nop())
	paths, err := svc.GeneratePathways(context.Background(), model.UserProfile{Topic: "Go"})
	if err != nil || len(paths) == 0 {
		t.Fatalf("mock pathways = %v, %v", paths, err)
	}
}
