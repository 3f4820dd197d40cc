package svcctx

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackzampolin/medlens/internal/providers"
)

func TestServicesFrom(t *testing.T) {
	ctx := context.Background()
	if ServicesFrom(ctx) != nil || RegistryFrom(ctx) != nil || NormalizerFrom(ctx) != nil {
		t.Error("empty context should yield nil services")
	}
	if LoggerFrom(ctx) != slog.Default() {
		t.Error("LoggerFrom() should fall back to slog.Default")
	}
	if cfg := ConfigFrom(ctx); cfg == nil || cfg.Server.MaxUploadMB != 16 {
		t.Errorf("ConfigFrom() = %+v, want defaults", cfg)
	}

	reg := providers.NewRegistry()
	ctx = WithServices(ctx, &Services{Registry: reg})
	if RegistryFrom(ctx) != reg {
		t.Error("RegistryFrom() did not return attached registry")
	}
	if HomeFrom(ctx) != nil || FDAFrom(ctx) != nil || PromptsFrom(ctx) != nil {
		t.Error("unset services should be nil")
	}
}
