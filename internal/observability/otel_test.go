package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/goyo-ia/legal-backend/internal/config"
)

// setup runs SetupOTel with a baseline enabled config, restoring the global
// tracer provider and propagator when the test ends.
func setup(t *testing.T, mutate func(*config.OTELConfig)) func(context.Context) error {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	cfg := config.OTELConfig{
		Enabled:     true,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: "legal-backend-test",
		SampleRatio: 1.0,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	shutdown, err := SetupOTel(context.Background(), cfg, "v1.0.0")
	if err != nil {
		t.Fatalf("SetupOTel: %v", err)
	}
	if shutdown == nil {
		t.Fatalf("SetupOTel returned nil shutdown func")
	}
	return shutdown
}

func TestSetupOTel_DisabledIsNoOp(t *testing.T) {
	prevTP := otel.GetTracerProvider()

	shutdown := setup(t, func(cfg *config.OTELConfig) { cfg.Enabled = false })
	if otel.GetTracerProvider() != prevTP {
		t.Fatalf("disabled setup replaced the global tracer provider")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
}

func TestSetupOTel_InstallsProviderAndPropagator(t *testing.T) {
	shutdown := setup(t, nil)
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("tracer provider = %T, want *sdktrace.TracerProvider", otel.GetTracerProvider())
	}

	// Traceparent must survive an inject/extract round trip.
	ctx, span := otel.Tracer("router").Start(context.Background(), "consultar_caso")
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	span.End()
	if carrier.Get("traceparent") == "" {
		t.Fatalf("propagator did not inject traceparent, carrier=%v", carrier)
	}
	out := otel.GetTextMapPropagator().Extract(context.Background(), carrier)
	if !trace.SpanContextFromContext(out).IsValid() {
		t.Fatalf("extracted span context is invalid")
	}
}

func TestSetupOTel_TLSBranch(t *testing.T) {
	shutdown := setup(t, func(cfg *config.OTELConfig) { cfg.Insecure = false })
	defer func() { _ = shutdown(context.Background()) }()

	_, span := otel.Tracer("repo").Start(context.Background(), "listar_sentencias")
	span.End()
}

func TestSetupOTel_CanceledContextStillSucceeds(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	shutdown, err := SetupOTel(ctx, config.OTELConfig{
		Enabled:     true,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: "legal-backend-test",
		SampleRatio: 1.0,
	}, "v1.0.0")
	if err != nil {
		t.Fatalf("SetupOTel with canceled ctx: %v", err)
	}
	_ = shutdown(context.Background())
}

var (
	origExporterFn = newOTLPExporterFn
	origResourceFn = newServiceResourceFn
)

func TestSetupOTel_ConstructorFailuresLeaveGlobalsAlone(t *testing.T) {
	cases := []struct {
		name    string
		induce  func()
		restore func()
	}{
		{
			name: "exporter",
			induce: func() {
				newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
					return nil, errors.New("exporter down")
				}
			},
			restore: func() { newOTLPExporterFn = origExporterFn },
		},
		{
			name: "resource",
			induce: func() {
				newServiceResourceFn = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
					return nil, errors.New("resource down")
				}
			},
			restore: func() { newServiceResourceFn = origResourceFn },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.induce()
			defer tc.restore()

			prevTP := otel.GetTracerProvider()
			prevProp := otel.GetTextMapPropagator()

			_, err := SetupOTel(context.Background(), config.OTELConfig{
				Enabled:     true,
				Insecure:    true,
				Endpoint:    "localhost:4317",
				ServiceName: "legal-backend-test",
				SampleRatio: 1.0,
			}, "v1.0.0")
			if err == nil {
				t.Fatalf("expected %s constructor error", tc.name)
			}
			if otel.GetTracerProvider() != prevTP {
				t.Fatalf("tracer provider changed on %s failure", tc.name)
			}
			if otel.GetTextMapPropagator() != prevProp {
				t.Fatalf("propagator changed on %s failure", tc.name)
			}
		})
	}
}

func TestShutdown_HonorsDeadline(t *testing.T) {
	shutdown := setup(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
