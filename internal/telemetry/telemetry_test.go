// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/noldarim/fuzzy/internal/config"
)

func restoreProvider(t *testing.T) {
	t.Helper()
	saved := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(saved) })
}

func TestSetupDisabled(t *testing.T) {
	restoreProvider(t)
	before := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSetupEnabled(t *testing.T) {
	restoreProvider(t)

	shutdown, err := Setup(context.Background(), config.TelemetryConfig{
		Enabled:     true,
		Endpoint:    "127.0.0.1:4318",
		Insecure:    true,
		ServiceName: "fuzzy-test",
		SampleRatio: 1,
	}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewProviderExportsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := NewProvider(exporter, "fuzzy-test", "1.2.3", 1)

	_, span := provider.Tracer(InstrumentationName).Start(context.Background(), "engine.process")
	span.SetAttributes(attribute.String("engine", "dimmer"))
	span.End()
	require.NoError(t, provider.ForceFlush(context.Background()))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "engine.process", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String("engine", "dimmer"))
	assert.Contains(t, spans[0].Resource.Attributes(), attribute.String("service.version", "1.2.3"))
}

func TestNewProviderSampling(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := NewProvider(exporter, "fuzzy-test", "dev", 0)

	_, span := provider.Tracer(InstrumentationName).Start(context.Background(), "dropped")
	span.End()
	require.NoError(t, provider.ForceFlush(context.Background()))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	assert.Empty(t, exporter.GetSpans())
}
