package tracing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/config"
)

func TestNewTracer_NoLicenseKeyIsNoop(t *testing.T) {
	tracer, err := NewTracer(config.TracingConfig{})
	require.NoError(t, err)
	require.NotNil(t, tracer)

	require.Nil(t, tracer.StartTransaction("test"))
	require.Nil(t, tracer.Application())
	tracer.EndTransaction(nil)
	tracer.RecordError(nil, nil)
}

func TestNewTracer_InitFailureStillReturnsUsableTracer(t *testing.T) {
	// An invalid license key makes agent initialization fail; callers
	// log the error and keep the returned tracer.
	tracer, err := NewTracer(config.TracingConfig{
		AppName:    "test",
		LicenseKey: "not-a-valid-key",
	})
	require.Error(t, err)
	require.NotNil(t, tracer)

	require.Nil(t, tracer.StartTransaction("test"))
	require.Nil(t, tracer.Application())
}
