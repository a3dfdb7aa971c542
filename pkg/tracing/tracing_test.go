package tracing_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/okailora/okailora/pkg/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	_, err := tracing.NewProvider(ctx, "okailora", url.URL{}, "", 1)
	assert.Error(t, err)

	u, err := url.Parse("http://localhost:4318/v1/traces")
	require.NoError(t, err)

	_, err = tracing.NewProvider(ctx, "", *u, "", 1)
	assert.Error(t, err)

	tp, err := tracing.NewProvider(ctx, "okailora", *u, "instance-1", 0)
	require.NoError(t, err)
	assert.NotNil(t, tp.Tracer("okailora"))
	assert.NoError(t, tp.Shutdown(ctx))
}
