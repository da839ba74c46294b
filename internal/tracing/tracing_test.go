package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup("")
	require.NoError(t, err)

	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup(t *testing.T) {
	shutdown, err := Setup("http://localhost:14268/api/traces")
	require.NoError(t, err)

	assert.NoError(t, shutdown(context.Background()))
}
