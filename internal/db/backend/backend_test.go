package backend

import (
	"Tuiter/internal/config"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	b, err := Open(context.Background(), &config.Config{StoreBackend: config.BackendMemory})
	require.NoError(t, err)
	require.NotNil(t, b.Reactions)
	require.NotNil(t, b.Posts)
	assert.NoError(t, b.Close(context.Background()))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreBackend: "sqlite"})
	assert.Error(t, err)
}
