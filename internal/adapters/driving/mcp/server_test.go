package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerRequiresQueryService(t *testing.T) {
	_, err := NewServer(&Ports{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingQueryService)
}

func TestNewServerWithQueryOnly(t *testing.T) {
	server, err := NewServer(&Ports{Query: &mockQueryService{}})
	require.NoError(t, err)
	assert.NotNil(t, server)
}
