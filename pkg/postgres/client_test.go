package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/colorlux/pkg/config"
)

func TestHealthCheckBeforeConnect(t *testing.T) {
	cfg := config.NewConfig()
	client := NewClient(cfg, nil)

	status, err := client.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, "colorlux", status.Database)
	assert.Equal(t, "not connected", status.Error)
	assert.Nil(t, client.DB())
}

func TestDisconnectWithoutConnect(t *testing.T) {
	client := NewClient(config.NewConfig(), nil)
	assert.NoError(t, client.Disconnect())
	assert.NoError(t, client.Disconnect())
}
