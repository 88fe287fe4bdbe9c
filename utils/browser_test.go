package utils

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"price-tracker/internal/types"
)

func TestNewBrowserClient(t *testing.T) {
	config := types.DefaultConfig()
	logger := logrus.New()

	client := NewBrowserClient(config, logger)

	assert.NotNil(t, client)
	assert.Equal(t, config, client.config)
	assert.Positive(t, client.settle)
}

func TestBrowserClient_ContextCancelledBeforeLaunch(t *testing.T) {
	config := testConfig()
	config.MinDelay = time.Second
	config.MaxDelay = time.Second
	client := NewBrowserClient(config, logrus.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetPageContent(ctx, "http://example.com")

	assert.Equal(t, context.Canceled, err)
}
