package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TICKET_NUMBER_STRATEGY", "")
	t.Setenv("APP_PUBLIC_URL", "https://portal.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, NumberStrategySequence, cfg.Tickets.NumberStrategy)
	assert.Equal(t, MaxAttachmentBytes, cfg.Storage.MaxUploadBytes)
	assert.Equal(t, "https://portal.example.com", cfg.App.PublicURL)
	assert.Equal(t, "https://portal.example.com/files", cfg.Storage.PublicBaseURL)
	assert.False(t, cfg.Notification.SMTPEnabled())
}

func TestLoad_RejectsUnknownNumberStrategy(t *testing.T) {
	t.Setenv("TICKET_NUMBER_STRATEGY", "random")

	_, err := Load()
	assert.ErrorContains(t, err, "TICKET_NUMBER_STRATEGY")
}

func TestLoad_RejectsUploadCeilingAboveTenMiB(t *testing.T) {
	t.Setenv("STORAGE_MAX_UPLOAD_BYTES", "20971520")

	_, err := Load()
	assert.ErrorContains(t, err, "STORAGE_MAX_UPLOAD_BYTES")
}

func TestGetEnvAsInt_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}
