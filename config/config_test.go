package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "classroom-hub", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.True(t, cfg.Redis.Disabled)
	assert.Equal(t, 3*time.Second, cfg.Classroom.ToastTTL)
	assert.Equal(t, 30*time.Second, cfg.Classroom.ToastSweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.Redis.ResyncInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.Classroom.AutoReplyDelay)
	assert.Equal(t, "Cô Lan", cfg.Classroom.SignerName)
	assert.True(t, cfg.Classroom.SeedDemo)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.Features.IsEnabled(FeatureSlidesGeneration))
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("CLASSROOM_TOAST_TTL", "5s")
	t.Setenv("CLASSROOM_SIGNER_NAME", "Thầy Nam")
	t.Setenv("APP_ENV", "production")
	t.Setenv("FEATURE_CHAT_AUTO_REPLY", "false")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Classroom.ToastTTL)
	assert.Equal(t, "Thầy Nam", cfg.Classroom.SignerName)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.App.Debug)
	assert.False(t, cfg.Features.IsEnabled(FeatureChatAutoReply))
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := &Config{
		HTTP:          HTTPConfig{Port: 0},
		Redis:         RedisConfig{Disabled: false},
		Classroom:     ClassroomConfig{ToastTTL: -time.Second},
		Observability: ObservabilityConfig{LogLevel: "loud"},
	}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "REDIS_HOST")
	assert.Contains(t, err.Error(), "CLASSROOM_TOAST_TTL")
	assert.Contains(t, err.Error(), "CLASSROOM_SIGNER_NAME")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "many")
	t.Setenv("X_BOOL", "perhaps")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 7, getEnvInt("X_INT", 7))
	assert.True(t, getEnvBool("X_BOOL", true))
	assert.Equal(t, time.Minute, getEnvDuration("X_DUR", time.Minute))
	assert.Equal(t, "fallback", getEnv("X_MISSING", "fallback"))
}
