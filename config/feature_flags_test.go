package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlags_Defaults(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureSlidesGeneration))
	assert.True(t, ff.IsEnabled(FeatureStorePurchases))
	assert.False(t, ff.IsEnabled(FeatureToastBroadcast))
	assert.False(t, ff.IsEnabled(FeatureOperationReplay))
	assert.False(t, ff.IsEnabled("unknown.feature"))
	assert.Equal(t, []string{
		FeatureChatAutoReply,
		FeatureLeaderboardMirror,
		FeatureOperationReplay,
		FeatureSlidesGeneration,
		FeatureStorePurchases,
		FeatureToastBroadcast,
	}, ff.Names())
}

func TestFeatureFlags_EnvironmentOverride(t *testing.T) {
	t.Setenv("FEATURE_TOASTS_BROADCAST", "true")
	t.Setenv("FEATURE_STORE_PURCHASES", "0")
	t.Setenv("FEATURE_SLIDES_GENERATION", "not-a-bool")

	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureToastBroadcast))
	assert.False(t, ff.IsEnabled(FeatureStorePurchases))
	assert.True(t, ff.IsEnabled(FeatureSlidesGeneration))
}

func TestFeatureFlags_SetEnabled(t *testing.T) {
	ff := LoadFeatureFlags()

	require.NoError(t, ff.SetEnabled(FeatureSlidesGeneration, false))
	assert.False(t, ff.IsEnabled(FeatureSlidesGeneration))

	err := ff.SetEnabled("nope", true)
	var ffErr *FeatureFlagError
	require.ErrorAs(t, err, &ffErr)
	assert.Equal(t, "nope", ffErr.Feature)
}

func TestFeatureFlags_NilIsOff(t *testing.T) {
	var ff *FeatureFlags
	assert.False(t, ff.IsEnabled(FeatureSlidesGeneration))
}

func TestFeatureNameToEnvKey(t *testing.T) {
	assert.Equal(t, "FEATURE_SLIDES_GENERATION", featureNameToEnvKey(FeatureSlidesGeneration))
	assert.Equal(t, "FEATURE_CHAT_AUTO_REPLY", featureNameToEnvKey(FeatureChatAutoReply))
}
