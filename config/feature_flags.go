package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles. Defaults are overridden by
// FEATURE_<NAME> environment variables, e.g. FEATURE_SLIDES_GENERATION=false.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool
}

// Predefined feature flag names.
const (
	FeatureSlidesGeneration  = "slides.generation"  // Simulated slide decks
	FeatureChatAutoReply     = "chat.auto_reply"    // Scripted teacher reply to parents
	FeatureStorePurchases    = "store.purchases"    // Rewards store
	FeatureLeaderboardMirror = "leaderboard.mirror" // Mirror ranking to Redis
	FeatureToastBroadcast    = "toasts.broadcast"   // Publish toasts on Redis pub/sub
	FeatureOperationReplay   = "operations.replay"  // Raw operation endpoint
)

// LoadFeatureFlags returns the defaults with environment overrides applied.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{features: make(map[string]*Feature)}
	ff.initializeDefaults()
	ff.loadFromEnvironment()
	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	defaults := []Feature{
		{Name: FeatureSlidesGeneration, Description: "Generate slide decks for lessons", Enabled: true},
		{Name: FeatureChatAutoReply, Description: "Scripted teacher reply to parent messages", Enabled: true},
		{Name: FeatureStorePurchases, Description: "Spend points in the rewards store", Enabled: true},
		{Name: FeatureLeaderboardMirror, Description: "Mirror the leaderboard to Redis", Enabled: true},
		{Name: FeatureToastBroadcast, Description: "Publish toasts on Redis pub/sub", Enabled: false},
		{Name: FeatureOperationReplay, Description: "Apply named engine operations over HTTP", Enabled: false},
	}
	for i := range defaults {
		f := defaults[i]
		ff.features[f.Name] = &f
	}
}

func (ff *FeatureFlags) loadFromEnvironment() {
	for name, f := range ff.features {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}
		if b, err := strconv.ParseBool(val); err == nil {
			f.Enabled = b
		}
	}
}

// featureNameToEnvKey converts "slides.generation" to "FEATURE_SLIDES_GENERATION".
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(name))
	return "FEATURE_" + key
}

// IsEnabled reports whether a feature is on. Unknown features are off.
func (ff *FeatureFlags) IsEnabled(name string) bool {
	if ff == nil {
		return false
	}
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	f, ok := ff.features[name]
	return ok && f.Enabled
}

// SetEnabled toggles a feature at runtime.
func (ff *FeatureFlags) SetEnabled(name string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	f, ok := ff.features[name]
	if !ok {
		return &FeatureFlagError{Feature: name, Message: "feature not found"}
	}
	f.Enabled = enabled
	return nil
}

// Names returns all known feature names, sorted.
func (ff *FeatureFlags) Names() []string {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	names := make([]string, 0, len(ff.features))
	for name := range ff.features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Feature string
	Message string
}

func (e *FeatureFlagError) Error() string {
	return "feature flag " + e.Feature + ": " + e.Message
}
