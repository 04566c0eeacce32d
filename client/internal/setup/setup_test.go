package setup

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/confessions/shared/config"
)

func testConfig(t *testing.T, cooldown string) *config.Config {
	return &config.Config{Public: config.Public{
		ApiURL:         "http://127.0.0.1:1",
		RequestTimeout: time.Second,
		StatePath:      filepath.Join(t.TempDir(), "nested", "state.db"),
		SubmitCooldown: cooldown,
		MaxBodyWords:   300,
		MaxTitleLength: 120,
		VoteDebounce:   300 * time.Millisecond,
	}}
}

func TestSetupDependencies(t *testing.T) {
	deps, err := SetupDependencies(testConfig(t, "calendar_day"))
	require.NoError(t, err)

	assert.True(t, deps.Limiter.Window().CalendarDay)
	assert.NotNil(t, deps.Board)
	assert.NoError(t, deps.Close(context.Background()))
}

func TestSetupDependencies_BadCooldown(t *testing.T) {
	_, err := SetupDependencies(testConfig(t, "whenever"))
	assert.Error(t, err)
}
