package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), ".env"))

	assert.Equal(t, "gemini", c.AIProvider)
	assert.Equal(t, "gemini-2.5-flash", c.GeminiModel)
	assert.Equal(t, 3, c.RetryAttempts)
	assert.Equal(t, 2*time.Second, c.RetryDelay)
	assert.Equal(t, 90*time.Second, c.AITimeout)
	assert.Equal(t, "Asia/Tashkent", c.Timezone)
	assert.Equal(t, 6, c.ScheduleFromHour)
	assert.Equal(t, 22, c.ScheduleToHour)
	assert.True(t, c.AISearch)
}

func TestLoadFileEnvAndDotenv(t *testing.T) {
	dir := t.TempDir()

	hcl := filepath.Join(dir, "config.hcl")
	require.NoError(t, os.WriteFile(hcl, []byte(`
site_url = "https://trendoai.uz"
gemini_model = "gemini-2.5-pro"
retry_delay = "500ms"
categories = ["Texnologiya", "Web"]
`), 0o600))

	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("TRENDO_CRON_SECRET=from-dotenv\n"), 0o600))

	t.Setenv("TRENDO_GEMINI_MODEL", "gemini-from-env")
	t.Setenv("TRENDO_CRON_SECRET", "")
	require.NoError(t, os.Unsetenv("TRENDO_CRON_SECRET"))

	c := Load(env, hcl)

	assert.Equal(t, "https://trendoai.uz", c.SiteURL)
	assert.Equal(t, 500*time.Millisecond, c.RetryDelay)
	assert.Equal(t, []string{"Texnologiya", "Web"}, c.Categories)
	// переменные окружения важнее файла
	assert.Equal(t, "gemini-from-env", c.GeminiModel)
	assert.Equal(t, "from-dotenv", c.CronSecret)
}
