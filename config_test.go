package okailora_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okailora/okailora"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
[api]
url = "https://api.okailora.example"
timeout = "30s"

[monitor]
poll_interval = "500ms"
total_steps = 300
`)

	cfg, err := okailora.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.okailora.example", cfg.API.URL)
	assert.True(t, cfg.API.TLSVerification)
	assert.Equal(t, 30*time.Second, cfg.API.TimeoutDuration())
	assert.Equal(t, 500*time.Millisecond, cfg.Monitor.PollEvery())
	assert.Equal(t, 300, cfg.Monitor.TotalSteps)
	assert.Equal(t, 3, cfg.Monitor.TotalEpochs)
	assert.Equal(t, 100*time.Millisecond, cfg.Upload.ProgressEvery())
	assert.Equal(t, 2*time.Second, cfg.Monitor.ResourceEvery())
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		content string
	}{
		{name: "malformed toml", content: "[api\nurl ="},
		{name: "bad duration", content: "[monitor]\npoll_interval = \"soon\""},
		{name: "zero poll interval", content: "[monitor]\npoll_interval = \"0s\""},
		{name: "negative poll interval", content: "[monitor]\npoll_interval = \"-1s\""},
		{name: "empty resource interval", content: "[monitor]\nresource_interval = \"\""},
		{name: "zero progress interval", content: "[upload]\nprogress_interval = \"0s\""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := okailora.LoadConfig(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := okailora.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
