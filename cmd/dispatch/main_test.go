package main

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"galaxy-datagen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestFromEnv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     map[string]string
		want    *models.DispatchRequest
		wantErr bool
	}{
		{
			name: "full cgi environment",
			env: map[string]string{
				"QUERY_STRING":         "num_particles=5000&x=1",
				"REMOTE_USER":          "alice",
				"HTTP_X_FORWARDED_FOR": "1.2.3.4, 5.6.7.8",
				"REMOTE_ADDR":          "10.0.0.1",
			},
			want: &models.DispatchRequest{
				RawNumParticles: "5000",
				AuthUser:        "alice",
				ForwardedFor:    "1.2.3.4, 5.6.7.8",
				RemoteAddr:      "10.0.0.1",
			},
		},
		{
			name: "php auth user fallback",
			env: map[string]string{
				"QUERY_STRING":  "num_particles=%3Cb%3E",
				"PHP_AUTH_USER": "bob",
				"REMOTE_ADDR":   "10.0.0.2",
			},
			want: &models.DispatchRequest{
				RawNumParticles: "<b>",
				AuthUser:        "bob",
				RemoteAddr:      "10.0.0.2",
			},
		},
		{
			name: "empty environment",
			env:  map[string]string{},
			want: &models.DispatchRequest{},
		},
		{
			name: "malformed pair keeps the rest",
			env: map[string]string{
				"QUERY_STRING": "bad=%zz&num_particles=7",
			},
			want:    &models.DispatchRequest{RawNumParticles: "7"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := requestFromEnv(func(key string) string { return tt.env[key] })

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun_InvalidFlag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, run([]string{"--no-such-flag"}))
}

func TestRun_MissingConfig(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, run([]string{"--config", t.TempDir() + "/missing.yml"}))
}

func writeDispatchConfig(t *testing.T, dir string) (configPath, auditPath string) {
	t.Helper()

	auditPath = filepath.Join(dir, "log.txt")
	config := `server:
  port: 8080
  read_header_timeout: 5
  read_timeout: 10
  write_timeout: 10
  idle_timeout: 60
log:
  level: error
audit:
  path: ` + auditPath + `
  time_zone: UTC
generator:
  command: "true"
  work_dir: ` + dir + `
`
	configPath = filepath.Join(dir, "configs.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o600))
	return configPath, auditPath
}

func TestRun_ExitCodes(t *testing.T) {
	auditLinePattern := regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}: eve \(10\.0\.0\.9\) (.*)\n$`)

	tests := []struct {
		name         string
		queryString  string
		wantExitCode int
		wantPayload  string
	}{
		{name: "minimum", queryString: "num_particles=2", wantExitCode: 0, wantPayload: "2"},
		{name: "maximum", queryString: "num_particles=200000", wantExitCode: 0, wantPayload: "200000"},
		{name: "zero", queryString: "num_particles=0", wantExitCode: 1, wantPayload: "invalid request"},
		{name: "below minimum", queryString: "num_particles=1", wantExitCode: 1, wantPayload: "invalid request"},
		{name: "above maximum", queryString: "num_particles=200001", wantExitCode: 1, wantPayload: "invalid request"},
		{name: "non numeric", queryString: "num_particles=abc", wantExitCode: 1, wantPayload: "invalid request"},
		{name: "empty query", queryString: "", wantExitCode: 1, wantPayload: "invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath, auditPath := writeDispatchConfig(t, t.TempDir())
			t.Setenv("QUERY_STRING", tt.queryString)
			t.Setenv("REMOTE_ADDR", "10.0.0.9")
			t.Setenv("REMOTE_USER", "eve")
			t.Setenv("HTTP_X_FORWARDED_FOR", "")

			exitCode := run([]string{"--config", configPath})

			assert.Equal(t, tt.wantExitCode, exitCode)

			content, err := os.ReadFile(auditPath)
			require.NoError(t, err)
			match := auditLinePattern.FindStringSubmatch(string(content))
			require.NotNil(t, match, "unexpected audit log %q", string(content))
			assert.Equal(t, tt.wantPayload, match[1])
		})
	}
}
