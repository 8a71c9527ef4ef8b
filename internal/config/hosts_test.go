package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHosts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadHosts(t *testing.T) {
	path := writeHosts(t, `
hosts:
  - name: gerrit-main
    url: https://gerrit.example.com/
    username: jroe
    password: hunter2
  - name: gerrit-oss
    url: http://oss-review.example.org
`)

	hosts, err := LoadHosts(path)
	require.NoError(t, err)
	require.Len(t, hosts, 2)

	assert.Equal(t, "gerrit-main", hosts[0].Name)
	assert.Equal(t, "https://gerrit.example.com", hosts[0].URL, "trailing slash is trimmed")
	assert.Equal(t, "jroe", hosts[0].Username)
	assert.Equal(t, "hunter2", hosts[0].Password)
	assert.Equal(t, "gerrit-oss", hosts[1].Name)
}

func TestLoadHostsEmptyList(t *testing.T) {
	hosts, err := LoadHosts(writeHosts(t, "hosts: []\n"))
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestLoadHostsValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "hosts:\n  - url: https://x.example.com\n"},
		{"duplicate name", "hosts:\n  - name: a\n    url: https://x.example.com\n  - name: a\n    url: https://y.example.com\n"},
		{"bad url", "hosts:\n  - name: a\n    url: not-a-url\n"},
		{"bad scheme", "hosts:\n  - name: a\n    url: ftp://x.example.com\n"},
		{"not yaml", "{{{{\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadHosts(writeHosts(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadHostsMissingFile(t *testing.T) {
	_, err := LoadHosts(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
