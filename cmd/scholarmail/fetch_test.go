package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwalczyk/scholarmail"
	main "github.com/mwalczyk/scholarmail/cmd/scholarmail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCmd(t *testing.T) {
	t.Run("missing credentials is an input error", func(t *testing.T) {
		t.Setenv("EMAIL_ACCOUNT", "")
		t.Setenv("EMAIL_APP_PASSWORD", "")

		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		out := filepath.Join(t.TempDir(), "papers.jsonl")
		err := m.Run(context.Background(), []string{"fetch", out}, strings.NewReader(""), &stdout, &stderr)

		require.Error(t, err)
		assert.Equal(t, scholarmail.EINVALID, scholarmail.ErrorCode(err))
		assert.Contains(t, stderr.String(), "EMAIL_APP_PASSWORD")
	})

	t.Run("unreachable mailbox is best effort", func(t *testing.T) {
		t.Setenv("EMAIL_ACCOUNT", "someone@example.com")
		t.Setenv("EMAIL_APP_PASSWORD", "app-password")

		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		out := filepath.Join(t.TempDir(), "papers.jsonl")
		err := m.Run(context.Background(), []string{"fetch", out, "--imap-host", "127.0.0.1", "--imap-port", "1"}, strings.NewReader(""), &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Mailbox unavailable")
		assert.NoFileExists(t, out)
	})

	t.Run("malformed date is rejected before dialing", func(t *testing.T) {
		t.Setenv("EMAIL_ACCOUNT", "someone@example.com")
		t.Setenv("EMAIL_APP_PASSWORD", "app-password")

		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		out := filepath.Join(t.TempDir(), "papers.jsonl")
		err := m.Run(context.Background(), []string{"fetch", out, "--date", "20-08-2026"}, strings.NewReader(""), &stdout, &stderr)

		require.Error(t, err)
		assert.Equal(t, scholarmail.EINVALID, scholarmail.ErrorCode(err))
	})
}
