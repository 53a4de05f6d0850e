package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, prevColor := out, color
	SetOutput(&buf)
	t.Cleanup(func() { out, color = prev, prevColor })
	return &buf
}

func TestPrintHelpersWithoutColor(t *testing.T) {
	buf := captureOutput(t)

	PrintError("fetch failed", errors.New("boom"))
	PrintInfo("Output", "data")
	PrintWarning("careful")

	assert.Equal(t, "fetch failed: boom\nOutput: data\ncareful\n", buf.String())
	assert.NotContains(t, buf.String(), "\033[")
}

type recordingSender struct {
	titles []string
	err    error
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	return r.err
}

func TestNotifier(t *testing.T) {
	buf := captureOutput(t)
	sender := &recordingSender{err: errors.New("no display")}
	n := NewNotifierWithSender(sender)

	n.SendSuccess("inatfetch", "3 images downloaded")
	n.SendError("inatfetch", "run failed")

	assert.Equal(t, []string{"inatfetch", "inatfetch"}, sender.titles)
	assert.Contains(t, buf.String(), "3 images downloaded")
	assert.NotContains(t, buf.String(), "run failed")
}

func TestNotificationScript(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		message string
		want    string
	}{
		{
			name:    "plain",
			title:   "inatfetch",
			message: "3 images downloaded",
			want:    `display notification "3 images downloaded" with title "inatfetch"`,
		},
		{
			name:    "quotes and backslashes",
			title:   `say "hi"`,
			message: `C:\images`,
			want:    `display notification "C:\\images" with title "say \"hi\""`,
		},
		{
			name:    "non-ascii is not escaped",
			title:   "inatfetch",
			message: "Zecken: 2 Bilder heruntergeladen, Größe 3 kB",
			want:    `display notification "Zecken: 2 Bilder heruntergeladen, Größe 3 kB" with title "inatfetch"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notificationScript(tt.title, tt.message))
		})
	}
}

func TestDownloadProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewDownloadProgress(3, &buf)

	p.Increment("downloaded")
	p.Increment("skipped")
	p.Increment("downloaded")
	require.NoError(t, p.Finish())

	assert.Equal(t, "2 downloaded, 1 skipped, 0 failed", p.Summary())
}
