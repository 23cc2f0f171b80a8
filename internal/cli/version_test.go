package cli

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func stashVersionInfo(t *testing.T) {
	t.Helper()
	v, c, d := version, commit, date
	t.Cleanup(func() {
		version, commit, date = v, c, d
	})
}

func TestBuildMetaRender(t *testing.T) {
	meta := buildMeta{version: "1.2.3", commit: "abc1234", date: "2025-01-08T12:00:00Z"}

	var buf bytes.Buffer
	meta.render(&buf)

	out := buf.String()
	assert.Contains(t, out, "spsmon v1.2.3")
	assert.Contains(t, out, "commit:  abc1234")
	assert.Contains(t, out, "built:   2025-01-08T12:00:00Z")
	assert.Contains(t, out, "go:      "+runtime.Version())
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestCurrentBuildPrefersLdflags(t *testing.T) {
	stashVersionInfo(t)
	SetVersionInfo("9.9.9", "deadbeef", "2025-06-01")

	meta := currentBuild()

	assert.Equal(t, "9.9.9", meta.version)
	assert.Equal(t, "deadbeef", meta.commit)
	assert.Equal(t, "2025-06-01", meta.date)
}

func TestVersionRunShort(t *testing.T) {
	stashVersionInfo(t)
	SetVersionInfo("2.0.0", "abc1234", "2025-01-08")

	versionShort = true
	defer func() { versionShort = false }()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	versionCmd.Run(cmd, nil)

	assert.Equal(t, "2.0.0", strings.TrimSpace(buf.String()))
}

func TestVersionRunFull(t *testing.T) {
	stashVersionInfo(t)
	SetVersionInfo("1.2.3", "abc1234", "2025-01-08T12:00:00Z")

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	versionCmd.Run(cmd, nil)

	out := buf.String()
	assert.Contains(t, out, "spsmon v1.2.3")
	assert.Contains(t, out, "commit:  abc1234")
	assert.Contains(t, out, "built:   2025-01-08T12:00:00Z")
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "dev stays bare",
			input: "dev",
			want:  "dev",
		},
		{
			name:  "empty stays empty",
			input: "",
			want:  "",
		},
		{
			name:  "bare version gets v prefix",
			input: "1.2.3",
			want:  "v1.2.3",
		},
		{
			name:  "prefixed version unchanged",
			input: "v1.2.3",
			want:  "v1.2.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.input))
		})
	}
}

func TestSetVersionInfo(t *testing.T) {
	stashVersionInfo(t)

	SetVersionInfo("9.9.9", "deadbeef", "2025-06-01")

	assert.Equal(t, "9.9.9", version)
	assert.Equal(t, "deadbeef", commit)
	assert.Equal(t, "2025-06-01", date)
}
