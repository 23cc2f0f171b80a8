package cli

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata injected via ldflags. Plain `go install` builds never
// set these, so the version command falls back to the VCS stamp the
// toolchain embeds in the binary.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of spsmon.`,
	Run: func(cmd *cobra.Command, args []string) {
		meta := currentBuild()
		if versionShort {
			cmd.Println(meta.version)
			return
		}
		meta.render(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}

// buildMeta is everything the version command reports about the binary.
type buildMeta struct {
	version string
	commit  string
	date    string
}

// currentBuild merges ldflags metadata with the toolchain's embedded
// build info. ldflags win when set; otherwise vcs.revision and
// vcs.time fill in the commit and date.
func currentBuild() buildMeta {
	meta := buildMeta{version: version, commit: commit, date: date}
	if meta.commit != "none" && meta.date != "unknown" {
		return meta
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return meta
	}
	var rev, when string
	dirty := false
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.time":
			when = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if meta.commit == "none" && rev != "" {
		meta.commit = rev
		if dirty {
			meta.commit += "-dirty"
		}
	}
	if meta.date == "unknown" && when != "" {
		meta.date = when
	}
	return meta
}

func (m buildMeta) render(w io.Writer) {
	fmt.Fprintf(w, "spsmon %s\n", formatVersion(m.version))
	fmt.Fprintf(w, "  commit:  %s\n", m.commit)
	fmt.Fprintf(w, "  built:   %s\n", m.date)
	fmt.Fprintf(w, "  go:      %s\n", runtime.Version())
	fmt.Fprintf(w, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// formatVersion gives release versions a v prefix; dev builds stay bare.
func formatVersion(v string) string {
	if v == "" || v == "dev" {
		return v
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}

// SetVersionInfo stores the ldflags metadata. Called from main before
// Execute.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
