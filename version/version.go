// Package version reports build metadata injected with -ldflags -X.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

var (
	BuildTS   = "None"
	GitHash   = "None"
	GitBranch = "None"
	Version   = "None"
)

// GetVersion is Version with the short commit hash, falling back to the
// module version recorded by the go tool.
func GetVersion() string {
	v := Version
	if v == "None" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
			v = info.Main.Version
		}
	}
	if GitHash != "" && GitHash != "None" {
		h := GitHash
		if len(h) > 7 {
			h = h[:7]
		}
		return fmt.Sprintf("%s-%s", v, h)
	}
	return v
}

func Fprint(w io.Writer) {
	fmt.Fprintln(w, "Version:          ", GetVersion())
	fmt.Fprintln(w, "Git Branch:       ", GitBranch)
	fmt.Fprintln(w, "Git Hash:         ", GitHash)
	fmt.Fprintln(w, "Build Time (UTC): ", BuildTS)
	fmt.Fprintln(w, "Go:               ", runtime.Version())
}
