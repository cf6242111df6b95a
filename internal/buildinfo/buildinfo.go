// Package buildinfo exposes the build identity stamped in via ldflags.
package buildinfo

var (
    Version = "dev"
    Commit  = ""
    BuiltAt = ""
)

// Info returns the build identity for the debug endpoint.
func Info() map[string]string {
    return map[string]string{
        "version": Version,
        "commit":  Commit,
        "builtAt": BuiltAt,
    }
}
