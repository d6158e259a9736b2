package prf

var (
	Version = "v0.0.0-in-progress"
	Commit  = "unknown"
)

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// BuildCommit returns the VCS revision recorded at build time, or "unknown".
func BuildCommit() string {
	return Commit
}
