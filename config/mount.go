package config

// MountOptions holds high-level settings for the optional read-only mount.
// No go-fuse types are exposed here.
type MountOptions struct {
	Debug      bool   // fuse debug logs
	FsName     string // mount's FsName
	Name       string // mount's Name
	MountPoint string // empty disables mounting
}
