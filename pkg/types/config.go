package types

import "time"

// ServerConfig holds settings for the interactive web shell.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxUploadBytes caps the size of an uploaded ebook (default 50 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// DownloadTTL is how long a converted artifact waits for its download
	// before it is discarded (default 10m).
	DownloadTTL time.Duration `json:"download_ttl" yaml:"download_ttl" mapstructure:"download_ttl"`

	// MaxPendingDownloads caps how many converted artifacts wait for their
	// download at once; the oldest is dropped first (default 16).
	MaxPendingDownloads int `json:"max_pending_downloads" yaml:"max_pending_downloads" mapstructure:"max_pending_downloads"`

	// DefaultOutputName pre-fills the output name field (default "converted_ebook").
	DefaultOutputName string `json:"default_output_name" yaml:"default_output_name" mapstructure:"default_output_name"`
}

// ConversionBackend selects where ebook-convert runs.
type ConversionBackend string

const (
	BackendLocal     ConversionBackend = "local"
	BackendContainer ConversionBackend = "container"
)

// ConversionConfig holds settings for the format dispatcher.
type ConversionConfig struct {
	// Backend selects the ebook-convert runner: local or container.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Binary is the ebook-convert executable used by the local backend.
	Binary string `json:"binary" yaml:"binary" mapstructure:"binary"`

	// Image is the container image used by the container backend. It must
	// provide ebook-convert on its PATH.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// TempDir is the parent for per-conversion workspaces. Empty means the
	// OS temp directory.
	TempDir string `json:"temp_dir" yaml:"temp_dir" mapstructure:"temp_dir"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console (default json).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for the converter.
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

const (
	DefaultAddr                = ":8080"
	DefaultMaxUploadBytes      = 50 << 20
	DefaultDownloadTTL         = 10 * time.Minute
	DefaultMaxPendingDownloads = 16
	DefaultOutputName          = "converted_ebook"
	DefaultBinary              = "ebook-convert"
	DefaultImage               = "lscr.io/linuxserver/calibre:latest"
)

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:                DefaultAddr,
			MaxUploadBytes:      DefaultMaxUploadBytes,
			DownloadTTL:         DefaultDownloadTTL,
			MaxPendingDownloads: DefaultMaxPendingDownloads,
			DefaultOutputName:   DefaultOutputName,
		},
		Conversion: ConversionConfig{
			Backend: BackendLocal,
			Binary:  DefaultBinary,
			Image:   DefaultImage,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
