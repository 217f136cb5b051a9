package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/ebook-converter/pkg/types"
)

// envKeyReplacer maps nested keys to environment names, so server.addr
// is read from EBOOK_CONVERTER_SERVER_ADDR.
var envKeyReplacer = strings.NewReplacer(".", "_")

// setDefaults registers every configuration key with its default. Keys must
// be known to viper for AutomaticEnv to resolve them during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("server.download_ttl", d.Server.DownloadTTL)
	v.SetDefault("server.max_pending_downloads", d.Server.MaxPendingDownloads)
	v.SetDefault("server.default_output_name", d.Server.DefaultOutputName)

	v.SetDefault("conversion.backend", string(d.Conversion.Backend))
	v.SetDefault("conversion.binary", d.Conversion.Binary)
	v.SetDefault("conversion.image", d.Conversion.Image)
	v.SetDefault("conversion.temp_dir", d.Conversion.TempDir)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// loadConfig decodes v into a Config. Bound flags left empty fall back to
// the defaults.
func loadConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	d := types.DefaultConfig()
	if cfg.Conversion.Backend == "" {
		cfg.Conversion.Backend = d.Conversion.Backend
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = d.Server.Addr
	}
	return cfg, nil
}
