package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagRate   = flag.Float64("rate", 0, "Animation bake rate in samples per second")
	flagFormat = flag.String("format", "", "Output format: binary or ascii")
	flagStrict = flag.Bool("strict", false, "Fail on unresolved scene references")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRate > 0 {
		cfg.Bake.SampleRate = *flagRate
	}
	if *flagFormat != "" {
		cfg.Write.Format = *flagFormat
	}
	if *flagStrict {
		cfg.Write.Strict = true
	}
}
