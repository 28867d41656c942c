// Package config handles converter configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Bake    BakeConfig    `yaml:"bake"`
	Write   WriteConfig   `yaml:"write"`
	Logging LoggingConfig `yaml:"logging"`
}

// BakeConfig holds animation resampling settings.
type BakeConfig struct {
	SampleRate float64 `yaml:"sample_rate"` // Samples per second
}

// WriteConfig holds output settings for the save direction.
type WriteConfig struct {
	Format  string `yaml:"format"` // "binary" or "ascii"
	Strict  bool   `yaml:"strict"` // Fail on unresolved references
	Version int    `yaml:"version"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Bake: BakeConfig{
			SampleRate: 30,
		},
		Write: WriteConfig{
			Format:  "binary",
			Strict:  false,
			Version: 7400,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
