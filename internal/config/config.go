// Package config loads glossr settings from a TOML file and the environment.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Storage   StorageConfig   `toml:"storage"`
	Lookup    LookupConfig    `toml:"lookup"`
	Languages LanguagesConfig `toml:"languages"`
	Popover   PopoverConfig   `toml:"popover"`
	Reader    ReaderConfig    `toml:"reader"`
}

// LogConfig holds logging settings. An empty File means the default log
// file under the state directory.
type LogConfig struct {
	Level  string `toml:"level"  env:"GLOSSR_LOG_LEVEL"  env-default:"info"`
	Format string `toml:"format" env:"GLOSSR_LOG_FORMAT" env-default:"text"`
	File   string `toml:"file"   env:"GLOSSR_LOG_FILE"`
}

// StorageConfig holds the sqlite database location.
type StorageConfig struct {
	Path string `toml:"path" env:"GLOSSR_DB"`
}

// LookupConfig selects and tunes the translation provider.
type LookupConfig struct {
	Provider    string          `toml:"provider"     env:"GLOSSR_PROVIDER"     env-default:"google"`
	TimeoutRaw  string          `toml:"timeout"      env:"GLOSSR_TIMEOUT"      env-default:"10s"`
	FreeDictURL string          `toml:"freedict_url" env:"GLOSSR_FREEDICT_URL"`
	Anthropic   AnthropicConfig `toml:"anthropic"`

	// Timeout is parsed from TimeoutRaw during validation.
	Timeout time.Duration `toml:"-" env:"-"`
}

// AnthropicConfig configures the Claude-backed provider.
type AnthropicConfig struct {
	Model   string `toml:"model"    env:"GLOSSR_ANTHROPIC_MODEL" env-default:"claude-3-5-haiku-latest"`
	APIKey  string `toml:"api_key"  env:"ANTHROPIC_API_KEY"`
	BaseURL string `toml:"base_url" env:"ANTHROPIC_BASE_URL"`
}

// LanguagesConfig is the initial language pair. Study is the language being
// read; Translation is the language answers are given in.
type LanguagesConfig struct {
	Study       string `toml:"study"       env:"GLOSSR_STUDY_LANG"       env-default:"es"`
	Translation string `toml:"translation" env:"GLOSSR_TRANSLATION_LANG" env-default:"en"`
}

// PopoverConfig controls popover geometry, in terminal cells.
type PopoverConfig struct {
	Offset int `toml:"offset" env:"GLOSSR_POPOVER_OFFSET" env-default:"1"`
	Margin int `toml:"margin" env:"GLOSSR_POPOVER_MARGIN" env-default:"1"`
	Width  int `toml:"width"  env:"GLOSSR_POPOVER_WIDTH"  env-default:"36"`
}

// ReaderConfig holds tokenizer options.
type ReaderConfig struct {
	Segment string `toml:"segment" env:"GLOSSR_SEGMENT" env-default:"auto"`
}
