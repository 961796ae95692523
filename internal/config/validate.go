package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

var (
	providers    = []string{"google", "anthropic", "freedict", "chain"}
	segmentModes = []string{"auto", "on", "off"}
	logFormats   = []string{"text", "json"}
)

// Validate checks the loaded configuration and fills derived fields. Load
// calls it automatically.
func (c *Config) Validate() error {
	c.Lookup.Provider = strings.ToLower(strings.TrimSpace(c.Lookup.Provider))
	if !slices.Contains(providers, c.Lookup.Provider) {
		return fmt.Errorf("lookup.provider must be one of %s (got %q)", strings.Join(providers, ", "), c.Lookup.Provider)
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.Lookup.TimeoutRaw))
	if err != nil {
		return fmt.Errorf("lookup.timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("lookup.timeout must be > 0 (got %s)", d)
	}
	c.Lookup.Timeout = d
	if c.Lookup.Provider == "anthropic" && c.Lookup.Anthropic.APIKey == "" {
		return fmt.Errorf("lookup.anthropic.api_key is required for the anthropic provider")
	}

	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(StateDir(), "glossr.log")
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(DataDir(), "glossr.db")
	}

	if c.Languages.Study == "" || c.Languages.Translation == "" {
		return fmt.Errorf("languages.study and languages.translation must be set")
	}

	if c.Popover.Offset < 0 || c.Popover.Margin < 0 {
		return fmt.Errorf("popover.offset and popover.margin must be >= 0")
	}
	if c.Popover.Width < 12 {
		return fmt.Errorf("popover.width must be >= 12 (got %d)", c.Popover.Width)
	}

	c.Reader.Segment = strings.ToLower(c.Reader.Segment)
	if !slices.Contains(segmentModes, c.Reader.Segment) {
		return fmt.Errorf("reader.segment must be auto, on or off (got %q)", c.Reader.Segment)
	}
	return nil
}
