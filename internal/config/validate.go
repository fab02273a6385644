package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGemini() error {
	if c.Gemini.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/newsdesk/config.toml"
		}
		return fmt.Errorf("gemini.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'newsdesk config init')", defaultPath)
	}
	if _, err := url.ParseRequestURI(c.Gemini.BaseURL); err != nil {
		return fmt.Errorf("gemini.base_url is not a valid URL: %w", err)
	}
	return nil
}

func (c *Config) validateIngest() error {
	for _, feed := range c.Ingest.Feeds {
		parsed, err := url.Parse(feed)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("ingest.feeds entry %q is not a valid URL", feed)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("ingest.feeds entry %q must use http or https", feed)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
	return nil
}
