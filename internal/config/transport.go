// Package config loads the deployment-specific transport configuration of
// the scanner: the bot service endpoint for the HTTP transport and broker
// plus topic layout for the Kafka transport.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TransportConfig holds endpoint configuration for both notification
// transports. Only the section matching the selected transport is required.
type TransportConfig struct {
	HTTP struct {
		// BotAPIURL is the base URL of the downstream bot service
		BotAPIURL string `yaml:"bot_api_url"`
	} `yaml:"http"`

	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		TopicUpdates string   `yaml:"topic_updates"`
		TopicDigest  string   `yaml:"topic_digest"`
		TopicDLQ     string   `yaml:"topic_dlq"`
	} `yaml:"kafka"`
}

// defaults applied when optional fields are omitted
const (
	defaultTopicUpdates = "topic_updates"
	defaultTopicDigest  = "topic_digest"
	defaultTopicDLQ     = "bot_dlq"
)

// DefaultTransportConfig returns an empty configuration with topic defaults
// applied, for deployments that configure endpoints via environment overrides
// instead of a YAML file.
func DefaultTransportConfig() *TransportConfig {
	var config TransportConfig
	config.applyDefaults()
	return &config
}

// LoadTransportConfig loads transport configuration from a YAML file.
// The path comes from a trusted source (CLI argument or hardcoded default).
func LoadTransportConfig(path string) (*TransportConfig, error) {
	// #nosec G304 -- path is provided by trusted source (CLI arg or config), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config TransportConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *TransportConfig) applyDefaults() {
	if c.Kafka.TopicUpdates == "" {
		c.Kafka.TopicUpdates = defaultTopicUpdates
	}
	if c.Kafka.TopicDigest == "" {
		c.Kafka.TopicDigest = defaultTopicDigest
	}
	if c.Kafka.TopicDLQ == "" {
		c.Kafka.TopicDLQ = defaultTopicDLQ
	}
}

// ValidateForHTTP checks the fields the HTTP transport needs.
func (c *TransportConfig) ValidateForHTTP() error {
	if c.HTTP.BotAPIURL == "" {
		return fmt.Errorf("http.bot_api_url is required for the HTTP transport")
	}
	return nil
}

// ValidateForKafka checks the fields the Kafka transport needs.
func (c *TransportConfig) ValidateForKafka() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required for the KAFKA transport")
	}
	return nil
}
