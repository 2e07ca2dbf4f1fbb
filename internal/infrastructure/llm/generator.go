package llm

import (
	"fmt"
	"strings"

	"StarlinkWatch/internal/config"
	"StarlinkWatch/internal/ports"
)

// NewGenerator picks the backend named by digest.provider.
func NewGenerator(cfg config.DigestConfig) (ports.DigestGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openai":
		return NewChatGPTClient(cfg), nil
	case "anthropic":
		client, err := NewAnthropicClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown digest provider %q", cfg.Provider)
	}
}
