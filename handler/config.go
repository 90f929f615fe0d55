package handler

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultHost          = "127.0.0.1"
	DefaultListenPort    = 17725
	DefaultConnectorPort = 17726
	DefaultBufferSize    = 4096
	DefaultBacklog       = 1
)

// InputMode selects how a typed line becomes bytes on the wire.
type InputMode int

const (
	// InputText sends the line verbatim.
	InputText InputMode = iota
	// InputHex parses the line as hex byte pairs.
	InputHex
)

func (m InputMode) String() string {
	switch m {
	case InputText:
		return "text"
	case InputHex:
		return "hex"
	}
	return fmt.Sprintf("InputMode(%d)", int(m))
}

// Set implements flag.Value.
func (m *InputMode) Set(s string) error {
	switch strings.ToLower(s) {
	case "text":
		*m = InputText
	case "hex":
		*m = InputHex
	default:
		return errors.Errorf("unknown input mode %q (want text or hex)", s)
	}
	return nil
}

type ConnConfig struct {
	BufferSize int
	InputMode  InputMode
}

func newConnConfig() *ConnConfig {
	return &ConnConfig{
		BufferSize: DefaultBufferSize,
		InputMode:  InputText,
	}
}

func (c *ConnConfig) validate() error {
	if c.BufferSize <= 0 {
		return errors.Errorf("buffer size must be positive, got %d", c.BufferSize)
	}
	if c.InputMode != InputText && c.InputMode != InputHex {
		return errors.Errorf("unknown input mode %v", c.InputMode)
	}
	return nil
}

type ListenerConfig struct {
	*ConnConfig
	Host    string
	Port    int
	Backlog int
	// SendOnly leaves the socket unwatched; inbound bytes are never displayed.
	SendOnly bool
}

func NewListenerConfig() *ListenerConfig {
	return &ListenerConfig{
		ConnConfig: newConnConfig(),
		Host:       DefaultHost,
		Port:       DefaultListenPort,
		Backlog:    DefaultBacklog,
	}
}

func (c *ListenerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate accepts port 0, which binds an ephemeral port.
func (c *ListenerConfig) Validate() error {
	if err := c.ConnConfig.validate(); err != nil {
		return err
	}
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("port out of range: %d", c.Port)
	}
	if c.Backlog < 1 {
		return errors.Errorf("backlog must be at least 1, got %d", c.Backlog)
	}
	return nil
}

type ConnectorConfig struct {
	*ConnConfig
	Host string
	Port int
}

func NewConnectorConfig() *ConnectorConfig {
	return &ConnectorConfig{
		ConnConfig: newConnConfig(),
		Host:       DefaultHost,
		Port:       DefaultConnectorPort,
	}
}

func (c *ConnectorConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ConnectorConfig) Validate() error {
	if err := c.ConnConfig.validate(); err != nil {
		return err
	}
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port out of range: %d", c.Port)
	}
	return nil
}
