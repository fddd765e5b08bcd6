package chat

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the server settings. Every field can be set through the
// environment; cmd/server layers flag overrides on top.
type Config struct {
	Addr        string        `envconfig:"VCHAT_ADDR" default:":65432"`
	MetricsAddr string        `envconfig:"VCHAT_METRICS_ADDR" default:":9090"`
	MaxClients  int           `envconfig:"VCHAT_MAX_CLIENTS" default:"64"`
	OutBuffer   int           `envconfig:"VCHAT_OUT_BUFFER" default:"32"`
	SendTimeout time.Duration `envconfig:"VCHAT_SEND_TIMEOUT" default:"2s"`
	ServerName  string        `envconfig:"VCHAT_SERVER_NAME" default:"server"`
	ServerColor string        `envconfig:"VCHAT_SERVER_COLOR" default:"orange"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
