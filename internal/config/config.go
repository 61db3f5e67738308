package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del cliente de chat.
type Config struct {
	APIURL      string `env:"CHAT_API_URL" envDefault:"http://localhost:8000"`
	UseContext  bool   `env:"CHAT_USE_CONTEXT" envDefault:"true"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE" envDefault:"chat_tui.log"`
	FakeAPIPort string `env:"FAKE_API_PORT" envDefault:"8000"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
