package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server Server `yaml:"server"`

	Database Database `yaml:"database"`

	JWT JWT `yaml:"jwt"`

	Kitchen Kitchen `yaml:"kitchen"`
}

type Server struct {
	Address string `yaml:"address"`
	Mode    string `yaml:"mode"`
}

type JWT struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // In Hours
}

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type Kitchen struct {
	// MaxCapacity bounds how many orders the kitchen works at once.
	MaxCapacity int `yaml:"max_capacity"`
	// SweepInterval is how often the overdue/capacity sweep runs.
	SweepInterval time.Duration `yaml:"sweep_interval"`
	// CleanupInterval is how often expired notifications are purged.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

func Load() (*Config, error) {
	configPath := "configs/development.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Kitchen.MaxCapacity <= 0 {
		c.Kitchen.MaxCapacity = 20
	}
	if c.Kitchen.SweepInterval <= 0 {
		c.Kitchen.SweepInterval = 30 * time.Second
	}
	if c.Kitchen.CleanupInterval <= 0 {
		c.Kitchen.CleanupInterval = time.Hour
	}
}
