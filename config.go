package main

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	Port        int            `json:"port"`
	Env         string         `json:"env"`
	Pepper      string         `json:"pepper"`
	SessionKey  string         `json:"session_key"`
	CSRFKey     string         `json:"csrf_key"`
	DisableCSRF bool           `json:"disable_csrf"`
	Database    PostgresConfig `json:"database"`
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

func DefaultConfig() Config {
	return Config{
		Port:       3000,
		Env:        "dev",
		Pepper:     "secret-random-string",
		SessionKey: "secret-session-key",
		CSRFKey:    "32-byte-long-auth-key-for-csrf!!",
		Database:   DefaultPostgresConfig(),
	}
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "warbler",
	}
}

// LoadConfig loads configuration from a .config.json file if present,
// otherwise it returns the default dev setup. In production the file is
// required, running prod on dev secrets must not happen silently.
func LoadConfig(prod bool) Config {
	f, err := os.Open(".config.json")
	if err != nil {
		if prod {
			panic("no .config.json found, refusing to start in production with default config")
		}
		return DefaultConfig()
	}
	defer f.Close()
	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		panic(err)
	}
	fmt.Println("Successfully loaded .config.json")
	return c
}
