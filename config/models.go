package config

// Config holds the configuration of the application
// Use config.LoadConfig to create a new instance
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

type StoreConfig struct {
	Type   string       `mapstructure:"type"`
	Pebble PebbleConfig `mapstructure:"pebble"`
}

type PebbleConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}
