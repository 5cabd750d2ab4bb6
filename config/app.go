package config

import (
	"os"
	"sync"
)

// AppConfig holds global application configuration.
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName  string
	Port     string
	Env      string
	Debug    bool
	MediaDir string
}

// LoadAppConfig initializes the global AppConfig variable.
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName:  GetEnv("APP_NAME", "partstrack"),
			Port:     GetEnv("PORT", "8080"),
			Env:      os.Getenv("APP_ENV"),
			Debug:    os.Getenv("DEBUG") == "true",
			MediaDir: GetEnv("MEDIA_DIR", "media/parts"),
		}
	})
}
