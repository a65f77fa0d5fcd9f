package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port            int           `envconfig:"port" default:"8082"`
	MySQLDSN        string        `envconfig:"mysql_dsn"`
	JWTSecret       string        `envconfig:"jwt_secret"`
	AccessTokenTTL  time.Duration `envconfig:"access_token_ttl" default:"30m"`
	RefreshTokenTTL time.Duration `envconfig:"refresh_token_ttl" default:"168h"`
	AWSRegion       string        `envconfig:"aws_region"`
	AWSBucket       string        `envconfig:"aws_bucket"`
	AWSAccessKey    string        `envconfig:"aws_access_key_id"`
	AWSSecretKey    string        `envconfig:"aws_secret_access_key"`
	AllowOrigins    []string      `envconfig:"allow_origins" default:"*"`
}

// 全局配置实例
var C *Config

// Load 加载环境变量配置
func Load() (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Printf("couldn't load .env file: %v", err)
		}
	}

	c := &Config{}
	if err := envconfig.Process("chatapp", c); err != nil {
		return nil, err
	}
	C = c
	return c, nil
}
