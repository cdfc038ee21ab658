package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Addr            string
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		SessionTTL      time.Duration
		SecureCookies   bool
		DisableReqLogs  bool
	}

	// APIConfig describes the school REST API the portal is a front end for.
	APIConfig struct {
		BaseURL  string
		Token    string
		Timeout  time.Duration
		PageSize int
		Stub     bool // serve an in-memory API instead of calling BaseURL
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		RollbarToken string
		WorkDir      string
		Server       ServerConfig
		API          APIConfig
		Redis        RedisConfig
	}
)

// NewConfig loads the configuration from the environment (and from `config/.env.<env>` if it exists).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Masomo")
	conf.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("server.addr", ":8080")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.sessionTTL", 8*time.Hour)
	conf.SetDefault("server.secureCookies", false)
	conf.SetDefault("server.disableReqLogs", false)
	conf.SetDefault("api.baseURL", "http://localhost:8000/api")
	conf.SetDefault("api.token", "")
	conf.SetDefault("api.timeout", 15*time.Second)
	conf.SetDefault("api.pageSize", 10)
	conf.SetDefault("api.stub", false)
	conf.SetDefault("redis.addr", "")
	conf.SetDefault("redis.password", "")
	conf.SetDefault("redis.db", 0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Addr:            conf.GetString("server.addr"),
			Host:            conf.GetString("server.host"),
			DebugHost:       conf.GetString("server.debugHost"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
			SessionTTL:      conf.GetDuration("server.sessionTTL"),
			SecureCookies:   conf.GetBool("server.secureCookies"),
			DisableReqLogs:  conf.GetBool("server.disableReqLogs"),
		},
		API: APIConfig{
			BaseURL:  strings.TrimRight(conf.GetString("api.baseURL"), "/"),
			Token:    conf.GetString("api.token"),
			Timeout:  conf.GetDuration("api.timeout"),
			PageSize: conf.GetInt("api.pageSize"),
			Stub:     conf.GetBool("api.stub"),
		},
		Redis: RedisConfig{
			Addr:     conf.GetString("redis.addr"),
			Password: conf.GetString("redis.password"),
			DB:       conf.GetInt("redis.db"),
		},
	}
}
