package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	PlayDuration          time.Duration
	ActionCooldown        time.Duration
	TimerTick             time.Duration
	FinishAfterTurns      int
	CorrectPoints         int
	WrongPoints           int
	JoinCodeAttempts      int
	ReconcileInterval     time.Duration
	FinishedRetention     time.Duration
	BroadcastWriteTimeout time.Duration
	DatabaseURL           string
	DBMaxOpenConns        int
	DBMaxIdleConns        int
	DBConnMaxLifetime     time.Duration
	DBConnMaxIdleTime     time.Duration
	AllowedOrigins        []string
	LogLevel              string
	LogFormat             string
}

func Default() Config {
	return Config{
		PlayDuration:          60 * time.Second,
		ActionCooldown:        800 * time.Millisecond,
		TimerTick:             time.Second,
		FinishAfterTurns:      0,
		CorrectPoints:         5,
		WrongPoints:           -2,
		JoinCodeAttempts:      10,
		ReconcileInterval:     30 * time.Second,
		FinishedRetention:     10 * time.Minute,
		BroadcastWriteTimeout: 5 * time.Second,
		DBMaxOpenConns:        10,
		DBMaxIdleConns:        10,
		DBConnMaxLifetime:     300 * time.Second,
		DBConnMaxIdleTime:     60 * time.Second,
		AllowedOrigins:        []string{"*"},
		LogLevel:              "info",
		LogFormat:             "console",
	}
}

// Load reads CHARADES_* environment variables over the defaults.
// DATABASE_URL is also honoured without the prefix.
func Load() Config {
	return FromViper(NewViper())
}

// NewViper returns a viper instance seeded with the defaults and bound to
// the CHARADES_ environment prefix, so command flags can be layered on top.
func NewViper() *viper.Viper {
	def := Default()
	v := viper.New()
	v.SetEnvPrefix("CHARADES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("play-duration", def.PlayDuration)
	v.SetDefault("action-cooldown", def.ActionCooldown)
	v.SetDefault("timer-tick", def.TimerTick)
	v.SetDefault("finish-after-turns", def.FinishAfterTurns)
	v.SetDefault("correct-points", def.CorrectPoints)
	v.SetDefault("wrong-points", def.WrongPoints)
	v.SetDefault("join-code-attempts", def.JoinCodeAttempts)
	v.SetDefault("reconcile-interval", def.ReconcileInterval)
	v.SetDefault("finished-retention", def.FinishedRetention)
	v.SetDefault("broadcast-write-timeout", def.BroadcastWriteTimeout)
	v.SetDefault("db-max-open-conns", def.DBMaxOpenConns)
	v.SetDefault("db-max-idle-conns", def.DBMaxIdleConns)
	v.SetDefault("db-conn-max-lifetime", def.DBConnMaxLifetime)
	v.SetDefault("db-conn-max-idle-time", def.DBConnMaxIdleTime)
	v.SetDefault("allowed-origins", strings.Join(def.AllowedOrigins, ","))
	v.SetDefault("log-level", def.LogLevel)
	v.SetDefault("log-format", def.LogFormat)
	_ = v.BindEnv("database-url", "CHARADES_DATABASE_URL", "DATABASE_URL")
	return v
}

func FromViper(v *viper.Viper) Config {
	cfg := Default()
	if value := v.GetDuration("play-duration"); value > 0 {
		cfg.PlayDuration = value
	}
	if value := v.GetDuration("action-cooldown"); value >= 0 {
		cfg.ActionCooldown = value
	}
	if value := v.GetDuration("timer-tick"); value >= 0 {
		cfg.TimerTick = value
	}
	if value := v.GetInt("finish-after-turns"); value >= 0 {
		cfg.FinishAfterTurns = value
	}
	cfg.CorrectPoints = v.GetInt("correct-points")
	cfg.WrongPoints = v.GetInt("wrong-points")
	if value := v.GetInt("join-code-attempts"); value > 0 {
		cfg.JoinCodeAttempts = value
	}
	if value := v.GetDuration("reconcile-interval"); value > 0 {
		cfg.ReconcileInterval = value
	}
	if value := v.GetDuration("finished-retention"); value > 0 {
		cfg.FinishedRetention = value
	}
	if value := v.GetDuration("broadcast-write-timeout"); value > 0 {
		cfg.BroadcastWriteTimeout = value
	}
	cfg.DatabaseURL = v.GetString("database-url")
	if value := v.GetInt("db-max-open-conns"); value > 0 {
		cfg.DBMaxOpenConns = value
	}
	if value := v.GetInt("db-max-idle-conns"); value > 0 {
		cfg.DBMaxIdleConns = value
	}
	if value := v.GetDuration("db-conn-max-lifetime"); value > 0 {
		cfg.DBConnMaxLifetime = value
	}
	if value := v.GetDuration("db-conn-max-idle-time"); value > 0 {
		cfg.DBConnMaxIdleTime = value
	}
	if raw := v.GetString("allowed-origins"); raw != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		if len(origins) > 0 {
			cfg.AllowedOrigins = origins
		}
	}
	if raw := v.GetString("log-level"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := v.GetString("log-format"); raw != "" {
		cfg.LogFormat = raw
	}
	return cfg
}
