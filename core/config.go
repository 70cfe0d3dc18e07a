package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		WorkDir          string
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string
		Server           ServerConfig
		Database         DatabaseConfig
		Feed             FeedConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugHost          string
		ReadTimeout        time.Duration
		WriteTimeout       time.Duration
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		DisableReqLogs     bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | dummy
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// FeedConfig holds the defaults of the notification feeds.
	FeedConfig struct {
		Timezone            string        `validate:"omitempty,timezone"`
		UpcomingMinutes     int           `validate:"min=0"`
		NextMinutes         int           `validate:"min=0"`
		StudentLookbackDays int           `validate:"min=0"`
		ParentLookbackDays  int           `validate:"min=0"`
		StudentLimit        int           `validate:"min=0"`
		ParentLimit         int           `validate:"min=0"`
		EditGuard           time.Duration `validate:"min=0"`
		QueryTimeout        time.Duration `validate:"min=0"`
		MaxConcurrency      int           `validate:"min=0"`
	}
)

func (c DatabaseConfig) Address() string {
	if c.Port == "" {
		return c.Host
	}
	return net.JoinHostPort(c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Masomo")
	v.SetDefault("secretKey", "m4s0m0-n0t1fy-d3v-k3y-ch4ng3-m3-1n-pr0d")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "Masomo <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "masomo")
	v.SetDefault("database.user", "masomo")
	v.SetDefault("database.password", "masomo")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("feed.timezone", "Africa/Kinshasa")
	v.SetDefault("feed.upcomingMinutes", 30)
	v.SetDefault("feed.nextMinutes", 120)
	v.SetDefault("feed.studentLookbackDays", 1)
	v.SetDefault("feed.parentLookbackDays", 3)
	v.SetDefault("feed.studentLimit", 8)
	v.SetDefault("feed.parentLimit", 20)
	v.SetDefault("feed.editGuard", time.Minute)
	v.SetDefault("feed.queryTimeout", 3*time.Second)
	v.SetDefault("feed.maxConcurrency", 4)
}

// NewConfig loads the configuration of the current environment (ENV: DEV (default), TEST, QA, PROD).
// Values are read from "<ENV>_" prefixed env vars, optionally loaded from config/.env.<env>.
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := os.Getenv("WORKDIR")
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "getting work dir")
		}
		workDir = wd
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing defaultFromEmail")
	}

	conf := &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		WorkDir:          workDir,
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: *from,
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugHost:          v.GetString("server.debugHost"),
			ReadTimeout:        v.GetDuration("server.readTimeout"),
			WriteTimeout:       v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			DisableReqLogs:     v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Feed: FeedConfig{
			Timezone:            v.GetString("feed.timezone"),
			UpcomingMinutes:     v.GetInt("feed.upcomingMinutes"),
			NextMinutes:         v.GetInt("feed.nextMinutes"),
			StudentLookbackDays: v.GetInt("feed.studentLookbackDays"),
			ParentLookbackDays:  v.GetInt("feed.parentLookbackDays"),
			StudentLimit:        v.GetInt("feed.studentLimit"),
			ParentLimit:         v.GetInt("feed.parentLimit"),
			EditGuard:           v.GetDuration("feed.editGuard"),
			QueryTimeout:        v.GetDuration("feed.queryTimeout"),
			MaxConcurrency:      v.GetInt("feed.maxConcurrency"),
		},
	}
	return conf, nil
}

// NewTestConfig returns the configuration used by tests: debug on, no request logs, dummy database.
func NewTestConfig() *Config {
	return &Config{
		Env:              "TEST",
		Build:            "test",
		Debug:            true,
		TestMode:         true,
		AppName:          "Masomo",
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Masomo", Address: "noreply@test.cd"},
		Server: ServerConfig{
			Address:            ":0",
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: time.Hour,
			DisableReqLogs:     true,
		},
		Database: DatabaseConfig{Engine: "dummy"},
		Feed: FeedConfig{
			Timezone:            "UTC",
			UpcomingMinutes:     30,
			NextMinutes:         120,
			StudentLookbackDays: 1,
			ParentLookbackDays:  3,
			StudentLimit:        8,
			ParentLimit:         20,
			EditGuard:           time.Minute,
			QueryTimeout:        time.Second,
			MaxConcurrency:      4,
		},
	}
}

// Validate reports the config values the apps cannot start with.
func (c *Config) Validate(validate *validator.Validate) error {
	switch c.Database.Engine {
	case "postgres", "dummy":
	default:
		return NewValidationError(errors.Errorf("unknown database engine %q", c.Database.Engine),
			FieldError{Field: "database.engine", Error: "must be postgres or dummy"})
	}
	return errors.Wrap(validate.Struct(c.Feed), "validating feed config")
}
