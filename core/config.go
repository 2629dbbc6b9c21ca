package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (default), TEST, QA, PROD
	Build    string
	AppName  string
	WorkDir  string

	// External EduConnectt REST backend; every data operation is a
	// pass-through to it.
	BackendBaseURL string
	// Upper bound on the session verification round trip. A hung call must
	// never leave a screen loading forever.
	VerifyTimeout time.Duration

	DatabaseURL string

	DefaultFromEmail mail.Address
	ContactEmail     mail.Address
	SendgridAPIKey   string

	RollbarToken string

	Server struct {
		Host            string
		Addr            string
		ShutdownTimeout time.Duration
	}
}

func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "EduConnectt")
	conf.SetDefault("backendBaseURL", "http://localhost:5000")
	conf.SetDefault("verifyTimeout", 10*time.Second)
	conf.SetDefault("databaseURL", "postgres://localhost:5432/educonnectt?sslmode=disable")
	conf.SetDefault("defaultFromEmail", "noreply@educonnectt.com")
	conf.SetDefault("contactEmail", "support@educonnectt.com")
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		Env:              env,
		Build:            conf.GetString("build"),
		AppName:          conf.GetString("appName"),
		WorkDir:          wd,
		BackendBaseURL:   strings.TrimRight(conf.GetString("backendBaseURL"), "/"),
		VerifyTimeout:    conf.GetDuration("verifyTimeout"),
		DatabaseURL:      conf.GetString("databaseURL"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		ContactEmail:     mail.Address{Name: conf.GetString("appName") + " Support", Address: conf.GetString("contactEmail")},
		SendgridAPIKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
	}
	c.Server.Host = conf.GetString("serverHost")
	c.Server.Addr = conf.GetString("serverAddr")
	c.Server.ShutdownTimeout = conf.GetDuration("serverShutdownTimeout")

	if err := c.check(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

func (c *Config) check() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(c.AppName, "appName"),
		vala.StringNotEmpty(c.BackendBaseURL, "backendBaseURL"),
		vala.GreaterThan(int(c.VerifyTimeout), 0, "verifyTimeout"),
		vala.GreaterThan(int(c.Server.ShutdownTimeout), 0, "serverShutdownTimeout"),
	).Check()
}

// Getwd returns the app's root directory; tests run from their own package
// directory so walk up until go.mod is found.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.Getwd: %v", err)
	}
	for dir := wd; dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
	}
	return wd
}
