package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	SessionSecret       string
	FrontendURL         string
	AllowCrossSiteDev   bool
	AdminID             string
	AdminPass           string
	AlphaVantageAPIKey  string
	SendinblueAPIKey    string // SENDINBLUE_API_KEY for OTP/reset emails (Brevo)
	MailFrom            string // MAIL_FROM sender email
	StartingCashBalance float64
}

// DefaultStartingCash is the demo cash balance granted on first portfolio access.
const DefaultStartingCash = 10000

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	startingCash := viper.GetFloat64("STARTING_CASH_BALANCE")
	if startingCash <= 0 {
		startingCash = DefaultStartingCash
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		FrontendURL:         viper.GetString("FRONTEND_URL"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		AdminID:             viper.GetString("ADMIN_ID"),
		AdminPass:           viper.GetString("ADMIN_PASS"),
		AlphaVantageAPIKey:  viper.GetString("ALPHA_API_KEY"),
		SendinblueAPIKey:    viper.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            viper.GetString("MAIL_FROM"),
		StartingCashBalance: startingCash,
	}, nil
}
