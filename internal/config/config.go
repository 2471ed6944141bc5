package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration, loaded once at startup and passed
// into components. Optional settings (SMTP, storage, Redis) may be empty; the
// features they back degrade to "not configured" errors instead of crashing.
type Config struct {
	Env  string
	Port string

	DatabaseURL string
	RedisURL    string

	JWTSecret     string
	JWTExpiresMin int

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	CORSOrigins string

	SupabaseURL             string
	SupabaseServiceRoleKey  string
	SupabaseBucket          string
	SupabasePublicBucketURL string
}

// Load loads config from env and an optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("JWT_EXPIRES_MIN", 60)
	viper.SetDefault("CORS_ORIGINS", "*")

	return &Config{
		Env:  viper.GetString("APP_ENV"),
		Port: viper.GetString("PORT"),

		DatabaseURL: viper.GetString("DATABASE_URL"),
		RedisURL:    viper.GetString("REDIS_URL"),

		JWTSecret:     viper.GetString("JWT_SECRET"),
		JWTExpiresMin: viper.GetInt("JWT_EXPIRES_MIN"),

		SMTPHost: viper.GetString("SMTP_HOST"),
		SMTPPort: viper.GetInt("SMTP_PORT"),
		SMTPUser: viper.GetString("SMTP_USER"),
		SMTPPass: viper.GetString("SMTP_PASS"),
		SMTPFrom: viper.GetString("SMTP_FROM"),

		CORSOrigins: viper.GetString("CORS_ORIGINS"),

		SupabaseURL:             viper.GetString("SUPABASE_URL"),
		SupabaseServiceRoleKey:  viper.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:          viper.GetString("SUPABASE_BUCKET"),
		SupabasePublicBucketURL: viper.GetString("SUPABASE_PUBLIC_BUCKET_URL"),
	}, nil
}
