package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Token         string
	GuildID       string
	StorageDriver string
	DatabaseURL   string
	DBPath        string
	Locale        string
	Timezone      string
	OpsAddr       string
	LogLevel      string
	AutoMigrate   bool
}

// Load charge la configuration depuis les variables d'environnement et la valide.
func Load() (*Config, error) {
	return load(true)
}

// LoadStorage charge la configuration sans exiger DISCORD_TOKEN (commande migrate).
func LoadStorage() (*Config, error) {
	return load(false)
}

func load(requireToken bool) (*Config, error) {
	// .env est optionnel lorsque les variables sont fournies par l'environnement (Docker, CI, etc.).
	_ = godotenv.Load()

	cfg := &Config{
		Token:         os.Getenv("DISCORD_TOKEN"),
		GuildID:       os.Getenv("GUILD_ID"),
		StorageDriver: getEnv("STORAGE_DRIVER", DriverSQLite),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBPath:        getEnv("DB_PATH", "./data/bot.db"),
		Locale:        getEnv("BOT_LOCALE", "ja"),
		Timezone:      getEnv("BOT_TIMEZONE", "Asia/Tokyo"),
		OpsAddr:       os.Getenv("OPS_ADDR"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AutoMigrate:   true,
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: AUTO_MIGRATE invalide (%q): %w", v, err)
		}
		cfg.AutoMigrate = b
	}

	if err := cfg.validate(requireToken); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate applique toutes les règles métier sur la configuration chargée.
func (c *Config) validate(requireToken bool) error {
	if requireToken && strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: DISCORD_TOKEN est requis et ne peut pas être vide")
	}

	for _, r := range c.GuildID {
		if r < '0' || r > '9' {
			return fmt.Errorf("config: GUILD_ID doit être un ID de serveur Discord (chiffres uniquement)")
		}
	}

	switch c.StorageDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("config: DB_PATH est requis avec STORAGE_DRIVER=sqlite")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			// Valeur par défaut utile en local lorsque DATABASE_URL n'est pas fournie.
			c.DatabaseURL = "postgres://localhost:5432/recruitbot?sslmode=disable"
		}
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: DATABASE_URL invalide (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: DATABASE_URL invalide (%q): scheme ou host manquant", c.DatabaseURL)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: STORAGE_DRIVER inconnu %q (sqlite, postgres, memory)", c.StorageDriver)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
