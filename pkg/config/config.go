package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AccountConfig holds the inbound and outbound settings for one logical
// mailbox account ("default", "info", "damian", ...).
type AccountConfig struct {
	IMAPHost     string
	IMAPPort     int
	IMAPUsername string
	IMAPPassword string
	IMAPTLS      bool

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool
	FromAddress  string
	FromName     string

	Signature string
}

type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	AIAPIURL string
	AIAPIKey string
	AIModel  string

	DefaultAccount string
	Accounts       map[string]AccountConfig
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=replydesk port=5432 sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:  accessExpiry,
		JWTRefreshExpiry: refreshExpiry,
		AIAPIURL:         getEnv("AI_API_URL", "https://api.openai.com/v1/chat/completions"),
		AIAPIKey:         getEnv("AI_API_KEY", ""),
		AIModel:          getEnv("AI_MODEL", "gpt-4o"),
		DefaultAccount:   getEnv("MAIL_DEFAULT_ACCOUNT", "default"),
		Accounts:         map[string]AccountConfig{},
	}

	// The default account always exists. Named accounts load only when
	// their IMAP host is configured.
	cfg.Accounts["default"] = loadAccount("")
	for _, name := range []string{"info", "damian"} {
		if acct := loadAccount(name); acct.IMAPHost != "" {
			cfg.Accounts[name] = acct
		}
	}

	return cfg
}

// Account resolves a logical account name to its configuration, falling
// back to the default account when the name is empty or unknown.
func (c *Config) Account(name string) (string, AccountConfig) {
	if name == "" {
		name = c.DefaultAccount
	}
	if acct, ok := c.Accounts[name]; ok {
		return name, acct
	}
	return c.DefaultAccount, c.Accounts[c.DefaultAccount]
}

// Signature returns the signature configured for the account, falling back
// to the default account's signature.
func (c *Config) Signature(name string) string {
	if acct, ok := c.Accounts[name]; ok && acct.Signature != "" {
		return acct.Signature
	}
	return c.Accounts[c.DefaultAccount].Signature
}

func loadAccount(name string) AccountConfig {
	prefix := ""
	if name != "" {
		prefix = toEnvPrefix(name)
	}

	return AccountConfig{
		IMAPHost:     getEnv("IMAP_"+prefix+"HOST", ""),
		IMAPPort:     getEnvInt("IMAP_"+prefix+"PORT", 993),
		IMAPUsername: getEnv("IMAP_"+prefix+"USERNAME", ""),
		IMAPPassword: getEnv("IMAP_"+prefix+"PASSWORD", ""),
		IMAPTLS:      getEnvBool("IMAP_"+prefix+"TLS", true),

		SMTPHost:     getEnv("SMTP_"+prefix+"HOST", ""),
		SMTPPort:     getEnvInt("SMTP_"+prefix+"PORT", 465),
		SMTPUsername: getEnv("SMTP_"+prefix+"USERNAME", ""),
		SMTPPassword: getEnv("SMTP_"+prefix+"PASSWORD", ""),
		SMTPTLS:      getEnvBool("SMTP_"+prefix+"TLS", true),
		FromAddress:  getEnv("SMTP_"+prefix+"FROM_ADDRESS", ""),
		FromName:     getEnv("SMTP_"+prefix+"FROM_NAME", ""),

		Signature: getEnv("SIGNATURE_"+prefix+"TEXT", ""),
	}
}

func toEnvPrefix(name string) string {
	out := make([]byte, 0, len(name)+1)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out) + "_"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// IMAPAddr returns the host:port dial address for the account's IMAP server.
func (a AccountConfig) IMAPAddr() string {
	return fmt.Sprintf("%s:%d", a.IMAPHost, a.IMAPPort)
}

// SMTPAddr returns the host:port dial address for the account's SMTP server.
func (a AccountConfig) SMTPAddr() string {
	return fmt.Sprintf("%s:%d", a.SMTPHost, a.SMTPPort)
}
