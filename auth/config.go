package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

// Config is the process-wide credential configuration. It is established
// at startup and treated as read-only afterwards; in particular
// ServerSecret is immutable for the lifetime of the stored ciphertexts,
// since every unwrap re-derives keys from it.
type Config struct {
	// ServerSecret is mixed into every wrapping-key derivation and keys
	// the recovery token signatures.
	ServerSecret string `env:"AUTH_SERVER_SECRET,required"`

	// ResponseFloor is the minimum latency of every credential operation,
	// success or failure.
	ResponseFloor time.Duration `env:"AUTH_RESPONSE_FLOOR" envDefault:"2s"`

	// LockoutWindow and LockoutThreshold drive the trailing-window failure
	// count: at or past the threshold within the window, attempts fail
	// regardless of credential correctness.
	LockoutWindow    time.Duration `env:"AUTH_LOCKOUT_WINDOW" envDefault:"10m"`
	LockoutThreshold int           `env:"AUTH_LOCKOUT_THRESHOLD" envDefault:"3"`

	// RecoveryTokenTTL is the max age of an issued recovery token.
	RecoveryTokenTTL time.Duration `env:"AUTH_RECOVERY_TOKEN_TTL" envDefault:"10m"`

	// TOTPIssuer is the issuer label in provisioning URIs.
	TOTPIssuer string `env:"AUTH_TOTP_ISSUER" envDefault:"sealnote"`

	// BcryptCost is the password hashing cost.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
