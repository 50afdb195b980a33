package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds application level configuration. Values come from an optional
// YAML file named by CONFIG_FILE, and environment variables override the file.
type Config struct {
	ServerPort string `yaml:"server_port"`
	LogLevel   string `yaml:"log_level"`

	StoreDriver   string `yaml:"store_driver"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoCluster  string `yaml:"mongo_cluster"`
	MongoUser     string `yaml:"mongo_user"`
	MongoPassword string `yaml:"mongo_password"`
	MongoDatabase string `yaml:"mongo_database"`
	MySQLDSN      string `yaml:"mysql_dsn"`

	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	RedisPass string `yaml:"redis_password"`

	JWTSecret              string        `yaml:"jwt_secret"`
	JWTIssuer              string        `yaml:"jwt_issuer"`
	JWTAudience            string        `yaml:"jwt_audience"`
	JWKSURL                string        `yaml:"jwt_jwks_url"`
	JWTClockSkew           time.Duration `yaml:"jwt_clock_skew"`
	JWKSRefreshInterval    time.Duration `yaml:"jwt_jwks_refresh_interval"`
	JWKSMinRefreshInterval time.Duration `yaml:"jwt_jwks_min_refresh_interval"`
	JWKSHTTPTimeout        time.Duration `yaml:"jwt_jwks_http_timeout"`

	CORSOrigins []string `yaml:"cors_origins"`
	SwaggerHost string   `yaml:"swagger_host"`
}

// Load builds Config from defaults, the optional config file and the environment.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ServerPort:             "5000",
		LogLevel:               "info",
		StoreDriver:            DriverMongo,
		MongoCluster:           "cluster0.pdx5h.mongodb.net",
		MongoDatabase:          "ForeverHome",
		MySQLDSN:               "user:password@tcp(localhost:3306)/foreverhome?charset=utf8mb4&parseTime=True&loc=Local",
		RedisAddr:              "localhost:6379",
		JWTClockSkew:           30 * time.Second,
		JWKSRefreshInterval:    time.Hour,
		JWKSMinRefreshInterval: time.Minute,
		JWKSHTTPTimeout:        5 * time.Second,
	}
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerPort = getEnv("SERVER_PORT", getEnv("PORT", c.ServerPort))
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", c.StoreDriver))
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoCluster = getEnv("MONGO_CLUSTER", c.MongoCluster)
	c.MongoUser = getEnv("DB_USER", c.MongoUser)
	c.MongoPassword = getEnv("DB_PASS", c.MongoPassword)
	c.MongoDatabase = getEnv("MONGO_DATABASE", c.MongoDatabase)
	c.MySQLDSN = getEnv("MYSQL_DSN", c.MySQLDSN)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPass = getEnv("REDIS_PASSWORD", c.RedisPass)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.JWTAudience = getEnv("JWT_AUDIENCE", c.JWTAudience)
	c.JWKSURL = getEnv("JWT_JWKS_URL", c.JWKSURL)
	c.JWTClockSkew = getEnvDuration("JWT_CLOCK_SKEW", c.JWTClockSkew)
	c.JWKSRefreshInterval = getEnvDuration("JWT_JWKS_REFRESH_INTERVAL", c.JWKSRefreshInterval)
	c.JWKSMinRefreshInterval = getEnvDuration("JWT_JWKS_MIN_REFRESH_INTERVAL", c.JWKSMinRefreshInterval)
	c.JWKSHTTPTimeout = getEnvDuration("JWT_JWKS_HTTP_TIMEOUT", c.JWKSHTTPTimeout)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	c.SwaggerHost = getEnv("SWAGGER_HOST", c.SwaggerHost)

	if c.MongoURI == "" {
		c.MongoURI = c.defaultMongoURI()
	}
}

// defaultMongoURI points at the Atlas cluster when credentials are given and
// at a local server otherwise. Credentials are attached by the client options,
// not embedded in the URI.
func (c *Config) defaultMongoURI() string {
	if c.MongoUser != "" && c.MongoCluster != "" {
		return "mongodb+srv://" + c.MongoCluster + "/?appName=Cluster0"
	}
	return "mongodb://localhost:27017"
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
	case DriverMySQL:
		if c.MySQLDSN == "" {
			errs = append(errs, errors.New("MYSQL_DSN is required for the mysql store"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.JWKSURL == "" && c.JWTSecret == "" {
		errs = append(errs, errors.New("either JWT_JWKS_URL or JWT_SECRET must be set"))
	}
	if c.ServerPort == "" {
		errs = append(errs, errors.New("SERVER_PORT must not be empty"))
	}
	return errors.Join(errs...)
}

// UsesJWKS reports whether tokens are verified against a JWKS endpoint rather
// than the shared secret.
func (c *Config) UsesJWKS() bool {
	return c.JWKSURL != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
