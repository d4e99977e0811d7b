package config

import (
	"os"
	"strings"
)

type Config struct {
	Port           string
	Host           string   // Raw HOST env (e.g. https://api.dailymoji.app); base URL for page props
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Environment    string   // ENV: production, development, etc.

	StoreBackend   string // STORE_BACKEND: mongo, postgres or memory
	FeedBackend    string // FEED_BACKEND: redis or local
	SessionBackend string // SESSION_BACKEND: redis or memory
	MongoURI       string
	PostgresURI    string
	RedisURI       string

	AuthProviderSecret string // HS256 key the identity provider signs id tokens with
	AuthProviderIssuer string // optional expected "iss" claim
	LoginURL           string // where unauthenticated page requests are sent
	FavoriteColor      string // served by /api/example
	EntryIDMode        string // ENTRY_ID_MODE: seconds or unique
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Host:               strings.TrimRight(getEnv("HOST", "http://localhost:8080"), "/"),
		AllowedOrigins:     allowedOrigins,
		Environment:        env,
		StoreBackend:       oneOf(getEnv("STORE_BACKEND", "mongo"), "mongo", "postgres", "memory"),
		FeedBackend:        oneOf(getEnv("FEED_BACKEND", "redis"), "redis", "local"),
		SessionBackend:     oneOf(getEnv("SESSION_BACKEND", "redis"), "redis", "memory"),
		MongoURI:           getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/dailymoji")),
		PostgresURI:        getEnv("POSTGRES_URI", "postgres://localhost:5432/dailymoji?sslmode=disable"),
		RedisURI:           getEnv("REDIS_URI", "redis://localhost:6379/0"),
		AuthProviderSecret: getEnv("AUTH_PROVIDER_SECRET", ""),
		AuthProviderIssuer: getEnv("AUTH_PROVIDER_ISSUER", ""),
		LoginURL:           getEnv("LOGIN_URL", "/auth"),
		FavoriteColor:      getEnv("FAVORITE_COLOR", "teal"),
		EntryIDMode:        oneOf(getEnv("ENTRY_ID_MODE", "seconds"), "seconds", "unique"),
	}
}

// NeedsRedis reports whether any configured backend talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.FeedBackend == "redis" || c.SessionBackend == "redis"
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// oneOf lower-cases v and falls back to the first allowed value when v is unknown.
func oneOf(v string, allowed ...string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return allowed[0]
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
