package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	MongoURI         string
	RedisURI         string
	JWTAccessSecret  string
	JWTRefreshSecret string
	Port             string
	FrontendURL      string
	AllowedOrigins   []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Environment      string   // ENV: production, development, etc.

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailFromName string

	GoogleClientID string
	AdminEmails    []string // emails promoted to ADMIN on Google login
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseList(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		smtpPort = 587
	}

	adminEmails := parseList(getEnv("ADMIN_GOOGLE_EMAILS", ""))
	for _, key := range []string{"GOOGLE_EMAIL_ID_1", "GOOGLE_EMAIL_ID_2"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			adminEmails = append(adminEmails, v)
		}
	}

	return &Config{
		MongoURI:         getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/membership")),
		RedisURI:         getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		Environment:      env,
		Port:             getEnv("PORT", "8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins:   allowedOrigins,

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     smtpPort,
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", getEnv("SMTP_USER", "")),
		MailFromName: getEnv("MAIL_FROM_NAME", "The Association App Team"),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		AdminEmails:    adminEmails,
	}
}

func parseList(s string) []string {
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

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// IsAdminEmail reports whether email is on the Google admin whitelist.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range c.AdminEmails {
		if strings.ToLower(strings.TrimSpace(a)) == email {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
