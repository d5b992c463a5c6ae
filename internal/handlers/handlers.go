package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tnma-app/membership-backend/internal/config"
	"github.com/tnma-app/membership-backend/internal/services"
)

// Package-level collaborators, wired once from main.
var (
	appConfig         *config.Config
	cloudinaryService *services.CloudinaryService
	mailService       *services.MailService
)

// Init stores the app config used for token secrets and cookie flags.
func Init(cfg *config.Config) {
	appConfig = cfg
}

// InitCloudinaryService initializes the Cloudinary upload service.
func InitCloudinaryService(cfg *config.Config) error {
	service, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

// InitMailService initializes the SMTP mail service.
func InitMailService(cfg *config.Config) {
	mailService = services.NewMailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom, cfg.MailFromName)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func writeCodeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"code":    code,
		"message": message,
	})
}
