// Package handlers wires HTTP requests to the domain: bind input, consult
// the authorization policy, touch storage, render a response. All state is
// injected at startup; nothing here reads globals.
package handlers

import (
	"arzaq-api/config"
	"arzaq-api/services"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Handler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Log    zerolog.Logger
	Images *services.Cloudinary
	Google *services.GoogleVerifier
}

func New(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		DB:     db,
		Cfg:    cfg,
		Log:    log,
		Images: services.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret),
		Google: services.NewGoogleVerifier(),
	}
}
