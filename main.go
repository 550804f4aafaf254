package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/dchest/captcha"
	"github.com/gorilla/csrf"

	"notesbox/auth"
	"notesbox/config"
	"notesbox/db"
	"notesbox/handlers"
	"notesbox/i18n"
)

func main() {
	if err := config.LoadConfig("config.json"); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if err := i18n.LoadTranslations("i18n"); err != nil {
		log.Fatalf("Error loading translations: %v", err)
	}

	auth.InitStore()

	db.InitDB(config.AppConfig.DBPath)
	defer db.DB.Close()

	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	if config.AppConfig.EnableCaptcha {
		mux.Handle("/captcha/", captcha.Server(captcha.StdWidth, captcha.StdHeight))
	}

	// Register application handlers
	handlers.RegisterHandlers(mux)

	addr := fmt.Sprintf("%s:%d", config.AppConfig.ListenIP, config.AppConfig.ListenPort)
	log.Printf("Server starting on %s (%s)", addr, config.AppConfig.AppName)

	// CSRF Protection
	csrfMiddleware := csrf.Protect(
		[]byte(config.AppConfig.SessionKey),
		csrf.Secure(config.AppConfig.ListenPort != 8080), // Set to true in production with HTTPS
		csrf.Path("/"),
	)

	handler := handlers.RecoverMiddleware(
		handlers.SecurityHeadersMiddleware(
			csrfMiddleware(mux)))

	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
