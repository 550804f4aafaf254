package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/dchest/captcha"
	"github.com/gorilla/csrf"

	"notesbox/auth"
	"notesbox/config"
	"notesbox/db"
	"notesbox/i18n"
)

// templateDir is relative to the working directory; tests point it at the
// repository root.
var templateDir = "templates"

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", IndexHandler)
	mux.HandleFunc("/login", LoginHandler)
	mux.HandleFunc("/register", SignupHandler)
	mux.HandleFunc("/notes", NotesHandler)
	mux.HandleFunc("/logout", LogoutHandler)
}

func IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if auth.GetUserID(r) != 0 {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)

	if r.Method == http.MethodPost {
		username := r.FormValue("username")
		password := r.FormValue("password")

		user, err := db.GetUserByUsername(username)

		// Timing attack mitigation: always run one bcrypt compare
		targetHash := user.PasswordHash
		if err != nil {
			targetHash = db.DummyHash
		}
		match := db.CheckPasswordHash(password, targetHash)

		// Unknown user and wrong password are deliberately indistinguishable
		if err != nil || !match {
			auth.Flash(w, r, i18n.T(lang, "InvalidCredentials"))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		auth.SetSession(w, r, user.ID)
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}

	renderTemplate(w, r, "login.html", map[string]any{
		"Error": auth.PopFlash(w, r),
	})
}

func SignupHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)

	if r.Method == http.MethodPost {
		username := r.FormValue("username")
		password := r.FormValue("password")

		if config.AppConfig.EnableCaptcha {
			if !captcha.VerifyString(r.FormValue("captcha_id"), r.FormValue("captcha_solution")) {
				auth.Flash(w, r, i18n.T(lang, "InvalidCaptcha"))
				http.Redirect(w, r, "/register", http.StatusSeeOther)
				return
			}
		}

		var problems []string
		if len(username) < 5 {
			problems = append(problems, i18n.T(lang, "UsernameTooShort"))
		}
		if len(password) < 5 {
			problems = append(problems, i18n.T(lang, "PasswordTooShort"))
		}
		if len(problems) > 0 {
			auth.Flash(w, r, strings.Join(problems, ", "))
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}

		hashedPassword, err := db.HashPassword(password)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			auth.Flash(w, r, i18n.T(lang, "AnErrorOccurred"))
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}

		if _, err := db.CreateUser(username, hashedPassword); err != nil {
			if errors.Is(err, db.ErrUsernameTaken) {
				auth.Flash(w, r, i18n.T(lang, "UsernameAlreadyExists"))
			} else {
				log.Printf("Error creating user: %v", err)
				auth.Flash(w, r, i18n.T(lang, "AnErrorOccurred"))
			}
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}

		// Registration does not log the user in
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := map[string]any{
		"Error": auth.PopFlash(w, r),
	}
	if config.AppConfig.EnableCaptcha {
		data["CaptchaID"] = captcha.New()
	}
	renderTemplate(w, r, "register.html", data)
}

func NotesHandler(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r)

	userID := auth.GetUserID(r)
	if userID == 0 {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := db.GetUserByID(userID)
	if err != nil {
		// Stale session: the user record is gone
		auth.ClearSession(w, r)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		// Stored verbatim: no trimming, no dedup, no length cap
		if err := db.AppendNote(user.ID, r.FormValue("note")); err != nil {
			log.Printf("Error saving note for user %d: %v", user.ID, err)
			auth.Flash(w, r, i18n.T(lang, "ErrorSavingNote"))
		}
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}

	notes, err := db.NotesForUser(user.ID)
	if err != nil {
		log.Printf("Error fetching notes for user %d: %v", user.ID, err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	renderTemplate(w, r, "notes.html", map[string]any{
		"Username": user.Username,
		"Notes":    notes,
		"Error":    auth.PopFlash(w, r),
	})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	lang := i18n.DetectLanguage(r)

	funcMap := template.FuncMap{
		"T": func(key string) string {
			return i18n.T(lang, key)
		},
	}

	tmpl, err := template.New(name).Funcs(funcMap).ParseFiles(templateDir+"/layout.html", templateDir+"/"+name)
	if err != nil {
		log.Printf("Error parsing template %s: %v", name, err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	m, ok := data.(map[string]any)
	if !ok {
		m = map[string]any{}
	}
	if _, exists := m["AppName"]; !exists {
		m["AppName"] = config.AppConfig.AppName
	}
	m["Lang"] = lang
	m["csrfField"] = csrf.TemplateField(r)

	if err := tmpl.ExecuteTemplate(w, "layout", m); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}
