package db

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"log"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"notesbox/models"
)

var DB *sql.DB

// ErrUsernameTaken is returned by CreateUser when the username is already in use.
var ErrUsernameTaken = errors.New("username already exists")

// DummyHash is a bcrypt hash of random bytes generated at startup. Login
// verifies against it when the username does not exist, so both failure paths
// cost one bcrypt compare, and nothing can ever match it.
var DummyHash = newDummyHash()

func newDummyHash() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Error generating dummy credential: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword(b, bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error hashing dummy credential: %v", err)
	}
	return string(hash)
}

func InitDB(dataSourceName string) {
	var err error
	DB, err = sql.Open("sqlite3", dataSourceName)
	if err != nil {
		log.Fatal(err)
	}

	createTables := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		body TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	`

	_, err = DB.Exec(createTables)
	if err != nil {
		log.Fatalf("Error creating tables: %v", err)
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateUser inserts a new user and returns its id. A duplicate username is
// reported as ErrUsernameTaken; the UNIQUE constraint is the source of truth,
// there is no check-then-insert window.
func CreateUser(username, passwordHash string) (int, error) {
	result, err := DB.Exec("INSERT INTO users (username, password_hash) VALUES (?, ?)", username, passwordHash)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, ErrUsernameTaken
		}
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// GetUserByUsername looks up a user by exact, case-sensitive username.
func GetUserByUsername(username string) (models.User, error) {
	var u models.User
	err := DB.QueryRow("SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func GetUserByID(id int) (models.User, error) {
	var u models.User
	err := DB.QueryRow("SELECT id, username, password_hash, created_at FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// AppendNote stores a note verbatim at the end of the user's list. A single
// INSERT, so concurrent appends for the same user cannot lose each other.
func AppendNote(userID int, body string) error {
	_, err := DB.Exec("INSERT INTO notes (user_id, body) VALUES (?, ?)", userID, body)
	return err
}

// NotesForUser returns the user's notes in insertion order.
func NotesForUser(userID int) ([]models.Note, error) {
	rows, err := DB.Query("SELECT id, user_id, body, created_at FROM notes WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
