package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleSet enumerates the role identifiers recognized in the primary
// directory. The Identity Registry receives these at construction instead of
// reading globals.
type RoleSet struct {
	SuperAdmin primitive.ObjectID
	Admin      primitive.ObjectID
	Master     primitive.ObjectID

	// User and Bot complete the directory's role enumeration; no code path
	// branches on them.
	User primitive.ObjectID
	Bot  primitive.ObjectID
}

// Settings carries all environment-derived configuration. There is no
// command-line surface.
type Settings struct {
	PrimaryMongoURI string
	PrimaryDBName   string
	SupportMongoURI string
	SupportDBName   string

	Roles RoleSet

	TelegramBotToken string
	NotificationURL  string
	StaticToken      string

	HTTPAddr string
}

// Load reads .env (if present) and assembles Settings from the environment.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		PrimaryMongoURI:  os.Getenv("SOURCE_MONGO_URI"),
		PrimaryDBName:    os.Getenv("SOURCE_DB_NAME"),
		SupportMongoURI:  os.Getenv("ANALYSIS_MONGO_URI"),
		SupportDBName:    os.Getenv("SUPPORT_DB"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		NotificationURL:  os.Getenv("NOTIFICATION_URL"),
		StaticToken:      os.Getenv("STATIC_TOKEN"),
		HTTPAddr:         os.Getenv("HTTP_ADDR"),
	}
	if s.PrimaryDBName == "" {
		s.PrimaryDBName = inferDBName(s.PrimaryMongoURI)
	}
	if s.SupportDBName == "" {
		s.SupportDBName = inferDBName(s.SupportMongoURI)
	}
	if s.HTTPAddr == "" {
		s.HTTPAddr = ":8080"
	}

	if s.PrimaryMongoURI == "" || s.SupportMongoURI == "" {
		return nil, fmt.Errorf("config: SOURCE_MONGO_URI and ANALYSIS_MONGO_URI must be set")
	}
	if s.PrimaryDBName == "" || s.SupportDBName == "" {
		return nil, fmt.Errorf("config: could not determine database names from environment")
	}

	s.Roles = RoleSet{
		SuperAdmin: roleID("SUPERADMIN_ROLE_ID"),
		Admin:      roleID("ADMIN_ROLE_ID"),
		Master:     roleID("MASTER_ROLE_ID"),
		User:       roleID("USER_ROLE_ID"),
		Bot:        roleID("BOT_ROLE_ID"),
	}
	return s, nil
}

// inferDBName pulls the database name out of a mongodb:// URI path.
func inferDBName(uri string) string {
	if uri == "" {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// roleID parses an ObjectID from the environment, tolerating stray quotes
// and whitespace. Missing or malformed values yield the nil ObjectID.
func roleID(envKey string) primitive.ObjectID {
	v := strings.Trim(strings.TrimSpace(os.Getenv(envKey)), `"'`)
	if v == "" {
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(v)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}
