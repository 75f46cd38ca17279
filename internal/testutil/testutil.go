// Package testutil builds throwaway databases, fixtures and an HTTP client for tests.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"disaster-backend/internal/auth"
	"disaster-backend/internal/config"
	"disaster-backend/internal/database"
	"disaster-backend/internal/models"
	"disaster-backend/internal/profile"
	"disaster-backend/internal/server"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const JWTSecret = "test-secret-test-secret-test-secret"

// NewDB opens a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.Options(gormlogger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with a cheap bcrypt hash of password.
func CreateUser(t testing.TB, db *gorm.DB, name, email, password string, role models.UserRole) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func CreateDisaster(t testing.TB, db *gorm.DB, reportedBy *uint, kind, location, dateTime string) models.Disaster {
	t.Helper()

	d := models.Disaster{
		Type:        kind,
		Location:    location,
		DateTime:    dateTime,
		Description: kind + " at " + location,
		ReportedBy:  reportedBy,
	}
	require.NoError(t, db.Create(&d).Error)
	return d
}

func Assign(t testing.TB, db *gorm.DB, disasterID, volunteerID uint) {
	t.Helper()

	require.NoError(t, db.Create(&models.VolunteerAssignment{
		DisasterID:  disasterID,
		VolunteerID: volunteerID,
		AssignedOn:  time.Now().Format(models.TimestampLayout),
	}).Error)
}

func Config(t testing.TB) *config.Config {
	t.Helper()

	return &config.Config{
		DatabaseDriver:   config.DriverSQLite,
		JWTSecret:        JWTSecret,
		TokenTTL:         time.Hour,
		SessionTTL:       time.Hour,
		CORSOrigins:      "http://localhost:5173",
		ImageStorage:     config.StorageLocal,
		ProfileImagePath: t.TempDir(),
	}
}

// NewApp builds the full application over db with in-memory sessions and
// local image storage.
func NewApp(t testing.TB, db *gorm.DB) (*fiber.App, *config.Config) {
	t.Helper()

	cfg := Config(t)
	images, err := profile.NewLocalImageStore(cfg.ProfileImagePath)
	require.NoError(t, err)

	app := server.New(server.Deps{
		Config:   cfg,
		DB:       db,
		Sessions: auth.NewSessionManager(cfg.SessionTTL, false, nil),
		Images:   images,
	})
	return app, cfg
}

// Client drives an app in process and carries cookies between requests like a browser.
type Client struct {
	t       testing.TB
	app     *fiber.App
	cookies map[string]*http.Cookie
	header  http.Header
}

func NewClient(t testing.TB, app *fiber.App) *Client {
	return &Client{t: t, app: app, cookies: map[string]*http.Cookie{}, header: http.Header{}}
}

// SetHeader adds a header sent with every following request.
func (c *Client) SetHeader(key, value string) {
	c.header.Set(key, value)
}

func (c *Client) Do(req *http.Request) *http.Response {
	c.t.Helper()

	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)

	now := time.Now()
	for _, ck := range resp.Cookies() {
		if ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(now)) || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return resp
}

func (c *Client) Get(path string) *http.Response {
	c.t.Helper()
	return c.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *Client) GetJSON(path string) *http.Response {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", fiber.MIMEApplicationJSON)
	return c.Do(req)
}

func (c *Client) PostForm(path string, form url.Values) *http.Response {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	return c.Do(req)
}

// Login posts the credentials and requires the dashboard redirect of a successful login.
func (c *Client) Login(email, password string) {
	c.t.Helper()
	resp := c.PostForm("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(c.t, http.StatusFound, resp.StatusCode)
	require.Equal(c.t, "/dashboard", resp.Header.Get("Location"))
}

func (c *Client) HasSession() bool {
	_, ok := c.cookies[auth.SessionCookieName]
	return ok
}

func ReadBody(t testing.TB, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
