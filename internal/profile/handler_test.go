package profile_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"disaster-backend/internal/models"
	"disaster-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("profile_pic", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin_home/profile", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestCitizenHandler(t *testing.T) {
	db := testutil.NewDB(t)
	app, _ := testutil.NewApp(t, db)
	cit := testutil.CreateUser(t, db, "A", "a@x.com", "p", models.RoleCitizen)

	c := testutil.NewClient(t, app)
	c.Login("a@x.com", "p")

	resp := c.GetJSON("/citizen_profile")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		User struct {
			ID    uint   `json:"user_id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, cit.ID, body.User.ID)
	assert.Equal(t, "A", body.User.Name)
	assert.Equal(t, "a@x.com", body.User.Email)

	require.NoError(t, db.Delete(&cit).Error)
	resp = c.Get("/citizen_profile")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", testutil.ReadBody(t, resp))
}

func TestAdminUpload(t *testing.T) {
	db := testutil.NewDB(t)
	app, cfg := testutil.NewApp(t, db)
	admin := testutil.CreateUser(t, db, "Root", "root@x.com", "p", models.RoleAdmin)

	c := testutil.NewClient(t, app)
	c.Login("root@x.com", "p")

	resp := c.Get("/admin_home/profile")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, testutil.ReadBody(t, resp), "No profile picture")

	resp = c.Do(uploadRequest(t, "notes.txt", "hello"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, testutil.ReadBody(t, resp), "png, jpg, jpeg, gif")

	resp = c.Do(uploadRequest(t, "me.PNG", "first"))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin_home/profile", resp.Header.Get("Location"))

	var stored models.User
	require.NoError(t, db.First(&stored, admin.ID).Error)
	firstKey := stored.ProfileImageKey
	require.True(t, strings.HasPrefix(firstKey, "admins/"), firstKey)
	assert.True(t, strings.HasSuffix(firstKey, ".png"), firstKey)

	resp = c.Get("/uploads/" + firstKey)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "first", testutil.ReadBody(t, resp))

	resp = c.Do(uploadRequest(t, "me.jpg", "second"))
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	require.NoError(t, db.First(&stored, admin.ID).Error)
	assert.NotEqual(t, firstKey, stored.ProfileImageKey)
	assert.True(t, strings.HasSuffix(stored.ProfileImageKey, ".jpg"))

	_, err := os.Stat(filepath.Join(cfg.ProfileImagePath, filepath.FromSlash(firstKey)))
	assert.True(t, os.IsNotExist(err), "previous image is removed")

	resp = c.GetJSON("/admin_home/profile")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		User struct {
			ImageURL string `json:"image_url"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "/uploads/"+stored.ProfileImageKey, body.User.ImageURL)
}

func TestAdminUpload_AdminOnly(t *testing.T) {
	db := testutil.NewDB(t)
	app, _ := testutil.NewApp(t, db)
	testutil.CreateUser(t, db, "V", "v@x.com", "p", models.RoleVolunteer)

	c := testutil.NewClient(t, app)
	c.Login("v@x.com", "p")

	resp := c.Do(uploadRequest(t, "me.png", "x"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
