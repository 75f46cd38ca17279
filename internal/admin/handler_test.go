package admin_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"disaster-backend/internal/models"
	"disaster-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitizensHandler(t *testing.T) {
	db := testutil.NewDB(t)
	app, _ := testutil.NewApp(t, db)
	testutil.CreateUser(t, db, "Root", "root@x.com", "p", models.RoleAdmin)
	first := testutil.CreateUser(t, db, "Cleo", "cleo@x.com", "p", models.RoleCitizen)
	testutil.CreateUser(t, db, "Vic", "vic@x.com", "p", models.RoleVolunteer)
	second := testutil.CreateUser(t, db, "Abe", "abe@x.com", "p", models.RoleCitizen)

	c := testutil.NewClient(t, app)
	c.Login("root@x.com", "p")

	resp := c.GetJSON("/citizens")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Citizens []struct {
			ID        uint   `json:"user_id"`
			Name      string `json:"name"`
			Email     string `json:"email"`
			CreatedAt string `json:"created_at"`
		} `json:"citizens"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Citizens, 2)

	assert.Equal(t, first.ID, body.Citizens[0].ID)
	assert.Equal(t, "Cleo", body.Citizens[0].Name)
	assert.Equal(t, second.ID, body.Citizens[1].ID)
	assert.Equal(t, "abe@x.com", body.Citizens[1].Email)

	for _, cit := range body.Citizens {
		_, err := time.Parse(models.TimestampLayout, cit.CreatedAt)
		assert.NoError(t, err, cit.CreatedAt)
	}

	resp = c.Get("/citizens")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := testutil.ReadBody(t, resp)
	assert.Contains(t, html, "cleo@x.com")
	assert.NotContains(t, html, "vic@x.com")
	assert.NotContains(t, html, "root@x.com")
}

func TestHomeHandler(t *testing.T) {
	db := testutil.NewDB(t)
	app, _ := testutil.NewApp(t, db)
	admin := testutil.CreateUser(t, db, "Root", "root@x.com", "p", models.RoleAdmin)

	c := testutil.NewClient(t, app)
	c.Login("root@x.com", "p")

	resp := c.GetJSON("/admin_home")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"name":"Root"}`, testutil.ReadBody(t, resp))

	resp = c.Get("/admin_home")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, testutil.ReadBody(t, resp), "Welcome, Root")

	require.NoError(t, db.Delete(&admin).Error)

	resp = c.GetJSON("/admin_home")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"name":"Administrator"}`, testutil.ReadBody(t, resp))
}
