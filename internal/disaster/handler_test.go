package disaster_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"disaster-backend/internal/models"
	"disaster-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler(t *testing.T) {
	db := testutil.NewDB(t)
	app, _ := testutil.NewApp(t, db)
	citizen := testutil.CreateUser(t, db, "A", "a@x.com", "p", models.RoleCitizen)

	c := testutil.NewClient(t, app)
	c.Login("a@x.com", "p")

	resp := c.Get("/report_disaster")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.PostForm("/report_disaster", url.Values{
		"type":        {"flood"},
		"location":    {"Riverside"},
		"date_time":   {"2024-01-01T10:00"},
		"description": {"water everywhere"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	var d models.Disaster
	require.NoError(t, db.First(&d).Error)
	assert.Equal(t, "flood", d.Type)
	assert.Equal(t, "2024-01-01 10:00:00", d.DateTime)
	require.NotNil(t, d.ReportedBy)
	assert.Equal(t, citizen.ID, *d.ReportedBy)

	resp = c.PostForm("/report_disaster", url.Values{"type": {"fire"}, "location": {"Hill"}, "date_time": {"2024-01-01 10:00:00"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.PostForm("/report_disaster", url.Values{
		"type": {"fire"}, "location": {"Hill"}, "date_time": {"yesterday"}, "description": {"smoke"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, testutil.ReadBody(t, resp), "2024-01-01T10:00")

	resp = c.PostForm("/report_disaster", url.Values{
		"type": {strings.Repeat("f", 51)}, "location": {"Hill"}, "date_time": {"2024-01-01 10:00:00"}, "description": {"smoke"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, testutil.ReadBody(t, resp), "at most 50")

	resp = c.PostForm("/report_disaster", url.Values{
		"type": {"fire"}, "location": {strings.Repeat("l", 256)}, "date_time": {"2024-01-01 10:00:00"}, "description": {"smoke"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Disaster{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReportHandler_CitizenOnly(t *testing.T) {
	db := testutil.NewDB(t)
	app, _ := testutil.NewApp(t, db)
	testutil.CreateUser(t, db, "V", "v@x.com", "p", models.RoleVolunteer)

	c := testutil.NewClient(t, app)
	c.Login("v@x.com", "p")

	resp := c.PostForm("/report_disaster", url.Values{
		"type": {"flood"}, "location": {"Riverside"}, "date_time": {"2024-01-01 10:00:00"}, "description": {"x"},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDetailAndAssignHandlers(t *testing.T) {
	db := testutil.NewDB(t)
	app, _ := testutil.NewApp(t, db)
	testutil.CreateUser(t, db, "Admin", "admin@x.com", "p", models.RoleAdmin)
	v := testutil.CreateUser(t, db, "V", "v@x.com", "p", models.RoleVolunteer)
	cit := testutil.CreateUser(t, db, "C", "c@x.com", "p", models.RoleCitizen)
	d := testutil.CreateDisaster(t, db, &cit.ID, "flood", "Riverside", "2024-01-01 10:00:00")

	c := testutil.NewClient(t, app)
	c.Login("admin@x.com", "p")

	for _, path := range []string{"/disaster/999", "/disaster/abc"} {
		resp := c.Get(path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, "Disaster not found", testutil.ReadBody(t, resp), path)
	}

	detailPath := fmt.Sprintf("/disaster/%d", d.ID)
	form := url.Values{"volunteer_id": {fmt.Sprint(v.ID)}}

	resp := c.PostForm(detailPath, form)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, detailPath, resp.Header.Get("Location"))

	resp = c.PostForm(detailPath, form)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Volunteer already assigned to this disaster.", testutil.ReadBody(t, resp))

	resp = c.PostForm(detailPath, url.Values{"volunteer_id": {fmt.Sprint(cit.ID)}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.PostForm("/disaster/999", form)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.VolunteerAssignment{}).
		Where("disaster_id = ? AND volunteer_id = ?", d.ID, v.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	resp = c.GetJSON(detailPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Disaster struct {
			ID   uint   `json:"disaster_id"`
			Type string `json:"type"`
		} `json:"disaster"`
		Volunteers         []struct{ UserID uint `json:"user_id"` } `json:"volunteers"`
		AssignedVolunteers []struct{ UserID uint `json:"user_id"` } `json:"assigned_volunteers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, d.ID, body.Disaster.ID)
	assert.Equal(t, "flood", body.Disaster.Type)
	assert.Len(t, body.Volunteers, 1)
	require.Len(t, body.AssignedVolunteers, 1)
	assert.Equal(t, v.ID, body.AssignedVolunteers[0].UserID)

	resp = c.Get("/view_disasters")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	html := testutil.ReadBody(t, resp)
	assert.Contains(t, html, "Riverside")
	assert.Contains(t, html, "c@x.com")
}
