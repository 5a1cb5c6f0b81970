package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtlessApps/ruckplan/internal/config"
	"github.com/ArtlessApps/ruckplan/internal/server"
)

// End to end pass over the member flow: admin publishes a program, a member
// enrolls, sees their plan, logs a ruck and watches the next day unlock.
func TestPlanFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db, cleanupDB := SetupTestDB(t)
	defer cleanupDB()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	mockAuth := NewMockAuthClient()

	cfg := &config.Config{}
	cfg.Server.MaxUploadSizeMB = 10
	cfg.JWT.Secret = "test-secret-key-123"
	cfg.JWT.AccessExpiry = 15 * time.Minute
	cfg.JWT.RefreshExpiry = 30 * 24 * time.Hour

	app := server.NewApp(server.AppDependencies{
		Config:      cfg,
		MongoDB:     db,
		RedisClient: redisClient,
		AuthClient:  mockAuth,
	})

	request := func(method, path, token string, body interface{}) *http.Response {
		var bodyReader io.Reader
		if body != nil {
			jsonBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(jsonBytes)
		}
		req, _ := http.NewRequest(method, path, bodyReader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	decode := func(resp *http.Response, dest interface{}) {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}

	// Seed an admin; normal registration only grants member
	_, err = db.Collection("users").InsertOne(context.Background(), map[string]interface{}{
		"email":        "admin@ruckplan.app",
		"firebase_uid": "uid_admin",
		"roles":        []string{"member", "admin"},
		"name":         "Admin",
	})
	require.NoError(t, err)

	mockAuth.AddMockUser("token_admin", "uid_admin", "admin@ruckplan.app")
	mockAuth.AddMockUser("token_member", "uid_member", "member@ruckplan.app")

	// Logins
	resp := request("POST", "/v1/auth/login", "token_admin", nil)
	require.Equal(t, 200, resp.StatusCode)
	var loginData map[string]interface{}
	decode(resp, &loginData)
	adminToken := loginData["token"].(string)
	require.NotEmpty(t, adminToken)

	resp = request("POST", "/v1/auth/login", "token_member", nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(resp, &loginData)
	memberToken := loginData["token"].(string)
	assert.Equal(t, true, loginData["is_new_user"])

	fmt.Println("✓ Logins OK")

	// Admin publishes a one week program with a rest day at the end
	entries := make([]map[string]interface{}, 0, 7)
	for day := 1; day <= 7; day++ {
		workoutType := "standard"
		title := fmt.Sprintf("Day %d Ruck", day)
		if day == 7 {
			workoutType = "rest"
			title = "Rest"
		}
		entries = append(entries, map[string]interface{}{
			"day_number":   day,
			"title":        title,
			"workout_type": workoutType,
		})
	}

	resp = request("POST", "/v1/programs/", adminToken, map[string]interface{}{
		"name":       "Test Week",
		"difficulty": "beginner",
		"entries":    entries,
	})
	require.Equal(t, 201, resp.StatusCode)
	var programData map[string]interface{}
	decode(resp, &programData)
	programID := programData["id"].(string)
	require.NotEmpty(t, programID)

	// Member cannot publish programs
	resp = request("POST", "/v1/programs/", memberToken, map[string]interface{}{"name": "nope"})
	assert.Equal(t, 403, resp.StatusCode)

	// Catalog is public
	resp = request("GET", "/v1/programs", "", nil)
	assert.Equal(t, 200, resp.StatusCode)

	fmt.Println("✓ Program published")

	// Member enrolls starting today, training every day so nothing is overdue
	resp = request("POST", "/v1/me/enroll", memberToken, map[string]interface{}{
		"program_id":     programID,
		"start_date":     time.Now().UTC().Format(time.RFC3339),
		"preferred_days": []int{1, 2, 3, 4, 5, 6, 7},
	})
	require.Equal(t, 201, resp.StatusCode)

	// Second enrollment is rejected
	resp = request("POST", "/v1/me/enroll", memberToken, map[string]interface{}{
		"program_id": programID,
	})
	assert.Equal(t, 409, resp.StatusCode)

	// Plan: day 1 unlocked, day 2 locked, rest day never locked
	var plan []map[string]interface{}
	resp = request("GET", "/v1/me/plan", memberToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(resp, &plan)
	require.Len(t, plan, 7)
	assert.Equal(t, false, plan[0]["is_locked"])
	assert.Equal(t, true, plan[1]["is_locked"])
	assert.Equal(t, false, plan[6]["is_locked"]) // rest

	fmt.Println("✓ Initial plan correct")

	// Member logs day 1
	resp = request("POST", "/v1/me/completions/", memberToken, map[string]interface{}{
		"client_id":           "01TESTULID0000000000000001",
		"program_workout_day": 1,
		"distance_km":         3.2,
		"duration_seconds":    2400,
		"load_kg":             10,
	})
	require.Equal(t, 201, resp.StatusCode)

	// Offline retry with the same client id does not duplicate
	resp = request("POST", "/v1/me/completions/", memberToken, map[string]interface{}{
		"client_id":           "01TESTULID0000000000000001",
		"program_workout_day": 1,
	})
	require.Less(t, resp.StatusCode, 300)

	var completions []map[string]interface{}
	resp = request("GET", "/v1/me/completions/", memberToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(resp, &completions)
	assert.Len(t, completions, 1)

	// Day 1 completed, day 2 now unlocked, day 3 still locked
	resp = request("GET", "/v1/me/plan", memberToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(resp, &plan)
	require.Len(t, plan, 7)
	assert.Equal(t, true, plan[0]["is_completed"])
	assert.Equal(t, false, plan[1]["is_locked"])
	assert.Equal(t, true, plan[2]["is_locked"])

	// Today view starts at today's entry
	var today []map[string]interface{}
	resp = request("GET", "/v1/me/plan/today", memberToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(resp, &today)
	require.NotEmpty(t, today)

	fmt.Println("✓ Completion flow correct")
}
