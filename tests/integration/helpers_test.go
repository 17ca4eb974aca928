//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func baseURL() string {
	return envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
}

// newClient returns an HTTP client with its own cookie jar. Each client is a
// distinct session: the server identifies callers by the session cookie, so
// two clients joining the same room are two different players.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func doJSON(t *testing.T, client *http.Client, method, url string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response from %s %s: %v (body: %s)", method, url, err, raw)
		}
	}
	return resp, decoded
}

func decodeJSON(resp *http.Response, out any) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

func createRoom(t *testing.T, client *http.Client) string {
	t.Helper()

	resp, body := doJSON(t, client, http.MethodPost, baseURL()+"/rooms", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: unexpected status %d: %v", resp.StatusCode, body)
	}
	roomID, ok := body["room_id"].(string)
	if !ok || roomID == "" {
		t.Fatalf("create room: missing room_id in %v", body)
	}
	return roomID
}

func joinRoom(t *testing.T, client *http.Client, roomID, username string) map[string]any {
	t.Helper()

	payload := map[string]string{
		"username": fmt.Sprintf("%s-%d", username, time.Now().UnixNano()),
	}
	resp, body := doJSON(t, client, http.MethodPost, fmt.Sprintf("%s/rooms/%s/players", baseURL(), roomID), payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("join room: unexpected status %d: %v", resp.StatusCode, body)
	}
	return body
}

func createGame(t *testing.T, client *http.Client, roomID string) (string, []any) {
	t.Helper()

	resp, body := doJSON(t, client, http.MethodPost, baseURL()+"/games", map[string]string{"room_id": roomID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create game: unexpected status %d: %v", resp.StatusCode, body)
	}
	gameObj, ok := body["game"].(map[string]any)
	if !ok {
		t.Fatalf("create game: missing game in %v", body)
	}
	gameID, _ := gameObj["game_id"].(string)
	rounds, _ := body["rounds"].([]any)
	if gameID == "" || len(rounds) == 0 {
		t.Fatalf("create game: incomplete response %v", body)
	}
	return gameID, rounds
}
