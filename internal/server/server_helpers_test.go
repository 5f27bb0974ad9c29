package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const testAdmin = "host-1"

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, ts.URL+path, &body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// expectStatus checks the status and returns the decoded JSON body.
func expectStatus(t *testing.T, resp *http.Response, status int) map[string]any {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeBody(t, resp)
}

func createGame(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/games", map[string]string{"admin_id": testAdmin})
	body := expectStatus(t, resp, http.StatusCreated)
	return body["game_code"].(string)
}

func joinPlayer(t *testing.T, ts *httptest.Server, code, name string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+code+"/join", map[string]string{
		"player_name": name,
		"avatar_id":   "avatar-" + name,
	})
	body := expectStatus(t, resp, http.StatusCreated)
	return body["player_id"].(string)
}

func adminPost(t *testing.T, ts *httptest.Server, code, action string) *http.Response {
	t.Helper()
	return doRequest(t, ts, http.MethodPost, "/api/games/"+code+"/"+action, map[string]string{"admin_id": testAdmin})
}

// startedRound creates a game with the named players, starts it and spins,
// returning the code and the selected actor.
func startedRound(t *testing.T, ts *httptest.Server, names ...string) (string, string) {
	t.Helper()
	code := createGame(t, ts)
	for _, name := range names {
		joinPlayer(t, ts, code, name)
	}
	expectStatus(t, adminPost(t, ts, code, "start"), http.StatusOK)
	spin := expectStatus(t, adminPost(t, ts, code, "spin"), http.StatusOK)
	return code, spin["selected_player_id"].(string)
}
