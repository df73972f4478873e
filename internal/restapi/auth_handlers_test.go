package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createCodeViaAPI mints a driver code through the admin endpoint and
// returns its plaintext.
func createCodeViaAPI(t *testing.T, api *RestAPI) string {
	t.Helper()
	rec := serveRequest(api, http.MethodPost, adminPath("/api/v1/admin/driver-codes"), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data map[string]string
	decodeData(t, rec, &data)
	require.Len(t, data["code"], 10)
	return data["code"]
}

func TestDriverLoginFlow(t *testing.T) {
	api, _ := newTestAPI(t)
	seedLineWithStops(t, api, "L1", "A", "B")

	code := createCodeViaAPI(t, api)

	rec := serveRequest(api, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"code": code}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session sessionResponse
	decodeData(t, rec, &session)
	require.NotEmpty(t, session.Token)
	assert.Empty(t, session.LineID)

	// Validate the session, then bind it to a line.
	rec = serveRequest(api, http.MethodGet, "/api/v1/auth/session", nil, bearerHeader(session.Token))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serveRequest(api, http.MethodPut, "/api/v1/auth/session/line",
		map[string]string{"lineId": "L1"}, bearerHeader(session.Token))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &session)
	assert.Equal(t, "L1", session.LineID)

	// Logout kills the token.
	rec = serveRequest(api, http.MethodPost, "/api/v1/auth/logout", nil, bearerHeader(session.Token))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serveRequest(api, http.MethodGet, "/api/v1/auth/session", nil, bearerHeader(session.Token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsBadPayloads(t *testing.T) {
	api, _ := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing code", map[string]string{}},
		{"short code", map[string]string{"code": "1234"}},
		{"non-numeric code", map[string]string{"code": "abcdefghij"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveRequest(api, http.MethodPost, "/api/v1/auth/login", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginWrongCodeUnauthorized(t *testing.T) {
	api, _ := newTestAPI(t)
	createCodeViaAPI(t, api)

	rec := serveRequest(api, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"code": "0000000000"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginCodeInUseConflict(t *testing.T) {
	api, _ := newTestAPI(t)
	code := createCodeViaAPI(t, api)

	rec := serveRequest(api, http.MethodPost, "/api/v1/auth/login", map[string]string{"code": code}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveRequest(api, http.MethodPost, "/api/v1/auth/login", map[string]string{"code": code}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSessionEndpointsRequireToken(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := serveRequest(api, http.MethodGet, "/api/v1/auth/session", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serveRequest(api, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serveRequest(api, http.MethodPut, "/api/v1/auth/session/line",
		map[string]string{"lineId": "L1"}, bearerHeader("bogus"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminEndpointsRequireAPIKey(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := serveRequest(api, http.MethodPost, "/api/v1/admin/driver-codes", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serveRequest(api, http.MethodPost, "/api/v1/admin/driver-codes?key=wrong", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serveRequest(api, http.MethodGet, "/api/v1/admin/location-stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
