package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dekarrin/lexcheck/internal/config"
	"github.com/dekarrin/lexcheck/internal/token"
	"github.com/dekarrin/lexcheck/internal/version"
	"github.com/dekarrin/lexcheck/server/api"
	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type testClient struct {
	t       *testing.T
	handler http.Handler
}

func (tc testClient) do(method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			tc.t.Fatalf("could not encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, api.PathPrefix+path, &reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	tc.handler.ServeHTTP(w, req)
	return w
}

func (tc testClient) login(username, password string) api.SessionModel {
	w := tc.do(http.MethodPost, "/login", "", api.LoginRequest{Username: username, Password: password})
	if w.Code != http.StatusCreated {
		tc.t.Fatalf("login as %q failed: HTTP-%d %s", username, w.Code, w.Body.String())
	}
	var resp api.SessionModel
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		tc.t.Fatalf("could not decode login response: %v", err)
	}
	return resp
}

// analysisResponse mirrors api.AnalysisModel with the report left undecoded.
type analysisResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Language string          `json:"language"`
	OwnerID  string          `json:"owner_id"`
	Counts   map[string]int  `json:"counts"`
	Total    int             `json:"total"`
	Report   json.RawMessage `json:"report"`
}

func testHash(t *testing.T, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("could not hash password: %v", err)
	}
	return base64.StdEncoding.EncodeToString(hash)
}

func newTestServer(t *testing.T) testClient {
	cfg := Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Accounts: []Account{
			{Username: "ana", PasswordHash: testHash(t, "ana-pw"), Role: dao.Normal},
			{Username: "bo", PasswordHash: testHash(t, "bo-pw"), Role: dao.Normal},
			{Username: "root", PasswordHash: testHash(t, "root-pw"), Role: dao.Admin},
		},
	}

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("could not create server: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return testClient{t: t, handler: s.Handler()}
}

func Test_Server_Info(t *testing.T) {
	assert := assert.New(t)
	client := newTestServer(t)

	w := client.do(http.MethodGet, "/info", "", nil)

	assert.Equal(http.StatusOK, w.Code)
	var resp api.InfoModel
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(version.Current, resp.Version.Lexcheck)
	assert.Equal(version.ServerCurrent, resp.Version.Server)
}

func Test_Server_Login(t *testing.T) {
	testCases := []struct {
		name         string
		body         interface{}
		expectStatus int
	}{
		{name: "good credentials", body: api.LoginRequest{Username: "ana", Password: "ana-pw"}, expectStatus: http.StatusCreated},
		{name: "wrong password", body: api.LoginRequest{Username: "ana", Password: "nope"}, expectStatus: http.StatusUnauthorized},
		{name: "unknown user", body: api.LoginRequest{Username: "cy", Password: "ana-pw"}, expectStatus: http.StatusUnauthorized},
		{name: "missing password", body: api.LoginRequest{Username: "ana"}, expectStatus: http.StatusBadRequest},
		{name: "no body", body: nil, expectStatus: http.StatusBadRequest},
	}

	client := newTestServer(t)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			w := client.do(http.MethodPost, "/login", "", tc.body)

			assert.Equal(tc.expectStatus, w.Code)
			if tc.expectStatus == http.StatusUnauthorized {
				assert.NotEmpty(w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func Test_Server_Analyses(t *testing.T) {
	assert := assert.New(t)
	client := newTestServer(t)

	ana := client.login("ana", "ana-pw")
	bo := client.login("bo", "bo-pw")
	root := client.login("root", "root-pw")

	req := api.AnalysisRequest{Name: "ints", Source: "int badInt1 = 3.14;"}

	w := client.do(http.MethodPost, "/analyses", "", req)
	assert.Equal(http.StatusUnauthorized, w.Code)

	w = client.do(http.MethodPost, "/analyses", ana.Token, req)
	if !assert.Equal(http.StatusCreated, w.Code, w.Body.String()) {
		return
	}
	var created analysisResponse
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal("ints", created.Name)
	assert.Equal(ana.UserID, created.OwnerID)
	assert.Equal(1, created.Counts["E1"])
	assert.Equal(0, created.Counts["E2"])
	assert.Equal(1, created.Total)
	assert.NotEmpty(created.Report)
	assert.Equal("java", created.Language)
	assert.Equal("java", w.Header().Get("X-Lexcheck-Language"))
	assert.Equal("1", w.Header().Get("X-Lexcheck-Flags"))
	assert.Equal("E1=1,E2=0,E3=0,E4=0", w.Header().Get("X-Lexcheck-Counts"))

	w = client.do(http.MethodPost, "/analyses", bo.Token, api.AnalysisRequest{Source: "int x = 1;"})
	assert.Equal(http.StatusCreated, w.Code)
	var second analysisResponse
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &second))

	w = client.do(http.MethodGet, "/analyses", "", nil)
	assert.Equal(http.StatusOK, w.Code)
	var list []analysisResponse
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(list, 2)
	for _, item := range list {
		assert.Empty(item.Report)
	}

	w = client.do(http.MethodGet, "/analyses/"+created.ID, "", nil)
	assert.Equal(http.StatusOK, w.Code)

	w = client.do(http.MethodGet, "/analyses/"+uuid.New().String(), "", nil)
	assert.Equal(http.StatusNotFound, w.Code)

	// only the owner or an admin may delete
	w = client.do(http.MethodDelete, "/analyses/"+created.ID, bo.Token, nil)
	assert.Equal(http.StatusForbidden, w.Code)

	w = client.do(http.MethodDelete, "/analyses/"+created.ID, ana.Token, nil)
	assert.Equal(http.StatusNoContent, w.Code)

	w = client.do(http.MethodDelete, "/analyses/"+second.ID, root.Token, nil)
	assert.Equal(http.StatusNoContent, w.Code)

	w = client.do(http.MethodGet, "/analyses/"+created.ID, "", nil)
	assert.Equal(http.StatusNotFound, w.Code)
}

func Test_Server_TokensAndLogout(t *testing.T) {
	assert := assert.New(t)
	client := newTestServer(t)

	ana := client.login("ana", "ana-pw")
	bo := client.login("bo", "bo-pw")

	w := client.do(http.MethodPost, "/tokens", ana.Token, nil)
	assert.Equal(http.StatusCreated, w.Code)

	w = client.do(http.MethodPost, "/tokens", "", nil)
	assert.Equal(http.StatusUnauthorized, w.Code)

	w = client.do(http.MethodDelete, "/login/"+bo.UserID, ana.Token, nil)
	assert.Equal(http.StatusForbidden, w.Code)

	w = client.do(http.MethodDelete, "/login/"+ana.UserID, ana.Token, nil)
	assert.Equal(http.StatusNoContent, w.Code)
}

func Test_Server_UnknownRoutes(t *testing.T) {
	assert := assert.New(t)
	client := newTestServer(t)

	w := client.do(http.MethodGet, "/nothing", "", nil)
	assert.Equal(http.StatusNotFound, w.Code)

	w = client.do(http.MethodPut, "/info", "", nil)
	assert.Equal(http.StatusMethodNotAllowed, w.Code)
}

func Test_New_DefaultAdmin(t *testing.T) {
	assert := assert.New(t)

	s, err := New(Config{Secret: []byte("0123456789abcdef0123456789abcdef")})
	if !assert.NoError(err) {
		return
	}
	defer s.Close()

	users, err := s.db.Users().GetAll(context.Background())
	assert.NoError(err)
	if assert.Len(users, 1) {
		assert.Equal(DefaultAdminUsername, users[0].Username)
		assert.Equal(dao.Admin, users[0].Role)
	}
}

func Test_Server_AnalysisLanguage(t *testing.T) {
	testCases := []struct {
		name         string
		req          api.AnalysisRequest
		expectStatus int
		expectLang   string
		expectCounts map[string]int
	}{
		{
			name:         "java by default",
			req:          api.AnalysisRequest{Name: "Main.java", Source: "int x = 3.14;"},
			expectStatus: http.StatusCreated,
			expectLang:   "java",
			expectCounts: map[string]int{"E1": 1},
		},
		{
			name:         "kotlin from the name",
			req:          api.AnalysisRequest{Name: "Input.kt", Source: "var x: Int = 3.14\nvaar y = 2\n"},
			expectStatus: http.StatusCreated,
			expectLang:   "kotlin",
			expectCounts: map[string]int{"E1": 1, "E2": 1},
		},
		{
			name:         "explicit language wins over the name",
			req:          api.AnalysisRequest{Name: "Main.java", Language: "kotlin", Source: "val c: Char = \"c\"\n"},
			expectStatus: http.StatusCreated,
			expectLang:   "kotlin",
			expectCounts: map[string]int{"E1": 1},
		},
		{
			name:         "unsupported language",
			req:          api.AnalysisRequest{Language: "cobol", Source: "MOVE 1 TO X."},
			expectStatus: http.StatusBadRequest,
		},
	}

	client := newTestServer(t)
	ana := client.login("ana", "ana-pw")

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			w := client.do(http.MethodPost, "/analyses", ana.Token, tc.req)

			if !assert.Equal(tc.expectStatus, w.Code, w.Body.String()) || tc.expectStatus != http.StatusCreated {
				return
			}
			var created analysisResponse
			assert.NoError(json.Unmarshal(w.Body.Bytes(), &created))
			assert.Equal(tc.expectLang, created.Language)
			assert.Equal(tc.expectLang, w.Header().Get("X-Lexcheck-Language"))
			for code, n := range tc.expectCounts {
				assert.Equal(n, created.Counts[code], "count of %s", code)
			}
		})
	}
}

func Test_Server_SessionTallies(t *testing.T) {
	assert := assert.New(t)
	client := newTestServer(t)

	ana := client.login("ana", "ana-pw")
	assert.Equal(0, ana.Analyses)
	assert.Equal("normal", ana.Role)
	assert.NotEmpty(ana.Expires)

	sources := []string{"int x = 3.14;", "y = 2;", "int z = 1;"}
	for _, src := range sources {
		w := client.do(http.MethodPost, "/analyses", ana.Token, api.AnalysisRequest{Source: src})
		assert.Equal(http.StatusCreated, w.Code)
	}

	again := client.login("ana", "ana-pw")
	assert.Equal(3, again.Analyses)
	assert.Equal(map[string]int{"E1": 1, "E2": 0, "E3": 1, "E4": 0}, again.Flags)

	w := client.do(http.MethodPost, "/tokens", again.Token, nil)
	if !assert.Equal(http.StatusCreated, w.Code) {
		return
	}
	var refreshed api.SessionModel
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.Equal(3, refreshed.Analyses)
	assert.Equal(again.UserID, refreshed.UserID)

	root := client.login("root", "root-pw")
	assert.Equal("admin", root.Role)
	assert.Equal(0, root.Analyses)
}

func Test_ParseStore(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    Store
		expectErr bool
	}{
		{name: "inmem", input: "inmem", expect: Store{Engine: EngineInMemory}},
		{name: "engine is not case sensitive", input: "InMem", expect: Store{Engine: EngineInMemory}},
		{name: "sqlite", input: "sqlite:/var/data", expect: Store{Engine: EngineSQLite, Dir: "/var/data"}},
		{name: "sqlite dir keeps its colons", input: "sqlite:C:/data", expect: Store{Engine: EngineSQLite, Dir: "C:/data"}},
		{name: "sqlite without dir", input: "sqlite", expectErr: true},
		{name: "inmem with dir", input: "inmem:foo", expectErr: true},
		{name: "unknown engine", input: "postgres:foo", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := ParseStore(tc.input)
			if tc.expectErr {
				assert.Error(err)
				return
			}

			assert.NoError(err)
			assert.Equal(tc.expect, actual)
			assert.Equal(strings.ToLower(tc.input), strings.ToLower(actual.String()))
		})
	}
}

func Test_FitSecret(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectLen int
		expectErr bool
	}{
		{name: "short secret is repeated", input: "abc", expectLen: 48},
		{name: "min size secret is kept", input: strings.Repeat("s", MinSecretSize), expectLen: MinSecretSize},
		{name: "max size secret is kept", input: strings.Repeat("s", MaxSecretSize), expectLen: MaxSecretSize},
		{name: "over max size", input: strings.Repeat("s", MaxSecretSize+1), expectErr: true},
		{name: "repeated past max size", input: strings.Repeat("s", 31), expectLen: 62},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := FitSecret([]byte(tc.input))
			if tc.expectErr {
				assert.Error(err)
				return
			}

			assert.NoError(err)
			assert.Len(actual, tc.expectLen)
			assert.True(strings.HasPrefix(string(actual), tc.input))
		})
	}
}

func Test_FromConfig(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.Analyzer.Language = "kotlin"
	cfg.Server.Secret = "hunter2"
	cfg.Server.DB = "sqlite:data"
	cfg.Server.UnauthDelayMillis = 250
	cfg.Server.Accounts = []config.Account{{Username: "ana", PasswordHash: "x", Role: "admin"}}

	srvCfg, err := FromConfig(cfg)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(Store{Engine: EngineSQLite, Dir: "data"}, srvCfg.Store)
	assert.Equal(250*time.Millisecond, srvCfg.UnauthDelay)
	assert.Len(srvCfg.Secret, 56)
	assert.Equal([]Account{{Username: "ana", PasswordHash: "x", Role: dao.Admin}}, srvCfg.Accounts)
	if assert.NotNil(srvCfg.Analyzer) {
		assert.Equal(token.Kotlin, srvCfg.Analyzer.Tables().Language())
	}

	cfg.Server.DB = "postgres"
	_, err = FromConfig(cfg)
	assert.Error(err)
}

func Test_Config_Validate(t *testing.T) {
	assert := assert.New(t)

	cfg := Config{}
	assert.Error(cfg.Validate())

	cfg.Secret = []byte("0123456789abcdef0123456789abcdef")
	assert.NoError(cfg.Validate())

	cfg.Store = Store{Engine: EngineSQLite}
	assert.Error(cfg.Validate())

	cfg.Store = Store{}
	cfg.Secret = make([]byte, MaxSecretSize+1)
	assert.Error(cfg.Validate())
}
