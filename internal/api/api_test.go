package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"joja_garden/internal/config"
	"joja_garden/internal/db"
	"joja_garden/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	adminCPF      = "52998224725"
	adminPassword = "Admin123"
	userCPF       = "46632770045"
	userPassword  = "Garden123"
	otherCPF      = "04148095058"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
		CacheTTL:        time.Minute,
		LoginRatePerMin: 1000,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	r, err := NewRouter(gdb, rdb, cfg)
	require.NoError(t, err)
	return &testServer{t: t, router: r, db: gdb, redis: mr}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, w)["error"].(string)
}

func (s *testServer) login(cpf, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/token", "", gin.H{"username": cpf, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return decode[TokenResponse](s.t, w).AccessToken
}

// bootstrapAdmin creates the first administrator and returns its token
func (s *testServer) bootstrapAdmin() string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/admins", "", gin.H{
		"name": "Morris", "cpf": adminCPF, "password": adminPassword, "registration": "JOJA-001",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(adminCPF, adminPassword)
}

// createUser registers a regular user and returns its id and token
func (s *testServer) createUser(adminToken, cpf, email string) (uint, string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/users", adminToken, gin.H{
		"name": "Farmer " + cpf[:3], "cpf": cpf, "email": email, "password": userPassword, "address": "Pelican Town",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.User](s.t, w).ID, s.login(cpf, userPassword)
}

func (s *testServer) createCatalogPlant(adminToken, name, scientific string) domain.CatalogPlant {
	s.t.Helper()
	w := s.do(http.MethodPost, "/catalog", adminToken, gin.H{"name": name, "scientific_name": scientific})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.CatalogPlant](s.t, w)
}

func (s *testServer) assignPlant(adminToken string, userID, catalogID uint, plantedOn string) domain.UserPlant {
	s.t.Helper()
	w := s.do(http.MethodPost, fmt.Sprintf("/users/%d/plants", userID), adminToken, gin.H{
		"catalog_plant_id": catalogID, "planted_on": plantedOn,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.UserPlant](s.t, w)
}

func (s *testServer) count(model any, query string, args ...any) int64 {
	s.t.Helper()
	var n int64
	require.NoError(s.t, s.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func pathf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
