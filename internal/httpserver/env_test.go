package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

type testEnv struct {
	DB     *gorm.DB
	E      *echo.Echo
	Auth   *service.AuthService
	Events *testutil.RecordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.InitTestDB(t)
	r := repo.New(db)
	events := &testutil.RecordingPublisher{}

	authSvc := &service.AuthService{Repo: r, Events: events, JWTSecret: []byte("test-jwt-secret"), TokenTTL: time.Hour}
	orderSvc := &service.OrderService{Repo: r, Events: events}

	e := echo.New()
	e.Use(loggingmw.RequestLogger(logging.NewWithWriter("error", io.Discard)))
	Register(e, &Deps{
		AuthHandler:    &AuthHTTP{Svc: authSvc},
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: events}},
		UserHandler:    &UserHTTP{Svc: &service.UserService{Repo: r, Events: events}},
		CartHandler:    &CartHTTP{Svc: &service.CartService{Repo: r, Events: events}, Orders: orderSvc},
		OrderHandler:   &OrderHTTP{Svc: orderSvc},
		JWTSecret:      authSvc.JWTSecret,
	})

	return &testEnv{DB: db, E: e, Auth: authSvc, Events: events}
}

// doJSON sends body (marshalled unless it is a string) and returns the recorder.
func (env *testEnv) doJSON(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// userWithToken seeds a user straight into the store and signs a token for it.
func (env *testEnv) userWithToken(t *testing.T, name, role string) (*models.User, string) {
	t.Helper()
	u := testutil.CreateUser(t, env.DB, name, name+"@example.com", "password", role)
	token, _, err := env.Auth.CreateAccessToken(u)
	require.NoError(t, err)
	return u, token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}
