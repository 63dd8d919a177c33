package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/relief-verification-api/internal/models"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
	seen   string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.seen = token
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/items/:id", chain...)
	return r
}

func perform(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/items/user-1", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTRequiresBearerToken(t *testing.T) {
	validator := &stubValidator{claims: &models.JWTClaims{UserID: "user-1", Role: models.RoleAssessor}}
	r := newRouter(JWT(validator))

	assert.Equal(t, http.StatusUnauthorized, perform(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, "Bearer bad").Code)
	assert.Equal(t, http.StatusNoContent, perform(r, "bearer  good ").Code)
	assert.Equal(t, "good", validator.seen)
}

func TestRBAC(t *testing.T) {
	assessor := &stubValidator{claims: &models.JWTClaims{UserID: "user-1", Role: models.RoleAssessor}}
	other := &stubValidator{claims: &models.JWTClaims{UserID: "user-2", Role: models.RoleAssessor}}
	coordinator := &stubValidator{claims: &models.JWTClaims{UserID: "coord-1", Role: models.RoleCoordinator}}

	assert.Equal(t, http.StatusForbidden, perform(newRouter(JWT(assessor), RequireCoordinator()), "Bearer good").Code)
	assert.Equal(t, http.StatusNoContent, perform(newRouter(JWT(coordinator), RequireCoordinator()), "Bearer good").Code)
	assert.Equal(t, http.StatusNoContent, perform(newRouter(JWT(assessor), RBAC(string(models.RoleAdmin), "SELF")), "Bearer good").Code)
	assert.Equal(t, http.StatusForbidden, perform(newRouter(JWT(other), RBAC(string(models.RoleAdmin), "SELF")), "Bearer good").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(newRouter(RequireCoordinator()), "").Code)
}

type touchRecorder struct {
	users []string
	ttl   time.Duration
	err   error
}

func (t *touchRecorder) Touch(_ context.Context, userID string, ttl time.Duration) error {
	t.users = append(t.users, userID)
	t.ttl = ttl
	return t.err
}

func TestCoordinatorPresenceOnlyTracksCoordinators(t *testing.T) {
	recorder := &touchRecorder{}
	coordinator := &stubValidator{claims: &models.JWTClaims{UserID: "coord-1", Role: models.RoleCoordinator}}
	assessor := &stubValidator{claims: &models.JWTClaims{UserID: "user-1", Role: models.RoleAssessor}}

	perform(newRouter(JWT(coordinator), CoordinatorPresence(recorder, 15*time.Minute, nil)), "Bearer good")
	perform(newRouter(JWT(assessor), CoordinatorPresence(recorder, 15*time.Minute, nil)), "Bearer good")
	assert.Equal(t, []string{"coord-1"}, recorder.users)
	assert.Equal(t, 15*time.Minute, recorder.ttl)

	recorder.err = errors.New("redis down")
	rec := perform(newRouter(JWT(coordinator), CoordinatorPresence(recorder, time.Minute, nil)), "Bearer good")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type auditRecorder struct {
	logs []*models.AuditLog
}

func (a *auditRecorder) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	writer := &auditRecorder{}
	coordinator := &stubValidator{claims: &models.JWTClaims{UserID: "coord-1", Role: models.RoleCoordinator}}
	r := newRouter(JWT(coordinator), Audit(writer, nil, "OVERRIDE_EXPORT", "overrides"))

	perform(r, "Bearer good")
	perform(r, "Bearer bad")

	require.Len(t, writer.logs, 1)
	log := writer.logs[0]
	assert.Equal(t, "OVERRIDE_EXPORT", log.Action)
	require.NotNil(t, log.UserID)
	assert.Equal(t, "coord-1", *log.UserID)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "user-1", *log.ResourceID)
	assert.NotEmpty(t, log.ID)
}

type observerStub struct {
	paths    []string
	statuses []int
}

func (o *observerStub) ObserveHTTPRequest(_ string, path string, status int, _ time.Duration) {
	o.paths = append(o.paths, path)
	o.statuses = append(o.statuses, status)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	observer := &observerStub{}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, "")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, []string{"/items/:id", "unmatched"}, observer.paths)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, observer.statuses)
}

func TestResponseMetaCacheFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/items/:id", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	perform(r, "")
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Contains(t, meta, "processing_time_ms")
}
