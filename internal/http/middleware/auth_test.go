package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/healthyback-backend/internal/domain"
	"github.com/yungbote/healthyback-backend/internal/platform/logger"
	"github.com/yungbote/healthyback-backend/internal/requestdata"
)

type stubAuthService struct {
	validToken string
	userID     uuid.UUID
}

func (s *stubAuthService) Register(ctx context.Context, email, password string) (string, *types.User, error) {
	return "", nil, fmt.Errorf("not implemented")
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	return "", nil, fmt.Errorf("not implemented")
}

func (s *stubAuthService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString != s.validToken {
		return ctx, fmt.Errorf("invalid token")
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      s.userID,
		OwnerKey:    s.userID.String(),
	}), nil
}

func newAuthTestRouter(t *testing.T, stub *stubAuthService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	r := gin.New()
	r.Use(NewAuthMiddleware(log, stub).RequireAuth())
	r.GET("/protected", func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"owner": rd.OwnerKey})
	})
	return r
}

func TestRequireAuthPassesValidBearerToken(t *testing.T) {
	stub := &stubAuthService{validToken: "good-token", userID: uuid.New()}
	r := newAuthTestRouter(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	stub := &stubAuthService{validToken: "good-token", userID: uuid.New()}
	r := newAuthTestRouter(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	stub := &stubAuthService{validToken: "good-token", userID: uuid.New()}
	r := newAuthTestRouter(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
}
