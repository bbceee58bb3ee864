package httptransport_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"watchgate/internal/admin"
	"watchgate/internal/auth/revocation"
	"watchgate/internal/auth/token"
	"watchgate/internal/domain"
	"watchgate/internal/gateway"
	"watchgate/internal/platform/config"
	"watchgate/internal/ratelimit"
	"watchgate/internal/screening/handler"
	"watchgate/internal/screening/ports/mocks"
	"watchgate/internal/screening/reconcile"
	"watchgate/internal/screening/service"
	"watchgate/internal/screening/session"
	httptransport "watchgate/internal/transport/http"
	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
	"watchgate/pkg/platform/audit"
	"watchgate/pkg/platform/audit/store/memory"
	"watchgate/pkg/platform/secrets"
	"watchgate/pkg/testutil"
)

const (
	testJWTSecret = "router-test-secret"
	testAdminKey  = "operator-key"
)

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Record(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAudit) byType(t audit.EventType) []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// RouterSuite exercises the assembled HTTP surface: middleware chain, auth
// gating, rate limiting, the admin key, and the operational endpoints.
type RouterSuite struct {
	suite.Suite

	ctrl       *gomock.Controller
	gateway    *mocks.MockSearchGateway
	trail      *recordingAudit
	auditStore *memory.InMemoryStore
	sessions   *session.Manager
	trl        *revocation.MemoryTRL
	router     chi.Router

	userID    string
	sessionID string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.ctrl = gomock.NewController(s.T())
	s.gateway = mocks.NewMockSearchGateway(s.ctrl)
	s.trail = &recordingAudit{}
	s.auditStore = memory.NewInMemoryStore(100)
	s.trl = revocation.NewMemoryTRL()

	s.sessions = session.NewManager(time.Minute, time.Minute, logger)
	reconciler := reconcile.New(s.gateway, config.ReconcileConfig{Attempts: 1, Interval: time.Millisecond}, logger, nil)
	svc := service.New(s.gateway, s.trail, reconciler, logger, nil)

	limiter := ratelimit.New(
		ratelimit.NewMemoryStore(),
		config.RateLimitConfig{SearchPerMinute: 1},
		s.trail,
		logger,
		nil,
	)

	keyHash, err := secrets.Hash(testAdminKey)
	s.Require().NoError(err)

	s.router = httptransport.NewRouter(httptransport.Deps{
		Screening:      handler.New(svc, s.sessions, logger),
		Admin:          admin.New(s.auditStore, s.trail, logger),
		Limiter:        limiter,
		TokenValidator: token.NewVerifier(testJWTSecret),
		Revocations:    s.trl,
		Security:       httptransport.NewSecurityRecorder(s.trail),
		AdminKeyHash:   keyHash,
		Logger:         logger,
	})

	s.userID = uuid.NewString()
	s.sessionID = uuid.NewString()
}

func (s *RouterSuite) TearDownTest() {
	s.sessions.Close()
}

func (s *RouterSuite) mintToken(jti string, expiresAt time.Time) string {
	claims := token.Claims{
		SessionID: s.sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.userID,
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	s.Require().NoError(err)
	return signed
}

func (s *RouterSuite) bearer(req *http.Request, tok string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func (s *RouterSuite) do(req *http.Request) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, req)
}

func (s *RouterSuite) TestHealthz() {
	rec := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
	testutil.AssertStatusOK(s.T(), rec)
	testutil.AssertJSONContains(s.T(), rec, "status", "ok")
}

func (s *RouterSuite) TestMetricsEndpoint() {
	rec := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(s.T(), rec)
	s.Contains(rec.Body.String(), "go_goroutines")
}

func (s *RouterSuite) TestScreeningRequiresAuth() {
	s.Run("missing token", func() {
		rec := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/screening/session"))
		testutil.AssertStatusAndError(s.T(), rec, http.StatusUnauthorized, "unauthorized")

		rejections := s.trail.byType(audit.EventTokenRejected)
		s.Require().Len(rejections, 1)
		s.Equal("missing_token", rejections[0].Reason)
	})

	s.Run("garbage token", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/screening/session")
		rec := s.do(s.bearer(req, "not.a.jwt"))
		testutil.AssertStatusAndError(s.T(), rec, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("expired token", func() {
		tok := s.mintToken(uuid.NewString(), time.Now().Add(-time.Hour))
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/screening/session")
		rec := s.do(s.bearer(req, tok))
		testutil.AssertStatusAndError(s.T(), rec, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("revoked token", func() {
		jti := uuid.NewString()
		s.Require().NoError(s.trl.RevokeToken(context.Background(), jti, time.Minute))

		tok := s.mintToken(jti, time.Now().Add(time.Hour))
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/screening/session")
		rec := s.do(s.bearer(req, tok))
		testutil.AssertStatusAndError(s.T(), rec, http.StatusUnauthorized, "unauthorized")

		rejections := s.trail.byType(audit.EventTokenRejected)
		s.Require().NotEmpty(rejections)
		s.Equal("token_revoked", rejections[len(rejections)-1].Reason)
	})
}

func (s *RouterSuite) TestScreeningAuthorized() {
	tok := s.mintToken(uuid.NewString(), time.Now().Add(time.Hour))

	req := testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/screening/session")
	rec := s.do(s.bearer(req, tok))

	testutil.AssertStatusOK(s.T(), rec)
	testutil.AssertJSONContains(s.T(), rec, "user_id", s.userID)
	testutil.AssertJSONContains(s.T(), rec, "session_id", s.sessionID)
}

func (s *RouterSuite) TestSearchRateLimited() {
	reconciled := make(chan struct{})
	s.gateway.EXPECT().
		SearchEntities(gomock.Any(), gomock.Any()).
		Return([]domain.EntityRecord{{ID: id.EntityID("Q42"), Caption: "Acme Holdings", Schema: "Company", Score: 0.41}}, 1, nil)
	s.gateway.EXPECT().
		LatestHistory(gomock.Any()).
		DoAndReturn(func(context.Context) (gateway.HistoryRecord, error) {
			defer close(reconciled)
			return gateway.HistoryRecord{}, dErrors.New(dErrors.CodeNotFound, "no history")
		})

	tok := s.mintToken(uuid.NewString(), time.Now().Add(time.Hour))

	first := s.do(s.bearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/v1/screening/search", map[string]any{
		"query": "acme",
	}), tok))
	testutil.AssertStatusOK(s.T(), first)
	s.Equal("1", first.Header().Get("X-RateLimit-Limit"))
	s.Equal("0", first.Header().Get("X-RateLimit-Remaining"))

	select {
	case <-reconciled:
	case <-time.After(2 * time.Second):
		s.Fail("reconciliation never ran")
	}

	second := s.do(s.bearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/v1/screening/search", map[string]any{
		"query": "acme again",
	}), tok))
	testutil.AssertStatus(s.T(), second, http.StatusTooManyRequests)
	s.NotEmpty(second.Header().Get("Retry-After"))

	throttled := s.trail.byType(audit.EventRateLimitExceeded)
	s.Require().Len(throttled, 1)
}

func (s *RouterSuite) TestAdminKeyGuard() {
	seeded := audit.Event{
		Type:   audit.EventEntityWhitelisted,
		Reason: "false positive",
	}.Normalize(time.Now())
	s.Require().NoError(s.auditStore.Append(context.Background(), seeded))

	s.Run("missing key", func() {
		rec := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/admin/audit/events"))
		testutil.AssertStatusAndError(s.T(), rec, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("wrong key", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/admin/audit/events")
		req.Header.Set("X-Admin-Key", "guess")
		rec := s.do(req)
		testutil.AssertStatusAndError(s.T(), rec, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("valid key", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/admin/audit/events")
		req.Header.Set("X-Admin-Key", testAdminKey)
		rec := s.do(req)
		testutil.AssertStatusOK(s.T(), rec)

		resp := testutil.UnmarshalResponse[admin.AuditEventsResponse](s.T(), rec)
		s.Require().Len(resp.Events, 1)
		s.Equal(seeded.ID, resp.Events[0].ID)
	})
}

func (s *RouterSuite) TestUnknownRouteIs404() {
	rec := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/unknown"))
	testutil.AssertStatus(s.T(), rec, http.StatusNotFound)
}
