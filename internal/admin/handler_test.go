package admin_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"watchgate/internal/admin"
	id "watchgate/pkg/domain"
	"watchgate/pkg/platform/audit"
	"watchgate/pkg/platform/audit/store/memory"
	"watchgate/pkg/testutil"
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

func (r *recordingAudit) all() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Event(nil), r.events...)
}

type AdminHandlerSuite struct {
	suite.Suite

	store    *memory.InMemoryStore
	recorder *recordingAudit
	router   chi.Router

	analyst id.UserID
	base    time.Time
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.store = memory.NewInMemoryStore(100)
	s.recorder = &recordingAudit{}
	s.analyst = id.UserID(uuid.New())
	s.base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	h := admin.New(s.store, s.recorder, logger)
	s.router = chi.NewRouter()
	s.router.Route("/api/v1/admin", func(r chi.Router) {
		h.Register(r)
	})

	s.seedTrail()
}

// seedTrail appends three events in chronological order so newest-first
// ordering is observable: a search, a whitelist decision by s.analyst, and a
// rejected token.
func (s *AdminHandlerSuite) seedTrail() {
	ctx := context.Background()

	events := []audit.Event{
		{
			Type:    audit.EventSearchExecuted,
			ActorID: id.UserID(uuid.New()),
			Details: map[string]string{"query": "putin"},
		},
		{
			Type:     audit.EventEntityWhitelisted,
			ActorID:  s.analyst,
			EntityID: id.EntityID("Q42"),
			Reason:   "false positive",
		},
		{
			Type:   audit.EventTokenRejected,
			Reason: "token expired",
		},
	}
	for i, e := range events {
		e = e.Normalize(s.base.Add(time.Duration(i) * time.Minute))
		s.Require().NoError(s.store.Append(ctx, e))
	}
}

func (s *AdminHandlerSuite) get(path string) *httptest.ResponseRecorder {
	req := testutil.NewRequest(s.T(), http.MethodGet, path)
	return testutil.DoRequest(s.router, req)
}

func (s *AdminHandlerSuite) TestAuditEventsQuery() {
	s.Run("returns all events newest first", func() {
		rec := s.get("/api/v1/admin/audit/events")
		testutil.AssertStatusOK(s.T(), rec)

		resp := testutil.UnmarshalResponse[admin.AuditEventsResponse](s.T(), rec)
		s.Require().Len(resp.Events, 3)
		s.Equal(3, resp.Count)
		s.Equal(audit.EventTokenRejected, resp.Events[0].Type)
		s.Equal(audit.EventEntityWhitelisted, resp.Events[1].Type)
		s.Equal(audit.EventSearchExecuted, resp.Events[2].Type)
	})

	s.Run("filters by category", func() {
		rec := s.get("/api/v1/admin/audit/events?category=compliance")
		testutil.AssertStatusOK(s.T(), rec)

		resp := testutil.UnmarshalResponse[admin.AuditEventsResponse](s.T(), rec)
		s.Require().Len(resp.Events, 1)
		s.Equal(audit.EventEntityWhitelisted, resp.Events[0].Type)
		s.Equal(id.EntityID("Q42"), resp.Events[0].EntityID)
	})

	s.Run("filters by type", func() {
		rec := s.get("/api/v1/admin/audit/events?type=screening.search.executed")
		testutil.AssertStatusOK(s.T(), rec)

		resp := testutil.UnmarshalResponse[admin.AuditEventsResponse](s.T(), rec)
		s.Require().Len(resp.Events, 1)
		s.Equal(audit.EventSearchExecuted, resp.Events[0].Type)
	})

	s.Run("filters by actor", func() {
		rec := s.get("/api/v1/admin/audit/events?actor_id=" + s.analyst.String())
		testutil.AssertStatusOK(s.T(), rec)

		resp := testutil.UnmarshalResponse[admin.AuditEventsResponse](s.T(), rec)
		s.Require().Len(resp.Events, 1)
		s.Equal(s.analyst, resp.Events[0].ActorID)
	})

	s.Run("honors limit", func() {
		rec := s.get("/api/v1/admin/audit/events?limit=2")
		testutil.AssertStatusOK(s.T(), rec)

		resp := testutil.UnmarshalResponse[admin.AuditEventsResponse](s.T(), rec)
		s.Require().Len(resp.Events, 2)
		s.Equal(audit.EventTokenRejected, resp.Events[0].Type)
		s.Equal(audit.EventEntityWhitelisted, resp.Events[1].Type)
	})
}

func (s *AdminHandlerSuite) TestAuditEventsValidation() {
	s.Run("rejects unknown category", func() {
		rec := s.get("/api/v1/admin/audit/events?category=gossip")
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "validation_error")
	})

	s.Run("rejects non-numeric limit", func() {
		rec := s.get("/api/v1/admin/audit/events?limit=all")
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "validation_error")
	})

	s.Run("rejects non-positive limit", func() {
		rec := s.get("/api/v1/admin/audit/events?limit=0")
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "validation_error")
	})

	s.Run("rejects malformed actor id", func() {
		rec := s.get("/api/v1/admin/audit/events?actor_id=not-a-uuid")
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "validation_error")
	})
}

func (s *AdminHandlerSuite) TestQueryingIsAudited() {
	rec := s.get("/api/v1/admin/audit/events?category=security&limit=5")
	testutil.AssertStatusOK(s.T(), rec)

	recorded := s.recorder.all()
	s.Require().Len(recorded, 1)
	s.Equal(audit.EventAuditQueried, recorded[0].Type)
	s.Equal("security", recorded[0].Details["category"])
	s.Equal("5", recorded[0].Details["limit"])
	s.Equal("1", recorded[0].Details["results"])
}

func (s *AdminHandlerSuite) TestLimitClampedToMax() {
	for i := 0; i < 5; i++ {
		e := audit.Event{
			Type:   audit.EventSearchExecuted,
			Reason: fmt.Sprintf("seed %d", i),
		}.Normalize(s.base.Add(time.Hour))
		s.Require().NoError(s.store.Append(context.Background(), e))
	}

	rec := s.get("/api/v1/admin/audit/events?limit=999999")
	testutil.AssertStatusOK(s.T(), rec)

	resp := testutil.UnmarshalResponse[admin.AuditEventsResponse](s.T(), rec)
	s.Equal(8, resp.Count)
}
