package httphandlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gitlab.com/civicworks/tenderengine/internal/journal"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/storage"
	"gitlab.com/civicworks/tenderengine/internal/tender"
	"gitlab.com/civicworks/tenderengine/internal/tender/eligibility"
	"gitlab.com/civicworks/tenderengine/internal/tender/engine"
	"gitlab.com/civicworks/tenderengine/internal/tender/ledger"
	"gitlab.com/civicworks/tenderengine/internal/tender/registry"
)

type testServer struct {
	router *gin.Engine

	admin    common.Address
	verifier common.Address
	bidder   common.Address
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := lib.NewTestLogger()
	store := storage.NewStorage()
	eng := engine.NewEngine(
		engine.Config{QualityThreshold: 60, MilestoneSlices: 5},
		store,
		registry.NewRegistry(store, log),
		ledger.NewLedger(store, log),
		eligibility.NewGate(log),
		journal.NewJournal(256),
		log,
	)

	publicUrl, _ := url.Parse("http://localhost:8080")
	return &testServer{
		router:   NewHTTPHandler(eng, publicUrl, log),
		admin:    lib.GetRandomAddr(),
		verifier: lib.GetRandomAddr(),
		bidder:   lib.GetRandomAddr(),
	}
}

func (s *testServer) do(t *testing.T, method, path string, actor common.Address, role tender.Role, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if role != "" {
		req.Header.Set("X-Actor-Role", string(role))
		req.Header.Set("X-Actor-Address", actor.Hex())
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var res T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthcheck", common.Address{}, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestFullFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	// admin creates the project
	w := s.do(t, http.MethodPost, "/projects", s.admin, tender.RoleAdmin, gin.H{
		"name":   "school renovation",
		"budget": "100",
		"tasks":  []string{"demolition", "framing", "roofing", "interiors", "handover"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	project := decode[Project](t, w)
	require.Equal(t, "100", project.Budget)
	require.Equal(t, "http://localhost:8080/projects/"+project.ID, w.Header().Get("Location"))

	// anonymous bid
	commitment := registry.CommitmentHash(s.bidder, "n1")
	w = s.do(t, http.MethodPost, "/tenders", s.bidder, tender.RoleBidder, gin.H{
		"projectId":      project.ID,
		"name":           "sealed bid",
		"commitmentHash": commitment.Hex(),
		"budget":         "100",
		"documentRefs":   []string{"doc-1"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tdr := decode[Tender](t, w)
	require.True(t, tdr.IsAnonymous)
	require.Empty(t, tdr.Bidder, "identity must not leak before reveal")
	require.Equal(t, "http://localhost:8080/tenders/"+tdr.ID, w.Header().Get("Location"))

	// wrong proof is rejected
	w = s.do(t, http.MethodPost, "/tenders/"+tdr.ID+"/approve", s.admin, tender.RoleAdmin, gin.H{
		"identity": s.bidder.Hex(),
		"nonce":    "wrong",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// correct proof binds the bidder
	w = s.do(t, http.MethodPost, "/tenders/"+tdr.ID+"/approve", s.admin, tender.RoleAdmin, gin.H{
		"identity": s.bidder.Hex(),
		"nonce":    "n1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/tenders/"+tdr.ID+"/start", s.bidder, tender.RoleBidder, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// milestone submission, verification, release
	w = s.do(t, http.MethodPost, "/tenders/"+tdr.ID+"/milestones", s.bidder, tender.RoleBidder, gin.H{
		"sequence":   1,
		"fundAmount": "20",
		"proofRef":   "r1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	milestone := decode[Milestone](t, w)

	w = s.do(t, http.MethodPost, "/milestones/"+milestone.ID+"/verify", s.verifier, tender.RoleVerifier, gin.H{
		"qualityScore": 85,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/milestones/"+milestone.ID+"/release", s.admin, tender.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	released := decode[map[string]string](t, w)
	require.Equal(t, "20", released["amountReleased"])

	// double release maps to a conflict
	w = s.do(t, http.MethodPost, "/milestones/"+milestone.ID+"/release", s.admin, tender.RoleAdmin, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/tenders/"+tdr.ID+"/progress", common.Address{}, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	progress := decode[Progress](t, w)
	require.Equal(t, Progress{Released: "20", Total: "100", Percentage: 20}, progress)

	w = s.do(t, http.MethodGet, "/tenders/"+tdr.ID+"/journal", common.Address{}, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]JournalEntry](t, w)
	require.NotEmpty(t, entries)
}

func TestRoleHeaderRequired(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/projects", common.Address{}, "", gin.H{
		"name":   "p",
		"budget": "10",
		"tasks":  []string{"a", "b", "c", "d", "e"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBudgetExceededMapsTo422(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/projects", s.admin, tender.RoleAdmin, gin.H{
		"name":   "p",
		"budget": "100",
		"tasks":  []string{"a", "b", "c", "d", "e"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	project := decode[Project](t, w)

	commitment := registry.CommitmentHash(s.bidder, "n1")
	w = s.do(t, http.MethodPost, "/tenders", s.bidder, tender.RoleBidder, gin.H{
		"projectId":      project.ID,
		"name":           "too big",
		"commitmentHash": commitment.Hex(),
		"budget":         "101",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[map[string]string](t, w)
	require.Contains(t, body["error"], "exceeds project budget")
}

func TestEligibilityEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/bidders/"+s.bidder.Hex()+"/eligibility", common.Address{}, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[map[string]any](t, w)
	require.Equal(t, true, res["eligible"])

	w = s.do(t, http.MethodGet, "/bidders/not-an-address/eligibility", common.Address{}, "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
