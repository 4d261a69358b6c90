package httphandlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.com/civicworks/tenderengine/internal/interfaces"
	"gitlab.com/civicworks/tenderengine/internal/tender"
	"gitlab.com/civicworks/tenderengine/internal/tender/engine"
)

const BuildVersion = "0.1.0"

type HTTPHandler struct {
	engine    *engine.Engine
	publicUrl *url.URL
	log       interfaces.ILogger
}

func NewHTTPHandler(eng *engine.Engine, publicUrl *url.URL, log interfaces.ILogger) *gin.Engine {
	handl := &HTTPHandler{
		engine:    eng,
		publicUrl: publicUrl,
		log:       log,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.GET("/healthcheck", handl.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/projects", handl.CreateProject)
	r.GET("/projects", handl.GetProjects)
	r.GET("/projects/:ID", handl.GetProject)
	r.GET("/projects/:ID/tenders", handl.GetProjectTenders)

	r.POST("/tenders", handl.SubmitTender)
	r.GET("/tenders/:ID", handl.GetTender)
	r.POST("/tenders/:ID/approve", handl.ApproveTender)
	r.POST("/tenders/:ID/reject", handl.RejectTender)
	r.POST("/tenders/:ID/start", handl.StartWork)
	r.GET("/tenders/:ID/progress", handl.GetTenderProgress)
	r.GET("/tenders/:ID/journal", handl.GetTenderJournal)
	r.POST("/tenders/:ID/milestones", handl.SubmitMilestone)
	r.GET("/tenders/:ID/milestones", handl.GetMilestones)
	r.POST("/tenders/:ID/quality-report", handl.SubmitQualityReport)
	r.GET("/tenders/:ID/quality-report", handl.GetQualityReport)

	r.POST("/milestones/:ID/claim-review", handl.ClaimMilestoneReview)
	r.POST("/milestones/:ID/verify", handl.VerifyMilestone)
	r.POST("/milestones/:ID/reject", handl.RejectMilestone)
	r.POST("/milestones/:ID/release", handl.ReleaseMilestoneFunds)

	r.GET("/bidders/:address/eligibility", handl.GetEligibility)
	r.GET("/bidders/:address/tenders", handl.GetBidderTenders)

	err := r.SetTrustedProxies(nil)
	if err != nil {
		panic(err)
	}

	return r
}

func (h *HTTPHandler) HealthCheck(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status":  "healthy",
		"version": BuildVersion,
	})
}

// actor builds the caller capability from the identity headers. The session
// layer in front of the engine is expected to have authenticated them.
func (h *HTTPHandler) actor(ctx *gin.Context) (tender.Actor, bool) {
	role := tender.Role(ctx.GetHeader("X-Actor-Role"))
	if !role.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown actor role"})
		return tender.Actor{}, false
	}

	addrHex := ctx.GetHeader("X-Actor-Address")
	if !common.IsHexAddress(addrHex) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid actor address"})
		return tender.Actor{}, false
	}

	return tender.Actor{
		Address: common.HexToAddress(addrHex),
		Role:    role,
	}, true
}

// location renders the URL of a created resource for the Location header,
// absolute when a public url is configured.
func (h *HTTPHandler) location(path ...string) string {
	if h.publicUrl == nil {
		return "/" + strings.Join(path, "/")
	}
	return h.publicUrl.JoinPath(path...).String()
}

func (h *HTTPHandler) abortWithError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tender.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, tender.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tender.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, tender.ErrDuplicateCommitment),
		errors.Is(err, tender.ErrInvalidState),
		errors.Is(err, tender.ErrIneligibleBidder):
		status = http.StatusConflict
	case errors.Is(err, tender.ErrBudgetExceeded):
		status = http.StatusUnprocessableEntity
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
