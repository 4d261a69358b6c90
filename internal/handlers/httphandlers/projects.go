package httphandlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

type createProjectRequest struct {
	Name               string   `json:"name" binding:"required"`
	Budget             string   `json:"budget" binding:"required"`
	Tasks              []string `json:"tasks" binding:"required"`
	ReviewerCommitment string   `json:"reviewerCommitment"`
}

func (h *HTTPHandler) CreateProject(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budget, err := parseAmount(req.Budget)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reviewerCommitment common.Hash
	if req.ReviewerCommitment != "" {
		reviewerCommitment = common.HexToHash(req.ReviewerCommitment)
	}

	project, err := h.engine.CreateProject(actor, req.Name, budget, req.Tasks, reviewerCommitment)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.Header("Location", h.location("projects", project.ID))
	ctx.JSON(http.StatusCreated, mapProject(project))
}

func (h *HTTPHandler) GetProjects(ctx *gin.Context) {
	projects, err := h.engine.ListProjects(ctx)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	data := []Project{}
	for _, p := range projects {
		data = append(data, mapProject(p))
	}
	ctx.JSON(http.StatusOK, data)
}

func (h *HTTPHandler) GetProject(ctx *gin.Context) {
	project, err := h.engine.GetProject(ctx, ctx.Param("ID"))
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, mapProject(project))
}

func (h *HTTPHandler) GetProjectTenders(ctx *gin.Context) {
	tenders, err := h.engine.ListTenders(ctx, ctx.Param("ID"))
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	data := []Tender{}
	for _, t := range tenders {
		data = append(data, mapTender(t))
	}
	ctx.JSON(http.StatusOK, data)
}

func (h *HTTPHandler) GetEligibility(ctx *gin.Context) {
	addrHex := ctx.Param("address")
	if !common.IsHexAddress(addrHex) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid bidder address"})
		return
	}
	addr := common.HexToAddress(addrHex)

	ctx.JSON(http.StatusOK, gin.H{
		"bidder":             addr.Hex(),
		"eligible":           h.engine.IsEligible(addr),
		"outstandingReports": h.engine.OutstandingReports(addr),
	})
}

// GetBidderTenders lists the tenders bound to a revealed bidder. Anonymous
// bids never show up here.
func (h *HTTPHandler) GetBidderTenders(ctx *gin.Context) {
	addrHex := ctx.Param("address")
	if !common.IsHexAddress(addrHex) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid bidder address"})
		return
	}

	tenders, err := h.engine.TendersByBidder(ctx, common.HexToAddress(addrHex))
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	data := []Tender{}
	for _, t := range tenders {
		data = append(data, mapTender(t))
	}
	ctx.JSON(http.StatusOK, data)
}
