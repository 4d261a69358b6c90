package httphandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/civicworks/tenderengine/internal/tender/engine"
)

type submitMilestoneRequest struct {
	Sequence   int    `json:"sequence" binding:"required"`
	FundAmount string `json:"fundAmount" binding:"required"`
	ProofRef   string `json:"proofRef" binding:"required"`
	ProofMeta  string `json:"proofMeta"`
}

func (h *HTTPHandler) SubmitMilestone(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req submitMilestoneRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := parseAmount(req.FundAmount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.engine.SubmitMilestone(ctx, actor, ctx.Param("ID"), req.Sequence, amount, engine.MilestoneProof{
		Ref:  req.ProofRef,
		Meta: req.ProofMeta,
	})
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, mapMilestone(m))
}

func (h *HTTPHandler) GetMilestones(ctx *gin.Context) {
	milestones, err := h.engine.ListMilestones(ctx, ctx.Param("ID"))
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	data := []Milestone{}
	for _, m := range milestones {
		data = append(data, mapMilestone(m))
	}
	ctx.JSON(http.StatusOK, data)
}

func (h *HTTPHandler) ClaimMilestoneReview(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	if err := h.engine.ClaimMilestoneReview(ctx, actor, ctx.Param("ID")); err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "under review"})
}

type verifyMilestoneRequest struct {
	QualityScore *int `json:"qualityScore" binding:"required"`
}

func (h *HTTPHandler) VerifyMilestone(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req verifyMilestoneRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.VerifyMilestone(ctx, actor, ctx.Param("ID"), *req.QualityScore); err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "verified"})
}

func (h *HTTPHandler) RejectMilestone(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req rejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.RejectMilestone(ctx, actor, ctx.Param("ID"), req.Reason); err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (h *HTTPHandler) ReleaseMilestoneFunds(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	amount, err := h.engine.ReleaseMilestoneFunds(ctx, actor, ctx.Param("ID"))
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"amountReleased": amount.String()})
}
