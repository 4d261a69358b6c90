package httphandlers

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"gitlab.com/civicworks/tenderengine/internal/tender/registry"
)

type submitTenderRequest struct {
	ProjectID      string   `json:"projectId" binding:"required"`
	Name           string   `json:"name" binding:"required"`
	CommitmentHash string   `json:"commitmentHash" binding:"required"`
	Budget         string   `json:"budget" binding:"required"`
	DocumentRefs   []string `json:"documentRefs"`
}

func (h *HTTPHandler) SubmitTender(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req submitTenderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budget, err := parseAmount(req.Budget)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.engine.SubmitTender(ctx, actor, common.HexToHash(req.CommitmentHash), registry.SubmitPayload{
		ProjectID:    req.ProjectID,
		Name:         req.Name,
		Budget:       budget,
		DocumentRefs: req.DocumentRefs,
	})
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.Header("Location", h.location("tenders", t.ID))
	ctx.JSON(http.StatusCreated, mapTender(t))
}

func (h *HTTPHandler) GetTender(ctx *gin.Context) {
	t, err := h.engine.GetTender(ctx, ctx.Param("ID"))
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, mapTender(t))
}

type approveTenderRequest struct {
	Identity string `json:"identity" binding:"required"`
	Nonce    string `json:"nonce" binding:"required"`
}

func (h *HTTPHandler) ApproveTender(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req approveTenderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !common.IsHexAddress(req.Identity) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid claimed identity"})
		return
	}

	bound, err := h.engine.ApproveTender(ctx, actor, ctx.Param("ID"), common.HexToAddress(req.Identity), req.Nonce)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"boundIdentity": bound.Hex()})
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *HTTPHandler) RejectTender(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req rejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.RejectTender(ctx, actor, ctx.Param("ID"), req.Reason); err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (h *HTTPHandler) StartWork(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	if err := h.engine.StartWork(ctx, actor, ctx.Param("ID")); err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "in progress"})
}

func (h *HTTPHandler) GetTenderProgress(ctx *gin.Context) {
	progress, err := h.engine.GetTenderProgress(ctx, ctx.Param("ID"))
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, Progress{
		Released:   progress.Released.String(),
		Total:      progress.Total.String(),
		Percentage: progress.Percentage,
	})
}

func (h *HTTPHandler) GetTenderJournal(ctx *gin.Context) {
	data := []JournalEntry{}
	for _, entry := range h.engine.TenderJournal(ctx.Param("ID")) {
		data = append(data, mapJournalEntry(entry))
	}
	ctx.JSON(http.StatusOK, data)
}

type qualityReportRequest struct {
	Metrics   []int    `json:"metrics" binding:"required"`
	Checklist []bool   `json:"checklist" binding:"required"`
	ProofRefs []string `json:"proofRefs"`
}

func (h *HTTPHandler) SubmitQualityReport(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req qualityReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.SubmitQualityReport(ctx, actor, ctx.Param("ID"), req.Metrics, req.Checklist, req.ProofRefs); err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.Header("Location", h.location("tenders", ctx.Param("ID"), "quality-report"))
	ctx.JSON(http.StatusCreated, gin.H{"status": "report filed"})
}

func (h *HTTPHandler) GetQualityReport(ctx *gin.Context) {
	report, err := h.engine.GetQualityReport(ctx.Param("ID"))
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, QualityReport{
		TenderID:    report.TenderID,
		Metrics:     report.Metrics,
		Checklist:   report.Checklist,
		ProofRefs:   report.ProofRefs,
		SubmittedAt: report.SubmittedAt.Format(time.RFC3339),
	})
}
