package handler

import (
	rxRequest "MediLink/internal/modules/prescription/application/dto/request"
	"MediLink/internal/modules/prescription/application/service"
	"MediLink/pkg/back"
	"MediLink/pkg/xerr"
	"MediLink/pkg/zlog"

	"github.com/gin-gonic/gin"
)

type PrescriptionHandler struct {
	rxSvc         service.PrescriptionService
	transitionSvc service.TransitionService
	timelineSvc   service.TimelineService
	progressSvc   service.ProgressService
}

func NewPrescriptionHandler(
	rxSvc service.PrescriptionService,
	transitionSvc service.TransitionService,
	timelineSvc service.TimelineService,
	progressSvc service.ProgressService,
) *PrescriptionHandler {
	return &PrescriptionHandler{
		rxSvc:         rxSvc,
		transitionSvc: transitionSvc,
		timelineSvc:   timelineSvc,
		progressSvc:   progressSvc,
	}
}

func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	var req rxRequest.CreatePrescriptionRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	id, err := h.rxSvc.CreatePrescription(c.Request.Context(), c.GetString("uuid"), req.ImageUrl, req.OrderId)
	back.Result(c, gin.H{"prescription_id": id}, err)
}

func (h *PrescriptionHandler) GetPrescription(c *gin.Context) {
	var req rxRequest.GetPrescriptionRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.rxSvc.GetPrescription(c.Request.Context(), req.PrescriptionId)
	back.Result(c, data, err)
}

func (h *PrescriptionHandler) ListPrescriptions(c *gin.Context) {
	var req rxRequest.ListPrescriptionsRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.rxSvc.ListByUser(c.Request.Context(), c.GetString("uuid"), req.Page, req.PageSize)
	back.Result(c, data, err)
}

// UpdateStatus 请求一次状态流转，操作人取自登录态
func (h *PrescriptionHandler) UpdateStatus(c *gin.Context) {
	var req rxRequest.UpdateStatusRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	err := h.transitionSvc.UpdateStatus(c.Request.Context(), req.PrescriptionId, req.NewStatus, c.GetString("uuid"), req.Notes)
	back.Result(c, nil, err)
}

func (h *PrescriptionHandler) GetTimeline(c *gin.Context) {
	var req rxRequest.GetPrescriptionRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.timelineSvc.GetTimeline(c.Request.Context(), req.PrescriptionId)
	back.Result(c, data, err)
}

func (h *PrescriptionHandler) GetProgress(c *gin.Context) {
	var req rxRequest.GetPrescriptionRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.progressSvc.GetProgress(c.Request.Context(), req.PrescriptionId)
	back.Result(c, data, err)
}
