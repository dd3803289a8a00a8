package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
// 调用方只依赖接口，便于在测试中替换为内存 mock
type Repository struct {
	User         UserRepository
	Leave        LeaveRequestRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Leave:        NewLeaveRequestRepo(db),
		Notification: NewNotificationRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
