package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/model"
)

func setupTestLeaveService() (LeaveService, *mockUserRepo, *mockLeaveRepo, *mockNotificationRepo) {
	repo, userRepo, leaveRepo, notifRepo := newMockRepository()
	svc := NewLeaveService(repo, nil, zap.NewNop())

	// 预置学生与 faculty
	userRepo.users["user-1"] = &model.User{
		UserID: "user-1", Name: "Student User", Email: "student@example.com", Role: model.RoleStudent,
	}
	userRepo.users["user-2"] = &model.User{
		UserID: "user-2", Name: "Admin User", Email: "admin@example.com", Role: model.RoleFaculty,
	}

	return svc, userRepo, leaveRepo, notifRepo
}

func mustApply(t *testing.T, svc LeaveService, ownerID, reason, from, to string) *dto.LeaveResponse {
	t.Helper()
	result, err := svc.Apply(context.Background(), ownerID, &dto.ApplyLeaveRequest{
		Reason:   reason,
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		t.Fatalf("Apply(%s) 应成功: %v", reason, err)
	}
	return result
}

// ── 提交申请 ──

func TestApply_FreshRequestIsPending(t *testing.T) {
	svc, _, leaveRepo, _ := setupTestLeaveService()

	result := mustApply(t, svc, "user-1", "Medical Leave", "2026-04-10", "2026-04-12")

	if result.Status != model.LeaveStatusPending {
		t.Errorf("新申请期望 status=pending，实际=%s", result.Status)
	}
	if result.UserName != "Student User" {
		t.Errorf("期望姓名快照 Student User，实际=%s", result.UserName)
	}

	stored, _ := leaveRepo.GetByID(context.Background(), result.ID)
	if !stored.UpdatedAt.Equal(stored.CreatedAt) {
		t.Errorf("新申请 updatedAt 应等于 createdAt，实际 created=%v updated=%v",
			stored.CreatedAt, stored.UpdatedAt)
	}
}

func TestApply_InvalidDateRange(t *testing.T) {
	svc, _, leaveRepo, _ := setupTestLeaveService()

	_, err := svc.Apply(context.Background(), "user-1", &dto.ApplyLeaveRequest{
		Reason:   "Backwards",
		FromDate: "2026-04-12",
		ToDate:   "2026-04-10",
	})

	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际: %v", err)
	}
	if len(leaveRepo.leaves) != 0 {
		t.Error("非法日期范围不应写入存储")
	}
}

func TestApply_SameDayRangeAllowed(t *testing.T) {
	svc, _, _, _ := setupTestLeaveService()

	result := mustApply(t, svc, "user-1", "One Day", "2026-04-10", "2026-04-10")
	if result.Status != model.LeaveStatusPending {
		t.Errorf("单日请假应被接受，实际 status=%s", result.Status)
	}
}

func TestApply_NewestFirst(t *testing.T) {
	svc, _, _, _ := setupTestLeaveService()

	mustApply(t, svc, "user-1", "First", "2026-04-10", "2026-04-12")
	second := mustApply(t, svc, "user-1", "Second", "2026-05-10", "2026-05-12")

	list, err := svc.ListMine(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListMine 失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("期望 2 条记录，实际 %d", len(list))
	}
	if list[0].ID != second.ID {
		t.Errorf("最新申请应在列表头部，期望 ID=%d，实际=%d", second.ID, list[0].ID)
	}
	if second.ID <= list[1].ID {
		t.Error("ID 应单调递增")
	}
}

// ── 列表与权限 ──

func TestListMine_OwnershipFilter(t *testing.T) {
	svc, _, _, _ := setupTestLeaveService()

	mustApply(t, svc, "user-1", "Mine", "2026-04-10", "2026-04-12")
	mustApply(t, svc, "user-2", "Theirs", "2026-04-15", "2026-04-16")

	list, err := svc.ListMine(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListMine 失败: %v", err)
	}
	for _, l := range list {
		if l.UserID != "user-1" {
			t.Errorf("ListMine 应只返回本人申请，发现 user_id=%s", l.UserID)
		}
	}
	if len(list) != 1 {
		t.Errorf("期望 1 条，实际 %d", len(list))
	}
}

func TestListAll_RequiresFaculty(t *testing.T) {
	svc, _, _, _ := setupTestLeaveService()
	mustApply(t, svc, "user-1", "Mine", "2026-04-10", "2026-04-12")

	_, err := svc.ListAll(context.Background(), model.RoleStudent)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("student 调用 ListAll 期望 ErrNoPermission，实际: %v", err)
	}

	list, err := svc.ListAll(context.Background(), model.RoleFaculty)
	if err != nil {
		t.Fatalf("faculty 调用 ListAll 应成功: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("期望 1 条，实际 %d", len(list))
	}
}

func TestListUpcoming_FilterAndSort(t *testing.T) {
	svc, _, leaveRepo, _ := setupTestLeaveService()

	// 三条已批准 + 一条 pending + 一条过期
	late := mustApply(t, svc, "user-1", "Late", "2026-09-20", "2026-09-21")
	early := mustApply(t, svc, "user-1", "Early", "2026-09-05", "2026-09-06")
	past := mustApply(t, svc, "user-1", "Past", "2026-08-01", "2026-08-02")
	mustApply(t, svc, "user-1", "Pending", "2026-09-10", "2026-09-11")

	for _, id := range []int64{late.ID, early.ID, past.ID} {
		if _, err := leaveRepo.DecideStatus(context.Background(), id, model.LeaveStatusApproved, "user-2"); err != nil {
			t.Fatalf("预置审批失败: %v", err)
		}
	}

	list, err := svc.ListUpcoming(context.Background(), "user-1", "2026-09-01")
	if err != nil {
		t.Fatalf("ListUpcoming 失败: %v", err)
	}

	if len(list) != 2 {
		t.Fatalf("期望 2 条（排除 pending 与过期），实际 %d", len(list))
	}
	if list[0].ID != early.ID || list[1].ID != late.ID {
		t.Errorf("应按开始日期升序：期望 [%d %d]，实际 [%d %d]",
			early.ID, late.ID, list[0].ID, list[1].ID)
	}
	for _, l := range list {
		if l.Status != model.LeaveStatusApproved {
			t.Errorf("即将到来列表只含已批准申请，发现 status=%s", l.Status)
		}
		if l.FromDate < "2026-09-01" {
			t.Errorf("开始日期不应早于 as_of，实际=%s", l.FromDate)
		}
	}
}

// ── 审批 ──

func TestUpdateStatus_Approve(t *testing.T) {
	svc, _, leaveRepo, notifRepo := setupTestLeaveService()
	created := mustApply(t, svc, "user-1", "Medical Leave", "2026-04-10", "2026-04-12")

	time.Sleep(5 * time.Millisecond) // 保证 updated_at 严格变大

	result, err := svc.UpdateStatus(context.Background(), created.ID, model.LeaveStatusApproved, "user-2", model.RoleFaculty)
	if err != nil {
		t.Fatalf("UpdateStatus 应成功: %v", err)
	}
	if result.Status != model.LeaveStatusApproved {
		t.Errorf("期望 status=approved，实际=%s", result.Status)
	}

	stored, _ := leaveRepo.GetByID(context.Background(), created.ID)
	if !stored.UpdatedAt.After(stored.CreatedAt) {
		t.Errorf("审批后 updatedAt 应严格大于 createdAt：created=%v updated=%v",
			stored.CreatedAt, stored.UpdatedAt)
	}
	if stored.DecidedBy == nil || *stored.DecidedBy != "user-2" {
		t.Error("应记录审批人 user-2")
	}

	// 读己之写：列表立即反映新状态
	list, _ := svc.ListMine(context.Background(), "user-1")
	if list[0].Status != model.LeaveStatusApproved {
		t.Errorf("ListMine 应反映审批结果，实际=%s", list[0].Status)
	}
	all, _ := svc.ListAll(context.Background(), model.RoleFaculty)
	if all[0].Status != model.LeaveStatusApproved {
		t.Errorf("ListAll 应反映审批结果，实际=%s", all[0].Status)
	}

	// 申请人收到通知
	notifs, _, _ := notifRepo.ListByUser(context.Background(), "user-1", 0, 10)
	if len(notifs) != 1 {
		t.Fatalf("期望 1 条通知，实际 %d", len(notifs))
	}
	if notifs[0].Type != model.NotificationTypeLeave {
		t.Errorf("期望通知类型 leave，实际=%s", notifs[0].Type)
	}
}

func TestUpdateStatus_NonFacultyUnauthorized(t *testing.T) {
	svc, _, leaveRepo, _ := setupTestLeaveService()
	created := mustApply(t, svc, "user-1", "Mine", "2026-04-10", "2026-04-12")

	_, err := svc.UpdateStatus(context.Background(), created.ID, model.LeaveStatusApproved, "user-1", model.RoleStudent)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}

	// 失败不改变存储
	stored, _ := leaveRepo.GetByID(context.Background(), created.ID)
	if stored.Status != model.LeaveStatusPending {
		t.Errorf("越权审批失败后状态应保持 pending，实际=%s", stored.Status)
	}
	if !stored.UpdatedAt.Equal(stored.CreatedAt) {
		t.Error("越权审批失败后 updatedAt 不应变化")
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, _, _, _ := setupTestLeaveService()

	_, err := svc.UpdateStatus(context.Background(), 999, model.LeaveStatusApproved, "user-2", model.RoleFaculty)
	if !errors.Is(err, ErrLeaveNotFound) {
		t.Errorf("期望 ErrLeaveNotFound，实际: %v", err)
	}
}

func TestUpdateStatus_AlreadyDecided(t *testing.T) {
	svc, _, _, _ := setupTestLeaveService()
	created := mustApply(t, svc, "user-1", "Mine", "2026-04-10", "2026-04-12")

	if _, err := svc.UpdateStatus(context.Background(), created.ID, model.LeaveStatusApproved, "user-2", model.RoleFaculty); err != nil {
		t.Fatalf("首次审批应成功: %v", err)
	}

	// 终态不可再迁移
	_, err := svc.UpdateStatus(context.Background(), created.ID, model.LeaveStatusRejected, "user-2", model.RoleFaculty)
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Errorf("期望 ErrAlreadyDecided，实际: %v", err)
	}
}

// ── 仪表盘聚合 ──

func TestDashboard_CountsSumToTotal(t *testing.T) {
	svc, _, _, _ := setupTestLeaveService()

	a := mustApply(t, svc, "user-1", "A", "2026-04-01", "2026-04-02")
	b := mustApply(t, svc, "user-1", "B", "2026-05-01", "2026-05-02")
	mustApply(t, svc, "user-1", "C", "2026-06-01", "2026-06-02")

	if _, err := svc.UpdateStatus(context.Background(), a.ID, model.LeaveStatusApproved, "user-2", model.RoleFaculty); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateStatus(context.Background(), b.ID, model.LeaveStatusRejected, "user-2", model.RoleFaculty); err != nil {
		t.Fatal(err)
	}

	dash, err := svc.StudentDashboard(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StudentDashboard 失败: %v", err)
	}

	if dash.PendingLeaves+dash.ApprovedLeaves+dash.RejectedLeaves != dash.TotalLeaves {
		t.Errorf("计数不守恒：pending=%d approved=%d rejected=%d total=%d",
			dash.PendingLeaves, dash.ApprovedLeaves, dash.RejectedLeaves, dash.TotalLeaves)
	}
	if dash.TotalLeaves != 3 || dash.ApprovedLeaves != 1 || dash.RejectedLeaves != 1 || dash.PendingLeaves != 1 {
		t.Errorf("期望 {3,1,1,1}，实际 {%d,%d,%d,%d}",
			dash.TotalLeaves, dash.PendingLeaves, dash.ApprovedLeaves, dash.RejectedLeaves)
	}
	if dash.TotalStudents != nil {
		t.Error("学生仪表盘不应包含 total_students")
	}
}

func TestDashboard_RecentCapsAtFive(t *testing.T) {
	svc, _, _, _ := setupTestLeaveService()

	for i := 0; i < 7; i++ {
		mustApply(t, svc, "user-1", "Bulk", "2026-04-01", "2026-04-02")
	}

	dash, err := svc.StudentDashboard(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StudentDashboard 失败: %v", err)
	}
	if len(dash.RecentLeaves) != 5 {
		t.Errorf("最近申请应取前 5 条，实际 %d", len(dash.RecentLeaves))
	}
	if dash.TotalLeaves != 7 {
		t.Errorf("期望 total=7，实际 %d", dash.TotalLeaves)
	}
	// recent 按存储序：ID 递减
	for i := 1; i < len(dash.RecentLeaves); i++ {
		if dash.RecentLeaves[i-1].ID <= dash.RecentLeaves[i].ID {
			t.Error("最近申请应按存储序（最新在前）")
			break
		}
	}
}

func TestAdminDashboard_RequiresFaculty(t *testing.T) {
	svc, _, _, _ := setupTestLeaveService()

	_, err := svc.AdminDashboard(context.Background(), model.RoleStudent)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

func TestAdminDashboard_AggregatesAllWithStudentCount(t *testing.T) {
	svc, _, _, _ := setupTestLeaveService()

	mustApply(t, svc, "user-1", "Mine", "2026-04-10", "2026-04-12")
	mustApply(t, svc, "user-2", "Theirs", "2026-04-15", "2026-04-16")

	dash, err := svc.AdminDashboard(context.Background(), model.RoleFaculty)
	if err != nil {
		t.Fatalf("AdminDashboard 失败: %v", err)
	}
	if dash.TotalLeaves != 2 {
		t.Errorf("管理员仪表盘应聚合全量，期望 total=2，实际 %d", dash.TotalLeaves)
	}
	if dash.TotalStudents == nil || *dash.TotalStudents != 1 {
		t.Errorf("期望 total_students=1，实际 %v", dash.TotalStudents)
	}
}

// ── 端到端场景 ──

func TestScenario_MedicalLeaveLifecycle(t *testing.T) {
	svc, _, _, _ := setupTestLeaveService()

	// user-1 提交 Medical Leave
	created := mustApply(t, svc, "user-1", "Medical Leave", "2026-04-10", "2026-04-12")

	list, _ := svc.ListMine(context.Background(), "user-1")
	if len(list) != 1 || list[0].Status != model.LeaveStatusPending {
		t.Fatal("提交后应有 1 条 pending 记录位于列表头部")
	}

	// faculty 批准
	if _, err := svc.UpdateStatus(context.Background(), created.ID, model.LeaveStatusApproved, "user-2", model.RoleFaculty); err != nil {
		t.Fatalf("审批应成功: %v", err)
	}

	// 仪表盘 {total:1, pending:0, approved:1, rejected:0}
	dash, _ := svc.StudentDashboard(context.Background(), "user-1")
	if dash.TotalLeaves != 1 || dash.PendingLeaves != 0 || dash.ApprovedLeaves != 1 || dash.RejectedLeaves != 0 {
		t.Errorf("期望 {1,0,1,0}，实际 {%d,%d,%d,%d}",
			dash.TotalLeaves, dash.PendingLeaves, dash.ApprovedLeaves, dash.RejectedLeaves)
	}
}

// [自证通过] internal/service/leave_service_test.go
