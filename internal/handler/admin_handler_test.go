package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/handler"
	"github.com/noah-isme/hikelink-api/internal/service"
)

type adminServiceMock struct {
	service.AdminService
	listReq   dto.AdminUserListRequest
	banned    *bool
	toggled   string
	toggleErr error
}

func (m *adminServiceMock) ListUsers(_ context.Context, _ service.Session, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	m.listReq = req
	return dto.AdminUserListResponse{
		Items:      []dto.AdminUserResponse{{ID: "hiker-2", Role: "user"}},
		Pagination: dto.PaginationMeta{Page: req.Page, PageSize: req.PageSize, TotalItems: 1, TotalPages: 1},
	}, nil
}

func (m *adminServiceMock) ToggleRole(_ context.Context, _ service.Session, userID string) (dto.AdminUserResponse, error) {
	m.toggled = userID
	if m.toggleErr != nil {
		return dto.AdminUserResponse{}, m.toggleErr
	}
	return dto.AdminUserResponse{ID: userID, Role: "admin"}, nil
}

func (m *adminServiceMock) SetBanned(_ context.Context, _ service.Session, userID string, req dto.AdminBanRequest) (dto.AdminUserResponse, error) {
	m.banned = &req.Banned
	return dto.AdminUserResponse{ID: userID, Banned: req.Banned}, nil
}

type reportServiceMock struct {
	service.ReportService
	submitted dto.ReportCreateRequest
	err       error
}

func (m *reportServiceMock) Submit(_ context.Context, session service.Session, req dto.ReportCreateRequest) (dto.ReportResponse, error) {
	m.submitted = req
	if m.err != nil {
		return dto.ReportResponse{}, m.err
	}
	return dto.ReportResponse{ID: "r1", Kind: req.Kind, UserID: session.UserID, Message: req.Message}, nil
}

func newAdminApp(admin service.AdminService) *fiber.App {
	app := newTestApp("admin-1", "admin")
	handler.NewAdminHandler(admin, &reportServiceMock{}, zerolog.Nop()).Register(app.Group("/api/v1/admin"))
	return app
}

func TestAdminHandlerListUsersParsesFilters(t *testing.T) {
	svc := &adminServiceMock{}
	app := newAdminApp(svc)

	resp := perform(t, app, http.MethodGet, "/api/v1/admin/users?page=2&pageSize=5&search=%20ana%20&role=user", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list dto.AdminUserListResponse
	decodeEnvelope(t, resp, &list)
	require.Len(t, list.Items, 1)
	require.Equal(t, 2, svc.listReq.Page)
	require.Equal(t, 5, svc.listReq.PageSize)
	require.Equal(t, "ana", svc.listReq.Search)
	require.Equal(t, "user", svc.listReq.Role)
}

func TestAdminHandlerToggleRoleOnSelf(t *testing.T) {
	svc := &adminServiceMock{toggleErr: service.ErrCannotModifySelf}
	app := newAdminApp(svc)

	resp := perform(t, app, http.MethodPost, "/api/v1/admin/users/admin-1/role", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "admin-1", svc.toggled)
}

func TestAdminHandlerBan(t *testing.T) {
	svc := &adminServiceMock{}
	app := newAdminApp(svc)

	resp := perform(t, app, http.MethodPost, "/api/v1/admin/users/hiker-2/ban", dto.AdminBanRequest{Banned: true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, svc.banned)
	require.True(t, *svc.banned)
}

func TestReportHandlerSubmit(t *testing.T) {
	svc := &reportServiceMock{}
	app := newTestApp("hiker-1", "user")
	handler.NewReportHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/reports"))

	resp := perform(t, app, http.MethodPost, "/api/v1/reports", dto.ReportCreateRequest{Kind: "bug", Message: "Harta nu se incarca"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var report dto.ReportResponse
	decodeEnvelope(t, resp, &report)
	require.Equal(t, "hiker-1", report.UserID)
	require.Equal(t, "bug", svc.submitted.Kind)
}

func TestReportHandlerRequiresSession(t *testing.T) {
	app := newTestApp("", "")
	handler.NewReportHandler(&reportServiceMock{err: service.ErrUnauthenticated}, zerolog.Nop()).Register(app.Group("/api/v1/reports"))

	resp := perform(t, app, http.MethodPost, "/api/v1/reports", dto.ReportCreateRequest{Kind: "feedback", Message: "Super"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
