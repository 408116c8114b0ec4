package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/shared"
)

type AdminHandler struct {
	backupSvc    BackupServiceInterface
	rateLimitSvc RateLimitServiceInterface
}

func NewAdminHandler(backupSvc BackupServiceInterface, rateLimitSvc RateLimitServiceInterface) *AdminHandler {
	return &AdminHandler{
		backupSvc:    backupSvc,
		rateLimitSvc: rateLimitSvc,
	}
}

// @Summary Create backup
// @Description Snapshot every document to object storage
// @Tags admin
// @Accept json
// @Produce json
// @Success 201 {object} shared.Response{data=dto.BackupResponse}
// @Failure 503 {object} shared.Response
// @Router /api/v1/admin/backup [post]
func (h *AdminHandler) CreateBackup(c *fiber.Ctx) error {
	backup, err := h.backupSvc.CreateBackup()
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, backup)
}

// @Summary List backups
// @Description List document snapshots, newest first, with download links
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=[]dto.BackupResponse}
// @Failure 503 {object} shared.Response
// @Router /api/v1/admin/backups [get]
func (h *AdminHandler) ListBackups(c *fiber.Ctx) error {
	backups, err := h.backupSvc.ListBackups()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, backups)
}

// @Summary Restore backup
// @Description Overwrite the stored documents with a snapshot
// @Tags admin
// @Accept json
// @Produce json
// @Param restoreRequest body dto.RestoreBackupRequest true "Snapshot prefix"
// @Success 200 {object} shared.Response{data=dto.RestoreBackupResponse}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Failure 503 {object} shared.Response
// @Router /api/v1/admin/backups/restore [post]
func (h *AdminHandler) RestoreBackup(c *fiber.Ctx) error {
	var req dto.RestoreBackupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	restored, err := h.backupSvc.RestoreBackup(req.Prefix)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, restored)
}

// @Summary Rate limit stats
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.RateLimitStats}
// @Router /api/v1/admin/rate-limits [get]
func (h *AdminHandler) GetRateLimitStats(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, h.rateLimitSvc.GetRateLimitStats())
}
