package actions

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/core/retry"
	"github.com/vietddude/autodash/internal/infra/archive"
)

// MsgDriveNotReady is returned when no authorized Drive client is available.
const MsgDriveNotReady = "Google Drive not authenticated. Run `autodash drive-auth` and ensure credentials are set up."

// BackupRequest describes one backup. Empty fields fall back to the backup config.
type BackupRequest struct {
	SourceDir   string
	OutputDir   string
	DriveFolder string
}

// Backup zips SourceDir, uploads the archive into DriveFolder (created when missing), and
// removes the local archive on every exit path once it exists.
func (s *Service) Backup(ctx context.Context, req BackupRequest) domain.Result {
	if s.deps.Storage == nil {
		return domain.Failure(domain.ActionBackup, domain.KindConfig, MsgDriveNotReady)
	}

	bc := s.cfg.Backup
	src := orDefault(req.SourceDir, bc.SourceDir)
	outDir := orDefault(req.OutputDir, bc.OutputDir)
	folder := orDefault(req.DriveFolder, bc.DriveFolder)

	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return domain.Failure(domain.ActionBackup, domain.KindInput,
			fmt.Sprintf("Error: Local folder '%s' does not exist.", src))
	}

	abs, err := filepath.Abs(src)
	if err != nil {
		return domain.Failure(domain.ActionBackup, domain.KindIO, fmt.Sprintf("Error during backup to Google Drive: %v", err))
	}
	name := fmt.Sprintf("backup_%s_%s.zip", filepath.Base(abs), s.deps.Now().Format("20060102_150405"))
	zipPath := filepath.Join(outDir, name)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return domain.Failure(domain.ActionBackup, domain.KindIO, fmt.Sprintf("Error during backup to Google Drive: %v", err))
	}

	defer s.removeArchive(zipPath)

	count, err := archive.ZipDir(src, zipPath)
	if err != nil {
		return domain.Failure(domain.ActionBackup, domain.KindIO, fmt.Sprintf("Error during backup to Google Drive: %v", err))
	}
	s.log.Info("Local zip created, uploading to Google Drive", "path", zipPath, "files", count)

	folderID, err := s.ensureFolder(ctx, folder)
	if err != nil {
		return backupFailure(err)
	}

	uploaded, err := s.deps.Storage.Upload(ctx, folderID, zipPath)
	if err != nil {
		return backupFailure(err)
	}

	return domain.Success(domain.ActionBackup, fmt.Sprintf(
		"Backup of `%s` successfully uploaded to Google Drive as `%s` in folder `%s`. Local zip removed.",
		src, uploaded.Title, folder))
}

// ensureFolder matches the folder by title on every call. The lookup is retried, creation is not.
func (s *Service) ensureFolder(ctx context.Context, title string) (string, error) {
	type lookup struct {
		id    string
		found bool
	}
	res, err := retry.Do(ctx, s.policy(), func(ctx context.Context) (lookup, error) {
		id, found, err := s.deps.Storage.FindFolder(ctx, title)
		return lookup{id: id, found: found}, err
	}, s.retryOpts("drive_find_folder")...)
	if err != nil {
		return "", err
	}
	if res.found {
		return res.id, nil
	}

	id, err := s.deps.Storage.CreateFolder(ctx, title)
	if err != nil {
		return "", err
	}
	s.log.Info("Created new Google Drive folder", "folder", title)
	return id, nil
}

func (s *Service) removeArchive(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Error("Failed to remove local archive", "path", path, "error", err)
	}
}

func backupFailure(err error) domain.Result {
	kind := domain.KindOf(err)
	if kind == domain.KindNone {
		kind = domain.KindNetwork
	}
	return domain.Failure(domain.ActionBackup, kind, fmt.Sprintf("Error during backup to Google Drive: %v", err))
}
