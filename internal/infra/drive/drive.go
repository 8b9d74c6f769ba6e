// Package drive uploads backups to Google Drive and manages the OAuth credential it needs.
package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// UploadedFile describes a file created in Drive.
type UploadedFile struct {
	ID    string
	Title string
}

// Client is a thin wrapper over the Drive v3 files API.
type Client struct {
	svc *drive.Service
}

// NewClient creates a Drive client authorised by ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// FindFolder returns the id of the first non-trashed root folder titled title.
func (c *Client) FindFolder(ctx context.Context, title string) (string, bool, error) {
	q := fmt.Sprintf("'root' in parents and mimeType='%s' and trashed=false", folderMimeType)

	var id string
	err := c.svc.Files.List().
		Q(q).
		Fields("nextPageToken, files(id, name)").
		PageSize(100).
		Pages(ctx, func(list *drive.FileList) error {
			for _, f := range list.Files {
				if id == "" && f.Name == title {
					id = f.Id
				}
			}
			return nil
		})
	if err != nil {
		return "", false, fmt.Errorf("failed to list drive folders: %w", err)
	}
	return id, id != "", nil
}

// CreateFolder creates a folder titled title under the root.
func (c *Client) CreateFolder(ctx context.Context, title string) (string, error) {
	f, err := c.svc.Files.Create(&drive.File{
		Name:     title,
		MimeType: folderMimeType,
		Parents:  []string{"root"},
	}).Fields("id, name").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create drive folder: %w", err)
	}
	return f.Id, nil
}

// Upload streams the local file into folderID, keeping its base name.
func (c *Client) Upload(ctx context.Context, folderID, localPath string) (UploadedFile, error) {
	fh, err := os.Open(localPath)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer fh.Close()

	f, err := c.svc.Files.Create(&drive.File{
		Name:    filepath.Base(localPath),
		Parents: []string{folderID},
	}).Media(fh).Fields("id, name").Context(ctx).Do()
	if err != nil {
		return UploadedFile{}, fmt.Errorf("failed to upload file: %w", err)
	}
	return UploadedFile{ID: f.Id, Title: f.Name}, nil
}
