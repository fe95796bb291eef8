package gdrive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/utils"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Client mirrors serialized entries into a Drive folder tree. It is an
// injected collaborator resolved once at startup; callers receive a nil
// client when the integration is disabled and must treat it as absent.
type Client struct {
	log *logger.Logger
	svc *drive.Service
}

func NewClient(ctx context.Context, log *logger.Logger) (*Client, error) {
	credentialsFile := strings.TrimSpace(utils.GetEnv("GDRIVE_CREDENTIALS_FILE", "", log))
	if credentialsFile == "" {
		return nil, fmt.Errorf("missing GDRIVE_CREDENTIALS_FILE")
	}

	svc, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init drive service: %w", err)
	}

	return &Client{
		log: log.With("service", "DriveClient"),
		svc: svc,
	}, nil
}

// Upload writes content under rootFolderID at relPath, creating intermediate
// folders and replacing an existing file of the same name. Returns the Drive
// file id.
func (c *Client) Upload(ctx context.Context, rootFolderID, relPath string, content io.Reader, mimeType string) (string, error) {
	if c == nil || c.svc == nil {
		return "", fmt.Errorf("drive client not initialized")
	}

	folderID := rootFolderID
	dir, name := path.Split(relPath)
	for _, segment := range strings.Split(strings.Trim(dir, "/"), "/") {
		if segment == "" {
			continue
		}
		id, err := c.ensureFolder(ctx, folderID, segment)
		if err != nil {
			return "", err
		}
		folderID = id
	}

	existingID, err := c.findChild(ctx, folderID, name, "")
	if err != nil {
		return "", err
	}

	if existingID != "" {
		updated, err := c.svc.Files.Update(existingID, &drive.File{}).
			Media(content, googleapi.ContentType(mimeType)).
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("update drive file %s: %w", relPath, err)
		}
		return updated.Id, nil
	}

	created, err := c.svc.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{folderID},
	}).
		Media(content, googleapi.ContentType(mimeType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create drive file %s: %w", relPath, err)
	}
	return created.Id, nil
}

func (c *Client) ensureFolder(ctx context.Context, parentID, name string) (string, error) {
	id, err := c.findChild(ctx, parentID, name, folderMimeType)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	folder, err := c.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create drive folder %s: %w", name, err)
	}
	return folder.Id, nil
}

func (c *Client) findChild(ctx context.Context, parentID, name, mimeType string) (string, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), parentID)
	if mimeType != "" {
		query += fmt.Sprintf(" and mimeType = '%s'", mimeType)
	}
	list, err := c.svc.Files.List().
		Q(query).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("list drive children: %w", err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}
