package gdrive

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	// fileFields is the fixed field set requested for every file object.
	fileFields = "id, name, mimeType, size, modifiedTime, webViewLink, iconLink"

	// listPageSize balances API round-trips against response size.
	listPageSize = 100
)

// Service handles read-only Google Drive operations. Every call takes the
// caller's credential explicitly; the service holds no token state and is
// safe for concurrent use.
type Service struct{}

// NewService creates a new Google Drive service.
func NewService() *Service {
	return &Service{}
}

// driveClient builds a Drive API client bound to the supplied token for the
// duration of a single logical operation.
func (s *Service) driveClient(ctx context.Context, token *oauth2.Token) (*drive.Service, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return svc, nil
}

// ListChildren returns the direct, non-trashed children of a folder. It
// requests folder-first name ordering from the provider and follows page
// tokens until the listing is complete.
func (s *Service) ListChildren(ctx context.Context, folderID string, token *oauth2.Token) ([]File, error) {
	svc, err := s.driveClient(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}

	var files []File
	pageToken := ""
	for {
		call := svc.Files.List().
			Q(fmt.Sprintf("'%s' in parents and trashed=false", folderID)).
			Fields("nextPageToken, files("+fileFields+")").
			OrderBy("folder,name").
			PageSize(listPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, mapError(err)
		}

		for _, df := range res.Files {
			files = append(files, fromDriveFile(df))
		}

		if res.NextPageToken == "" {
			return files, nil
		}
		pageToken = res.NextPageToken
	}
}

// GetMetadata fetches the metadata snapshot for a single file.
func (s *Service) GetMetadata(ctx context.Context, fileID string, token *oauth2.Token) (File, error) {
	svc, err := s.driveClient(ctx, token)
	if err != nil {
		return File{}, mapError(err)
	}

	df, err := svc.Files.Get(fileID).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return File{}, mapError(err)
	}

	return fromDriveFile(df), nil
}

// FetchContent downloads the entire file body into memory. The Drive media
// endpoint exposed here has no byte-range semantics, so range support is
// synthesized by the caller over this buffer; memory use is proportional to
// file size. A short read is reported as a single error, never as a
// partially filled buffer.
func (s *Service) FetchContent(ctx context.Context, fileID string, token *oauth2.Token) ([]byte, error) {
	svc, err := s.driveClient(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}

	res, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, mapError(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &Error{
			Message: fmt.Sprintf("download of %s interrupted: %v", fileID, err),
			Err:     ErrUnavailable,
		}
	}

	if res.ContentLength >= 0 && int64(len(body)) != res.ContentLength {
		return nil, &Error{
			Message: fmt.Sprintf("download of %s truncated: got %d of %d bytes", fileID, len(body), res.ContentLength),
			Err:     ErrUnavailable,
		}
	}

	return body, nil
}
