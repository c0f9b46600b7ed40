package listing

import (
	"context"
	"sort"

	"github.com/samber/lo"
	"golang.org/x/oauth2"

	"github.com/vfa-khuongdv/driveview/internal/auth"
	"github.com/vfa-khuongdv/driveview/pkg/gdrive"
)

// supportedMimeTypes is the fixed allowlist of viewable file types. Anything
// else (folders aside) is silently dropped from listings.
var supportedMimeTypes = map[string]struct{}{
	"video/mp4":                     {},
	"application/pdf":               {},
	"application/msword":            {},
	"application/vnd.ms-powerpoint": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
}

// Gateway is the upstream surface the listing service depends on.
type Gateway interface {
	ListChildren(ctx context.Context, folderID string, token *oauth2.Token) ([]gdrive.File, error)
}

// Service exposes folder contents filtered to the supported-type allowlist.
type Service struct {
	gateway Gateway
}

// NewService creates a new listing service.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// List returns the viewable children of a folder, folders first, ties broken
// by case-sensitive name. An empty folderID means the top-level root. The
// credential is checked before any upstream call is made.
func (s *Service) List(ctx context.Context, folderID string, token *oauth2.Token) ([]gdrive.File, error) {
	if token == nil || token.AccessToken == "" {
		return nil, auth.ErrUnauthenticated
	}

	if folderID == "" {
		folderID = gdrive.RootFolderID
	}

	files, err := s.gateway.ListChildren(ctx, folderID, token)
	if err != nil {
		return nil, err
	}

	files = lo.Filter(files, func(f gdrive.File, _ int) bool {
		if f.IsFolder() {
			return true
		}
		_, ok := supportedMimeTypes[f.MimeType]
		return ok
	})

	// The upstream call already asks for folder,name ordering, but the
	// contract must hold even if the provider ignores the hint.
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].IsFolder() != files[j].IsFolder() {
			return files[i].IsFolder()
		}
		return files[i].Name < files[j].Name
	})

	return files, nil
}
