package gdrive

import "google.golang.org/api/drive/v3"

const (
	// FolderMimeType is the reserved mime type Drive uses for folders.
	FolderMimeType = "application/vnd.google-apps.folder"

	// RootFolderID is the Drive alias for the top of the user's tree.
	RootFolderID = "root"
)

// File is a snapshot of a single Drive object, file or folder. Fetched
// fresh per request, never cached.
type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	WebViewLink  string `json:"webViewLink,omitempty"`
	IconLink     string `json:"iconLink,omitempty"`
}

// IsFolder reports whether the entry is a Drive folder.
func (f File) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

func fromDriveFile(df *drive.File) File {
	return File{
		ID:           df.Id,
		Name:         df.Name,
		MimeType:     df.MimeType,
		Size:         df.Size,
		ModifiedTime: df.ModifiedTime,
		WebViewLink:  df.WebViewLink,
		IconLink:     df.IconLink,
	}
}
