// Package stream serves single files with static byte-range HTTP semantics
// synthesized over a whole-file upstream fetch.
package stream

import (
	"context"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/vfa-khuongdv/driveview/internal/auth"
	"github.com/vfa-khuongdv/driveview/pkg/gdrive"
)

// cacheDirectives keeps sensitive content out of browser and intermediate
// caches.
const cacheDirectives = "no-store, no-cache, must-revalidate"

// Response is a fully materialized HTTP response descriptor, owned by one
// request/response cycle.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Gateway is the upstream surface the translator depends on.
type Gateway interface {
	GetMetadata(ctx context.Context, fileID string, token *oauth2.Token) (gdrive.File, error)
	FetchContent(ctx context.Context, fileID string, token *oauth2.Token) ([]byte, error)
}

// Translator turns a file id plus an optional Range header into a complete
// 200 or 206 response. It holds no per-request state.
type Translator struct {
	gateway Gateway
}

// NewTranslator creates a new range translator.
func NewTranslator(gateway Gateway) *Translator {
	return &Translator{gateway: gateway}
}

// Serve fetches the file's metadata and full body, then answers either the
// whole file or the requested byte window. The credential is checked before
// any upstream call; gateway failures propagate unchanged and no partial
// body is ever emitted.
func (t *Translator) Serve(ctx context.Context, fileID, rangeHeader string, token *oauth2.Token) (*Response, error) {
	if token == nil || token.AccessToken == "" {
		return nil, auth.ErrUnauthenticated
	}

	meta, err := t.gateway.GetMetadata(ctx, fileID, token)
	if err != nil {
		return nil, err
	}

	body, err := t.gateway.FetchContent(ctx, fileID, token)
	if err != nil {
		return nil, err
	}
	total := int64(len(body))

	rng, err := parseRange(rangeHeader, total)
	if err != nil {
		return nil, err
	}

	if rng == nil {
		header := http.Header{}
		header.Set("Content-Type", meta.MimeType)
		header.Set("Content-Length", strconv.FormatInt(total, 10))
		header.Set("Content-Disposition", "inline")
		header.Set("Cache-Control", cacheDirectives)

		return &Response{
			Status: http.StatusOK,
			Header: header,
			Body:   body,
		}, nil
	}

	header := http.Header{}
	header.Set("Content-Range", "bytes "+strconv.FormatInt(rng.start, 10)+"-"+strconv.FormatInt(rng.end, 10)+"/"+strconv.FormatInt(total, 10))
	header.Set("Accept-Ranges", "bytes")
	header.Set("Content-Length", strconv.FormatInt(rng.length(), 10))
	header.Set("Content-Type", meta.MimeType)
	header.Set("Cache-Control", cacheDirectives)

	// No Content-Disposition on partial responses: ranged fetches come from
	// in-page playback, not downloads.
	return &Response{
		Status: http.StatusPartialContent,
		Header: header,
		Body:   body[rng.start : rng.end+1],
	}, nil
}
