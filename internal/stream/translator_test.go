package stream

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/oauth2"

	"github.com/vfa-khuongdv/driveview/internal/auth"
	"github.com/vfa-khuongdv/driveview/pkg/gdrive"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetMetadata(ctx context.Context, fileID string, token *oauth2.Token) (gdrive.File, error) {
	args := m.Called(ctx, fileID, token)
	return args.Get(0).(gdrive.File), args.Error(1)
}

func (m *MockGateway) FetchContent(ctx context.Context, fileID string, token *oauth2.Token) ([]byte, error) {
	args := m.Called(ctx, fileID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type TranslatorTestSuite struct {
	suite.Suite
	gateway    *MockGateway
	translator *Translator
	token      *oauth2.Token
}

func (suite *TranslatorTestSuite) SetupTest() {
	suite.gateway = &MockGateway{}
	suite.translator = NewTranslator(suite.gateway)
	suite.token = &oauth2.Token{AccessToken: "test-access-token"}
}

func TestTranslatorTestSuite(t *testing.T) {
	suite.Run(t, new(TranslatorTestSuite))
}

// testBody returns n bytes with deterministic content so slices can be
// compared against the source buffer.
func testBody(n int) []byte {
	body := make([]byte, n)
	for i := range body {
		body[i] = byte(i % 251)
	}
	return body
}

func (suite *TranslatorTestSuite) stubFile(body []byte, mimeType string) {
	suite.gateway.On("GetMetadata", mock.Anything, "file-1", suite.token).
		Return(gdrive.File{ID: "file-1", Name: "movie.mp4", MimeType: mimeType, Size: int64(len(body))}, nil)
	suite.gateway.On("FetchContent", mock.Anything, "file-1", suite.token).
		Return(body, nil)
}

// Test full-file response without a Range header
func (suite *TranslatorTestSuite) TestServe_FullFile() {
	body := testBody(1000)
	suite.stubFile(body, "video/mp4")

	res, err := suite.translator.Serve(context.Background(), "file-1", "", suite.token)

	suite.NoError(err)
	suite.Equal(200, res.Status)
	suite.Equal("video/mp4", res.Header.Get("Content-Type"))
	suite.Equal("1000", res.Header.Get("Content-Length"))
	suite.Equal("inline", res.Header.Get("Content-Disposition"))
	suite.Equal("no-store, no-cache, must-revalidate", res.Header.Get("Cache-Control"))
	suite.True(bytes.Equal(body, res.Body))
}

// Test open-ended range: bytes=500- on a 1000-byte file
func (suite *TranslatorTestSuite) TestServe_OpenEndedRange() {
	body := testBody(1000)
	suite.stubFile(body, "video/mp4")

	res, err := suite.translator.Serve(context.Background(), "file-1", "bytes=500-", suite.token)

	suite.NoError(err)
	suite.Equal(206, res.Status)
	suite.Equal("bytes 500-999/1000", res.Header.Get("Content-Range"))
	suite.Equal("bytes", res.Header.Get("Accept-Ranges"))
	suite.Equal("500", res.Header.Get("Content-Length"))
	suite.Equal("video/mp4", res.Header.Get("Content-Type"))
	suite.Equal("no-store, no-cache, must-revalidate", res.Header.Get("Cache-Control"))
	suite.Empty(res.Header.Get("Content-Disposition"))
	suite.True(bytes.Equal(body[500:], res.Body))
}

// Test bounded range returns exactly the inclusive slice
func (suite *TranslatorTestSuite) TestServe_BoundedRange() {
	body := testBody(1000)
	suite.stubFile(body, "application/pdf")

	res, err := suite.translator.Serve(context.Background(), "file-1", "bytes=200-299", suite.token)

	suite.NoError(err)
	suite.Equal(206, res.Status)
	suite.Equal("bytes 200-299/1000", res.Header.Get("Content-Range"))
	suite.Equal("100", res.Header.Get("Content-Length"))
	suite.True(bytes.Equal(body[200:300], res.Body))
}

// Test single-byte range
func (suite *TranslatorTestSuite) TestServe_SingleByteRange() {
	body := testBody(10)
	suite.stubFile(body, "application/pdf")

	res, err := suite.translator.Serve(context.Background(), "file-1", "bytes=0-0", suite.token)

	suite.NoError(err)
	suite.Equal(206, res.Status)
	suite.Equal("bytes 0-0/10", res.Header.Get("Content-Range"))
	suite.Equal("1", res.Header.Get("Content-Length"))
	suite.True(bytes.Equal(body[0:1], res.Body))
}

// Test an end past EOF is clamped to the last byte
func (suite *TranslatorTestSuite) TestServe_EndClampedToFileSize() {
	body := testBody(1000)
	suite.stubFile(body, "video/mp4")

	res, err := suite.translator.Serve(context.Background(), "file-1", "bytes=900-2000", suite.token)

	suite.NoError(err)
	suite.Equal(206, res.Status)
	suite.Equal("bytes 900-999/1000", res.Header.Get("Content-Range"))
	suite.Equal("100", res.Header.Get("Content-Length"))
}

// Test a start beyond EOF is rejected, not clamped
func (suite *TranslatorTestSuite) TestServe_StartBeyondEOF() {
	body := testBody(1000)
	suite.stubFile(body, "video/mp4")

	res, err := suite.translator.Serve(context.Background(), "file-1", "bytes=2000-2500", suite.token)

	suite.Nil(res)
	suite.ErrorIs(err, ErrRangeNotSatisfiable)

	var rangeErr *RangeError
	suite.ErrorAs(err, &rangeErr)
	suite.Equal(int64(1000), rangeErr.TotalLength)
}

// Test any range against a zero-length file is unsatisfiable
func (suite *TranslatorTestSuite) TestServe_ZeroLengthFile() {
	suite.stubFile([]byte{}, "application/pdf")

	res, err := suite.translator.Serve(context.Background(), "file-1", "bytes=0-", suite.token)

	suite.Nil(res)
	suite.ErrorIs(err, ErrRangeNotSatisfiable)
}

// Test only the first pair of a multi-range header is honored
func (suite *TranslatorTestSuite) TestServe_MultiRangeUsesFirstPair() {
	body := testBody(1000)
	suite.stubFile(body, "video/mp4")

	res, err := suite.translator.Serve(context.Background(), "file-1", "bytes=0-99,200-299", suite.token)

	suite.NoError(err)
	suite.Equal(206, res.Status)
	suite.Equal("bytes 0-99/1000", res.Header.Get("Content-Range"))
	suite.True(bytes.Equal(body[:100], res.Body))
}

// Test malformed Range headers fall back to the full response
func (suite *TranslatorTestSuite) TestServe_MalformedRangeIgnored() {
	body := testBody(100)
	suite.stubFile(body, "application/pdf")

	for _, header := range []string{"bytes=abc-", "items=0-10", "bytes=-500", "bytes=10"} {
		res, err := suite.translator.Serve(context.Background(), "file-1", header, suite.token)

		suite.NoError(err, "header %q", header)
		suite.Equal(200, res.Status, "header %q", header)
		suite.Equal("100", res.Header.Get("Content-Length"), "header %q", header)
	}
}

// Test a missing credential never reaches the gateway
func (suite *TranslatorTestSuite) TestServe_MissingCredential() {
	res, err := suite.translator.Serve(context.Background(), "file-1", "", nil)

	suite.Nil(res)
	suite.ErrorIs(err, auth.ErrUnauthenticated)
	suite.gateway.AssertNotCalled(suite.T(), "GetMetadata")
	suite.gateway.AssertNotCalled(suite.T(), "FetchContent")
}

// Test an empty access token counts as unauthenticated
func (suite *TranslatorTestSuite) TestServe_EmptyAccessToken() {
	res, err := suite.translator.Serve(context.Background(), "file-1", "", &oauth2.Token{})

	suite.Nil(res)
	suite.ErrorIs(err, auth.ErrUnauthenticated)
	suite.gateway.AssertNotCalled(suite.T(), "GetMetadata")
}

// Test metadata failures propagate before content is fetched
func (suite *TranslatorTestSuite) TestServe_MetadataErrorPropagates() {
	suite.gateway.On("GetMetadata", mock.Anything, "file-1", suite.token).
		Return(gdrive.File{}, gdrive.ErrNotFound)

	res, err := suite.translator.Serve(context.Background(), "file-1", "", suite.token)

	suite.Nil(res)
	suite.ErrorIs(err, gdrive.ErrNotFound)
	suite.gateway.AssertNotCalled(suite.T(), "FetchContent")
}

// Test content fetch failures propagate with no partial body
func (suite *TranslatorTestSuite) TestServe_ContentErrorPropagates() {
	suite.gateway.On("GetMetadata", mock.Anything, "file-1", suite.token).
		Return(gdrive.File{ID: "file-1", MimeType: "video/mp4"}, nil)
	suite.gateway.On("FetchContent", mock.Anything, "file-1", suite.token).
		Return(nil, gdrive.ErrUnavailable)

	res, err := suite.translator.Serve(context.Background(), "file-1", "bytes=0-", suite.token)

	suite.Nil(res)
	suite.ErrorIs(err, gdrive.ErrUnavailable)
}

func TestRangeErrorMessage(t *testing.T) {
	err := &RangeError{TotalLength: 1000}
	if !errors.Is(err, ErrRangeNotSatisfiable) {
		t.Fatal("RangeError should unwrap to ErrRangeNotSatisfiable")
	}
	if got := err.Error(); got != "stream: requested range outside 0-999" {
		t.Fatalf("unexpected message: %q", got)
	}

	empty := &RangeError{TotalLength: 0}
	if got := empty.Error(); got != "stream: range requested against empty file" {
		t.Fatalf("unexpected empty-file message: %q", got)
	}
}
