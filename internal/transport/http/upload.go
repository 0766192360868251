package http

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
)

var (
	ErrNotMultipart       = errors.New("request body must be multipart/form-data")
	ErrMalformedMultipart = errors.New("malformed multipart body")
	ErrTooManyFiles       = errors.New("at most one file may be uploaded")
	ErrFileType           = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrFieldTooLarge      = errors.New("form field too large")
	ErrBodyTooLarge       = errors.New("request body too large")
)

const (
	formKey = "catalog.form"

	// sniffLen matches the default read limit of mimetype.
	sniffLen = 3072

	maxNonce = 1_000_000_000
)

// FileStore is where uploaded files are written.
type FileStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (int64, error)
	Delete(ctx context.Context, filename string) error
}

type UploadLimits struct {
	MaxFileSize  int64
	MaxFieldSize int64
	MaxBodySize  int64
	AllowedTypes []string
}

// Form is a parsed multipart body. File is nil when no file was sent.
type Form struct {
	Values map[string]string
	File   *domain.UploadedFile
}

// Uploader streams multipart bodies, writing the single allowed file part
// straight to the store.
type Uploader struct {
	store  FileStore
	limits UploadLimits
	clock  clock.Clock
	nonce  func() int64
	logger logrus.FieldLogger
}

func NewUploader(store FileStore, limits UploadLimits, clk clock.Clock, logger logrus.FieldLogger) *Uploader {
	return &Uploader{
		store:  store,
		limits: limits,
		clock:  clk,
		nonce:  func() int64 { return rand.Int64N(maxNonce + 1) },
		logger: logger,
	}
}

// Middleware parses the body and stores the resulting Form in the gin
// context. A rejected upload aborts the request before the handler runs.
func (u *Uploader) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := u.parse(c)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(formKey, form)
		c.Next()
	}
}

// Discard removes the file of a form the handler could not use.
func (u *Uploader) Discard(ctx context.Context, form *Form) {
	if form == nil || form.File == nil {
		return
	}
	u.discard(ctx, form.File.Filename)
}

func (u *Uploader) discard(ctx context.Context, filename string) {
	if err := u.store.Delete(context.WithoutCancel(ctx), filename); err != nil {
		u.logger.WithError(err).WithField("filename", filename).Warn("could not remove rejected upload")
	}
}

func formFrom(c *gin.Context) *Form {
	if v, ok := c.Get(formKey); ok {
		if form, ok := v.(*Form); ok {
			return form
		}
	}
	return &Form{Values: map[string]string{}}
}

func (u *Uploader) parse(c *gin.Context) (_ *Form, err error) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, u.limits.MaxBodySize)

	mr, err := c.Request.MultipartReader()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, ErrNotMultipart
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedMultipart, err)
	}

	form := &Form{Values: make(map[string]string)}
	defer func() {
		if err != nil {
			u.Discard(ctx, form)
		}
	}()

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			return nil, bodyError(err)
		}

		name := part.FormName()
		isFile, filename := fileOf(part)
		switch {
		case name == "":
		case !isFile:
			v, err := u.readField(part)
			if err != nil {
				return nil, err
			}
			form.Values[name] = v
		case filename == "":
			// empty file input
		case form.File != nil:
			return nil, ErrTooManyFiles
		default:
			file, err := u.saveFile(ctx, part, name, filename)
			if err != nil {
				return nil, err
			}
			form.File = file
		}
		_ = part.Close()
	}
}

func fileOf(part *multipart.Part) (bool, string) {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return false, ""
	}
	if _, ok := params["filename"]; !ok {
		return false, ""
	}
	return true, part.FileName()
}

func (u *Uploader) readField(part *multipart.Part) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, u.limits.MaxFieldSize+1))
	if err != nil {
		return "", bodyError(err)
	}
	if int64(len(b)) > u.limits.MaxFieldSize {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrFieldTooLarge, part.FormName(), u.limits.MaxFieldSize)
	}
	return string(b), nil
}

func (u *Uploader) saveFile(ctx context.Context, part *multipart.Part, field, original string) (*domain.UploadedFile, error) {
	src := &trackingReader{r: part}
	br := bufio.NewReaderSize(src, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, bodyError(err)
	}

	detected := mimetype.Detect(head)
	mimeType, ok := u.allowed(detected)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileType, detected.String())
	}

	now := u.clock.Now()
	filename := domain.MediaFilename(field, mimeType, now, u.nonce())
	n, err := u.store.Save(ctx, filename, io.LimitReader(br, u.limits.MaxFileSize+1))
	if err != nil {
		if src.err != nil {
			return nil, bodyError(src.err)
		}
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if n > u.limits.MaxFileSize {
		u.discard(ctx, filename)
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, u.limits.MaxFileSize)
	}

	return &domain.UploadedFile{
		FieldName:    field,
		OriginalName: original,
		Filename:     filename,
		MimeType:     mimeType,
		Size:         n,
	}, nil
}

func (u *Uploader) allowed(detected *mimetype.MIME) (string, bool) {
	for _, t := range u.limits.AllowedTypes {
		if detected.Is(t) {
			return t, true
		}
	}
	return "", false
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", ErrMalformedMultipart, err)
}

// trackingReader remembers the first read error so a failed store write
// can be told apart from a failed body read.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}
