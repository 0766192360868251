package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-service/internal/app/outbox"
	"github.com/light-bringer/catalog-service/internal/app/product/queries/find_products"
	"github.com/light-bringer/catalog-service/internal/app/product/queries/get_product"
	productrepo "github.com/light-bringer/catalog-service/internal/app/product/repo"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/create_product"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/delete_product"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/replace_product"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/update_product"
	"github.com/light-bringer/catalog-service/internal/app/tag/queries/find_tags"
	tagrepo "github.com/light-bringer/catalog-service/internal/app/tag/repo"
	"github.com/light-bringer/catalog-service/internal/app/tag/usecases/create_tag"
	"github.com/light-bringer/catalog-service/internal/app/tag/usecases/delete_tag"
	"github.com/light-bringer/catalog-service/internal/app/tag/usecases/update_tag"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
	"github.com/light-bringer/catalog-service/internal/pkg/mediastore"
)

// pngBytes starts with the PNG signature, which is all sniffing needs.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

var testLimits = UploadLimits{
	MaxFileSize:  1 << 10,
	MaxFieldSize: 256,
	MaxBodySize:  64 << 10,
	AllowedTypes: []string{"image/png", "image/jpeg", "image/gif", "image/webp"},
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// flakyStore fails deletes while failDelete is set.
type flakyStore struct {
	*mediastore.DiskStore
	failDelete bool
}

func (s *flakyStore) Delete(ctx context.Context, filename string) error {
	if s.failDelete {
		return errors.New("disk busy")
	}
	return s.DiskStore.Delete(ctx, filename)
}

type testServer struct {
	router   *gin.Engine
	store    *flakyStore
	products *productrepo.MemoryProductRepo
	events   *outbox.MemoryLog
	clock    *clock.MockClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	disk, err := mediastore.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	store := &flakyStore{DiskStore: disk}

	clk := clock.NewMockClock(time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC))
	events := outbox.NewMemoryLog(clk.Now, logger)
	products := productrepo.NewMemoryProductRepo(events.Record)
	tags := tagrepo.NewMemoryTagRepo(events.Record)

	uploads := NewUploader(store, testLimits, clk, logger)
	var nonce int64
	uploads.nonce = func() int64 { nonce++; return nonce }

	router := NewRouter(RouterConfig{
		Products: NewProductHandler(
			create_product.NewInteractor(products, store, clk, logger),
			update_product.NewInteractor(products, clk),
			replace_product.NewInteractor(products, store, clk, logger),
			delete_product.NewInteractor(products, clk),
			get_product.NewQuery(products),
			find_products.NewQuery(products),
			uploads,
		),
		Tags: NewTagHandler(
			create_tag.NewInteractor(tags, clk),
			update_tag.NewInteractor(tags, clk),
			delete_tag.NewInteractor(tags, clk),
			find_tags.NewQuery(tags),
		),
		Events:      NewEventsHandler(events),
		Uploads:     uploads,
		MediaDir:    disk.Dir(),
		ServiceName: "catalog-test",
		Logger:      logger,
	})
	return &testServer{router: router, store: store, products: products, events: events, clock: clk}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

type upload struct {
	field, name string
	content     []byte
}

func (s *testServer) doForm(t *testing.T, method, target string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.do(req)
}

func (s *testServer) mediaFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(s.store.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// productDoc mirrors the product JSON representation.
type productDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CategoryID  string `json:"categoryId"`
	Description string `json:"description"`
	Hidden      bool   `json:"hidden"`
	Medias      struct {
		Images    []mediaDoc `json:"images"`
		Thumbnail []mediaDoc `json:"thumbnail"`
	} `json:"medias"`
}

type mediaDoc struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalname"`
	Size         int64  `json:"size"`
	Path         string `json:"path"`
	CreateAt     int64  `json:"createAt"`
	UpdateAt     int64  `json:"updateAt"`
}
