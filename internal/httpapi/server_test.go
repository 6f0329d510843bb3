package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/catalogflow/internal/extract"
	"github.com/Lllllllleong/catalogflow/internal/models"
	"github.com/Lllllllleong/catalogflow/internal/services"
	"github.com/Lllllllleong/catalogflow/internal/store/memory"
)

const testPassword = "s3creto"

const uploadText = "Título: Halo Infinite\n" +
	"Descripción: El jefe maestro regresa en la mayor aventura hasta la fecha.\n" +
	"País: Estados Unidos\n" +
	"Plataformas: PC, Xbox Series X\n" +
	"Juego exclusivo de Xbox Series"

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) ExtractText(content []byte) (string, error) {
	return f.text, f.err
}

type downPinger struct{}

func (downPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

type testServer struct {
	*httptest.Server
	store *memory.Store
	token string
}

func newTestServer(t *testing.T, extractor extract.TextExtractor) *testServer {
	t.Helper()
	st := memory.New()

	auth, err := services.NewAuthService("", testPassword, "test-secret", time.Hour)
	require.NoError(t, err)
	catalog := services.NewCatalogService(st)

	srv := NewServer(Services{
		Catalog:    catalog,
		SiteConfig: services.NewSiteConfigService(st),
		Storefront: services.NewStorefrontService(st),
		Auth:       auth,
		PDFImport:  services.NewPDFImportService(extract.NewPipeline(extractor), catalog),
	}, st, NewMetrics(), Options{
		AllowedOrigins:     []string{"*"},
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	token, err := auth.Login(testPassword)
	require.NoError(t, err)
	return &testServer{Server: ts, store: st, token: token}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, authed bool) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})

	resp := ts.do(t, http.MethodPost, "/auth/login", models.LoginRequest{Password: testPassword}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[models.LoginResponse](t, resp)
	assert.True(t, login.Success)
	assert.Equal(t, "Autenticación exitosa", login.Message)
	assert.NotEmpty(t, login.Token)

	resp = ts.do(t, http.MethodPost, "/auth/login", models.LoginRequest{Password: "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, msgBadPassword, decode[models.ErrorResponse](t, resp).Detail)
}

func TestMutatingRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/products"},
		{http.MethodPost, "/products/bulk"},
		{http.MethodPut, "/products/abc"},
		{http.MethodDelete, "/products/abc"},
		{http.MethodPost, "/config"},
		{http.MethodPost, "/social-networks"},
		{http.MethodPost, "/business-groups"},
		{http.MethodPost, "/pdf/upload"},
		{http.MethodPost, "/pdf/save-products"},
		{http.MethodPost, "/api/products"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			resp := ts.do(t, rt.method, rt.path, map[string]string{}, false)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})
	ts.token = "not-a-jwt"

	resp := ts.do(t, http.MethodPost, "/products", models.ProductInput{Title: "X", Category: "juegos"}, true)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, msgUnauthorized, decode[models.ErrorResponse](t, resp).Detail)
}

func TestProductLifecycle(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})

	resp := ts.do(t, http.MethodPost, "/api/products", models.ProductInput{
		Title:     "Forza Horizon 5",
		Category:  models.CategoryGames,
		Platforms: []string{"PC"},
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decode[models.Product](t, resp)
	require.NotEmpty(t, created.ID)

	resp = ts.do(t, http.MethodGet, "/products?categoria=juegos&search=forza", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := decode[[]models.Product](t, resp)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	title := "Forza Horizon 5 Premium"
	resp = ts.do(t, http.MethodPut, "/products/"+created.ID, models.ProductPatch{Title: &title}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, title, decode[models.Product](t, resp).Title)

	resp = ts.do(t, http.MethodDelete, "/products/"+created.ID, nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Producto eliminado exitosamente", decode[models.MessageResponse](t, resp).Message)

	resp = ts.do(t, http.MethodDelete, "/products/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, msgNotFound, decode[models.ErrorResponse](t, resp).Detail)
}

func TestUpdateMissingProduct(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})

	title := "Nada"
	resp := ts.do(t, http.MethodPut, "/products/missing", models.ProductPatch{Title: &title}, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateProductValidation(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})

	resp := ts.do(t, http.MethodPost, "/products", models.ProductInput{Category: "juegos"}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInvalidJSON(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/products", strings.NewReader("{"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ts.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, msgInvalidJSON, decode[models.ErrorResponse](t, resp).Detail)
}

func TestBulkCreate(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})

	resp := ts.do(t, http.MethodPost, "/products/bulk", []models.ProductInput{
		{Title: "Uno", Category: models.CategoryMovies},
		{Title: "Dos", Category: models.CategorySeriesTV},
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bulk := decode[models.BulkCreateResponse](t, resp)
	assert.Equal(t, 2, bulk.Count)
	assert.Equal(t, "Se crearon 2 productos exitosamente", bulk.Message)
}

func TestSiteConfig(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})

	resp := ts.do(t, http.MethodGet, "/config/whatsapp", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.ConfigEntry{Key: "whatsapp", Value: ""}, decode[models.ConfigEntry](t, resp))

	resp = ts.do(t, http.MethodPost, "/config", models.ConfigUpdateRequest{Key: "whatsapp", Value: "+54 11 5555"}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/config/whatsapp", nil, false)
	assert.Equal(t, "+54 11 5555", decode[models.ConfigEntry](t, resp).Value)
}

func TestStorefrontLists(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})

	resp := ts.do(t, http.MethodPost, "/social-networks", []models.SocialNetworkInput{
		{Name: "instagram", URL: "https://instagram.com/tienda"},
		{Name: "tiktok"},
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Redes sociales actualizadas exitosamente", decode[models.MessageResponse](t, resp).Message)

	resp = ts.do(t, http.MethodGet, "/social-networks", nil, false)
	networks := decode[[]models.SocialNetwork](t, resp)
	require.Len(t, networks, 1)
	assert.Equal(t, "instagram", networks[0].Name)

	resp = ts.do(t, http.MethodPost, "/business-groups", []models.BusinessGroupInput{
		{Name: "Gamers AR", Link: "https://chat.whatsapp.com/x"},
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/business-groups", nil, false)
	assert.Len(t, decode[[]models.BusinessGroup](t, resp), 1)
}

func (ts *testServer) upload(t *testing.T, filename string, content []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/pdf/upload", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestUploadPDF(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{text: uploadText})

	resp := ts.upload(t, "catalogo.pdf", []byte("%PDF-1.7"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upload := decode[models.PDFUploadResponse](t, resp)
	assert.True(t, upload.Success)
	assert.Equal(t, "Se extrajeron 1 productos del PDF", upload.Message)
	assert.Equal(t, "catalogo.pdf", upload.Filename)
	require.Len(t, upload.Products, 1)
	assert.Equal(t, "Halo Infinite", upload.Products[0].Title)
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name      string
		extractor fakeExtractor
		filename  string
		content   []byte
	}{
		{"not a pdf", fakeExtractor{text: uploadText}, "report.txt", []byte("hello")},
		{"too large", fakeExtractor{text: uploadText}, "big.pdf", make([]byte, extract.MaxUploadSize+512*1024)},
		{"unreadable", fakeExtractor{err: errors.New("bad xref")}, "broken.pdf", []byte("%PDF")},
		{"nothing found", fakeExtractor{text: "   "}, "empty.pdf", []byte("%PDF")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.extractor)

			resp := ts.upload(t, tt.filename, tt.content)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, decode[models.ErrorResponse](t, resp).Detail)
		})
	}
}

func TestSavePDFProducts(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})

	resp := ts.do(t, http.MethodPost, "/pdf/save-products", []models.ProductInput{
		{Title: "Halo Infinite", Platforms: []string{"PC"}},
		{Title: "  "},
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[models.SaveProductsResponse](t, resp)
	assert.True(t, saved.Success)
	assert.Equal(t, 1, saved.SavedCount)
	assert.Equal(t, models.CategoryGames, saved.Products[0].Category)

	products, err := ts.store.FindProducts(context.Background(), models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{})
	resp := ts.do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	srv := NewServer(Services{}, downPinger{}, NewMetrics(), Options{RateLimitPerSecond: 10, RateLimitBurst: 10})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, fakeExtractor{text: uploadText})
	ts.upload(t, "catalogo.pdf", []byte("%PDF"))

	resp := ts.do(t, http.MethodGet, "/metrics", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `catalog_pdf_uploads_total{outcome="extracted"} 1`)
	assert.Contains(t, string(raw), "catalog_http_request_duration_seconds")
}

func TestRateLimit(t *testing.T) {
	srv := NewServer(Services{}, downPinger{}, NewMetrics(), Options{RateLimitPerSecond: 1, RateLimitBurst: 2})
	h := srv.Handler()

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "198.51.100.1:5000"
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "other clients keep their own budget")
}

func TestClientLimiterEvictsIdle(t *testing.T) {
	l := newClientLimiter(1, 1)
	start := time.Now()
	l.allow("a", start)
	l.visitors["b"] = &visitor{limiter: l.visitors["a"].limiter, lastSeen: start.Add(clientIdleTimeout)}

	l.evictIdle(start.Add(clientIdleTimeout + time.Second))
	assert.NotContains(t, l.visitors, "a")
	assert.Contains(t, l.visitors, "b")
}
