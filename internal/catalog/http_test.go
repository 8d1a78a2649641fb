package catalog

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"FoodZone/pkg/kit"
)

type testAPI struct {
	t     *testing.T
	h     http.Handler
	store *MemStore
	clock time.Time
}

func newTestAPI(t *testing.T) *testAPI {
	api := &testAPI{t: t, store: NewMemStore(), clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := &Server{
		Store: api.store,
		Files: api.store,
		Log:   zap.NewNop(),
		Now: func() time.Time {
			api.clock = api.clock.Add(time.Second)
			return api.clock
		},
	}
	api.h = NewHandler(s, HTTPDeps{Log: zap.NewNop(), Service: "catalog"})
	return api
}

func (a *testAPI) do(method, path, role string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if role != "" {
		req.Header.Set(kit.HeaderUserID, "u_1")
		req.Header.Set(kit.HeaderUserRole, role)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) create(body string) MenuItem {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/menu-items", kit.RoleAdmin, []byte(body), "application/json")
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	var it MenuItem
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &it))
	return it
}

func TestCreateAndList_NewestFirst(t *testing.T) {
	api := newTestAPI(t)

	first := api.create(`{"name":"Sticky Honey Roast","description":"Glazed ham","type":"main","nation":"Mondstadt","price":18.5}`)
	second := api.create(`{"name":"Almond Tofu","description":"Chilled","type":"Dessert","price":"6"}`)

	assert.True(t, strings.HasPrefix(first.ID, "m_"))
	assert.Equal(t, "Main", first.Type)

	rec := api.do(http.MethodGet, "/menu-items", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []MenuItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, "18.5", items[1].Price.Decimal.String())
}

func TestList_SearchAndIDs(t *testing.T) {
	api := newTestAPI(t)
	a := api.create(`{"name":"Sticky Honey Roast","description":"x"}`)
	b := api.create(`{"name":"Honey Cake","description":"x"}`)
	api.create(`{"name":"Tea","description":"x"}`)

	var items []MenuItem
	rec := api.do(http.MethodGet, "/menu-items?q=HONEY", "", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 2)

	rec = api.do(http.MethodGet, "/menu-items?ids="+a.ID+",nope,"+b.ID, "", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
}

func TestWrites_RequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	body := []byte(`{"name":"Tea","description":"x"}`)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/menu-items", "", body, "application/json").Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/menu-items", kit.RoleUser, body, "application/json").Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/menu-items/m_1", kit.RoleUser, nil, "").Code)
}

func TestCreate_Validation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/menu-items", kit.RoleAdmin,
		[]byte(`{"name":"","description":"x","type":"Snack","nation":"Atlantis","price":0}`), "application/json")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp kit.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	details, ok := resp.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "type")
	assert.Contains(t, details, "nation")
	assert.Contains(t, details, "price")

	rec = api.do(http.MethodPost, "/menu-items", kit.RoleAdmin, []byte(`{"name":"x","bogus":1}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_PriceUpperBound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/menu-items", kit.RoleAdmin,
		[]byte(`{"name":"Golden Feast","description":"x","price":100000000}`), "application/json")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"price"`)

	api.create(`{"name":"Golden Feast","description":"x","price":99999999.99}`)
}

func TestPatch_PartialAndNullPrice(t *testing.T) {
	api := newTestAPI(t)
	it := api.create(`{"name":"Tea","description":"Hot","price":3}`)

	rec := api.do(http.MethodPatch, "/menu-items/"+it.ID, kit.RoleAdmin, []byte(`{"description":"Iced"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var got MenuItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Tea", got.Name)
	assert.Equal(t, "Iced", got.Description)
	assert.True(t, got.Price.Valid)
	assert.True(t, got.UpdatedAt.After(it.UpdatedAt))

	rec = api.do(http.MethodPatch, "/menu-items/"+it.ID, kit.RoleAdmin, []byte(`{"price":null}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Price.Valid)

	rec = api.do(http.MethodPatch, "/menu-items/missing", kit.RoleAdmin, []byte(`{"name":"x"}`), "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete(t *testing.T) {
	api := newTestAPI(t)
	it := api.create(`{"name":"Tea","description":"x"}`)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/menu-items/"+it.ID, kit.RoleAdmin, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/menu-items/"+it.ID, "", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/menu-items/"+it.ID, kit.RoleAdmin, nil, "").Code)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, name string, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestFiles_UploadViewPreview(t *testing.T) {
	api := newTestAPI(t)
	body, ct := multipartBody(t, "dish.png", testPNG(t, 200, 100))

	rec := api.do(http.MethodPost, "/files", kit.RoleAdmin, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var up uploadResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &up))
	assert.Equal(t, "image/png", up.ContentType)
	assert.Equal(t, "dish.png", up.Name)

	rec = api.do(http.MethodGet, up.URL, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = api.do(http.MethodGet, "/files/"+up.ID+"/preview?width=50&quality=70", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	img, _, err := image.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/files/"+up.ID+"/preview?width=abc", "", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/files/f_missing/preview", "", nil, "").Code)
}

func TestFiles_RejectsNonImages(t *testing.T) {
	api := newTestAPI(t)
	body, ct := multipartBody(t, "notes.txt", []byte("just some text"))

	rec := api.do(http.MethodPost, "/files", kit.RoleAdmin, body, ct)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = api.do(http.MethodPost, "/files", kit.RoleAdmin, []byte(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFiles_HugeDimensionsRejected(t *testing.T) {
	api := newTestAPI(t)
	huge := pngHeader(20000, 20000)

	body, ct := multipartBody(t, "huge.png", huge)
	rec := api.do(http.MethodPost, "/files", kit.RoleAdmin, body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	require.NoError(t, api.store.PutFile(t.Context(), File{ID: "f_huge", ContentType: "image/png", Size: len(huge), Data: huge}))
	rec = api.do(http.MethodGet, "/files/f_huge/preview?width=100", "", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
