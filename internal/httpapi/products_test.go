package httpapi

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"localcart-be/internal/product"
	"localcart-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProducts struct {
	mock.Mock
}

func (m *mockProducts) ListByShop(ctx context.Context, shopID int64) ([]*product.Product, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *mockProducts) Get(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *mockProducts) Create(ctx context.Context, input product.SaveProductInput) (*product.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *mockProducts) Update(ctx context.Context, id int64, input product.SaveProductInput) (*product.Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *mockProducts) AdjustStock(ctx context.Context, id int64, adj product.StockAdjustment) (int, error) {
	args := m.Called(ctx, id, adj)
	return args.Int(0), args.Error(1)
}

func productForm(t *testing.T, withImage bool) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("shopId", "7"))
	require.NoError(t, mw.WriteField("name", "Kaos Polos"))
	require.NoError(t, mw.WriteField("price", "75000"))
	require.NoError(t, mw.WriteField("stock", "10"))
	require.NoError(t, mw.WriteField("category", "fashion"))
	require.NoError(t, mw.WriteField("units", `[{"name":"L","category":"size","price":"80000","stock":4}]`))

	if withImage {
		part, err := mw.CreateFormFile("image", "photo.PNG")
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateProduct_Multipart(t *testing.T) {
	dir := t.TempDir()
	products := new(mockProducts)
	env := newTestEnv(t, func(d *Deps) {
		d.Products = products
		d.Images = product.NewDiskStore(dir, "http://cdn.test/")
	})
	tok := env.token(t, 5, utils.RoleVendor, int64Ptr(7))

	var got product.SaveProductInput
	products.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).(product.SaveProductInput)
	}).Return(&product.Product{ID: 11, ShopID: 7}, nil)

	body, ct := productForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+tok)

	w := env.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, int64(7), got.ShopID)
	assert.Equal(t, "Kaos Polos", got.Name)
	assert.Equal(t, "75000", got.Price.String())
	assert.Equal(t, 10, got.Stock)
	require.Len(t, got.Units, 1)
	assert.Equal(t, "L", got.Units[0].Name)
	assert.Equal(t, "80000", got.Units[0].Price.String())

	require.NotNil(t, got.ImageURL)
	assert.True(t, strings.HasPrefix(*got.ImageURL, "http://cdn.test/uploads/"))
	assert.True(t, strings.HasSuffix(*got.ImageURL, ".png"))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Base(*got.ImageURL), files[0].Name())
}

func TestCreateProduct_FailureDiscardsUpload(t *testing.T) {
	dir := t.TempDir()
	products := new(mockProducts)
	env := newTestEnv(t, func(d *Deps) {
		d.Products = products
		d.Images = product.NewDiskStore(dir, "http://cdn.test")
	})

	products.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	body, ct := productForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set("Content-Type", ct)

	w := env.do(req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCreateProduct_JSON(t *testing.T) {
	products := new(mockProducts)
	env := newTestEnv(t, func(d *Deps) { d.Products = products })

	products.On("Create", mock.Anything, mock.MatchedBy(func(in product.SaveProductInput) bool {
		return in.Name == "Beras" && len(in.Units) == 1 && in.ImageURL == nil
	})).Return(&product.Product{ID: 12}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"shopId":7,"name":"Beras","price":"12000","units":[{"unitId":3,"price":"12000","stock":5}]}`))
	req.Header.Set("Content-Type", "application/json")

	w := env.do(req)
	assert.Equal(t, http.StatusCreated, w.Code)
	products.AssertExpectations(t)
}

func TestListProducts(t *testing.T) {
	products := new(mockProducts)
	env := newTestEnv(t, func(d *Deps) { d.Products = products })

	products.On("ListByShop", mock.Anything, int64(7)).Return([]*product.Product{{ID: 1}}, nil)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/products?shopId=7", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdjustStock(t *testing.T) {
	products := new(mockProducts)
	env := newTestEnv(t, func(d *Deps) { d.Products = products })

	products.On("AdjustStock", mock.Anything, int64(3), product.StockAdjustment{Delta: -2}).Return(8, nil)
	products.On("AdjustStock", mock.Anything, int64(4), product.StockAdjustment{Delta: -20}).Return(0, product.ErrInsufficientStock)

	req := httptest.NewRequest(http.MethodPatch, "/api/products/3/stock", strings.NewReader(`{"delta":-2}`))
	req.Header.Set("Content-Type", "application/json")
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(8), decodeBody(t, w)["stock"])

	req = httptest.NewRequest(http.MethodPatch, "/api/products/4/stock", strings.NewReader(`{"delta":-20}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, env.do(req).Code)
}
