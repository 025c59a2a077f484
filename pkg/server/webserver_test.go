package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/matst80/slask-seo/pkg/config"
	"github.com/matst80/slask-seo/pkg/layer"
	"github.com/matst80/slask-seo/pkg/pager"
	"github.com/matst80/slask-seo/pkg/seo"
	"github.com/matst80/slask-seo/pkg/source"
	"github.com/matst80/slask-seo/pkg/urlbuilder"
)

func newTestServer(t *testing.T, values map[string]string) *WebServer {
	t.Helper()
	store := config.NewMemoryStore(values)
	require.NoError(t, config.LoadDefaults(store))
	return &WebServer{
		Helper:           seo.NewHelper(store, urlbuilder.NewBuilder("https://shop.example"), pager.New(), nil),
		Store:            store,
		SliderSubmitType: source.NewSliderSubmitType(language.English),
		Pager:            pager.New(),
	}
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[V any](t *testing.T, rec *httptest.ResponseRecorder) V {
	t.Helper()
	var v V
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func linksRequest(values url.Values) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/links?"+values.Encode(), nil)
}

func TestGetSettings(t *testing.T) {
	ws := newTestServer(t, map[string]string{config.PathAjaxEnabled: "0"})
	rec := serve(ws.ClientHandler(), httptest.NewRequest(http.MethodGet, "/settings?path=/catalogsearch/result/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[Settings](t, rec)
	assert.True(t, settings.Enabled)
	assert.False(t, settings.AjaxEnabled)
	assert.True(t, settings.PriceSlider)
	assert.Equal(t, "/filter", settings.RoutingSuffix)
	assert.Equal(t, source.SubmitAutoDelayed, settings.PriceSliderSubmitType)
	assert.True(t, settings.IsCatalogSearch)
}

func TestGetLinks(t *testing.T) {
	ws := newTestServer(t, nil)
	rec := serve(ws.ClientHandler(), linksRequest(url.Values{
		"url":  {"/shoes/filter/color/red.html?dir=asc&p=3"},
		"set":  {"size:42"},
		"page": {"2"},
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	links := decode[LinksResponse](t, rec)
	assert.Equal(t, layer.Pairs{{Key: "color", Value: "red"}, {Key: "size", Value: "42"}}, links.Filters)
	assert.Equal(t, "https://shop.example/shoes/filter/color/red/size/42.html?dir=asc", links.FilterUrl)
	assert.Equal(t, "https://shop.example/shoes.html?dir=asc", links.ClearUrl)
	assert.Equal(t, "https://shop.example/shoes/filter/color/red/size/42.html?dir=asc&p=2", links.PagerUrl)
}

func TestGetLinksRemove(t *testing.T) {
	ws := newTestServer(t, nil)
	rec := serve(ws.ClientHandler(), linksRequest(url.Values{
		"url":    {"/shoes/filter/color/red.html"},
		"remove": {"color"},
	}))

	links := decode[LinksResponse](t, rec)
	assert.Empty(t, links.Filters)
	assert.Equal(t, "https://shop.example/shoes.html", links.FilterUrl)
	assert.Empty(t, links.PagerUrl)
}

func TestGetLinksToggleMultipleChoice(t *testing.T) {
	ws := newTestServer(t, nil)
	rec := serve(ws.ClientHandler(), linksRequest(url.Values{
		"url":    {"/shoes/filter/color/red.html"},
		"toggle": {"color:blue"},
	}))
	assert.Equal(t, "https://shop.example/shoes/filter/color/red,blue.html", decode[LinksResponse](t, rec).FilterUrl)

	rec = serve(ws.ClientHandler(), linksRequest(url.Values{
		"url":    {"/shoes/filter/color/red,blue.html"},
		"toggle": {"color:red"},
	}))
	assert.Equal(t, "https://shop.example/shoes/filter/color/blue.html", decode[LinksResponse](t, rec).FilterUrl)
}

func TestGetLinksToggleSingleChoice(t *testing.T) {
	ws := newTestServer(t, map[string]string{config.PathMultipleChoiceFilters: "0"})
	rec := serve(ws.ClientHandler(), linksRequest(url.Values{
		"url":    {"/shoes/filter/color/red.html"},
		"toggle": {"color:blue"},
	}))
	assert.Equal(t, "https://shop.example/shoes/filter/color/blue.html", decode[LinksResponse](t, rec).FilterUrl)

	rec = serve(ws.ClientHandler(), linksRequest(url.Values{
		"url":    {"/shoes/filter/color/red.html"},
		"toggle": {"color:red"},
	}))
	assert.Equal(t, "https://shop.example/shoes.html", decode[LinksResponse](t, rec).FilterUrl)
}

func TestGetLinksBadRequest(t *testing.T) {
	ws := newTestServer(t, nil)
	assert.Equal(t, http.StatusBadRequest, serve(ws.ClientHandler(), linksRequest(url.Values{})).Code)
	assert.Equal(t, http.StatusBadRequest, serve(ws.ClientHandler(), linksRequest(url.Values{
		"url": {"/shoes.html"},
		"set": {"color"},
	})).Code)
}

func TestGetRoute(t *testing.T) {
	ws := newTestServer(t, nil)
	rec := serve(ws.ClientHandler(), httptest.NewRequest(http.MethodGet, "/route?path="+url.QueryEscape("/shoes/filter/color/red.html"), nil))
	route := decode[RouteResponse](t, rec)
	assert.True(t, route.Filtered)
	assert.Equal(t, "/shoes.html", route.Path)
	assert.Equal(t, layer.Pairs{{Key: "color", Value: "red"}}, route.Filters)

	disabled := newTestServer(t, map[string]string{config.PathEnabled: "0"})
	rec = serve(disabled.ClientHandler(), httptest.NewRequest(http.MethodGet, "/route?path="+url.QueryEscape("/shoes/filter/color/red.html"), nil))
	route = decode[RouteResponse](t, rec)
	assert.False(t, route.Filtered)
	assert.Equal(t, "/shoes/filter/color/red.html", route.Path)

	assert.Equal(t, http.StatusBadRequest, serve(ws.ClientHandler(), httptest.NewRequest(http.MethodGet, "/route", nil)).Code)
}

func TestLayerRouter(t *testing.T) {
	ws := newTestServer(t, nil)
	var seen *http.Request
	handler := ws.LayerRouter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
	}))

	serve(handler, httptest.NewRequest(http.MethodGet, "/shoes/filter/color/red,blue/size/42.html?dir=asc", nil))
	require.NotNil(t, seen)
	assert.Equal(t, "/shoes.html", seen.URL.Path)
	assert.Equal(t, "/shoes.html?dir=asc", seen.RequestURI)
	assert.Equal(t, layer.Params{"color": "red,blue", "size": "42"}, layer.FromContext(seen.Context()))
	assert.Equal(t, "/shoes/filter/color/red,blue/size/42.html", seen.Header.Get(HeaderOriginalPath))
	assert.Equal(t, "color=red%2Cblue&size=42", seen.Header.Get(HeaderLayerParams))

	state := seo.StateFromRequest(seen)
	assert.Equal(t, "/shoes/filter/color/red,blue/size/42.html?dir=asc", ws.Helper.FilterUrl(state, nil, false, nil)[len("https://shop.example"):])
}

func TestEscapedFilterValuesRoundTrip(t *testing.T) {
	ws := newTestServer(t, nil)
	var seen *http.Request
	router := ws.LayerRouter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
	}))

	for _, value := range []string{"a/b", "c++", "100%", "x y"} {
		rec := serve(ws.ClientHandler(), linksRequest(url.Values{
			"url": {"/shoes.html"},
			"set": {"brand:" + value},
		}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		built := strings.TrimPrefix(decode[LinksResponse](t, rec).FilterUrl, "https://shop.example")
		require.True(t, strings.HasPrefix(built, "/shoes/filter/brand/"), built)

		rec = serve(ws.ClientHandler(), linksRequest(url.Values{"url": {built}}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		links := decode[LinksResponse](t, rec)
		assert.Equal(t, layer.Pairs{{Key: "brand", Value: value}}, links.Filters, built)
		assert.Equal(t, "https://shop.example"+built, links.FilterUrl)

		seen = nil
		serve(router, httptest.NewRequest(http.MethodGet, built, nil))
		require.NotNil(t, seen, built)
		assert.Equal(t, "/shoes.html", seen.URL.Path)
		assert.Equal(t, layer.Params{"brand": value}, layer.FromContext(seen.Context()), built)
		assert.Equal(t, built, seen.Header.Get(HeaderOriginalPath))
	}
}

func TestLayerRouterPassesOtherPaths(t *testing.T) {
	ws := newTestServer(t, nil)
	var seen *http.Request
	handler := ws.LayerRouter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
	}))

	req := httptest.NewRequest(http.MethodGet, "/shoes.html", nil)
	req.Header.Set(HeaderLayerParams, "color=red")
	serve(handler, req)
	require.NotNil(t, seen)
	assert.Equal(t, "/shoes.html", seen.URL.Path)
	assert.Empty(t, seen.Header.Get(HeaderLayerParams))
	assert.Empty(t, layer.FromContext(seen.Context()))
}

func TestRequestLoggerSetsId(t *testing.T) {
	handler := RequestLogger(zap.NewNop(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestId))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestId, "abc")
	assert.Equal(t, "abc", serve(handler, req).Header().Get(HeaderRequestId))
}

func TestAdminRequiresAuth(t *testing.T) {
	ws := newTestServer(t, nil)
	auth, err := NewTokenAuth("secret", "api-key")
	require.NoError(t, err)
	ws.Auth = auth
	admin := ws.AdminHandler()

	assert.Equal(t, http.StatusUnauthorized, serve(admin, httptest.NewRequest(http.MethodGet, "/config", nil)).Code)

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	req.Header.Set("X-Api-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(admin, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/config", nil)
	req.Header.Set("X-Api-Key", "api-key")
	assert.Equal(t, http.StatusOK, serve(admin, req).Code)

	token, err := auth.NewToken("admin", "admin", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/config", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, serve(admin, req).Code)

	viewer, err := auth.NewToken("someone", "viewer", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/config", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: viewer})
	assert.Equal(t, http.StatusUnauthorized, serve(admin, req).Code)

	expired, err := auth.NewToken("admin", "admin", -time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/config", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, serve(admin, req).Code)
}

func TestNewTokenAuthNeedsSecret(t *testing.T) {
	_, err := NewTokenAuth("", "")
	assert.Error(t, err)
}

func TestUpdateAndResetConfig(t *testing.T) {
	ws := newTestServer(t, nil)
	admin := ws.AdminHandler()

	body := `{"catalin_seo/catalog/routing_suffix":"f","catalin_seo/catalog/price_slider":"0"}`
	rec := serve(admin, httptest.NewRequest(http.MethodPut, "/config", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/f", ws.Helper.RoutingSuffix())
	assert.False(t, ws.Helper.IsPriceSliderEnabled())
	assert.Equal(t, "f", decode[map[string]string](t, rec)[config.PathRoutingSuffix])

	rec = serve(admin, httptest.NewRequest(http.MethodPut, "/config", strings.NewReader(`{"catalin_seo/catalog/enabled":"0","nope":"1"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, ws.Helper.IsEnabled())

	rec = serve(admin, httptest.NewRequest(http.MethodPut, "/config", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(admin, httptest.NewRequest(http.MethodDelete, "/config/catalin_seo/catalog/routing_suffix", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/filter", ws.Helper.RoutingSuffix())

	rec = serve(admin, httptest.NewRequest(http.MethodDelete, "/config/catalin_seo/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingStore struct {
	config.WritableStore
	failOn string
}

func (s *failingStore) Set(ctx context.Context, path, value string) error {
	if path == s.failOn {
		return errors.New("redis down")
	}
	return s.WritableStore.Set(ctx, path, value)
}

func TestUpdateConfigReportsSavedPaths(t *testing.T) {
	ws := newTestServer(t, nil)
	ws.Store = &failingStore{WritableStore: ws.Store, failOn: config.PathPriceSlider}

	body := `{"catalin_seo/catalog/ajax_enabled":"0","catalin_seo/catalog/price_slider":"0","catalin_seo/catalog/routing_suffix":"f"}`
	rec := serve(ws.AdminHandler(), httptest.NewRequest(http.MethodPut, "/config", strings.NewReader(body)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	result := decode[ConfigUpdateError](t, rec)
	assert.Equal(t, "redis down", result.Error)
	assert.Equal(t, config.PathPriceSlider, result.Path)
	assert.Equal(t, []string{config.PathAjaxEnabled}, result.Saved)
	assert.False(t, ws.Helper.IsAjaxEnabled())
	assert.Equal(t, "/filter", ws.Helper.RoutingSuffix())
}

func TestGetSections(t *testing.T) {
	ws := newTestServer(t, nil)
	rec := serve(ws.AdminHandler(), httptest.NewRequest(http.MethodGet, "/sections", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	sections := decode[[]SectionView](t, rec)
	require.Len(t, sections, 2)
	assert.Equal(t, "1", sections[0].Values[config.PathEnabled])
	assert.Len(t, sections[1].Options[config.SourceSliderSubmitType], 2)

	rec = serve(ws.AdminHandler(), httptest.NewRequest(http.MethodGet, "/options/price-slider-submit-type", nil))
	options := decode[[]source.Option](t, rec)
	assert.Equal(t, []source.Option{
		{Value: 1, Label: "Delayed auto submit"},
		{Value: 2, Label: "Submit button"},
	}, options)
}
