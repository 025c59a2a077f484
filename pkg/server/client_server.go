package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"

	"github.com/matst80/slask-seo/pkg/common"
	"github.com/matst80/slask-seo/pkg/layer"
	"github.com/matst80/slask-seo/pkg/seo"
	"github.com/matst80/slask-seo/pkg/types"
	"github.com/matst80/slask-seo/pkg/urlbuilder"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

type Settings struct {
	Enabled               bool   `json:"enabled"`
	AjaxEnabled           bool   `json:"ajaxEnabled"`
	MultipleChoiceFilters bool   `json:"multipleChoiceFilters"`
	PriceSlider           bool   `json:"priceSlider"`
	PriceSliderDelay      int    `json:"priceSliderDelay"`
	PriceSliderSubmitType int    `json:"priceSliderSubmitType"`
	RoutingSuffix         string `json:"routingSuffix"`
	CategoryUrlSuffix     string `json:"categoryUrlSuffix"`
	IsCatalogSearch       bool   `json:"isCatalogSearch"`
}

func (ws *WebServer) GetSettings(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	h := ws.Helper
	w.Header().Set("Cache-Control", "public, max-age=60")
	return enc.Encode(Settings{
		Enabled:               h.IsEnabled(),
		AjaxEnabled:           h.IsAjaxEnabled(),
		MultipleChoiceFilters: h.IsMultipleChoiceFiltersEnabled(),
		PriceSlider:           h.IsPriceSliderEnabled(),
		PriceSliderDelay:      h.PriceSliderDelay(),
		PriceSliderSubmitType: h.PriceSliderSubmitType(),
		RoutingSuffix:         h.RoutingSuffix(),
		CategoryUrlSuffix:     h.CategoryUrlSuffix(),
		IsCatalogSearch:       h.IsCatalogSearch(r.URL.Query().Get("path")),
	})
}

// LinksRequest describes the page a set of layered navigation links is built for.
// Set and Toggle take key:value pairs, Remove takes keys.
type LinksRequest struct {
	Url    string   `schema:"url,required"`
	Set    []string `schema:"set"`
	Remove []string `schema:"remove"`
	Toggle []string `schema:"toggle"`
	Page   int      `schema:"page"`
	Limit  int      `schema:"limit"`
}

type LinksResponse struct {
	Filters   layer.Pairs `json:"filters"`
	FilterUrl string      `json:"filterUrl"`
	ClearUrl  string      `json:"clearUrl"`
	PagerUrl  string      `json:"pagerUrl,omitempty"`
}

type RouteResponse struct {
	Path     string      `json:"path"`
	Filtered bool        `json:"filtered"`
	Filters  layer.Pairs `json:"filters"`
}

func splitPair(value string) (string, string, error) {
	key, v, ok := strings.Cut(value, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" || v == "" {
		return "", "", fmt.Errorf("invalid filter %q, expected key:value", value)
	}
	return key, v, nil
}

// stateFromUrl resolves a storefront url into the category page and its filters.
func (ws *WebServer) stateFromUrl(raw string) (seo.State, bool, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return seo.State{}, false, err
	}
	path, params, filtered := ws.route(u.EscapedPath())
	return seo.State{
		Request: urlbuilder.Request{Path: path, Route: path, Query: u.Query()},
		Layer:   params,
	}, filtered, nil
}

func (ws *WebServer) filtersFromRequest(req *LinksRequest, current layer.Params) (types.Overlay, error) {
	filters := types.Overlay{}
	for _, key := range req.Remove {
		filters[key] = types.Unset()
	}
	for _, pair := range req.Set {
		key, value, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		filters[key] = types.Set(value)
	}
	multiple := ws.Helper.IsMultipleChoiceFiltersEnabled()
	for _, pair := range req.Toggle {
		key, value, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		if !multiple {
			if current[key] == value {
				filters[key] = types.Unset()
			} else {
				filters[key] = types.Set(value)
			}
			continue
		}
		patched := layer.Merge(current, filters).Params()
		filters = filters.Merge(layer.Toggle(patched, key, value))
	}
	return filters, nil
}

func (ws *WebServer) GetLinks(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	req := &LinksRequest{}
	if err := decoder.Decode(req, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}
	state, _, err := ws.stateFromUrl(req.Url)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}
	filters, err := ws.filtersFromRequest(req, state.Layer)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}

	result := LinksResponse{
		Filters:   layer.Merge(state.Layer, filters),
		FilterUrl: ws.Helper.FilterUrl(state, filters, false, nil),
		ClearUrl:  ws.Helper.ClearFiltersUrl(state),
	}
	filterUrls.WithLabelValues("filter").Inc()
	filterUrls.WithLabelValues("clear").Inc()
	if req.Page > 0 || req.Limit > 0 {
		pagerState := state
		pagerState.Layer = result.Filters.Params()
		result.PagerUrl = ws.Helper.PagerUrl(pagerState, ws.pagerQuery(req.Page, req.Limit))
		filterUrls.WithLabelValues("pager").Inc()
	}
	return enc.Encode(result)
}

func (ws *WebServer) GetRoute(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "missing path", http.StatusBadRequest)
		return nil
	}
	state, filtered, err := ws.stateFromUrl(path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}
	return enc.Encode(RouteResponse{
		Path:     state.Request.Path,
		Filtered: filtered,
		Filters:  state.Layer.Sorted(),
	})
}
