package seo

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/matst80/slask-seo/pkg/config"
	"github.com/matst80/slask-seo/pkg/layer"
	"github.com/matst80/slask-seo/pkg/pager"
	"github.com/matst80/slask-seo/pkg/types"
	"github.com/matst80/slask-seo/pkg/urlbuilder"
)

// AjaxQueryKey marks layered navigation requests made by the storefront script.
const AjaxQueryKey = "isLayerAjax"

const catalogSearchPath = "/catalogsearch/result"

type URLBuilder interface {
	CurrentUrl(req urlbuilder.Request, opts urlbuilder.Options) string
}

type PageVarNamer interface {
	GetPageVarName() string
}

// State is what the helper needs to know about the current request.
type State struct {
	Request urlbuilder.Request
	Layer   layer.Params
}

// StateFromRequest reads the layer params the router stored on the request context.
func StateFromRequest(r *http.Request) State {
	return State{
		Request: urlbuilder.FromHttpRequest(r),
		Layer:   layer.FromContext(r.Context()),
	}
}

type Helper struct {
	Config config.Store
	Urls   URLBuilder
	Pager  PageVarNamer
	Logger *zap.Logger
}

func NewHelper(cfg config.Store, urls URLBuilder, p PageVarNamer, logger *zap.Logger) *Helper {
	if p == nil {
		p = pager.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Helper{
		Config: cfg,
		Urls:   urls,
		Pager:  p,
		Logger: logger,
	}
}

func (h *Helper) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.L()
	}
	return h.Logger
}

func (h *Helper) IsEnabled() bool {
	return config.Flag(h.Config, config.PathEnabled)
}

func (h *Helper) IsAjaxEnabled() bool {
	if !h.IsEnabled() {
		return false
	}
	return config.Flag(h.Config, config.PathAjaxEnabled)
}

func (h *Helper) IsMultipleChoiceFiltersEnabled() bool {
	if !h.IsEnabled() {
		return false
	}
	return config.Flag(h.Config, config.PathMultipleChoiceFilters)
}

func (h *Helper) IsPriceSliderEnabled() bool {
	if !h.IsEnabled() {
		return false
	}
	return config.Flag(h.Config, config.PathPriceSlider)
}

// PriceSliderDelay is the delay in seconds before an auto submitting slider fires.
func (h *Helper) PriceSliderDelay() int {
	return config.Int(h.Config, config.PathPriceSliderDelay)
}

func (h *Helper) PriceSliderSubmitType() int {
	return config.Int(h.Config, config.PathPriceSliderSubmitType)
}

// RoutingSuffix is the path segment placed in front of the filter segments.
func (h *Helper) RoutingSuffix() string {
	return "/" + h.Config.Value(config.PathRoutingSuffix)
}

func (h *Helper) CategoryUrlSuffix() string {
	return h.Config.Value(config.PathCategoryUrlSuffix)
}

// CurrentLayerParams merges filters into the current layer params, sorted by key.
func (h *Helper) CurrentLayerParams(current layer.Params, filters types.Overlay) layer.Pairs {
	return layer.Merge(current, filters)
}

// FilterUrl builds the url of the current page with the layer params patched by
// filters as /key/value path segments. With noFilters set no segments are added.
// q is applied to the query string on top of the removed ajax and page parameters.
func (h *Helper) FilterUrl(state State, filters types.Overlay, noFilters bool, q types.Overlay) string {
	query := types.Overlay{
		AjaxQueryKey:             types.Unset(),
		h.Pager.GetPageVarName(): types.Unset(),
	}.Merge(q)

	current := h.Urls.CurrentUrl(state.Request, urlbuilder.Options{
		UseRewrite: true,
		Escape:     true,
		Query:      query,
	})

	var segments strings.Builder
	if !noFilters {
		for _, pair := range h.CurrentLayerParams(state.Layer, filters) {
			segments.WriteString("/")
			segments.WriteString(url.PathEscape(pair.Key))
			segments.WriteString("/")
			segments.WriteString(encodeValue(pair.Value))
		}
	}

	if segments.Len() == 0 {
		return current
	}

	suffix := h.CategoryUrlSuffix()
	path, rawQuery, _ := strings.Cut(current, "?")
	result := h.trimCategorySuffix(path, suffix) + h.RoutingSuffix() + segments.String() + suffix
	if rawQuery != "" {
		result += "?" + rawQuery
	}
	return result
}

func (h *Helper) ClearFiltersUrl(state State) string {
	return h.FilterUrl(state, nil, true, nil)
}

func (h *Helper) PagerUrl(state State, query types.Overlay) string {
	return h.FilterUrl(state, nil, false, query)
}

// IsCatalogSearch reports whether path belongs to the catalog search result page.
func (h *Helper) IsCatalogSearch(path string) bool {
	return strings.Contains(strings.ToLower(path), catalogSearchPath)
}

// trimCategorySuffix removes suffix from the end of path. A path without the
// suffix is kept as is instead of cutting an arbitrary tail.
func (h *Helper) trimCategorySuffix(path, suffix string) string {
	if trimmed, ok := strings.CutSuffix(path, suffix); ok {
		return trimmed
	}
	h.logger().Warn("category url suffix not found in url",
		zap.String("url", path),
		zap.String("suffix", suffix))
	return strings.TrimSuffix(path, "/")
}

var escapedDelimiter = url.QueryEscape(layer.MultipleFiltersDelimiter)

// encodeValue escapes a filter value but keeps the multi value delimiter readable.
func encodeValue(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), escapedDelimiter, layer.MultipleFiltersDelimiter)
}
