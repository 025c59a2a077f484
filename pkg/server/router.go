package server

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"github.com/matst80/slask-seo/pkg/layer"
)

const (
	HeaderOriginalPath = "X-Seo-Original-Path"
	HeaderLayerParams  = "X-Seo-Layer-Params"
)

// route resolves an escaped filter path to its escaped category path when the
// module is enabled.
func (ws *WebServer) route(path string) (string, layer.Params, bool) {
	if !ws.Helper.IsEnabled() {
		return path, layer.Params{}, false
	}
	category, params, ok := layer.ParsePath(path, ws.Helper.RoutingSuffix(), ws.Helper.CategoryUrlSuffix())
	if !ok {
		return path, layer.Params{}, false
	}
	return category, params, true
}

func encodeParams(params layer.Params) string {
	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	return values.Encode()
}

// LayerRouter rewrites filter paths to the category path before calling next.
// The filters are stored on the request context and passed on in a header.
func (ws *WebServer) LayerRouter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		escaped := r.URL.EscapedPath()
		path, params, ok := ws.route(escaped)
		if !ok {
			if r.Header.Get(HeaderLayerParams) != "" || r.Header.Get(HeaderOriginalPath) != "" {
				r = r.Clone(r.Context())
				r.Header.Del(HeaderLayerParams)
				r.Header.Del(HeaderOriginalPath)
			}
			next.ServeHTTP(w, r)
			return
		}
		routedRequests.Inc()
		routed := r.Clone(layer.WithParams(r.Context(), params))
		unescaped, err := url.PathUnescape(path)
		if err != nil {
			ws.logger().Warn("invalid category path", zap.String("path", path), zap.Error(err))
			unescaped = path
		}
		routed.URL.Path = unescaped
		routed.URL.RawPath = path
		routed.RequestURI = routed.URL.RequestURI()
		routed.Header.Set(HeaderOriginalPath, escaped)
		routed.Header.Set(HeaderLayerParams, encodeParams(params))
		next.ServeHTTP(w, routed)
	})
}

// NewStorefrontProxy forwards routed requests to the storefront.
func NewStorefrontProxy(upstream *url.URL) http.Handler {
	return httputil.NewSingleHostReverseProxy(upstream)
}
