package urlbuilder

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/matst80/slask-seo/pkg/types"
)

// Request is the part of the incoming request the builder needs.
type Request struct {
	// Path is the rewritten (SEO) path of the current page.
	Path string
	// Route is the internal route path, used when rewrites are disabled.
	Route string
	Query url.Values
}

func FromHttpRequest(r *http.Request) Request {
	return Request{
		Path:  r.URL.Path,
		Route: r.URL.Path,
		Query: r.URL.Query(),
	}
}

type Options struct {
	UseRewrite bool
	Escape     bool
	// Query is applied on top of the current query, unset keys are dropped.
	Query types.Overlay
}

type Builder struct {
	BaseUrl string
}

func NewBuilder(baseUrl string) *Builder {
	return &Builder{BaseUrl: strings.TrimSuffix(baseUrl, "/")}
}

var escaper = strings.NewReplacer(`"`, "%22", "'", "%27", "<", "%3C", ">", "%3E")

// CurrentUrl returns the url of the current page with the query overlay applied.
func (b *Builder) CurrentUrl(req Request, opts Options) string {
	path := req.Path
	if !opts.UseRewrite && req.Route != "" {
		path = req.Route
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	query := url.Values{}
	for key, values := range req.Query {
		query[key] = append([]string(nil), values...)
	}
	for key, value := range opts.Query {
		if value.Valid {
			query.Set(key, value.String)
		} else {
			query.Del(key)
		}
	}

	result := b.BaseUrl + path
	if encoded := query.Encode(); encoded != "" {
		result += "?" + encoded
	}
	if opts.Escape {
		result = escaper.Replace(result)
	}
	return result
}
