package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/matst80/slask-seo/pkg/common"
	"github.com/matst80/slask-seo/pkg/config"
	"github.com/matst80/slask-seo/pkg/pager"
	"github.com/matst80/slask-seo/pkg/seo"
	"github.com/matst80/slask-seo/pkg/source"
	"github.com/matst80/slask-seo/pkg/types"
)

type WebServer struct {
	Helper           *seo.Helper
	Store            config.WritableStore
	SliderSubmitType *source.SliderSubmitType
	Pager            *pager.Pager
	Auth             Authenticator
	Logger           *zap.Logger
}

func (ws *WebServer) logger() *zap.Logger {
	if ws.Logger == nil {
		return zap.L()
	}
	return ws.Logger
}

func (ws *WebServer) pagerQuery(page, limit int) types.Overlay {
	p := ws.Pager
	if p == nil {
		p = pager.New()
	}
	return p.Query(page, limit)
}

func (ws *WebServer) ClientHandler() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /settings", common.JsonHandler(ws.GetSettings))
	mux.HandleFunc("GET /links", common.JsonHandler(ws.GetLinks))
	mux.HandleFunc("GET /route", common.JsonHandler(ws.GetRoute))
	return mux
}

func (ws *WebServer) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sections", common.JsonHandler(ws.GetSections))
	mux.HandleFunc("GET /options/price-slider-submit-type", common.JsonHandler(ws.GetSliderSubmitTypes))
	mux.HandleFunc("GET /config", common.JsonHandler(ws.GetConfig))
	mux.HandleFunc("PUT /config", common.JsonHandler(ws.UpdateConfig))
	mux.HandleFunc("DELETE /config/{path...}", common.JsonHandler(ws.ResetConfig))

	auth := ws.Auth
	if auth == nil {
		auth = &OpenAuth{}
	}
	return auth.Middleware(mux)
}
