package server

import (
	"maps"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/matst80/slask-seo/pkg/common"
	"github.com/matst80/slask-seo/pkg/config"
	"github.com/matst80/slask-seo/pkg/source"
)

type SectionView struct {
	config.Section
	Values  map[string]string          `json:"values"`
	Options map[string][]source.Option `json:"options,omitempty"`
}

func (ws *WebServer) options(name string) []source.Option {
	switch name {
	case config.SourceSliderSubmitType:
		return ws.SliderSubmitType.ToOptionArray()
	}
	return nil
}

func (ws *WebServer) GetSections(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	sections := config.Sections()
	result := make([]SectionView, 0, len(sections))
	for _, section := range sections {
		view := SectionView{
			Section: section,
			Values:  make(map[string]string, len(section.Fields)),
			Options: map[string][]source.Option{},
		}
		for _, field := range section.Fields {
			view.Values[field.Path] = ws.Store.Value(field.Path)
			if field.Source != "" {
				view.Options[field.Source] = ws.options(field.Source)
			}
		}
		result = append(result, view)
	}
	return enc.Encode(result)
}

func (ws *WebServer) GetSliderSubmitTypes(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	return enc.Encode(ws.SliderSubmitType.ToOptionArray())
}

func (ws *WebServer) GetConfig(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	return enc.Encode(ws.Store.All())
}

// ConfigUpdateError is returned when a store write fails. Saved lists the paths
// written before Path failed, they are not rolled back.
type ConfigUpdateError struct {
	Error string   `json:"error"`
	Path  string   `json:"path"`
	Saved []string `json:"saved"`
}

// UpdateConfig stores every path in the body. Unknown paths reject the whole request.
func (ws *WebServer) UpdateConfig(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	values := map[string]string{}
	if err := common.DecodeJson(r, &values); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}
	for path := range values {
		if !config.IsKnownPath(path) {
			http.Error(w, "unknown config path "+path, http.StatusBadRequest)
			return nil
		}
	}
	saved := make([]string, 0, len(values))
	for _, path := range slices.Sorted(maps.Keys(values)) {
		if err := ws.Store.Set(r.Context(), path, values[path]); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			if encErr := enc.Encode(ConfigUpdateError{Error: err.Error(), Path: path, Saved: saved}); encErr != nil {
				return encErr
			}
			return err
		}
		saved = append(saved, path)
		configChanges.Inc()
		ws.logger().Info("config changed", zap.String("path", path), zap.String("value", values[path]))
	}
	return enc.Encode(ws.Store.All())
}

func (ws *WebServer) ResetConfig(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	path := r.PathValue("path")
	if !config.IsKnownPath(path) {
		http.Error(w, "unknown config path "+path, http.StatusNotFound)
		return nil
	}
	if err := ws.Store.Reset(r.Context(), path); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	configChanges.Inc()
	return enc.Encode(ws.Store.All())
}
