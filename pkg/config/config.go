package config

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
)

const (
	PathEnabled               = "catalin_seo/catalog/enabled"
	PathAjaxEnabled           = "catalin_seo/catalog/ajax_enabled"
	PathMultipleChoiceFilters = "catalin_seo/catalog/multiple_choise_filters"
	PathPriceSlider           = "catalin_seo/catalog/price_slider"
	PathPriceSliderDelay      = "catalin_seo/catalog/price_slider_delay"
	PathPriceSliderSubmitType = "catalin_seo/catalog/price_slider_submit_type"
	PathRoutingSuffix         = "catalin_seo/catalog/routing_suffix"
	PathCategoryUrlSuffix     = "catalog/seo/category_url_suffix"
)

var ErrUnknownPath = errors.New("unknown config path")

var knownPaths = []string{
	PathEnabled,
	PathAjaxEnabled,
	PathMultipleChoiceFilters,
	PathPriceSlider,
	PathPriceSliderDelay,
	PathPriceSliderSubmitType,
	PathRoutingSuffix,
	PathCategoryUrlSuffix,
}

// Store resolves store scoped configuration values by path.
type Store interface {
	Value(path string) string
}

// ChangeNotifier is told about every value written to a writable store.
type ChangeNotifier interface {
	ConfigChanged(change Change) error
}

type Change struct {
	StoreCode string `json:"store"`
	Path      string `json:"path"`
	Value     string `json:"value"`
}

func IsKnownPath(path string) bool {
	return slices.Contains(knownPaths, path)
}

func KnownPaths() []string {
	return slices.Clone(knownPaths)
}

// Flag reads path as a boolean. Any value other than "", "0" and "false"
// (case insensitive) is true.
func Flag(s Store, path string) bool {
	value := strings.ToLower(strings.TrimSpace(s.Value(path)))
	return value != "" && value != "0" && value != "false"
}

// Int reads path as an integer, unparsable values count as 0.
func Int(s Store, path string) int {
	value := strings.TrimSpace(s.Value(path))
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f)
	}
	return 0
}

// WritableStore is a Store that can be changed from the admin api.
type WritableStore interface {
	Store
	Set(ctx context.Context, path, value string) error
	Reset(ctx context.Context, path string) error
	SetDefault(path, value string)
	All() map[string]string
}
