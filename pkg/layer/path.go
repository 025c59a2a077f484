package layer

import (
	"net/url"
	"strings"
)

// ParsePath recognizes paths on the form
//
//	<category><routingSuffix>/key/value/.../key/value<categorySuffix>
//
// and returns the category page path (<category><categorySuffix>) together with
// the decoded filters. ok is false when path is not a filter path.
func ParsePath(path, routingSuffix, categorySuffix string) (string, Params, bool) {
	if routingSuffix == "" || routingSuffix == "/" {
		return "", nil, false
	}
	trimmed, hasSuffix := strings.CutSuffix(path, categorySuffix)
	if !hasSuffix {
		return "", nil, false
	}
	idx := strings.Index(trimmed, routingSuffix+"/")
	if idx <= 0 {
		return "", nil, false
	}
	category := trimmed[:idx]
	segments := strings.Split(trimmed[idx+len(routingSuffix)+1:], "/")
	if len(segments)%2 != 0 {
		return "", nil, false
	}
	params := make(Params, len(segments)/2)
	for i := 0; i < len(segments); i += 2 {
		key, err := url.PathUnescape(segments[i])
		if err != nil || key == "" {
			return "", nil, false
		}
		value, err := url.QueryUnescape(segments[i+1])
		if err != nil || value == "" {
			return "", nil, false
		}
		params[key] = value
	}
	return category + categorySuffix, params, true
}
