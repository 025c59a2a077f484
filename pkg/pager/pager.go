package pager

import (
	"strconv"

	"github.com/matst80/slask-seo/pkg/types"
)

const (
	DefaultPageVarName  = "p"
	DefaultLimitVarName = "limit"
)

type Pager struct {
	PageVarName  string
	LimitVarName string
}

func New() *Pager {
	return &Pager{
		PageVarName:  DefaultPageVarName,
		LimitVarName: DefaultLimitVarName,
	}
}

func (p *Pager) GetPageVarName() string {
	if p == nil || p.PageVarName == "" {
		return DefaultPageVarName
	}
	return p.PageVarName
}

func (p *Pager) GetLimitVarName() string {
	if p == nil || p.LimitVarName == "" {
		return DefaultLimitVarName
	}
	return p.LimitVarName
}

// Query returns the query overlay that selects page and limit. Values below
// one are left out, page one is the default page and is unset.
func (p *Pager) Query(page, limit int) types.Overlay {
	result := types.Overlay{}
	if page > 1 {
		result[p.GetPageVarName()] = types.Set(strconv.Itoa(page))
	} else if page == 1 {
		result[p.GetPageVarName()] = types.Unset()
	}
	if limit > 0 {
		result[p.GetLimitVarName()] = types.Set(strconv.Itoa(limit))
	}
	return result
}
