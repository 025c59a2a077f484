package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filterUrls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskseo_filter_urls_total",
		Help: "The total number of generated layered navigation urls",
	}, []string{"kind"})
	routedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskseo_routed_requests_total",
		Help: "The total number of requests routed from a filter path",
	})
	configChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskseo_config_changes_total",
		Help: "The total number of config values changed from the admin api",
	})
)
