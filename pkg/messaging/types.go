package messaging

type ChangeTopic string

const (
	ConfigChanged ChangeTopic = "seo_config_changed"
)
