package config

type FieldType string

const (
	FieldYesNo  = FieldType("yesno")
	FieldText   = FieldType("text")
	FieldSelect = FieldType("select")
)

type Field struct {
	Path    string    `json:"path"`
	Label   string    `json:"label"`
	Comment string    `json:"comment,omitempty"`
	Type    FieldType `json:"type"`
	// Source names the option source for select fields.
	Source string `json:"source,omitempty"`
	// DependsOn hides the field in the admin panel unless that flag is set.
	DependsOn string `json:"dependsOn,omitempty"`
}

type Section struct {
	Id     string  `json:"id"`
	Label  string  `json:"label"`
	Fields []Field `json:"fields"`
}

const SourceSliderSubmitType = "slider_submit_type"

// Sections describes the settings added to the admin configuration panel.
func Sections() []Section {
	return []Section{
		{
			Id:    "layered_navigation",
			Label: "SEO layered navigation",
			Fields: []Field{
				{Path: PathEnabled, Label: "Enabled", Type: FieldYesNo},
				{Path: PathAjaxEnabled, Label: "Ajax enabled", Type: FieldYesNo, DependsOn: PathEnabled},
				{Path: PathMultipleChoiceFilters, Label: "Multiple choice filters", Type: FieldYesNo, DependsOn: PathEnabled},
				{
					Path:      PathRoutingSuffix,
					Label:     "Routing suffix",
					Comment:   "Path segment placed before the filters, e.g. \"filter\" gives /shoes/filter/color/red.html",
					Type:      FieldText,
					DependsOn: PathEnabled,
				},
			},
		},
		{
			Id:    "price_slider",
			Label: "Price slider",
			Fields: []Field{
				{Path: PathPriceSlider, Label: "Enabled", Type: FieldYesNo, DependsOn: PathEnabled},
				{Path: PathPriceSliderSubmitType, Label: "Submit type", Type: FieldSelect, Source: SourceSliderSubmitType, DependsOn: PathPriceSlider},
				{Path: PathPriceSliderDelay, Label: "Delay (seconds)", Type: FieldText, DependsOn: PathPriceSlider},
			},
		},
	}
}
