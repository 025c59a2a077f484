package source

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	SubmitAutoDelayed = 1
	SubmitButton      = 2
)

type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

var translations = catalog.NewBuilder(catalog.Fallback(language.English))

func init() {
	_ = translations.SetString(language.Swedish, "Delayed auto submit", "Fördröjd automatisk sökning")
	_ = translations.SetString(language.Swedish, "Submit button", "Sökknapp")
}

// SliderSubmitType lists how the price slider filter is submitted.
type SliderSubmitType struct {
	printer *message.Printer
	once    sync.Once
	options []Option
	builds  int
}

func NewSliderSubmitType(lang language.Tag) *SliderSubmitType {
	return &SliderSubmitType{
		printer: message.NewPrinter(lang, message.Catalog(translations)),
	}
}

// ToOptionArray returns the options, they are built on first use and then reused.
func (s *SliderSubmitType) ToOptionArray() []Option {
	s.once.Do(func() {
		s.builds++
		s.options = []Option{
			{Value: SubmitAutoDelayed, Label: s.printer.Sprintf("Delayed auto submit")},
			{Value: SubmitButton, Label: s.printer.Sprintf("Submit button")},
		}
	})
	return s.options
}

// Label returns the label for value, or an empty string for unknown values.
func (s *SliderSubmitType) Label(value int) string {
	for _, o := range s.ToOptionArray() {
		if o.Value == value {
			return o.Label
		}
	}
	return ""
}
