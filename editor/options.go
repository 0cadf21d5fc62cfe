package editor

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tsawler/inkwell/selection"
	"gopkg.in/yaml.v3"
)

// Options holds the editor settings that can live in a config file.
type Options struct {
	// ImageBorderColor is the outline color of a selected image.
	ImageBorderColor string `yaml:"image_border_color"`
	// TableSelectionBackground is the background of selected table cells.
	TableSelectionBackground string `yaml:"table_selection_background"`
	// HideCursorRule is installed on the root while an image or table is
	// selected.
	HideCursorRule string `yaml:"hide_cursor_rule"`
	// MaxRuleLength caps the selector text of one injected rule.
	MaxRuleLength int `yaml:"max_rule_length"`

	// DefaultPasteType is used when a paste gesture names none.
	DefaultPasteType string `yaml:"default_paste_type"`
	// AllowedCustomPasteTypes lists extra clipboard MIME types kept when
	// reading clipboard items.
	AllowedCustomPasteTypes []string `yaml:"allowed_custom_paste_types"`

	// DarkMode starts the editor in dark mode.
	DarkMode bool `yaml:"dark_mode"`
}

func (o *Options) defaults() {
	def := selection.DefaultOptions()
	if o.ImageBorderColor == "" {
		o.ImageBorderColor = def.ImageBorderColor
	}
	if o.TableSelectionBackground == "" {
		o.TableSelectionBackground = def.TableSelectionBackground
	}
	if o.HideCursorRule == "" {
		o.HideCursorRule = def.HideCursorRule
	}
	if o.MaxRuleLength <= 0 {
		o.MaxRuleLength = def.MaxRuleLength
	}
	if o.DefaultPasteType == "" {
		o.DefaultPasteType = "normal"
	}
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	var o Options
	o.defaults()
	return o
}

// clone returns a deep copy of o.
func (o Options) clone() Options {
	c := o
	if o.AllowedCustomPasteTypes != nil {
		c.AllowedCustomPasteTypes = make([]string, len(o.AllowedCustomPasteTypes))
		copy(c.AllowedCustomPasteTypes, o.AllowedCustomPasteTypes)
	}
	return c
}

// SelectionOptions returns the highlight settings for the selection manager.
func (o Options) SelectionOptions() selection.Options {
	return selection.Options{
		ImageBorderColor:         o.ImageBorderColor,
		TableSelectionBackground: o.TableSelectionBackground,
		HideCursorRule:           o.HideCursorRule,
		MaxRuleLength:            o.MaxRuleLength,
	}
}

// LoadOptionsFile reads editor options from a YAML file. Unset fields get
// their defaults.
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read options: %w", err)
	}
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, fmt.Errorf("failed to parse options %s: %w", path, err)
	}
	o.defaults()
	return o, nil
}

// Option configures an Editor.
type Option func(*Editor)

// WithOptions replaces the editor settings. Unset fields get their defaults.
func WithOptions(o Options) Option {
	return func(e *Editor) {
		e.opts = o.clone()
	}
}

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScheduler sets where RunAsync queues its tasks.
func WithScheduler(s Scheduler) Option {
	return func(e *Editor) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithTrustedHTMLHandler sets the handler applied to HTML before it is
// parsed into the editor.
func WithTrustedHTMLHandler(h TrustedHTMLHandler) Option {
	return func(e *Editor) {
		if h != nil {
			e.trustedHTML = h
		}
	}
}
