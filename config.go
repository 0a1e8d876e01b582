package editable

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/AnatoleLucet/editable/internal/propagate"
)

const (
	codeConfigInvalid = "EDITABLE_CONFIG_INVALID"
	codeConfigDecode  = "EDITABLE_CONFIG_DECODE"
	codeCheckFailed   = "EDITABLE_CHECK_FAILED"
)

// Config is the widget's configuration surface. It is copied by New and
// never changes afterwards.
type Config struct {
	// ConditionAttribute names the boolean attribute of the bound record.
	ConditionAttribute string `yaml:"condition_attribute"`
	// ConditionCheck names the check routine to evaluate instead.
	ConditionCheck string `yaml:"condition_check"`
	// SubscribeEntity is the record class whose changes trigger a re-resolve.
	SubscribeEntity string `yaml:"subscribe_entity"`

	EnableLogging bool   `yaml:"enable_logging"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`

	// ButtonClass selects the buttons the widget acts on.
	ButtonClass          string `yaml:"button_class"`
	HideInsteadOfDisable bool   `yaml:"hide_instead_of_disable"`

	// InvertResult makes a true condition mean read-only.
	InvertResult bool `yaml:"invert_result"`

	EditorDelay time.Duration `yaml:"editor_delay"`
	SliderDelay time.Duration `yaml:"slider_delay"`
}

// DefaultConfig returns a Config with every optional field set.
func DefaultConfig() Config {
	return Config{
		LogLevel:    "debug",
		LogFormat:   "console",
		EditorDelay: propagate.DefaultEditorDelay,
		SliderDelay: propagate.DefaultSliderDelay,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	c.ConditionAttribute = strings.TrimSpace(c.ConditionAttribute)
	c.ConditionCheck = strings.TrimSpace(c.ConditionCheck)
	c.SubscribeEntity = strings.TrimSpace(c.SubscribeEntity)
	c.ButtonClass = strings.TrimSpace(c.ButtonClass)
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = def.LogLevel
	}
	if strings.TrimSpace(c.LogFormat) == "" {
		c.LogFormat = def.LogFormat
	}
	if c.EditorDelay == 0 {
		c.EditorDelay = def.EditorDelay
	}
	if c.SliderDelay == 0 {
		c.SliderDelay = def.SliderDelay
	}
	return c
}

// Validate reports every configuration problem. Exactly one of
// ConditionAttribute and ConditionCheck must be set.
func (c Config) Validate() error {
	errs := validation.Errors{}

	attr, check := strings.TrimSpace(c.ConditionAttribute), strings.TrimSpace(c.ConditionCheck)
	switch {
	case attr == "" && check == "":
		errs["condition"] = validation.NewError("editable.config.condition_required", "one of condition_attribute or condition_check is required")
	case attr != "" && check != "":
		errs["condition"] = validation.NewError("editable.config.condition_ambiguous", "condition_attribute and condition_check are mutually exclusive")
	}

	if err := validation.Validate(strings.ToLower(strings.TrimSpace(c.LogFormat)),
		validation.In("", "console", "json", "pretty")); err != nil {
		errs["log_format"] = err
	}
	if err := validation.Validate(strings.ToLower(strings.TrimSpace(c.LogLevel)),
		validation.In("", "trace", "debug", "info", "warn", "warning", "error")); err != nil {
		errs["log_level"] = err
	}
	if c.EditorDelay < 0 {
		errs["editor_delay"] = validation.NewError("editable.config.delay_negative", "editor_delay must not be negative")
	}
	if c.SliderDelay < 0 {
		errs["slider_delay"] = validation.NewError("editable.config.delay_negative", "slider_delay must not be negative")
	}

	if len(errs) > 0 {
		return goerrors.Wrap(errs, goerrors.CategoryValidation, "editable config invalid").
			WithTextCode(codeConfigInvalid)
	}
	return nil
}

// ParseConfig decodes a YAML document on top of DefaultConfig. Unknown keys
// are rejected. The result is not validated.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryValidation, "editable config decode failed").
			WithTextCode(codeConfigDecode)
	}
	return cfg.withDefaults(), nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("editable: read config: %w", err)
	}
	return ParseConfig(data)
}
