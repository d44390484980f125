package transform

import (
	"errors"
	"fmt"
)

// Type is one of the fixed image edit operations.
type Type string

const (
	TypeRestore          Type = "restore"
	TypeFill             Type = "fill"
	TypeRemove           Type = "remove"
	TypeRecolor          Type = "recolor"
	TypeRemoveBackground Type = "removeBackground"
)

// Fee is the credit cost of one transformation apply.
const Fee = 1

// Config is the nested transformation configuration persisted with an
// image. Recognized top-level keys are the configKey values below.
type Config map[string]any

var ErrUnknownType = errors.New("unknown transformation type")

// configKey maps each type to its top-level configuration key.
var configKey = map[Type]string{
	TypeRestore:          "restore",
	TypeFill:             "fillBackground",
	TypeRemove:           "remove",
	TypeRecolor:          "recolor",
	TypeRemoveBackground: "removeBackground",
}

var recognizedKeys = map[string]bool{
	"restore":          true,
	"fillBackground":   true,
	"remove":           true,
	"recolor":          true,
	"removeBackground": true,
}

// Default returns the starting configuration for a type, the shape the
// editor seeds before the user touches any field.
func Default(t Type) (Config, error) {
	switch t {
	case TypeRestore:
		return Config{"restore": true}, nil
	case TypeFill:
		return Config{"fillBackground": true}, nil
	case TypeRemove:
		return Config{"remove": map[string]any{
			"prompt":       "",
			"removeShadow": true,
			"multiple":     true,
		}}, nil
	case TypeRecolor:
		return Config{"recolor": map[string]any{
			"prompt":   "",
			"to":       "",
			"multiple": true,
		}}, nil
	case TypeRemoveBackground:
		return Config{"removeBackground": true}, nil
	}
	return nil, ErrUnknownType
}

// Valid reports whether t names a known transformation type.
func Valid(t Type) bool {
	_, ok := configKey[t]
	return ok
}

// ValidateConfig checks the invariant that a configuration's shape matches
// its declared type: the type's own key must be present and every
// top-level key must be a recognized transformation key. Extra recognized
// keys are allowed since applies accumulate multiple types on one image.
func ValidateConfig(t Type, cfg Config) error {
	key, ok := configKey[t]
	if !ok {
		return ErrUnknownType
	}
	if _, ok := cfg[key]; !ok {
		return fmt.Errorf("config missing %q for type %q", key, t)
	}
	for k := range cfg {
		if !recognizedKeys[k] {
			return fmt.Errorf("config key %q not recognized", k)
		}
	}
	return nil
}

// AspectRatio describes one selectable fill aspect-ratio option.
type AspectRatio struct {
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// AspectRatios lists the fill-type crop options, keyed by the ratio label
// the form submits.
var AspectRatios = map[string]AspectRatio{
	"1:1":  {Label: "Square (1:1)", Width: 1000, Height: 1000},
	"3:4":  {Label: "Standard Portrait (3:4)", Width: 1000, Height: 1334},
	"9:16": {Label: "Phone Portrait (9:16)", Width: 1000, Height: 1778},
}
