package playground

import (
	"encoding/json"
	"fmt"
)

// TemplateName keys the message template catalog
type TemplateName string

const (
	TemplateConfig TemplateName = "config"
	TemplateAudio  TemplateName = "audio"
	TemplateEOF    TemplateName = "eof"
)

// DefaultLanguageCode is used by the config template when none is configured
const DefaultLanguageCode = "yue-x-auto"

// AudioPlaceholder stands in for base64 audio bytes in the audio template
const AudioPlaceholder = "BASE64_ENCODED_AUDIO_DATA"

// TemplateNames lists the templates in display order
var TemplateNames = []TemplateName{TemplateConfig, TemplateAudio, TemplateEOF}

type streamingConfig struct {
	LanguageCode               string `json:"languageCode"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	Encoding                   string `json:"encoding"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	InterimResults             bool   `json:"interimResults"`
}

type configMessage struct {
	Config streamingConfig `json:"config"`
}

type audioMessage struct {
	AudioContent string `json:"audioContent"`
}

type eofMessage struct {
	EOF bool `json:"eof"`
}

// Catalog holds the fixed message templates, rendered once
type Catalog struct {
	texts map[TemplateName]string
}

// NewCatalog renders the templates. language fills the config template.
func NewCatalog(language string) *Catalog {
	if language == "" {
		language = DefaultLanguageCode
	}

	bodies := map[TemplateName]any{
		TemplateConfig: configMessage{Config: streamingConfig{
			LanguageCode:               language,
			SampleRateHertz:            16000,
			Encoding:                   "LINEAR16",
			EnableAutomaticPunctuation: true,
			InterimResults:             true,
		}},
		TemplateAudio: audioMessage{AudioContent: AudioPlaceholder},
		TemplateEOF:   eofMessage{EOF: true},
	}

	c := &Catalog{texts: make(map[TemplateName]string, len(bodies))}
	for name, body := range bodies {
		// Plain structs of strings, ints and bools always marshal
		data, _ := json.MarshalIndent(body, "", "  ")
		c.texts[name] = string(data)
	}
	return c
}

// Get returns the text of a template
func (c *Catalog) Get(name TemplateName) (string, bool) {
	text, ok := c.texts[name]
	return text, ok
}

// Lookup returns the text of a template by raw name, or an error naming the valid ones
func (c *Catalog) Lookup(name string) (string, error) {
	text, ok := c.texts[TemplateName(name)]
	if !ok {
		return "", fmt.Errorf("unknown template %q (expected config, audio or eof)", name)
	}
	return text, nil
}

// Names returns the template names in display order
func (c *Catalog) Names() []TemplateName {
	out := make([]TemplateName, len(TemplateNames))
	copy(out, TemplateNames)
	return out
}
