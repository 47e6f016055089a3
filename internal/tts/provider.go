package tts

import "context"

// Fixed voice configuration of the tester. Not exposed per request; the
// service config can override language and voice at startup.
const (
	DefaultLanguageCode = "en-GB"
	DefaultVoiceName    = "en-GB-Neural2-B"
)

// SynthesisRequest holds the text to render as speech.
type SynthesisRequest struct {
	Text string `json:"text"`
}

// SynthesisResponse holds the raw encoded audio exactly as the service
// returned it.
type SynthesisResponse struct {
	Audio       []byte
	ContentType string
}

// Provider is the interface for text-to-speech backends.
type Provider interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResponse, error)
	Name() string
}
