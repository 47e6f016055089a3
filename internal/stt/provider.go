package stt

import "context"

// Defaults matching the capture side of the tester (mono linear PCM).
const (
	DefaultEncoding        = "LINEAR16"
	DefaultSampleRateHertz = 48000
	DefaultLanguageCode    = "en-GB"
)

// TranscriptionRequest holds the audio payload and its recognition
// parameters. The parameters are explicit so callers cannot silently
// mismatch them against the captured audio format.
type TranscriptionRequest struct {
	Audio           []byte `json:"-"`
	Encoding        string `json:"encoding,omitempty"`
	SampleRateHertz int    `json:"sample_rate_hertz,omitempty"`
	LanguageCode    string `json:"language_code,omitempty"`
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Transcript string `json:"transcript"`
	Segments   int    `json:"segments"`
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}
