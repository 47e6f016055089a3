package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

type synthesizeClient interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

// GoogleTTS performs one synchronous synthesis call per request against
// the Google Cloud Text-to-Speech API, producing MP3 audio.
type GoogleTTS struct {
	client       synthesizeClient
	languageCode string
	voiceName    string
}

// NewGoogleTTS constructs an adapter authenticated with the given client
// option. Empty language or voice fall back to the tester defaults.
// Callers own the adapter's lifetime and must Close it.
func NewGoogleTTS(ctx context.Context, opt option.ClientOption, languageCode, voiceName string) (*GoogleTTS, error) {
	client, err := texttospeech.NewClient(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech client: %w", err)
	}
	if languageCode == "" {
		languageCode = DefaultLanguageCode
	}
	if voiceName == "" {
		voiceName = DefaultVoiceName
	}
	return &GoogleTTS{client: client, languageCode: languageCode, voiceName: voiceName}, nil
}

func (g *GoogleTTS) Name() string { return "google-texttospeech" }

func (g *GoogleTTS) Close() error { return g.client.Close() }

// Synthesize issues one blocking SynthesizeSpeech call and returns the
// service's audio bytes unmodified.
func (g *GoogleTTS) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResponse, error) {
	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: req.Text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.languageCode,
			Name:         g.voiceName,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	return &SynthesisResponse{
		Audio:       resp.GetAudioContent(),
		ContentType: "audio/mpeg",
	}, nil
}
