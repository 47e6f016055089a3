package stt

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// recognizeClient is the slice of *speech.Client this adapter needs; tests
// substitute a fake.
type recognizeClient interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// GoogleSTT performs one synchronous recognition call per request against
// the Google Cloud Speech-to-Text API.
type GoogleSTT struct {
	client  recognizeClient
	tempDir string
}

// NewGoogleSTT constructs an adapter authenticated with the given client
// option. Callers own the adapter's lifetime and must Close it.
func NewGoogleSTT(ctx context.Context, opt option.ClientOption) (*GoogleSTT, error) {
	client, err := speech.NewClient(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &GoogleSTT{client: client, tempDir: os.TempDir()}, nil
}

func (g *GoogleSTT) Name() string { return "google-speech" }

func (g *GoogleSTT) Close() error { return g.client.Close() }

// Transcribe stages the audio in a scoped temporary file, issues one
// blocking Recognize call, and concatenates the first alternative of every
// result segment in service order. The temporary file is removed whether
// or not the call succeeds.
func (g *GoogleSTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	if req.Encoding == "" {
		req.Encoding = DefaultEncoding
	}
	if req.SampleRateHertz == 0 {
		req.SampleRateHertz = DefaultSampleRateHertz
	}
	if req.LanguageCode == "" {
		req.LanguageCode = DefaultLanguageCode
	}

	encoding, err := parseEncoding(req.Encoding)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(g.tempDir, "voiceprobe-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp audio file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(req.Audio); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp audio file: %w", err)
	}

	content, err := os.ReadFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("read temp audio file: %w", err)
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(req.SampleRateHertz),
			LanguageCode:    req.LanguageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: content},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		transcript.WriteString(alts[0].GetTranscript())
	}

	return &TranscriptionResponse{
		Transcript: transcript.String(),
		Segments:   len(resp.GetResults()),
	}, nil
}

func parseEncoding(name string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	v, ok := speechpb.RecognitionConfig_AudioEncoding_value[strings.ToUpper(name)]
	if !ok {
		return 0, fmt.Errorf("unsupported audio encoding %q", name)
	}
	return speechpb.RecognitionConfig_AudioEncoding(v), nil
}
