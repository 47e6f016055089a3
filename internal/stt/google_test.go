package stt

import (
	"context"
	"errors"
	"os"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
)

type fakeRecognizer struct {
	resp    *speechpb.RecognizeResponse
	err     error
	lastReq *speechpb.RecognizeRequest
}

func (f *fakeRecognizer) Recognize(_ context.Context, req *speechpb.RecognizeRequest, _ ...gax.CallOption) (*speechpb.RecognizeResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeRecognizer) Close() error { return nil }

func result(alts ...string) *speechpb.SpeechRecognitionResult {
	r := &speechpb.SpeechRecognitionResult{}
	for _, a := range alts {
		r.Alternatives = append(r.Alternatives, &speechpb.SpeechRecognitionAlternative{Transcript: a})
	}
	return r
}

func TestTranscribeConcatenatesFirstAlternatives(t *testing.T) {
	fake := &fakeRecognizer{resp: &speechpb.RecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			result("hello ", "bonjour "),
			result("world", "monde"),
		},
	}}
	g := &GoogleSTT{client: fake, tempDir: t.TempDir()}

	resp, err := g.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("pcm")})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Transcript != "hello world" {
		t.Errorf("transcript = %q, want %q", resp.Transcript, "hello world")
	}
	if resp.Segments != 2 {
		t.Errorf("segments = %d, want 2", resp.Segments)
	}
}

func TestTranscribeAppliesDefaults(t *testing.T) {
	fake := &fakeRecognizer{resp: &speechpb.RecognizeResponse{}}
	g := &GoogleSTT{client: fake, tempDir: t.TempDir()}

	if _, err := g.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("pcm")}); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	cfg := fake.lastReq.GetConfig()
	if cfg.GetEncoding() != speechpb.RecognitionConfig_LINEAR16 {
		t.Errorf("encoding = %v, want LINEAR16", cfg.GetEncoding())
	}
	if cfg.GetSampleRateHertz() != 48000 {
		t.Errorf("sample rate = %d, want 48000", cfg.GetSampleRateHertz())
	}
	if cfg.GetLanguageCode() != "en-GB" {
		t.Errorf("language = %q, want en-GB", cfg.GetLanguageCode())
	}
}

func TestTranscribeEmptyResults(t *testing.T) {
	fake := &fakeRecognizer{resp: &speechpb.RecognizeResponse{}}
	g := &GoogleSTT{client: fake, tempDir: t.TempDir()}

	resp, err := g.Transcribe(context.Background(), TranscriptionRequest{Audio: nil})
	if err != nil {
		t.Fatalf("Transcribe with empty audio: %v", err)
	}
	if resp.Transcript != "" {
		t.Errorf("transcript = %q, want empty", resp.Transcript)
	}
}

func TestTranscribeRemovesTempFileOnSuccess(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRecognizer{resp: &speechpb.RecognizeResponse{}}
	g := &GoogleSTT{client: fake, tempDir: dir}

	if _, err := g.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("pcm")}); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	assertEmptyDir(t, dir)
}

func TestTranscribeRemovesTempFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRecognizer{err: errors.New("quota exceeded")}
	g := &GoogleSTT{client: fake, tempDir: dir}

	if _, err := g.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("pcm")}); err == nil {
		t.Fatal("expected error from failing recognizer")
	}

	assertEmptyDir(t, dir)
}

func TestTranscribeRejectsUnknownEncoding(t *testing.T) {
	g := &GoogleSTT{client: &fakeRecognizer{}, tempDir: t.TempDir()}
	_, err := g.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("pcm"), Encoding: "ADPCM"})
	if err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir not empty after call: %d files left", len(entries))
	}
}
