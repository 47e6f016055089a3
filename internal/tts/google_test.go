package tts

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
)

type fakeSynthesizer struct {
	resp    *texttospeechpb.SynthesizeSpeechResponse
	err     error
	lastReq *texttospeechpb.SynthesizeSpeechRequest
}

func (f *fakeSynthesizer) SynthesizeSpeech(_ context.Context, req *texttospeechpb.SynthesizeSpeechRequest, _ ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeSynthesizer) Close() error { return nil }

func TestSynthesizeReturnsRawAudio(t *testing.T) {
	audio := []byte{0xFF, 0xFB, 0x90, 0x00, 0x01}
	fake := &fakeSynthesizer{resp: &texttospeechpb.SynthesizeSpeechResponse{AudioContent: audio}}
	g := &GoogleTTS{client: fake, languageCode: DefaultLanguageCode, voiceName: DefaultVoiceName}

	resp, err := g.Synthesize(context.Background(), SynthesisRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !bytes.Equal(resp.Audio, audio) {
		t.Error("audio bytes were modified")
	}
	if resp.ContentType != "audio/mpeg" {
		t.Errorf("content type = %q, want audio/mpeg", resp.ContentType)
	}
}

func TestSynthesizeVoiceConfiguration(t *testing.T) {
	fake := &fakeSynthesizer{resp: &texttospeechpb.SynthesizeSpeechResponse{}}
	g := &GoogleTTS{client: fake, languageCode: DefaultLanguageCode, voiceName: DefaultVoiceName}

	if _, err := g.Synthesize(context.Background(), SynthesisRequest{Text: "hello"}); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	voice := fake.lastReq.GetVoice()
	if voice.GetLanguageCode() != "en-GB" {
		t.Errorf("language = %q, want en-GB", voice.GetLanguageCode())
	}
	if voice.GetName() != "en-GB-Neural2-B" {
		t.Errorf("voice = %q, want en-GB-Neural2-B", voice.GetName())
	}
	if voice.GetSsmlGender() != texttospeechpb.SsmlVoiceGender_NEUTRAL {
		t.Errorf("gender = %v, want NEUTRAL", voice.GetSsmlGender())
	}
	if fake.lastReq.GetAudioConfig().GetAudioEncoding() != texttospeechpb.AudioEncoding_MP3 {
		t.Errorf("encoding = %v, want MP3", fake.lastReq.GetAudioConfig().GetAudioEncoding())
	}
	if fake.lastReq.GetInput().GetText() != "hello" {
		t.Errorf("input text = %q", fake.lastReq.GetInput().GetText())
	}
}

func TestSynthesizeError(t *testing.T) {
	fake := &fakeSynthesizer{err: errors.New("permission denied")}
	g := &GoogleTTS{client: fake, languageCode: DefaultLanguageCode, voiceName: DefaultVoiceName}

	if _, err := g.Synthesize(context.Background(), SynthesisRequest{Text: "hello"}); err == nil {
		t.Fatal("expected error from failing synthesizer")
	}
}
