package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/voicelab/voiceprobe/internal/audit"
	"github.com/voicelab/voiceprobe/internal/credentials"
	"github.com/voicelab/voiceprobe/internal/session"
	"github.com/voicelab/voiceprobe/internal/stt"
	"github.com/voicelab/voiceprobe/internal/tts"
)

// Uploaded clips are short in-browser recordings; cap the body well above
// that so a misdirected upload cannot exhaust memory.
const maxAudioBytes = 32 << 20

// STTFactory builds a transcription provider authenticated as the given
// credential. One provider per call; vendor clients are not shared across
// sessions.
type STTFactory func(ctx context.Context, cred *credentials.Credential) (stt.Provider, error)

// TTSFactory builds a synthesis provider authenticated as the given
// credential.
type TTSFactory func(ctx context.Context, cred *credentials.Credential) (tts.Provider, error)

type SpeechHandler struct {
	sessions   session.Store
	usage      *audit.Service
	newSTT     STTFactory
	newTTS     TTSFactory
	recognizer stt.TranscriptionRequest // per-service recognition defaults
}

func NewSpeechHandler(sessions session.Store, usage *audit.Service, newSTT STTFactory, newTTS TTSFactory, recognitionDefaults stt.TranscriptionRequest) *SpeechHandler {
	return &SpeechHandler{
		sessions:   sessions,
		usage:      usage,
		newSTT:     newSTT,
		newTTS:     newTTS,
		recognizer: recognitionDefaults,
	}
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
	Segments   int    `json:"segments"`
}

// Transcribe accepts a recorded clip (multipart "audio" part or raw
// body), runs one blocking recognition call under the session credential,
// and stores the transcript as the session's last transcript.
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	sid, cred, ok := h.credential(w, r)
	if !ok {
		return
	}

	audio, err := readAudio(r)
	if err != nil {
		writeWarning(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(audio) == 0 {
		writeWarning(w, http.StatusBadRequest, "no audio data in request")
		return
	}

	provider, err := h.newSTT(r.Context(), cred)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	defer closeProvider(provider)

	req := h.recognizer
	req.Audio = audio

	start := time.Now()
	resp, err := provider.Transcribe(r.Context(), req)
	h.logCall(r.Context(), audit.CallRecord{
		SessionID:    sid,
		Operation:    "transcribe",
		Provider:     provider.Name(),
		PayloadBytes: len(audio),
		LatencyMs:    time.Since(start).Milliseconds(),
		Success:      err == nil,
		ErrorText:    errText(err),
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	if err := h.sessions.SaveTranscript(r.Context(), sid, resp.Transcript); err != nil {
		slog.Warn("failed to store transcript", "session", sid, "error", err)
	}

	writeJSON(w, http.StatusOK, transcribeResponse{
		Transcript: resp.Transcript,
		Segments:   resp.Segments,
	})
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

// Synthesize converts text to speech under the session credential and
// responds with the raw MP3 bytes. Empty text falls back to the session's
// last transcript.
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	sid, cred, ok := h.credential(w, r)
	if !ok {
		return
	}

	var req synthesizeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeWarning(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if req.Text == "" {
		last, err := h.sessions.Transcript(r.Context(), sid)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				writeWarning(w, http.StatusBadRequest, "no text given and no previous transcript to fall back to")
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		req.Text = last
	}

	provider, err := h.newTTS(r.Context(), cred)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	defer closeProvider(provider)

	start := time.Now()
	resp, err := provider.Synthesize(r.Context(), tts.SynthesisRequest{Text: req.Text})
	h.logCall(r.Context(), audit.CallRecord{
		SessionID:    sid,
		Operation:    "synthesize",
		Provider:     provider.Name(),
		PayloadBytes: len(req.Text),
		ResultBytes:  respLen(resp),
		LatencyMs:    time.Since(start).Milliseconds(),
		Success:      err == nil,
		ErrorText:    errText(err),
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Audio)))
	w.WriteHeader(http.StatusOK)
	w.Write(resp.Audio)
}

// LastTranscript returns the session's most recent transcript, used to
// prefill the synthesis input.
func (h *SpeechHandler) LastTranscript(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeWarning(w, http.StatusBadRequest, "missing "+SessionHeader+" header")
		return
	}

	transcript, err := h.sessions.Transcript(r.Context(), sid)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeWarning(w, http.StatusNotFound, "no transcript recorded for this session")
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"transcript": transcript})
}

func (h *SpeechHandler) credential(w http.ResponseWriter, r *http.Request) (string, *credentials.Credential, bool) {
	sid := sessionID(r)
	if sid == "" {
		writeWarning(w, http.StatusBadRequest, "missing "+SessionHeader+" header; set up credentials first")
		return "", nil, false
	}

	cred, err := h.sessions.Credential(r.Context(), sid)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeWarning(w, http.StatusBadRequest, "no credentials set up for this session")
			return "", nil, false
		}
		writeError(w, http.StatusInternalServerError, err)
		return "", nil, false
	}
	return sid, cred, true
}

func (h *SpeechHandler) logCall(ctx context.Context, rec audit.CallRecord) {
	if err := h.usage.LogCall(ctx, rec); err != nil {
		slog.Warn("failed to record usage", "operation", rec.Operation, "error", err)
	}
}

func readAudio(r *http.Request) ([]byte, error) {
	// Cap the whole body, multipart or not, so an oversized upload fails
	// here instead of exhausting memory.
	r.Body = http.MaxBytesReader(nil, r.Body, maxAudioBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
			return nil, errors.New("invalid or oversized multipart body")
		}
		f, _, err := r.FormFile("audio")
		if err != nil {
			return nil, errors.New("multipart body missing audio part")
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	audio, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errors.New("audio payload too large")
		}
		return nil, errors.New("failed to read request body")
	}
	return audio, nil
}

func closeProvider(p interface{}) {
	if c, ok := p.(io.Closer); ok {
		c.Close()
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func respLen(resp *tts.SynthesisResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Audio)
}
