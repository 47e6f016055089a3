package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/voicelab/voiceprobe/internal/api/handlers"
	"github.com/voicelab/voiceprobe/internal/api/middleware"
	"github.com/voicelab/voiceprobe/internal/audit"
	"github.com/voicelab/voiceprobe/internal/config"
	"github.com/voicelab/voiceprobe/internal/credentials"
	"github.com/voicelab/voiceprobe/internal/session"
	"github.com/voicelab/voiceprobe/internal/stt"
	"github.com/voicelab/voiceprobe/internal/tts"
)

type Router struct {
	mux      *chi.Mux
	db       *pgxpool.Pool
	redis    *redis.Client
	cfg      *config.Config
	sessions session.Store
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, sessions session.Store) *Router {
	return &Router{
		mux:      chi.NewRouter(),
		db:       db,
		redis:    rdb,
		cfg:      cfg,
		sessions: sessions,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(float64(rt.cfg.RateLimit.RPS), rt.cfg.RateLimit.Burst)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	resolver := credentials.NewResolver(rt.cfg.Credentials.EnvJSON, rt.cfg.Credentials.DefaultFile)
	usage := audit.NewService(rt.db)

	newSTT := func(ctx context.Context, cred *credentials.Credential) (stt.Provider, error) {
		return stt.NewGoogleSTT(ctx, cred.ClientOption())
	}
	newTTS := func(ctx context.Context, cred *credentials.Credential) (tts.Provider, error) {
		return tts.NewGoogleTTS(ctx, cred.ClientOption(), rt.cfg.TTS.LanguageCode, rt.cfg.TTS.VoiceName)
	}

	credH := handlers.NewCredentialsHandler(resolver, rt.sessions)
	speechH := handlers.NewSpeechHandler(rt.sessions, usage, newSTT, newTTS, stt.TranscriptionRequest{
		Encoding:        rt.cfg.STT.Encoding,
		SampleRateHertz: rt.cfg.STT.SampleRateHertz,
		LanguageCode:    rt.cfg.STT.LanguageCode,
	})
	usageH := handlers.NewUsageHandler(usage)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/credentials", func(r chi.Router) {
			r.Post("/file", credH.LoadFromFile)
			r.Post("/manual", credH.SaveManual)
			r.Get("/", credH.Status)
		})

		r.Post("/transcribe", speechH.Transcribe)
		r.Get("/transcript", speechH.LastTranscript)
		r.Post("/synthesize", speechH.Synthesize)

		r.Get("/usage", usageH.Summary)
	})

	return r
}
