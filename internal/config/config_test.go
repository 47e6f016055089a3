package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
	if cfg.STT.Encoding != "LINEAR16" || cfg.STT.SampleRateHertz != 48000 || cfg.STT.LanguageCode != "en-GB" {
		t.Errorf("unexpected STT defaults: %+v", cfg.STT)
	}
	if cfg.TTS.VoiceName != "en-GB-Neural2-B" {
		t.Errorf("voice = %q", cfg.TTS.VoiceName)
	}
	if cfg.Credentials.DefaultFile != "credentials.json" {
		t.Errorf("default credentials file = %q", cfg.Credentials.DefaultFile)
	}
	if cfg.RateLimit.RPS != 10 || cfg.RateLimit.Burst != 20 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STT_LANGUAGE_CODE", "en-US")
	t.Setenv("SESSION_TTL_MINUTES", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.STT.LanguageCode != "en-US" {
		t.Errorf("language = %q", cfg.STT.LanguageCode)
	}
	if cfg.Session.TTL.Minutes() != 60 {
		t.Errorf("ttl = %v", cfg.Session.TTL)
	}
}

func TestLoadInvalidInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid SERVER_PORT")
	}
}
