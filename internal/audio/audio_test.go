package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"vocabdrill/internal/models"
	"vocabdrill/internal/study"
)

func newTestTTS(t *testing.T, handler http.HandlerFunc) *TTSService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tts := NewTTSService(t.TempDir())
	tts.baseURL = srv.URL
	return tts
}

func TestGenerateAudioFile(t *testing.T) {
	var calls int32
	tts := newTestTTS(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if got := r.URL.Query().Get("tl"); got != "ko" {
			t.Errorf("tl = %q, want ko", got)
		}
		w.Write([]byte("mp3"))
	})

	name, err := tts.GenerateAudioFile(context.Background(), "사과", study.LangKorean)
	if err != nil {
		t.Fatalf("GenerateAudioFile() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(tts.AudioDir(), name))
	if err != nil || string(data) != "mp3" {
		t.Fatalf("cached file = %q, %v", data, err)
	}

	// second call is served from the cache
	if _, err := tts.GenerateAudioFile(context.Background(), "사과", study.LangKorean); err != nil {
		t.Fatalf("GenerateAudioFile() error = %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("upstream calls = %d, want 1", n)
	}
}

func TestGenerateAudioFileUpstreamError(t *testing.T) {
	tts := newTestTTS(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := tts.GenerateAudioFile(context.Background(), "apple", study.LangEnglish); err == nil {
		t.Fatal("expected an error for a 429 response")
	}
	entries, _ := os.ReadDir(tts.AudioDir())
	if len(entries) != 0 {
		t.Errorf("audio dir has %d entries after failure, want 0", len(entries))
	}
}

func TestFileNameDependsOnLanguage(t *testing.T) {
	en := FileName("hello", study.LangEnglish)
	ko := FileName("hello", study.LangKorean)
	if en == ko {
		t.Error("same text in different languages must not share a file")
	}
	if !strings.HasSuffix(en, ".mp3") {
		t.Errorf("FileName() = %q, want .mp3 suffix", en)
	}
}

func TestVoice(t *testing.T) {
	tts := newTestTTS(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3"))
	})
	v := NewVoice(tts, "/audio/")

	if err := v.Speak("apple", study.LangEnglish); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if err := v.Speak("사과", study.LangKorean); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	v.Wait()

	u := v.Current()
	if u == nil {
		t.Fatal("Current() = nil after Speak")
	}
	if u.Text != "사과" || u.Seq != 2 || u.URL != "/audio/"+FileName("사과", study.LangKorean) {
		t.Errorf("Current() = %+v", u)
	}

	v.Cancel()
	if v.Current() != nil {
		t.Error("Current() should be nil after Cancel")
	}
}

func TestVoiceDisabled(t *testing.T) {
	v := NewVoice(nil, "/audio/")
	if err := v.Speak("apple", study.LangEnglish); err != study.ErrSpeechUnavailable {
		t.Errorf("Speak() error = %v, want ErrSpeechUnavailable", err)
	}
	v.Cancel()
}

func TestVoiceDrivesSessionNotice(t *testing.T) {
	s := study.NewSession(study.Options{Style: study.Typed, Speaker: NewVoice(nil, "/audio/")})
	words := []models.Word{{ID: "1", English: "apple", Korean: "사과"}}
	if err := s.Initialize(words, study.EnglishToKorean, study.BatchAll); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := s.Pronounce(); err != nil {
		t.Fatalf("Pronounce() error = %v", err)
	}
	if got := s.TakeNotice(); got != study.SpeechNotice {
		t.Errorf("TakeNotice() = %q, want speech notice", got)
	}
}
