package audio

import (
	"context"
	"errors"
	"log"
	"sync"

	"vocabdrill/internal/study"
)

// Utterance is the phrase currently queued for playback. The browser plays
// URL once the file has been generated.
type Utterance struct {
	Seq  int64  `json:"seq"`
	Text string `json:"text"`
	Lang string `json:"lang"`
	URL  string `json:"url"`
}

// Voice is a per-session study.Speaker. Each Speak replaces the previous
// utterance and cancels its download.
type Voice struct {
	tts       *TTSService
	urlPrefix string

	mu      sync.Mutex
	current *Utterance
	seq     int64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewVoice creates a Voice backed by tts. A nil tts yields a Voice that
// reports study.ErrSpeechUnavailable.
func NewVoice(tts *TTSService, urlPrefix string) *Voice {
	return &Voice{tts: tts, urlPrefix: urlPrefix}
}

// Speak queues text for playback and starts generating its audio file
func (v *Voice) Speak(text, lang string) error {
	if v.tts == nil {
		return study.ErrSpeechUnavailable
	}
	if text == "" {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.cancelLocked()
	v.seq++
	v.current = &Utterance{
		Seq:  v.seq,
		Text: text,
		Lang: lang,
		URL:  v.urlPrefix + FileName(text, lang),
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		defer cancel()
		if _, err := v.tts.GenerateAudioFile(ctx, text, lang); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Warning: speech for %q (%s) failed: %v", text, lang, err)
		}
	}()
	return nil
}

// Cancel stops the current utterance
func (v *Voice) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cancelLocked()
	v.current = nil
}

func (v *Voice) cancelLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

// Current returns the queued utterance, or nil when nothing is playing
func (v *Voice) Current() *Utterance {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return nil
	}
	u := *v.current
	return &u
}

// Wait blocks until all background downloads have finished
func (v *Voice) Wait() {
	v.wg.Wait()
}
