package audio

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"phonicsquest/internal/models"
)

// TTSService speaks prompts and target words for quests. It is a thin wrapper
// over the free Google Translate endpoint with a file cache; a failure here is
// never fatal because the client falls back to platform speech synthesis.
type TTSService struct {
	audioDir string
}

const ttsRequestTimeout = 10 * time.Second

// NewTTSService creates a new TTS service writing MP3s into audioDir.
func NewTTSService(audioDir string) *TTSService {
	return &TTSService{
		audioDir: audioDir,
	}
}

// SpeakPrompt converts a prompt to speech at the given rate and returns the
// cached filename (not full path). The endpoint only distinguishes normal and
// slow speech, so rates at or below the scaler's reduced bands map to slow.
func (s *TTSService) SpeakPrompt(text string, rate float64) (string, error) {
	slow := rate > 0 && rate < 0.9

	filename := fmt.Sprintf("prompt_%s_%s.mp3", hashText(text), speedSuffix(slow))
	path := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := s.fetchGoogleTTS(text, slow, path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	return filename, nil
}

// SpeakWord generates audio for a single target word at normal speed.
func (s *TTSService) SpeakWord(word string) (string, error) {
	return s.SpeakPrompt(word, 1.0)
}

// fetchGoogleTTS uses Google Translate's text-to-speech endpoint.
// Free, no API key needed.
func (s *TTSService) fetchGoogleTTS(text string, slow bool, outputPath string) error {
	baseURL := "https://translate.google.com/translate_tts"

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))
	if slow {
		params.Set("ttsspeed", "0.24")
	}

	fullURL := baseURL + "?" + params.Encode()

	ctx, cancel := context.WithTimeout(context.Background(), ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// User agent required by Google.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	client := &http.Client{Timeout: ttsRequestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return nil
}

// BatchGenerateAudio pre-generates audio for a quest's prompts so play is not
// blocked on the network. Failures skip the prompt; the client synthesizes it
// locally instead.
func (s *TTSService) BatchGenerateAudio(tasks []models.Task, rate float64) map[string]string {
	results := make(map[string]string)

	for _, task := range tasks {
		if filename, err := s.SpeakPrompt(task.Prompt, rate); err == nil {
			results[task.Prompt] = filename
		}
		if task.TargetWord == "" {
			continue
		}
		if filename, err := s.SpeakWord(task.TargetWord); err == nil {
			results[task.TargetWord] = filename
		}
	}

	return results
}

// DeleteAudioFile removes a cached audio file.
func (s *TTSService) DeleteAudioFile(filename string) error {
	path := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Already deleted
	}

	return os.Remove(path)
}

// GetAllAudioFiles returns all cached MP3 files.
func (s *TTSService) GetAllAudioFiles() ([]string, error) {
	files, err := os.ReadDir(s.audioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}

	var audioFiles []string
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".mp3" {
			audioFiles = append(audioFiles, file.Name())
		}
	}

	return audioFiles, nil
}

// CleanupStaleAudio removes cached audio files older than maxAge. Prompts
// churn as quests change, so the cache is pruned rather than left unbounded.
func (s *TTSService) CleanupStaleAudio(maxAge time.Duration) (int, error) {
	files, err := s.GetAllAudioFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range files {
		info, err := os.Stat(filepath.Join(s.audioDir, name))
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) > maxAge {
			if err := s.DeleteAudioFile(name); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func hashText(text string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(text))))
	return hex.EncodeToString(sum[:8])
}

func speedSuffix(slow bool) string {
	if slow {
		return "slow"
	}
	return "normal"
}
