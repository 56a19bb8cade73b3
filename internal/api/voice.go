package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Veraticus/upi-triage/internal/model"
)

// Language defaults used by the voice endpoints.
const (
	DefaultSpeechLanguage = "en"
	DefaultVoiceLanguage  = "en-US"
)

// AudioInput is a recording to upload.
type AudioInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Language    string
}

// Transcription is the result of speech-to-text.
type Transcription struct {
	Status        string  `json:"status"`
	Transcript    string  `json:"transcript"`
	LanguageCode  string  `json:"language_code"`
	Message       string  `json:"message"`
	Confidence    float64 `json:"confidence"`
	AudioDuration float64 `json:"audio_duration"`
}

// VoiceDiagnosis is the result of the voice-to-voice diagnosis pipeline.
type VoiceDiagnosis struct {
	Status           string          `json:"status"`
	Transcript       string          `json:"transcript"`
	VoiceResponseURL string          `json:"voice_response_url"`
	Message          string          `json:"message"`
	Diagnosis        model.Diagnosis `json:"diagnosis"`
	Confidence       float64         `json:"confidence"`
}

// Speech is the result of text-to-speech.
type Speech struct {
	Status   string `json:"status"`
	AudioURL string `json:"audio_url"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// SpeechLanguage is a language accepted for transcription.
type SpeechLanguage struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Display string `json:"display"`
}

// VoiceLanguage is a language available for synthesis.
type VoiceLanguage struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Voices []string `json:"voices"`
}

// SupportedLanguages lists the voice languages.
type SupportedLanguages struct {
	SpeechToText []SpeechLanguage `json:"speech_to_text"`
	TextToSpeech []VoiceLanguage  `json:"text_to_speech"`
}

// UploadAudio transcribes a recording.
func (c *Client) UploadAudio(ctx context.Context, audio AudioInput) (Transcription, error) {
	var out Transcription
	err := c.postMultipart(ctx, "voice_upload", "/voice/upload-audio", audio, &out)
	return out, err
}

// VoiceDiagnose transcribes a spoken complaint and diagnoses it.
func (c *Client) VoiceDiagnose(ctx context.Context, audio AudioInput) (VoiceDiagnosis, error) {
	var out VoiceDiagnosis
	err := c.postMultipart(ctx, "voice_diagnose", "/voice/diagnose", audio, &out)
	return out, err
}

// TextToSpeech synthesizes text. An empty voice lets the backend choose.
func (c *Client) TextToSpeech(ctx context.Context, text, language, voice string) (Speech, error) {
	if strings.TrimSpace(text) == "" {
		return Speech{}, unexpectedError(fmt.Errorf("text cannot be empty"))
	}
	if language == "" {
		language = DefaultVoiceLanguage
	}
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", language)
	if voice != "" {
		form.Set("voice_name", voice)
	}

	var out Speech
	err := c.do(ctx, request{
		endpoint:    "voice_tts",
		method:      http.MethodPost,
		path:        "/voice/text-to-speech",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &out)
	return out, err
}

// SupportedLanguages lists the voice languages.
func (c *Client) SupportedLanguages(ctx context.Context) (SupportedLanguages, error) {
	var out SupportedLanguages
	err := c.getJSON(ctx, "voice_languages", "/voice/supported-languages", nil, &out)
	return out, err
}

func (c *Client) postMultipart(ctx context.Context, endpoint, path string, audio AudioInput, out any) error {
	if audio.Reader == nil {
		return unexpectedError(fmt.Errorf("no audio provided"))
	}
	language := audio.Language
	if language == "" {
		language = DefaultSpeechLanguage
	}
	filename := audio.Filename
	if filename == "" {
		filename = "recording.wav"
	}
	contentType := audio.ContentType
	if contentType == "" {
		contentType = audioContentType(filename)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio_file"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return unexpectedError(fmt.Errorf("failed to create audio part: %w", err))
	}
	if _, err := io.Copy(part, audio.Reader); err != nil {
		return unexpectedError(fmt.Errorf("failed to read audio: %w", err))
	}
	if err := writer.WriteField("language", language); err != nil {
		return unexpectedError(fmt.Errorf("failed to write language field: %w", err))
	}
	if err := writer.Close(); err != nil {
		return unexpectedError(fmt.Errorf("failed to finish multipart body: %w", err))
	}

	return c.do(ctx, request{
		endpoint:    endpoint,
		method:      http.MethodPost,
		path:        path,
		body:        &buf,
		contentType: writer.FormDataContentType(),
	}, out)
}

func audioContentType(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); strings.HasPrefix(ct, "audio/") {
		return ct
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".webm":
		return "audio/webm"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	default:
		return "audio/wav"
	}
}
