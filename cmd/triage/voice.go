package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/upi-triage/internal/api"
	"github.com/Veraticus/upi-triage/internal/cli"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/spf13/cobra"
)

func voiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Transcribe complaints and synthesize replies through the backend",
	}
	cmd.AddCommand(voiceUploadCmd())
	cmd.AddCommand(voiceDiagnoseCmd())
	cmd.AddCommand(voiceSpeakCmd())
	cmd.AddCommand(voiceLanguagesCmd())
	return cmd
}

// openAudio opens path for upload. The caller closes the returned file.
func openAudio(path, language string) (api.AudioInput, *os.File, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return api.AudioInput{}, nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	return api.AudioInput{
		Reader:   f,
		Filename: filepath.Base(path),
		Language: language,
	}, f, nil
}

func voiceUploadCmd() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Transcribe an audio recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := requireSession(a.session(cmd.Context()), permission.ViewTransactions); err != nil {
				return err
			}

			audio, f, err := openAudio(args[0], language)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			result, err := a.client.UploadAudio(cmd.Context(), audio)
			if err != nil {
				return backendError("transcription failed", err)
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return a.printJSON(result)
			}

			a.println(cli.RenderBox("Transcript", orDash(result.Transcript)))
			a.println(cli.RenderKeyValues([][2]string{
				{"Language", orDash(result.LanguageCode)},
				{"Confidence", fmt.Sprintf("%.0f%%", result.Confidence*100)},
				{"Duration", fmt.Sprintf("%.1fs", result.AudioDuration)},
			}))
			return nil
		},
	}
	cmd.Flags().StringVar(&language, "language", api.DefaultSpeechLanguage, "spoken language code")
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func voiceDiagnoseCmd() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "diagnose <file>",
		Short: "Diagnose a spoken complaint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := requireSession(a.session(cmd.Context()), permission.DiagnoseTransactions); err != nil {
				return err
			}

			audio, f, err := openAudio(args[0], language)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			result, err := a.client.VoiceDiagnose(cmd.Context(), audio)
			if err != nil {
				return backendError("voice diagnosis failed", err)
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return a.printJSON(result)
			}

			a.println(cli.RenderBox("Transcript", orDash(result.Transcript)))
			a.println(renderDiagnosis(result.Diagnosis))
			if result.VoiceResponseURL != "" {
				a.println(cli.FormatInfo("Spoken reply: " + result.VoiceResponseURL))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&language, "language", api.DefaultSpeechLanguage, "spoken language code")
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func voiceSpeakCmd() *cobra.Command {
	var language, voice string

	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Synthesize speech from text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			speech, err := a.client.TextToSpeech(cmd.Context(), strings.Join(args, " "), language, voice)
			if err != nil {
				return backendError("speech synthesis failed", err)
			}
			a.println(cli.FormatSuccess("Audio ready: " + orDash(speech.AudioURL)))
			return nil
		},
	}
	cmd.Flags().StringVar(&language, "language", api.DefaultVoiceLanguage, "voice language code")
	cmd.Flags().StringVar(&voice, "voice", "", "voice name")
	return cmd
}

func voiceLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported voice languages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			langs, err := a.client.SupportedLanguages(cmd.Context())
			if err != nil {
				return backendError("failed to list languages", err)
			}

			a.println(cli.FormatTitle("Speech to text"))
			for _, l := range langs.SpeechToText {
				name := l.Display
				if name == "" {
					name = l.Name
				}
				a.printf("  %-8s %s\n", l.Code, name)
			}
			a.println()
			a.println(cli.FormatTitle("Text to speech"))
			for _, l := range langs.TextToSpeech {
				a.printf("  %-8s %s", l.Code, l.Name)
				if len(l.Voices) > 0 {
					a.printf(" (%s)", strings.Join(l.Voices, ", "))
				}
				a.println()
			}
			return nil
		},
	}
}
