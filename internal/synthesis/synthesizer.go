// Package synthesis turns listening scripts into hosted audio. Speech comes
// from Amazon Polly and the resulting MP3 is uploaded to S3 under a
// deterministic key, so re-running synthesis for the same task and accent
// overwrites rather than accumulates.
package synthesis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/fluentband/fluentband/internal/models"
)

// minAudioBytes guards against truncated or empty synthesis output. Anything
// below this is not a plausible MP3 for a listening task and fails hard.
const minAudioBytes = 2048

// wordsPerMinute is the speaking rate assumed when estimating duration.
const wordsPerMinute = 165

// ErrAudioTooSmall reports synthesis output below minAudioBytes.
var ErrAudioTooSmall = errors.New("synthesized audio below minimum size")

// speechClient is the subset of the Polly client the synthesizer uses.
type speechClient interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// objectClient is the subset of the S3 client the synthesizer uses.
type objectClient interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

var _ speechClient = (*polly.Client)(nil)
var _ objectClient = (*s3.Client)(nil)

// Request describes one synthesis job.
type Request struct {
	TaskID     string
	OwnerID    string
	WeekNumber int
	ScriptText string
	Accent     models.Accent
}

// Result reports the outcome of one synthesis job.
type Result struct {
	Success     bool
	ErrorMsg    string
	AudioURL    string
	AudioBytes  int
	DurationSec int
}

// Synthesizer converts script text to speech and stores the audio.
type Synthesizer struct {
	speech speechClient
	store  objectClient
	bucket string
	region string
}

// New creates a Synthesizer writing into the given bucket and region.
func New(speech speechClient, store objectClient, bucket, region string) *Synthesizer {
	return &Synthesizer{
		speech: speech,
		store:  store,
		bucket: bucket,
		region: region,
	}
}

// Synthesize produces speech for the script, uploads it, and verifies the
// upload before reporting success. The request's script text must be
// non-empty.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.ScriptText) == "" {
		return synthesisFailure("script text is required for audio synthesis")
	}

	voice := VoiceFor(req.Accent)

	out, err := s.speech.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Engine:       pollytypes.EngineNeural,
		OutputFormat: pollytypes.OutputFormatMp3,
		SampleRate:   aws.String("22050"),
		Text:         aws.String(req.ScriptText),
		VoiceId:      pollytypes.VoiceId(voice),
	})
	if err != nil {
		return synthesisFailure("speech synthesis failed: " + err.Error())
	}
	defer out.AudioStream.Close()

	audio, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return synthesisFailure("reading audio stream failed: " + err.Error())
	}

	if len(audio) < minAudioBytes {
		return synthesisFailure(fmt.Sprintf("%s: %d bytes", ErrAudioTooSmall.Error(), len(audio)))
	}

	key := ObjectKey(req.OwnerID, req.WeekNumber, req.TaskID, req.Accent)

	_, err = s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(audio),
		ContentType:  aws.String("audio/mpeg"),
		CacheControl: aws.String("public, max-age=86400"),
	})
	if err != nil {
		return synthesisFailure("audio upload failed: " + err.Error())
	}

	// Confirm the object actually landed before handing the URL out.
	_, err = s.store.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return synthesisFailure("uploaded audio not found: " + err.Error())
	}

	slog.Info("synthesized task audio",
		"task", req.TaskID,
		"voice", voice,
		"bytes", len(audio),
		"key", key)

	return Result{
		Success:     true,
		AudioURL:    s.PublicURL(key),
		AudioBytes:  len(audio),
		DurationSec: EstimateDuration(req.ScriptText),
	}
}

// Exists reports whether the object behind a previously issued audio URL is
// still present. URLs from other buckets are treated as absent. Only a
// confirmed NotFound counts as absent; on access or transport errors the
// object is assumed present so existing audio is not re-synthesized over a
// blip.
func (s *Synthesizer) Exists(ctx context.Context, audioURL string) bool {
	key, err := s.KeyFromURL(audioURL)
	if err != nil {
		return false
	}
	_, err = s.store.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true
	}
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return false
	}
	slog.Warn("audio existence check failed, assuming present",
		"key", key,
		"error", err)
	return true
}

// ObjectKey builds the deterministic storage key for one task's audio.
func ObjectKey(ownerID string, weekNumber int, taskID string, accent models.Accent) string {
	return fmt.Sprintf("audio/%s/week-%d/task-%s-%s.mp3",
		ownerID, weekNumber, taskID, strings.ToLower(string(accent)))
}

// PublicURL returns the virtual-hosted URL for a key in this bucket.
func (s *Synthesizer) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// KeyFromURL extracts the object key from a URL previously returned by
// PublicURL. It rejects URLs that point at a different bucket.
func (s *Synthesizer) KeyFromURL(audioURL string) (string, error) {
	parsed, err := url.Parse(audioURL)
	if err != nil {
		return "", fmt.Errorf("parsing audio URL: %w", err)
	}
	wantHost := fmt.Sprintf("%s.s3.%s.amazonaws.com", s.bucket, s.region)
	if parsed.Host != wantHost {
		return "", fmt.Errorf("audio URL host %q does not match bucket %q", parsed.Host, s.bucket)
	}
	key := strings.TrimPrefix(parsed.Path, "/")
	if key == "" {
		return "", errors.New("audio URL has no object key")
	}
	return key, nil
}

// EstimateDuration approximates playback length from the word count at a
// typical neural-voice speaking rate.
func EstimateDuration(scriptText string) int {
	words := len(strings.Fields(scriptText))
	if words == 0 {
		return 0
	}
	seconds := float64(words) / wordsPerMinute * float64(time.Minute/time.Second)
	if seconds < 1 {
		return 1
	}
	return int(seconds + 0.5)
}

func synthesisFailure(reason string) Result {
	return Result{Success: false, ErrorMsg: reason}
}
