package synthesis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentband/fluentband/internal/models"
)

// fakeSpeech returns a fixed audio payload for every request and records the
// last input.
type fakeSpeech struct {
	audio []byte
	err   error
	last  *polly.SynthesizeSpeechInput
}

func (f *fakeSpeech) SynthesizeSpeech(_ context.Context, params *polly.SynthesizeSpeechInput, _ ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	f.last = params
	if f.err != nil {
		return nil, f.err
	}
	return &polly.SynthesizeSpeechOutput{
		AudioStream: io.NopCloser(bytes.NewReader(f.audio)),
	}, nil
}

// fakeObjects stores uploads in a map keyed by object key.
type fakeObjects struct {
	putErr  error
	headErr error
	objects map[string][]byte
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[aws.ToString(params.Key)]; !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func plausibleAudio() []byte {
	return bytes.Repeat([]byte{0xFF}, minAudioBytes+100)
}

func baseRequest() Request {
	return Request{
		TaskID:     "task-1",
		OwnerID:    "user-9",
		WeekNumber: 2,
		ScriptText: "Good morning, and welcome to today's announcement about platform changes.",
		Accent:     models.AccentAustralian,
	}
}

func TestSynthesize(t *testing.T) {
	speech := &fakeSpeech{audio: plausibleAudio()}
	objects := newFakeObjects()
	s := New(speech, objects, "test-bucket", "eu-west-2")

	res := s.Synthesize(context.Background(), baseRequest())

	require.True(t, res.Success, "error: %s", res.ErrorMsg)
	assert.Equal(t, "https://test-bucket.s3.eu-west-2.amazonaws.com/audio/user-9/week-2/task-task-1-australian.mp3", res.AudioURL)
	assert.Equal(t, len(plausibleAudio()), res.AudioBytes)
	assert.Greater(t, res.DurationSec, 0)

	// Object landed under the deterministic key.
	assert.Contains(t, objects.objects, "audio/user-9/week-2/task-task-1-australian.mp3")

	// Synthesis parameters match the speech contract.
	require.NotNil(t, speech.last)
	assert.Equal(t, pollytypes.EngineNeural, speech.last.Engine)
	assert.Equal(t, pollytypes.OutputFormatMp3, speech.last.OutputFormat)
	assert.Equal(t, "22050", aws.ToString(speech.last.SampleRate))
	assert.Equal(t, pollytypes.VoiceId("Olivia"), speech.last.VoiceId)
}

func TestSynthesizeEmptyScript(t *testing.T) {
	speech := &fakeSpeech{audio: plausibleAudio()}
	s := New(speech, newFakeObjects(), "test-bucket", "eu-west-2")

	req := baseRequest()
	req.ScriptText = ""
	res := s.Synthesize(context.Background(), req)

	assert.False(t, res.Success)
	assert.Nil(t, speech.last, "empty script must never reach the speech service")
}

func TestSynthesizeUndersizedAudio(t *testing.T) {
	speech := &fakeSpeech{audio: []byte("tiny")}
	objects := newFakeObjects()
	s := New(speech, objects, "test-bucket", "eu-west-2")

	res := s.Synthesize(context.Background(), baseRequest())

	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMsg, ErrAudioTooSmall.Error())
	assert.Empty(t, objects.objects, "undersized audio must not be uploaded")
}

func TestSynthesizeSpeechError(t *testing.T) {
	speech := &fakeSpeech{err: errors.New("throttled")}
	s := New(speech, newFakeObjects(), "test-bucket", "eu-west-2")

	res := s.Synthesize(context.Background(), baseRequest())
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMsg, "throttled")
}

func TestSynthesizeUploadError(t *testing.T) {
	speech := &fakeSpeech{audio: plausibleAudio()}
	objects := newFakeObjects()
	objects.putErr = errors.New("access denied")
	s := New(speech, objects, "test-bucket", "eu-west-2")

	res := s.Synthesize(context.Background(), baseRequest())
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMsg, "access denied")
}

func TestVoiceFor(t *testing.T) {
	tests := []struct {
		accent models.Accent
		want   string
	}{
		{models.AccentBritish, "Amy"},
		{models.AccentAmerican, "Joanna"},
		{models.AccentCanadian, "Joanna"},
		{models.AccentAustralian, "Olivia"},
		{models.AccentNewZealand, "Aria"},
		{models.Accent("Martian"), DefaultVoice},
		{models.Accent(""), DefaultVoice},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, VoiceFor(tt.accent), "accent %q", tt.accent)
	}
}

func TestExists(t *testing.T) {
	objects := newFakeObjects()
	objects.objects["audio/u/week-1/task-t-british.mp3"] = plausibleAudio()
	s := New(&fakeSpeech{}, objects, "test-bucket", "eu-west-2")

	assert.True(t, s.Exists(context.Background(), "https://test-bucket.s3.eu-west-2.amazonaws.com/audio/u/week-1/task-t-british.mp3"))
	assert.False(t, s.Exists(context.Background(), "https://test-bucket.s3.eu-west-2.amazonaws.com/audio/u/week-1/missing.mp3"))
	assert.False(t, s.Exists(context.Background(), "https://other-bucket.s3.eu-west-2.amazonaws.com/audio/u/week-1/task-t-british.mp3"))
	assert.False(t, s.Exists(context.Background(), "::not a url::"))
}

func TestExistsAssumesPresentOnCheckFailure(t *testing.T) {
	// Anything other than a confirmed NotFound must not trigger
	// re-synthesis of audio that may well still be there.
	objects := newFakeObjects()
	objects.headErr = errors.New("api error AccessDenied")
	s := New(&fakeSpeech{}, objects, "test-bucket", "eu-west-2")

	assert.True(t, s.Exists(context.Background(), "https://test-bucket.s3.eu-west-2.amazonaws.com/audio/u/week-1/task-t-british.mp3"))
}

func TestKeyFromURL(t *testing.T) {
	s := New(&fakeSpeech{}, newFakeObjects(), "b", "us-east-1")

	key, err := s.KeyFromURL("https://b.s3.us-east-1.amazonaws.com/audio/u/week-3/task-x-amy.mp3")
	require.NoError(t, err)
	assert.Equal(t, "audio/u/week-3/task-x-amy.mp3", key)

	_, err = s.KeyFromURL("https://elsewhere.example.com/audio.mp3")
	assert.Error(t, err)
}

func TestEstimateDuration(t *testing.T) {
	assert.Equal(t, 0, EstimateDuration(""))
	assert.Equal(t, 1, EstimateDuration("one"))

	// 165 words at 165 wpm is one minute.
	script := strings.TrimSpace(strings.Repeat("word ", 165))
	assert.Equal(t, 60, EstimateDuration(script))
}
