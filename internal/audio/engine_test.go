package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	playerrors "github.com/jscyril/mp3miner/pkg/errors"
	"github.com/spf13/afero"
)

// writeWAV writes a silent mono 16-bit PCM file of the given length
func writeWAV(t *testing.T, fs afero.Fs, path string, rate int, length time.Duration) {
	t.Helper()

	frames := int(int64(rate) * int64(length) / int64(time.Second))
	dataLen := frames * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))

	if err := afero.WriteFile(fs, path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNewAudioEngine(t *testing.T) {
	engine := NewAudioEngine(afero.NewMemMapFs())

	if engine == nil {
		t.Fatal("NewAudioEngine returned nil")
	}
	if engine.IsBusy() {
		t.Error("New engine should not be busy")
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "/tmp/track_0.wav", 8000, time.Second)
	afero.WriteFile(fs, "/tmp/notes.txt", []byte("hi"), 0644)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"existing wav", "/tmp/track_0.wav", false},
		{"missing file", "/tmp/track_9.mp3", true},
		{"unsupported format", "/tmp/notes.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewAudioEngine(fs)
			err := engine.Load(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("Load(%s) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !playerrors.IsEngine(err) {
				t.Errorf("Expected EngineError, got %T", err)
			}
		})
	}
}

func TestPlay_NothingLoaded(t *testing.T) {
	engine := NewAudioEngine(afero.NewMemMapFs())

	err := engine.Play(0)
	if !errors.Is(err, playerrors.ErrNothingLoaded) {
		t.Errorf("Expected ErrNothingLoaded, got %v", err)
	}
}

func TestPauseUnpause_NoStream(t *testing.T) {
	engine := NewAudioEngine(afero.NewMemMapFs())

	if err := engine.Pause(); err != nil {
		t.Errorf("Pause without stream should be a no-op, got %v", err)
	}
	if err := engine.Unpause(); err == nil {
		t.Error("Unpause without stream should fail")
	}
}

func TestClose(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "/tmp/a.wav", 8000, time.Second)

	engine := NewAudioEngine(fs)
	if err := engine.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := engine.Load("/tmp/a.wav"); !errors.Is(err, playerrors.ErrEngineClosed) {
		t.Errorf("Expected ErrEngineClosed after Close, got %v", err)
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/music/song.mp3", true},
		{"/music/song.MP3", true},
		{"/music/song.wav", true},
		{"/music/song.flac", true},
		{"/music/song.ogg", false},
		{"/music/song.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := IsSupported(tt.path)
			if result != tt.expected {
				t.Errorf("IsSupported(%s) = %v, want %v", tt.path, result, tt.expected)
			}
		})
	}
}

func TestProbeDuration(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "/tmp/one.wav", 8000, 2*time.Second)
	afero.WriteFile(fs, "/tmp/garbage.mp3", []byte("not really audio"), 0644)

	d, err := ProbeDuration(fs, "/tmp/one.wav")
	if err != nil {
		t.Fatalf("ProbeDuration returned error: %v", err)
	}
	if d != 2*time.Second {
		t.Errorf("Expected 2s, got %v", d)
	}

	for _, path := range []string{"/tmp/garbage.mp3", "/tmp/missing.mp3", "/tmp/one.ogg"} {
		t.Run(path, func(t *testing.T) {
			_, err := ProbeDuration(fs, path)
			var pe *playerrors.DecodeProbeError
			if !errors.As(err, &pe) {
				t.Errorf("Expected DecodeProbeError, got %v", err)
			}
		})
	}
}

func TestReadTags_NoTags(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/tmp/plain.mp3", []byte("no tags here"), 0644)

	if _, err := ReadTags(fs, "/tmp/plain.mp3"); err == nil {
		t.Error("Expected error for file without tags")
	}
	if _, err := ReadTags(fs, "/tmp/missing.mp3"); err == nil {
		t.Error("Expected error for missing file")
	}
}
