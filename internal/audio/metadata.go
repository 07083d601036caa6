package audio

import (
	"fmt"

	"github.com/dhowden/tag"
	"github.com/spf13/afero"
)

// Tags holds the descriptive metadata embedded in an audio file
type Tags struct {
	Title  string
	Artist string
	Album  string
}

// ReadTags extracts ID3/Vorbis/MP4 tags from the file at path
func ReadTags(fs afero.Fs, path string) (Tags, error) {
	file, err := fs.Open(path)
	if err != nil {
		return Tags{}, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return Tags{}, fmt.Errorf("read metadata: %w", err)
	}

	return Tags{
		Title:  metadata.Title(),
		Artist: metadata.Artist(),
		Album:  metadata.Album(),
	}, nil
}
