package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"trackd/internal/manager"
	"trackd/pkg/types"
)

// Source yields batches of frames. Next returns io.EOF after the last batch.
type Source interface {
	BatchSize() int
	Kind() manager.SourceKind
	Next(ctx context.Context) ([]types.Frame, error)
}

// MemorySource replays batches held in memory.
type MemorySource struct {
	Batches [][]types.Frame
	Size    int
	Source  manager.SourceKind
	pos     int
}

func (s *MemorySource) BatchSize() int {
	if s.Size > 0 {
		return s.Size
	}
	if len(s.Batches) > 0 {
		return len(s.Batches[0])
	}
	return 1
}

func (s *MemorySource) Kind() manager.SourceKind { return s.Source }

func (s *MemorySource) Next(context.Context) ([]types.Frame, error) {
	if s.pos >= len(s.Batches) {
		return nil, io.EOF
	}
	b := s.Batches[s.pos]
	s.pos++
	return b, nil
}

// FileSource reads one batch per line from a JSON-lines file. Each line is
// an object {"frames": [...]}; frames naming an image have it decoded,
// relative paths resolving against the file's directory.
type FileSource struct {
	f    *os.File
	sc   *bufio.Scanner
	dir  string
	size int
	kind manager.SourceKind
	line int
}

// OpenFileSource opens path for reading batches of batchSize frames.
func OpenFileSource(path string, batchSize int, kind manager.SourceKind) (*FileSource, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: batch size must be at least 1, got %d", manager.ErrInvalidTopology, batchSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	return &FileSource{f: f, sc: sc, dir: filepath.Dir(path), size: batchSize, kind: kind}, nil
}

func (s *FileSource) BatchSize() int           { return s.size }
func (s *FileSource) Kind() manager.SourceKind { return s.kind }
func (s *FileSource) Close() error             { return s.f.Close() }

func (s *FileSource) Next(ctx context.Context) ([]types.Frame, error) {
	for s.sc.Scan() {
		s.line++
		b := s.sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var req types.TrackRequest
		if err := json.Unmarshal(b, &req); err != nil {
			return nil, fmt.Errorf("line %d: %w", s.line, err)
		}
		for i := range req.Frames {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			req.Frames[i].Slot = i
			if req.Frames[i].ImagePath == "" {
				continue
			}
			p := req.Frames[i].ImagePath
			if !filepath.IsAbs(p) {
				p = filepath.Join(s.dir, p)
			}
			img, err := imaging.Open(p)
			if err != nil {
				return nil, fmt.Errorf("line %d: frame %d: %w", s.line, i, err)
			}
			req.Frames[i].Image = img
		}
		return req.Frames, nil
	}
	if err := s.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
