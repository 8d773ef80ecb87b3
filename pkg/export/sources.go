package export

import (
	"context"
	"io"

	"github.com/aihub-tools/aihub-export/pkg/fileutil"
	"github.com/aihub-tools/aihub-export/pkg/graph"
)

// FileSnapshot reads a JSON or YAML snapshot file on every call.
type FileSnapshot struct {
	Path string
}

func (s FileSnapshot) Snapshot(ctx context.Context) (graph.NodeGraph, error) {
	data, err := fileutil.ReadLimited(s.Path, fileutil.MaxFileSize)
	if err != nil {
		return nil, err
	}
	return graph.DecodeNamed(s.Path, data)
}

// ReaderSnapshot decodes a JSON snapshot from a reader, for example stdin.
type ReaderSnapshot struct {
	R io.Reader
}

func (s ReaderSnapshot) Snapshot(ctx context.Context) (graph.NodeGraph, error) {
	data, err := io.ReadAll(io.LimitReader(s.R, fileutil.MaxFileSize))
	if err != nil {
		return nil, err
	}
	return graph.Decode(data)
}

// StaticSnapshot serves an already decoded graph.
type StaticSnapshot struct {
	G graph.NodeGraph
}

func (s StaticSnapshot) Snapshot(ctx context.Context) (graph.NodeGraph, error) {
	return s.G, nil
}

// FileImage supplies the PNG at Path.
type FileImage struct {
	Path string
}

func (p FileImage) PickImage(ctx context.Context) ([]byte, error) {
	return fileutil.ReadPNG(p.Path)
}
