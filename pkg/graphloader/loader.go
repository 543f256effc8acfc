package graphloader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/saaj376/SafeTrace/pkg/datastructure"
	"github.com/saaj376/SafeTrace/pkg/server"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

// graphFile is the on-disk layout of a prepared road network.
type graphFile struct {
	Version     uint16
	Nodes       []datastructure.Node
	Edges       []datastructure.Edge
	RoadClasses []string
}

const fileVersion = 1

// SaveGraph writes the graph to path. The write goes through a temp file in
// the same directory followed by a rename, so a crash mid-write never leaves
// a truncated graph file behind.
func SaveGraph(g *datastructure.Graph, path string) error {
	encoded, err := binary.Marshal(&graphFile{
		Version:     fileVersion,
		Nodes:       g.GetNodes(),
		Edges:       g.GetOutEdges(),
		RoadClasses: g.GetRoadClasses(),
	})
	if err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	compressed, err := zstd.Compress(nil, encoded)
	if err != nil {
		return fmt.Errorf("compressing graph: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadGraph reads a graph file and rebuilds the in-memory graph. Loading is
// all or nothing: any decode or validation failure returns an error and no
// graph.
func LoadGraph(path string) (*datastructure.Graph, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "reading graph file %s", path)
	}
	encoded, err := zstd.Decompress(nil, compressed)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "decompressing graph file %s", path)
	}

	var gf graphFile
	if err := binary.Unmarshal(encoded, &gf); err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "decoding graph file %s", path)
	}
	if gf.Version != fileVersion {
		return nil, server.NewErrorf(server.ErrInternalServerError,
			"graph file %s has version %d, expected %d", path, gf.Version, fileVersion)
	}

	g, err := datastructure.NewGraph(gf.Nodes, gf.Edges, gf.RoadClasses)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "graph file %s failed validation", path)
	}
	return g, nil
}
