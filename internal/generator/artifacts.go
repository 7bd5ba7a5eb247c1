package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ecombench/internal/docstore"
	"ecombench/internal/model"
)

// Documents renders the dataset per collection in document shape.
func (d Dataset) Documents() map[string][]docstore.Document {
	return map[string][]docstore.Document{
		model.CollClients:  render(d.Clients),
		model.CollProducts: render(d.Products),
		model.CollReviews:  render(d.Reviews),
		model.CollCarts:    render(d.Carts),
	}
}

func render[T interface{ Document() map[string]any }](xs []T) []docstore.Document {
	out := make([]docstore.Document, len(xs))
	for i, x := range xs {
		out[i] = docstore.Document(x.Document())
	}
	return out
}

// ArtifactPath is the JSON file SaveJSON writes for collection.
func ArtifactPath(dir, collection string) string {
	return filepath.Join(dir, collection+".json")
}

// SaveJSON writes one indented JSON array per collection into dir and
// returns the paths in model.Collections order.
func (d Dataset) SaveJSON(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("generator: mkdir %s: %w", dir, err)
	}
	docs := d.Documents()
	paths := make([]string, 0, len(model.Collections))
	for _, coll := range model.Collections {
		path := ArtifactPath(dir, coll)
		b, err := json.MarshalIndent(docs[coll], "", "  ")
		if err != nil {
			return paths, fmt.Errorf("generator: encode %s: %w", coll, err)
		}
		if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
			return paths, fmt.Errorf("generator: write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// LoadJSON reads the artifact of one collection back as documents. Numbers
// decode as float64.
func LoadJSON(dir, collection string) ([]docstore.Document, error) {
	b, err := os.ReadFile(ArtifactPath(dir, collection))
	if err != nil {
		return nil, fmt.Errorf("generator: read %s: %w", collection, err)
	}
	var docs []docstore.Document
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, fmt.Errorf("generator: decode %s: %w", collection, err)
	}
	return docs, nil
}

// LoadArtifacts reads back every collection SaveJSON wrote into dir.
func LoadArtifacts(dir string) (map[string][]docstore.Document, error) {
	out := make(map[string][]docstore.Document, len(model.Collections))
	for _, coll := range model.Collections {
		docs, err := LoadJSON(dir, coll)
		if err != nil {
			return nil, err
		}
		out[coll] = docs
	}
	return out, nil
}
