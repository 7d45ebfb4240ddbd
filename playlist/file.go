package playlist

import (
	"fmt"

	"github.com/videowall/videowall/filesystem"
	"gopkg.in/yaml.v3"
)

// document is the on-disk playlist format. JSON documents are accepted as well.
//
//	videos:
//	  - yt:dQw4w9WgXcQ
//	  - type: vimeo
//	    id: "76979871"
//	    title: The New Vimeo Player
type document struct {
	Videos []Video `yaml:"videos"`
}

// UnmarshalYAML accepts either the compact "provider:id" scalar form or a mapping.
func (v *Video) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := Parse(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*v = parsed
		return nil
	}

	type plain Video
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*v = Video(raw)
	return nil
}

// Load reads a YAML or JSON playlist file through the virtual filesystem.
func Load(path string) (*Playlist, error) {
	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse playlist %s: %w", path, err)
	}

	p, err := New(doc.Videos)
	if err != nil {
		return nil, fmt.Errorf("playlist %s: %w", path, err)
	}
	return p, nil
}

// Save writes the playlist in the YAML mapping form.
func Save(path string, p *Playlist) error {
	data, err := yaml.Marshal(document{Videos: p.videos})
	if err != nil {
		return err
	}
	return filesystem.API().WriteFile(path, data, 0o644)
}
