// Package tables loads the shape and wall-kick data that drives piece
// geometry. Documents are YAML, checked against a JSON Schema and then for
// full coverage; a document that fails any check is rejected as a whole.
package tables

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-stacker/internal/stacker/board"
)

//go:embed defaults/standard.yaml
var standardYAML []byte

// LoadError is returned for any document that cannot be turned into a
// complete table.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("tables: %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type document struct {
	Shapes []shapeEntry `yaml:"shapes"`
	Kicks  []kickEntry  `yaml:"kicks"`
}

type shapeEntry struct {
	Kind     string   `yaml:"kind"`
	Rotation string   `yaml:"rotation"`
	Cells    [][2]int `yaml:"cells"`
}

type kickEntry struct {
	Kind    string   `yaml:"kind"`
	From    string   `yaml:"from"`
	To      string   `yaml:"to"`
	Offsets [][2]int `yaml:"offsets"`
}

// Default returns the embedded standard tables.
func Default() (board.Tables, error) {
	return parse("embedded standard tables", standardYAML)
}

// MustDefault is Default for callers that treat a broken embedded document
// as a programming error.
func MustDefault() board.Tables {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads and parses a table document from path.
func Load(path string) (board.Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return board.Tables{}, &LoadError{Source: path, Err: err}
	}
	return parse(path, data)
}

// Resolve loads path, or the embedded standard tables when path is empty.
func Resolve(path string) (board.Tables, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Parse validates and converts a table document.
func Parse(data []byte) (board.Tables, error) {
	return parse("document", data)
}

func parse(source string, data []byte) (board.Tables, error) {
	fail := func(err error) (board.Tables, error) {
		return board.Tables{}, &LoadError{Source: source, Err: err}
	}

	if err := validateSchema(data); err != nil {
		return fail(err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fail(fmt.Errorf("decode: %w", err))
	}

	t := board.Tables{
		Shapes: make(board.ShapeTable, len(doc.Shapes)),
		Kicks:  make(board.KickTable, len(doc.Kicks)),
	}

	for i, e := range doc.Shapes {
		kind, rot, err := parseKey(e.Kind, e.Rotation)
		if err != nil {
			return fail(fmt.Errorf("shapes[%d]: %w", i, err))
		}
		key := board.ShapeKey{Kind: kind, Rotation: rot}
		if _, dup := t.Shapes[key]; dup {
			return fail(fmt.Errorf("shapes[%d]: duplicate entry for %s %s", i, kind, rot))
		}
		t.Shapes[key] = toVecs(e.Cells)
	}

	for i, e := range doc.Kicks {
		kind, from, err := parseKey(e.Kind, e.From)
		if err != nil {
			return fail(fmt.Errorf("kicks[%d]: %w", i, err))
		}
		to, err := board.ParseRotation(e.To)
		if err != nil {
			return fail(fmt.Errorf("kicks[%d]: %w", i, err))
		}
		if from == to {
			return fail(fmt.Errorf("kicks[%d]: %s %s to itself", i, kind, from))
		}
		key := board.KickKey{Kind: kind, From: from, To: to}
		if _, dup := t.Kicks[key]; dup {
			return fail(fmt.Errorf("kicks[%d]: duplicate entry for %s %s->%s", i, kind, from, to))
		}
		t.Kicks[key] = toVecs(e.Offsets)
	}

	for _, kind := range board.StandardKinds() {
		for r := board.Up; r <= board.Left; r++ {
			if _, ok := t.Shapes[board.ShapeKey{Kind: kind, Rotation: r}]; !ok {
				return fail(fmt.Errorf("missing shape for %s %s", kind, r))
			}
		}
	}
	return t, nil
}

// validateSchema checks the raw document against the JSON Schema. YAML is
// round-tripped through JSON so numbers reach the validator as float64.
func validateSchema(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("empty document")
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

func parseKey(kind, rot string) (board.MinoKind, board.Rotation, error) {
	k, err := board.ParseMinoKind(kind)
	if err != nil {
		return board.E, board.Up, err
	}
	if !k.Standard() {
		return board.E, board.Up, fmt.Errorf("kind %s is not a playable piece", k)
	}
	r, err := board.ParseRotation(rot)
	if err != nil {
		return board.E, board.Up, err
	}
	return k, r, nil
}

func toVecs(pairs [][2]int) []board.Vec {
	out := make([]board.Vec, len(pairs))
	for i, p := range pairs {
		out[i] = board.V(p[0], p[1])
	}
	return out
}
