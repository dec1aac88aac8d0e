package library

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/ketsji/pkg/encoding"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid library")

// Options control parsing.
type Options struct {
	// Encoding is the text encoding of the file. Empty means UTF-8.
	Encoding string
}

// Source is a library that has not been parsed yet: either a path on disk
// or an in-memory buffer with the path it should be known under.
type Source struct {
	Path string
	Data []byte
}

// Load parses the source. File sources are read from disk.
func (s Source) Load(opts Options) (*Main, error) {
	if s.Data != nil {
		return Parse(s.Data, s.Path, opts)
	}
	return ParseFile(s.Path, opts)
}

// ParseFile reads and parses the library at path.
func ParseFile(path string, opts Options) (*Main, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading library: %w", err)
	}
	return Parse(data, path, opts)
}

// Parse decodes a library document and validates its references.
func Parse(data []byte, path string, opts Options) (*Main, error) {
	data, err := encoding.DecodeToUTF8(data, opts.Encoding)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	m := &Main{}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	m.Path = path
	if err := m.build(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return m, nil
}

// Marshal encodes m back into the YAML library format.
func Marshal(m *Main) ([]byte, error) {
	return yaml.Marshal(m)
}

// build normalises names, assigns IDs, fills indices and checks references.
func (m *Main) build() error {
	m.index()

	for _, s := range m.Scenes {
		s.Name = encoding.NormalizeName(s.Name)
		if err := add(m.scenes, CodeScene, s.Name, s); err != nil {
			return err
		}
		s.ID = ID{Code: CodeScene, Name: s.Name}
	}
	for _, me := range m.Meshes {
		me.Name = encoding.NormalizeName(me.Name)
		if err := add(m.meshes, CodeMesh, me.Name, me); err != nil {
			return err
		}
		me.ID = ID{Code: CodeMesh, Name: me.Name}
	}
	for _, ma := range m.Materials {
		ma.Name = encoding.NormalizeName(ma.Name)
		if err := add(m.materials, CodeMaterial, ma.Name, ma); err != nil {
			return err
		}
		ma.ID = ID{Code: CodeMaterial, Name: ma.Name}
	}
	for _, a := range m.Actions {
		a.Name = encoding.NormalizeName(a.Name)
		if err := add(m.actions, CodeAction, a.Name, a); err != nil {
			return err
		}
		a.ID = ID{Code: CodeAction, Name: a.Name}
		a.prepare()
	}
	for _, t := range m.Texts {
		t.Name = encoding.NormalizeName(t.Name)
		if err := add(m.texts, CodeText, t.Name, t); err != nil {
			return err
		}
		t.ID = ID{Code: CodeText, Name: t.Name}
	}
	for _, o := range m.Objects {
		o.Name = encoding.NormalizeName(o.Name)
		if o.Kind == "" {
			o.Kind = KindEmpty
		}
		if !o.Kind.valid() {
			return fmt.Errorf("object %q: unknown type %q", o.Name, o.Kind)
		}
		if err := add(m.objects, CodeObject, o.Name, o); err != nil {
			return err
		}
		o.ID = ID{Code: CodeObject, Name: o.Name}
	}

	return m.validate()
}

func (m *Main) validate() error {
	for _, o := range m.Objects {
		if o.Parent != "" {
			o.Parent = encoding.NormalizeName(o.Parent)
			if _, ok := m.objects[o.Parent]; !ok {
				return fmt.Errorf("object %q: unknown parent %q", o.Name, o.Parent)
			}
			if o.Parent == o.Name {
				return fmt.Errorf("object %q: parented to itself", o.Name)
			}
		}
		if o.Mesh != "" {
			o.Mesh = encoding.NormalizeName(o.Mesh)
			if _, ok := m.meshes[o.Mesh]; !ok {
				return fmt.Errorf("object %q: unknown mesh %q", o.Name, o.Mesh)
			}
		}
	}
	if err := m.checkParentCycles(); err != nil {
		return err
	}
	for _, me := range m.Meshes {
		for i, name := range me.Materials {
			me.Materials[i] = encoding.NormalizeName(name)
			if _, ok := m.materials[me.Materials[i]]; !ok {
				return fmt.Errorf("mesh %q: unknown material %q", me.Name, name)
			}
		}
	}
	for _, s := range m.Scenes {
		for i, name := range s.Objects {
			s.Objects[i] = encoding.NormalizeName(name)
			if _, ok := m.objects[s.Objects[i]]; !ok {
				return fmt.Errorf("scene %q: unknown object %q", s.Name, name)
			}
		}
		if s.Camera != "" {
			if o, ok := m.objects[s.Camera]; !ok || o.Kind != KindCamera {
				return fmt.Errorf("scene %q: camera %q is not a camera object", s.Name, s.Camera)
			}
		}
	}
	return nil
}

func (m *Main) checkParentCycles() error {
	for _, o := range m.Objects {
		seen := map[string]bool{o.Name: true}
		for p := o.Parent; p != ""; p = m.objects[p].Parent {
			if seen[p] {
				return fmt.Errorf("object %q: parent cycle through %q", o.Name, p)
			}
			seen[p] = true
		}
	}
	return nil
}

func add[T any](idx map[string]*T, code Code, name string, v *T) error {
	if name == "" {
		return fmt.Errorf("%s datablock without a name", code)
	}
	if _, dup := idx[name]; dup {
		return fmt.Errorf("duplicate %s", ID{Code: code, Name: name})
	}
	idx[name] = v
	return nil
}
