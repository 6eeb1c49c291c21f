package htmlio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// Case is a stored document: the source text, the annotated tree built from
// it, and what processing it is expected to produce.
type Case struct {
	Name   string `yaml:"name" validate:"required"`
	Source string `yaml:"source"`
	HTML   string `yaml:"html" validate:"required"`

	// Offsets restricts the root to [start, end] of Source.
	Offsets []int `yaml:"offsets" validate:"omitempty,len=2,dive,min=0"`

	Expect Expect `yaml:"expect"`
}

// Expect lists the checks a Case carries.
type Expect struct {
	Templates []ExpectedTemplate `yaml:"templates" validate:"dive"`

	// Issues are diag issue names that must be reported.
	Issues []string `yaml:"issues"`
}

// ExpectedTemplate describes one encapsulated template target.
type ExpectedTemplate struct {
	Name  string `yaml:"name" validate:"required"`
	About string `yaml:"about" validate:"required"`
	DSR   []int  `yaml:"dsr" validate:"len=2"`
	Parts int    `yaml:"parts" validate:"min=1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadCase reads a YAML case file.
func LoadCase(path string) (*Case, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case: %w", err)
	}

	var c Case
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode case %s: %w", path, err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid case %s: %w", path, err)
	}
	return &c, nil
}

// LoadCases reads every .yaml file of dir, ordered by file name.
func LoadCases(dir string) ([]*Case, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	sort.Strings(paths)

	cases := make([]*Case, 0, len(paths))
	for _, p := range paths {
		c, err := LoadCase(p)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// Document parses the case HTML.
func (c *Case) Document() (*dom.Document, int, error) {
	doc, root, err := Load(strings.NewReader(c.HTML))
	if err != nil {
		return nil, dom.NoNode, fmt.Errorf("case %s: %w", c.Name, err)
	}
	return doc, root, nil
}

func (c *Case) Frame() dom.Frame {
	return dom.NewFrame(c.Source)
}

// SourceOffsets returns the root range override, or nil.
func (c *Case) SourceOffsets() *dom.SourceRange {
	if len(c.Offsets) != 2 {
		return nil
	}
	return &dom.SourceRange{Start: c.Offsets[0], End: c.Offsets[1]}
}
