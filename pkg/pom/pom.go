// SPDX-License-Identifier: MPL-2.0

package pom

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"
)

const (
	// FileName is the descriptor file name.
	FileName = "pom.xml"
	// DefaultPackaging applies when <packaging> is absent.
	DefaultPackaging = "jar"
	// PackagingPOM marks an aggregator (parent) project.
	PackagingPOM = "pom"

	maxDescriptorSize = 4 << 20
)

// ErrParse is the sentinel wrapped by every ParseError.
var ErrParse = errors.New("invalid project descriptor")

type (
	// Descriptor is the subset of a pom.xml gmw relies on.
	Descriptor struct {
		ArtifactID string
		Packaging  string
		Modules    []string
	}

	// ParseError reports a descriptor that could not be decoded or lacks an
	// artifactId.
	ParseError struct {
		Path string
		Err  error
	}

	project struct {
		XMLName    xml.Name `xml:"project"`
		ArtifactID string   `xml:"artifactId"`
		Packaging  string   `xml:"packaging"`
		Modules    []string `xml:"modules>module"`
	}
)

// Error implements error.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid project descriptor: %v", e.Err)
	}
	return fmt.Sprintf("invalid project descriptor %s: %v", e.Path, e.Err)
}

// Unwrap returns the cause.
func (e *ParseError) Unwrap() error { return e.Err }

// Is reports ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IsAggregator reports whether the descriptor only aggregates sub-modules.
func (d *Descriptor) IsAggregator() bool {
	return d.Packaging == PackagingPOM
}

// Parse decodes a descriptor. Element text is trimmed; a missing packaging
// defaults to "jar".
func Parse(data []byte) (*Descriptor, error) {
	var p project
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Descriptors in the wild declare ISO-8859-1 and friends; the elements
	// read here are ASCII in practice.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	if err := dec.Decode(&p); err != nil {
		return nil, &ParseError{Err: err}
	}

	d := &Descriptor{
		ArtifactID: strings.TrimSpace(p.ArtifactID),
		Packaging:  strings.TrimSpace(p.Packaging),
	}
	if d.ArtifactID == "" {
		return nil, &ParseError{Err: errors.New("missing <artifactId>")}
	}
	if d.Packaging == "" {
		d.Packaging = DefaultPackaging
	}
	for _, m := range p.Modules {
		if m = strings.TrimSpace(m); m != "" {
			d.Modules = append(d.Modules, m)
		}
	}
	return d, nil
}

// ReadFile reads and parses the descriptor at path.
func ReadFile(fsys billy.Filesystem, path string) (*Descriptor, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxDescriptorSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > maxDescriptorSize {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("file exceeds %d bytes", maxDescriptorSize)}
	}

	d, err := Parse(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return d, nil
}
