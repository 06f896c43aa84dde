package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/cratekit/internal/stream"
	"github.com/joshuapare/cratekit/pkg/types"
)

// Bootstrap is the fixed-size block at the start of every crate file.
type Bootstrap struct {
	Version   Version
	TOCOffset int64
}

// ReadBootstrap parses the magic, version, and TOC offset, validating each
// against the file size.
func ReadBootstrap(sr *stream.Reader) (Bootstrap, error) {
	var magic [8]byte
	if err := sr.ReadExact(magic[:]); err != nil {
		return Bootstrap{}, types.CorruptError("BOOT", 0, "failed to read magic")
	}
	if !bytes.Equal(magic[:], Magic) {
		return Bootstrap{}, types.CorruptError("BOOT", 0,
			fmt.Sprintf("invalid magic %q, expected %q", magic[:], Magic))
	}

	var verBytes [8]byte
	if err := sr.ReadExact(verBytes[:]); err != nil {
		return Bootstrap{}, types.CorruptError("BOOT", 8, "failed to read version")
	}
	ver := Version{Major: verBytes[0], Minor: verBytes[1], Patch: verBytes[2]}
	if !ver.Supported() {
		return Bootstrap{}, &types.Error{
			Kind: types.ErrKindUnsupportedVersion, Section: "BOOT", Offset: 8,
			Msg: "crate version must be 0.4.0 or later, got " + ver.String(),
			Err: types.ErrUnsupportedVersion,
		}
	}

	tocOffset, err := sr.ReadI64()
	if err != nil {
		return Bootstrap{}, types.CorruptError("BOOT", 16, "failed to read TOC offset")
	}
	if tocOffset <= MinTOCOffset || tocOffset >= sr.Size() {
		return Bootstrap{}, types.CorruptError("BOOT", 16,
			fmt.Sprintf("invalid TOC offset %d (file size %d)", tocOffset, sr.Size()))
	}

	return Bootstrap{Version: ver, TOCOffset: tocOffset}, nil
}

// Section is one TOC record.
type Section struct {
	Name  string
	Start int64
	Size  int64
}

// TOC is the table of contents.
type TOC struct {
	Sections []Section
}

// Find returns the section with the given name.
func (t TOC) Find(name string) (Section, bool) {
	for _, s := range t.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// ReadTOC seeks to the TOC and parses its section records. Section bounds
// are validated against the file size.
func ReadTOC(sr *stream.Reader, tocOffset int64) (TOC, error) {
	if err := sr.SeekSet(tocOffset); err != nil {
		return TOC{}, types.CorruptError("TOC", tocOffset, "failed to seek to TOC")
	}
	numSections, err := sr.ReadU64()
	if err != nil {
		return TOC{}, types.CorruptError("TOC", tocOffset, "failed to read section count")
	}
	if int64(numSections) > (sr.Size()-tocOffset)/SectionRecordSize {
		return TOC{}, types.CorruptError("TOC", tocOffset,
			fmt.Sprintf("section count %d exceeds file size", numSections))
	}

	toc := TOC{Sections: make([]Section, 0, numSections)}
	for i := uint64(0); i < numSections; i++ {
		var name [SectionNameMaxLength + 1]byte
		if err := sr.ReadExact(name[:]); err != nil {
			return TOC{}, types.CorruptError("TOC", sr.Tell(), "failed to read section name")
		}
		start, err := sr.ReadI64()
		if err != nil {
			return TOC{}, types.CorruptError("TOC", sr.Tell(), "failed to read section start")
		}
		size, err := sr.ReadI64()
		if err != nil {
			return TOC{}, types.CorruptError("TOC", sr.Tell(), "failed to read section size")
		}

		trimmed := name[:]
		if i := bytes.IndexByte(trimmed, 0); i >= 0 {
			trimmed = trimmed[:i]
		}
		sec := Section{Name: string(trimmed), Start: start, Size: size}
		if sec.Start < 0 || sec.Size < 0 || sec.Start > sr.Size() || sec.Start+sec.Size > sr.Size() {
			return TOC{}, types.CorruptError("TOC", sr.Tell(),
				fmt.Sprintf("section %q bounds [%d, %d) exceed file size %d",
					sec.Name, sec.Start, sec.Start+sec.Size, sr.Size()))
		}
		toc.Sections = append(toc.Sections, sec)
	}
	return toc, nil
}

// ValidateRequired fails with Corrupt if any required section is missing.
// Unknown sections are ignored; the returned slice names them so the
// caller can log a warning.
func (t TOC) ValidateRequired() ([]string, error) {
	var unknown []string
	known := map[string]bool{}
	for _, name := range RequiredSections {
		known[name] = true
	}
	for _, s := range t.Sections {
		if !known[s.Name] {
			unknown = append(unknown, s.Name)
		}
	}
	for _, name := range RequiredSections {
		if _, ok := t.Find(name); !ok {
			return unknown, types.CorruptError("TOC", 0, "missing required section "+name)
		}
	}
	return unknown, nil
}
