package format

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/joshuapare/cratekit/internal/stream"
	"github.com/joshuapare/cratekit/pkg/types"
)

func bootstrapBytes(magic string, major, minor, patch uint8, tocOffset int64, fileSize int) []byte {
	buf := make([]byte, fileSize)
	copy(buf, magic)
	buf[8], buf[9], buf[10] = major, minor, patch
	binary.LittleEndian.PutUint64(buf[16:], uint64(tocOffset))
	return buf
}

func TestReadBootstrap(t *testing.T) {
	buf := bootstrapBytes("PXR-USDC", 0, 8, 0, 100, 256)
	bs, err := ReadBootstrap(stream.New(buf))
	if err != nil {
		t.Fatalf("ReadBootstrap: %v", err)
	}
	if bs.Version != (Version{0, 8, 0}) {
		t.Fatalf("version: %v", bs.Version)
	}
	if bs.TOCOffset != 100 {
		t.Fatalf("toc offset: %d", bs.TOCOffset)
	}
}

func TestReadBootstrapBadMagic(t *testing.T) {
	buf := bootstrapBytes("PXR-USDA", 0, 8, 0, 100, 256)
	_, err := ReadBootstrap(stream.New(buf))
	if !errors.Is(err, types.ErrCorrupt) {
		t.Fatalf("expected Corrupt, got %v", err)
	}
}

func TestReadBootstrapOldVersion(t *testing.T) {
	buf := bootstrapBytes("PXR-USDC", 0, 3, 2, 100, 256)
	_, err := ReadBootstrap(stream.New(buf))
	if !errors.Is(err, types.ErrUnsupportedVersion) {
		t.Fatalf("expected UnsupportedVersion, got %v", err)
	}
}

func TestReadBootstrapBadTOCOffset(t *testing.T) {
	for _, offset := range []int64{0, 88, 256, 10_000} {
		buf := bootstrapBytes("PXR-USDC", 0, 8, 0, offset, 256)
		_, err := ReadBootstrap(stream.New(buf))
		if !errors.Is(err, types.ErrCorrupt) {
			t.Fatalf("offset %d: expected Corrupt, got %v", offset, err)
		}
	}
}

func writeSection(buf []byte, off int, name string, start, size int64) int {
	copy(buf[off:off+16], name)
	binary.LittleEndian.PutUint64(buf[off+16:], uint64(start))
	binary.LittleEndian.PutUint64(buf[off+24:], uint64(size))
	return off + SectionRecordSize
}

func TestReadTOC(t *testing.T) {
	buf := make([]byte, 512)
	tocOffset := int64(100)
	binary.LittleEndian.PutUint64(buf[tocOffset:], 3)
	off := int(tocOffset) + 8
	off = writeSection(buf, off, SectionTokens, 24, 8)
	off = writeSection(buf, off, "MYSTERY", 32, 8)
	writeSection(buf, off, SectionPaths, 40, 8)

	toc, err := ReadTOC(stream.New(buf), tocOffset)
	if err != nil {
		t.Fatalf("ReadTOC: %v", err)
	}
	if len(toc.Sections) != 3 {
		t.Fatalf("sections: %d", len(toc.Sections))
	}
	sec, ok := toc.Find(SectionTokens)
	if !ok || sec.Start != 24 || sec.Size != 8 {
		t.Fatalf("TOKENS section: %+v ok=%t", sec, ok)
	}
	if _, ok := toc.Find("MYSTERY"); !ok {
		t.Fatal("unknown section should still be listed")
	}
}

func TestTOCValidateRequired(t *testing.T) {
	toc := TOC{Sections: []Section{
		{Name: SectionTokens}, {Name: SectionStrings}, {Name: SectionFields},
		{Name: SectionFieldSets}, {Name: SectionSpecs}, {Name: SectionPaths},
		{Name: "FUTURE_SECTION"},
	}}
	unknown, err := toc.ValidateRequired()
	if err != nil {
		t.Fatalf("ValidateRequired: %v", err)
	}
	if len(unknown) != 1 || unknown[0] != "FUTURE_SECTION" {
		t.Fatalf("unknown sections: %v", unknown)
	}

	incomplete := TOC{Sections: []Section{{Name: SectionTokens}}}
	if _, err := incomplete.ValidateRequired(); !errors.Is(err, types.ErrCorrupt) {
		t.Fatalf("expected Corrupt for missing sections, got %v", err)
	}
}

func TestReadTOCSectionOutOfBounds(t *testing.T) {
	buf := make([]byte, 256)
	tocOffset := int64(100)
	binary.LittleEndian.PutUint64(buf[tocOffset:], 1)
	writeSection(buf, int(tocOffset)+8, SectionTokens, 240, 64)

	_, err := ReadTOC(stream.New(buf), tocOffset)
	if !errors.Is(err, types.ErrCorrupt) {
		t.Fatalf("expected Corrupt, got %v", err)
	}
}
