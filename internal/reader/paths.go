package reader

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/cratekit/internal/codec"
	"github.com/joshuapare/cratekit/internal/format"
	"github.com/joshuapare/cratekit/pkg/types"
)

// readPaths decompresses the three parallel PATHS streams and rebuilds the
// full path table and the node hierarchy.
func (r *Reader) readPaths() error {
	const section = format.SectionPaths
	if _, err := r.seekSection(section); err != nil {
		return err
	}
	numPaths, err := r.sr.ReadU64()
	if err != nil {
		return types.CorruptError(section, r.sr.Tell(), "failed to read path count")
	}
	if numPaths == 0 {
		// Unusual but tolerated: a layer with no scene content.
		r.warnf("crate file has zero paths")
		return nil
	}
	if err := r.checkCount(section, numPaths, 12); err != nil {
		return err
	}

	// The header count and the compressed-paths count are stored
	// redundantly and must agree.
	encodedPaths, err := r.sr.ReadU64()
	if err != nil {
		return types.CorruptError(section, r.sr.Tell(), "failed to read encoded path count")
	}
	if encodedPaths != numPaths {
		return types.CorruptError(section, r.sr.Tell(),
			fmt.Sprintf("path count mismatch: header %d, encoded %d", numPaths, encodedPaths))
	}

	// Three parallel streams. Each must be consumed from the stream in
	// order, but their decompression is independent work that the worker
	// pool may overlap.
	type compressedStream struct {
		buf []byte
	}
	streams := make([]compressedStream, 3)
	for i := range streams {
		size, err := r.sr.ReadU64()
		if err != nil {
			return types.CorruptError(section, r.sr.Tell(), "failed to read stream size")
		}
		buf, err := r.sr.Bytes(int64(size))
		if err != nil {
			return types.CorruptError(section, r.sr.Tell(), "path stream truncated")
		}
		streams[i].buf = buf
	}

	var pathIndexes []uint32
	var elementTokenIndexes, jumps []int32

	if r.cfg.Threads() > 1 {
		var g errgroup.Group
		g.SetLimit(r.cfg.Threads())
		g.Go(func() error {
			var err error
			pathIndexes, err = codec.DecodeUints32(streams[0].buf, int(numPaths))
			return err
		})
		g.Go(func() error {
			var err error
			elementTokenIndexes, err = codec.DecodeInts32(streams[1].buf, int(numPaths))
			return err
		})
		g.Go(func() error {
			var err error
			jumps, err = codec.DecodeInts32(streams[2].buf, int(numPaths))
			return err
		})
		if err := g.Wait(); err != nil {
			return sectionErr(section, r.sr.Tell(), err)
		}
	} else {
		if pathIndexes, err = codec.DecodeUints32(streams[0].buf, int(numPaths)); err != nil {
			return sectionErr(section, r.sr.Tell(), err)
		}
		if elementTokenIndexes, err = codec.DecodeInts32(streams[1].buf, int(numPaths)); err != nil {
			return sectionErr(section, r.sr.Tell(), err)
		}
		if jumps, err = codec.DecodeInts32(streams[2].buf, int(numPaths)); err != nil {
			return sectionErr(section, r.sr.Tell(), err)
		}
	}

	for _, pi := range pathIndexes {
		if uint64(pi) >= numPaths {
			return types.CorruptError(section, r.sr.Tell(),
				fmt.Sprintf("path index %d out of range (%d paths)", pi, numPaths))
		}
	}

	r.paths = make([]types.Path, numPaths)
	r.elemPaths = make([]types.Path, numPaths)
	r.nodes = make([]Node, numPaths)
	for i := range r.nodes {
		r.nodes[i] = newUnplacedNode()
	}

	if err := r.buildPaths(section, pathIndexes, elementTokenIndexes, jumps); err != nil {
		return err
	}
	return r.buildHierarchy(section, pathIndexes, jumps)
}

// pathFrame is one suspended traversal branch: resume at position index
// with the given parent path.
type pathFrame struct {
	index  uint32
	parent types.Path
}

// buildPaths walks the implicit depth-first preorder encoded by the jump
// table. Position 0 defines the absolute root. At position i, a negative
// element token index flags a property path; jumps[i] encodes topology:
// > 0 sibling at that offset, -1 child only, -2 branch ends, 0 sibling
// directly next. Real scenes nest past depth 64, so the walk keeps an
// explicit stack instead of recursing.
func (r *Reader) buildPaths(section string, pathIndexes []uint32, elementTokenIndexes, jumps []int32) error {
	numPaths := uint32(len(pathIndexes))
	stack := []pathFrame{{index: 0, parent: types.Path{}}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cur := frame.index
		parent := frame.parent

		for {
			if cur >= numPaths {
				return types.CorruptError(section, r.sr.Tell(),
					fmt.Sprintf("path walk escaped the table at position %d", cur))
			}
			thisIndex := cur
			cur++

			if parent.IsEmpty() {
				parent = types.RootPath()
				r.paths[pathIndexes[thisIndex]] = parent
				r.elemPaths[pathIndexes[thisIndex]] = types.RootPath()
			} else {
				tokenIndex := elementTokenIndexes[thisIndex]
				isPropertyPath := tokenIndex < 0
				if tokenIndex < 0 {
					tokenIndex = -tokenIndex
				}
				elemToken, err := r.token(uint32(tokenIndex))
				if err != nil {
					return sectionErr(section, r.sr.Tell(), err)
				}
				if isPropertyPath {
					r.paths[pathIndexes[thisIndex]] = parent.AppendProperty(string(elemToken))
				} else {
					r.paths[pathIndexes[thisIndex]] = parent.AppendElement(string(elemToken))
				}
				r.elemPaths[pathIndexes[thisIndex]] = types.NewPath(string(elemToken), "")
			}

			jump := jumps[thisIndex]
			hasChild := jump > 0 || jump == -1
			hasSibling := jump >= 0

			if hasChild {
				if hasSibling {
					sibling := int64(thisIndex) + int64(jump)
					if sibling <= int64(thisIndex) || sibling >= int64(numPaths) {
						return types.CorruptError(section, r.sr.Tell(),
							fmt.Sprintf("sibling jump to %d from %d out of range", sibling, thisIndex))
					}
					stack = append(stack, pathFrame{index: uint32(sibling), parent: parent})
				}
				// Descend: this node becomes the parent of what follows.
				parent = r.paths[pathIndexes[thisIndex]]
				continue
			}
			if hasSibling {
				// Sibling is next in the stream; parent unchanged.
				continue
			}
			break
		}
	}
	return nil
}

// hierFrame mirrors pathFrame for the node hierarchy walk. The parent is
// a path index (the space Node.Parent and child lists live in).
type hierFrame struct {
	index  uint32
	parent int64
}

// buildHierarchy repeats the same traversal, filling parent links and
// ordered child lists. A node reached twice means the jump table encodes
// a cycle.
func (r *Reader) buildHierarchy(section string, pathIndexes []uint32, jumps []int32) error {
	numPaths := uint32(len(pathIndexes))
	stack := []hierFrame{{index: 0, parent: NoParent}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cur := frame.index
		parent := frame.parent

		for {
			thisIndex := cur
			cur++

			pathIdx := pathIndexes[thisIndex]
			if r.nodes[pathIdx].Placed() {
				return types.CorruptError(section, r.sr.Tell(),
					fmt.Sprintf("path %d placed twice; jump table encodes a cycle", pathIdx))
			}

			if parent == NoParent {
				r.nodes[pathIdx] = Node{Parent: NoParent, Path: r.paths[pathIdx]}
				r.rootNode = pathIdx
			} else {
				r.nodes[pathIdx] = Node{Parent: parent, Path: r.paths[pathIdx]}
				r.nodes[uint32(parent)].AddChild(r.elemPaths[pathIdx].PrimPart(), pathIdx)
			}

			jump := jumps[thisIndex]
			hasChild := jump > 0 || jump == -1
			hasSibling := jump >= 0

			if hasChild {
				if hasSibling {
					sibling := int64(thisIndex) + int64(jump)
					if sibling <= int64(thisIndex) || sibling >= int64(numPaths) {
						return types.CorruptError(section, r.sr.Tell(),
							fmt.Sprintf("sibling jump to %d from %d out of range", sibling, thisIndex))
					}
					stack = append(stack, hierFrame{index: uint32(sibling), parent: parent})
				}
				parent = int64(pathIdx)
				continue
			}
			if hasSibling {
				continue
			}
			break
		}
	}
	return nil
}
