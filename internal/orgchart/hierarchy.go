package orgchart

// Hierarchy is a nested mapping of position labels approximating an
// org chart. Leaves are empty maps. Duplicate labels within a scope
// overwrite rather than merge.
type Hierarchy map[string]Hierarchy

// BuildHierarchy produces a nested tree from the block sequence. The
// raw line index of a position block is used as the target stack depth:
// the insertion stack is truncated to that length before the block is
// inserted under the current top (or at the root when the stack is
// empty). Name and other blocks are skipped but still consume index
// values, so a position block's nesting depth depends on how many
// non-position lines preceded it. This reproduces the line-index
// heuristic of the source system; no indentation signal exists in the
// input to infer a truer tree from.
func BuildHierarchy(blocks []TextBlock) Hierarchy {
	root := Hierarchy{}
	var stack []Hierarchy
	for i, b := range blocks {
		if b.Type != BlockPosition {
			continue
		}
		if len(stack) > i {
			stack = stack[:i]
		}
		child := Hierarchy{}
		if len(stack) == 0 {
			root[b.Text] = child
		} else {
			stack[len(stack)-1][b.Text] = child
		}
		stack = append(stack, child)
	}
	return root
}

// MergeHierarchies copies src's top-level keys into dst, overwriting
// identical keys wholesale. Nested structure is replaced, never merged.
func MergeHierarchies(dst, src Hierarchy) {
	for k, v := range src {
		dst[k] = v
	}
}
