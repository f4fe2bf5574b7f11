package codec

import (
	"github.com/clamor-s/bef2/tag"
)

// peekCache remembers the header parts of the element at the cursor so an
// inspection followed by a real read decodes them only once.
//
// Every field is explicitly optional. The cache belongs to the element that
// starts at the cursor and is invalidated once that element has been
// consumed or the scope changes.
type peekCache struct {
	tag    byte
	class  tag.Class
	hasTag bool

	sub    byte
	hasSub bool

	word    uint32
	hasWord bool

	// poisoned marks an element whose classification failed during a peek.
	// The next real read of it fails with errs.ErrBadFormat.
	poisoned bool
}

func (c *peekCache) invalidate() {
	*c = peekCache{}
}

// frame is one decoding scope: the cursor and the exclusive end of the scope.
type frame struct {
	offset int
	end    int
}

func (f *frame) remaining() int {
	return f.end - f.offset
}
