package renderer

import (
	"bytes"
	"io"
)

// ConditionalBlock buffers a block and decides at the end whether to print
// it. Sections that would only ever print their own header get discarded
// whole.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}
