package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/clamor-s/bef2/codec"
	"github.com/clamor-s/bef2/format"
)

// Render writes one line per node, indenting sequence children by two spaces.
//
//	Sequence (21 bytes)
//	  UInt32 7
//	  String "abc"
//	  UInt8Array [3] 1 2 3
func Render(w io.Writer, nodes []*Node) error {
	return render(w, nodes, 0)
}

func render(w io.Writer, nodes []*Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, describe(node)); err != nil {
			return err
		}
		if err := render(w, node.Children, depth+1); err != nil {
			return err
		}
	}

	return nil
}

func describe(node *Node) string {
	switch {
	case node.Null:
		return node.Type.String() + " null"
	case node.Type == format.TypeSequence:
		return fmt.Sprintf("Sequence (%d bytes)", node.Length)
	case node.Type == format.TypeString:
		return fmt.Sprintf("String %q", node.Value)
	case node.Type == format.TypeHandle:
		return fmt.Sprintf("Handle 0x%08x", node.Value)
	case node.Type == format.TypeMemoryReference:
		ref, _ := node.Value.(codec.MemoryReference)
		return fmt.Sprintf("MemoryReference block=0x%08x offset=%d length=%d flags=0x%x",
			ref.BlockHandle, ref.Offset, ref.Length, ref.Flags)
	case node.Type.IsArray():
		return fmt.Sprintf("%s [%d]%s", node.Type, node.Length, items(node))
	case node.Type == format.TypeInvalid:
		return "Invalid"
	default:
		return fmt.Sprintf("%s %v", node.Type, node.Value)
	}
}

// items renders the kept array elements, marking elided ones.
func items(node *Node) string {
	var sb strings.Builder
	kept := 0

	switch v := node.Value.(type) {
	case []bool:
		kept = appendItems(&sb, v)
	case []uint8:
		kept = appendItems(&sb, v)
	case []uint16:
		kept = appendItems(&sb, v)
	case []uint32:
		kept = appendItems(&sb, v)
	}

	if uint32(kept) < node.Length {
		sb.WriteString(" ...")
	}

	return sb.String()
}

func appendItems[T any](sb *strings.Builder, values []T) int {
	for _, v := range values {
		fmt.Fprintf(sb, " %v", v)
	}

	return len(values)
}

// Dump decodes data and returns its rendering.
//
// On a malformed message the rendering of the elements read before the
// failure is returned together with the decoder error.
func Dump(data []byte, opts ...Option) (string, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return "", err
	}

	dec, err := codec.NewDecoder(data, cfg.decoderOpts...)
	if err != nil {
		return "", err
	}

	nodes := walk(dec, cfg)

	var sb strings.Builder
	if err := Render(&sb, nodes); err != nil {
		return "", err
	}

	return sb.String(), dec.Err()
}
