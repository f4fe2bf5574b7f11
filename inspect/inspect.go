// Package inspect walks a BEF2 message without knowing its schema and renders
// it as an element tree.
//
// The walk relies only on the self-describing parts of the format: it peeks
// each element with GetCurrentType, reads it with the matching typed read,
// descends into sequences with OpenSequence and stops at the first malformed
// element.
package inspect

import (
	"github.com/clamor-s/bef2/codec"
	"github.com/clamor-s/bef2/format"
	"github.com/clamor-s/bef2/internal/options"
)

// DefaultMaxArrayItems is the default number of array elements kept per node.
const DefaultMaxArrayItems = 16

// Node is one element of a decoded message.
type Node struct {
	Type format.ElementType
	// Length is the array count, the string byte length or the sequence payload length.
	Length uint32
	Null   bool
	// Value holds bool, uint8, uint16, uint32, string, uuid.UUID or
	// codec.MemoryReference for scalar elements, and a slice of the element
	// type for arrays, truncated to the configured number of items.
	Value    any
	Children []*Node
}

type config struct {
	maxArrayItems int
	decoderOpts   []codec.Option
}

// Option configures Walk and Dump.
type Option = options.Option[*config]

// WithMaxArrayItems limits the number of array elements kept per node.
// Zero or a negative value keeps every element.
func WithMaxArrayItems(n int) Option {
	return options.NoError(func(c *config) {
		c.maxArrayItems = n
	})
}

// WithDecoderOptions passes options to the decoder created by Dump.
func WithDecoderOptions(opts ...codec.Option) Option {
	return options.NoError(func(c *config) {
		c.decoderOpts = append(c.decoderOpts, opts...)
	})
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{maxArrayItems: DefaultMaxArrayItems}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Walk reads every remaining element of the current scope of dec.
//
// Parameters:
//   - dec: decoder positioned at the first element to inspect
//   - opts: optional configuration
//
// Returns:
//   - []*Node: the elements read, including a format.TypeInvalid node for
//     the element that stopped the walk
//   - error: the decoder error, if any
func Walk(dec *codec.Decoder, opts ...Option) ([]*Node, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	nodes := walk(dec, cfg)

	return nodes, dec.Err()
}

func walk(dec *codec.Decoder, cfg *config) []*Node {
	var nodes []*Node
	for dec.HasData() {
		el := dec.GetCurrentType()
		node := &Node{Type: el.Type, Length: el.Length, Null: el.Null}
		nodes = append(nodes, node)

		switch el.Type {
		case format.TypeBoolean:
			node.Value = dec.ReadBoolean()
		case format.TypeUint8:
			node.Value = dec.ReadUint8()
		case format.TypeUint16:
			node.Value = dec.ReadUint16()
		case format.TypeUint32:
			node.Value = dec.ReadUint32()
		case format.TypeHandle:
			node.Value = dec.ReadHandle()
		case format.TypeUUID:
			node.Value = dec.ReadUUID()
		case format.TypeMemoryReference:
			node.Value = dec.ReadMemoryReference()
		case format.TypeString:
			if s, null := dec.ReadString(); !null {
				node.Value = s
			}
		case format.TypeSequence:
			dec.OpenSequence()
			node.Children = walk(dec, cfg)
			dec.CloseSequence()
		case format.TypeBooleanArray:
			node.Value = copyItems(dec, el, cfg, dec.CopyBooleanArray)
		case format.TypeUint8Array:
			node.Value = copyItems(dec, el, cfg, dec.CopyUint8Array)
		case format.TypeUint16Array:
			node.Value = copyItems(dec, el, cfg, dec.CopyUint16Array)
		case format.TypeUint32Array:
			node.Value = copyItems(dec, el, cfg, dec.CopyUint32Array)
		case format.TypeHandleArray:
			node.Value = copyItems(dec, el, cfg, dec.CopyHandleArray)
		default:
			// Skip records the format error that made the element invalid.
			dec.Skip()
		}
	}

	return nodes
}

// copyItems copies up to the configured number of items of the next array and skips it.
func copyItems[T any](dec *codec.Decoder, el codec.Element, cfg *config, copyFn func(uint32, []T) (int, bool)) []T {
	if el.Null {
		dec.Skip()
		return nil
	}

	n := int(el.Length)
	if cfg.maxArrayItems > 0 {
		n = min(n, cfg.maxArrayItems)
	}

	items := make([]T, n)
	copied, _ := copyFn(0, items)
	dec.Skip()

	return items[:copied]
}

// Count returns the number of nodes in the tree, sequences included.
func Count(nodes []*Node) int {
	n := 0
	for _, node := range nodes {
		n += 1 + Count(node.Children)
	}

	return n
}
