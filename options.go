package arenajson

import "fmt"

// config is the resolved form of the ParserOption/EncoderOption chain,
// generalizing the teacher's internalParsedJson option target to this
// package's Codec.
type config struct {
	nodeArenaSize   int
	stringArenaSize int
	copyStrings     bool
	maxDepth        int
	useIterative    bool
	indent          string
}

const (
	defaultNodeArenaSize   = 64 << 10
	defaultStringArenaSize = 64 << 10
)

func defaultConfig() config {
	return config{
		nodeArenaSize:   defaultNodeArenaSize,
		stringArenaSize: defaultStringArenaSize,
		copyStrings:     true,
		maxDepth:        defaultMaxDepth,
		indent:          "  ",
	}
}

// ParserOption configures a Codec's parsing and decoding behavior.
type ParserOption func(*config) error

// WithCopyStrings selects Parse/DecodeInto's Lexer path, which
// unescapes strings into an arena so they outlive and don't alias the
// source buffer. The alternative, WithBorrowedStrings, selects the
// Scanner path: zero-copy, but every string aliases data and carries
// its escapes unresolved.
// Default: true - strings are copied and unescaped.
func WithCopyStrings(b bool) ParserOption {
	return func(c *config) error {
		c.copyStrings = b
		return nil
	}
}

// WithBorrowedStrings is shorthand for WithCopyStrings(false).
func WithBorrowedStrings() ParserOption {
	return WithCopyStrings(false)
}

// WithNodeArenaSize sets the capacity of the arena backing DOM nodes
// and schema-decoded pointer/array payloads.
func WithNodeArenaSize(n int) ParserOption {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: node arena size must be positive", ErrSchema)
		}
		c.nodeArenaSize = n
		return nil
	}
}

// WithStringArenaSize sets the capacity of the arena backing unescaped
// string bytes for Codec.Parse when WithCopyStrings(true) (the default)
// is in effect. Codec.Decode does not use this arena: it unescapes
// strings into the node arena.
func WithStringArenaSize(n int) ParserOption {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: string arena size must be positive", ErrSchema)
		}
		c.stringArenaSize = n
		return nil
	}
}

// WithMaxDepth bounds object/array nesting depth during decode and
// skip. Documents nested deeper than this are rejected with a
// ClassResource error rather than risking a native stack overflow.
func WithMaxDepth(n int) ParserOption {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: max depth must be positive", ErrSchema)
		}
		c.maxDepth = n
		return nil
	}
}

// WithIterativeDecode routes DecodeInto calls through DecodeIntoIter's
// explicit-stack object walker instead of native recursion. Recommended
// when decoding untrusted input against a schema with pointer/inline
// object fields that could nest arbitrarily deep.
func WithIterativeDecode(b bool) ParserOption {
	return func(c *config) error {
		c.useIterative = b
		return nil
	}
}

// EncoderOption configures a Codec's encoding behavior.
type EncoderOption func(*config) error

// WithIndent sets the per-level indent Encode uses; an empty string
// disables pretty-printing and emits compact JSON.
func WithIndent(indent string) EncoderOption {
	return func(c *config) error {
		c.indent = indent
		return nil
	}
}

// Codec bundles a resolved configuration with the arenas its Parse,
// Decode and Encode methods need, so a caller configures once
// (arena sizing, depth limits, string mode) and reuses the same Codec
// across many independent documents via Reset.
type Codec struct {
	cfg          config
	nodeArena    *Arena
	stringArena  *Arena
	scratchArena *Arena
}

// NewCodec builds a Codec from the given options, allocating its
// arenas immediately so later calls never allocate mid-decode.
func NewCodec(parserOpts []ParserOption, encoderOpts []EncoderOption) (*Codec, error) {
	cfg := defaultConfig()
	for _, o := range parserOpts {
		if err := o(&cfg); err != nil {
			return nil, err
		}
	}
	for _, o := range encoderOpts {
		if err := o(&cfg); err != nil {
			return nil, err
		}
	}
	c := &Codec{
		cfg:          cfg,
		nodeArena:    NewArena(cfg.nodeArenaSize, "codec-node"),
		scratchArena: NewArena(defaultStringArenaSize, "codec-scratch"),
	}
	if cfg.copyStrings {
		c.stringArena = NewArena(cfg.stringArenaSize, "codec-string")
	}
	return c, nil
}

// Reset rewinds every arena the Codec owns, readying it for the next
// document without any further allocation.
func (c *Codec) Reset() {
	c.nodeArena.Reset()
	c.scratchArena.Reset()
	if c.stringArena != nil {
		c.stringArena.Reset()
	}
}

// Parse builds a DOM from data using the Codec's configured string
// mode (copied+unescaped, or borrowed).
func (c *Codec) Parse(data []byte) (*Value, error) {
	if c.cfg.copyStrings {
		return Parse(data, c.nodeArena, c.stringArena)
	}
	return Scan(data, c.nodeArena)
}

// Decode decodes data into root against typ using the Codec's
// configured depth limit, string mode and recursion strategy.
func (c *Codec) Decode(data []byte, root interface{}, typ *TypeDescriptor) error {
	opts := &DecodeOptions{UseScanner: !c.cfg.copyStrings, MaxDepth: c.cfg.maxDepth}
	if c.cfg.useIterative {
		return DecodeIntoIter(data, root, typ, c.nodeArena, c.scratchArena, opts)
	}
	return DecodeInto(data, root, typ, c.nodeArena, c.scratchArena, opts)
}

// Encode renders root against typ using the Codec's configured indent.
func (c *Codec) Encode(root interface{}, typ *TypeDescriptor) ([]byte, error) {
	return Encode(root, typ, &EncodeOptions{Indent: c.cfg.indent})
}
