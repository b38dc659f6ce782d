package textenc

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

var (
	// ErrUnknownEncoding indicates an identifier no registry knows about.
	ErrUnknownEncoding = errors.New("textenc: unknown encoding")
	// ErrInvalidBytes indicates bytes that do not decode under the codec.
	ErrInvalidBytes = errors.New("textenc: invalid byte sequence")
	// ErrUnencodable indicates text containing characters the codec cannot represent.
	ErrUnencodable = errors.New("textenc: character not representable")
)

// Codec converts between record payload bytes and Go strings.
type Codec interface {
	// Name is the canonical identifier of the codec.
	Name() string
	// Decode converts payload bytes to text.
	Decode(b []byte) (string, error)
	// Encode converts text to payload bytes.
	Encode(s string) ([]byte, error)
}

type utf8Codec struct{}

func (utf8Codec) Name() string { return "utf-8" }

func (utf8Codec) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidBytes
	}
	return string(b), nil
}

func (utf8Codec) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: invalid UTF-8 input", ErrUnencodable)
	}
	return []byte(s), nil
}

type asciiCodec struct{}

func (asciiCodec) Name() string { return "ascii" }

func (asciiCodec) Decode(b []byte) (string, error) {
	for i, c := range b {
		if c >= 0x80 {
			return "", fmt.Errorf("%w: byte 0x%02X at %d", ErrInvalidBytes, c, i)
		}
	}
	return string(b), nil
}

func (asciiCodec) Encode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r >= 0x80 {
			return nil, fmt.Errorf("%w: %q", ErrUnencodable, r)
		}
		out = append(out, byte(r))
	}
	return out, nil
}

// xtextCodec adapts an x/text encoding. Decoders from x/text substitute
// U+FFFD for undecodable input, which is reported as ErrInvalidBytes.
type xtextCodec struct {
	name string
	enc  encoding.Encoding
}

func (c xtextCodec) Name() string { return c.name }

func (c xtextCodec) Decode(b []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBytes, err)
	}
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", ErrInvalidBytes
	}
	return string(out), nil
}

func (c xtextCodec) Encode(s string) ([]byte, error) {
	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnencodable, err)
	}
	return out, nil
}

var builtins = map[string]Codec{
	"utf-8":        utf8Codec{},
	"ascii":        asciiCodec{},
	"iso-8859-1":   xtextCodec{"iso-8859-1", charmap.ISO8859_1},
	"iso-8859-2":   xtextCodec{"iso-8859-2", charmap.ISO8859_2},
	"iso-8859-5":   xtextCodec{"iso-8859-5", charmap.ISO8859_5},
	"iso-8859-15":  xtextCodec{"iso-8859-15", charmap.ISO8859_15},
	"windows-1250": xtextCodec{"windows-1250", charmap.Windows1250},
	"windows-1251": xtextCodec{"windows-1251", charmap.Windows1251},
	"windows-1252": xtextCodec{"windows-1252", charmap.Windows1252},
	"cp437":        xtextCodec{"cp437", charmap.CodePage437},
	"koi8-r":       xtextCodec{"koi8-r", charmap.KOI8R},
	"shift-jis":    xtextCodec{"shift-jis", japanese.ShiftJIS},
	"euc-jp":       xtextCodec{"euc-jp", japanese.EUCJP},
}

var aliases = map[string]string{
	"utf8":     "utf-8",
	"us-ascii": "ascii",
	"latin-1":  "iso-8859-1",
	"latin1":   "iso-8859-1",
	"cp1250":   "windows-1250",
	"cp1251":   "windows-1251",
	"cp1252":   "windows-1252",
	"ibm437":   "cp437",
	"sjis":     "shift-jis",
	"shiftjis": "shift-jis",
	"eucjp":    "euc-jp",
}

// Normalize returns the canonical form of an encoding identifier.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	n = strings.ReplaceAll(n, " ", "")
	if canon, ok := aliases[n]; ok {
		return canon
	}
	return n
}

// Lookup resolves a built-in codec. An empty name resolves to UTF-8.
func Lookup(name string) (Codec, error) {
	n := Normalize(name)
	if n == "" {
		return utf8Codec{}, nil
	}
	if c, ok := builtins[n]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// Names lists the canonical identifiers of the built-in codecs.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
