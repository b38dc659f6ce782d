// Package textenc resolves the text encodings used by game resource
// containers and decides whether a byte span is plausible text.
//
// Built-in codecs cover UTF-8, ASCII, the ISO-8859 and Windows code pages
// provided by golang.org/x/text/encoding/charmap, and the Japanese Shift-JIS
// and EUC-JP encodings. Custom byte tables, common in handset games that ship
// their own font order, are built with NewTable and registered per Registry.
//
// Identifiers are matched case-insensitively with '_' and '-' treated alike:
//
//	codec, err := textenc.Lookup("Shift_JIS")
//	text, err := codec.Decode(payload)
//	raw, err := codec.Encode("こんにちは")
package textenc
