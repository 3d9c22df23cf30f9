package analysis

import (
	"fmt"

	"github.com/dekarrin/lexcheck/internal/check"
	"github.com/dekarrin/lexcheck/internal/diag"
	"github.com/dekarrin/lexcheck/internal/lex"
	"github.com/dekarrin/lexcheck/internal/token"
	"github.com/dekarrin/lexcheck/internal/util"
	"github.com/dekarrin/rezi"
)

// This file contains the binary encoding of Reports. The language comes first,
// then each section is written as a count followed by that many entries.

// MarshalBinary converts r into a slice of bytes that can be decoded with
// UnmarshalBinary. Encoding the same Report always gives the same bytes.
func (r Report) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncInt(int(r.Language))...)

	data = append(data, rezi.EncInt(len(r.Tokens))...)
	for _, tok := range r.Tokens {
		data = append(data, rezi.EncInt(int(tok.Kind))...)
		data = append(data, encLexeme(tok.Lexeme)...)
	}

	data = append(data, rezi.EncInt(len(r.Declarations))...)
	for _, name := range util.OrderedKeys(r.Declarations) {
		d := r.Declarations[name]
		data = append(data, rezi.EncString(d.Identifier)...)
		data = append(data, rezi.EncInt(int(d.Type))...)
		data = append(data, encPosition(d.Position)...)
	}

	data = append(data, rezi.EncInt(len(r.Flags))...)
	for _, f := range r.Flags {
		data = append(data, rezi.EncInt(int(f.Kind))...)
		data = append(data, encPosition(f.Position)...)
		data = append(data, rezi.EncString(f.Message)...)
	}

	data = append(data, rezi.EncInt(len(r.Comments))...)
	for _, c := range r.Comments {
		data = append(data, rezi.EncBinary(c)...)
	}

	return data, nil
}

// UnmarshalBinary decodes a Report from a slice of bytes produced by
// MarshalBinary.
func (r *Report) UnmarshalBinary(data []byte) error {
	var err error
	var n, count int

	decoded := Report{
		Tokens:       []token.Token{},
		Declarations: map[string]check.Declaration{},
		Flags:        []diag.Flag{},
		Comments:     []CommentRecord{},
	}

	lang, n, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("language: %w", err)
	}
	data = data[n:]
	decoded.Language = token.Language(lang)

	// tokens
	count, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("token count: %w", err)
	}
	data = data[n:]
	for i := 0; i < count; i++ {
		var tok token.Token
		var kind int

		kind, n, err = rezi.DecInt(data)
		if err != nil {
			return fmt.Errorf("token %d: kind: %w", i, err)
		}
		data = data[n:]
		tok.Kind = token.Kind(kind)

		tok.Lexeme, n, err = decLexeme(data)
		if err != nil {
			return fmt.Errorf("token %d: %w", i, err)
		}
		data = data[n:]

		decoded.Tokens = append(decoded.Tokens, tok)
	}

	// declarations
	count, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("declaration count: %w", err)
	}
	data = data[n:]
	for i := 0; i < count; i++ {
		var d check.Declaration
		var pt int

		d.Identifier, n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("declaration %d: identifier: %w", i, err)
		}
		data = data[n:]

		pt, n, err = rezi.DecInt(data)
		if err != nil {
			return fmt.Errorf("declaration %d: type: %w", i, err)
		}
		data = data[n:]
		d.Type = token.PrimitiveType(pt)

		d.Position, n, err = decPosition(data)
		if err != nil {
			return fmt.Errorf("declaration %d: %w", i, err)
		}
		data = data[n:]

		decoded.Declarations[d.Identifier] = d
	}

	// flags
	count, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("flag count: %w", err)
	}
	data = data[n:]
	for i := 0; i < count; i++ {
		var f diag.Flag
		var kind int

		kind, n, err = rezi.DecInt(data)
		if err != nil {
			return fmt.Errorf("flag %d: kind: %w", i, err)
		}
		data = data[n:]
		f.Kind = diag.Kind(kind)

		f.Position, n, err = decPosition(data)
		if err != nil {
			return fmt.Errorf("flag %d: %w", i, err)
		}
		data = data[n:]

		f.Message, n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("flag %d: message: %w", i, err)
		}
		data = data[n:]

		decoded.Flags = append(decoded.Flags, f)
	}

	// comments
	count, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("comment count: %w", err)
	}
	data = data[n:]
	for i := 0; i < count; i++ {
		var c CommentRecord
		n, err = rezi.DecBinary(data, &c)
		if err != nil {
			return fmt.Errorf("comment %d: %w", i, err)
		}
		data = data[n:]

		decoded.Comments = append(decoded.Comments, c)
	}

	*r = decoded
	return nil
}

// MarshalBinary converts c into a slice of bytes that can be decoded with
// UnmarshalBinary.
func (c CommentRecord) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, encLexeme(lex.Lexeme{Text: c.Text, Start: c.Start, End: c.End})...)
	data = append(data, rezi.EncInt(int(c.Style))...)

	return data, nil
}

// UnmarshalBinary decodes a CommentRecord from a slice of bytes produced by
// MarshalBinary.
func (c *CommentRecord) UnmarshalBinary(data []byte) error {
	lx, n, err := decLexeme(data)
	if err != nil {
		return err
	}
	data = data[n:]

	style, _, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("style: %w", err)
	}

	c.Text = lx.Text
	c.Start = lx.Start
	c.End = lx.End
	c.Style = CommentStyle(style)

	return nil
}

func encPosition(p lex.Position) []byte {
	var data []byte
	data = append(data, rezi.EncInt(p.Line)...)
	data = append(data, rezi.EncInt(p.Column)...)
	return data
}

func decPosition(data []byte) (lex.Position, int, error) {
	var p lex.Position
	var n int
	var err error

	p.Line, n, err = rezi.DecInt(data)
	if err != nil {
		return p, 0, fmt.Errorf("line: %w", err)
	}
	total := n

	p.Column, n, err = rezi.DecInt(data[total:])
	if err != nil {
		return p, 0, fmt.Errorf("column: %w", err)
	}
	total += n

	return p, total, nil
}

func encLexeme(lx lex.Lexeme) []byte {
	var data []byte
	data = append(data, rezi.EncString(lx.Text)...)
	data = append(data, encPosition(lx.Start)...)
	data = append(data, encPosition(lx.End)...)
	return data
}

func decLexeme(data []byte) (lex.Lexeme, int, error) {
	var lx lex.Lexeme
	var n int
	var err error

	lx.Text, n, err = rezi.DecString(data)
	if err != nil {
		return lx, 0, fmt.Errorf("text: %w", err)
	}
	total := n

	lx.Start, n, err = decPosition(data[total:])
	if err != nil {
		return lx, 0, fmt.Errorf("start: %w", err)
	}
	total += n

	lx.End, n, err = decPosition(data[total:])
	if err != nil {
		return lx, 0, fmt.Errorf("end: %w", err)
	}
	total += n

	return lx, total, nil
}
