// Package validation gates roster writes against the fixed member schema.
//
// The schema is a small table of field validators evaluated in a loop. Full
// mode requires every required field; Partial mode checks only what was
// supplied. Both reject unknown keys, including a client supplied id.
package validation

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/okian/roster/internal/domain/model"
)

// Payload is a decoded JSON object keyed by field name.
type Payload map[string]json.RawMessage

// field describes one writable member field.
type field struct {
	name     string
	required bool
	// allowBlank permits "" (and whitespace) as a value.
	allowBlank bool
	// full and patch bind the coerced value into the output shapes.
	full  func(*model.Fields, string)
	patch func(*model.Patch, string)
}

var schema = []field{ //nolint:gochecknoglobals // fixed member schema
	{
		name: "position", required: true,
		full:  func(f *model.Fields, v string) { f.Position = v },
		patch: func(p *model.Patch, v string) { p.Position = &v },
	},
	{
		name: "name", required: true,
		full:  func(f *model.Fields, v string) { f.Name = v },
		patch: func(p *model.Patch, v string) { p.Name = &v },
	},
	{
		name: "hometown", required: true,
		full:  func(f *model.Fields, v string) { f.Hometown = v },
		patch: func(p *model.Patch, v string) { p.Hometown = &v },
	},
	{
		name: "year", required: true,
		full:  func(f *model.Fields, v string) { f.Year = v },
		patch: func(p *model.Patch, v string) { p.Year = &v },
	},
	{
		name: "major", required: true,
		full:  func(f *model.Fields, v string) { f.Major = v },
		patch: func(p *model.Patch, v string) { p.Major = &v },
	},
	{
		name: "bio", allowBlank: true,
		full:  func(f *model.Fields, v string) { f.Bio = v },
		patch: func(p *model.Patch, v string) { p.Bio = &v },
	},
	{
		name: "img", allowBlank: true,
		full:  func(f *model.Fields, v string) { f.Img = v },
		patch: func(p *model.Patch, v string) { p.Img = &v },
	},
}

// known reports whether name is a writable field.
func known(name string) bool {
	for _, f := range schema {
		if f.name == name {
			return true
		}
	}
	return false
}

// Decode reads a JSON object from r. Unparsable or non-object bodies produce
// a SchemaKey violation rather than an error value, so callers always render
// them as client errors.
func Decode(r io.Reader) (Payload, Errors) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Errors{SchemaKey: {MsgInvalidInput}}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		if len(data) > 0 && !json.Valid(data) {
			return nil, Errors{SchemaKey: {MsgInvalidJSON}}
		}
		return nil, Errors{SchemaKey: {MsgInvalidInput}}
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, Errors{SchemaKey: {MsgInvalidJSON}}
	}
	return p, nil
}

// Full validates a create/replace payload. Every required field must be
// present, a string, and not blank.
func Full(p Payload) (model.Fields, Errors) {
	var out model.Fields
	errs := unknownFields(p)
	for _, f := range schema {
		raw, ok := p[f.name]
		if !ok {
			if f.required {
				errs.Add(f.name, MsgMissing)
			}
			continue
		}
		v, msg := coerce(f, raw)
		if msg != "" {
			errs.Add(f.name, msg)
			continue
		}
		f.full(&out, v)
	}
	return out, errs.nilIfEmpty()
}

// Partial validates a patch payload. Only supplied fields are checked; an
// empty object is a valid no-op.
func Partial(p Payload) (model.Patch, Errors) {
	var out model.Patch
	errs := unknownFields(p)
	for _, f := range schema {
		raw, ok := p[f.name]
		if !ok {
			continue
		}
		v, msg := coerce(f, raw)
		if msg != "" {
			errs.Add(f.name, msg)
			continue
		}
		f.patch(&out, v)
	}
	return out, errs.nilIfEmpty()
}

func unknownFields(p Payload) Errors {
	errs := Errors{}
	for name := range p {
		if !known(name) {
			errs.Add(name, MsgUnknown)
		}
	}
	return errs
}

// coerce converts raw into a string for f, returning a violation message on failure.
func coerce(f field, raw json.RawMessage) (string, string) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return "", MsgNull
	}
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", MsgNotString
	}
	var v string
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return "", MsgNotString
	}
	// Whitespace-only counts as blank; other values are stored untrimmed.
	if !f.allowBlank && strings.TrimSpace(v) == "" {
		return "", MsgBlank
	}
	return v, ""
}
