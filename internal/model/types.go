package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Result is the envelope every API response is wrapped in.
type Result[T any] struct {
	Ok  *T      `json:"Ok"`
	Err *string `json:"Err"`
}

// Status describes the backend server.
type Status struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	WelcomeTitle   string `json:"welcome_title"`
	WelcomeContent string `json:"welcome_content"` // markdown
}

// EntryType is the kind of a directory child.
type EntryType string

const (
	TypeDirectory EntryType = "Directory"
	TypeFile      EntryType = "File"
)

// IndexError is the reason the backend could not load an entry.
type IndexError string

const (
	NotFound  IndexError = "NotFound"
	Forbidden IndexError = "Forbidden"
)

// DirectoryChild is one element listed inside a directory.
type DirectoryChild struct {
	Name string    `json:"name"`
	Type EntryType `json:"type"`
	URL  string    `json:"url"`  // cdn url
	Path string    `json:"path"` // index path, url encoded
}

// Detail is the variant part of an entry: exactly one of *Directory, *File
// or *EntryError.
type Detail interface {
	variant() string
}

type Directory struct {
	Children []DirectoryChild `json:"children"`
}

type File struct {
	MimeType string `json:"mime_type"`
	URL      string `json:"url"`
}

type EntryError struct {
	Error IndexError `json:"error"`
}

func (*Directory) variant() string  { return "Directory" }
func (*File) variant() string       { return "File" }
func (*EntryError) variant() string { return "Error" }

// EntryInfo is a node of the remote index.
type EntryInfo struct {
	Name       string
	Path       string // url encoded
	PathPretty string
	Detail     Detail

	// Conflicted is set when the payload populated more than one detail
	// variant. Error wins over File, File wins over Directory.
	Conflicted bool
}

var errNoVariant = errors.New("entry detail has no variant")

type entryJSON struct {
	Detail     json.RawMessage `json:"detail"`
	Name       string          `json:"name"`
	Path       string          `json:"path"`
	PathPretty string          `json:"path_pretty"`
}

// UnmarshalJSON accepts both the keyed detail form
// ({"Directory": {...}, "File": null, "Error": null}) and the internally
// tagged form ({"type": "Directory", "children": [...]}).
func (e *EntryInfo) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	detail, conflicted, err := decodeDetail(raw.Detail)
	if err != nil {
		return fmt.Errorf("decode detail: %w", err)
	}
	*e = EntryInfo{
		Name:       raw.Name,
		Path:       raw.Path,
		PathPretty: raw.PathPretty,
		Detail:     detail,
		Conflicted: conflicted,
	}
	return nil
}

// MarshalJSON writes the keyed detail form.
func (e EntryInfo) MarshalJSON() ([]byte, error) {
	keyed := struct {
		Directory *Directory  `json:"Directory"`
		Error     *EntryError `json:"Error"`
		File      *File       `json:"File"`
	}{}
	switch d := e.Detail.(type) {
	case *Directory:
		keyed.Directory = d
	case *File:
		keyed.File = d
	case *EntryError:
		keyed.Error = d
	default:
		return nil, errNoVariant
	}
	detail, err := json.Marshal(keyed)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entryJSON{
		Detail:     detail,
		Name:       e.Name,
		Path:       e.Path,
		PathPretty: e.PathPretty,
	})
}

func decodeDetail(data json.RawMessage) (Detail, bool, error) {
	if isNull(data) {
		return nil, false, errNoVariant
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false, err
	}

	if tag, ok := fields["type"]; ok {
		var name string
		if err := json.Unmarshal(tag, &name); err != nil {
			return nil, false, err
		}
		d, err := decodeVariant(name, data)
		return d, false, err
	}

	// Later variants override earlier ones.
	var (
		detail Detail
		found  int
	)
	for _, name := range []string{"Directory", "File", "Error"} {
		raw := fields[name]
		if isNull(raw) {
			continue
		}
		d, err := decodeVariant(name, raw)
		if err != nil {
			return nil, false, err
		}
		detail = d
		found++
	}
	if found == 0 {
		return nil, false, errNoVariant
	}
	return detail, found > 1, nil
}

func decodeVariant(name string, data []byte) (Detail, error) {
	var d Detail
	switch name {
	case "Directory":
		d = &Directory{}
	case "File":
		d = &File{}
	case "Error":
		d = &EntryError{}
	default:
		return nil, fmt.Errorf("unknown detail type %q", name)
	}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
