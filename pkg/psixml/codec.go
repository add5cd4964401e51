package psixml

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
)

const bufferSize = 256 * 1024

// ErrNotEntrySet is returned when the document root is not an entrySet.
var ErrNotEntrySet = errors.New("psixml: document root is not entrySet")

// Decode reads a whole PSI-MI XML document.
func Decode(r io.Reader) (*EntrySet, error) {
	set := NewEntrySet()
	err := walkEntries(r, set, func(e *Entry) error {
		set.Entries = append(set.Entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// DecodeEntries streams the entries of a document to fn one at a time. It
// stops at the first error returned by fn.
func DecodeEntries(r io.Reader, fn func(*Entry) error) error {
	return walkEntries(r, NewEntrySet(), fn)
}

func walkEntries(r io.Reader, set *EntrySet, fn func(*Entry) error) error {
	dec := xml.NewDecoder(bufio.NewReaderSize(r, bufferSize))
	rootSeen := false
	index := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("psixml: read token: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !rootSeen {
			if se.Name.Local != "entrySet" {
				return fmt.Errorf("%w: found %q", ErrNotEntrySet, se.Name.Local)
			}
			rootSeen = true
			readRootAttrs(se, set)
			continue
		}
		if se.Name.Local != "entry" {
			if err := dec.Skip(); err != nil {
				return fmt.Errorf("psixml: skip %s: %w", se.Name.Local, err)
			}
			continue
		}
		var e Entry
		if err := dec.DecodeElement(&e, &se); err != nil {
			return fmt.Errorf("psixml: decode entry %d: %w", index, err)
		}
		if err := fn(&e); err != nil {
			return err
		}
		index++
	}
	if !rootSeen {
		return ErrNotEntrySet
	}
	return nil
}

func readRootAttrs(se xml.StartElement, set *EntrySet) {
	for _, a := range se.Attr {
		n, err := strconv.Atoi(a.Value)
		if err != nil {
			continue
		}
		switch a.Name.Local {
		case "level":
			set.Level = n
		case "version":
			set.Version = n
		case "minorVersion":
			set.MinorVersion = n
		}
	}
}

// Encode writes set as an indented PSI-MI XML document.
func Encode(w io.Writer, set *EntrySet) error {
	if set == nil {
		return errors.New("psixml: nil entry set")
	}
	out := *set
	out.XMLName = xml.Name{Local: "entrySet"}
	if out.Xmlns == "" {
		out.Xmlns = Namespace
	}
	bw := bufio.NewWriterSize(w, bufferSize)
	if _, err := io.WriteString(bw, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(bw)
	enc.Indent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("psixml: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("psixml: encode: %w", err)
	}
	if _, err := io.WriteString(bw, "\n"); err != nil {
		return err
	}
	return bw.Flush()
}
