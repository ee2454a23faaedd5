package xbrl

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"FinScreen/internal/domain/models"
)

// Instance is a parsed XBRL instance document indexed by "prefix:LocalName".
type Instance struct {
	facts map[string][]models.DataItem
	count int
}

var _ Document = (*Instance)(nil)

// ErrNotInstance is returned when the input has no xbrl root element.
var ErrNotInstance = errors.New("xbrl: not an instance document")

// Parse reads an instance document. Only elements carrying a contextRef
// attribute are recorded; their text content becomes the item value and
// xsi:nil or empty content yields a nil value.
func Parse(r io.Reader) (*Instance, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToLower(charset) {
		case "utf-8", "utf8", "":
			return input, nil
		}
		return nil, fmt.Errorf("xbrl: unsupported charset %q", charset)
	}

	inst := &Instance{facts: make(map[string][]models.DataItem)}
	sawRoot := false

	var (
		open  *pending
		depth int
	)
	for {
		// RawToken keeps the declared prefix in Name.Space, which is what
		// the taxonomy keys are written against.
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xbrl: decode: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !sawRoot {
				if t.Name.Local != "xbrl" {
					return nil, ErrNotInstance
				}
				sawRoot = true
				continue
			}
			if open != nil {
				depth++
				continue
			}
			if p := startFact(t); p != nil {
				open = p
				depth = 0
			}
		case xml.CharData:
			if open != nil && depth == 0 {
				open.text.Write(t)
			}
		case xml.EndElement:
			if open == nil {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			inst.add(open.finish())
			open = nil
		}
	}

	if !sawRoot {
		return nil, ErrNotInstance
	}
	return inst, nil
}

// ParseFile opens and parses the instance at path.
func ParseFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("xbrl: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// DataList returns the items recorded for key in document order.
func (i *Instance) DataList(key string) []models.DataItem {
	items := i.facts[key]
	out := make([]models.DataItem, len(items))
	copy(out, items)
	return out
}

// Len is the number of fact items recorded.
func (i *Instance) Len() int { return i.count }

func (i *Instance) add(key string, item models.DataItem) {
	i.facts[key] = append(i.facts[key], item)
	i.count++
}

type pending struct {
	key     string
	context string
	isNil   bool
	text    bytes.Buffer
}

func startFact(t xml.StartElement) *pending {
	p := &pending{}
	hasContext := false
	for _, a := range t.Attr {
		switch {
		case a.Name.Local == "contextRef":
			p.context = a.Value
			hasContext = true
		case a.Name.Local == "nil" && a.Name.Space == "xsi":
			p.isNil = strings.EqualFold(strings.TrimSpace(a.Value), "true")
		}
	}
	if !hasContext {
		return nil
	}
	if t.Name.Space != "" {
		p.key = t.Name.Space + ":" + t.Name.Local
	} else {
		p.key = t.Name.Local
	}
	return p
}

func (p *pending) finish() (string, models.DataItem) {
	item := models.DataItem{ContextRef: p.context}
	if p.isNil {
		return p.key, item
	}
	v := strings.TrimSpace(p.text.String())
	if v != "" {
		item.Value = &v
	}
	return p.key, item
}
