package xmlrpc

import (
	"encoding/base64"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// valueDecoder reads XML-RPC values from a token stream.
type valueDecoder struct {
	d *xml.Decoder
}

func newValueDecoder(r io.Reader) *valueDecoder {
	return &valueDecoder{d: xml.NewDecoder(r)}
}

func (vd *valueDecoder) nextStart() (xml.StartElement, error) {
	for {
		token, err := vd.d.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if elem, ok := token.(xml.StartElement); ok {
			return elem, nil
		}
	}
}

func (vd *valueDecoder) expectStart(name string) error {
	elem, err := vd.nextStart()
	if err != nil {
		return err
	}
	if elem.Name.Local != name {
		return errors.Errorf("expected <%s>, found <%s>", name, elem.Name.Local)
	}
	return nil
}

// text collects character data up to the closing tag of name.
func (vd *valueDecoder) text(name string) (string, error) {
	var sb strings.Builder
	for {
		token, err := vd.d.Token()
		if err != nil {
			return "", err
		}
		switch t := token.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			if t.Name.Local == name {
				return sb.String(), nil
			}
		case xml.StartElement:
			return "", errors.Errorf("unexpected <%s> inside <%s>", t.Name.Local, name)
		}
	}
}

// skipTo consumes tokens through the closing tag of name.
func (vd *valueDecoder) skipTo(name string) error {
	for {
		token, err := vd.d.Token()
		if err != nil {
			return err
		}
		if end, ok := token.(xml.EndElement); ok && end.Name.Local == name {
			return nil
		}
	}
}

// value parses a value after its <value> tag has been read. On success the
// closing </value> has been consumed as well.
func (vd *valueDecoder) value() (interface{}, error) {
	var untyped strings.Builder
	for {
		token, err := vd.d.Token()
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			v, err := vd.typed(t.Name.Local)
			if err != nil {
				return nil, err
			}
			if err := vd.skipTo("value"); err != nil {
				return nil, err
			}
			return v, nil
		case xml.CharData:
			untyped.Write(t)
		case xml.EndElement:
			// A value without a type element is a string.
			s := untyped.String()
			if strings.TrimSpace(s) == "" {
				return "", nil
			}
			return s, nil
		}
	}
}

func (vd *valueDecoder) typed(kind string) (interface{}, error) {
	switch kind {
	case "boolean":
		s, err := vd.text(kind)
		if err != nil {
			return nil, err
		}
		switch strings.TrimSpace(s) {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
		return nil, errors.Errorf("invalid boolean %q", s)
	case "i4", "int":
		s, err := vd.text(kind)
		if err != nil {
			return nil, err
		}
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return nil, errors.Wrap(err, "int")
		}
		return int32(i), nil
	case "double":
		s, err := vd.text(kind)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, errors.Wrap(err, "double")
		}
		return f, nil
	case "string":
		return vd.text(kind)
	case "base64":
		s, err := vd.text(kind)
		if err != nil {
			return nil, err
		}
		bs, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, errors.Wrap(err, "base64")
		}
		return bs, nil
	case "array":
		return vd.array()
	case "struct":
		return vd.structure()
	}
	return nil, errors.Errorf("unsupported value type <%s>", kind)
}

func (vd *valueDecoder) array() (interface{}, error) {
	if err := vd.expectStart("data"); err != nil {
		return nil, err
	}
	a := []interface{}{}
	for {
		token, err := vd.d.Token()
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local != "value" {
				return nil, errors.Errorf("unexpected <%s> in array", t.Name.Local)
			}
			v, err := vd.value()
			if err != nil {
				return nil, err
			}
			a = append(a, v)
		case xml.EndElement:
			if t.Name.Local == "data" {
				return a, vd.skipTo("array")
			}
		}
	}
}

func (vd *valueDecoder) structure() (interface{}, error) {
	m := make(map[string]interface{})
	var name string
	var member interface{}
	for {
		token, err := vd.d.Token()
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "member":
				name, member = "", nil
			case "name":
				if name, err = vd.text("name"); err != nil {
					return nil, err
				}
			case "value":
				if member, err = vd.value(); err != nil {
					return nil, err
				}
			default:
				return nil, errors.Errorf("unexpected <%s> in struct", t.Name.Local)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "member":
				m[name] = member
			case "struct":
				return m, nil
			}
		}
	}
}

func parseRequest(r io.Reader) (string, []interface{}, error) {
	vd := newValueDecoder(r)
	if err := vd.expectStart("methodCall"); err != nil {
		return "", nil, err
	}
	if err := vd.expectStart("methodName"); err != nil {
		return "", nil, err
	}
	name, err := vd.text("methodName")
	if err != nil {
		return "", nil, err
	}
	name = strings.TrimSpace(name)

	var args []interface{}
	for {
		token, err := vd.d.Token()
		if err == io.EOF {
			return name, args, nil
		} else if err != nil {
			return "", nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "value" {
				v, err := vd.value()
				if err != nil {
					return "", nil, err
				}
				args = append(args, v)
			}
		case xml.EndElement:
			if t.Name.Local == "methodCall" {
				return name, args, nil
			}
		}
	}
}

// parseResponse returns ok=false together with the fault struct when the
// remote side answered with a fault.
func parseResponse(r io.Reader) (bool, interface{}, error) {
	vd := newValueDecoder(r)
	if err := vd.expectStart("methodResponse"); err != nil {
		return false, nil, err
	}
	elem, err := vd.nextStart()
	if err != nil {
		return false, nil, err
	}
	switch elem.Name.Local {
	case "params", "fault":
		for {
			inner, err := vd.nextStart()
			if err != nil {
				return false, nil, err
			}
			if inner.Name.Local == "value" {
				break
			}
		}
		result, err := vd.value()
		if err != nil {
			return false, nil, err
		}
		return elem.Name.Local == "params", result, nil
	}
	return false, nil, errors.Errorf("unexpected <%s> in methodResponse", elem.Name.Local)
}
