package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"reflect"

	"github.com/coderi421/adkit/statement"
)

const (
	envelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	xsiNamespace      = "http://www.w3.org/2001/XMLSchema-instance"
)

// RequestHeader is sent with every call.
type RequestHeader struct {
	NetworkCode     string `xml:"networkCode,omitempty"`
	ApplicationName string `xml:"applicationName,omitempty"`
}

type requestEnvelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	SoapEnv string   `xml:"xmlns:soapenv,attr"`
	Xsi     string   `xml:"xmlns:xsi,attr"`
	Header  struct {
		RequestHeader headerElement
	} `xml:"soapenv:Header"`
	Body struct {
		Operation operationElement
	} `xml:"soapenv:Body"`
}

type headerElement struct {
	namespace string
	header    RequestHeader
}

func (h headerElement) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return e.EncodeElement(h.header, xml.StartElement{Name: xml.Name{Space: h.namespace, Local: "RequestHeader"}})
}

type operationElement struct {
	namespace string
	name      string
	request   any
}

// MarshalXML 直接用 operation 作为外层元素，request 的字段就是它的子元素
func (o operationElement) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Space: o.namespace, Local: o.name}}
	if o.request != nil {
		return e.EncodeElement(o.request, start)
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func encodeEnvelope(w io.Writer, namespace string, header RequestHeader, inv *Invocation) error {
	env := requestEnvelope{SoapEnv: envelopeNamespace, Xsi: xsiNamespace}
	env.Header.RequestHeader = headerElement{namespace: namespace, header: header}
	env.Body.Operation = operationElement{namespace: namespace, name: inv.Operation, request: inv.Request}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(env)
}

type responseEnvelope struct {
	Body struct {
		Fault   *Fault `xml:"Fault"`
		Content []byte `xml:",innerxml"`
	} `xml:"Body"`
}

// decodeEnvelope returns the fault carried by data, or decodes the first
// rval element into resp. When resp points to a slice every rval is
// appended to it, as getAll* operations return one rval per row.
// A response without rval leaves resp untouched.
func decodeEnvelope(data []byte, resp any) (*Fault, error) {
	var env responseEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("soap: decode envelope: %w", err)
	}
	if env.Body.Fault != nil {
		return env.Body.Fault, nil
	}
	if resp == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(resp)
	many := rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Slice

	dec := xml.NewDecoder(bytes.NewReader(env.Body.Content))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("soap: decode body: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "rval" {
			continue
		}
		if err = dec.DecodeElement(resp, &se); err != nil {
			return nil, fmt.Errorf("soap: decode rval: %w", err)
		}
		if !many {
			return nil, nil
		}
	}
}

// Statement is the wire form of statement.Statement:
//
//	<query>WHERE id = :id</query>
//	<values><key>id</key><value xsi:type="NumberValue"><value>1</value></value></values>
type Statement statement.Statement

func (s Statement) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	type entry struct {
		Key   string       `xml:"key"`
		Value valueElement `xml:"value"`
	}
	wire := struct {
		Query  string  `xml:"query"`
		Values []entry `xml:"values"`
	}{Query: s.Query}
	for _, v := range s.Values {
		wire.Values = append(wire.Values, entry{Key: v.Name, Value: valueElement{v: v.Value}})
	}
	return e.EncodeElement(wire, start)
}

type valueElement struct {
	v statement.Value
}

func (v valueElement) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "xsi:type"}, Value: v.v.Type()})
	switch val := v.v.(type) {
	case statement.TextValue:
		return e.EncodeElement(struct {
			V string `xml:"value"`
		}{val.Value}, start)
	case statement.NumberValue:
		return e.EncodeElement(struct {
			V string `xml:"value"`
		}{val.Value}, start)
	case statement.BooleanValue:
		return e.EncodeElement(struct {
			V bool `xml:"value"`
		}{val.Value}, start)
	case statement.DateValue:
		return e.EncodeElement(struct {
			V any `xml:"value"`
		}{val.Value}, start)
	case statement.DateTimeValue:
		return e.EncodeElement(struct {
			V any `xml:"value"`
		}{val.Value}, start)
	default:
		return fmt.Errorf("soap: unsupported bind value %T", v.v)
	}
}
