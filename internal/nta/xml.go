package nta

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/felixgeelhaar/rtcheck/internal/errors"
)

// Doctype is the flat-1.5 document type declaration.
const Doctype = `<!DOCTYPE nta PUBLIC "-//Uppaal Team//DTD Flat System 1.5//EN" "http://www.it.uu.se/research/group/darts/uppaal/flat-1_5.dtd">`

// Label kinds of the flat-1.5 format.
const (
	LabelInvariant = "invariant"
	LabelGuard     = "guard"
	LabelSync      = "synchronisation"
	LabelAssign    = "assignment"
)

type xmlNTA struct {
	XMLName     xml.Name      `xml:"nta"`
	Declaration text          `xml:"declaration"`
	Templates   []xmlTemplate `xml:"template"`
	System      text          `xml:"system"`
}

type xmlTemplate struct {
	Name        string          `xml:"name"`
	Declaration *text           `xml:"declaration,omitempty"`
	Locations   []xmlLocation   `xml:"location"`
	Init        xmlRef          `xml:"init"`
	Transitions []xmlTransition `xml:"transition"`
}

type xmlLocation struct {
	ID        string     `xml:"id,attr"`
	Name      string     `xml:"name"`
	Labels    []xmlLabel `xml:"label"`
	Committed *struct{}  `xml:"committed"`
}

type xmlTransition struct {
	Source xmlRef     `xml:"source"`
	Target xmlRef     `xml:"target"`
	Labels []xmlLabel `xml:"label"`
}

type xmlRef struct {
	Ref string `xml:"ref,attr"`
}

type xmlLabel struct {
	Kind  string `xml:"kind,attr"`
	Value string `xml:",chardata"`
}

// text keeps line breaks literal; encoding/xml would write them as "&#xA;",
// which is valid but unreadable in the checker's editor.
type text struct {
	Inner string `xml:",innerxml"`
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func newText(lines []string) text {
	return text{Inner: escaper.Replace(strings.Join(lines, "\n"))}
}

// Marshal renders the document as flat-1.5 XML.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the XML rendering to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	if _, err := io.WriteString(cw, xml.Header+Doctype+"\n"); err != nil {
		return cw.n, errors.Wrap(errors.ErrCodeNTAMarshal, "failed to write document header", err)
	}

	enc := xml.NewEncoder(cw)
	enc.Indent("", "  ")
	if err := enc.Encode(d.toXML()); err != nil {
		return cw.n, errors.Wrap(errors.ErrCodeNTAMarshal, "failed to encode document", err)
	}
	if _, err := io.WriteString(cw, "\n"); err != nil {
		return cw.n, errors.Wrap(errors.ErrCodeNTAMarshal, "failed to write document", err)
	}
	return cw.n, nil
}

// SystemBlock renders the system declaration: one "P = T();" line per
// instance followed by the process list.
func (d *Document) SystemBlock() string {
	var b strings.Builder
	procs := make([]string, len(d.Instances))
	for i, in := range d.Instances {
		b.WriteString(in.Process + " = " + in.Template + "();\n")
		procs[i] = in.Process
	}
	b.WriteString("system " + strings.Join(procs, ", ") + ";")
	return b.String()
}

func (d *Document) toXML() xmlNTA {
	out := xmlNTA{
		Declaration: newText(d.Declarations),
		System:      text{Inner: escaper.Replace(d.SystemBlock())},
	}
	for _, t := range d.Templates {
		xt := xmlTemplate{Name: t.Name, Init: xmlRef{Ref: t.Init}}
		if len(t.Declarations) > 0 {
			decl := newText(t.Declarations)
			xt.Declaration = &decl
		}
		for _, l := range t.Locations {
			xl := xmlLocation{ID: l.ID, Name: l.Name}
			if l.Invariant != "" {
				xl.Labels = append(xl.Labels, xmlLabel{Kind: LabelInvariant, Value: l.Invariant})
			}
			if l.Committed {
				xl.Committed = &struct{}{}
			}
			xt.Locations = append(xt.Locations, xl)
		}
		for _, tr := range t.Transitions {
			xt.Transitions = append(xt.Transitions, xmlTransition{
				Source: xmlRef{Ref: tr.Source},
				Target: xmlRef{Ref: tr.Target},
				Labels: transitionLabels(tr),
			})
		}
		out.Templates = append(out.Templates, xt)
	}
	return out
}

func transitionLabels(tr *Transition) []xmlLabel {
	var labels []xmlLabel
	if tr.Guard != "" {
		labels = append(labels, xmlLabel{Kind: LabelGuard, Value: tr.Guard})
	}
	if tr.Sync != "" {
		labels = append(labels, xmlLabel{Kind: LabelSync, Value: tr.Sync})
	}
	if tr.Assign != "" {
		labels = append(labels, xmlLabel{Kind: LabelAssign, Value: tr.Assign})
	}
	return labels
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
