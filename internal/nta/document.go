// Package nta builds networks of timed automata and serializes them as
// UPPAAL flat-1.5 XML.
//
// A Document is assembled once by the generators and then validated and
// serialized; it is not meant to be mutated afterwards.
package nta

import (
	"fmt"

	"github.com/felixgeelhaar/rtcheck/internal/errors"
)

// Document is a complete network: global declarations, templates and the
// process instances of the system block.
type Document struct {
	Declarations []string
	Templates    []*Template
	Instances    []Instance
}

// Instance binds a process name to a template in the system block.
type Instance struct {
	Process  string
	Template string
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Declare appends global declaration lines.
func (d *Document) Declare(lines ...string) {
	d.Declarations = append(d.Declarations, lines...)
}

// AddTemplate registers a template. Template names are unique.
func (d *Document) AddTemplate(t *Template) error {
	if d.Template(t.Name) != nil {
		return errors.New(errors.ErrCodeNTADuplicate, fmt.Sprintf("template %q already defined", t.Name))
	}
	d.Templates = append(d.Templates, t)
	return nil
}

// Template returns the template with the given name, or nil.
func (d *Document) Template(name string) *Template {
	for _, t := range d.Templates {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Instantiate adds "process = template();" to the system block.
func (d *Document) Instantiate(process, template string) error {
	if d.Template(template) == nil {
		return errors.New(errors.ErrCodeNTADangling,
			fmt.Sprintf("process %q instantiates unknown template %q", process, template))
	}
	for _, in := range d.Instances {
		if in.Process == process {
			return errors.New(errors.ErrCodeNTADuplicate, fmt.Sprintf("process %q already instantiated", process))
		}
	}
	d.Instances = append(d.Instances, Instance{Process: process, Template: template})
	return nil
}

// Add registers a template and instantiates it in one step.
func (d *Document) Add(t *Template, process string) error {
	if err := d.AddTemplate(t); err != nil {
		return err
	}
	return d.Instantiate(process, t.Name)
}
