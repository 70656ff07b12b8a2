package nta

// Template is a parameterless automaton template.
type Template struct {
	Name         string
	Declarations []string
	Locations    []*Location
	Transitions  []*Transition
	Init         string
}

// Location is a template location. ID is unique across the document.
type Location struct {
	ID        string
	Name      string
	Invariant string
	Committed bool
}

// Transition is an edge between two locations of the same template.
type Transition struct {
	Source string
	Target string
	Guard  string
	Sync   string
	Assign string
}

// NewTemplate creates an empty template.
func NewTemplate(name string) *Template {
	return &Template{Name: name}
}

// Declare appends local declaration lines, e.g. clocks.
func (t *Template) Declare(lines ...string) *Template {
	t.Declarations = append(t.Declarations, lines...)
	return t
}

// AddLocation adds a location with ID "<template>_<name>". The first
// location added is the initial one until SetInit says otherwise.
func (t *Template) AddLocation(name string) *Location {
	loc := &Location{ID: t.Name + "_" + name, Name: name}
	t.Locations = append(t.Locations, loc)
	if t.Init == "" {
		t.Init = loc.ID
	}
	return loc
}

// Location returns the location with the given name, or nil.
func (t *Template) Location(name string) *Location {
	for _, l := range t.Locations {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// SetInit marks loc as the initial location.
func (t *Template) SetInit(loc *Location) {
	t.Init = loc.ID
}

// Connect adds a transition from one location to another.
func (t *Template) Connect(from, to *Location) *Transition {
	tr := &Transition{Source: from.ID, Target: to.ID}
	t.Transitions = append(t.Transitions, tr)
	return tr
}

// WithInvariant sets the location invariant.
func (l *Location) WithInvariant(inv string) *Location {
	l.Invariant = inv
	return l
}

// MarkCommitted makes the location committed: time cannot pass in it.
func (l *Location) MarkCommitted() *Location {
	l.Committed = true
	return l
}

// WithGuard sets the transition guard.
func (tr *Transition) WithGuard(g string) *Transition {
	tr.Guard = g
	return tr
}

// WithSync sets the synchronisation label, e.g. "done_A!" or "start_A?".
func (tr *Transition) WithSync(s string) *Transition {
	tr.Sync = s
	return tr
}

// WithAssign sets the assignment (update) label.
func (tr *Transition) WithAssign(a string) *Transition {
	tr.Assign = a
	return tr
}
