package nta

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/rtcheck/internal/errors"
)

// paired lists the channel families whose every sender must have a receiver
// somewhere in the network and vice versa.
var paired = []string{"start_", "done_", "release_"}

// Validate checks structural well-formedness of the document.
func (d *Document) Validate() error {
	ids := make(map[string]string)
	for _, t := range d.Templates {
		local := make(map[string]bool, len(t.Locations))
		for _, l := range t.Locations {
			if owner, dup := ids[l.ID]; dup {
				return errors.New(errors.ErrCodeNTADuplicate,
					fmt.Sprintf("location id %q used in templates %q and %q", l.ID, owner, t.Name))
			}
			ids[l.ID] = t.Name
			local[l.ID] = true
		}

		if t.Init == "" || !local[t.Init] {
			return errors.New(errors.ErrCodeNTADangling,
				fmt.Sprintf("template %q: initial location %q does not exist", t.Name, t.Init))
		}

		for i, tr := range t.Transitions {
			if !local[tr.Source] || !local[tr.Target] {
				return errors.New(errors.ErrCodeNTADangling,
					fmt.Sprintf("template %q: transition %d (%s -> %s) references a location outside the template",
						t.Name, i, tr.Source, tr.Target))
			}
		}
	}

	for _, in := range d.Instances {
		if d.Template(in.Template) == nil {
			return errors.New(errors.ErrCodeNTADangling,
				fmt.Sprintf("process %q instantiates unknown template %q", in.Process, in.Template))
		}
	}

	return d.checkSyncPairs()
}

func (d *Document) checkSyncPairs() error {
	senders := make(map[string]bool)
	receivers := make(map[string]bool)
	for _, t := range d.Templates {
		for _, tr := range t.Transitions {
			ch, dir, ok := ParseSync(tr.Sync)
			if !ok || !isPaired(ch) {
				continue
			}
			if dir == '!' {
				senders[ch] = true
			} else {
				receivers[ch] = true
			}
		}
	}

	var unpaired []string
	for ch := range senders {
		if !receivers[ch] {
			unpaired = append(unpaired, ch+"!")
		}
	}
	for ch := range receivers {
		if !senders[ch] {
			unpaired = append(unpaired, ch+"?")
		}
	}
	if len(unpaired) == 0 {
		return nil
	}
	sort.Strings(unpaired)
	return errors.New(errors.ErrCodeNTAUnpairedSync,
		fmt.Sprintf("synchronisations without a counterpart: %s", strings.Join(unpaired, ", ")))
}

// ParseSync splits a synchronisation label such as "done_A!" into channel
// and direction ('!' or '?').
func ParseSync(sync string) (channel string, dir byte, ok bool) {
	s := strings.TrimSpace(sync)
	if len(s) < 2 {
		return "", 0, false
	}
	dir = s[len(s)-1]
	if dir != '!' && dir != '?' {
		return "", 0, false
	}
	return strings.TrimSpace(s[:len(s)-1]), dir, true
}

func isPaired(ch string) bool {
	for _, p := range paired {
		if strings.HasPrefix(ch, p) {
			return true
		}
	}
	return false
}
