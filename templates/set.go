package templates

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
)

var shortCodeRE = regexp.MustCompile(`^\w{1,64}$`)

// Set is a collection of templates with pairwise distinct short codes.
type Set struct {
	mu     sync.RWMutex
	byCode map[string]types.Template
	order  []string
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{byCode: make(map[string]types.Template)}
}

// Add validates and stores t.
func (s *Set) Add(t types.Template) error {
	if t == nil {
		return types.Errorf(types.KindConfiguration, "template is nil")
	}
	code := t.ShortCode()
	if !shortCodeRE.MatchString(code) {
		return types.Errorf(types.KindConfiguration, "template short code %q does not match %s", code, shortCodeRE)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byCode[code]; dup {
		return types.Errorf(types.KindConfiguration, "template short code %q is already taken", code)
	}
	s.byCode[code] = t
	s.order = append(s.order, code)
	return nil
}

// Lookup returns the template with short code code.
func (s *Set) Lookup(code string) (types.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byCode[code]
	if !ok {
		return nil, types.Errorf(types.KindNotFound, "template %q not found", code)
	}
	return t, nil
}

// All returns every template in registration order.
func (s *Set) All() []types.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Template, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, s.byCode[code])
	}
	return out
}

// For returns the templates valid for a device type.
func (s *Set) For(code model.DeviceType) []types.Template {
	var out []types.Template
	for _, t := range s.All() {
		if t.ValidFor(code) {
			out = append(out, t)
		}
	}
	return out
}

var global = NewSet()

// Default returns the process-wide set.
func Default() *Set {
	return global
}

// Register adds t to the process-wide set. Vendor packages call it from
// init, so a bad or duplicate short code panics at load time.
func Register(t types.Template) {
	if err := global.Add(t); err != nil {
		panic(fmt.Sprintf("templates: %v", err))
	}
}

// Lookup finds a template in the process-wide set.
func Lookup(code string) (types.Template, error) {
	return global.Lookup(code)
}

// All returns the process-wide set.
func All() []types.Template {
	return global.All()
}

// For returns the process-wide templates valid for a device type.
func For(code model.DeviceType) []types.Template {
	return global.For(code)
}
