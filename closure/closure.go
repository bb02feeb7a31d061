// Package closure computes the set of class files reachable from a set of
// root classes by following names found in constant pools.
//
// Any Utf8 constant shaped like a class name is followed, whether or not a
// Class entry refers to it. That also catches names passed to reflective
// lookups as string literals, at the price of following strings that are
// not class references at all. Names that never appear literally are
// missed.
package closure

import (
	"bufio"
	"maps"
	"slices"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/classdeps/classfile"
)

// DependencySet maps an internal class name to the base of the search path
// element it was found in.
type DependencySet map[string]string

func (d DependencySet) Sorted() []string {
	return slices.Sorted(maps.Keys(d))
}

type config struct {
	exclude *ignore.GitIgnore
	log     commonlog.Logger
}

type Option func(*config)

// WithExclude skips class names matched by the given gitignore-style
// patterns. A nil matcher excludes nothing.
func WithExclude(gi *ignore.GitIgnore) Option {
	return func(c *config) { c.exclude = gi }
}

func WithLogger(log commonlog.Logger) Option {
	return func(c *config) { c.log = log }
}

func newConfig(opts []Option) *config {
	c := &config{log: commonlog.GetLogger("classdeps.closure")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Finder walks class references over an ordered list of locators. The
// first locator that has a class wins.
type Finder struct {
	locators []Locator
	cfg      *config
}

func NewFinder(locators []Locator, opts ...Option) *Finder {
	return &Finder{locators: locators, cfg: newConfig(opts)}
}

// Compute returns the closure of roots over searchPaths in a fresh set.
// Unresolvable names and unreadable class files are left out; nothing is
// reported to the caller except through the logger.
func Compute(roots []string, searchPaths []string, opts ...Option) DependencySet {
	cfg := newConfig(opts)
	locators := NewLocators(searchPaths, cfg.log)
	defer func() {
		for _, l := range locators {
			if err := l.Close(); err != nil {
				cfg.log.Warningf("close %s: %s", l.Base(), err)
			}
		}
	}()

	f := &Finder{locators: locators, cfg: cfg}
	deps := DependencySet{}
	f.Extend(deps, roots...)
	return deps
}

// Extend adds the closure of roots to deps. Names already in deps are not
// visited again, so extending a populated set only scans new classes.
// deps must not be extended concurrently.
func (f *Finder) Extend(deps DependencySet, roots ...string) {
	for _, root := range roots {
		f.visit(deps, root)
	}
}

func (f *Finder) visit(deps DependencySet, name string) {
	// deps doubles as the visited set: a name is recorded before its
	// references are followed, which is what terminates cycles.
	if _, ok := deps[name]; ok {
		return
	}
	if f.cfg.exclude != nil && f.cfg.exclude.MatchesPath(name) {
		f.cfg.log.Debugf("excluded %s", name)
		return
	}

	loc := f.locate(name)
	if loc == nil {
		return
	}
	deps[name] = loc.Base()

	strs, err := f.scan(loc, name)
	if err != nil {
		f.cfg.log.Warningf("skipping references of %s in %s: %s", name, loc.Base(), err)
		return
	}
	for _, s := range strs {
		if IsCandidateName(s) {
			f.visit(deps, s)
		}
	}
}

func (f *Finder) locate(name string) Locator {
	for _, l := range f.locators {
		if l.Has(name) {
			return l
		}
	}
	return nil
}

// scan returns the Utf8 constants of one class file by pool slot.
func (f *Finder) scan(loc Locator, name string) ([]string, error) {
	rc, err := loc.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	_, cp, err := classfile.ReadConstantPool(bufio.NewReader(rc))
	if err != nil {
		return nil, err
	}
	return cp.Utf8Strings(), nil
}
