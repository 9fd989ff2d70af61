package projector

import (
	"fmt"
)

//Source locates one dataset on disk
type Source struct {
	Name    string
	Path    string
	Options Options
}

//Library holds the named datasets of a session. It is filled once by NewLibrary and only read afterwards.
type Library struct {
	names    []string
	datasets map[string]*Dataset
}

//NewLibrary loads every source. A dataset that fails to load fails the whole library,
//so a session never offers it.
func NewLibrary(sources []Source) (*Library, error) {
	l := &Library{
		names:    make([]string, 0, len(sources)),
		datasets: make(map[string]*Dataset, len(sources)),
	}

	for _, src := range sources {
		if _, ok := l.datasets[src.Name]; ok {
			return nil, fmt.Errorf("NewLibrary: duplicate dataset name '%s'", src.Name)
		}

		opts := src.Options
		opts.Name = src.Name
		ds, err := Load(src.Path, opts)
		if err != nil {
			return nil, fmt.Errorf("NewLibrary: dataset '%s': %w", src.Name, err)
		}

		l.names = append(l.names, src.Name)
		l.datasets[src.Name] = ds
	}

	return l, nil
}

func (l *Library) Get(name string) (*Dataset, bool) {
	ds, ok := l.datasets[name]
	return ds, ok
}

//Names lists the datasets in load order
func (l *Library) Names() []string {
	return append([]string(nil), l.names...)
}

func (l *Library) Len() int {
	return len(l.names)
}
