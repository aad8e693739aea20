// Package demo holds the example applications the CLI renders and serves.
package demo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/vfiber/pkg/vdom"
)

// DispatchKey is the prop carrying a func(func()) error that runs a
// callback on the goroutine driving the reconciler. Components that update
// state from their own goroutines use it.
const DispatchKey = "dispatch"

// App describes one demo application.
type App struct {
	Name        string
	Description string
	Component   vdom.Component
}

// Root returns the description to render for the app. dispatch may be nil
// when nothing drives the reconciler after the first render.
func (a App) Root(dispatch func(func()) error) *vdom.VNode {
	props := vdom.Props{}
	if dispatch != nil {
		props[DispatchKey] = dispatch
	}
	return vdom.Build(a.Component, props)
}

var apps = map[string]App{
	"counter": {
		Name:        "counter",
		Description: "increment and decrement buttons",
		Component:   Counter,
	},
	"todo": {
		Name:        "todo",
		Description: "todo list with add, toggle and clear",
		Component:   Todo,
	},
	"clock": {
		Name:        "clock",
		Description: "clock updated every second by an effect",
		Component:   Clock,
	},
}

// Lookup returns the app registered under name.
func Lookup(name string) (App, error) {
	app, ok := apps[name]
	if !ok {
		return App{}, fmt.Errorf("unknown app %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return app, nil
}

// Names returns the registered app names in order.
func Names() []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
