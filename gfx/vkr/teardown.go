// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import "github.com/devblok/prism/gfx"

type releaser struct {
	name    string
	release func()
}

// teardown releases what was pushed onto it in reverse order.
type teardown struct {
	stack []releaser
}

func (t *teardown) push(name string, release func()) {
	t.stack = append(t.stack, releaser{name: name, release: release})
}

func (t *teardown) pushReleasable(name string, r gfx.Releasable) {
	t.push(name, r.Release)
}

func (t *teardown) names() []string {
	names := make([]string, 0, len(t.stack))
	for _, r := range t.stack {
		names = append(names, r.name)
	}
	return names
}

func (t *teardown) release() {
	for idx := len(t.stack) - 1; idx >= 0; idx-- {
		log("teardown").Debugf("releasing %s", t.stack[idx].name)
		t.stack[idx].release()
	}
	t.stack = nil
}
