package hxel

import "github.com/pthm/hxel/lib/dom"

// DOMHost adapts a lib/dom element to Host.
func DOMHost(el *dom.Element) Host {
	return domHost{el}
}

type domHost struct {
	*dom.Element
}

func (h domHost) AttachShadow() Root {
	return h.Element.AttachShadow()
}

func (h domHost) Observe(obs Observer) {
	h.Element.Observe(obs)
}
