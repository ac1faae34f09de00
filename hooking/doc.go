// Package hooking provides hierarchical hooks with two dispatch modes.
//
// A Type declares named hooks. Callbacks registered on a type run for all the
// entities of the type and of the types derived from it, and an Entity can
// register callbacks of its own without affecting its type. Every hook
// inherits the callbacks of the hook it was derived from, so the callbacks of
// a raise form an ordered chain from the root type down to the entity.
//
// Raise runs the chain once, ancestors first. RaiseAround runs it the other
// way round as around-advice: the most specific callback runs first and hands
// control on with Event.Advance until the terminal operation is reached.
//
//	docType := hooking.NewType("Document")
//	docType.DeclareHook("write", "path")
//
//	docType.On("write", func(ev *hooking.Event, path string) (any, error) {
//		log.Println("writing", path)
//		return ev.Advance()
//	})
//
//	doc := docType.NewEntity("doc", nil)
//	doc.RaiseAround("write", persist, "a.txt")
//
// The package does not synchronize. All the registrations and raises of one
// type hierarchy must happen on a single goroutine.
package hooking
