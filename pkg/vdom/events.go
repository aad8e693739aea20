package vdom

// On binds handler to the named event. The attribute key is "on" + name,
// which DiffProps treats as a listener. handler may be any form
// Handler.Invoke accepts.
func On(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// Shorthands for the events the hosts in this module dispatch.
func OnClick(handler any) EventHandler    { return On("click", handler) }
func OnDblClick(handler any) EventHandler { return On("dblclick", handler) }
func OnInput(handler any) EventHandler    { return On("input", handler) }
func OnChange(handler any) EventHandler   { return On("change", handler) }
func OnSubmit(handler any) EventHandler   { return On("submit", handler) }
func OnKeyDown(handler any) EventHandler  { return On("keydown", handler) }
func OnKeyUp(handler any) EventHandler    { return On("keyup", handler) }
func OnFocus(handler any) EventHandler    { return On("focus", handler) }
func OnBlur(handler any) EventHandler     { return On("blur", handler) }
