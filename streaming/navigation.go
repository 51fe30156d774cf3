package streaming

// The engine has no access to the hosting shell's page-transition mechanism.
// It records a one-shot navigation intent and emits NavigationRequested; the
// shell performs the transition and clears the intent.

// requestNavigationLocked sets the one-shot navigation intent.
func (e *Engine) requestNavigationLocked(target Location) {
	t := target
	e.st.navigationTo = &t
	e.emitNavigationRequested(target)
}

// ClearNavigationIntent resets the navigation intent after the transition
// has been performed. Clearing an already-clear intent is a no-op.
func (e *Engine) ClearNavigationIntent() {
	e.mu.Lock()
	e.st.navigationTo = nil
	e.mu.Unlock()
}

// BindNavigator wires the shell's page-transition mechanism to the engine's
// navigation intents: each request invokes navigate and then clears the
// intent. It returns a function that unbinds again.
func (e *Engine) BindNavigator(navigate func(Location)) func() {
	return e.OnNavigationRequested(func(target Location) {
		navigate(target)
		e.ClearNavigationIntent()
	})
}
