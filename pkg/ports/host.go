package ports

// AudioController plays media on behalf of trigger actions.
// When absent, media actions fall back to flags on the target node.
type AudioController interface {
	Play(target string) error
	Pause(target string) error
	Stop(target string) error
}

// LayerController shows and hides layers on behalf of trigger actions.
// When absent, layer actions fall back to node visibility.
type LayerController interface {
	Show(layer string) error
	Hide(layer string) error
	HideAll() error
	IsVisible(layer string) bool
}

// FunctionRunner executes host-registered functions for the executeFunction action.
type FunctionRunner interface {
	Execute(name string, args map[string]any) (any, error)
}

// CancelFunc cancels work queued on a Scheduler.
type CancelFunc func()

// Scheduler defers a function until the host decides to run it.
type Scheduler interface {
	Defer(fn func()) CancelFunc
}

// Navigator moves between content units on behalf of navigation actions and
// branch decisions.
type Navigator interface {
	Next() error
	Prev() error
	GoTo(index int) error
}

// SceneNavigator is implemented by navigators that also understand scenes.
type SceneNavigator interface {
	GoToScene(scene string) error
}
