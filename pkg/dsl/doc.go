/*
Package dsl provides a fluent Go builder for cuepoint unit configurations.

It is an alternative to YAML or JSON files when a unit is generated from
code or assembled in tests.

Example usage:

	unit := dsl.New()

	unit.Variable("score", "number", 0)

	unit.Node("submit").Tag("button")

	unit.On("press", "#submit").
		Do("adjustVariable", map[string]any{"variable": "score", "value": 10})

	unit.Branch("end").
		When("score", domain.OpGreaterEqual, 10).GoTo("pass").
		Otherwise("retry")

	loader, err := unit.Build()
	// ... pass the loader's configuration to cuepoint.Engine.Init
*/
package dsl
