// mpl-builtins runs the MPL format-conversion and validation builtins
// outside a policy evaluator.
//
// Usage:
//
//	# Call a builtin; arguments are JSON values
//	mpl-builtins call base64.decode '"aGVsbG8="'
//
//	# Arguments as plain strings
//	mpl-builtins call -s yaml.unmarshal 'a: [1, 2]'
//
//	# List the registered builtins
//	mpl-builtins list --family jsonschema
//
//	# Serve JSON-lines requests on stdin with metrics and hot reload
//	mpl-builtins serve --config /etc/mpl/builtins.yaml
//
//	# Inspect recorded calls
//	mpl-builtins evidence query --outcome error --format csv
package main

func main() {
	Execute()
}
