// # internal/sema/capability.go
package sema

import "jounce/internal/types"

// The capability tables are fixed: calls are checked by callee name against
// the annotation of the enclosing function or component. A @client function
// may not reach server-only APIs and a @server function may not reach
// client-only APIs.
var serverOnlyAPIs = map[string]bool{
	"db_query":   true,
	"db_execute": true,
	"read_file":  true,
	"write_file": true,
	"env_var":    true,
}

var clientOnlyAPIs = map[string]bool{
	"alert":             true,
	"navigate":          true,
	"fetch":             true,
	"local_storage_get": true,
	"local_storage_set": true,
}

// builtinSignatures covers the callable runtime surface that is always in
// scope. signal/computed/effect are handled specially by the call checker
// before this table is consulted; they appear here only so resolution finds
// them.
func builtinSignatures() map[string]*types.Type {
	anyT := types.Unknown
	return map[string]*types.Type{
		"signal":   types.Function([]*types.Type{anyT}, anyT),
		"computed": types.Function([]*types.Type{anyT}, anyT),
		"effect":   types.Function([]*types.Type{anyT}, types.Unit),

		"println":    types.Function([]*types.Type{anyT}, types.Unit),
		"to_string":  types.Function([]*types.Type{anyT}, types.String),
		"parse_int":  types.Function([]*types.Type{types.String}, types.Option(types.Int)),
		"string_len": types.Function([]*types.Type{types.String}, types.Int),

		"db_query":   types.Function([]*types.Type{types.String}, anyT),
		"db_execute": types.Function([]*types.Type{types.String}, types.Unit),
		"read_file":  types.Function([]*types.Type{types.String}, types.Result(types.String, types.String)),
		"write_file": types.Function([]*types.Type{types.String, types.String}, types.Result(types.Unit, types.String)),
		"env_var":    types.Function([]*types.Type{types.String}, types.Option(types.String)),

		"alert":             types.Function([]*types.Type{types.String}, types.Unit),
		"navigate":          types.Function([]*types.Type{types.String}, types.Unit),
		"fetch":             types.Function([]*types.Type{types.String}, anyT),
		"local_storage_get": types.Function([]*types.Type{types.String}, types.Option(types.String)),
		"local_storage_set": types.Function([]*types.Type{types.String, types.String}, types.Unit),
	}
}
