// Package config holds process-wide flags and naming constants shared
// across the type checker and evaluator.
package config

// IsTestMode normalizes generated type-variable names (langtypes.Var's
// String() output) so golden-file tests stay deterministic across runs.
// Set once at process startup by test harnesses.
var IsTestMode = false

// MaxCallDepthDefault bounds evaluator recursion before it reports a
// structured error instead of overflowing the native call stack.
const MaxCallDepthDefault = 100000

// Built-in module names recognized by the extern registry.
const (
	ModuleInt          = "Int"
	ModuleFloat        = "Float"
	ModuleString       = "String"
	ModuleList         = "List"
	ModuleMap          = "Map"
	ModuleStdOps       = "Std.Ops"
	ModuleStdUtil      = "Std.Util"
	ModuleStdUtilBasic = "Std.Util.Basic"
)

// Built-in type and class names the process-wide context (L9) resolves once.
const (
	BoolTypeName      = "Bool"
	OrderingTypeName  = "Ordering"
	OptionTypeName    = "Option"
	ShowClassName     = "Show"
	EqClassName       = "Eq"
	OrdClassName      = "Ord"
	ShowMemberName    = "show"
	EqMemberName      = "opEq"
	PartialCmpMember  = "partialCmp"
	CmpMemberName     = "cmp"
	OrderingLTVariant = "LT"
	OrderingEQVariant = "EQ"
	OrderingGTVariant = "GT"
	OptionNoneVariant = "None"
	OptionSomeVariant = "Some"
)

// ModuleMain / MainFunctionName name the program entry point.
const (
	ModuleMain       = "Main"
	MainFunctionName = "main"
)
