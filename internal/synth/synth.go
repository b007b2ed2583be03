// Package synth builds schematic types for functions, ADT variants and
// record fields from surface type signatures.
package synth

import (
	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
)

// Synthesizer lowers surface type signatures to schematic types, sharing
// one variable allocator with the rest of the pipeline so no index ever
// collides across functions, ADTs, or later inference passes.
type Synthesizer struct {
	alloc *langtypes.VarAllocator
}

// New returns a Synthesizer drawing fresh variables from alloc.
func New(alloc *langtypes.VarAllocator) *Synthesizer {
	return &Synthesizer{alloc: alloc}
}

// LowerSignature lowers one surface type tree into a schematic type. Every
// named type argument (e.g. `a`) occurring anywhere in sig is given exactly
// one FixedVar, shared across all its occurrences, with the union of the
// constraints declared at any of its occurrences (spec.md §4.3 "allocating
// a fixed variable for each named argument ... collect constraints
// declared at signature level and attach them to the matching fixed
// variables"). Every Wildcard gets its own fresh Var.
func (s *Synthesizer) LowerSignature(sig program.SurfaceType) langtypes.Type {
	fixed := s.collectFixedVars(sig)
	return s.lower(sig, fixed)
}

func (s *Synthesizer) collectFixedVars(sig program.SurfaceType) map[string]langtypes.Type {
	constraints := map[string][]ids.ClassId{}
	var walk func(program.SurfaceType)
	walk = func(st program.SurfaceType) {
		if st.Kind == program.SurfaceTypeArg {
			constraints[st.Name] = langtypes.SortedUniqueClasses(append(constraints[st.Name], st.Constraints...))
		}
		for _, c := range st.Children {
			walk(c)
		}
	}
	walk(sig)

	out := map[string]langtypes.Type{}
	// Deterministic allocation order regardless of map iteration: walk again
	// in signature order and allocate on first sight.
	var allocate func(program.SurfaceType)
	allocate = func(st program.SurfaceType) {
		if st.Kind == program.SurfaceTypeArg {
			if _, ok := out[st.Name]; !ok {
				out[st.Name] = s.alloc.FreshFixedVar(st.Name, constraints[st.Name]...)
			}
		}
		for _, c := range st.Children {
			allocate(c)
		}
	}
	allocate(sig)
	return out
}

func (s *Synthesizer) lower(st program.SurfaceType, fixed map[string]langtypes.Type) langtypes.Type {
	switch st.Kind {
	case program.SurfaceTuple:
		children := make([]langtypes.Type, len(st.Children))
		for i, c := range st.Children {
			children[i] = s.lower(c, fixed)
		}
		return langtypes.Tuple{Children: children}
	case program.SurfaceFunction:
		return langtypes.Function{
			From: s.lower(st.Children[0], fixed),
			To:   s.lower(st.Children[1], fixed),
		}
	case program.SurfaceNamed:
		args := make([]langtypes.Type, len(st.Children))
		for i, c := range st.Children {
			args[i] = s.lower(c, fixed)
		}
		return langtypes.Named{Name: st.Name, Def: st.Def, Args: args}
	case program.SurfaceTypeArg:
		return fixed[st.Name]
	case program.SurfaceWildcard:
		return s.alloc.FreshVar()
	default:
		panic("synth: unknown surface type kind")
	}
}

// FunctionSignature lowers a user-signature function's ordered parameter
// surface types and result surface type into one curried schematic type,
// sharing fixed variables across parameters and result.
func (s *Synthesizer) FunctionSignature(params []program.SurfaceType, result program.SurfaceType) langtypes.Type {
	combined := program.SurfaceType{Kind: program.SurfaceTuple, Children: append(append([]program.SurfaceType{}, params...), result)}
	fixed := s.collectFixedVars(combined)

	items := make([]langtypes.Type, len(params))
	for i, p := range params {
		items[i] = s.lower(p, fixed)
	}
	return langtypes.Curry(items, s.lower(result, fixed))
}

// UntypedFunction builds the initial schematic type for a function with no
// user signature: a fresh variable per argument and for the result
//.
func (s *Synthesizer) UntypedFunction(arity int) langtypes.Type {
	items := make([]langtypes.Type, arity)
	for i := range items {
		items[i] = s.alloc.FreshVar()
	}
	return langtypes.Curry(items, s.alloc.FreshVar())
}

// ADTVariant builds the schematic function type
// item1 -> ... -> itemN -> Named(T, args) for one variant, fills in the
// variant's Items, and returns the type. It does not set the constructor
// function's SchematicType.
func (s *Synthesizer) ADTVariant(td *program.TypeDef, variantIndex int) langtypes.Type {
	v := &td.Variants[variantIndex]
	_, result, fixed := s.typeDefResult(td)

	items := make([]langtypes.Type, len(v.ItemSigs))
	for i, sig := range v.ItemSigs {
		items[i] = s.lower(sig, fixed)
	}
	v.Items = items
	return langtypes.Curry(items, result)
}

// RecordType builds the schematic function type from field types to the
// record's named type, and fills in each field's schematic type.
func (s *Synthesizer) RecordType(td *program.TypeDef) langtypes.Type {
	_, result, fixed := s.typeDefResult(td)

	items := make([]langtypes.Type, len(td.Fields))
	for i := range td.Fields {
		items[i] = s.lower(td.Fields[i].Sig, fixed)
		td.Fields[i].Type = items[i]
	}
	return langtypes.Curry(items, result)
}

// typeDefResult builds td's Named result type from its declared type
// arguments and a name->Var map so that variant item / field surface sigs
// referencing those same names (e.g. `a` in `Option a = None | Some a`)
// resolve to the identical variable used in the result type, not a fresh
// unrelated one.
func (s *Synthesizer) typeDefResult(td *program.TypeDef) ([]langtypes.Type, langtypes.Type, map[string]langtypes.Type) {
	typeArgs := make([]langtypes.Type, len(td.TypeArgs))
	fixed := map[string]langtypes.Type{}
	for i, idx := range td.TypeArgs {
		v := langtypes.Var{Index: idx}
		typeArgs[i] = v
		if i < len(td.TypeArgNames) {
			fixed[td.TypeArgNames[i]] = v
		}
	}
	return typeArgs, langtypes.Named{Name: td.Name, Def: td.Id, Args: typeArgs}, fixed
}
