package capture

// TestCode identifies one field-test type on a work order.
type TestCode string

const (
	TestPECC TestCode = "PECC" // leak test, dispenser containment boxes
	TestPEMH TestCode = "PEMH" // leak test, tank manholes
	TestPESC TestCode = "PESC" // leak test, spill containers
	TestPVSC TestCode = "PVSC" // vacuum test, spill containers
	TestPMC  TestCode = "PMC"  // hose conductivity measurement
)

// Scope selects which asset hierarchy a test enumerates.
type Scope int

const (
	ScopeDispenser Scope = iota
	ScopeTank
)

type FieldKind int

const (
	FieldTime FieldKind = iota
	FieldNumber
)

// Field is one required entry of a reading record. Time fields stay HH:MM
// strings in the payload; number fields are coerced at submit.
type Field struct {
	Key  string
	Kind FieldKind
}

// Definition describes how one test type is captured. SelfScoped tests attach
// the reading to the parent asset itself instead of its leaves; CollectTags
// tests union every included leaf's tags into one payload-level tag list.
type Definition struct {
	Code        TestCode
	Name        string
	Scope       Scope
	SelfScoped  bool
	Fields      []Field
	CollectTags bool
}

var leakFields = []Field{
	{Key: "start_time", Kind: FieldTime},
	{Key: "end_time", Kind: FieldTime},
	{Key: "initial_height", Kind: FieldNumber},
	{Key: "final_height", Kind: FieldNumber},
}

var definitions = []Definition{
	{
		Code:       TestPECC,
		Name:       "Prueba Estanqueidad Cajas Contenedoras",
		Scope:      ScopeDispenser,
		SelfScoped: true,
		Fields:     leakFields,
	},
	{
		Code:   TestPEMH,
		Name:   "Prueba Estanqueidad Manholes",
		Scope:  ScopeTank,
		Fields: leakFields,
	},
	{
		Code:       TestPESC,
		Name:       "Prueba Estanqueidad Spill Container",
		Scope:      ScopeTank,
		SelfScoped: true,
		Fields:     leakFields,
	},
	{
		Code:       TestPVSC,
		Name:       "Prueba Vacio Spill Container",
		Scope:      ScopeTank,
		SelfScoped: true,
		Fields: []Field{
			{Key: "start_time", Kind: FieldTime},
			{Key: "end_time", Kind: FieldTime},
			{Key: "initial_vacuum", Kind: FieldNumber},
			{Key: "final_vacuum", Kind: FieldNumber},
		},
	},
	{
		Code:        TestPMC,
		Name:        "Prueba Medición de Conductividad",
		Scope:       ScopeDispenser,
		Fields:      []Field{{Key: "resistance_ohms", Kind: FieldNumber}},
		CollectTags: true,
	},
}

// Lookup returns the definition for a test code.
func Lookup(code TestCode) (Definition, bool) {
	for _, d := range definitions {
		if d.Code == code {
			return d, true
		}
	}
	return Definition{}, false
}

// Codes lists every known test code in hub display order.
func Codes() []TestCode {
	out := make([]TestCode, len(definitions))
	for i, d := range definitions {
		out[i] = d.Code
	}
	return out
}
