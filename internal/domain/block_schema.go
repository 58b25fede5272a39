package domain

import "fmt"

// FieldKind is the wire type a schema field carries.
type FieldKind string

const (
	FieldInt    FieldKind = "int"
	FieldFloat  FieldKind = "float"
	FieldString FieldKind = "string"
	FieldEnum   FieldKind = "enum"
	FieldSteps  FieldKind = "steps"
)

// SchemaField describes one parameter of a block type. Used by the API
// layer for rendering editors and by validation error messages.
type SchemaField struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	Values   []string  `json:"values,omitempty"` // enum kinds only
}

var blockSchemas = map[BlockType][]SchemaField{
	BlockStraightSet: {
		{Name: "sets", Kind: FieldInt, Required: true},
		{Name: "reps", Kind: FieldString, Required: true},
		{Name: "rest_seconds", Kind: FieldInt, Required: true},
		{Name: "tempo", Kind: FieldString, Required: false},
		{Name: "rir", Kind: FieldInt, Required: false},
	},
	BlockSuperset: {
		{Name: "sets", Kind: FieldInt, Required: true},
		{Name: "first_exercise_reps", Kind: FieldString, Required: true},
		{Name: "second_exercise_reps", Kind: FieldString, Required: true},
		{Name: "rest_between_pairs", Kind: FieldInt, Required: true},
	},
	BlockGiantSet: {
		{Name: "rounds", Kind: FieldInt, Required: true},
		{Name: "rest_after_seconds", Kind: FieldInt, Required: true},
	},
	BlockDropSet: {
		{Name: "exercise_reps", Kind: FieldString, Required: true},
		{Name: "drop_set_reps", Kind: FieldString, Required: true},
		{Name: "weight_reduction_percentage", Kind: FieldFloat, Required: true},
	},
	BlockClusterSet: {
		{Name: "reps_per_cluster", Kind: FieldInt, Required: true},
		{Name: "clusters_per_set", Kind: FieldInt, Required: true},
		{Name: "intra_cluster_rest", Kind: FieldInt, Required: true},
	},
	BlockRestPause: {
		{Name: "rest_pause_duration", Kind: FieldInt, Required: true},
		{Name: "max_rest_pauses", Kind: FieldInt, Required: true},
	},
	BlockPyramid: {
		{Name: "pyramid_order", Kind: FieldEnum, Required: true, Values: []string{"ascending", "descending", "triangle"}},
		{Name: "sets", Kind: FieldInt, Required: true},
		{Name: "reps", Kind: FieldString, Required: true},
		{Name: "weight_kg", Kind: FieldFloat, Required: false},
	},
	BlockPreExhaustion: {
		{Name: "isolation_reps", Kind: FieldString, Required: true},
		{Name: "compound_reps", Kind: FieldString, Required: true},
		{Name: "compound_exercise_id", Kind: FieldString, Required: true},
	},
	BlockAMRAP: {
		{Name: "duration_minutes", Kind: FieldInt, Required: true},
		{Name: "target_reps", Kind: FieldString, Required: false},
	},
	BlockEMOM: {
		{Name: "emom_mode", Kind: FieldEnum, Required: true, Values: []string{"reps", "work"}},
		{Name: "duration_minutes", Kind: FieldInt, Required: true},
		{Name: "target_reps", Kind: FieldString, Required: false},
		{Name: "work_seconds", Kind: FieldInt, Required: false},
	},
	BlockTabata: {
		{Name: "work_seconds", Kind: FieldInt, Required: true},
		{Name: "rest_seconds", Kind: FieldInt, Required: true},
		{Name: "rounds", Kind: FieldInt, Required: true},
		{Name: "rest_after_set", Kind: FieldInt, Required: false},
	},
	BlockForTime: {
		{Name: "target_reps", Kind: FieldString, Required: true},
		{Name: "time_cap_minutes", Kind: FieldInt, Required: true},
	},
	BlockLadder: {
		{Name: "ladder_order", Kind: FieldEnum, Required: true, Values: []string{"ascending", "descending"}},
		{Name: "steps", Kind: FieldSteps, Required: true},
	},
}

// BlockSchema returns the parameter schema for a block type.
// The returned slice must not be mutated by callers.
func BlockSchema(t BlockType) ([]SchemaField, error) {
	schema, ok := blockSchemas[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, t)
	}
	return schema, nil
}
