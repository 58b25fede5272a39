package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// validBlockParams returns a well-formed parameter set for every block type.
func validBlockParams(t BlockType) BlockParams {
	switch t {
	case BlockStraightSet:
		return BlockParams{StraightSet: &StraightSetParams{Sets: 3, Reps: "8-12", RestSeconds: 90, Tempo: "3-1-1", RIR: intPtr(2)}}
	case BlockSuperset:
		return BlockParams{Superset: &SupersetParams{Sets: 4, FirstExerciseReps: "10", SecondExerciseReps: "12", RestBetweenPairs: 60}}
	case BlockGiantSet:
		return BlockParams{GiantSet: &GiantSetParams{Rounds: 3, RestAfterSeconds: 120}}
	case BlockDropSet:
		return BlockParams{DropSet: &DropSetParams{ExerciseReps: "8", DropSetReps: "max", WeightReductionPercentage: 25}}
	case BlockClusterSet:
		return BlockParams{ClusterSet: &ClusterSetParams{RepsPerCluster: 3, ClustersPerSet: 4, IntraClusterRest: 15}}
	case BlockRestPause:
		return BlockParams{RestPause: &RestPauseParams{RestPauseDuration: 20, MaxRestPauses: 3}}
	case BlockPyramid:
		return BlockParams{Pyramid: &PyramidParams{PyramidOrder: "triangle", Sets: 5, Reps: "12,10,8,10,12"}}
	case BlockPreExhaustion:
		return BlockParams{PreExhaustion: &PreExhaustionParams{IsolationReps: "15", CompoundReps: "8", CompoundExerciseID: "64f0c0ffee0000000000abcd"}}
	case BlockAMRAP:
		return BlockParams{AMRAP: &AMRAPParams{DurationMinutes: 12, TargetReps: "10"}}
	case BlockEMOM:
		return BlockParams{EMOM: &EMOMParams{EMOMMode: "reps", DurationMinutes: 10, TargetReps: "8"}}
	case BlockTabata:
		return BlockParams{Tabata: &TabataParams{WorkSeconds: 20, RestSeconds: 10, Rounds: 8}}
	case BlockForTime:
		return BlockParams{ForTime: &ForTimeParams{TargetReps: "100", TimeCapMinutes: 15}}
	case BlockLadder:
		return BlockParams{Ladder: &LadderParams{LadderOrder: "ascending", Steps: []LadderStep{{Reps: 1, RestSeconds: 30}, {Reps: 2, RestSeconds: 30}}}}
	}
	return BlockParams{}
}

func TestBlockParamsValidate_AllTypes(t *testing.T) {
	for _, blockType := range AllBlockTypes {
		params := validBlockParams(blockType)
		assert.NoError(t, params.Validate(blockType), "block type %s", blockType)
	}
}

func TestBlockParamsValidate_MissingRequiredField(t *testing.T) {
	tests := []struct {
		name      string
		blockType BlockType
		params    BlockParams
	}{
		{"straight set without sets", BlockStraightSet, BlockParams{StraightSet: &StraightSetParams{Reps: "10", RestSeconds: 60}}},
		{"straight set without reps", BlockStraightSet, BlockParams{StraightSet: &StraightSetParams{Sets: 3, RestSeconds: 60}}},
		{"superset without second reps", BlockSuperset, BlockParams{Superset: &SupersetParams{Sets: 3, FirstExerciseReps: "10"}}},
		{"giant set without rounds", BlockGiantSet, BlockParams{GiantSet: &GiantSetParams{RestAfterSeconds: 90}}},
		{"drop set reduction out of range", BlockDropSet, BlockParams{DropSet: &DropSetParams{ExerciseReps: "8", DropSetReps: "max", WeightReductionPercentage: 100}}},
		{"cluster set without rest", BlockClusterSet, BlockParams{ClusterSet: &ClusterSetParams{RepsPerCluster: 3, ClustersPerSet: 4}}},
		{"rest pause without duration", BlockRestPause, BlockParams{RestPause: &RestPauseParams{MaxRestPauses: 3}}},
		{"pyramid with bad order", BlockPyramid, BlockParams{Pyramid: &PyramidParams{PyramidOrder: "sideways", Sets: 3, Reps: "10"}}},
		{"pre-exhaustion without compound exercise", BlockPreExhaustion, BlockParams{PreExhaustion: &PreExhaustionParams{IsolationReps: "15", CompoundReps: "8"}}},
		{"amrap without duration", BlockAMRAP, BlockParams{AMRAP: &AMRAPParams{TargetReps: "10"}}},
		{"emom reps mode without target reps", BlockEMOM, BlockParams{EMOM: &EMOMParams{EMOMMode: "reps", DurationMinutes: 10}}},
		{"emom work mode with work window over a minute", BlockEMOM, BlockParams{EMOM: &EMOMParams{EMOMMode: "work", DurationMinutes: 10, WorkSeconds: 75}}},
		{"emom with bad mode", BlockEMOM, BlockParams{EMOM: &EMOMParams{EMOMMode: "tempo", DurationMinutes: 10}}},
		{"tabata without rounds", BlockTabata, BlockParams{Tabata: &TabataParams{WorkSeconds: 20, RestSeconds: 10}}},
		{"for time without time cap", BlockForTime, BlockParams{ForTime: &ForTimeParams{TargetReps: "100"}}},
		{"ladder without steps", BlockLadder, BlockParams{Ladder: &LadderParams{LadderOrder: "ascending"}}},
		{"ladder with zero-rep step", BlockLadder, BlockParams{Ladder: &LadderParams{LadderOrder: "descending", Steps: []LadderStep{{Reps: 0}}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.Validate(tc.blockType)
			assert.ErrorIs(t, err, ErrInvalidBlockParams)
		})
	}
}

func TestBlockParamsValidate_VariantMismatch(t *testing.T) {
	params := validBlockParams(BlockTabata)
	err := params.Validate(BlockAMRAP)
	assert.ErrorIs(t, err, ErrInvalidBlockParams)
}

func TestBlockParamsValidate_NoVariant(t *testing.T) {
	var params BlockParams
	err := params.Validate(BlockStraightSet)
	assert.ErrorIs(t, err, ErrInvalidBlockParams)
}

func TestBlockParamsValidate_MultipleVariants(t *testing.T) {
	params := validBlockParams(BlockStraightSet)
	params.AMRAP = &AMRAPParams{DurationMinutes: 10}
	err := params.Validate(BlockStraightSet)
	assert.ErrorIs(t, err, ErrInvalidBlockParams)
}

func TestBlockParamsValidate_UnknownType(t *testing.T) {
	params := validBlockParams(BlockStraightSet)
	err := params.Validate(BlockType("mega_set"))
	assert.ErrorIs(t, err, ErrUnknownBlockType)
}

func TestBlockSchema_CoversAllTypes(t *testing.T) {
	for _, blockType := range AllBlockTypes {
		schema, err := BlockSchema(blockType)
		require.NoError(t, err, "block type %s", blockType)
		assert.NotEmpty(t, schema, "block type %s", blockType)
	}
}

func TestBlockSchema_UnknownType(t *testing.T) {
	_, err := BlockSchema(BlockType("mega_set"))
	assert.ErrorIs(t, err, ErrUnknownBlockType)
}
