package domain

import (
	"errors"
	"fmt"
)

// BlockType identifies how an exercise block is executed.
type BlockType string

const (
	BlockStraightSet   BlockType = "straight_set"
	BlockSuperset      BlockType = "superset"
	BlockGiantSet      BlockType = "giant_set"
	BlockDropSet       BlockType = "drop_set"
	BlockClusterSet    BlockType = "cluster_set"
	BlockRestPause     BlockType = "rest_pause"
	BlockPyramid       BlockType = "pyramid"
	BlockPreExhaustion BlockType = "pre_exhaustion"
	BlockAMRAP         BlockType = "amrap"
	BlockEMOM          BlockType = "emom"
	BlockTabata        BlockType = "tabata"
	BlockForTime       BlockType = "for_time"
	BlockLadder        BlockType = "ladder"
)

// AllBlockTypes lists every supported block type, in display order.
var AllBlockTypes = []BlockType{
	BlockStraightSet, BlockSuperset, BlockGiantSet, BlockDropSet,
	BlockClusterSet, BlockRestPause, BlockPyramid, BlockPreExhaustion,
	BlockAMRAP, BlockEMOM, BlockTabata, BlockForTime, BlockLadder,
}

var (
	ErrUnknownBlockType   = errors.New("unknown block type")
	ErrInvalidBlockParams = errors.New("invalid block parameters")
)

// Per-type parameter structs. Reps are strings because coaches write
// rep schemes like "8-12" or "10,8,6", not single numbers.

type StraightSetParams struct {
	Sets        int    `bson:"sets" json:"sets"`
	Reps        string `bson:"reps" json:"reps"`
	RestSeconds int    `bson:"restSeconds" json:"restSeconds"`
	Tempo       string `bson:"tempo,omitempty" json:"tempo,omitempty"`
	RIR         *int   `bson:"rir,omitempty" json:"rir,omitempty"`
}

type SupersetParams struct {
	Sets               int    `bson:"sets" json:"sets"`
	FirstExerciseReps  string `bson:"firstExerciseReps" json:"firstExerciseReps"`
	SecondExerciseReps string `bson:"secondExerciseReps" json:"secondExerciseReps"`
	RestBetweenPairs   int    `bson:"restBetweenPairs" json:"restBetweenPairs"`
}

type GiantSetParams struct {
	Rounds           int `bson:"rounds" json:"rounds"`
	RestAfterSeconds int `bson:"restAfterSeconds" json:"restAfterSeconds"`
}

type DropSetParams struct {
	ExerciseReps              string  `bson:"exerciseReps" json:"exerciseReps"`
	DropSetReps               string  `bson:"dropSetReps" json:"dropSetReps"`
	WeightReductionPercentage float64 `bson:"weightReductionPercentage" json:"weightReductionPercentage"`
}

type ClusterSetParams struct {
	RepsPerCluster   int `bson:"repsPerCluster" json:"repsPerCluster"`
	ClustersPerSet   int `bson:"clustersPerSet" json:"clustersPerSet"`
	IntraClusterRest int `bson:"intraClusterRest" json:"intraClusterRest"`
}

type RestPauseParams struct {
	RestPauseDuration int `bson:"restPauseDuration" json:"restPauseDuration"`
	MaxRestPauses     int `bson:"maxRestPauses" json:"maxRestPauses"`
}

// PyramidOrder is "ascending", "descending" or "triangle".
type PyramidParams struct {
	PyramidOrder string  `bson:"pyramidOrder" json:"pyramidOrder"`
	Sets         int     `bson:"sets" json:"sets"`
	Reps         string  `bson:"reps" json:"reps"`
	WeightKg     float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
}

type PreExhaustionParams struct {
	IsolationReps      string `bson:"isolationReps" json:"isolationReps"`
	CompoundReps       string `bson:"compoundReps" json:"compoundReps"`
	CompoundExerciseID string `bson:"compoundExerciseId" json:"compoundExerciseId"`
}

type AMRAPParams struct {
	DurationMinutes int    `bson:"durationMinutes" json:"durationMinutes"`
	TargetReps      string `bson:"targetReps,omitempty" json:"targetReps,omitempty"`
}

// EMOMMode is "reps" (fixed reps each minute) or "work" (fixed work window).
type EMOMParams struct {
	EMOMMode        string `bson:"emomMode" json:"emomMode"`
	DurationMinutes int    `bson:"durationMinutes" json:"durationMinutes"`
	TargetReps      string `bson:"targetReps,omitempty" json:"targetReps,omitempty"`
	WorkSeconds     int    `bson:"workSeconds,omitempty" json:"workSeconds,omitempty"`
}

type TabataParams struct {
	WorkSeconds  int `bson:"workSeconds" json:"workSeconds"`
	RestSeconds  int `bson:"restSeconds" json:"restSeconds"`
	Rounds       int `bson:"rounds" json:"rounds"`
	RestAfterSet int `bson:"restAfterSet,omitempty" json:"restAfterSet,omitempty"`
}

type ForTimeParams struct {
	TargetReps     string `bson:"targetReps" json:"targetReps"`
	TimeCapMinutes int    `bson:"timeCapMinutes" json:"timeCapMinutes"`
}

// LadderStep is one rung of a ladder block.
type LadderStep struct {
	Reps        int     `bson:"reps" json:"reps"`
	WeightKg    float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	RestSeconds int     `bson:"restSeconds" json:"restSeconds"`
}

// LadderOrder is "ascending" or "descending".
type LadderParams struct {
	LadderOrder string       `bson:"ladderOrder" json:"ladderOrder"`
	Steps       []LadderStep `bson:"steps" json:"steps"`
}

// BlockParams is the tagged union of the 13 per-type parameter sets.
// Exactly one variant pointer must be non-nil, and it must match the
// BlockType declared on the owning rule or template block.
type BlockParams struct {
	StraightSet   *StraightSetParams   `bson:"straightSet,omitempty" json:"straightSet,omitempty"`
	Superset      *SupersetParams      `bson:"superset,omitempty" json:"superset,omitempty"`
	GiantSet      *GiantSetParams      `bson:"giantSet,omitempty" json:"giantSet,omitempty"`
	DropSet       *DropSetParams       `bson:"dropSet,omitempty" json:"dropSet,omitempty"`
	ClusterSet    *ClusterSetParams    `bson:"clusterSet,omitempty" json:"clusterSet,omitempty"`
	RestPause     *RestPauseParams     `bson:"restPause,omitempty" json:"restPause,omitempty"`
	Pyramid       *PyramidParams       `bson:"pyramid,omitempty" json:"pyramid,omitempty"`
	PreExhaustion *PreExhaustionParams `bson:"preExhaustion,omitempty" json:"preExhaustion,omitempty"`
	AMRAP         *AMRAPParams         `bson:"amrap,omitempty" json:"amrap,omitempty"`
	EMOM          *EMOMParams          `bson:"emom,omitempty" json:"emom,omitempty"`
	Tabata        *TabataParams        `bson:"tabata,omitempty" json:"tabata,omitempty"`
	ForTime       *ForTimeParams       `bson:"forTime,omitempty" json:"forTime,omitempty"`
	Ladder        *LadderParams        `bson:"ladder,omitempty" json:"ladder,omitempty"`
}

// variant returns the single set variant pointer, or an error when zero
// or more than one variant is populated.
func (p *BlockParams) variant() (BlockType, interface{}, error) {
	var (
		found BlockType
		value interface{}
		count int
	)
	set := func(t BlockType, v interface{}) {
		found, value = t, v
		count++
	}
	if p.StraightSet != nil {
		set(BlockStraightSet, p.StraightSet)
	}
	if p.Superset != nil {
		set(BlockSuperset, p.Superset)
	}
	if p.GiantSet != nil {
		set(BlockGiantSet, p.GiantSet)
	}
	if p.DropSet != nil {
		set(BlockDropSet, p.DropSet)
	}
	if p.ClusterSet != nil {
		set(BlockClusterSet, p.ClusterSet)
	}
	if p.RestPause != nil {
		set(BlockRestPause, p.RestPause)
	}
	if p.Pyramid != nil {
		set(BlockPyramid, p.Pyramid)
	}
	if p.PreExhaustion != nil {
		set(BlockPreExhaustion, p.PreExhaustion)
	}
	if p.AMRAP != nil {
		set(BlockAMRAP, p.AMRAP)
	}
	if p.EMOM != nil {
		set(BlockEMOM, p.EMOM)
	}
	if p.Tabata != nil {
		set(BlockTabata, p.Tabata)
	}
	if p.ForTime != nil {
		set(BlockForTime, p.ForTime)
	}
	if p.Ladder != nil {
		set(BlockLadder, p.Ladder)
	}
	if count == 0 {
		return "", nil, fmt.Errorf("%w: no parameter variant set", ErrInvalidBlockParams)
	}
	if count > 1 {
		return "", nil, fmt.Errorf("%w: multiple parameter variants set", ErrInvalidBlockParams)
	}
	return found, value, nil
}

// Validate checks that the params carry exactly one variant, that it
// matches blockType, and that the variant's required fields are present.
func (p *BlockParams) Validate(blockType BlockType) error {
	if !IsKnownBlockType(blockType) {
		return fmt.Errorf("%w: %q", ErrUnknownBlockType, blockType)
	}
	actual, _, err := p.variant()
	if err != nil {
		return err
	}
	if actual != blockType {
		return fmt.Errorf("%w: params are %s, rule is %s", ErrInvalidBlockParams, actual, blockType)
	}
	return p.validateVariant(blockType)
}

func (p *BlockParams) validateVariant(t BlockType) error {
	missing := func(field string) error {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidBlockParams, t, field)
	}
	switch t {
	case BlockStraightSet:
		v := p.StraightSet
		if v.Sets <= 0 {
			return missing("sets")
		}
		if v.Reps == "" {
			return missing("reps")
		}
		if v.RestSeconds < 0 {
			return missing("rest_seconds")
		}
	case BlockSuperset:
		v := p.Superset
		if v.Sets <= 0 {
			return missing("sets")
		}
		if v.FirstExerciseReps == "" {
			return missing("first_exercise_reps")
		}
		if v.SecondExerciseReps == "" {
			return missing("second_exercise_reps")
		}
		if v.RestBetweenPairs < 0 {
			return missing("rest_between_pairs")
		}
	case BlockGiantSet:
		v := p.GiantSet
		if v.Rounds <= 0 {
			return missing("rounds")
		}
		if v.RestAfterSeconds < 0 {
			return missing("rest_after_seconds")
		}
	case BlockDropSet:
		v := p.DropSet
		if v.ExerciseReps == "" {
			return missing("exercise_reps")
		}
		if v.DropSetReps == "" {
			return missing("drop_set_reps")
		}
		if v.WeightReductionPercentage <= 0 || v.WeightReductionPercentage >= 100 {
			return missing("weight_reduction_percentage")
		}
	case BlockClusterSet:
		v := p.ClusterSet
		if v.RepsPerCluster <= 0 {
			return missing("reps_per_cluster")
		}
		if v.ClustersPerSet <= 0 {
			return missing("clusters_per_set")
		}
		if v.IntraClusterRest <= 0 {
			return missing("intra_cluster_rest")
		}
	case BlockRestPause:
		v := p.RestPause
		if v.RestPauseDuration <= 0 {
			return missing("rest_pause_duration")
		}
		if v.MaxRestPauses <= 0 {
			return missing("max_rest_pauses")
		}
	case BlockPyramid:
		v := p.Pyramid
		if v.PyramidOrder != "ascending" && v.PyramidOrder != "descending" && v.PyramidOrder != "triangle" {
			return missing("pyramid_order")
		}
		if v.Sets <= 0 {
			return missing("sets")
		}
		if v.Reps == "" {
			return missing("reps")
		}
	case BlockPreExhaustion:
		v := p.PreExhaustion
		if v.IsolationReps == "" {
			return missing("isolation_reps")
		}
		if v.CompoundReps == "" {
			return missing("compound_reps")
		}
		if v.CompoundExerciseID == "" {
			return missing("compound_exercise_id")
		}
	case BlockAMRAP:
		if p.AMRAP.DurationMinutes <= 0 {
			return missing("duration_minutes")
		}
	case BlockEMOM:
		v := p.EMOM
		if v.DurationMinutes <= 0 {
			return missing("duration_minutes")
		}
		switch v.EMOMMode {
		case "reps":
			if v.TargetReps == "" {
				return missing("target_reps")
			}
		case "work":
			if v.WorkSeconds <= 0 || v.WorkSeconds >= 60 {
				return missing("work_seconds")
			}
		default:
			return missing("emom_mode")
		}
	case BlockTabata:
		v := p.Tabata
		if v.WorkSeconds <= 0 {
			return missing("work_seconds")
		}
		if v.RestSeconds <= 0 {
			return missing("rest_seconds")
		}
		if v.Rounds <= 0 {
			return missing("rounds")
		}
	case BlockForTime:
		v := p.ForTime
		if v.TargetReps == "" {
			return missing("target_reps")
		}
		if v.TimeCapMinutes <= 0 {
			return missing("time_cap_minutes")
		}
	case BlockLadder:
		v := p.Ladder
		if v.LadderOrder != "ascending" && v.LadderOrder != "descending" {
			return missing("ladder_order")
		}
		if len(v.Steps) == 0 {
			return missing("steps")
		}
		for _, step := range v.Steps {
			if step.Reps <= 0 {
				return missing("steps[].reps")
			}
		}
	}
	return nil
}

// IsKnownBlockType reports whether t is one of the 13 supported types.
func IsKnownBlockType(t BlockType) bool {
	switch t {
	case BlockStraightSet, BlockSuperset, BlockGiantSet, BlockDropSet,
		BlockClusterSet, BlockRestPause, BlockPyramid, BlockPreExhaustion,
		BlockAMRAP, BlockEMOM, BlockTabata, BlockForTime, BlockLadder:
		return true
	}
	return false
}
