package service

import (
	"context"
	"testing"

	"coachfit/coaching-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type progressionFixture struct {
	rules     *memRuleRepo
	templates *memTemplateRepo
	programs  *memProgramRepo
	exercises *memExerciseRepo

	svc ProgressionService

	coachID    primitive.ObjectID
	program    *domain.Program
	template   *domain.WorkoutTemplate
	benchID    primitive.ObjectID
	squatID    primitive.ObjectID
	scheduleID primitive.ObjectID
}

func newProgressionFixture(t *testing.T) *progressionFixture {
	t.Helper()
	ctx := context.Background()

	f := &progressionFixture{
		rules:      newMemRuleRepo(),
		templates:  newMemTemplateRepo(),
		programs:   newMemProgramRepo(),
		exercises:  newMemExerciseRepo(),
		coachID:    primitive.NewObjectID(),
		scheduleID: primitive.NewObjectID(),
	}
	f.svc = NewProgressionService(f.rules, f.templates, f.programs, f.exercises)

	f.benchID, _ = f.exercises.Create(ctx, &domain.Exercise{CoachID: f.coachID, Name: "Bench Press"})
	f.squatID, _ = f.exercises.Create(ctx, &domain.Exercise{CoachID: f.coachID, Name: "Back Squat"})

	f.template = &domain.WorkoutTemplate{
		CoachID: f.coachID,
		Name:    "Full Body",
		Blocks: []domain.TemplateBlock{
			{ExerciseID: f.benchID, BlockType: domain.BlockStraightSet, Params: straightSet(3, "10", 60)},
			{ExerciseID: f.squatID, BlockType: domain.BlockAMRAP, Params: domain.BlockParams{AMRAP: &domain.AMRAPParams{DurationMinutes: 12}}},
		},
	}
	_, err := f.templates.Create(ctx, f.template)
	require.NoError(t, err)

	f.program = &domain.Program{CoachID: f.coachID, Name: "Base Block", DurationWeeks: 4}
	_, err = f.programs.Create(ctx, f.program)
	require.NoError(t, err)

	return f
}

func (f *progressionFixture) copyWeek(t *testing.T, week int) {
	t.Helper()
	err := f.svc.CopyWorkoutToProgram(context.Background(), f.program.ID, f.scheduleID, f.template.ID, week)
	require.NoError(t, err)
}

func TestCopyWorkoutToProgram_Week1RulesAreReal(t *testing.T) {
	f := newProgressionFixture(t)
	f.copyWeek(t, 1)

	rules, err := f.svc.GetProgressionRules(context.Background(), f.program.ID, 1, f.scheduleID)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, 0, rules[0].BlockKey)
	assert.Equal(t, 1, rules[1].BlockKey)
	assert.False(t, rules[0].IsPlaceholder)
	assert.False(t, rules[1].IsPlaceholder)
	assert.Equal(t, f.benchID, rules[0].ExerciseID)
	assert.Equal(t, domain.BlockStraightSet, rules[0].BlockType)
	require.NotNil(t, rules[0].Params.StraightSet)
	assert.Equal(t, 3, rules[0].Params.StraightSet.Sets)
}

func TestCopyWorkoutToProgram_LaterWeeksStartAsPlaceholders(t *testing.T) {
	f := newProgressionFixture(t)
	f.copyWeek(t, 2)

	rules, err := f.svc.GetProgressionRules(context.Background(), f.program.ID, 2, f.scheduleID)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.True(t, rules[0].IsPlaceholder)
	assert.True(t, rules[1].IsPlaceholder)
}

func TestCopyWorkoutToProgram_RerunConverges(t *testing.T) {
	f := newProgressionFixture(t)
	f.copyWeek(t, 1)
	f.copyWeek(t, 1)

	rules, err := f.svc.GetProgressionRules(context.Background(), f.program.ID, 1, f.scheduleID)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestUpdateProgressionRule_TouchesOnlyItsWeek(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	f.copyWeek(t, 1)
	f.copyWeek(t, 2)

	week2, err := f.svc.GetProgressionRules(ctx, f.program.ID, 2, f.scheduleID)
	require.NoError(t, err)

	updated, err := f.svc.UpdateProgressionRule(ctx, f.coachID, week2[0].ID, straightSet(5, "5", 120))
	require.NoError(t, err)
	assert.False(t, updated.IsPlaceholder)
	assert.Equal(t, 5, updated.Params.StraightSet.Sets)

	// Week 1's copy of the same block is untouched.
	week1, err := f.svc.GetProgressionRules(ctx, f.program.ID, 1, f.scheduleID)
	require.NoError(t, err)
	require.NotNil(t, week1[0].Params.StraightSet)
	assert.Equal(t, 3, week1[0].Params.StraightSet.Sets)
	assert.Equal(t, "10", week1[0].Params.StraightSet.Reps)
}

func TestUpdateProgressionRule_RejectsMismatchedParams(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	f.copyWeek(t, 2)

	rules, err := f.svc.GetProgressionRules(ctx, f.program.ID, 2, f.scheduleID)
	require.NoError(t, err)

	// AMRAP params on a straight-set rule must not pass.
	_, err = f.svc.UpdateProgressionRule(ctx, f.coachID, rules[0].ID, domain.BlockParams{AMRAP: &domain.AMRAPParams{DurationMinutes: 10}})
	assert.ErrorIs(t, err, domain.ErrInvalidBlockParams)

	// The failed write leaves the placeholder flag alone.
	after, err := f.svc.GetProgressionRules(ctx, f.program.ID, 2, f.scheduleID)
	require.NoError(t, err)
	assert.True(t, after[0].IsPlaceholder)
}

func TestUpdateProgressionRule_AccessDenied(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	f.copyWeek(t, 1)

	rules, err := f.svc.GetProgressionRules(ctx, f.program.ID, 1, f.scheduleID)
	require.NoError(t, err)

	_, err = f.svc.UpdateProgressionRule(ctx, primitive.NewObjectID(), rules[0].ID, straightSet(4, "8", 90))
	assert.ErrorIs(t, err, ErrRuleAccessDenied)
}

func TestReplaceExercise_KeepsParameters(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	f.copyWeek(t, 3)

	rules, err := f.svc.GetProgressionRules(ctx, f.program.ID, 3, f.scheduleID)
	require.NoError(t, err)
	require.True(t, rules[0].IsPlaceholder)

	updated, err := f.svc.ReplaceExercise(ctx, f.coachID, rules[0].ID, f.squatID)
	require.NoError(t, err)
	assert.Equal(t, f.squatID, updated.ExerciseID)
	assert.False(t, updated.IsPlaceholder)

	// Only the identity changed; every parameter keeps its value.
	require.NotNil(t, updated.Params.StraightSet)
	assert.Equal(t, 3, updated.Params.StraightSet.Sets)
	assert.Equal(t, "10", updated.Params.StraightSet.Reps)
	assert.Equal(t, 60, updated.Params.StraightSet.RestSeconds)
	assert.Equal(t, domain.BlockStraightSet, updated.BlockType)
}

func TestReplaceExercise_UnknownExercise(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	f.copyWeek(t, 1)

	rules, err := f.svc.GetProgressionRules(ctx, f.program.ID, 1, f.scheduleID)
	require.NoError(t, err)

	_, err = f.svc.ReplaceExercise(ctx, f.coachID, rules[0].ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestDeleteProgressionRules_RemovesOnlyThatSchedule(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	otherScheduleID := primitive.NewObjectID()
	f.copyWeek(t, 1)
	require.NoError(t, f.svc.CopyWorkoutToProgram(ctx, f.program.ID, otherScheduleID, f.template.ID, 2))

	require.NoError(t, f.svc.DeleteProgressionRules(ctx, f.scheduleID))

	deleted, err := f.svc.GetProgressionRules(ctx, f.program.ID, 1, f.scheduleID)
	require.NoError(t, err)
	assert.Empty(t, deleted)

	kept, err := f.svc.GetProgressionRules(ctx, f.program.ID, 2, otherScheduleID)
	require.NoError(t, err)
	assert.Len(t, kept, 2)
}

func intRef(v int) *int { return &v }

// paramsForBlock builds a distinct, well-formed parameter set per block
// type so copy tests can tell the variants apart after a round trip.
func paramsForBlock(blockType domain.BlockType) domain.BlockParams {
	switch blockType {
	case domain.BlockStraightSet:
		return domain.BlockParams{StraightSet: &domain.StraightSetParams{Sets: 4, Reps: "6-8", RestSeconds: 120, Tempo: "2-0-2", RIR: intRef(1)}}
	case domain.BlockSuperset:
		return domain.BlockParams{Superset: &domain.SupersetParams{Sets: 3, FirstExerciseReps: "10", SecondExerciseReps: "12", RestBetweenPairs: 75}}
	case domain.BlockGiantSet:
		return domain.BlockParams{GiantSet: &domain.GiantSetParams{Rounds: 4, RestAfterSeconds: 150}}
	case domain.BlockDropSet:
		return domain.BlockParams{DropSet: &domain.DropSetParams{ExerciseReps: "8", DropSetReps: "max", WeightReductionPercentage: 20}}
	case domain.BlockClusterSet:
		return domain.BlockParams{ClusterSet: &domain.ClusterSetParams{RepsPerCluster: 2, ClustersPerSet: 5, IntraClusterRest: 20}}
	case domain.BlockRestPause:
		return domain.BlockParams{RestPause: &domain.RestPauseParams{RestPauseDuration: 15, MaxRestPauses: 4}}
	case domain.BlockPyramid:
		return domain.BlockParams{Pyramid: &domain.PyramidParams{PyramidOrder: "ascending", Sets: 4, Reps: "12,10,8,6"}}
	case domain.BlockPreExhaustion:
		return domain.BlockParams{PreExhaustion: &domain.PreExhaustionParams{IsolationReps: "15", CompoundReps: "8", CompoundExerciseID: primitive.NewObjectID().Hex()}}
	case domain.BlockAMRAP:
		return domain.BlockParams{AMRAP: &domain.AMRAPParams{DurationMinutes: 15, TargetReps: "12"}}
	case domain.BlockEMOM:
		return domain.BlockParams{EMOM: &domain.EMOMParams{EMOMMode: "work", DurationMinutes: 12, WorkSeconds: 40}}
	case domain.BlockTabata:
		return domain.BlockParams{Tabata: &domain.TabataParams{WorkSeconds: 20, RestSeconds: 10, Rounds: 8}}
	case domain.BlockForTime:
		return domain.BlockParams{ForTime: &domain.ForTimeParams{TargetReps: "150", TimeCapMinutes: 20}}
	case domain.BlockLadder:
		return domain.BlockParams{Ladder: &domain.LadderParams{LadderOrder: "descending", Steps: []domain.LadderStep{{Reps: 5, RestSeconds: 45}, {Reps: 3, RestSeconds: 45}, {Reps: 1, RestSeconds: 45}}}}
	}
	return domain.BlockParams{}
}

func TestCopyWorkoutToProgram_EveryBlockTypeRoundTrips(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()

	blocks := make([]domain.TemplateBlock, 0, len(domain.AllBlockTypes))
	for _, blockType := range domain.AllBlockTypes {
		blocks = append(blocks, domain.TemplateBlock{
			ExerciseID: f.benchID,
			BlockType:  blockType,
			Params:     paramsForBlock(blockType),
		})
	}
	template := &domain.WorkoutTemplate{CoachID: f.coachID, Name: "Every Block", Blocks: blocks}
	_, err := f.templates.Create(ctx, template)
	require.NoError(t, err)

	scheduleID := primitive.NewObjectID()
	require.NoError(t, f.svc.CopyWorkoutToProgram(ctx, f.program.ID, scheduleID, template.ID, 1))

	rules, err := f.svc.GetProgressionRules(ctx, f.program.ID, 1, scheduleID)
	require.NoError(t, err)
	require.Len(t, rules, len(blocks))

	for i, rule := range rules {
		assert.Equal(t, i, rule.BlockKey)
		assert.Equal(t, blocks[i].BlockType, rule.BlockType, "block %d", i)
		assert.Equal(t, blocks[i].Params, rule.Params, "block %d (%s)", i, blocks[i].BlockType)
	}
}
