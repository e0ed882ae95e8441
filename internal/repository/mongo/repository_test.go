package mongo

import (
	"context"
	"testing"
	"time"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func exerciseDoc(id, owner primitive.ObjectID, name string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "owner", Value: owner},
		{Key: "name", Value: name},
		{Key: "muscles", Value: bson.A{int32(1)}},
		{Key: "sets", Value: 3.0},
		{Key: "createdAt", Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func updateResponse(matched int32) bson.D {
	return bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: matched}, {Key: "nModified", Value: matched}}
}

func TestExerciseRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "workout_api.exercises"
	ctx := context.Background()

	mt.Run("create stamps id owner and timestamps", func(mt *mtest.T) {
		repo := NewMongoExerciseRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		exercise := &domain.Exercise{Owner: primitive.NewObjectID(), Name: "Squat"}
		id, err := repo.Create(ctx, exercise)
		require.NoError(mt, err)
		assert.Equal(mt, exercise.ID, id)
		assert.False(mt, exercise.CreatedAt.IsZero())
		assert.Equal(mt, []int{}, exercise.Muscles)
	})

	mt.Run("create without owner is refused before any write", func(mt *mtest.T) {
		repo := NewMongoExerciseRepository(mt.DB)
		_, err := repo.Create(ctx, &domain.Exercise{Name: "Orphan"})
		assert.ErrorIs(mt, err, repository.ErrMissingOwner)
	})

	mt.Run("get by id maps no documents to not found", func(mt *mtest.T) {
		repo := NewMongoExerciseRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("get by id decodes the document", func(mt *mtest.T) {
		repo := NewMongoExerciseRepository(mt.DB)
		id, owner := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, exerciseDoc(id, owner, "Row")))

		exercise, err := repo.GetByID(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, "Row", exercise.Name)
		assert.Equal(mt, owner, exercise.Owner)
		assert.Equal(mt, []int{1}, exercise.Muscles)
	})

	mt.Run("get by ids keeps reference order and drops dangling ids", func(mt *mtest.T) {
		repo := NewMongoExerciseRepository(mt.DB)
		owner := primitive.NewObjectID()
		a, b, missing := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			exerciseDoc(a, owner, "A"), exerciseDoc(b, owner, "B")))

		exercises, err := repo.GetByIDs(ctx, []primitive.ObjectID{b, missing, a, b})
		require.NoError(mt, err)
		names := make([]string, len(exercises))
		for i, e := range exercises {
			names[i] = e.Name
		}
		assert.Equal(mt, []string{"B", "A", "B"}, names)
	})

	mt.Run("update of a missing record is not found", func(mt *mtest.T) {
		repo := NewMongoExerciseRepository(mt.DB)
		mt.AddMockResponses(updateResponse(0))

		err := repo.Update(ctx, primitive.NewObjectID(), repository.Fields{"name": "x"})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("update writes the fields", func(mt *mtest.T) {
		repo := NewMongoExerciseRepository(mt.DB)
		mt.AddMockResponses(updateResponse(1))

		err := repo.Update(ctx, primitive.NewObjectID(), repository.Fields{"name": "x", "owner": primitive.NewObjectID()})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		set := started.Command.Lookup("updates", "0", "u", "$set").Document()
		_, err = set.LookupErr("owner")
		assert.Error(mt, err, "owner is never written")
		assert.Equal(mt, "x", set.Lookup("name").StringValue())
	})

	mt.Run("delete of a missing record is not found", func(mt *mtest.T) {
		repo := NewMongoExerciseRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})

		err := repo.Delete(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("count", func(mt *mtest.T) {
		repo := NewMongoExerciseRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(7)}}))

		n, err := repo.Count(ctx, repository.Filter{})
		require.NoError(mt, err)
		assert.Equal(mt, int64(7), n)
	})
}

func TestWorkoutTemplateRepositoryAppendExercise(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("existing template without seed", func(mt *mtest.T) {
		repo := NewMongoWorkoutTemplateRepository(mt.DB)
		mt.AddMockResponses(updateResponse(1))
		require.NoError(mt, repo.AppendExercise(ctx, primitive.NewObjectID(), primitive.NewObjectID(), nil))
	})

	mt.Run("missing template without seed", func(mt *mtest.T) {
		repo := NewMongoWorkoutTemplateRepository(mt.DB)
		mt.AddMockResponses(updateResponse(0))
		err := repo.AppendExercise(ctx, primitive.NewObjectID(), primitive.NewObjectID(), nil)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("missing template with seed upserts", func(mt *mtest.T) {
		repo := NewMongoWorkoutTemplateRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: 1},
			{Key: "nModified", Value: 0},
			{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: id}}}},
		})

		seed := &domain.WorkoutTemplate{Owner: primitive.NewObjectID(), Name: "Workout 4"}
		require.NoError(mt, repo.AppendExercise(ctx, id, primitive.NewObjectID(), seed))

		update := mt.GetStartedEvent().Command.Lookup("updates", "0").Document()
		assert.True(mt, update.Lookup("upsert").Boolean())
		assert.Equal(mt, "Workout 4", update.Lookup("u", "$setOnInsert", "name").StringValue())
	})

	mt.Run("seed without owner is refused", func(mt *mtest.T) {
		repo := NewMongoWorkoutTemplateRepository(mt.DB)
		err := repo.AppendExercise(ctx, primitive.NewObjectID(), primitive.NewObjectID(), &domain.WorkoutTemplate{Name: "x"})
		assert.ErrorIs(mt, err, repository.ErrMissingOwner)
	})
}

func TestStartedWorkoutRepositoryMoveExercise(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("exercise not unfinished", func(mt *mtest.T) {
		repo := NewMongoStartedWorkoutRepository(mt.DB)
		mt.AddMockResponses(updateResponse(0))
		err := repo.MoveExercise(ctx, primitive.NewObjectID(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("moves between lists", func(mt *mtest.T) {
		repo := NewMongoStartedWorkoutRepository(mt.DB)
		exerciseID := primitive.NewObjectID()
		mt.AddMockResponses(updateResponse(1))
		require.NoError(mt, repo.MoveExercise(ctx, primitive.NewObjectID(), exerciseID))

		u := mt.GetStartedEvent().Command.Lookup("updates", "0", "u").Document()
		assert.Equal(mt, exerciseID, u.Lookup("$pull", "unfinishedExercises").ObjectID())
		assert.Equal(mt, exerciseID, u.Lookup("$push", "finishedExercises").ObjectID())
	})
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error collection: users index: email_1",
		}))
		_, err := repo.Create(ctx, &domain.User{Email: "a@example.com", PasswordHash: "hash"})
		assert.ErrorIs(mt, err, repository.ErrDuplicateKey)
	})

	mt.Run("unknown email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "workout_api.users", mtest.FirstBatch))
		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}
