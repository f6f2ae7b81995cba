package service_test

import (
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/service"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/logger"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/metrics"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/testutil"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/validation"
)

func TestAttributeService_CreateIsGetOrCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, db, "user@example.com", "secret")
	m := metrics.New()

	tags := service.NewAttributeService(repository.NewTagRepository(db), validation.New(), m, logger.Discard())

	first, err := tags.Create(user.ID, "  Vegan ")
	require.NoError(t, err)
	assert.Equal(t, "Vegan", first.Name)
	assert.Equal(t, user.ID, first.UserID)

	again, err := tags.Create(user.ID, "Vegan")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	assert.Equal(t, int64(1), testutil.CountRows(t, db, "tags"))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.AttributesResolved.WithLabelValues("tag", "created")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.AttributesResolved.WithLabelValues("tag", "existing")))
}

func TestAttributeService_RejectsBadNames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, db, "user@example.com", "secret")

	ingredients := service.NewAttributeService(repository.NewIngredientRepository(db), validation.New(), nil, logger.Discard())

	tooLong := make([]byte, 256)
	for i := range tooLong {
		tooLong[i] = 'a'
	}

	for _, name := range []string{"", "   ", string(tooLong)} {
		_, err := ingredients.Create(user.ID, name)

		var validationErr *service.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "name")
	}

	assert.Equal(t, int64(0), testutil.CountRows(t, db, "ingredients"))
}

func TestAttributeService_OwnerScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	alice := testutil.CreateUser(t, db, "alice@example.com", "secret")
	bob := testutil.CreateUser(t, db, "bob@example.com", "secret")

	ingredients := service.NewAttributeService(repository.NewIngredientRepository(db), validation.New(), nil, logger.Discard())

	salt, err := ingredients.Create(alice.ID, "Salt")
	require.NoError(t, err)
	_, err = ingredients.Create(bob.ID, "Pepper")
	require.NoError(t, err)

	list, err := ingredients.List(alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Salt", list[0].Name)

	_, err = ingredients.Get(bob.ID, salt.ID)
	assert.ErrorIs(t, err, repository.ErrAttributeNotFound)

	_, err = ingredients.Rename(bob.ID, salt.ID, "Sugar")
	assert.ErrorIs(t, err, repository.ErrAttributeNotFound)

	assert.ErrorIs(t, ingredients.Delete(bob.ID, salt.ID), repository.ErrAttributeNotFound)

	renamed, err := ingredients.Rename(alice.ID, salt.ID, "Sea Salt")
	require.NoError(t, err)
	assert.Equal(t, "Sea Salt", renamed.Name)

	require.NoError(t, ingredients.Delete(alice.ID, salt.ID))
	assert.Equal(t, int64(1), testutil.CountRows(t, db, "ingredients"))
}

func TestAttributeService_DeleteKeepsRecipes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, db, "user@example.com", "secret")

	tagRepo := repository.NewTagRepository(db)
	recipes := service.NewRecipeService(
		repository.NewTransactor(db),
		repository.NewRecipeRepository(db),
		tagRepo,
		repository.NewIngredientRepository(db),
		validation.New(),
		nil,
		logger.Discard(),
	)
	tags := service.NewAttributeService[models.Tag](tagRepo, validation.New(), nil, logger.Discard())

	in := sampleInput()
	in.Tags = names("Breakfast")
	recipe, err := recipes.CreateRecipe(user.ID, in)
	require.NoError(t, err)
	require.Len(t, recipe.Tags, 1)

	require.NoError(t, tags.Delete(user.ID, recipe.Tags[0].ID))

	reloaded, err := recipes.GetRecipe(user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Tags)
	assert.Equal(t, int64(0), testutil.CountRows(t, db, "recipe_tags"))
}
