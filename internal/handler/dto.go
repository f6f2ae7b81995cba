package handler

import (
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
)

// AttributeResponse is the {id,name} summary of a tag or ingredient.
type AttributeResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RecipeResponse is the list shape of a recipe.
type RecipeResponse struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Duration    int                 `json:"duration"`
	Price       string              `json:"price"`
	Link        string              `json:"link"`
	Tags        []AttributeResponse `json:"tags"`
	Ingredients []AttributeResponse `json:"ingredients"`
}

// RecipeDetailResponse adds the description to the list shape.
type RecipeDetailResponse struct {
	RecipeResponse
	Description string `json:"description"`
}

// UserResponse never carries the password.
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func toAttributeResponse[T models.Attribute](item T) AttributeResponse {
	switch v := any(item).(type) {
	case models.Tag:
		return AttributeResponse{ID: v.ID, Name: v.Name}
	case models.Ingredient:
		return AttributeResponse{ID: v.ID, Name: v.Name}
	}
	return AttributeResponse{}
}

func toAttributeResponses[T models.Attribute](items []T) []AttributeResponse {
	out := make([]AttributeResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toAttributeResponse(item))
	}
	return out
}

func toRecipeResponse(r *models.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		Duration:    r.Duration,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        toAttributeResponses(r.Tags),
		Ingredients: toAttributeResponses(r.Ingredients),
	}
}

func toRecipeDetailResponse(r *models.Recipe) RecipeDetailResponse {
	return RecipeDetailResponse{
		RecipeResponse: toRecipeResponse(r),
		Description:    r.Description,
	}
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}
