package models

// Attribute is the set of per-user labels a recipe can be linked to.
// Each kind names the join table and column that link it to recipes.
type Attribute interface {
	Tag | Ingredient

	Kind() string
	JoinTable() string
	JoinColumn() string
}

// Tag labels recipes for filtering
type Tag struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"not null;index" json:"-"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name
func (Tag) TableName() string {
	return "tags"
}

func (Tag) Kind() string       { return "tag" }
func (Tag) JoinTable() string  { return "recipe_tags" }
func (Tag) JoinColumn() string { return "tag_id" }

func (t Tag) String() string {
	return t.Name
}

// Ingredient is an item used by recipes
type Ingredient struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"not null;index" json:"-"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name
func (Ingredient) TableName() string {
	return "ingredients"
}

func (Ingredient) Kind() string       { return "ingredient" }
func (Ingredient) JoinTable() string  { return "recipe_ingredients" }
func (Ingredient) JoinColumn() string { return "ingredient_id" }

func (i Ingredient) String() string {
	return i.Name
}
